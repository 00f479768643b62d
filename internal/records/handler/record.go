package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	flowhandler "ordernorm/internal/flow/handler"
	flowservice "ordernorm/internal/flow/service"
	"ordernorm/internal/records/service"
	httputil "ordernorm/pkg/http"
	"ordernorm/pkg/logger"
	"ordernorm/pkg/value"
)

type RecordHandler struct {
	service  service.RecordService
	log      *logger.Logger
	maxDepth int
}

func NewRecordHandler(service service.RecordService, log *logger.Logger, maxDepth int) *RecordHandler {
	return &RecordHandler{
		service:  service,
		log:      log,
		maxDepth: maxDepth,
	}
}

func (h *RecordHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/records/clean", h.Clean)
	router.POST("/api/v1/records/map", h.Map)
	router.POST("/api/v1/addresses/decompose", h.DecomposeAddress)
	router.POST("/api/v1/documents", h.AssembleDocument)
}

type operation func(r *http.Request, input value.Value) (*flowservice.RunResult, error)

// Clean accepts any JSON document, not only objects.
func (h *RecordHandler) Clean(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.serve(w, r, "Clean", false, func(r *http.Request, input value.Value) (*flowservice.RunResult, error) {
		return h.service.Clean(r.Context(), input)
	})
}

func (h *RecordHandler) Map(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.serve(w, r, "Map", true, func(r *http.Request, input value.Value) (*flowservice.RunResult, error) {
		return h.service.Map(r.Context(), input)
	})
}

func (h *RecordHandler) DecomposeAddress(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.serve(w, r, "DecomposeAddress", true, func(r *http.Request, input value.Value) (*flowservice.RunResult, error) {
		return h.service.DecomposeAddress(r.Context(), input)
	})
}

func (h *RecordHandler) AssembleDocument(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.serve(w, r, "AssembleDocument", true, func(r *http.Request, input value.Value) (*flowservice.RunResult, error) {
		return h.service.AssembleDocument(r.Context(), input)
	})
}

// serve reads the body, runs op and writes the flow output as the whole
// response body. The run id travels in a header so the body stays the
// document itself.
func (h *RecordHandler) serve(w http.ResponseWriter, r *http.Request, name string, objectOnly bool, op operation) {
	var (
		input value.Value
		err   error
	)
	if objectOnly {
		var obj *value.Object
		obj, err = httputil.ReadObject(r, h.maxDepth)
		input = value.FromObject(obj)
	} else {
		input, err = httputil.ReadValue(r, h.maxDepth)
	}
	if err != nil {
		h.writeError(w, name, err)
		return
	}

	result, err := op(r, input)
	if result != nil && result.RunID != "" {
		w.Header().Set(flowhandler.RunIDHeader, result.RunID)
	}
	if err != nil {
		h.writeError(w, name, err)
		return
	}

	if err := httputil.WriteValue(w, http.StatusOK, result.Output); err != nil {
		h.log.Error("failed to write JSON response", "handler", name, "operation", "WriteValue", "error", err)
	}
}

func (h *RecordHandler) writeError(w http.ResponseWriter, name string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
	}
}
