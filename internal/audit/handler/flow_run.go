package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"ordernorm/internal/audit/service"
	httputil "ordernorm/pkg/http"
	"ordernorm/pkg/logger"
)

type FlowRunHandler struct {
	service service.FlowRunService
	log     *logger.Logger
}

func NewFlowRunHandler(service service.FlowRunService, log *logger.Logger) *FlowRunHandler {
	return &FlowRunHandler{service: service, log: log}
}

func (h *FlowRunHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/runs/:id", h.GetByID)
}

func (h *FlowRunHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	run, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, run); err != nil {
		h.log.Error("failed to write JSON response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}
