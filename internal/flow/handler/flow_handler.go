package handler

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	flowcore "ordernorm/internal/flow/core"
	"ordernorm/internal/flow/service"
	apperrors "ordernorm/pkg/errors"
	httputil "ordernorm/pkg/http"
	"ordernorm/pkg/logger"
	"ordernorm/pkg/middleware"
)

// RunIDHeader carries the audit run id of every flow response.
const RunIDHeader = "X-Run-ID"

type FlowHandler struct {
	service  *service.FlowService
	log      *logger.Logger
	maxDepth int
}

func NewFlowHandler(service *service.FlowService, log *logger.Logger, maxDepth int) *FlowHandler {
	return &FlowHandler{
		service:  service,
		log:      log,
		maxDepth: maxDepth,
	}
}

// FlowErrorResponse is the body of a failed run. With no_error=true it is
// sent with status 200 so callers that retry on any non-2xx answer do not
// resubmit a document that can never pass.
type FlowErrorResponse struct {
	Status     string         `json:"status"`
	Error      string         `json:"error"`
	Code       string         `json:"code"`
	Details    map[string]any `json:"details,omitempty"`
	FailedStep string         `json:"failed_step,omitempty"`
	RunID      string         `json:"run_id,omitempty"`
}

type ListFlowsResponse struct {
	Flows []string `json:"flows"`
}

func (h *FlowHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/flows", h.ListFlows)
	router.POST("/api/v1/flows/:name", h.ExecuteFlow)
}

func (h *FlowHandler) ExecuteFlow(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	name := ps.ByName("name")
	noError, _ := strconv.ParseBool(r.URL.Query().Get("no_error"))

	input, err := httputil.ReadValue(r, h.maxDepth)
	if err != nil {
		h.writeFlowError(w, "", err, noError)
		return
	}

	h.log.Info("executing flow", "flow", name, "request_id", middleware.RequestID(r))

	result, err := h.service.Execute(r.Context(), name, input, service.Origin{
		Source:    service.SourceHTTP,
		RequestID: middleware.RequestID(r),
	})
	if err != nil {
		runID := ""
		if result != nil {
			runID = result.RunID
		}
		h.writeFlowError(w, runID, err, noError)
		return
	}

	w.Header().Set(RunIDHeader, result.RunID)
	if err := httputil.WriteJSON(w, http.StatusOK, result); err != nil {
		h.log.Error("failed to write JSON response", "handler", "ExecuteFlow", "operation", "WriteJSON", "error", err)
	}
}

func (h *FlowHandler) ListFlows(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, ListFlowsResponse{
		Flows: h.service.GetAvailableFlows(),
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "ListFlows", "operation", "WriteJSON", "error", err)
	}
}

func (h *FlowHandler) writeFlowError(w http.ResponseWriter, runID string, err error, noError bool) {
	appErr := apperrors.AsAppError(err)
	resp := FlowErrorResponse{
		Status:     "error",
		Error:      appErr.Message,
		Code:       appErr.Code,
		Details:    appErr.Details,
		FailedStep: flowcore.FailedStep(err),
		RunID:      runID,
	}
	if !apperrors.IsAppError(err) {
		resp.Error = "Internal server error"
	}

	status := appErr.StatusCode()
	if noError {
		status = http.StatusOK
	}
	if runID != "" {
		w.Header().Set(RunIDHeader, runID)
	}
	if writeErr := httputil.WriteJSON(w, status, resp); writeErr != nil {
		h.log.Error("failed to write error response", "handler", "ExecuteFlow", "operation", "WriteJSON", "error", writeErr)
	}
}
