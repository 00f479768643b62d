package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"

	flowcore "ordernorm/internal/flow/core"
	"ordernorm/internal/flow/flows"
	"ordernorm/internal/flow/service"
	"ordernorm/pkg/logger"
)

func newRouter() *httprouter.Router {
	engine := flowcore.NewEngine(flowcore.NewLogRecorder(logger.Discard()), nil, flows.All(flows.Deps{})...)
	h := NewFlowHandler(service.NewFlowService(engine, logger.Discard()), logger.Discard(), 0)
	router := httprouter.New()
	h.RegisterRoutes(router)
	return router
}

func TestFlowHandler_ListFlows(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/flows", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body ListFlowsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Flows) != 6 || body.Flows[0] != flows.AssembleDocument {
		t.Errorf("flows = %v", body.Flows)
	}
}

func TestFlowHandler_ExecuteFlow(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/flows/clean_record", strings.NewReader(`{"b": "21%", "a": "x"}`))
	newRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	runID := rec.Header().Get(RunIDHeader)
	if runID == "" {
		t.Fatal("missing run id header")
	}
	want := `{"run_id":"` + runID + `","flow":"clean_record","output":{"B":21,"A":"x"}}`
	if got := strings.TrimSpace(rec.Body.String()); got != want {
		t.Errorf("body = %s, want %s", got, want)
	}
}

func TestFlowHandler_Failures(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		body           string
		wantStatus     int
		wantCode       string
		wantFailedStep string
		wantRunID      bool
	}{
		{
			name:       "unknown flow",
			path:       "/api/v1/flows/nope",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "invalid json",
			path:       "/api/v1/flows/clean_record",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:           "address format",
			path:           "/api/v1/flows/decompose_address",
			body:           `{"address": "just one part", "kind": "customer"}`,
			wantStatus:     http.StatusBadRequest,
			wantCode:       "ADDRESS_FORMAT_ERROR",
			wantFailedStep: "decompose",
			wantRunID:      true,
		},
		{
			name:           "address format with no_error",
			path:           "/api/v1/flows/decompose_address?no_error=true",
			body:           `{"address": "just one part", "kind": "customer"}`,
			wantStatus:     http.StatusOK,
			wantCode:       "ADDRESS_FORMAT_ERROR",
			wantFailedStep: "decompose",
			wantRunID:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body)))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			var body FlowErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != "error" || body.Code != tt.wantCode {
				t.Errorf("body = %+v", body)
			}
			if body.FailedStep != tt.wantFailedStep {
				t.Errorf("failed_step = %q, want %q", body.FailedStep, tt.wantFailedStep)
			}
			if (body.RunID != "") != tt.wantRunID {
				t.Errorf("run_id = %q", body.RunID)
			}
		})
	}
}
