package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	flowcore "ordernorm/internal/flow/core"
	"ordernorm/internal/flow/flows"
	flowhandler "ordernorm/internal/flow/handler"
	flowservice "ordernorm/internal/flow/service"
	"ordernorm/internal/records/service"
	"ordernorm/pkg/logger"
)

func newRouter(t *testing.T) *httprouter.Router {
	t.Helper()
	engine := flowcore.NewEngine(flowcore.NewLogRecorder(logger.Discard()), nil, flows.All(flows.Deps{})...)
	svc := service.NewRecordService(flowservice.NewFlowService(engine, logger.Discard()), nil, logger.Discard())

	router := httprouter.New()
	NewRecordHandler(svc, logger.Discard(), 4).RegisterRoutes(router)
	return router
}

func post(router http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRecordHandler_Clean(t *testing.T) {
	router := newRouter(t)

	rec := post(router, "/api/v1/records/clean", `{"order date": "05/17/2023", "vat rate": "21%", "qty": "007"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	want := `{"Order_date":"2023-05-17","Vat_rate":21,"Qty":7.0}`
	if got := strings.TrimSpace(rec.Body.String()); got != want {
		t.Errorf("body = %s, want %s", got, want)
	}
	if rec.Header().Get(flowhandler.RunIDHeader) == "" {
		t.Error("missing run id header")
	}
}

func TestRecordHandler_CleanAcceptsArrays(t *testing.T) {
	rec := post(newRouter(t), "/api/v1/records/clean", `[{"qty": "1"}, "2"]`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `[{"Qty":1.0},2.0]` {
		t.Errorf("body = %s", got)
	}
}

func TestRecordHandler_Errors(t *testing.T) {
	router := newRouter(t)

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "invalid json",
			path:       "/api/v1/records/clean",
			body:       `{"a":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "too deep",
			path:       "/api/v1/records/clean",
			body:       `{"a":{"b":{"c":{"d":{"e":1}}}}}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "address body must be an object",
			path:       "/api/v1/addresses/decompose",
			body:       `["Main St 12"]`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "address missing kind",
			path:       "/api/v1/addresses/decompose",
			body:       `{"address": "Main St 12, 2000 Antwerp"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "address cannot be split",
			path:       "/api/v1/addresses/decompose",
			body:       `{"address": "just one part", "kind": "customer"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "ADDRESS_FORMAT_ERROR",
		},
		{
			name:       "mapping without rules",
			path:       "/api/v1/records/map",
			body:       `{"record": {"a": 1}}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(router, tt.path, tt.body)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body["code"] != tt.wantCode {
				t.Errorf("code = %v, want %s", body["code"], tt.wantCode)
			}
		})
	}
}

func TestRecordHandler_DecomposeAddress(t *testing.T) {
	rec := post(newRouter(t), "/api/v1/addresses/decompose", `{"address": "Main St 12-3, 2000 Antwerp, Belgium", "kind": "supplier"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, `{"components":`) {
		t.Errorf("body = %s", body)
	}
	if !strings.Contains(body, `"P_supplier_address_box":"3"`) {
		t.Errorf("body = %s", body)
	}
}

func TestRecordHandler_Map(t *testing.T) {
	rec := post(newRouter(t), "/api/v1/records/map", `{
		"record": {"Order number": "A-1", "Total": 10},
		"rules": [{"input": "Order number", "output": "OrderNumber"}, {"input": "Missing"}]
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Record   map[string]any   `json:"record"`
		Warnings []map[string]any `json:"warnings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Record["OrderNumber"] != "A-1" {
		t.Errorf("record = %v", body.Record)
	}
	if len(body.Warnings) != 1 || body.Warnings[0]["input"] != "Missing" {
		t.Errorf("warnings = %v", body.Warnings)
	}
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context, *readpref.ReadPref) error { return p.err }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		checks     []Check
		path       string
		wantStatus int
		wantBody   string
	}{
		{name: "health", path: "/health", wantStatus: http.StatusOK, wantBody: `{"status":"ok"}`},
		{name: "ready without checks", path: "/ready", wantStatus: http.StatusOK, wantBody: `{"status":"ready"}`},
		{name: "ready", checks: []Check{PingCheck("mongo", fakePinger{})}, path: "/ready", wantStatus: http.StatusOK, wantBody: `{"status":"ready","checks":{"mongo":"ok"}}`},
		{
			name:       "database down",
			checks:     []Check{PingCheck("mongo", fakePinger{err: errors.New("no reachable servers")})},
			path:       "/ready",
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"status":"unavailable","checks":{"mongo":"error"}}`,
		},
		{
			name:       "liveness ignores checks",
			checks:     []Check{PingCheck("mongo", fakePinger{err: errors.New("down")})},
			path:       "/health",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ok"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := httprouter.New()
			NewHealthHandler(logger.Discard(), tt.checks...).RegisterRoutes(router)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tt.wantBody {
				t.Errorf("body = %s, want %s", got, tt.wantBody)
			}
		})
	}
}
