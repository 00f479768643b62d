package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "ordernorm/pkg/errors"
	"ordernorm/pkg/value"
)

func TestTablesClient_PostRows(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/apps/app-1/tables/Order Lines/Action" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("applicationAccessKey") != "secret" {
			t.Errorf("query = %q", r.URL.RawQuery)
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		_, _ = w.Write([]byte(`{"Rows":[]}`))
	}))
	defer srv.Close()

	c := NewTablesClient(TablesConfig{
		BaseURL:   srv.URL,
		AppID:     "app-1",
		AccessKey: "secret",
		Properties: PayloadProperties{
			Locale:   "en-US",
			Location: "51.159133, 4.806236",
			Timezone: "Central European Standard Time",
			Currency: "EUR",
		},
	})

	_, err := c.PostRows(context.Background(), TableAction{
		Table:    "Order Lines",
		Action:   "Add",
		Rows:     []value.Value{value.FromObject(value.ObjectOf("Quantity", 3))},
		Selector: `Filter(Order Lines, true)`,
	})
	if err != nil {
		t.Fatalf("PostRows: %v", err)
	}

	props, _ := payload["Properties"].(map[string]any)
	if props["Timezone"] != "Central European Standard Time" || props["Selector"] != "Filter(Order Lines, true)" {
		t.Errorf("properties = %v", props)
	}
	if _, leaked := props["Currency"]; leaked {
		t.Error("currency must not be sent as a property")
	}
	if payload["Action"] != "Add" {
		t.Errorf("action = %v", payload["Action"])
	}
}

func TestTablesClient_MissingArgs(t *testing.T) {
	c := NewTablesClient(TablesConfig{BaseURL: "http://127.0.0.1:1"})

	_, err := c.PostRows(context.Background(), TableAction{Table: "Orders"})
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
	if appErr.Message != "Mandatory function argument(s) missing: action, app_id, app_access_key" {
		t.Errorf("message = %q", appErr.Message)
	}
}

func TestTablesClient_RetriesTransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewTablesClient(TablesConfig{BaseURL: url, AppID: "a", AccessKey: "k", MaxRetries: 3})
	var slept []time.Duration
	c.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	_, err := c.PostRows(context.Background(), TableAction{Table: "Orders", Action: "Add"})
	if !apperrors.HasCode(err, apperrors.CodeExternalAPI) {
		t.Fatalf("err = %v", err)
	}
	if len(slept) != 2 || slept[0] != time.Second || slept[1] != 2*time.Second {
		t.Errorf("backoff = %v, want [1s 2s]", slept)
	}
}
