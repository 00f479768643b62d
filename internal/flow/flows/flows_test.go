package flows

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	flowcore "ordernorm/internal/flow/core"
	"ordernorm/pkg/client"
	apperrors "ordernorm/pkg/errors"
	"ordernorm/pkg/logger"
	"ordernorm/pkg/mapping"
	"ordernorm/pkg/value"
)

const orderJSON = `{
	"order number": "A-1",
	"order date": "05/17/2023",
	"customer": {"name": "ACME", "vat number": "BE0123"},
	"supplier": {"name": "Wise"},
	"order_lines": [{"qty": "2", "unit price": "10.50"}]
}`

func documentInput(t *testing.T, extra string) value.Value {
	t.Helper()
	js := `{"order":` + orderJSON + `,
		"customer_address": "Rue de la Loi 16, 1000 Brussels, Belgium",
		"supplier_address": "Main St 12 - Box 3, 2000 Antwerp"` + extra + `}`
	v, err := value.Parse([]byte(js))
	if err != nil {
		t.Fatalf("parse input: %v", err)
	}
	return v
}

func run(t *testing.T, deps Deps, flow string, input value.Value) (*flowcore.FlowContext, error) {
	t.Helper()
	engine := flowcore.NewEngine(flowcore.NewLogRecorder(logger.Discard()), nil, All(deps)...)
	fc := flowcore.NewFlowContext(context.Background(), input, logger.Discard())
	return fc, engine.Run(flow, fc)
}

func getString(t *testing.T, obj *value.Object, key string) string {
	t.Helper()
	v, ok := obj.Get(key)
	if !ok {
		t.Fatalf("missing key %q in %v", key, obj.Keys())
	}
	s, _ := v.AsString()
	return s
}

func TestAssembleDocument(t *testing.T) {
	fc, err := run(t, Deps{}, AssembleDocument, documentInput(t, ""))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	doc, ok := fc.Output.Object()
	if !ok {
		t.Fatalf("output is %s", fc.Output.Kind())
	}
	wantKeys := "Order_number,Order_date,Customer,Supplier,OrderLines"
	if got := strings.Join(doc.Keys(), ","); got != wantKeys {
		t.Errorf("keys = %s, want %s", got, wantKeys)
	}
	if got := getString(t, doc, "Order_date"); got != "2023-05-17" {
		t.Errorf("Order_date = %s", got)
	}

	customerV, _ := doc.Get("Customer")
	customer, _ := customerV.Object()
	if got := getString(t, customer, "Vat_number"); got != "BE0123" {
		t.Errorf("Vat_number = %s", got)
	}
	if got := getString(t, customer, "P_customer_address_streetname"); got != "Rue de la Loi" {
		t.Errorf("street = %s", got)
	}
	if got := getString(t, customer, "P_customer_address_postalzone"); got != "1000" {
		t.Errorf("postal zone = %q, postal codes must stay strings", got)
	}
	if got := getString(t, customer, "P_customer_address_countrycode"); got != "BE" {
		t.Errorf("country code = %s", got)
	}

	supplierV, _ := doc.Get("Supplier")
	supplier, _ := supplierV.Object()
	if got := getString(t, supplier, "P_supplier_address_box"); got != "3" {
		t.Errorf("supplier box = %s", got)
	}

	linesV, _ := doc.Get("OrderLines")
	lines := linesV.Items()
	if len(lines) != 1 {
		t.Fatalf("order lines = %v", linesV)
	}
	line, _ := lines[0].Object()
	// digit strings are amounts to the money step
	if qty, _ := line.Get("Qty"); !value.Equal(qty, value.Float(2)) {
		t.Errorf("Qty = %v", qty)
	}
}

func TestAssembleDocument_WithRules(t *testing.T) {
	rules := `, "rules": [
		{"input": "order number", "output": "OrderNumber"},
		{"input": "customer"},
		{"input": "supplier"},
		{"input": "missing field", "output": "Missing"}
	]`
	fc, err := run(t, Deps{}, AssembleDocument, documentInput(t, rules))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	doc, _ := fc.Output.Object()
	if got := strings.Join(doc.Keys(), ","); got != "OrderNumber,Customer,Supplier,OrderLines" {
		t.Errorf("keys = %s", got)
	}
	if lines, _ := doc.Get("OrderLines"); !lines.IsNull() {
		t.Errorf("OrderLines = %v, want null when the mapped order has none", lines)
	}
	if warnings := fc.Process[WARNINGS].([]mapping.Warning); len(warnings) != 1 || warnings[0].Input != "missing field" {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestAssembleDocument_BadAddress(t *testing.T) {
	input := documentInput(t, "")
	obj, _ := input.Object()
	obj.Set("customer_address", value.String("just one part"))

	_, err := run(t, Deps{}, AssembleDocument, input)
	if !apperrors.HasCode(err, apperrors.CodeAddressFormat) {
		t.Fatalf("err = %v, want address format error", err)
	}
	if step := flowcore.FailedStep(err); step != "decompose_customer" {
		t.Errorf("failed step = %s", step)
	}
}

func TestDecomposeAddress(t *testing.T) {
	input := value.FromObject(value.ObjectOf("address", "Main St 12-3, 2000 Antwerp, Belgium", "kind", "Supplier"))

	fc, err := run(t, Deps{}, DecomposeAddress, input)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	out, _ := fc.Output.Object()
	fieldsV, _ := out.Get("fields")
	fields, _ := fieldsV.Object()
	if got := getString(t, fields, "P_supplier_address_streetnumber"); got != "12" {
		t.Errorf("street number = %s", got)
	}
	if got := getString(t, fields, "P_supplier_address_box"); got != "3" {
		t.Errorf("box = %s", got)
	}
}

func TestDecomposeAddress_UnknownKind(t *testing.T) {
	input := value.FromObject(value.ObjectOf("address", "a, 1000 b", "kind", "buyer"))

	_, err := run(t, Deps{}, DecomposeAddress, input)
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("err = %v", err)
	}
}

func TestMapRecord(t *testing.T) {
	input, _ := value.Parse([]byte(`{
		"record": {"Total": "€ 1,250.00", "Name": "x"},
		"rules": [{"input": "Total", "output": "Amount", "transform": "money"}, {"input": "Gone"}]
	}`))

	fc, err := run(t, Deps{}, MapRecord, input)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	out, _ := fc.Output.Object()
	recordV, _ := out.Get("record")
	record, _ := recordV.Object()
	if got := strings.Join(record.Keys(), ","); got != "Amount" {
		t.Errorf("record keys = %s", got)
	}
	warnings, _ := out.Get("warnings")
	if warnings.Len() != 1 {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestMapRecord_UnknownTransform(t *testing.T) {
	input, _ := value.Parse([]byte(`{"record": {"a": 1}, "rules": [{"input": "a", "transform": "nope"}]}`))

	_, err := run(t, Deps{}, MapRecord, input)
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("err = %v", err)
	}
}

func TestSubmitDocument(t *testing.T) {
	var posted value.Value
	var sent map[string]any
	var polls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/orders":
			posted, _ = value.Decode(r.Body)
			_, _ = w.Write([]byte("42"))
		case r.URL.Path == "/v1/orders/commands/send":
			_ = json.NewDecoder(r.Body).Decode(&sent)
		case r.URL.Path == "/v1/orders/42":
			if atomic.AddInt32(&polls, 1) == 1 {
				_, _ = w.Write([]byte(`{"OrderID":42}`))
				return
			}
			_, _ = w.Write([]byte(`{"OrderID":42,"OrderPDF":{"FileID":"f"}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	deps := Deps{Billing: client.NewBillingClient(client.BillingConfig{
		BaseURL:       srv.URL,
		APIKey:        "k",
		PDFInterval:   1,
		PDFMaxRetries: 2,
	})}

	fc, err := run(t, deps, SubmitDocument, documentInput(t, `, "transport": "Peppol", "wait_for_pdf": true`))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	out, _ := fc.Output.Object()
	if id, _ := out.Get("OrderID"); !value.Equal(id, value.Int(42)) {
		t.Errorf("OrderID = %v", id)
	}
	if !out.Has("Order") {
		t.Error("fetched order missing from output")
	}
	if postedObj, ok := posted.Object(); !ok || !postedObj.Has("Customer") {
		t.Errorf("posted document = %v", posted)
	}
	if sent["Transporttype"] != "Peppol" {
		t.Errorf("send payload = %v", sent)
	}
}

func TestSubmitDocument_InvalidTransportPostsNothing(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	deps := Deps{Billing: client.NewBillingClient(client.BillingConfig{BaseURL: srv.URL, APIKey: "k"})}
	_, err := run(t, deps, SubmitDocument, documentInput(t, `, "transport": "Pigeon"`))

	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("err = %v", err)
	}
	if calls != 0 {
		t.Errorf("billing API called %d times", calls)
	}
}

func TestSubmitDocument_BillingNotConfigured(t *testing.T) {
	_, err := run(t, Deps{}, SubmitDocument, documentInput(t, ""))
	if !apperrors.HasCode(err, apperrors.CodeUnavailable) {
		t.Errorf("err = %v", err)
	}
	if flowcore.FailedStep(err) != "post_order" {
		t.Errorf("failed step = %s", flowcore.FailedStep(err))
	}
}

func TestSyncTableRows(t *testing.T) {
	var payload struct {
		Action string           `json:"Action"`
		Rows   []map[string]any `json:"Rows"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&payload)
		_, _ = w.Write([]byte(`{"Rows":[{"Row ID":"r1"}]}`))
	}))
	defer srv.Close()

	deps := Deps{Tables: client.NewTablesClient(client.TablesConfig{BaseURL: srv.URL, AppID: "app", AccessKey: "key"})}
	input, _ := value.Parse([]byte(`{"table":"Orders","action":"Add","rows":[{"order total":"12.50"}]}`))

	fc, err := run(t, deps, SyncTableRows, input)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(payload.Rows) != 1 || payload.Rows[0]["Order_total"] != 12.5 {
		t.Errorf("rows sent = %v", payload.Rows)
	}
	if out, _ := fc.Output.Object(); out == nil || !out.Has("Rows") {
		t.Errorf("output = %v", fc.Output)
	}
}
