package flows

import (
	"fmt"
	"slices"

	flowcore "ordernorm/internal/flow/core"
	"ordernorm/internal/flow/types"
	"ordernorm/pkg/address"
	"ordernorm/pkg/client"
	apperrors "ordernorm/pkg/errors"
	"ordernorm/pkg/mapping"
	"ordernorm/pkg/normalize"
	"ordernorm/pkg/value"
)

const (
	ADDRESS_INPUT = "address_input"
	ADDRESS_KIND  = "address_kind"
	ADDRESS_MODE  = "address_mode"

	MAP_RECORD = "map_record"
	MAP_RULES  = "map_rules"

	DOCUMENT_INPUT = "document_input"
	DOCUMENT_RULES = "document_rules"
	SUBMISSION     = "submission"
	ORDER          = "order"
	CLEANED_ORDER  = "cleaned_order"
	WARNINGS       = "warnings"
	CUSTOMER       = "customer"
	SUPPLIER       = "supplier"
	DOCUMENT       = "document"

	BILLING_ORDER_ID = "billing_order_id"
	BILLING_ORDER    = "billing_order"

	TABLE_ROWS = "table_rows"
)

type steps struct {
	deps Deps
}

func (s *steps) clean(ctx *flowcore.FlowContext) error {
	ctx.Output = s.deps.Pipeline.Clean(ctx.Input)
	return nil
}

func (s *steps) decodeAddress(ctx *flowcore.FlowContext) error {
	var in types.AddressInput
	if err := types.Decode(ctx.Input, &in); err != nil {
		return err
	}
	kind, err := address.ParseKind(in.Kind)
	if err != nil {
		return err
	}
	mode, err := address.ParseMode(in.Mode)
	if err != nil {
		return err
	}

	ctx.Process[ADDRESS_INPUT] = in.Address
	ctx.Process[ADDRESS_KIND] = kind
	ctx.Process[ADDRESS_MODE] = mode
	return nil
}

func (s *steps) decompose(ctx *flowcore.FlowContext) error {
	kind := ctx.Process[ADDRESS_KIND].(address.Kind)
	components, err := address.Parse(
		ctx.Process[ADDRESS_INPUT].(string),
		kind,
		ctx.Process[ADDRESS_MODE].(address.Mode),
	)
	if err != nil {
		return err
	}

	out := value.NewObject()
	out.Set("components", value.FromObject(components.Object()))
	out.Set("fields", value.FromObject(components.TemplateFields(kind)))
	ctx.Output = value.FromObject(out)
	return nil
}

func (s *steps) compileRules(specs []mapping.RuleSpec) (mapping.Rules, error) {
	rules, err := mapping.CompileSpecs(specs, s.deps.Registry)
	if err != nil {
		return nil, apperrors.Validation("Invalid mapping rules", map[string]any{"error": err.Error()})
	}
	return rules, nil
}

func (s *steps) decodeMapping(ctx *flowcore.FlowContext) error {
	var in types.MapInput
	if err := types.Decode(ctx.Input, &in); err != nil {
		return err
	}
	rules, err := s.compileRules(in.Rules)
	if err != nil {
		return err
	}

	ctx.Process[MAP_RECORD] = in.Record
	ctx.Process[MAP_RULES] = rules
	return nil
}

func (s *steps) mapRecord(ctx *flowcore.FlowContext) error {
	mapped, warnings := s.deps.Mapper.Map(ctx.Process[MAP_RECORD].(*value.Object), ctx.Process[MAP_RULES].(mapping.Rules))

	out := value.NewObject()
	out.Set("record", value.FromObject(mapped))
	out.Set("warnings", warningsValue(warnings))
	ctx.Output = value.FromObject(out)
	return nil
}

func warningsValue(warnings []mapping.Warning) value.Value {
	items := make([]value.Value, len(warnings))
	for i, w := range warnings {
		items[i] = value.FromObject(value.ObjectOf("input", w.Input, "output", w.Output, "message", w.String()))
	}
	return value.Array(items...)
}

func (s *steps) storeDocumentInput(ctx *flowcore.FlowContext, in *types.DocumentInput) error {
	rules := s.deps.DefaultRules
	if len(in.Rules) > 0 {
		var err error
		if rules, err = s.compileRules(in.Rules); err != nil {
			return err
		}
	}
	ctx.Process[DOCUMENT_INPUT] = in
	ctx.Process[DOCUMENT_RULES] = rules
	return nil
}

func (s *steps) decodeDocument(ctx *flowcore.FlowContext) error {
	var in types.DocumentInput
	if err := types.Decode(ctx.Input, &in); err != nil {
		return err
	}
	return s.storeDocumentInput(ctx, &in)
}

// decodeSubmission checks the transport up front so nothing is posted to
// the billing API for a request that cannot be sent.
func (s *steps) decodeSubmission(ctx *flowcore.FlowContext) error {
	var in types.SubmitInput
	if err := types.Decode(ctx.Input, &in); err != nil {
		return err
	}
	if in.Transport != "" && !slices.Contains(client.Transports, in.Transport) {
		return apperrors.Validation(fmt.Sprintf("Invalid transport type: %s", in.Transport), map[string]any{
			"allowed": client.Transports,
		})
	}
	ctx.Process[SUBMISSION] = &in
	return s.storeDocumentInput(ctx, &in.DocumentInput)
}

func (s *steps) mapOrder(ctx *flowcore.FlowContext) error {
	in := ctx.Process[DOCUMENT_INPUT].(*types.DocumentInput)
	rules, _ := ctx.Process[DOCUMENT_RULES].(mapping.Rules)

	order := in.Order
	var warnings []mapping.Warning
	if len(rules) > 0 {
		order, warnings = s.deps.Mapper.Map(in.Order, rules)
	}
	ctx.Process[ORDER] = order
	ctx.Process[WARNINGS] = warnings
	return nil
}

func (s *steps) cleanOrder(ctx *flowcore.FlowContext) error {
	order := ctx.Process[ORDER].(*value.Object)
	cleaned, _ := s.deps.Pipeline.Clean(value.FromObject(order)).Object()
	ctx.Process[CLEANED_ORDER] = cleaned
	return nil
}

// cleanedKey is the form a source key takes after cleaning.
func cleanedKey(key string) string {
	return normalize.UnderscoreKey(normalize.CapitalizeKey(key))
}

// section returns a copy of the cleaned order's sub-object for key, or an
// empty object when the order has none.
func section(order *value.Object, key string) *value.Object {
	if v, ok := order.Get(cleanedKey(key)); ok {
		if obj, ok := v.Object(); ok {
			return obj.Clone()
		}
	}
	return value.NewObject()
}

func (s *steps) decomposeParty(ctx *flowcore.FlowContext, kind address.Kind, raw, sectionKey, processKey string) error {
	in := ctx.Process[DOCUMENT_INPUT].(*types.DocumentInput)
	mode, err := address.ParseMode(in.AddressMode)
	if err != nil {
		return err
	}

	components, err := address.Parse(raw, kind, mode)
	if err != nil {
		return err
	}

	party := section(ctx.Process[CLEANED_ORDER].(*value.Object), sectionKey)
	components.TemplateFields(kind).Range(func(k string, v value.Value) bool {
		party.Set(k, v)
		return true
	})
	if components.CountryCode != "" {
		party.Set(address.FieldName(kind, "countrycode"), value.String(components.CountryCode))
	}
	ctx.Process[processKey] = party
	return nil
}

func (s *steps) decomposeCustomer(ctx *flowcore.FlowContext) error {
	in := ctx.Process[DOCUMENT_INPUT].(*types.DocumentInput)
	return s.decomposeParty(ctx, address.Customer, in.CustomerAddress, s.deps.Merge.Replaced[0], CUSTOMER)
}

func (s *steps) decomposeSupplier(ctx *flowcore.FlowContext) error {
	in := ctx.Process[DOCUMENT_INPUT].(*types.DocumentInput)
	return s.decomposeParty(ctx, address.Supplier, in.SupplierAddress, s.deps.Merge.Replaced[1], SUPPLIER)
}

// merge lays out the billing document. The merge spec lists the customer,
// supplier and order lines sections in that order.
func (s *steps) merge(ctx *flowcore.FlowContext) error {
	cleaned := ctx.Process[CLEANED_ORDER].(*value.Object)

	replaced := make([]string, len(s.deps.Merge.Replaced))
	for i, k := range s.deps.Merge.Replaced {
		replaced[i] = cleanedKey(k)
	}
	spec := mapping.MergeSpec{Replaced: replaced, Named: s.deps.Merge.Named}

	lines := value.Null()
	if len(replaced) > 2 {
		if v, ok := cleaned.Get(replaced[2]); ok {
			lines = v
		}
	}

	document := spec.Merge(cleaned,
		value.FromObject(ctx.Process[CUSTOMER].(*value.Object)),
		value.FromObject(ctx.Process[SUPPLIER].(*value.Object)),
		lines,
	)
	ctx.Process[DOCUMENT] = document
	ctx.Output = value.FromObject(document)
	return nil
}

func (s *steps) billing() (*client.BillingClient, error) {
	if s.deps.Billing == nil {
		return nil, apperrors.Unavailable("Billing API")
	}
	return s.deps.Billing, nil
}

func (s *steps) postOrder(ctx *flowcore.FlowContext) error {
	billing, err := s.billing()
	if err != nil {
		return err
	}
	id, err := billing.PostOrder(ctx.Ctx, ctx.Process[DOCUMENT].(*value.Object))
	if err != nil {
		return err
	}
	ctx.Log.Info("billing order created", "run_id", ctx.RunID, "order_id", id)
	ctx.Process[BILLING_ORDER_ID] = id
	return nil
}

func (s *steps) sendOrder(ctx *flowcore.FlowContext) error {
	sub := ctx.Process[SUBMISSION].(*types.SubmitInput)
	if sub.Transport == "" {
		return nil
	}
	billing, err := s.billing()
	if err != nil {
		return err
	}
	return billing.SendOrder(ctx.Ctx, ctx.Process[BILLING_ORDER_ID].(int64), sub.Transport)
}

func (s *steps) fetchOrderPDF(ctx *flowcore.FlowContext) error {
	sub := ctx.Process[SUBMISSION].(*types.SubmitInput)
	if !sub.WaitForPDF {
		return nil
	}
	billing, err := s.billing()
	if err != nil {
		return err
	}
	order, err := billing.FetchOrderWithPDF(ctx.Ctx, ctx.Process[BILLING_ORDER_ID].(int64))
	if err != nil {
		return err
	}
	ctx.Process[BILLING_ORDER] = order
	return nil
}

func (s *steps) submissionOutput(ctx *flowcore.FlowContext) error {
	sub := ctx.Process[SUBMISSION].(*types.SubmitInput)

	out := value.NewObject()
	out.Set("OrderID", value.Int(ctx.Process[BILLING_ORDER_ID].(int64)))
	out.Set("Transport", value.String(sub.Transport))
	out.Set("Document", value.FromObject(ctx.Process[DOCUMENT].(*value.Object)))
	if order, ok := ctx.Process[BILLING_ORDER].(*value.Object); ok {
		out.Set("Order", value.FromObject(order))
	}
	ctx.Output = value.FromObject(out)
	return nil
}

func (s *steps) decodeRows(ctx *flowcore.FlowContext) error {
	var in types.TableRowsInput
	if err := types.Decode(ctx.Input, &in); err != nil {
		return err
	}
	ctx.Process[TABLE_ROWS] = &in
	return nil
}

func (s *steps) cleanRows(ctx *flowcore.FlowContext) error {
	in := ctx.Process[TABLE_ROWS].(*types.TableRowsInput)
	for i, row := range in.Rows {
		in.Rows[i] = s.deps.Pipeline.Clean(row)
	}
	return nil
}

func (s *steps) postRows(ctx *flowcore.FlowContext) error {
	if s.deps.Tables == nil {
		return apperrors.Unavailable("Tables API")
	}
	in := ctx.Process[TABLE_ROWS].(*types.TableRowsInput)

	resp, err := s.deps.Tables.PostRows(ctx.Ctx, client.TableAction{
		Table:        in.Table,
		Action:       in.Action,
		Rows:         in.Rows,
		Selector:     in.Selector,
		UserSettings: in.UserSettings,
	})
	if err != nil {
		return err
	}

	if parsed, err := value.Parse(resp.Body); err == nil {
		ctx.Output = parsed
	} else {
		ctx.Output = value.String(string(resp.Body))
	}
	return nil
}
