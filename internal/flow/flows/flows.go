package flows

import (
	flowcore "ordernorm/internal/flow/core"
	"ordernorm/pkg/client"
	"ordernorm/pkg/mapping"
	"ordernorm/pkg/normalize"
)

const (
	CleanRecord      = "clean_record"
	DecomposeAddress = "decompose_address"
	MapRecord        = "map_record"
	AssembleDocument = "assemble_document"
	SubmitDocument   = "submit_document"
	SyncTableRows    = "sync_table_rows"
)

// Deps are the collaborators the steps close over. Billing and Tables are
// nil when those APIs are not configured; flows that need them fail with
// an unavailable error at the step that does.
type Deps struct {
	Pipeline *normalize.Pipeline
	Mapper   *mapping.Mapper
	Registry *mapping.Registry
	Merge    mapping.MergeSpec

	// DefaultRules apply to documents whose request carries no rules.
	DefaultRules mapping.Rules

	Billing *client.BillingClient
	Tables  *client.TablesClient
}

func (d *Deps) withDefaults() {
	if d.Pipeline == nil {
		d.Pipeline = normalize.New(normalize.DefaultOptions())
	}
	if d.Mapper == nil {
		d.Mapper = mapping.NewMapper(nil)
	}
	if d.Registry == nil {
		d.Registry = mapping.DefaultRegistry
	}
	if len(d.Merge.Replaced) < 3 || len(d.Merge.Named) < 3 {
		d.Merge = mapping.DefaultMergeSpec
	}
}

// All builds every flow over deps.
func All(deps Deps) []flowcore.Flow {
	deps.withDefaults()
	s := &steps{deps: deps}

	assemble := []*flowcore.Step{
		flowcore.NewStep("decode_document", s.decodeDocument),
		flowcore.NewStep("map_order", s.mapOrder),
		flowcore.NewStep("clean_order", s.cleanOrder),
		flowcore.NewStep("decompose_customer", s.decomposeCustomer),
		flowcore.NewStep("decompose_supplier", s.decomposeSupplier),
		flowcore.NewStep("merge", s.merge),
	}

	submit := append([]*flowcore.Step{
		flowcore.NewStep("decode_submission", s.decodeSubmission),
	}, assemble[1:]...)
	submit = append(submit,
		flowcore.NewStep("post_order", s.postOrder),
		flowcore.NewStep("send_order", s.sendOrder),
		flowcore.NewStep("fetch_order_pdf", s.fetchOrderPDF),
		flowcore.NewStep("submission_output", s.submissionOutput),
	)

	return []flowcore.Flow{
		flowcore.NewFlow(CleanRecord,
			flowcore.NewStep("clean", s.clean),
		),
		flowcore.NewFlow(DecomposeAddress,
			flowcore.NewStep("decode_address", s.decodeAddress),
			flowcore.NewStep("decompose", s.decompose),
		),
		flowcore.NewFlow(MapRecord,
			flowcore.NewStep("decode_mapping", s.decodeMapping),
			flowcore.NewStep("map", s.mapRecord),
		),
		flowcore.NewFlow(AssembleDocument, assemble...),
		flowcore.NewFlow(SubmitDocument, submit...),
		flowcore.NewFlow(SyncTableRows,
			flowcore.NewStep("decode_rows", s.decodeRows),
			flowcore.NewStep("clean_rows", s.cleanRows),
			flowcore.NewStep("post_rows", s.postRows),
		),
	}
}
