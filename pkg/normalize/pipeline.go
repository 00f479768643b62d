package normalize

import (
	"strings"

	"ordernorm/pkg/logger"
	"ordernorm/pkg/sanitizer"
	"ordernorm/pkg/value"
)

const (
	StepCapitalizeKeys = "capitalize_keys"
	StepMoney          = "money"
	StepPercentage     = "percentage"
	StepUnderscoreKeys = "underscore_keys"
	StepDatePrefix     = "dates"
	StepNumeric        = "numeric"
)

// Options carries what used to be hard-coded in the cleaner. The zero value
// is not usable; start from DefaultOptions.
type Options struct {
	// DateInputFormats are tried in order, one pass each. A string that
	// matches an earlier format is rewritten by that pass and is normally no
	// longer a match for the later ones.
	DateInputFormats []string
	DateOutputFormat string
	CurrencySymbols  []string

	Log *logger.Logger
}

func DefaultOptions() Options {
	return Options{
		DateInputFormats: []string{DateFormatUS, DateFormatDayFirst},
		DateOutputFormat: DateFormatISO,
		CurrencySymbols:  DefaultCurrencySymbols,
	}
}

// Step is one whole-document pass.
type Step struct {
	Name  string
	Apply func(value.Value) value.Value
}

type Pipeline struct {
	steps []Step
	log   *logger.Logger
}

// New builds the cleaning pipeline in its fixed order.
func New(opts Options) *Pipeline {
	opts.CurrencySymbols = sanitizer.Distinct(opts.CurrencySymbols, strings.TrimSpace)
	if len(opts.CurrencySymbols) == 0 {
		opts.CurrencySymbols = DefaultCurrencySymbols
	}
	if opts.DateOutputFormat == "" {
		opts.DateOutputFormat = DateFormatISO
	}

	steps := []Step{
		{Name: StepCapitalizeKeys, Apply: CapitalizeKeys},
		{Name: StepMoney, Apply: leafStep(MoneyNormalizer(opts.CurrencySymbols))},
		{Name: StepPercentage, Apply: leafStep(NormalizePercentage)},
		{Name: StepUnderscoreKeys, Apply: UnderscoreKeys},
	}
	for _, format := range opts.DateInputFormats {
		steps = append(steps, Step{
			Name:  StepDatePrefix + "[" + format + "]",
			Apply: leafStep(DateReformatter(format, opts.DateOutputFormat)),
		})
	}
	steps = append(steps, Step{Name: StepNumeric, Apply: leafStep(CoerceNumeric)})

	return &Pipeline{steps: steps, log: opts.Log}
}

func leafStep(fn LeafFunc) func(value.Value) value.Value {
	return func(v value.Value) value.Value {
		return WalkLeaves(v, fn)
	}
}

// Steps returns the step names in execution order.
func (p *Pipeline) Steps() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name
	}
	return names
}

// Clean returns the canonical form of record. It never fails: strings no
// step recognises are carried through untouched.
func (p *Pipeline) Clean(record value.Value) value.Value {
	out := record
	for _, step := range p.steps {
		out = step.Apply(out)
		if p.log != nil {
			p.log.Debug("normalize step applied", "step", step.Name)
		}
	}
	return out
}

var defaultPipeline = New(DefaultOptions())

// Clean runs the default pipeline.
func Clean(record value.Value) value.Value {
	return defaultPipeline.Clean(record)
}
