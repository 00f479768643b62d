// Package mapping reshapes one record into another with a declarative rule
// table and merges sub-objects into a single document.
package mapping

import (
	"fmt"

	"ordernorm/pkg/logger"
	"ordernorm/pkg/value"
)

// TransformFunc converts a mapped value. It must not fail; transforms that
// cannot handle a value return it unchanged.
type TransformFunc func(value.Value) value.Value

// Rule copies Input to Output, through Transform when it is set.
type Rule struct {
	Input     string
	Output    string
	Transform TransformFunc
}

// Rules are applied in order. Two rules writing the same output key leave
// the later value in the earlier position.
type Rules []Rule

// Direct builds a rule that copies input to output unchanged.
func Direct(input, output string) Rule {
	return Rule{Input: input, Output: output}
}

// Transformed builds a rule that runs fn on the copied value.
func Transformed(input, output string, fn TransformFunc) Rule {
	return Rule{Input: input, Output: output, Transform: fn}
}

// Warning notes an input key a rule expected but the record did not have.
type Warning struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

func (w Warning) String() string {
	return fmt.Sprintf("input key %q not found in input data", w.Input)
}

// MapFields applies rules to input. Missing keys are reported as warnings
// and skipped; they never stop the remaining rules.
func MapFields(input *value.Object, rules Rules) (*value.Object, []Warning) {
	out := value.NewObject()
	var warnings []Warning

	for _, rule := range rules {
		v, ok := input.Get(rule.Input)
		if !ok {
			warnings = append(warnings, Warning{Input: rule.Input, Output: rule.Output})
			continue
		}
		if rule.Transform != nil {
			v = rule.Transform(v)
		}
		out.Set(rule.Output, v)
	}
	return out, warnings
}

// Mapper is MapFields with warnings sent to a logger.
type Mapper struct {
	log *logger.Logger
}

func NewMapper(log *logger.Logger) *Mapper {
	if log == nil {
		log = logger.Discard()
	}
	return &Mapper{log: log}
}

func (m *Mapper) Map(input *value.Object, rules Rules) (*value.Object, []Warning) {
	out, warnings := MapFields(input, rules)
	for _, w := range warnings {
		m.log.Warn("mapping input key missing",
			"input", w.Input,
			"output", w.Output,
		)
	}
	return out, warnings
}
