package mapping

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// RuleFile is the YAML form of a rule table:
//
//	version: "1"
//	rules:
//	  - input: order id
//	    output: OrderNumber
//	  - input: order date
//	    output: OrderDate
//	    transform: date
//	    args: ["%m/%d/%Y", "%Y-%m-%d"]
type RuleFile struct {
	Version string     `yaml:"version" validate:"oneof=1"`
	Rules   []RuleSpec `yaml:"rules" validate:"dive"`
}

type RuleSpec struct {
	Input     string   `yaml:"input" json:"input" validate:"required"`
	Output    string   `yaml:"output,omitempty" json:"output,omitempty" validate:"required"`
	Transform string   `yaml:"transform,omitempty" json:"transform,omitempty" validate:"required_with=Args"`
	Args      []string `yaml:"args,omitempty" json:"args,omitempty"`
}

// LoadRulesFile reads and compiles a YAML rule table.
func LoadRulesFile(path string, reg *Registry) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}
	return ParseRules(data, reg)
}

// ParseRules parses YAML data and resolves transforms against reg, or the
// default registry when reg is nil.
func ParseRules(data []byte, reg *Registry) (Rules, error) {
	var rf RuleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse rules YAML: %w", err)
	}
	applyDefaults(&rf)
	return rf.Compile(reg)
}

// CompileSpecs compiles rules that did not come from a file, such as the
// rules of an API request.
func CompileSpecs(specs []RuleSpec, reg *Registry) (Rules, error) {
	rf := RuleFile{Rules: append([]RuleSpec(nil), specs...)}
	applyDefaults(&rf)
	return rf.Compile(reg)
}

func applyDefaults(rf *RuleFile) {
	if rf.Version == "" {
		rf.Version = "1"
	}
	for i := range rf.Rules {
		if rf.Rules[i].Output == "" {
			rf.Rules[i].Output = rf.Rules[i].Input
		}
	}
}

// Compile turns specs into rules, failing on the first bad entry.
func (rf *RuleFile) Compile(reg *Registry) (Rules, error) {
	if reg == nil {
		reg = DefaultRegistry
	}
	if err := rf.Validate(); err != nil {
		return nil, err
	}

	rules := make(Rules, 0, len(rf.Rules))
	for i, spec := range rf.Rules {
		rule := Rule{Input: spec.Input, Output: spec.Output}
		if spec.Transform != "" {
			fn, err := reg.Build(spec.Transform, spec.Args)
			if err != nil {
				return nil, fmt.Errorf("rule %d (%s): %w", i+1, spec.Input, err)
			}
			rule.Transform = fn
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// Validate reports every structural problem of the table at once. Output
// is only required after defaults were applied.
func (rf *RuleFile) Validate() error {
	err := validate.Struct(rf)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	problems := make([]string, len(verrs))
	for i, fe := range verrs {
		problems[i] = describeRule(fe)
	}
	return fmt.Errorf("invalid rule table: %s", strings.Join(problems, "; "))
}

func describeRule(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "RuleFile.")
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "required_with":
		return field + " is required when args are given"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}

// Marshal serializes a RuleFile to YAML.
func Marshal(rf *RuleFile) ([]byte, error) {
	return yaml.Marshal(rf)
}
