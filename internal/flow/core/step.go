package core

type Step struct {
	Name    string
	Execute func(ctx *FlowContext) error
}

func NewStep(name string, execute func(ctx *FlowContext) error) *Step {
	return &Step{
		Name:    name,
		Execute: execute,
	}
}

type Flow interface {
	Name() string
	Steps() []*Step
}

type flow struct {
	name  string
	steps []*Step
}

func NewFlow(name string, steps ...*Step) Flow {
	return &flow{name: name, steps: steps}
}

func (f *flow) Name() string   { return f.name }
func (f *flow) Steps() []*Step { return f.steps }
