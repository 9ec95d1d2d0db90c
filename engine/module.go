package engine

import "github.com/prodrules/prodrules/agenda"

// Module is a namespace with its own agenda and construct list.
// Import/export lists referencing constructs in other modules are a
// frontend/linker concern; Module here only owns the per-module agenda
// and rule set.
type Module struct {
	Name  string
	rules map[string]*Rule

	Agenda *agenda.Agenda
}

func newModule(name string, strategy agenda.Strategy, mode agenda.SalienceEvaluationMode) *Module {
	a := agenda.New(strategy)
	a.SetSalienceEvaluationMode(mode)
	return &Module{Name: name, rules: make(map[string]*Rule), Agenda: a}
}

// Rules returns every rule currently installed in this module.
func (m *Module) Rules() []*Rule {
	out := make([]*Rule, 0, len(m.rules))
	for _, r := range m.rules {
		out = append(out, r)
	}
	return out
}
