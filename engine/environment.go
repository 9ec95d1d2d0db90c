// Package engine is the execution engine and the single context object
// that owns every other subsystem: the symbol table, working memory,
// alpha/beta networks, and the per-module agendas, wired together
// behind one struct and a small public API.
package engine

import (
	"sync"

	"github.com/prodrules/prodrules/agenda"
	"github.com/prodrules/prodrules/alpha"
	"github.com/prodrules/prodrules/analysis"
	"github.com/prodrules/prodrules/beta"
	"github.com/prodrules/prodrules/router"
	"github.com/prodrules/prodrules/support"
	"github.com/prodrules/prodrules/symbol"
	"github.com/prodrules/prodrules/wm"
)

// DefaultModuleName is the module every fresh Environment starts with
// focus on.
const DefaultModuleName = "MAIN"

// Environment is the single context object owning every subsystem's
// state, with no process-wide statics — constructing a second
// Environment gives a second, fully independent engine.
type Environment struct {
	mu sync.RWMutex

	cfg Config

	table   *symbol.Table
	wmem    *wm.WorkingMemory
	alphaN  *alpha.Network
	betaN   *beta.Network
	router  *router.Router
	support *support.Manager

	templates map[string]*wm.Template
	classes   map[string]*wm.Class
	rules     map[string]*Rule
	modules   map[string]*Module
	focus     []*Module

	nextClassID uint32

	halted   bool
	watching WatchCategory

	// firingRule/firingPrefix are set for the duration of one rule
	// firing's action list so assertFact/AssertInstance can register
	// logical support without threading the prefix through
	// every Action signature.
	firingRule   *Rule
	firingPrefix []wm.Entity
}

// New creates an Environment with every table empty and the symbol
// store's boolean primitives installed, after validating cfg.
func New(cfg Config) (*Environment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	env := &Environment{
		cfg:       cfg,
		table:     symbol.NewTable(),
		alphaN:    alpha.NewNetwork(),
		betaN:     beta.NewNetwork(),
		router:    router.New(),
		templates: make(map[string]*wm.Template),
		classes:   make(map[string]*wm.Class),
		rules:     make(map[string]*Rule),
		modules:   make(map[string]*Module),
	}
	env.wmem = wm.New(env.table, cfg.AllowDuplicateFacts)
	env.wmem.AttachNetwork(env.alphaN)
	env.support = support.NewManager(env.retractSupported)
	main := env.defineModuleLocked(DefaultModuleName)
	env.focus = []*Module{main}
	return env, nil
}

// Table returns the engine's symbol intern table.
func (env *Environment) Table() *symbol.Table { return env.table }

// Router returns the engine's output sink router.
func (env *Environment) Router() *router.Router { return env.router }

// WorkingMemory returns the underlying working memory, for operations
// Environment doesn't wrap directly (raw iteration, fact counts).
func (env *Environment) WorkingMemory() *wm.WorkingMemory { return env.wmem }

// Config returns a copy of the engine's active configuration.
func (env *Environment) Config() Config { return env.cfg }

func (env *Environment) defineModuleLocked(name string) *Module {
	mod := newModule(name, env.cfg.DefaultStrategy, env.cfg.SalienceEvaluationMode)
	env.modules[name] = mod
	return mod
}

// DefineModule creates a module if it doesn't already exist, returning
// the existing one otherwise.
func (env *Environment) DefineModule(name string) *Module {
	env.mu.Lock()
	defer env.mu.Unlock()
	if mod, ok := env.modules[name]; ok {
		return mod
	}
	return env.defineModuleLocked(name)
}

// Modules returns every defined module.
func (env *Environment) Modules() []*Module {
	env.mu.RLock()
	defer env.mu.RUnlock()
	out := make([]*Module, 0, len(env.modules))
	for _, m := range env.modules {
		out = append(out, m)
	}
	return out
}

// --- Construct lifecycle ---------------------------------

// DefineTemplate installs tmpl, making it available to DefineRule.
func (env *Environment) DefineTemplate(tmpl *wm.Template) {
	env.mu.Lock()
	defer env.mu.Unlock()
	env.templates[tmpl.Name] = tmpl
}

// Template looks up a defined template by name.
func (env *Environment) Template(name string) (*wm.Template, bool) {
	env.mu.RLock()
	defer env.mu.RUnlock()
	t, ok := env.templates[name]
	return t, ok
}

// Templates returns every defined template.
func (env *Environment) Templates() []*wm.Template {
	env.mu.RLock()
	defer env.mu.RUnlock()
	out := make([]*wm.Template, 0, len(env.templates))
	for _, t := range env.templates {
		out = append(out, t)
	}
	return out
}

// RemoveTemplate removes a template definition, failing with
// ConstructInUse if any installed rule still patterns against it.
func (env *Environment) RemoveTemplate(name string) error {
	env.mu.Lock()
	defer env.mu.Unlock()
	if _, ok := env.templates[name]; !ok {
		return &Error{Kind: UnknownTemplate, Message: name}
	}
	for _, r := range env.rules {
		if ruleReferencesType(r, name, false) {
			return &Error{Kind: ConstructInUse, Message: name}
		}
	}
	delete(env.templates, name)
	return nil
}

// DefineClass installs a class, resolving its slots across supers and
// assigning it a dense class id.
func (env *Environment) DefineClass(name string, supers []*wm.Class, local []wm.Slot) *wm.Class {
	env.mu.Lock()
	defer env.mu.Unlock()
	id := env.nextClassID
	env.nextClassID++
	c := wm.NewClass(name, supers, local, id)
	env.classes[name] = c
	return c
}

// Class looks up a defined class by name.
func (env *Environment) Class(name string) (*wm.Class, bool) {
	env.mu.RLock()
	defer env.mu.RUnlock()
	c, ok := env.classes[name]
	return c, ok
}

// Classes returns every defined class.
func (env *Environment) Classes() []*wm.Class {
	env.mu.RLock()
	defer env.mu.RUnlock()
	out := make([]*wm.Class, 0, len(env.classes))
	for _, c := range env.classes {
		out = append(out, c)
	}
	return out
}

// RemoveClass removes a class definition, failing with ConstructInUse if
// any installed rule still patterns against it or another class still
// inherits from it.
func (env *Environment) RemoveClass(name string) error {
	env.mu.Lock()
	defer env.mu.Unlock()
	if _, ok := env.classes[name]; !ok {
		return &Error{Kind: UnknownClass, Message: name}
	}
	for _, r := range env.rules {
		if ruleReferencesType(r, name, true) {
			return &Error{Kind: ConstructInUse, Message: name}
		}
	}
	for _, c := range env.classes {
		for _, s := range c.Supers {
			if s.Name == name {
				return &Error{Kind: ConstructInUse, Message: name}
			}
		}
	}
	delete(env.classes, name)
	return nil
}

func ruleReferencesType(r *Rule, name string, isClass bool) bool {
	for _, d := range r.disjuncts {
		for i, tn := range d.plan.TypeNames {
			if tn == name && d.plan.IsClass[i] == isClass {
				return true
			}
		}
	}
	return false
}

// DefineRule compiles elements (already analyzed pattern/test CEs — the
// surface syntax that produces them is out of scope) into
// one alpha/beta chain per disjunct and installs rule into moduleName,
// creating the module if needed. Analysis errors abort the install with
// the engine left exactly as it was: every disjunct is
// compiled before any of them is wired into the live network.
func (env *Environment) DefineRule(name, moduleName string, elements []*analysis.Element, actions []Action, opts RuleOptions) (*Rule, error) {
	env.mu.Lock()
	defer env.mu.Unlock()

	if _, exists := env.rules[name]; exists {
		return nil, &Error{Kind: ConstructInUse, Message: name}
	}

	combos := analysis.ExpandDisjuncts(elements)

	type compiled struct {
		plan     *analysis.Plan
		patterns []analysis.CompiledPattern
	}
	resolve := func(typeName string, isClass bool) ([]wm.Slot, bool) {
		if isClass {
			c, ok := env.classes[typeName]
			if !ok {
				return nil, false
			}
			return c.Slots, true
		}
		t, ok := env.templates[typeName]
		if !ok {
			return nil, false
		}
		return t.Slots, true
	}

	results := make([]compiled, 0, len(combos))
	for _, combo := range combos {
		plan, patterns, err := analysis.Compile(combo, resolve)
		if err != nil {
			return nil, err
		}
		for i, tn := range plan.TypeNames {
			if plan.IsClass[i] {
				if _, ok := env.classes[tn]; !ok {
					return nil, &Error{Kind: UnknownClass, Message: tn}
				}
			} else if _, ok := env.templates[tn]; !ok {
				return nil, &Error{Kind: UnknownTemplate, Message: tn}
			}
		}
		results = append(results, compiled{plan: plan, patterns: patterns})
	}

	logicalUpTo := -1
	if len(results) > 0 {
		logicalUpTo = results[0].plan.LogicalUpTo
		for _, c := range results[1:] {
			if (c.plan.LogicalUpTo >= 0) != (logicalUpTo >= 0) {
				return nil, &analysis.Error{Kind: analysis.InvalidElement, Message: "disjuncts disagree on logical grouping"}
			}
		}
	}

	mod, ok := env.modules[moduleName]
	if !ok {
		mod = env.defineModuleLocked(moduleName)
	}

	rule := &Rule{
		Name:            name,
		ModuleName:      moduleName,
		Actions:         actions,
		StaticSalience:  opts.StaticSalience,
		DynamicSalience: opts.DynamicSalience,
		AutoFocus:       opts.AutoFocus,
		logicalUpTo:     logicalUpTo,
	}
	for idx, c := range results {
		rule.disjuncts = append(rule.disjuncts, env.wireDisjunct(rule, idx, c.plan, c.patterns))
		rule.Complexity += c.plan.Complexity
	}

	mod.rules[name] = rule
	env.rules[name] = rule
	env.trace(WatchCompilations, "rule %s defined in module %s (%d disjunct(s))\n", name, moduleName, len(combos))
	return rule, nil
}

func (env *Environment) wireDisjunct(rule *Rule, index int, plan *analysis.Plan, patterns []analysis.CompiledPattern) *disjunct {
	nodes := make([]alpha.NodeID, len(patterns))
	for i, p := range patterns {
		nodes[i] = env.alphaN.AddPattern(p.TypeName, p.Tests)
	}

	first := env.betaN.NewChain(plan.Kinds[0], beta.AlphaSource{Net: env.alphaN, Node: nodes[0]}, plan.RightHash[0], plan.JoinTest[0])
	cur := first
	for i := 1; i < len(patterns); i++ {
		src := beta.AlphaSource{Net: env.alphaN, Node: nodes[i]}
		cur = env.betaN.Append(cur, plan.Kinds[i], src, plan.LeftHash[i], plan.RightHash[i], plan.JoinTest[i])
	}
	env.betaN.Activate(first, cur, env, disjunctRef{rule: rule, index: index})
	return &disjunct{plan: plan, patterns: patterns, nodes: nodes, first: first, terminal: cur}
}

// RemoveRule uninstalls a rule: pending activations are withdrawn from
// its module's agenda and its beta chain is marked dead so already-
// in-flight propagation stops short of resurrecting it, but shared
// alpha nodes stay in place for any other rule still using them — see
// DESIGN.md for why this implementation's join arena doesn't reclaim
// the chain itself.
func (env *Environment) RemoveRule(name string) error {
	env.mu.Lock()
	defer env.mu.Unlock()
	rule, ok := env.rules[name]
	if !ok {
		return &Error{Kind: UnknownRule, Message: name}
	}
	rule.removed = true
	if mod, ok := env.modules[rule.ModuleName]; ok {
		for _, act := range mod.Agenda.Activations() {
			if act.Rule.Name == name {
				mod.Agenda.Remove(act.Rule, act.Token)
			}
		}
		delete(mod.rules, name)
	}
	delete(env.rules, name)
	return nil
}

// Rules returns every currently installed rule.
func (env *Environment) Rules() []*Rule {
	env.mu.RLock()
	defer env.mu.RUnlock()
	out := make([]*Rule, 0, len(env.rules))
	for _, r := range env.rules {
		out = append(out, r)
	}
	return out
}

// --- beta.ActivationSink -------------------------------------------

// Emit implements beta.ActivationSink: a disjunct's terminal join
// produced a full match, so an activation is inserted into the owning
// rule's module agenda.
func (env *Environment) Emit(ruleRef any, tok *beta.Token) {
	ref, ok := ruleRef.(disjunctRef)
	if !ok || ref.rule.removed {
		return
	}
	rule := ref.rule
	mod, ok := env.modules[rule.ModuleName]
	if !ok {
		return
	}

	salience := rule.StaticSalience
	if rule.DynamicSalience != nil {
		bc := &BindingContext{
			BindingContext: &analysis.BindingContext{Token: tok, Plan: rule.disjuncts[ref.index].plan},
			Env:            env,
		}
		if s, err := rule.DynamicSalience(bc); err == nil {
			salience = s
		}
	}

	info := agenda.RuleInfo{Name: rule.Name, Complexity: rule.Complexity, Salience: salience, Extra: ref.index}
	act := mod.Agenda.Insert(info, tok, salience)
	if act == nil {
		return
	}
	env.trace(WatchActivations, "==> Activation %s\n", rule.Name)
	if rule.AutoFocus && env.focusTop() != mod {
		env.focus = append(env.focus, mod)
	}
}

// Withdraw implements beta.ActivationSink: the partial match backing a
// pending activation no longer holds (a supporting fact was retracted,
// or a negated join's blocker set became non-empty), so the activation
// is removed before the agenda can ever pop it
// invariant).
func (env *Environment) Withdraw(ruleRef any, tok *beta.Token) {
	ref, ok := ruleRef.(disjunctRef)
	if !ok {
		return
	}
	mod, ok := env.modules[ref.rule.ModuleName]
	if !ok {
		return
	}
	mod.Agenda.Remove(agenda.RuleInfo{Name: ref.rule.Name}, tok)
	env.trace(WatchActivations, "<== Activation %s\n", ref.rule.Name)
}

// --- Working memory operations ----------------------------

// AssertFact asserts a new fact of the named template.
func (env *Environment) AssertFact(templateName string, values []symbol.Value) (*wm.Fact, error) {
	tmpl, ok := env.templates[templateName]
	if !ok {
		return nil, &Error{Kind: UnknownTemplate, Message: templateName}
	}
	return env.assertFact(tmpl, values, nil)
}

func (env *Environment) assertFact(tmpl *wm.Template, values []symbol.Value, _ *BindingContext) (*wm.Fact, error) {
	f, err := env.wmem.AssertFact(tmpl, values)
	if err != nil {
		return nil, err
	}
	env.trace(WatchFacts, "==> %s\n", tmpl.Name)
	if env.firingRule != nil && env.firingRule.IsLogical() && len(env.firingPrefix) > 0 {
		env.support.Register(f, env.firingPrefix)
	}
	return f, nil
}

// RetractFact retracts f, cascading through alpha/beta memories and
// logical support before returning.
func (env *Environment) RetractFact(f *wm.Fact) error {
	if err := env.wmem.RetractFact(f); err != nil {
		return err
	}
	env.trace(WatchFacts, "<== %s\n", f.Template().Name)
	env.support.Forget(f)
	env.support.NotifyRetract(f)
	return nil
}

// ModifyFact retract-then-asserts f with updates applied.
func (env *Environment) ModifyFact(f *wm.Fact, updates map[string]symbol.Value) (*wm.Fact, error) {
	env.support.Forget(f)
	nf, err := env.wmem.ModifyFact(f, updates)
	if err != nil {
		return nil, err
	}
	env.support.NotifyRetract(f)
	return nf, nil
}

// AssertInstance asserts a new instance of the named class.
func (env *Environment) AssertInstance(className string, name *symbol.Atom, values []symbol.Value) (*wm.Instance, error) {
	cls, ok := env.classes[className]
	if !ok {
		return nil, &Error{Kind: UnknownClass, Message: className}
	}
	inst, err := env.wmem.AssertInstance(cls, name, values)
	if err != nil {
		return nil, err
	}
	env.trace(WatchFacts, "==> [%s]\n", name.SymbolText())
	if env.firingRule != nil && env.firingRule.IsLogical() && len(env.firingPrefix) > 0 {
		env.support.Register(inst, env.firingPrefix)
	}
	return inst, nil
}

// RetractInstance retracts inst, cascading the same way RetractFact does.
func (env *Environment) RetractInstance(inst *wm.Instance) error {
	if err := env.wmem.RetractInstance(inst); err != nil {
		return err
	}
	env.trace(WatchFacts, "<== [%s]\n", inst.Name().SymbolText())
	env.support.Forget(inst)
	env.support.NotifyRetract(inst)
	return nil
}

// ModifyInstance updates inst's slots in place, preserving the basis
// snapshot for the remainder of the current firing. Unlike ModifyFact,
// inst keeps its identity across the modify (no retract/assert of a new
// entity), so there is nothing to cascade-retract; but if the firing
// rule is logical, inst's prior supporters are dropped and replaced
// with this firing's prefix, mirroring ModifyFact's retract-then-assert
// rebinding of logical support rather than leaving inst pointed at
// whatever justified it before the modify.
func (env *Environment) ModifyInstance(inst *wm.Instance, updates map[string]symbol.Value) error {
	env.support.Forget(inst)
	if err := env.wmem.ModifyInstance(inst, updates); err != nil {
		return err
	}
	if env.firingRule != nil && env.firingRule.IsLogical() && len(env.firingPrefix) > 0 {
		env.support.Register(inst, env.firingPrefix)
	}
	return nil
}

func (env *Environment) retractSupported(e wm.Entity) error {
	switch v := e.(type) {
	case *wm.Fact:
		return env.RetractFact(v)
	case *wm.Instance:
		return env.RetractInstance(v)
	default:
		return nil
	}
}

// IterateFacts calls f for every live fact of the named template.
func (env *Environment) IterateFacts(templateName string, f func(*wm.Fact) bool) {
	env.wmem.IterateByTemplate(templateName, f)
}

// IterateInstances calls f for every live instance of the named class.
func (env *Environment) IterateInstances(className string, f func(*wm.Instance) bool) {
	env.wmem.IterateByClass(className, f)
}

// --- Execution ops -----------------------------------------

func (env *Environment) focusTop() *Module {
	if len(env.focus) == 0 {
		return nil
	}
	return env.focus[len(env.focus)-1]
}

// FocusPush pushes moduleName onto the focus stack.
func (env *Environment) FocusPush(moduleName string) error {
	env.mu.Lock()
	defer env.mu.Unlock()
	mod, ok := env.modules[moduleName]
	if !ok {
		return &Error{Kind: UnknownModule, Message: moduleName}
	}
	env.focus = append(env.focus, mod)
	return nil
}

// FocusPop pops and returns the top of the focus stack, or nil if empty.
func (env *Environment) FocusPop() *Module {
	env.mu.Lock()
	defer env.mu.Unlock()
	if len(env.focus) == 0 {
		return nil
	}
	top := env.focus[len(env.focus)-1]
	env.focus = env.focus[:len(env.focus)-1]
	return top
}

// FocusClear empties the focus stack.
func (env *Environment) FocusClear() {
	env.mu.Lock()
	defer env.mu.Unlock()
	env.focus = env.focus[:0]
}

// FocusStack returns the current focus stack, bottom to top.
func (env *Environment) FocusStack() []string {
	env.mu.RLock()
	defer env.mu.RUnlock()
	out := make([]string, len(env.focus))
	for i, m := range env.focus {
		out[i] = m.Name
	}
	return out
}

// SetStrategy sets moduleName's agenda ordering strategy.
func (env *Environment) SetStrategy(moduleName string, s agenda.Strategy) error {
	env.mu.Lock()
	defer env.mu.Unlock()
	mod, ok := env.modules[moduleName]
	if !ok {
		return &Error{Kind: UnknownModule, Message: moduleName}
	}
	mod.Agenda.SetStrategy(s)
	return nil
}

// SetSalienceEvaluationMode sets moduleName's dynamic-salience re-sort policy.
func (env *Environment) SetSalienceEvaluationMode(moduleName string, m agenda.SalienceEvaluationMode) error {
	env.mu.Lock()
	defer env.mu.Unlock()
	mod, ok := env.modules[moduleName]
	if !ok {
		return &Error{Kind: UnknownModule, Message: moduleName}
	}
	mod.Agenda.SetSalienceEvaluationMode(m)
	return nil
}

// AgendaFor returns moduleName's agenda, for introspection.
func (env *Environment) AgendaFor(moduleName string) (*agenda.Agenda, error) {
	env.mu.RLock()
	defer env.mu.RUnlock()
	mod, ok := env.modules[moduleName]
	if !ok {
		return nil, &Error{Kind: UnknownModule, Message: moduleName}
	}
	return mod.Agenda, nil
}

// Halt requests that Run stop after the current action returns, with
// the agenda left intact.
func (env *Environment) Halt() { env.halted = true }

func (env *Environment) resortIfNeeded(mod *Module) {
	if mod.Agenda.Mode() != agenda.EveryCycle {
		return
	}
	changed := false
	for _, act := range mod.Agenda.Activations() {
		rule, ok := env.rules[act.Rule.Name]
		if !ok || rule.DynamicSalience == nil {
			continue
		}
		idx, _ := act.Rule.Extra.(int)
		if idx < 0 || idx >= len(rule.disjuncts) {
			continue
		}
		bc := &BindingContext{
			BindingContext: &analysis.BindingContext{Token: act.Token, Plan: rule.disjuncts[idx].plan},
			Env:            env,
		}
		s, err := rule.DynamicSalience(bc)
		if err != nil || s == act.Salience {
			continue
		}
		act.Salience = s
		changed = true
	}
	if changed {
		mod.Agenda.Resort()
	}
}

// Run pops and fires activations from the top of the focus stack until
// it empties, maxFirings fires have run (a negative maxFirings means
// unbounded), or Halt is called. It returns the number of rules fired.
func (env *Environment) Run(maxFirings int) (int, error) {
	fired := 0
	for {
		if env.halted {
			env.halted = false
			return fired, nil
		}
		if maxFirings >= 0 && fired >= maxFirings {
			return fired, nil
		}
		if env.cfg.MaxActivationRecursion > 0 && fired >= env.cfg.MaxActivationRecursion {
			return fired, &Error{Kind: RecursionLimitExceeded, Message: "Run"}
		}

		top := env.focusTop()
		if top == nil {
			return fired, nil
		}
		env.resortIfNeeded(top)
		act := top.Agenda.PopHighest()
		if act == nil {
			env.focus = env.focus[:len(env.focus)-1]
			continue
		}

		if err := env.fire(act); err != nil {
			if env.cfg.HaltOnEvaluationError {
				return fired, err
			}
		}
		fired++
	}
}

func prefixEntities(tok *beta.Token, upTo int) []wm.Entity {
	if upTo < 0 {
		return nil
	}
	n := upTo + 1
	if n > tok.Depth() {
		n = tok.Depth()
	}
	out := make([]wm.Entity, 0, n)
	for i := 0; i < n; i++ {
		if e := tok.At(i); e != nil {
			out = append(out, e)
		}
	}
	return out
}

func (env *Environment) fire(act *agenda.Activation) error {
	rule, ok := env.rules[act.Rule.Name]
	if !ok {
		return nil
	}
	idx, _ := act.Rule.Extra.(int)
	if idx < 0 || idx >= len(rule.disjuncts) {
		idx = 0
	}
	plan := rule.disjuncts[idx].plan

	env.trace(WatchRules, "FIRE %d %s\n", act.Seq, rule.Name)

	env.firingRule = rule
	if rule.IsLogical() {
		env.firingPrefix = prefixEntities(act.Token, plan.LogicalUpTo)
	} else {
		env.firingPrefix = nil
	}

	bc := &BindingContext{
		BindingContext: &analysis.BindingContext{Token: act.Token, Plan: plan},
		Env:            env,
	}

	var ferr error
	for _, action := range rule.Actions {
		if err := action(bc); err != nil {
			ferr = &Error{Kind: EvaluationFailed, Message: rule.Name, Cause: err}
			break
		}
	}

	env.firingRule = nil
	env.firingPrefix = nil
	env.wmem.CommitDirtyInstances()
	return ferr
}

// Reset retracts every fact and instance (cascading through logical
// support), drains every module's agenda, and resets focus to just
// MAIN — restoring the state a fresh New(cfg) would have, short of
// forgetting defined templates/classes/rules.
func (env *Environment) Reset() {
	env.mu.Lock()
	defer env.mu.Unlock()

	var facts []*wm.Fact
	var insts []*wm.Instance
	env.wmem.IterateAll(
		func(f *wm.Fact) bool { facts = append(facts, f); return true },
		func(i *wm.Instance) bool { insts = append(insts, i); return true },
	)
	for _, f := range facts {
		_ = env.RetractFact(f)
	}
	for _, i := range insts {
		_ = env.RetractInstance(i)
	}
	for _, mod := range env.modules {
		for mod.Agenda.Len() > 0 {
			mod.Agenda.PopHighest()
		}
	}
	if main, ok := env.modules[DefaultModuleName]; ok {
		env.focus = []*Module{main}
	} else {
		env.focus = env.focus[:0]
	}
	env.halted = false
}

// Close tears the engine down in reverse construction order :
// retract all facts (Reset already cascades through logical support),
// drain activations, then drop rules, templates/classes, and finally
// the symbol store itself.
func (env *Environment) Close() {
	env.Reset()
	env.mu.Lock()
	defer env.mu.Unlock()
	env.rules = nil
	env.modules = nil
	env.templates = nil
	env.classes = nil
	env.table = nil
}
