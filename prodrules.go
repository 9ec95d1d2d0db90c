// Package prodrules provides a forward-chaining production rule engine
// for Go.
//
// prodrules implements the classic Rete-style architecture: facts and
// instances are matched against rule left-hand sides by a shared
// discrimination network (the alpha network) and a chain of two-input
// joins (the beta network), producing activations that an agenda orders
// by salience and firing strategy before the engine runs them.
//
// Basic usage:
//
//	env, err := prodrules.New(prodrules.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	env.DefineTemplate(wm.NewTemplate("person", []wm.Slot{
//	    {Name: "name", Constraint: constraint.Unconstrained()},
//	}))
//	env.DefineRule("greet", prodrules.DefaultModuleName, elements, actions, prodrules.RuleOptions{})
//	env.AssertFact("person", []symbol.Value{table.Symbol("alice")})
//	env.Run(-1)
//
// Limitations (v1.0):
//   - No surface rule-definition syntax: callers build analysis.Element
//     trees and Action closures directly (see package analysis).
//   - No built-in expression language: RHS actions and test-CEs are host
//     Go closures, not an embedded mini-language.
package prodrules

import (
	"github.com/prodrules/prodrules/agenda"
	"github.com/prodrules/prodrules/analysis"
	"github.com/prodrules/prodrules/engine"
	"github.com/prodrules/prodrules/router"
	"github.com/prodrules/prodrules/symbol"
	"github.com/prodrules/prodrules/wm"
)

// Environment is the engine's single context object: the symbol table,
// working memory, alpha/beta networks, and per-module agendas needed to
// define constructs, assert facts, and run rules.
type Environment = engine.Environment

// Config holds an Environment's construction-time options.
type Config = engine.Config

// Action is one compiled rule right-hand-side step.
type Action = engine.Action

// BindingContext is what a rule's actions and dynamic-salience
// expression run against.
type BindingContext = engine.BindingContext

// RuleOptions carries a rule's agenda-facing knobs (salience, auto-focus).
type RuleOptions = engine.RuleOptions

// Rule is a named, installed construct.
type Rule = engine.Rule

// Module is a namespace with its own agenda and construct list.
type Module = engine.Module

// WatchCategory selects a tracing category.
type WatchCategory = engine.WatchCategory

// Watch categories, re-exported for callers that don't want to import
// package engine directly.
const (
	WatchFacts        = engine.WatchFacts
	WatchRules        = engine.WatchRules
	WatchActivations  = engine.WatchActivations
	WatchCompilations = engine.WatchCompilations
	WatchStatistics   = engine.WatchStatistics
	DefaultModuleName = engine.DefaultModuleName
)

// Strategy selects how activations within one salience group are ordered.
type Strategy = agenda.Strategy

// Agenda strategies, re-exported for convenience.
const (
	Depth      = agenda.Depth
	Breadth    = agenda.Breadth
	Lex        = agenda.Lex
	MEA        = agenda.MEA
	Simplicity = agenda.Simplicity
	Complexity = agenda.Complexity
	Random     = agenda.Random
)

// SalienceEvaluationMode selects whether dynamic salience re-sorts the
// agenda every cycle or only once at activation time.
type SalienceEvaluationMode = agenda.SalienceEvaluationMode

const (
	WhenDefined = agenda.WhenDefined
	EveryCycle  = agenda.EveryCycle
)

// Element, PatternCE, TestCE, and SlotSpec build a rule's left-hand side.
type (
	Element   = analysis.Element
	PatternCE = analysis.PatternCE
	TestCE    = analysis.TestCE
	SlotSpec  = analysis.SlotSpec
)

// Router is the host-pluggable named output sink.
type Router = router.Router

// Logical sink names.
const (
	WError   = router.WError
	WTrace   = router.WTrace
	WDialog  = router.WDialog
	WDisplay = router.WDisplay
)

// Template, Class, Slot, Fact, and Instance are working-memory types.
type (
	Template = wm.Template
	Class    = wm.Class
	Slot     = wm.Slot
	Fact     = wm.Fact
	Instance = wm.Instance
	Entity   = wm.Entity
)

// DefaultConfig returns the engine's out-of-the-box configuration.
func DefaultConfig() Config { return engine.DefaultConfig() }

// New constructs a fresh, independent Environment.
func New(cfg Config) (*Environment, error) { return engine.New(cfg) }

// NewTemplate builds a fact template.
func NewTemplate(name string, slots []Slot) *Template { return wm.NewTemplate(name, slots) }

// NewOrderedTemplate builds the one-implicit-multifield-slot template
// used for ordered facts.
func NewOrderedTemplate(name string) *Template { return wm.NewOrderedTemplate(name) }

// NewSymbolTable creates an empty symbol intern table, exposed for
// callers assembling constants outside of an Environment (e.g. test
// fixtures shared across more than one Environment).
func NewSymbolTable() *symbol.Table { return symbol.NewTable() }
