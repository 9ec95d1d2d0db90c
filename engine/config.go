package engine

import (
	"fmt"

	"github.com/prodrules/prodrules/agenda"
)

// Config holds an Environment's construction-time options.
type Config struct {
	// AllowDuplicateFacts disables the duplicate-fact check on Assert
	// when true.
	AllowDuplicateFacts bool

	// DefaultStrategy is the agenda strategy new modules are created
	// with.
	DefaultStrategy agenda.Strategy

	// SalienceEvaluationMode selects whether dynamic salience forces a
	// re-sort every cycle.
	SalienceEvaluationMode agenda.SalienceEvaluationMode

	// MaxActivationRecursion bounds how many nested Run-triggered
	// firings (actions that themselves assert/retract, repeatedly
	// reactivating rules) are permitted before Run reports a resource
	// error instead of looping forever on a runaway rule set. Zero
	// means unbounded.
	MaxActivationRecursion int

	// HaltOnEvaluationError selects the evaluation-error propagation
	// policy: when true, an action evaluator error halts the
	// engine; when false, it aborts only the current firing and Run
	// continues with the next activation.
	HaltOnEvaluationError bool
}

// DefaultConfig returns the engine's out-of-the-box configuration:
// duplicates disabled, depth strategy, salience evaluated once at
// activation time, no recursion bound, continue past evaluation errors.
func DefaultConfig() Config {
	return Config{
		AllowDuplicateFacts:    false,
		DefaultStrategy:        agenda.Depth,
		SalienceEvaluationMode: agenda.WhenDefined,
		MaxActivationRecursion: 0,
		HaltOnEvaluationError:  false,
	}
}

// ConfigError reports an invalid Config field.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config field %s: %s", e.Field, e.Message)
}

// Validate checks c for internally inconsistent settings.
func (c Config) Validate() error {
	if c.MaxActivationRecursion < 0 {
		return &ConfigError{Field: "MaxActivationRecursion", Message: "must be >= 0"}
	}
	switch c.DefaultStrategy {
	case agenda.Depth, agenda.Breadth, agenda.Lex, agenda.MEA, agenda.Simplicity, agenda.Complexity, agenda.Random:
	default:
		return &ConfigError{Field: "DefaultStrategy", Message: "unknown strategy"}
	}
	switch c.SalienceEvaluationMode {
	case agenda.WhenDefined, agenda.EveryCycle:
	default:
		return &ConfigError{Field: "SalienceEvaluationMode", Message: "unknown salience evaluation mode"}
	}
	return nil
}
