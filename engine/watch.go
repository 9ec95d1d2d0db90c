package engine

import "github.com/prodrules/prodrules/router"

// WatchCategory is one bit of the introspection bitmask: facts, rules,
// activations, compilations, or statistics. The text format for traced
// output is the router's and host's concern, not this package's.
type WatchCategory uint8

const (
	WatchFacts WatchCategory = 1 << iota
	WatchRules
	WatchActivations
	WatchCompilations
	WatchStatistics
)

// Watch turns on tracing for the given categories, writing through
// router.WTrace.
func (env *Environment) Watch(categories WatchCategory) {
	env.watching |= categories
}

// Unwatch turns off tracing for the given categories.
func (env *Environment) Unwatch(categories WatchCategory) {
	env.watching &^= categories
}

// IsWatched reports whether every bit of categories is currently on.
func (env *Environment) IsWatched(categories WatchCategory) bool {
	return env.watching&categories == categories
}

func (env *Environment) trace(cat WatchCategory, format string, args ...any) {
	if !env.IsWatched(cat) || env.router == nil {
		return
	}
	env.router.Printf(router.WTrace, format, args...)
}
