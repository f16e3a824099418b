package filter

import "github.com/s0up4200/marquee/catalog"

// Filter defines the basic interface for item filters
type Filter interface {
	// Evaluate checks if an item matches the filter criteria
	Evaluate(item catalog.Item) bool
}

// CompiledFilter represents a pre-compiled filter ready for evaluation
type CompiledFilter interface {
	Filter

	// Expression returns the original filter expression
	Expression() string
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	// Compile parses and compiles a filter expression
	Compile(expression string) (CompiledFilter, error)
}

// CachingCompiler provides caching for compiled filters
type CachingCompiler interface {
	Compiler

	// Clear removes all cached filters
	Clear()

	// Size returns the number of cached filters
	Size() int
}

// Func adapts a plain predicate to the Filter interface
type Func func(item catalog.Item) bool

// Evaluate calls f
func (f Func) Evaluate(item catalog.Item) bool {
	return f(item)
}

// Apply returns the items matching every filter, preserving order
func Apply(items []catalog.Item, filters ...Filter) []catalog.Item {
	out := make([]catalog.Item, 0, len(items))
	for _, item := range items {
		if matchesAll(item, filters) {
			out = append(out, item)
		}
	}
	return out
}

func matchesAll(item catalog.Item, filters []Filter) bool {
	for _, f := range filters {
		if f != nil && !f.Evaluate(item) {
			return false
		}
	}
	return true
}
