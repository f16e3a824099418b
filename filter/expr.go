package filter

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/s0up4200/marquee/catalog"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	custom     map[string]any
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache[CompiledFilter](size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.custom, funcs)
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) CachingCompiler {
	c := &exprCompiler{
		custom: make(map[string]any),
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// exprCompiler implements CachingCompiler for expr-based filters
type exprCompiler struct {
	custom map[string]any
	cache  *lruCache[CompiledFilter]
}

// Compile compiles an expression into an executable filter
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	// a zero item gives the checker the type of every field and helper
	env := runtimeEnvironment(catalog.Item{}, c.custom)
	program, err := expr.Compile(expression,
		expr.Env(env),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	filter := &exprFilter{
		expression: expression,
		program:    program,
		custom:     c.custom,
	}

	if c.cache != nil {
		c.cache.Put(expression, filter)
	}
	return filter, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

// Evaluate evaluates the filter against an item. Items the expression
// cannot be evaluated on do not match.
func (f *exprFilter) Evaluate(item catalog.Item) bool {
	result, err := expr.Run(f.program, runtimeEnvironment(item, f.custom))
	if err != nil {
		return false
	}
	return result.(bool)
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// addHelperFunctions adds the item-independent helpers to env
func addHelperFunctions(env map[string]any) {
	// Date helpers
	env["daysAgo"] = func(days int) time.Time {
		return time.Now().AddDate(0, 0, -days)
	}
	env["yearsAgo"] = func(years int) time.Time {
		return time.Now().AddDate(-years, 0, 0)
	}
	env["parseDate"] = func(dateStr string) time.Time {
		t, _ := time.Parse("2006-01-02", dateStr)
		return t
	}
	env["now"] = time.Now

	// String helpers
	env["contains"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["startsWith"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	env["lower"] = strings.ToLower
	env["upper"] = strings.ToUpper
}

// runtimeEnvironment binds an item's fields and item helpers
func runtimeEnvironment(item catalog.Item, custom map[string]any) map[string]any {
	env := make(map[string]any, 24+len(custom))
	addHelperFunctions(env)
	maps.Copy(env, custom)

	genres := make([]string, len(item.Genres))
	for i, g := range item.Genres {
		genres[i] = g.String()
	}

	var released time.Time
	if item.ReleaseDate != nil {
		released = *item.ReleaseDate
	}
	var rating float64
	if item.VoteAverage != nil {
		rating = *item.VoteAverage
	}

	env["ID"] = item.ID
	env["Title"] = item.Title
	env["Overview"] = item.Overview
	env["Year"] = item.Year()
	env["Released"] = released
	env["Rating"] = rating
	env["HasRating"] = item.VoteAverage != nil
	env["HasPoster"] = item.HasPoster()
	env["Genres"] = genres

	env["hasGenre"] = hasGenreFunc(item.Genres)
	env["fuzzy"] = func(pattern string) bool {
		return fuzzy.MatchFold(pattern, item.Title)
	}
	env["releasedAfter"] = func(t time.Time) bool {
		return item.ReleaseDate != nil && item.ReleaseDate.After(t)
	}
	env["releasedBefore"] = func(t time.Time) bool {
		return item.ReleaseDate != nil && item.ReleaseDate.Before(t)
	}

	return env
}

// hasGenreFunc matches a genre by display text, or by the bare name of an
// unrecognized genre, ignoring case
func hasGenreFunc(genres []catalog.Genre) func(string) bool {
	return func(name string) bool {
		return slices.ContainsFunc(genres, func(g catalog.Genre) bool {
			return strings.EqualFold(g.String(), name) || (g.IsOther() && strings.EqualFold(g.Name, name))
		})
	}
}

// CompileFilter compiles an expression with the default compiler
func CompileFilter(expression string) (CompiledFilter, error) {
	return defaultCompiler.Compile(expression)
}

var defaultCompiler = NewExprCompiler(WithCache(100))
