package filter

import (
	"maps"
	"slices"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	helpers    map[string]any
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
		maps.Copy(c.helperFuncs, funcs)
	}
}

// exprCompiler implements CachingCompiler for expr-based filters
type exprCompiler struct {
	helperFuncs map[string]any
	cache       *lruCache[CompiledFilter]
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) CachingCompiler {
	c := &exprCompiler{
		helperFuncs: createHelperFunctions(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
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

	// Candidate fields are typed from a zero candidate so comparisons are checked
	env := createRuntimeEnvironment(Candidate{}, c.helperFuncs)

	program, err := expr.Compile(expression,
		expr.Env(env),
		expr.AllowUndefinedVariables(),
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
		helpers:    c.helperFuncs,
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
		return c.cache.Len()
	}
	return 0
}

// Evaluate evaluates the filter against a candidate.
// Runtime errors count as a non-match.
func (f *exprFilter) Evaluate(candidate Candidate) bool {
	env := createRuntimeEnvironment(candidate, f.helpers)

	result, err := expr.Run(f.program, env)
	if err != nil {
		return false
	}

	matched, _ := result.(bool)
	return matched
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// createHelperFunctions creates the static helper functions.
// contains, startsWith and endsWith are expr operators, so the
// case-insensitive variants carry a Fold suffix.
func createHelperFunctions() map[string]any {
	return map[string]any{
		"containsFold": func(str, substr string) bool {
			return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
		},
		"hasPrefixFold": func(str, prefix string) bool {
			return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
		},
		"hasSuffixFold": func(str, suffix string) bool {
			return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
		},
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
	}
}

// createRuntimeEnvironment exposes the candidate's fields and per-candidate helpers
func createRuntimeEnvironment(candidate Candidate, helpers map[string]any) map[string]any {
	m := candidate.Movie
	env := make(map[string]any, len(helpers)+16)
	maps.Copy(env, helpers)

	env["Title"] = m.Title
	env["Year"] = m.Year
	env["Released"] = m.Released
	env["Genre"] = m.Genre
	env["Actors"] = m.Actors
	env["Plot"] = m.Plot
	env["Poster"] = m.Poster
	env["IMDbID"] = m.IMDbID
	env["RottenTomatoes"] = m.RottenTomatoes
	env["InLibrary"] = candidate.InLibrary
	env["ReleaseYear"] = m.ReleaseYear()

	score, rated := m.CriticScore()
	if !rated {
		score = -1
	}
	env["CriticScore"] = score

	env["rated"] = func() bool { return rated }
	env["hasGenre"] = createListMatchFunc(m.Genres())
	env["hasActor"] = createListMatchFunc(m.Cast())

	return env
}

func createListMatchFunc(values []string) func(string) bool {
	lower := make([]string, len(values))
	for i, v := range values {
		lower[i] = strings.ToLower(v)
	}
	return func(target string) bool {
		return slices.Contains(lower, strings.ToLower(target))
	}
}
