package suggest

// Engine runs its rules against a Context and collects the resulting issues.
type Engine struct {
	rules []Rule
}

// DefaultRules returns the built-in rules in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		CastEfficiency,
		LowUptime,
		WindowUsage,
		ResourceOvercap,
	}
}

// NewEngine creates an engine. With no rules it uses DefaultRules.
func NewEngine(rules ...Rule) *Engine {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Engine{rules: rules}
}

// Run executes every rule in order and returns the issues in the order they
// were produced. Identical contexts always give identical output.
func (e *Engine) Run(ctx *Context) []Issue {
	var all []Issue
	for _, rule := range e.rules {
		all = append(all, rule(ctx)...)
	}
	return all
}
