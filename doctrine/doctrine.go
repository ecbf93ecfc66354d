// Package doctrine provides optional, configuration-driven gate predicates
// for task assignment. A gate is a boolean expression over unit and target
// facts, compiled once at load time and evaluated before a task's own
// eligibility check. Gates let scenario authors restrict behavior ("workers
// never garrison", "no building for unowned units") without code changes.
package doctrine

import (
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// UnitFacts describes the acting unit to gate expressions.
type UnitFacts struct {
	Template    string
	Owner       int
	Operational bool
}

// TargetFacts describes the assignment target to gate expressions.
type TargetFacts struct {
	Present bool
	Enemy   bool
}

// GateEnv is the expression environment. Field names are the vocabulary
// available inside gate expressions.
type GateEnv struct {
	Task   string
	Unit   UnitFacts
	Target TargetFacts
}

// Gates holds compiled gate programs keyed by task name.
type Gates struct {
	programs map[string]*vm.Program
}

// Compile builds gates from task-name -> expression sources. A source that
// fails to compile is a configuration error: it is reported once and the
// gate is disabled, leaving eligibility for that task unaffected. Nothing
// here is fatal.
func Compile(sources map[string]string) *Gates {
	g := &Gates{programs: make(map[string]*vm.Program)}
	for task, src := range sources {
		prog, err := expr.Compile(src, expr.Env(GateEnv{}), expr.AsBool())
		if err != nil {
			slog.Warn("doctrine gate disabled: expression does not compile",
				"task", task, "expr", src, "error", err)
			continue
		}
		g.programs[task] = prog
	}
	return g
}

// Len returns the number of active gates.
func (g *Gates) Len() int {
	if g == nil {
		return 0
	}
	return len(g.programs)
}

// Allow evaluates the gate for env.Task. Tasks without a gate are allowed.
// An evaluation error disables the answer, not the task: the gate reports
// true so a broken expression can never stall a unit.
func (g *Gates) Allow(env GateEnv) bool {
	if g == nil {
		return true
	}
	prog, ok := g.programs[env.Task]
	if !ok {
		return true
	}
	result, err := vm.Run(prog, env)
	if err != nil {
		slog.Warn("doctrine gate evaluation failed", "task", env.Task, "error", err)
		return true
	}
	allowed, ok := result.(bool)
	if !ok {
		return true
	}
	return allowed
}
