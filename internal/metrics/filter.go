package metrics

import (
	"strings"

	"github.com/google/cel-go/cel"
)

// rowFilter wraps a compiled CEL program evaluated per leaderboard row.
// When disabled (empty expression), Eval always returns true.
type rowFilter struct {
	prog    cel.Program
	enabled bool
}

func newRowFilter(expr string) (rowFilter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return rowFilter{enabled: false}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("worker_id", cel.StringType),
		cel.Variable("name", cel.StringType),
		cel.Variable("state", cel.StringType),
		cel.Variable("task_count", cel.IntType),
		cel.Variable("aht_seconds", cel.DoubleType),
	)
	if err != nil {
		return rowFilter{}, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return rowFilter{}, iss.Err()
	}
	checked, iss2 := env.Check(ast)
	if iss2 != nil && iss2.Err() != nil {
		return rowFilter{}, iss2.Err()
	}
	prog, err := env.Program(checked)
	if err != nil {
		return rowFilter{}, err
	}
	return rowFilter{prog: prog, enabled: true}, nil
}

// Eval evaluates the expression against one row. Rows with no closed tasks
// expose aht_seconds as 0.
func (f rowFilter) Eval(row LeaderboardEntry) bool {
	if !f.enabled {
		return true
	}
	aht := 0.0
	if row.AHTSeconds != nil {
		aht = *row.AHTSeconds
	}
	out, _, err := f.prog.Eval(map[string]any{
		"worker_id":   row.WorkerID,
		"name":        row.Name,
		"state":       string(row.State),
		"task_count":  row.TaskCount,
		"aht_seconds": aht,
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
