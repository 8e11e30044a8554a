package metrics

import (
	"math"
	"sort"

	"github.com/lowmanm/q-logic/internal/queue"
	"github.com/lowmanm/q-logic/internal/registry"
	"github.com/lowmanm/q-logic/internal/workforce"
)

// HandleTime is the AHT summary for one worker (or a whole team).
// AHTSeconds is omitted, not zero, when no closed task exists.
type HandleTime struct {
	WorkerID   string   `json:"worker_id,omitempty"`
	ProjectID  string   `json:"source_id,omitempty"`
	TaskCount  int64    `json:"task_count"`
	AHTSeconds *float64 `json:"average_handle_time_seconds,omitempty"`
}

// Census counts workers per state.
type Census struct {
	TotalWorkers int64            `json:"total_workers"`
	ByState      map[string]int64 `json:"counts"`
}

// LeaderboardEntry is one leaderboard row.
type LeaderboardEntry struct {
	WorkerID   string          `json:"worker_id"`
	Name       string          `json:"name"`
	State      workforce.State `json:"state"`
	TaskCount  int64           `json:"task_count"`
	AHTSeconds *float64        `json:"average_handle_time_seconds,omitempty"`
}

// ProjectQueueStats joins one project's queue counters with its name.
type ProjectQueueStats struct {
	ProjectID   string `json:"source_id"`
	ProjectName string `json:"project_name"`
	queue.Counts
}

// Aggregator computes dashboard statistics over the live stores.
type Aggregator struct {
	reg     *registry.Registry
	ledger  *queue.Ledger
	tracker *workforce.Tracker
}

// New returns an Aggregator over the given stores.
func New(reg *registry.Registry, ledger *queue.Ledger, tracker *workforce.Tracker) *Aggregator {
	return &Aggregator{reg: reg, ledger: ledger, tracker: tracker}
}

// summarize folds closed task logs, optionally restricted to one project,
// into a count and a rounded mean handle time. The mean is computed in
// floating point and rounded once at the end, so it carries no per-sample
// truncation bias.
func summarize(logs []*workforce.TaskLog, projectID string) (int64, *float64) {
	var n int64
	var sum float64
	for _, tl := range logs {
		if !tl.Closed() {
			continue
		}
		if projectID != "" && tl.ProjectID != projectID {
			continue
		}
		n++
		sum += tl.DurationSeconds()
	}
	if n == 0 {
		return 0, nil
	}
	mean := math.Round(sum / float64(n))
	return n, &mean
}

// WorkerAHT returns the average handle time for one worker, optionally
// restricted to a project.
func (a *Aggregator) WorkerAHT(workerID, projectID string) (*HandleTime, error) {
	if _, err := a.tracker.GetWorker(workerID); err != nil {
		return nil, err
	}
	logs, err := a.tracker.Logs(workerID)
	if err != nil {
		return nil, err
	}
	n, mean := summarize(logs, projectID)
	return &HandleTime{WorkerID: workerID, ProjectID: projectID, TaskCount: n, AHTSeconds: mean}, nil
}

// TeamAHT returns the average handle time across all workers.
func (a *Aggregator) TeamAHT(projectID string) (*HandleTime, error) {
	logs, err := a.tracker.AllLogs()
	if err != nil {
		return nil, err
	}
	n, mean := summarize(logs, projectID)
	return &HandleTime{ProjectID: projectID, TaskCount: n, AHTSeconds: mean}, nil
}

// AgentStates returns the worker state census. States with no workers are
// still present with a zero count.
func (a *Aggregator) AgentStates() (*Census, error) {
	workers, err := a.tracker.ListWorkers()
	if err != nil {
		return nil, err
	}
	c := &Census{ByState: map[string]int64{
		string(workforce.StateAvailable): 0,
		string(workforce.StateInTask):    0,
		string(workforce.StateBreak):     0,
		string(workforce.StateWrapUp):    0,
	}}
	for _, w := range workers {
		c.TotalWorkers++
		c.ByState[string(w.State)]++
	}
	return c, nil
}

// Leaderboard returns all workers ordered by closed-task count descending,
// ties broken by lower AHT. filterExpr is an optional CEL expression over
// {worker_id, name, state, task_count, aht_seconds}; an empty expression
// matches every row.
func (a *Aggregator) Leaderboard(projectID, filterExpr string) ([]LeaderboardEntry, error) {
	filter, err := newRowFilter(filterExpr)
	if err != nil {
		return nil, err
	}
	workers, err := a.tracker.ListWorkers()
	if err != nil {
		return nil, err
	}
	rows := make([]LeaderboardEntry, 0, len(workers))
	for _, w := range workers {
		logs, err := a.tracker.Logs(w.ID)
		if err != nil {
			return nil, err
		}
		n, mean := summarize(logs, projectID)
		row := LeaderboardEntry{
			WorkerID:   w.ID,
			Name:       w.Name,
			State:      w.State,
			TaskCount:  n,
			AHTSeconds: mean,
		}
		if filter.Eval(row) {
			rows = append(rows, row)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TaskCount != rows[j].TaskCount {
			return rows[i].TaskCount > rows[j].TaskCount
		}
		ai, aj := math.Inf(1), math.Inf(1)
		if rows[i].AHTSeconds != nil {
			ai = *rows[i].AHTSeconds
		}
		if rows[j].AHTSeconds != nil {
			aj = *rows[j].AHTSeconds
		}
		return ai < aj
	})
	return rows, nil
}

// AllQueueStats returns queue counters for every project that ever enqueued
// an item, joined with project names and sorted by name.
func (a *Aggregator) AllQueueStats() ([]ProjectQueueStats, error) {
	counts, err := a.ledger.AllCounts()
	if err != nil {
		return nil, err
	}
	out := make([]ProjectQueueStats, 0, len(counts))
	for pid, c := range counts {
		name := ""
		if p, err := a.reg.Get(pid); err == nil {
			name = p.Name
		}
		out = append(out, ProjectQueueStats{ProjectID: pid, ProjectName: name, Counts: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProjectName < out[j].ProjectName })
	return out, nil
}
