package eval

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wilhg/actionskills/pkg/actiongroup"
	"github.com/wilhg/actionskills/pkg/store"
)

// Executor is the subset of actiongroup.Dispatcher replays need.
type Executor interface {
	Execute(ctx context.Context, inv actiongroup.Invocation) actiongroup.Outcome
}

// Drift is a journaled invocation whose replay ended with a different status.
type Drift struct {
	ID       string
	Function string
	Recorded int
	Replayed int
	Error    string
}

// ReplayJournal re-executes the recorded invocations selected by q and reports
// every one whose status changed. Credentials are never journaled, so replays use
// the executor's configured defaults.
func ReplayJournal(ctx context.Context, j store.Journal, q store.Query, ex Executor) (replayed int, drifts []Drift, err error) {
	recs, err := j.Recent(ctx, q)
	if err != nil {
		return 0, nil, err
	}
	for _, r := range recs {
		args, err := actiongroup.ParseArgs(json.RawMessage(r.Parameters))
		if err != nil {
			return replayed, drifts, fmt.Errorf("invocation %s: parameters: %w", r.ID, err)
		}
		out := ex.Execute(ctx, actiongroup.Invocation{Function: r.Function, ActionGroup: r.ActionGroup, Args: args})
		replayed++
		if out.Status != r.Status {
			d := Drift{ID: r.ID, Function: r.Function, Recorded: r.Status, Replayed: out.Status}
			if out.Err != nil {
				d.Error = out.Err.Message
			}
			drifts = append(drifts, d)
		}
	}
	return replayed, drifts, nil
}
