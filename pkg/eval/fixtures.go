// Package eval scores skills against recorded expectations: JSON event fixtures
// dispatched through the adapter, and replays of journaled invocations.
package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/wilhg/actionskills/pkg/actiongroup"
)

// Fixture is one evaluation case: an action-group event and what its envelope must show.
type Fixture struct {
	Name   string          `json:"name"`
	Event  json.RawMessage `json:"event"`
	Expect Expectation     `json:"expect"`
}

// Expectation is matched against the envelope. Status 0 skips the status check.
// Contains/NotContains apply to the success body text or the failure message.
type Expectation struct {
	Status      int      `json:"status,omitempty"`
	Contains    []string `json:"contains,omitempty"`
	NotContains []string `json:"not_contains,omitempty"`
}

// Handler is the subset of actiongroup.Dispatcher fixtures need.
type Handler interface {
	HandleJSON(ctx context.Context, raw []byte) any
}

// EvaluateFixtures loads *.json fixtures from dir, dispatches each event through h and
// checks its expectations. Returns score in [0,1]; an empty dir scores 1.
func EvaluateFixtures(ctx context.Context, fsys fs.FS, dir string, h Handler) (score float64, total int, passed int, details []string, err error) {
	fixtures, err := loadFixtures(fsys, dir)
	if err != nil {
		return 0, 0, 0, nil, err
	}
	total = len(fixtures)
	if total == 0 {
		return 1, 0, 0, nil, nil
	}
	for _, fx := range fixtures {
		status, text := Outcome(h.HandleJSON(ctx, fx.Event))
		ok := true
		if fx.Expect.Status != 0 && fx.Expect.Status != status {
			ok = false
			details = append(details, fmt.Sprintf("%s: status %d, want %d (%s)", fx.Name, status, fx.Expect.Status, text))
		}
		for _, s := range fx.Expect.Contains {
			if !strings.Contains(text, s) {
				ok = false
				details = append(details, fx.Name+": missing contains: "+s)
			}
		}
		for _, s := range fx.Expect.NotContains {
			if strings.Contains(text, s) {
				ok = false
				details = append(details, fx.Name+": unexpected contains: "+s)
			}
		}
		if ok {
			passed++
		}
	}
	score = float64(passed) / float64(total)
	return score, total, passed, details, nil
}

// Outcome extracts (status, text) from an envelope returned by the dispatcher.
func Outcome(envelope any) (int, string) {
	switch e := envelope.(type) {
	case actiongroup.SuccessEnvelope:
		return 200, e.Response.FunctionResponse.ResponseBody.TEXT.Body
	case actiongroup.FailureEnvelope:
		return e.StatusCode, e.Error
	default:
		b, _ := actiongroup.Marshal(envelope)
		return 0, string(b)
	}
}

func loadFixtures(fsys fs.FS, dir string) ([]Fixture, error) {
	var out []Fixture
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		b, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		var fx Fixture
		if err := json.Unmarshal(b, &fx); err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		if fx.Name == "" {
			fx.Name = strings.TrimSuffix(e.Name(), ".json")
		}
		out = append(out, fx)
	}
	return out, nil
}
