package actiongroup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wilhg/actionskills/pkg/agent"
	"github.com/wilhg/actionskills/pkg/errmodel"
	"github.com/wilhg/actionskills/pkg/metrics"
	skillotel "github.com/wilhg/actionskills/pkg/otel"
	"github.com/wilhg/actionskills/pkg/store"
)

// Invocation is one skill call, independent of the transport that carried it.
type Invocation struct {
	Function    string
	ActionGroup string
	Args        agent.Args
	Credentials map[string]string
}

// Outcome is the result of Execute. Exactly one of Value and Err is set.
type Outcome struct {
	ID       string
	Value    any
	Err      *errmodel.Error
	Status   int
	Duration time.Duration
}

// Dispatcher routes invocations to registered skills.
type Dispatcher struct {
	reg          *agent.Registry
	allowed      map[string]bool
	validate     agent.ValidateFunc
	log          logrus.FieldLogger
	metrics      *metrics.Metrics
	journal      store.Journal
	defaultCreds map[string]string
	now          func() time.Time
}

type Option func(*Dispatcher)

func WithLogger(l logrus.FieldLogger) Option { return func(d *Dispatcher) { d.log = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(d *Dispatcher) { d.metrics = m } }

// WithJournal appends one record per invocation. Journal failures are logged only.
func WithJournal(j store.Journal) Option { return func(d *Dispatcher) { d.journal = j } }

// WithAllowedPermissions restricts which tool permissions may be exercised.
// An empty list keeps the default: every permission a registered skill declares.
func WithAllowedPermissions(perms []string) Option {
	return func(d *Dispatcher) {
		if len(perms) == 0 {
			return
		}
		d.allowed = make(map[string]bool, len(perms))
		for _, p := range perms {
			d.allowed[p] = true
		}
	}
}

// WithDefaultCredentials fills credential keys the invocation does not carry.
func WithDefaultCredentials(creds map[string]string) Option {
	return func(d *Dispatcher) { d.defaultCreds = creds }
}

func WithValidator(v agent.ValidateFunc) Option { return func(d *Dispatcher) { d.validate = v } }

// New builds a dispatcher over reg.
func New(reg *agent.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{reg: reg, now: time.Now}
	for _, o := range opts {
		o(d)
	}
	if d.allowed == nil {
		d.allowed = reg.Permissions()
	}
	if d.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		d.log = l
	}
	return d
}

// Registry exposes the underlying registry (descriptor listing, MCP export).
func (d *Dispatcher) Registry() *agent.Registry { return d.reg }

// Metrics returns the collector Execute observes into, or nil.
func (d *Dispatcher) Metrics() *metrics.Metrics { return d.metrics }

// Execute runs one invocation: resolve, permission and schema checks, invoke, record.
func (d *Dispatcher) Execute(ctx context.Context, inv Invocation) (out Outcome) {
	out.ID = uuid.NewString()
	start := d.now()

	ctx, span := skillotel.Tracer().Start(ctx, "skill "+inv.Function, trace.WithAttributes(
		attribute.String("skill.function", inv.Function),
		attribute.String("skill.action_group", inv.ActionGroup),
		attribute.String("skill.invocation_id", out.ID),
	))
	defer span.End()

	if inv.Args == nil {
		inv.Args = agent.Args{}
	}
	value, err := d.invoke(ctx, inv)
	out.Duration = d.now().Sub(start)
	if err != nil {
		out.Err = errmodel.From(err)
		out.Status = errmodel.HTTPStatus(out.Err)
		span.SetStatus(codes.Error, out.Err.Message)
	} else {
		out.Value = value
		out.Status = http.StatusOK
	}
	span.SetAttributes(attribute.Int("skill.status", out.Status))

	d.metrics.Observe(inv.Function, out.Status, out.Duration)
	d.record(ctx, inv, out, start)
	return out
}

func (d *Dispatcher) invoke(ctx context.Context, inv Invocation) (value any, err error) {
	tool, ok := d.reg.Resolve(inv.Function)
	if !ok {
		return nil, errmodel.NotFound("Unknown function: "+inv.Function, map[string]any{"function": inv.Function})
	}
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = errmodel.System("panic", fmt.Sprintf("Internal error: %v", r), map[string]any{"function": inv.Function}, nil)
		}
	}()
	call := agent.Call{Args: inv.Args, Credentials: d.credentials(inv.Credentials)}
	return agent.SafeInvoke(ctx, tool, call, d.allowed, d.validate)
}

func (d *Dispatcher) credentials(in map[string]string) map[string]string {
	if len(d.defaultCreds) == 0 {
		return in
	}
	out := make(map[string]string, len(d.defaultCreds)+len(in))
	for k, v := range d.defaultCreds {
		if v != "" {
			out[k] = v
		}
	}
	for k, v := range in {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

func (d *Dispatcher) record(ctx context.Context, inv Invocation, out Outcome, start time.Time) {
	fields := logrus.Fields{
		"invocation_id": out.ID,
		"function":      inv.Function,
		"action_group":  inv.ActionGroup,
		"status":        out.Status,
		"duration":      out.Duration.String(),
	}
	entry := d.log.WithFields(fields)
	switch {
	case out.Err == nil:
		entry.Info("skill invoked")
	case out.Status >= 500:
		entry.WithField("error", out.Err.Message).Error("skill failed")
	default:
		entry.WithField("error", out.Err.Message).Warn("skill rejected")
	}

	if d.journal == nil {
		return
	}
	params, _ := json.Marshal(inv.Args)
	rec := store.InvocationRecord{
		ID:          out.ID,
		Function:    inv.Function,
		ActionGroup: inv.ActionGroup,
		Parameters:  params,
		Status:      out.Status,
		DurationMS:  out.Duration.Milliseconds(),
		CreatedAt:   start,
	}
	if out.Err != nil {
		rec.Error = out.Err.Message
	}
	if err := d.journal.Append(ctx, rec); err != nil {
		d.log.WithFields(fields).WithError(err).Warn("journal append failed")
	}
}

// Handle dispatches an event and returns either a SuccessEnvelope or a FailureEnvelope.
func (d *Dispatcher) Handle(ctx context.Context, ev Event) any {
	out := d.Execute(ctx, Invocation{
		Function:    ev.Function,
		ActionGroup: ev.ActionGroup,
		Args:        ev.Args(),
	})
	if out.Err != nil {
		return FailureEnvelope{StatusCode: out.Status, Error: out.Err.Message}
	}
	env, err := Success(ev, out.Value)
	if err != nil {
		return Failure(errmodel.System("encode", "Internal error: "+err.Error(), nil, nil))
	}
	return env
}

// HandleJSON decodes a raw event and dispatches it. Malformed input yields a 400 failure.
func (d *Dispatcher) HandleJSON(ctx context.Context, raw []byte) any {
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return FailureEnvelope{StatusCode: http.StatusBadRequest, Error: "Invalid event: " + err.Error()}
	}
	return d.Handle(ctx, ev)
}
