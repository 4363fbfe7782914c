// Package httpapi exposes the dispatcher over HTTP with chi.
package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wilhg/actionskills/pkg/actiongroup"
	"github.com/wilhg/actionskills/pkg/errmodel"
)

// maxBody bounds request bodies; events and parameter maps are small.
const maxBody = 1 << 20

// Server holds the handlers' collaborators.
type Server struct {
	d *actiongroup.Dispatcher
}

// NewHandler builds the router:
//
//	POST /v1/actions                action-group event -> envelope
//	POST /v1/skills/{name}/execute  {parameters, credentials} -> {"data": result}
//	GET  /v1/skills                 skill descriptors
//	GET  /healthz
//	GET  /metrics                   only when the dispatcher records metrics
func NewHandler(d *actiongroup.Dispatcher) http.Handler {
	s := &Server{d: d}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if m := d.Metrics(); m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}
	r.Route("/v1", func(r chi.Router) {
		r.Post("/actions", s.Actions)
		r.Get("/skills", s.ListSkills)
		r.Post("/skills/{name}/execute", s.Execute)
	})
	return r
}

// Actions accepts a raw action-group event. Failures use the failure envelope and its status.
func (s *Server) Actions(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, actiongroup.FailureEnvelope{StatusCode: http.StatusBadRequest, Error: "Invalid event: " + err.Error()})
		return
	}
	switch env := s.d.HandleJSON(r.Context(), raw).(type) {
	case actiongroup.FailureEnvelope:
		writeJSON(w, env.StatusCode, env)
	default:
		writeJSON(w, http.StatusOK, env)
	}
}

type executeRequest struct {
	Parameters  json.RawMessage   `json:"parameters"`
	Credentials map[string]string `json:"credentials"`
	ActionGroup string            `json:"action_group"`
}

// Execute runs one skill with explicit parameters and per-call credentials.
func (s *Server) Execute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(&req); err != nil && err != io.EOF {
		errmodel.WriteHTTP(w, r, errmodel.Validation("bad_request", "Invalid request body: "+err.Error(), nil))
		return
	}
	args, err := actiongroup.ParseArgs(req.Parameters)
	if err != nil {
		errmodel.WriteHTTP(w, r, errmodel.Validation("bad_request", "parameters must be an object: "+err.Error(), nil))
		return
	}
	out := s.d.Execute(r.Context(), actiongroup.Invocation{
		Function:    chi.URLParam(r, "name"),
		ActionGroup: req.ActionGroup,
		Args:        args,
		Credentials: req.Credentials,
	})
	if out.Err != nil {
		errmodel.WriteHTTP(w, r, out.Err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": out.Value, "invocation_id": out.ID})
}

type skillInfo struct {
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	InputSchema  json.RawMessage `json:"input_schema,omitempty"`
	OutputSchema json.RawMessage `json:"output_schema,omitempty"`
	Permissions  []string        `json:"permissions,omitempty"`
}

// ListSkills returns every registered descriptor in name order.
func (s *Server) ListSkills(w http.ResponseWriter, _ *http.Request) {
	descs := s.d.Registry().Descriptors()
	out := make([]skillInfo, 0, len(descs))
	for _, d := range descs {
		info := skillInfo{
			Name:         d.Name,
			Description:  d.Description,
			InputSchema:  json.RawMessage(d.InputSchema),
			OutputSchema: json.RawMessage(d.OutputSchema),
		}
		for _, p := range d.Permissions {
			info.Permissions = append(info.Permissions, p.Name)
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, map[string]any{"skills": out})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := actiongroup.Marshal(v)
	if err != nil {
		errmodel.WriteHTTP(w, nil, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
