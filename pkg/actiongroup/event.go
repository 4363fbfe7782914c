// Package actiongroup adapts agent action-group invocations to skills: it decodes the
// event, extracts parameters, dispatches to the registered tool and encodes the
// envelope the calling agent expects.
package actiongroup

import (
	"encoding/json"

	"github.com/wilhg/actionskills/pkg/agent"
)

// Parameter is one {name, type, value} entry of an event. Names are not unique.
type Parameter struct {
	Name  string `json:"name"`
	Type  string `json:"type,omitempty"`
	Value string `json:"value"`
}

// UnmarshalJSON accepts non-string values (numbers, booleans) by keeping their literal.
func (p *Parameter) UnmarshalJSON(b []byte) error {
	var raw struct {
		Name  string          `json:"name"`
		Type  string          `json:"type"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	p.Name, p.Type = raw.Name, raw.Type
	p.Value = scalarString(raw.Value)
	return nil
}

func scalarString(r json.RawMessage) string {
	if len(r) == 0 || string(r) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(r, &s); err == nil {
		return s
	}
	return string(r)
}

// Event is an action-group invocation. Session attributes are kept as raw JSON and
// echoed back untouched; an absent mapping is echoed as null.
type Event struct {
	MessageVersion          string          `json:"messageVersion,omitempty"`
	SessionID               string          `json:"sessionId,omitempty"`
	InputText               string          `json:"inputText,omitempty"`
	ActionGroup             string          `json:"actionGroup"`
	Function                string          `json:"function"`
	Parameters              []Parameter     `json:"parameters"`
	SessionAttributes       json.RawMessage `json:"sessionAttributes"`
	PromptSessionAttributes json.RawMessage `json:"promptSessionAttributes"`
}

// GetValue returns the value of the first parameter named key.
func (e Event) GetValue(key string) (string, bool) {
	for _, p := range e.Parameters {
		if p.Name == key {
			return p.Value, true
		}
	}
	return "", false
}

// Args flattens the parameter sequence; on duplicate names the first one wins.
func (e Event) Args() agent.Args {
	out := make(agent.Args, len(e.Parameters))
	for _, p := range e.Parameters {
		if _, seen := out[p.Name]; !seen {
			out[p.Name] = p.Value
		}
	}
	return out
}

// ParseArgs decodes a JSON object of parameters (MCP arguments, HTTP bodies) into Args.
// Non-string values keep their JSON literal; null and an empty document yield "".
func ParseArgs(raw json.RawMessage) (agent.Args, error) {
	out := agent.Args{}
	if len(raw) == 0 || string(raw) == "null" {
		return out, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		out[k] = scalarString(v)
	}
	return out, nil
}
