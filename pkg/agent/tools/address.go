package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/wilhg/actionskills/pkg/agent"
)

// AddressTool looks up a Brazilian postal code (CEP) on ViaCEP.
type AddressTool struct {
	http    *http.Client
	baseURL string
}

func (AddressTool) Describe() agent.ToolDescriptor {
	in := []byte(`{"type":"object","properties":{"cep":{"type":"string","description":"Brazilian postal code, with or without hyphen"}}}`)
	out := []byte(`{"type":"object"}`)
	return agent.ToolDescriptor{
		Name:         "get_address",
		Description:  "Returns the street address registered for a Brazilian CEP",
		InputSchema:  in,
		OutputSchema: out,
		Permissions:  []agent.ToolPermission{permNetwork},
	}
}

// Invoke returns ViaCEP's document as-is. Its own error shape ({"erro": true}) is not inspected.
func (t AddressTool) Invoke(ctx context.Context, call agent.Call) (any, error) {
	if err := call.Args.Require("cep"); err != nil {
		return nil, err
	}
	u := t.baseURL + "/ws/" + url.PathEscape(call.Args.String("cep")) + "/json/"
	b, err := getJSON(ctx, t.http, "ViaCEP", u)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}
