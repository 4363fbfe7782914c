package tools

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/wilhg/actionskills/pkg/errmodel"
)

// getJSON performs a plain GET against a public JSON API and returns the body.
// service names the upstream in error messages ("ViaCEP", "Open-Meteo"). Transport
// failures carry no upstream status and surface as 500.
func getJSON(ctx context.Context, client *http.Client, service, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errmodel.System("bad_request", "Internal error: "+err.Error(), nil, nil)
	}
	req.Header.Set("Accept", "application/json")
	res, err := client.Do(req)
	if err != nil {
		return nil, errmodel.Upstream(0, service+" request failed: "+err.Error(), map[string]any{"url": rawURL})
	}
	defer func() { _ = res.Body.Close() }()
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errmodel.Upstream(0, service+" response unreadable: "+err.Error(), nil)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, errmodel.Upstream(res.StatusCode, service+" API error: "+string(b), map[string]any{"url": rawURL})
	}
	if !json.Valid(b) {
		return nil, errmodel.Upstream(0, service+" returned invalid JSON", map[string]any{"url": rawURL})
	}
	return b, nil
}
