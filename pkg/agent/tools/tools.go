// Package tools implements the action-group skills: postal address, weather,
// IATA city search, flight offers and hotel offers.
package tools

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wilhg/actionskills/pkg/agent"
	"github.com/wilhg/actionskills/pkg/amadeus"
	"github.com/wilhg/actionskills/pkg/errmodel"
)

// Credential keys read from agent.Call.Credentials.
const (
	CredClientID     = "CLIENT_ID"
	CredClientSecret = "CLIENT_SECRET"
)

var (
	permNetwork = agent.ToolPermission{Name: "network:outbound", Description: "GET requests to public JSON APIs"}
	permAmadeus = agent.ToolPermission{Name: "secret:amadeus", Description: "uses caller-supplied Amadeus client credentials"}
)

// Deps are the collaborators shared by the skills. Zero URLs fall back to the public endpoints.
type Deps struct {
	HTTP         *http.Client
	ViaCEPURL    string
	GeocodingURL string
	ForecastURL  string
	Amadeus      *amadeus.Client
	Logger       logrus.FieldLogger
}

func (d Deps) withDefaults() Deps {
	if d.HTTP == nil {
		d.HTTP = &http.Client{Timeout: 30 * time.Second}
	}
	if d.ViaCEPURL == "" {
		d.ViaCEPURL = "https://viacep.com.br"
	}
	if d.GeocodingURL == "" {
		d.GeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	}
	if d.ForecastURL == "" {
		d.ForecastURL = "https://api.open-meteo.com/v1/forecast"
	}
	if d.Amadeus == nil {
		d.Amadeus = amadeus.New("https://test.api.amadeus.com", d.HTTP)
	}
	if d.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		d.Logger = l
	}
	return d
}

// All returns every skill bound to deps, in registration order.
func All(deps Deps) []agent.Tool {
	deps = deps.withDefaults()
	return []agent.Tool{
		AddressTool{http: deps.HTTP, baseURL: strings.TrimRight(deps.ViaCEPURL, "/")},
		WeatherTool{http: deps.HTTP, geocodingURL: deps.GeocodingURL, forecastURL: deps.ForecastURL},
		CityTool{api: deps.Amadeus},
		FlightTool{api: deps.Amadeus},
		HotelTool{api: deps.Amadeus, log: deps.Logger},
	}
}

// RegisterAll registers every skill on reg.
func RegisterAll(reg *agent.Registry, deps Deps) error {
	for _, t := range All(deps) {
		if err := reg.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// amadeusSession opens a session with the credentials carried by the call.
func amadeusSession(ctx context.Context, api *amadeus.Client, call agent.Call) (*amadeus.Session, error) {
	creds := amadeus.Credentials{
		ClientID:     call.Credentials[CredClientID],
		ClientSecret: call.Credentials[CredClientSecret],
	}
	if !creds.Valid() {
		return nil, errmodel.System("missing_credentials", "Amadeus credentials are not configured", nil, nil)
	}
	return api.Session(ctx, creds), nil
}

// amadeusGet wraps Session.Get and converts failures to upstream errors.
func amadeusGet(ctx context.Context, s *amadeus.Session, path string, q url.Values) ([]byte, error) {
	b, err := s.Get(ctx, path, q)
	if err == nil {
		return b, nil
	}
	var apiErr *amadeus.APIError
	if errors.As(err, &apiErr) {
		return nil, errmodel.Upstream(apiErr.Status, "Amadeus API error: "+apiErr.Body, map[string]any{"path": path})
	}
	return nil, errmodel.Upstream(0, "Amadeus API error: "+err.Error(), map[string]any{"path": path})
}

// parseDate enforces the strict YYYY-MM-DD layout.
func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, errmodel.Validation("invalid_date", "Invalid date format: "+err.Error(), map[string]any{"value": v})
	}
	return t, nil
}
