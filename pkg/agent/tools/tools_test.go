package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wilhg/actionskills/pkg/agent"
	"github.com/wilhg/actionskills/pkg/amadeus"
	"github.com/wilhg/actionskills/pkg/errmodel"
)

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

// fakeAmadeus serves the token endpoint plus routes and returns a client bound to it.
func fakeAmadeus(t *testing.T, routes map[string]http.HandlerFunc) *amadeus.Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, `{"access_token":"tok","token_type":"Bearer","expires_in":1799}`)
	})
	for p, h := range routes {
		mux.HandleFunc(p, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return amadeus.New(srv.URL, srv.Client())
}

// unreachableAmadeus fails the test if any API call is made.
func unreachableAmadeus(t *testing.T) *amadeus.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected upstream call: %s", r.URL.String())
	}))
	t.Cleanup(srv.Close)
	return amadeus.New(srv.URL, srv.Client())
}

func creds() map[string]string {
	return map[string]string{CredClientID: "id", CredClientSecret: "secret"}
}

func toJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func requireStatus(t *testing.T, err error, status int, message string) {
	t.Helper()
	require.Error(t, err)
	ce := errmodel.From(err)
	assert.Equal(t, status, errmodel.HTTPStatus(ce))
	if message != "" {
		assert.Equal(t, message, ce.Message)
	}
}

func TestRegisterAll(t *testing.T) {
	reg := agent.NewRegistry()
	require.NoError(t, RegisterAll(reg, Deps{}))

	var names []string
	reg.Range(func(name string, _ agent.Tool) { names = append(names, name) })
	assert.Equal(t, []string{"get_address", "get_iata", "get_weather", "search_flights", "search_hotels"}, names)

	perms := reg.Permissions()
	assert.True(t, perms["network:outbound"])
	assert.True(t, perms["secret:amadeus"])

	// second registration collides on names
	assert.Error(t, RegisterAll(reg, Deps{}))
}

func TestAmadeusSkills_RequireCredentials(t *testing.T) {
	api := unreachableAmadeus(t)
	_, err := CityTool{api: api}.Invoke(context.Background(), agent.Call{Args: agent.Args{"city": "Paris"}})
	requireStatus(t, err, http.StatusInternalServerError, "Amadeus credentials are not configured")

	_, err = CityTool{api: api}.Invoke(context.Background(), agent.Call{
		Args:        agent.Args{"city": "Paris"},
		Credentials: map[string]string{CredClientID: "only-id"},
	})
	requireStatus(t, err, http.StatusInternalServerError, "Amadeus credentials are not configured")
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("2025-03-18")
	require.NoError(t, err)
	assert.Equal(t, 18, d.Day())

	for _, bad := range []string{"2025-3-18", "18/03/2025", "2025-02-30", "tomorrow"} {
		_, err := parseDate(bad)
		requireStatus(t, err, http.StatusBadRequest, "")
		assert.Contains(t, errmodel.From(err).Message, "Invalid date format: ")
	}
}

func TestSafeInvoke_ValidatesSkillOutputs(t *testing.T) {
	api := fakeAmadeus(t, map[string]http.HandlerFunc{
		"/v1/reference-data/locations/cities": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, `{"data":[{"name":"PARIS","iataCode":"PAR"}]}`)
		},
	})
	reg := agent.NewRegistry()
	require.NoError(t, RegisterAll(reg, Deps{Amadeus: api}))
	tool, ok := reg.Resolve("get_iata")
	require.True(t, ok)

	out, err := agent.SafeInvoke(context.Background(), tool, agent.Call{Args: agent.Args{"city": "Paris"}, Credentials: creds()}, reg.Permissions(), nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"PARIS","iata_code":"PAR","state":"","country":"","timezone":"","location":{"latitude":null,"longitude":null}}]`, toJSON(t, out))
}
