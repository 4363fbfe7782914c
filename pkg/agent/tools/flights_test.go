package tools

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wilhg/actionskills/pkg/agent"
)

func TestFlightTool_Validation(t *testing.T) {
	tool := FlightTool{api: unreachableAmadeus(t)}
	cases := []struct {
		name string
		args agent.Args
		msg  string
	}{
		{"all missing", agent.Args{}, "Missing required parameters: origin, destination, departure_date"},
		{"destination missing", agent.Args{"origin": "GRU", "departure_date": "2025-03-18"}, "Missing required parameters: destination"},
		{"empty counts as missing", agent.Args{"origin": "", "destination": "JFK", "departure_date": ""}, "Missing required parameters: origin, departure_date"},
		{"return before departure", agent.Args{"origin": "GRU", "destination": "JFK", "departure_date": "2025-03-18", "return_date": "2025-03-10"}, "Return date must be after departure date"},
		{"return same day", agent.Args{"origin": "GRU", "destination": "JFK", "departure_date": "2025-03-18", "return_date": "2025-03-18"}, "Return date must be after departure date"},
		{"bad adults", agent.Args{"origin": "GRU", "destination": "JFK", "departure_date": "2025-03-18", "adults": "two"}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tool.Invoke(context.Background(), agent.Call{Args: tc.args, Credentials: creds()})
			requireStatus(t, err, http.StatusBadRequest, tc.msg)
		})
	}

	_, err := tool.Invoke(context.Background(), agent.Call{Args: agent.Args{"origin": "GRU", "destination": "JFK", "departure_date": "18-03-2025"}, Credentials: creds()})
	requireStatus(t, err, http.StatusBadRequest, "")
	assert.Contains(t, err.Error(), "Invalid date format: ")
}

const flightOffersDoc = `{"data":[{
  "id":"1",
  "price":{"currency":"EUR","total":"912.40","base":"700.00"},
  "itineraries":[
    {"duration":"PT14H","segments":[
      {"departure":{"iataCode":"GRU","at":"2025-03-18T22:05:00"},"arrival":{"iataCode":"MIA","at":"2025-03-19T05:10:00"},"carrierCode":"AA","number":"930","duration":"PT8H5M"},
      {"departure":{"iataCode":"MIA","at":"2025-03-19T07:00:00"},"arrival":{"iataCode":"JFK","at":"2025-03-19T10:05:00"},"carrierCode":"AA","number":"1012","duration":"PT3H5M"}
    ]},
    {"duration":"PT10H","segments":[
      {"departure":{"iataCode":"JFK","at":"2025-03-25T21:00:00"},"arrival":{"iataCode":"GRU","at":"2025-03-26T09:00:00"},"carrierCode":"LA","number":"8181","duration":"PT10H"}
    ]}
  ]
}]}`

func TestFlightTool_Invoke(t *testing.T) {
	var query map[string][]string
	api := fakeAmadeus(t, map[string]http.HandlerFunc{
		"/v2/shopping/flight-offers": func(w http.ResponseWriter, r *http.Request) {
			query = r.URL.Query()
			writeJSON(w, flightOffersDoc)
		},
	})
	tool := FlightTool{api: api}

	out, err := tool.Invoke(context.Background(), agent.Call{
		Args:        agent.Args{"origin": "GRU", "destination": "JFK", "departure_date": "2025-03-18", "return_date": "2025-03-25"},
		Credentials: creds(),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[{
	  "price":{"total":"912.40","currency":"EUR"},
	  "segments":[
	    {"departure":{"airport":"GRU","time":"2025-03-18T22:05:00"},"arrival":{"airport":"MIA","time":"2025-03-19T05:10:00"},"carrier":"AA","flight_number":"930","duration":"PT8H5M"},
	    {"departure":{"airport":"MIA","time":"2025-03-19T07:00:00"},"arrival":{"airport":"JFK","time":"2025-03-19T10:05:00"},"carrier":"AA","flight_number":"1012","duration":"PT3H5M"},
	    {"departure":{"airport":"JFK","time":"2025-03-25T21:00:00"},"arrival":{"airport":"GRU","time":"2025-03-26T09:00:00"},"carrier":"LA","flight_number":"8181","duration":"PT10H"}
	  ]
	}]`, toJSON(t, out))

	assert.Equal(t, []string{"GRU"}, query["originLocationCode"])
	assert.Equal(t, []string{"JFK"}, query["destinationLocationCode"])
	assert.Equal(t, []string{"2025-03-25"}, query["returnDate"])
	assert.Equal(t, []string{"1"}, query["adults"])
	assert.Equal(t, []string{"20"}, query["max"])
}

func TestFlightTool_OneWayOmitsReturnDate(t *testing.T) {
	var query map[string][]string
	api := fakeAmadeus(t, map[string]http.HandlerFunc{
		"/v2/shopping/flight-offers": func(w http.ResponseWriter, r *http.Request) {
			query = r.URL.Query()
			writeJSON(w, `{"data":[]}`)
		},
	})
	out, err := FlightTool{api: api}.Invoke(context.Background(), agent.Call{
		Args:        agent.Args{"origin": "GRU", "destination": "JFK", "departure_date": "2025-03-18", "adults": "3"},
		Credentials: creds(),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, toJSON(t, out))
	assert.NotContains(t, query, "returnDate")
	assert.Equal(t, []string{"3"}, query["adults"])
}

func TestFlightTool_UpstreamStatusPassesThrough(t *testing.T) {
	api := fakeAmadeus(t, map[string]http.HandlerFunc{
		"/v2/shopping/flight-offers": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"errors":[{"code":38194,"title":"Too many requests"}]}`))
		},
	})
	_, err := FlightTool{api: api}.Invoke(context.Background(), agent.Call{
		Args:        agent.Args{"origin": "GRU", "destination": "JFK", "departure_date": "2025-03-18"},
		Credentials: creds(),
	})
	requireStatus(t, err, http.StatusTooManyRequests, `Amadeus API error: {"errors":[{"code":38194,"title":"Too many requests"}]}`)
}

func TestFlightTool_LongUpstreamErrorIsNotShortened(t *testing.T) {
	body := `{"errors":[{"status":400,"code":477,"title":"INVALID FORMAT","detail":"` + strings.Repeat("São Paulo ", 80) + `"}]}`
	api := fakeAmadeus(t, map[string]http.HandlerFunc{
		"/v2/shopping/flight-offers": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(body))
		},
	})
	_, err := FlightTool{api: api}.Invoke(context.Background(), agent.Call{
		Args:        agent.Args{"origin": "GRU", "destination": "JFK", "departure_date": "2025-03-18"},
		Credentials: creds(),
	})
	require.Greater(t, len(body), 800)
	requireStatus(t, err, http.StatusBadRequest, "Amadeus API error: "+body)
}
