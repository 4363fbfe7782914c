package tools

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wilhg/actionskills/pkg/agent"
)

func TestCityTool_Invoke(t *testing.T) {
	api := fakeAmadeus(t, map[string]http.HandlerFunc{
		"/v1/reference-data/locations/cities": func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Query().Get("keyword") {
			case "Rio":
				writeJSON(w, `{"data":[{
				  "type":"location","subType":"city","name":"Rio de Janeiro","iataCode":"RIO",
				  "address":{"countryCode":"BR","stateCode":"RJ"},
				  "timeZoneOffset":"-03:00",
				  "geoCode":{"latitude":-22.90278,"longitude":-43.2075}
				}]}`)
			case "Nowhere":
				writeJSON(w, `{"meta":{"count":0},"data":[]}`)
			default:
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"errors":[{"status":400,"code":572,"title":"INVALID OPTION"}]}`))
			}
		},
	})
	tool := CityTool{api: api}

	out, err := tool.Invoke(context.Background(), agent.Call{Args: agent.Args{"city": "Rio"}, Credentials: creds()})
	require.NoError(t, err)
	assert.JSONEq(t, `[{
	  "name":"Rio de Janeiro","iata_code":"RIO","state":"RJ","country":"BR","timezone":"-03:00",
	  "location":{"latitude":-22.90278,"longitude":-43.2075}
	}]`, toJSON(t, out))

	_, err = tool.Invoke(context.Background(), agent.Call{Args: agent.Args{"city": "Nowhere"}, Credentials: creds()})
	requireStatus(t, err, http.StatusNotFound, "No cities found matching your search")

	_, err = tool.Invoke(context.Background(), agent.Call{Args: agent.Args{"city": "X"}, Credentials: creds()})
	requireStatus(t, err, http.StatusBadRequest, `Amadeus API error: {"errors":[{"status":400,"code":572,"title":"INVALID OPTION"}]}`)

	_, err = tool.Invoke(context.Background(), agent.Call{Args: agent.Args{}, Credentials: creds()})
	requireStatus(t, err, http.StatusBadRequest, "Missing required parameter: city")
}
