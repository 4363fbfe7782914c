package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wilhg/actionskills/pkg/agent"
)

const forecastDoc = `{
  "latitude": -23.5,
  "longitude": -46.625,
  "timezone": "America/Sao_Paulo",
  "elevation": 760.0,
  "hourly_units": {"time": "iso8601", "temperature_2m": "°F"},
  "hourly": {
    "time": ["2025-03-18T00:00", "2025-03-18T01:00", "2025-03-19T00:00"],
    "temperature_2m": [21.0, 20.4, 19]
  }
}`

func TestReshapeForecast_GroupsByDate(t *testing.T) {
	got := reshapeForecast([]byte(forecastDoc))
	want := map[string]dayForecast{
		"2025-03-18": {Hours: map[string]string{"00:00": "21.0°F", "01:00": "20.4°F"}},
		"2025-03-19": {Hours: map[string]string{"00:00": "19°F"}},
	}
	if diff := cmp.Diff(want, got.Forecast); diff != "" {
		t.Fatalf("forecast mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "America/Sao_Paulo", got.Location.Timezone)
	assert.Equal(t, 760.0, got.Location.Elevation)

	if diff := cmp.Diff(got, reshapeForecast([]byte(forecastDoc))); diff != "" {
		t.Fatalf("reshape not deterministic:\n%s", diff)
	}
}

func TestReshapeForecast_DefaultUnitAndUnevenArrays(t *testing.T) {
	got := reshapeForecast([]byte(`{"hourly":{"time":["2025-03-18T05:00:00","2025-03-18T06:00"],"temperature_2m":[18.5]}}`))
	assert.Equal(t, map[string]dayForecast{"2025-03-18": {Hours: map[string]string{"05:00": "18.5°C"}}}, got.Forecast)
	assert.Nil(t, got.Location.Latitude)
}

func fakeOpenMeteo(t *testing.T) (geocoding, forecast string) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") == "Atlantis" {
			writeJSON(w, `{"generationtime_ms":0.2}`)
			return
		}
		writeJSON(w, `{"results":[{"name":"São Paulo","latitude":-23.5475,"longitude":-46.63611}]}`)
	})
	mux.HandleFunc("/v1/forecast", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("latitude") != "-23.5475" || q.Get("longitude") != "-46.63611" || q.Get("hourly") != "temperature_2m" || q.Get("timezone") != "auto" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":true,"reason":"bad query"}`))
			return
		}
		writeJSON(w, forecastDoc)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL + "/v1/search", srv.URL + "/v1/forecast"
}

func TestWeatherTool_Invoke(t *testing.T) {
	geo, fc := fakeOpenMeteo(t)
	tool := WeatherTool{http: http.DefaultClient, geocodingURL: geo, forecastURL: fc}

	out, err := tool.Invoke(context.Background(), agent.Call{Args: agent.Args{"city": "São Paulo"}})
	require.NoError(t, err)
	report, ok := out.(weatherReport)
	require.True(t, ok)
	assert.Len(t, report.Forecast, 2)
	assert.Equal(t, "20.4°F", report.Forecast["2025-03-18"].Hours["01:00"])
}

func TestWeatherTool_Failures(t *testing.T) {
	geo, fc := fakeOpenMeteo(t)
	tool := WeatherTool{http: http.DefaultClient, geocodingURL: geo, forecastURL: fc}

	_, err := tool.Invoke(context.Background(), agent.Call{Args: agent.Args{"city": "Atlantis"}})
	requireStatus(t, err, http.StatusNotFound, "City not found")

	_, err = tool.Invoke(context.Background(), agent.Call{Args: agent.Args{}})
	requireStatus(t, err, http.StatusBadRequest, "Missing required parameter: city")
}
