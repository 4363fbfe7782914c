package tools

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/wilhg/actionskills/pkg/agent"
	"github.com/wilhg/actionskills/pkg/errmodel"
)

const defaultTempUnit = "°C"

// WeatherTool geocodes a city on Open-Meteo and returns its hourly temperature forecast.
type WeatherTool struct {
	http         *http.Client
	geocodingURL string
	forecastURL  string
}

func (WeatherTool) Describe() agent.ToolDescriptor {
	in := []byte(`{"type":"object","properties":{"city":{"type":"string","description":"City name"}}}`)
	out := []byte(`{
	  "type":"object",
	  "properties":{
	    "location":{"type":"object","properties":{"latitude":{},"longitude":{},"timezone":{},"elevation":{}}},
	    "forecast":{"type":"object","additionalProperties":{
	      "type":"object","properties":{"hours":{"type":"object","additionalProperties":{"type":"string"}}},"required":["hours"]
	    }}
	  },
	  "required":["location","forecast"]
	}`)
	return agent.ToolDescriptor{
		Name:         "get_weather",
		Description:  "Hourly temperature forecast for a city, grouped by date",
		InputSchema:  in,
		OutputSchema: out,
		Permissions:  []agent.ToolPermission{permNetwork},
	}
}

type weatherLocation struct {
	Latitude  any `json:"latitude"`
	Longitude any `json:"longitude"`
	Timezone  any `json:"timezone"`
	Elevation any `json:"elevation"`
}

type dayForecast struct {
	Hours map[string]string `json:"hours"`
}

type weatherReport struct {
	Location weatherLocation        `json:"location"`
	Forecast map[string]dayForecast `json:"forecast"`
}

func (t WeatherTool) Invoke(ctx context.Context, call agent.Call) (any, error) {
	if err := call.Args.Require("city"); err != nil {
		return nil, err
	}
	city := call.Args.String("city")

	geo, err := getJSON(ctx, t.http, "Open-Meteo", t.geocodingURL+"?"+url.Values{"name": {city}}.Encode())
	if err != nil {
		return nil, err
	}
	first := gjson.GetBytes(geo, "results.0")
	if !first.Exists() {
		return nil, errmodel.NotFound("City not found", map[string]any{"city": city})
	}

	q := url.Values{}
	q.Set("latitude", first.Get("latitude").Raw)
	q.Set("longitude", first.Get("longitude").Raw)
	q.Set("hourly", "temperature_2m")
	q.Set("timezone", "auto")
	forecast, err := getJSON(ctx, t.http, "Open-Meteo", t.forecastURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}
	return reshapeForecast(forecast), nil
}

// reshapeForecast groups hourly.time/temperature_2m pairs by calendar date, keyed by
// "HH:MM". Temperatures keep their JSON literal so 21.0 stays "21.0°C".
func reshapeForecast(doc []byte) weatherReport {
	root := gjson.ParseBytes(doc)
	unit := defaultTempUnit
	if u := root.Get("hourly_units.temperature_2m"); u.Exists() && u.Type != gjson.Null {
		unit = u.String()
	}
	times := root.Get("hourly.time").Array()
	temps := root.Get("hourly.temperature_2m").Array()
	n := min(len(times), len(temps))

	out := weatherReport{
		Location: weatherLocation{
			Latitude:  root.Get("latitude").Value(),
			Longitude: root.Get("longitude").Value(),
			Timezone:  root.Get("timezone").Value(),
			Elevation: root.Get("elevation").Value(),
		},
		Forecast: make(map[string]dayForecast),
	}
	for i := 0; i < n; i++ {
		date, hour, _ := strings.Cut(times[i].String(), "T")
		if len(hour) > 5 {
			hour = hour[:5]
		}
		day, ok := out.Forecast[date]
		if !ok {
			day = dayForecast{Hours: map[string]string{}}
			out.Forecast[date] = day
		}
		day.Hours[hour] = temps[i].Raw + unit
	}
	return out
}
