package tools

import (
	"context"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/wilhg/actionskills/pkg/agent"
	"github.com/wilhg/actionskills/pkg/amadeus"
	"github.com/wilhg/actionskills/pkg/errmodel"
)

// CityTool resolves a free-text city name to IATA city codes.
type CityTool struct {
	api *amadeus.Client
}

func (CityTool) Describe() agent.ToolDescriptor {
	in := []byte(`{"type":"object","properties":{"city":{"type":"string","description":"City name or prefix"}}}`)
	out := []byte(`{
	  "type":"array",
	  "items":{
	    "type":"object",
	    "properties":{
	      "name":{"type":"string"},
	      "iata_code":{"type":"string"},
	      "state":{"type":"string"},
	      "country":{"type":"string"},
	      "timezone":{"type":"string"},
	      "location":{"type":"object"}
	    },
	    "required":["name","iata_code"]
	  }
	}`)
	return agent.ToolDescriptor{
		Name:         "get_iata",
		Description:  "Searches cities by keyword and returns their IATA codes",
		InputSchema:  in,
		OutputSchema: out,
		Permissions:  []agent.ToolPermission{permNetwork, permAmadeus},
	}
}

type cityLocation struct {
	Latitude  any `json:"latitude"`
	Longitude any `json:"longitude"`
}

type cityRecord struct {
	Name     string       `json:"name"`
	IATACode string       `json:"iata_code"`
	State    string       `json:"state"`
	Country  string       `json:"country"`
	Timezone string       `json:"timezone"`
	Location cityLocation `json:"location"`
}

func (t CityTool) Invoke(ctx context.Context, call agent.Call) (any, error) {
	if err := call.Args.Require("city"); err != nil {
		return nil, err
	}
	s, err := amadeusSession(ctx, t.api, call)
	if err != nil {
		return nil, err
	}
	b, err := amadeusGet(ctx, s, "/v1/reference-data/locations/cities", url.Values{"keyword": {call.Args.String("city")}})
	if err != nil {
		return nil, err
	}
	data := gjson.GetBytes(b, "data").Array()
	if len(data) == 0 {
		return nil, errmodel.NotFound("No cities found matching your search", map[string]any{"city": call.Args.String("city")})
	}
	cities := make([]cityRecord, 0, len(data))
	for _, c := range data {
		cities = append(cities, cityRecord{
			Name:     c.Get("name").String(),
			IATACode: c.Get("iataCode").String(),
			State:    c.Get("address.stateCode").String(),
			Country:  c.Get("address.countryCode").String(),
			Timezone: c.Get("timeZoneOffset").String(),
			Location: cityLocation{
				Latitude:  c.Get("geoCode.latitude").Value(),
				Longitude: c.Get("geoCode.longitude").Value(),
			},
		})
	}
	return cities, nil
}
