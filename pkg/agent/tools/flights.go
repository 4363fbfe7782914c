package tools

import (
	"context"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/wilhg/actionskills/pkg/agent"
	"github.com/wilhg/actionskills/pkg/amadeus"
	"github.com/wilhg/actionskills/pkg/errmodel"
)

// maxFlightOffers caps the flight-offers search.
const maxFlightOffers = 20

// FlightTool searches flight offers between two IATA codes.
type FlightTool struct {
	api *amadeus.Client
}

func (FlightTool) Describe() agent.ToolDescriptor {
	in := []byte(`{
	  "type":"object",
	  "properties":{
	    "origin":{"type":"string","description":"IATA code of the origin"},
	    "destination":{"type":"string","description":"IATA code of the destination"},
	    "departure_date":{"type":"string","description":"YYYY-MM-DD"},
	    "return_date":{"type":"string","description":"YYYY-MM-DD, optional"},
	    "adults":{"type":"string","description":"number of adult passengers, default 1"}
	  }
	}`)
	out := []byte(`{
	  "type":"array",
	  "items":{
	    "type":"object",
	    "properties":{
	      "price":{"type":"object","properties":{"total":{"type":"string"},"currency":{"type":"string"}}},
	      "segments":{"type":"array","items":{"type":"object","required":["departure","arrival","carrier","flight_number","duration"]}}
	    },
	    "required":["price","segments"]
	  }
	}`)
	return agent.ToolDescriptor{
		Name:         "search_flights",
		Description:  "Searches flight offers (up to 20) for a one-way or round trip",
		InputSchema:  in,
		OutputSchema: out,
		Permissions:  []agent.ToolPermission{permNetwork, permAmadeus},
	}
}

type flightEndpoint struct {
	Airport string `json:"airport"`
	Time    string `json:"time"`
}

type flightSegment struct {
	Departure    flightEndpoint `json:"departure"`
	Arrival      flightEndpoint `json:"arrival"`
	Carrier      string         `json:"carrier"`
	FlightNumber string         `json:"flight_number"`
	Duration     string         `json:"duration"`
}

type price struct {
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

type flightOffer struct {
	Price    price           `json:"price"`
	Segments []flightSegment `json:"segments"`
}

func (t FlightTool) Invoke(ctx context.Context, call agent.Call) (any, error) {
	a := call.Args
	if err := a.RequireAll("origin", "destination", "departure_date"); err != nil {
		return nil, err
	}
	adults, err := a.Int("adults", 1)
	if err != nil {
		return nil, err
	}
	departure, err := parseDate(a.String("departure_date"))
	if err != nil {
		return nil, err
	}
	if rd := a.String("return_date"); rd != "" {
		ret, err := parseDate(rd)
		if err != nil {
			return nil, err
		}
		if !ret.After(departure) {
			return nil, errmodel.Validation("invalid_date_range", "Return date must be after departure date", map[string]any{"departure_date": a.String("departure_date"), "return_date": rd})
		}
	}

	s, err := amadeusSession(ctx, t.api, call)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("originLocationCode", a.String("origin"))
	q.Set("destinationLocationCode", a.String("destination"))
	q.Set("departureDate", a.String("departure_date"))
	if rd := a.String("return_date"); rd != "" {
		q.Set("returnDate", rd)
	}
	q.Set("adults", strconv.Itoa(adults))
	q.Set("max", strconv.Itoa(maxFlightOffers))
	b, err := amadeusGet(ctx, s, "/v2/shopping/flight-offers", q)
	if err != nil {
		return nil, err
	}

	data := gjson.GetBytes(b, "data").Array()
	offers := make([]flightOffer, 0, len(data))
	for _, o := range data {
		offers = append(offers, reshapeFlightOffer(o))
	}
	return offers, nil
}

// reshapeFlightOffer flattens segments across all itineraries in traversal order.
func reshapeFlightOffer(o gjson.Result) flightOffer {
	out := flightOffer{
		Price: price{
			Total:    o.Get("price.total").String(),
			Currency: o.Get("price.currency").String(),
		},
		Segments: []flightSegment{},
	}
	for _, it := range o.Get("itineraries").Array() {
		for _, seg := range it.Get("segments").Array() {
			out.Segments = append(out.Segments, flightSegment{
				Departure:    flightEndpoint{Airport: seg.Get("departure.iataCode").String(), Time: seg.Get("departure.at").String()},
				Arrival:      flightEndpoint{Airport: seg.Get("arrival.iataCode").String(), Time: seg.Get("arrival.at").String()},
				Carrier:      seg.Get("carrierCode").String(),
				FlightNumber: seg.Get("number").String(),
				Duration:     seg.Get("duration").String(),
			})
		}
	}
	return out
}
