package tools

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/wilhg/actionskills/pkg/agent"
	"github.com/wilhg/actionskills/pkg/amadeus"
	"github.com/wilhg/actionskills/pkg/errmodel"
)

// maxHotelIDs bounds the hotel-offers query built from the by-city lookup.
const maxHotelIDs = 20

// HotelTool searches hotel offers around a city in two steps: hotel ids by city, then offers.
type HotelTool struct {
	api *amadeus.Client
	log logrus.FieldLogger
}

func (HotelTool) Describe() agent.ToolDescriptor {
	in := []byte(`{
	  "type":"object",
	  "properties":{
	    "city_code":{"type":"string","description":"IATA city code"},
	    "check_in":{"type":"string","description":"YYYY-MM-DD"},
	    "check_out":{"type":"string","description":"YYYY-MM-DD"},
	    "adults":{"type":"string","description":"number of adult guests, default 1"},
	    "radius":{"type":"string","description":"search radius in km, default 5"}
	  }
	}`)
	out := []byte(`{
	  "type":"array",
	  "items":{
	    "type":"object",
	    "properties":{
	      "hotel":{"type":"object","required":["name"]},
	      "offers":{"type":"array","items":{"type":"object"}}
	    },
	    "required":["hotel","offers"]
	  }
	}`)
	return agent.ToolDescriptor{
		Name:         "search_hotels",
		Description:  "Searches hotel offers near a city for the given stay",
		InputSchema:  in,
		OutputSchema: out,
		Permissions:  []agent.ToolPermission{permNetwork, permAmadeus},
	}
}

func (t HotelTool) Invoke(ctx context.Context, call agent.Call) (any, error) {
	a := call.Args
	if err := a.RequireAll("city_code", "check_in", "check_out"); err != nil {
		return nil, err
	}
	adults, err := a.Int("adults", 1)
	if err != nil {
		return nil, err
	}
	radius, err := a.Int("radius", 5)
	if err != nil {
		return nil, err
	}
	checkIn, err := parseDate(a.String("check_in"))
	if err != nil {
		return nil, err
	}
	checkOut, err := parseDate(a.String("check_out"))
	if err != nil {
		return nil, err
	}
	if !checkOut.After(checkIn) {
		return nil, errmodel.Validation("invalid_date_range", "Check-out date must be after check-in date", map[string]any{"check_in": a.String("check_in"), "check_out": a.String("check_out")})
	}

	s, err := amadeusSession(ctx, t.api, call)
	if err != nil {
		return nil, err
	}
	hotels, err := amadeusGet(ctx, s, "/v1/reference-data/locations/hotels/by-city", url.Values{
		"cityCode":   {a.String("city_code")},
		"radius":     {strconv.Itoa(radius)},
		"radiusUnit": {"KM"},
	})
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, h := range gjson.GetBytes(hotels, "data").Array() {
		if len(ids) == maxHotelIDs {
			break
		}
		// entries without an id cannot be priced
		if id := h.Get("hotelId").String(); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, errmodel.NotFound("No hotels found in the specified location", map[string]any{"city_code": a.String("city_code")})
	}

	offers, err := amadeusGet(ctx, s, "/v3/shopping/hotel-offers", url.Values{
		"hotelIds":     {strings.Join(ids, ",")},
		"checkInDate":  {a.String("check_in")},
		"checkOutDate": {a.String("check_out")},
		"adults":       {strconv.Itoa(adults)},
	})
	if err != nil {
		return nil, err
	}
	data := gjson.GetBytes(offers, "data").Array()
	if len(data) == 0 {
		return nil, errmodel.NotFound("No hotel offers found for the specified criteria", map[string]any{"hotel_ids": len(ids)})
	}

	out := make([]hotelRecord, 0, len(data))
	for _, o := range data {
		rec, err := formatHotelOffer(o)
		if err != nil {
			t.log.WithFields(logrus.Fields{"error": err.Error(), "offer": truncateRaw(o.Raw)}).Warn("hotel offer degraded")
			rec = hotelRecord{
				Hotel:  degradedHotel{Name: valueOr(o.Get("hotel.name"), "Unknown Hotel"), Error: "Error formatting hotel data: " + err.Error()},
				Offers: []hotelOffer{},
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

type hotelLocation struct {
	Latitude  any `json:"latitude"`
	Longitude any `json:"longitude"`
}

type hotelContact struct {
	Phone any `json:"phone"`
	Email any `json:"email"`
}

type hotelAddress struct {
	Street     any `json:"street"`
	City       any `json:"city"`
	PostalCode any `json:"postal_code"`
	Country    any `json:"country"`
}

type hotelInfo struct {
	Name        any           `json:"name"`
	ChainCode   any           `json:"chainCode"`
	Rating      any           `json:"rating"`
	Description any           `json:"description"`
	Amenities   any           `json:"amenities"`
	Location    hotelLocation `json:"location"`
	Contact     hotelContact  `json:"contact"`
	Address     *hotelAddress `json:"address,omitempty"`
}

type degradedHotel struct {
	Name  any    `json:"name"`
	Error string `json:"error"`
}

type hotelRoom struct {
	Type        any `json:"type"`
	Description any `json:"description"`
	BedType     any `json:"bed_type"`
}

type hotelGuests struct {
	Adults any `json:"adults"`
}

type hotelOffer struct {
	ID           any         `json:"id"`
	Price        hotelPrice  `json:"price"`
	Room         hotelRoom   `json:"room"`
	Guests       hotelGuests `json:"guests"`
	Policies     any         `json:"policies"`
	Cancellation any         `json:"cancellation"`
}

type hotelPrice struct {
	Total    any `json:"total"`
	Currency any `json:"currency"`
}

// hotelRecord.Hotel is either hotelInfo or degradedHotel.
type hotelRecord struct {
	Hotel  any          `json:"hotel"`
	Offers []hotelOffer `json:"offers"`
}

// valueOr returns r's decoded value, or def when r is missing or null.
func valueOr(r gjson.Result, def any) any {
	if !r.Exists() || r.Type == gjson.Null {
		return def
	}
	return r.Value()
}

// formatHotelOffer reshapes one hotel-offers entry. Missing keys take named defaults;
// an error means the record is too malformed to keep and the caller degrades it.
func formatHotelOffer(o gjson.Result) (hotelRecord, error) {
	h := o.Get("hotel")
	info := hotelInfo{
		Name:        valueOr(h.Get("name"), "Unknown Hotel"),
		ChainCode:   valueOr(h.Get("chainCode"), ""),
		Rating:      valueOr(h.Get("rating"), ""),
		Description: valueOr(h.Get("description"), ""),
		Amenities:   valueOr(h.Get("amenities"), []any{}),
		Location: hotelLocation{
			Latitude:  valueOr(h.Get("latitude"), ""),
			Longitude: valueOr(h.Get("longitude"), ""),
		},
		Contact: hotelContact{
			Phone: valueOr(h.Get("contact.phone"), ""),
			Email: valueOr(h.Get("contact.email"), ""),
		},
	}
	if addr := h.Get("address"); addr.IsObject() && len(addr.Map()) > 0 {
		street, err := firstLine(addr.Get("lines"))
		if err != nil {
			return hotelRecord{}, err
		}
		info.Address = &hotelAddress{
			Street:     street,
			City:       valueOr(addr.Get("cityName"), ""),
			PostalCode: valueOr(addr.Get("postalCode"), ""),
			Country:    valueOr(addr.Get("countryCode"), ""),
		}
	}

	rec := hotelRecord{Hotel: info, Offers: []hotelOffer{}}
	offers := o.Get("offers")
	if offers.Exists() && offers.Type != gjson.Null && !offers.IsArray() {
		return hotelRecord{}, fmt.Errorf("offers is not a list")
	}
	// a non-object entry has no fields and yields an all-default offer
	for _, d := range offers.Array() {
		rec.Offers = append(rec.Offers, hotelOffer{
			ID: valueOr(d.Get("id"), ""),
			Price: hotelPrice{
				Total:    valueOr(d.Get("price.total"), "0"),
				Currency: valueOr(d.Get("price.currency"), "USD"),
			},
			Room: hotelRoom{
				Type:        valueOr(d.Get("room.type"), "Standard"),
				Description: valueOr(d.Get("room.description"), ""),
				BedType:     valueOr(d.Get("room.bedType"), ""),
			},
			Guests:       hotelGuests{Adults: valueOr(d.Get("guests.adults"), 1)},
			Policies:     valueOr(d.Get("policies"), map[string]any{}),
			Cancellation: valueOr(d.Get("cancellation"), map[string]any{}),
		})
	}
	return rec, nil
}

// firstLine returns address.lines[0]; absent lines yield "", an empty list is malformed.
func firstLine(lines gjson.Result) (any, error) {
	if !lines.Exists() || lines.Type == gjson.Null {
		return "", nil
	}
	if !lines.IsArray() {
		return nil, fmt.Errorf("address lines is not a list")
	}
	all := lines.Array()
	if len(all) == 0 {
		return nil, fmt.Errorf("address lines is empty")
	}
	return all[0].Value(), nil
}

func truncateRaw(s string) string {
	if len(s) <= 512 {
		return s
	}
	cut := 509
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
