package app

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"hotel_merge/internal/domain"
)

/********** extraction table (single source of truth) **********/

// fieldRule binds one canonical field to the ordered gjson paths that may
// hold it in a supplier record. set reports false when the value found at a
// path is unusable, in which case the next path is tried.
type fieldRule struct {
	field string
	paths []string
	set   func(h *domain.Hotel, v gjson.Result) bool
}

var hotelRules = []fieldRule{
	{"id", []string{"id", "Id", "hotel_id"}, func(h *domain.Hotel, v gjson.Result) bool {
		s, ok := idValue(v)
		h.ID = s
		return ok
	}},
	{"destinationId", []string{"destination_id", "DestinationId", "destination"}, func(h *domain.Hotel, v gjson.Result) bool {
		h.DestinationID = intValue(v)
		return h.DestinationID != nil
	}},
	{"name", []string{"name", "Name", "hotel_name"}, func(h *domain.Hotel, v gjson.Result) bool {
		s, ok := strValue(v)
		h.Name = s
		return ok
	}},
	{"location.lat", []string{"lat", "Latitude", "location.lat"}, func(h *domain.Hotel, v gjson.Result) bool {
		h.Location.Lat, h.Location.LatDigits = coordValue(v)
		return h.Location.Lat != nil
	}},
	{"location.lng", []string{"lng", "Longitude", "location.lng"}, func(h *domain.Hotel, v gjson.Result) bool {
		h.Location.Lng, h.Location.LngDigits = coordValue(v)
		return h.Location.Lng != nil
	}},
	{"location.address", []string{"address", "Address", "location.address"}, func(h *domain.Hotel, v gjson.Result) bool {
		h.Location.Address = strPtr(v)
		return h.Location.Address != nil
	}},
	{"location.city", []string{"City", "location.city"}, func(h *domain.Hotel, v gjson.Result) bool {
		h.Location.City = strPtr(v)
		return h.Location.City != nil
	}},
	{"location.country", []string{"Country", "location.country"}, func(h *domain.Hotel, v gjson.Result) bool {
		h.Location.Country = strPtr(v)
		return h.Location.Country != nil
	}},
	{"location.postalCode", []string{"PostalCode", "postal_code", "location.postal_code"}, func(h *domain.Hotel, v gjson.Result) bool {
		h.Location.PostalCode = strPtr(v)
		return h.Location.PostalCode != nil
	}},
	{"description", []string{"description", "Description", "details", "info"}, func(h *domain.Hotel, v gjson.Result) bool {
		h.Description = strPtr(v)
		return h.Description != nil
	}},
	// Three supplier shapes: {"amenities":{"general":[...]}}, {"Facilities":[...]}, {"amenities":[...]}.
	{"amenities.general", []string{"amenities.general", "Facilities", "amenities"}, func(h *domain.Hotel, v gjson.Result) bool {
		list, ok := stringList(v)
		if ok {
			h.Amenities.General = list
		}
		return ok
	}},
	{"amenities.room", []string{"amenities.room"}, func(h *domain.Hotel, v gjson.Result) bool {
		list, ok := stringList(v)
		if ok {
			h.Amenities.Room = list
		}
		return ok
	}},
	{"images.rooms", []string{"images.rooms"}, func(h *domain.Hotel, v gjson.Result) bool {
		list, ok := imageList(v)
		if ok {
			h.Images.Rooms = list
		}
		return ok
	}},
	{"images.site", []string{"images.site"}, func(h *domain.Hotel, v gjson.Result) bool {
		list, ok := imageList(v)
		if ok {
			h.Images.Site = list
		}
		return ok
	}},
	{"images.amenities", []string{"images.amenities"}, func(h *domain.Hotel, v gjson.Result) bool {
		list, ok := imageList(v)
		if ok {
			h.Images.Amenities = list
		}
		return ok
	}},
	{"bookingConditions", []string{"booking_conditions", "BookingConditions"}, func(h *domain.Hotel, v gjson.Result) bool {
		list, ok := stringList(v)
		if ok {
			h.BookingConditions = list
		}
		return ok
	}},
}

var imageAliases = map[string][]string{
	"link":        {"link", "url"},
	"description": {"description", "caption"},
}

/********** normalizer **********/

// NormalizeHotel maps one raw supplier record onto the canonical shape.
// It reports false only when the payload is not a JSON object; missing or
// malformed fields are left absent.
func NormalizeHotel(raw json.RawMessage) (domain.Hotel, bool) {
	if !gjson.ValidBytes(raw) {
		return domain.Hotel{}, false
	}
	rec := gjson.ParseBytes(raw)
	if !rec.IsObject() {
		return domain.Hotel{}, false
	}

	h := domain.NewHotel("")
	for _, rule := range hotelRules {
		for _, path := range rule.paths {
			v := rec.Get(path)
			if !v.Exists() {
				continue
			}
			if rule.set(&h, v) {
				break
			}
		}
	}
	return h, true
}

/********** tiny helpers **********/

func strValue(v gjson.Result) (string, bool) {
	if v.Type != gjson.String {
		return "", false
	}
	s := strings.TrimSpace(v.Str)
	return s, s != ""
}

func strPtr(v gjson.Result) *string {
	if s, ok := strValue(v); ok {
		return &s
	}
	return nil
}

// idValue accepts string ids and bare numeric ids.
func idValue(v gjson.Result) (string, bool) {
	if v.Type == gjson.Number {
		return v.Raw, true
	}
	return strValue(v)
}

// intValue returns a non-zero integer from a number or numeric string.
func intValue(v gjson.Result) *int64 {
	var n int64
	switch v.Type {
	case gjson.Number:
		if v.Num != math.Trunc(v.Num) {
			return nil
		}
		n = v.Int()
	case gjson.String:
		x, err := strconv.ParseInt(strings.TrimSpace(v.Str), 10, 64)
		if err != nil {
			return nil
		}
		n = x
	default:
		return nil
	}
	if n == 0 {
		return nil
	}
	return &n
}

// floatValue accepts numbers and strings like "1.28" or "1,28".
func floatValue(v gjson.Result) *float64 {
	var f float64
	switch v.Type {
	case gjson.Number:
		f = v.Num
	case gjson.String:
		s := strings.TrimSpace(strings.ReplaceAll(v.Str, ",", "."))
		if s == "" {
			return nil
		}
		x, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = x
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// coordValue is floatValue plus the number of fractional digits in the
// supplier's own text, so trailing zeros count.
func coordValue(v gjson.Result) (*float64, int) {
	f := floatValue(v)
	if f == nil {
		return nil, 0
	}
	text := v.Raw
	if v.Type == gjson.String {
		text = v.Str
	}
	text = strings.TrimSpace(strings.ReplaceAll(text, ",", "."))
	if strings.ContainsAny(text, "eE") {
		return f, decimals(*f)
	}
	i := strings.IndexByte(text, '.')
	if i < 0 {
		return f, 0
	}
	return f, len(text) - i - 1
}

// stringList keeps the trimmed, non-empty string items of an array.
// Any array counts as a match, even an empty one.
func stringList(v gjson.Result) ([]string, bool) {
	if !v.IsArray() {
		return nil, false
	}
	out := []string{}
	for _, it := range v.Array() {
		if s, ok := strValue(it); ok {
			out = append(out, s)
		}
	}
	return out, true
}

// imageList reads {link|url, description|caption} objects; items without a
// link are dropped.
func imageList(v gjson.Result) ([]domain.Image, bool) {
	if !v.IsArray() {
		return nil, false
	}
	out := []domain.Image{}
	for _, it := range v.Array() {
		if !it.IsObject() {
			continue
		}
		link := firstString(it, imageAliases["link"])
		if link == "" {
			continue
		}
		out = append(out, domain.Image{Link: link, Description: firstString(it, imageAliases["description"])})
	}
	return out, true
}

func firstString(v gjson.Result, paths []string) string {
	for _, p := range paths {
		if s, ok := strValue(v.Get(p)); ok {
			return s
		}
	}
	return ""
}
