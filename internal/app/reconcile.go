package app

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"hotel_merge/internal/domain"
)

// SourceRecords is the normalized output of one supplier. The position of a
// SourceRecords in the slice handed to Reconcile decides tie-breaks.
type SourceRecords struct {
	Supplier string
	Hotels   []domain.Hotel
}

// Reconcile folds normalized records into one canonical record per id,
// walking sources in the given order. Output order is the order in which
// each id was first seen. Records without an id are skipped.
//
// The result depends on source order: on equal-length names or equal
// coordinate precision the earlier source keeps its value.
func Reconcile(sources []SourceRecords) []domain.Hotel {
	index := make(map[string]int)
	out := make([]domain.Hotel, 0)
	for _, src := range sources {
		for _, h := range src.Hotels {
			if h.ID == "" {
				continue
			}
			i, ok := index[h.ID]
			if !ok {
				index[h.ID] = len(out)
				out = append(out, mergeHotel(domain.NewHotel(h.ID), h))
				continue
			}
			out[i] = mergeHotel(out[i], h)
		}
	}
	return out
}

// mergeHotel applies the field-level tie-break rules of in onto cur.
func mergeHotel(cur, in domain.Hotel) domain.Hotel {
	if longer(in.Name, cur.Name) {
		cur.Name = in.Name
	}
	if in.Description != nil && (cur.Description == nil || longer(*in.Description, *cur.Description)) {
		cur.Description = clonePtr(in.Description)
	}
	if cur.DestinationID == nil {
		cur.DestinationID = clonePtr(in.DestinationID)
	}

	loc := &cur.Location
	if preciser(in.Location.Lat, in.Location.LatDigits, loc.Lat, loc.LatDigits) {
		loc.Lat, loc.LatDigits = clonePtr(in.Location.Lat), in.Location.LatDigits
	}
	if preciser(in.Location.Lng, in.Location.LngDigits, loc.Lng, loc.LngDigits) {
		loc.Lng, loc.LngDigits = clonePtr(in.Location.Lng), in.Location.LngDigits
	}
	if in.Location.Address != nil && (loc.Address == nil || longer(*in.Location.Address, *loc.Address)) {
		loc.Address = clonePtr(in.Location.Address)
	}
	// first writer wins
	if loc.City == nil {
		loc.City = clonePtr(in.Location.City)
	}
	if loc.Country == nil {
		loc.Country = clonePtr(in.Location.Country)
	}
	if loc.PostalCode == nil {
		loc.PostalCode = clonePtr(in.Location.PostalCode)
	}

	cur.Amenities.General = unionAmenities(cur.Amenities.General, in.Amenities.General)
	cur.Amenities.Room = unionAmenities(cur.Amenities.Room, in.Amenities.Room)

	cur.Images.Rooms = unionImages(cur.Images.Rooms, in.Images.Rooms)
	cur.Images.Site = unionImages(cur.Images.Site, in.Images.Site)
	cur.Images.Amenities = unionImages(cur.Images.Amenities, in.Images.Amenities)

	cur.BookingConditions = unionExact(cur.BookingConditions, in.BookingConditions)
	return cur
}

/********** tie-breaks **********/

// longer reports whether in is non-empty and strictly longer than cur.
func longer(in, cur string) bool {
	return in != "" && utf8.RuneCountInString(in) > utf8.RuneCountInString(cur)
}

// preciser reports whether in should replace cur: cur is absent, or in has
// strictly more digits after the decimal point. Recorded supplier digits are
// preferred; without them the shortest float rendering is counted.
func preciser(in *float64, inDigits int, cur *float64, curDigits int) bool {
	if in == nil {
		return false
	}
	if cur == nil {
		return true
	}
	return precision(*in, inDigits) > precision(*cur, curDigits)
}

func precision(f float64, digits int) int {
	return max(digits, decimals(f))
}

// decimals counts fractional digits in the shortest exact rendering of f.
func decimals(f float64) int {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}

/********** set unions **********/

var (
	camelBoundary = regexp.MustCompile(`([a-z])([A-Z])`)
	separatorRun  = regexp.MustCompile(`[\s-]+`)
)

// NormalizeAmenity is the comparison form of an amenity: "BusinessCenter",
// "business center" and "business-center" all become "business-center".
func NormalizeAmenity(s string) string {
	s = camelBoundary.ReplaceAllString(s, "$1 $2")
	s = strings.TrimSpace(strings.ToLower(s))
	return separatorRun.ReplaceAllString(s, "-")
}

// unionAmenities appends the amenities of in whose normalized form is new,
// keeping the first-seen spelling.
func unionAmenities(cur, in []string) []string {
	out := make([]string, 0, len(cur)+len(in))
	seen := make(map[string]struct{}, len(cur)+len(in))
	for _, list := range [][]string{cur, in} {
		for _, a := range list {
			key := NormalizeAmenity(a)
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, strings.TrimSpace(a))
		}
	}
	return out
}

func unionImages(cur, in []domain.Image) []domain.Image {
	out := make([]domain.Image, 0, len(cur)+len(in))
	seen := make(map[domain.Image]struct{}, len(cur)+len(in))
	for _, list := range [][]domain.Image{cur, in} {
		for _, img := range list {
			if _, dup := seen[img]; dup {
				continue
			}
			seen[img] = struct{}{}
			out = append(out, img)
		}
	}
	return out
}

// unionExact is a first-seen union on exact string equality.
func unionExact(cur, in []string) []string {
	out := make([]string, 0, len(cur)+len(in))
	seen := make(map[string]struct{}, len(cur)+len(in))
	for _, list := range [][]string{cur, in} {
		for _, s := range list {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
