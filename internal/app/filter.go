package app

import (
	"sort"
	"strings"

	"hotel_merge/internal/domain"
)

// FilterHotels keeps hotels matching destinationID (0 = any) and, when ids
// is non-empty, whose id is in ids. Both filters must hold.
func FilterHotels(hotels []domain.Hotel, destinationID int64, ids []string) []domain.Hotel {
	allow := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		allow[id] = struct{}{}
	}
	out := make([]domain.Hotel, 0, len(hotels))
	for _, h := range hotels {
		if destinationID != 0 && (h.DestinationID == nil || *h.DestinationID != destinationID) {
			continue
		}
		if len(allow) > 0 {
			if _, ok := allow[h.ID]; !ok {
				continue
			}
		}
		out = append(out, h)
	}
	return out
}

// Paginate returns the 1-based page of size limit. Pages past the end are
// empty, never an error.
func Paginate(hotels []domain.Hotel, page, limit int) []domain.Hotel {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		return []domain.Hotel{}
	}
	// compare in pages so (page-1)*limit cannot overflow
	pages := len(hotels) / limit
	if len(hotels)%limit != 0 {
		pages++
	}
	if page-1 >= pages {
		return []domain.Hotel{}
	}
	start := (page - 1) * limit
	end := min(start+limit, len(hotels))
	return hotels[start:end]
}

func FindHotel(hotels []domain.Hotel, id string) (domain.Hotel, bool) {
	for _, h := range hotels {
		if h.ID == id {
			return h, true
		}
	}
	return domain.Hotel{}, false
}

// normalizeIDs trims, drops empties, sorts and de-duplicates.
func normalizeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
