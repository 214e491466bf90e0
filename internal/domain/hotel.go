package domain

// Hotel is the canonical, reconciled record for one real-world hotel.
type Hotel struct {
	ID                string    `json:"id"`
	DestinationID     *int64    `json:"destinationId"`
	Name              string    `json:"name"`
	Location          Location  `json:"location"`
	Description       *string   `json:"description"`
	Amenities         Amenities `json:"amenities"`
	Images            Images    `json:"images"`
	BookingConditions []string  `json:"bookingConditions"`
}

type Location struct {
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
	Address    *string  `json:"address"`
	City       *string  `json:"city"`
	Country    *string  `json:"country"`
	PostalCode *string  `json:"postalCode"`

	// Fractional digits of Lat/Lng as the supplier wrote them ("1.30" -> 2).
	// Zero when unknown, e.g. after a cache round trip.
	LatDigits int `json:"-"`
	LngDigits int `json:"-"`
}

// Amenities keep first-insertion order; never nil after normalization.
type Amenities struct {
	General []string `json:"general"`
	Room    []string `json:"room"`
}

type Images struct {
	Rooms     []Image `json:"rooms"`
	Site      []Image `json:"site"`
	Amenities []Image `json:"amenities"`
}

type Image struct {
	Link        string `json:"link"`
	Description string `json:"description"`
}

// NewHotel returns an empty record with every list initialized, so an
// absent list serializes as [] and not null.
func NewHotel(id string) Hotel {
	return Hotel{
		ID: id,
		Amenities: Amenities{
			General: []string{},
			Room:    []string{},
		},
		Images: Images{
			Rooms:     []Image{},
			Site:      []Image{},
			Amenities: []Image{},
		},
		BookingConditions: []string{},
	}
}
