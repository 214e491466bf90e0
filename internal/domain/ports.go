package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Supplier is one upstream hotel data source. Fetch returns the raw,
// supplier-shaped records exactly as published.
type Supplier interface {
	Name() string
	Fetch(ctx context.Context) ([]json.RawMessage, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
}

// FetchJournal records the outcome of every supplier call.
type FetchJournal interface {
	LogFetch(ctx context.Context, rec FetchRecord) error
	LatestFetches(ctx context.Context) ([]FetchRecord, error)
}

type FetchRecord struct {
	Supplier  string        `json:"supplier"`
	OK        bool          `json:"ok"`
	Records   int           `json:"records"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"durationNs"`
	FetchedAt time.Time     `json:"fetchedAt"`
}

// Read models & queries

type HotelsQuery struct {
	DestinationID int64 // 0 means no restriction
	HotelIDs      []string
	Page          int
	Limit         int
}

type HotelsPage struct {
	Items           []Hotel  `json:"items"`
	Page            int      `json:"page"`
	Limit           int      `json:"limit"`
	FailedSuppliers []string `json:"failedSuppliers,omitempty"`
}

type HotelResult struct {
	Hotel           Hotel    `json:"hotel"`
	FailedSuppliers []string `json:"failedSuppliers,omitempty"`
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// WithDefaults fills page and limit when the caller left them unset.
func (q HotelsQuery) WithDefaults() HotelsQuery {
	if q.Page <= 0 {
		q.Page = DefaultPage
	}
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	return q
}
