package app

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"hotel_merge/internal/adapters/observability"
	"hotel_merge/internal/domain"
)

// Aggregation is the reconciled catalog plus which suppliers contributed.
type Aggregation struct {
	Hotels    []domain.Hotel
	Succeeded []string
	Failed    []domain.SupplierFailure
}

// FailedSuppliers returns the names of suppliers dropped from the merge.
func (a Aggregation) FailedSuppliers() []string {
	if len(a.Failed) == 0 {
		return nil
	}
	out := make([]string, 0, len(a.Failed))
	for _, f := range a.Failed {
		out = append(out, f.Supplier)
	}
	return out
}

type Aggregator struct {
	suppliers []domain.Supplier
	journal   domain.FetchJournal // optional
}

// NewAggregator keeps suppliers in the given order; that order is the
// reconciliation order.
func NewAggregator(suppliers []domain.Supplier, journal domain.FetchJournal) *Aggregator {
	return &Aggregator{suppliers: suppliers, journal: journal}
}

// Suppliers returns the configured supplier names in reconciliation order.
func (a *Aggregator) Suppliers() []string {
	out := make([]string, 0, len(a.suppliers))
	for _, s := range a.suppliers {
		out = append(out, s.Name())
	}
	return out
}

type fetchOutcome struct {
	records []json.RawMessage
	err     error
	dur     time.Duration
}

// Aggregate fetches every supplier concurrently and waits for all of them.
// It fails only when no supplier succeeded.
func (a *Aggregator) Aggregate(ctx context.Context) (Aggregation, error) {
	outcomes := make([]fetchOutcome, len(a.suppliers))

	// each goroutine owns its slot; none returns an error so Wait never cuts the join short
	var g errgroup.Group
	for i, s := range a.suppliers {
		g.Go(func() error {
			start := time.Now()
			recs, err := s.Fetch(ctx)
			outcomes[i] = fetchOutcome{records: recs, err: err, dur: time.Since(start)}
			return nil
		})
	}
	_ = g.Wait()

	var agg Aggregation
	sources := make([]SourceRecords, 0, len(a.suppliers))
	for i, s := range a.suppliers {
		o := outcomes[i]
		rec := domain.FetchRecord{Supplier: s.Name(), Duration: o.dur, FetchedAt: time.Now().UTC()}

		if o.err != nil {
			log.Warn().Str("supplier", s.Name()).Dur("duration", o.dur).Err(o.err).Msg("supplier fetch failed")
			agg.Failed = append(agg.Failed, domain.SupplierFailure{Supplier: s.Name(), Err: o.err})
			rec.Error = o.err.Error()
			a.record(ctx, rec)
			continue
		}

		src := SourceRecords{Supplier: s.Name(), Hotels: make([]domain.Hotel, 0, len(o.records))}
		skipped := 0
		for _, raw := range o.records {
			h, ok := NormalizeHotel(raw)
			if !ok {
				skipped++
				continue
			}
			src.Hotels = append(src.Hotels, h)
		}
		if skipped > 0 {
			log.Debug().Str("supplier", s.Name()).Int("skipped", skipped).Msg("non-object supplier records skipped")
		}
		sources = append(sources, src)
		agg.Succeeded = append(agg.Succeeded, s.Name())

		rec.OK = true
		rec.Records = len(o.records)
		a.record(ctx, rec)
	}

	if len(agg.Succeeded) == 0 {
		observability.ObserveAggregation("unavailable")
		return Aggregation{}, &domain.SuppliersUnavailableError{Failures: agg.Failed}
	}

	if len(agg.Failed) > 0 {
		observability.ObserveAggregation("partial")
		log.Warn().Strs("failed", agg.FailedSuppliers()).Strs("succeeded", agg.Succeeded).Msg("aggregation degraded")
	} else {
		observability.ObserveAggregation("full")
	}

	agg.Hotels = Reconcile(sources)
	log.Debug().Int("hotels", len(agg.Hotels)).Int("suppliers", len(agg.Succeeded)).Msg("aggregation done")
	return agg, nil
}

func (a *Aggregator) record(ctx context.Context, rec domain.FetchRecord) {
	if a.journal == nil {
		return
	}
	if err := a.journal.LogFetch(ctx, rec); err != nil {
		log.Warn().Err(err).Str("supplier", rec.Supplier).Msg("fetch journal write failed")
	}
}
