package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hotel_merge/internal/app"
	"hotel_merge/internal/domain"
)

const (
	maxLimit              = 100
	failedSuppliersHeader = "X-Suppliers-Failed"
)

type Handlers struct {
	Q       *app.CatalogService
	Journal domain.FetchJournal             // optional
	Ready   func(ctx context.Context) error // optional
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/readyz", h.ready)
	s.mux.Route("/api", func(r chi.Router) {
		r.Get("/hotels", h.listHotels)
		r.Get("/hotels/{id}", h.getHotel)
		if h.Journal != nil {
			r.Get("/suppliers", h.supplierStatus)
		}
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError renders a pipeline error with its fixed public message.
func writeError(w http.ResponseWriter, err error) {
	status := domain.HTTPStatus(err)
	switch status {
	case http.StatusNotFound:
		writeProblem(w, status, "Not Found", "Hotel not found")
	case http.StatusServiceUnavailable:
		log.Warn().Err(err).Msg("catalog unavailable")
		detail := "Suppliers unavailable"
		if errors.Is(err, domain.ErrCacheUnavailable) {
			detail = "Cache unavailable"
		}
		writeProblem(w, status, "Service Unavailable", detail)
	default:
		log.Error().Err(err).Msg("catalog query failed")
		writeProblem(w, status, "Internal Server Error", "Error retrieving hotels")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "encode failed")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

func setFailedSuppliers(w http.ResponseWriter, failed []string) {
	if len(failed) > 0 {
		w.Header().Set(failedSuppliersHeader, strings.Join(failed, ","))
	}
}

// parseHotelsQuery accepts hotelIds both comma separated and repeated.
func parseHotelsQuery(r *http.Request) (domain.HotelsQuery, string) {
	qs := r.URL.Query()
	var q domain.HotelsQuery

	if v := strings.TrimSpace(qs.Get("destinationId")); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return q, "destinationId must be an integer"
		}
		q.DestinationID = n
	}
	for _, v := range qs["hotelIds"] {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				q.HotelIDs = append(q.HotelIDs, id)
			}
		}
	}

	q.Page = domain.DefaultPage
	if v := qs.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return q, "page must be an integer >= 1"
		}
		q.Page = n
	}
	q.Limit = domain.DefaultLimit
	if v := qs.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxLimit {
			return q, "limit must be an integer between 1 and 100"
		}
		q.Limit = n
	}
	return q, ""
}

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	q, bad := parseHotelsQuery(r)
	if bad != "" {
		writeProblem(w, http.StatusBadRequest, "Invalid query", bad)
		return
	}
	page, err := h.Q.ListHotels(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	setFailedSuppliers(w, page.FailedSuppliers)
	writeJSON(w, r, page.Items)
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	res, err := h.Q.GetHotel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	setFailedSuppliers(w, res.FailedSuppliers)
	writeJSON(w, r, res.Hotel)
}

func (h *Handlers) supplierStatus(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Journal.LatestFetches(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("read fetch journal failed")
		writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "fetch journal unavailable")
		return
	}
	if recs == nil {
		recs = []domain.FetchRecord{}
	}
	writeJSON(w, r, recs)
}

func (h *Handlers) ready(w http.ResponseWriter, r *http.Request) {
	if h.Ready != nil {
		if err := h.Ready(r.Context()); err != nil {
			log.Warn().Err(err).Msg("readiness check failed")
			writeProblem(w, http.StatusServiceUnavailable, "Not Ready", "Cache unavailable")
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
