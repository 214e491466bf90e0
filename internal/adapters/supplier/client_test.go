package supplier_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"hotel_merge/internal/adapters/supplier"
	"hotel_merge/internal/domain"
)

func TestClient_Fetch_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1:
			w.WriteHeader(http.StatusServiceUnavailable)
		case 2:
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"Id":"iJhz"},{"id":"SjyX"}]`))
		}
	}))
	defer ts.Close()

	cl, err := supplier.New("acme", ts.URL, supplier.Options{Timeout: 3 * time.Second, Retries: 3, RPS: 100})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	recs, err := cl.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if atomic.LoadInt32(&hits) != 3 {
		t.Fatalf("expected 3 calls due to retries, got %d", hits)
	}
}

func TestClient_Fetch_404NotRetried(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.NotFound(w, r)
	}))
	defer ts.Close()

	cl, err := supplier.New("acme", ts.URL, supplier.Options{Retries: 3, RPS: 100})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	_, err = cl.Fetch(context.Background())
	if !errors.Is(err, domain.ErrSupplierStatus) {
		t.Fatalf("expected ErrSupplierStatus, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("404 must not be retried, got %d calls", hits)
	}
}

func TestClient_Fetch_GivesUpAfterRetries(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	cl, err := supplier.New("acme", ts.URL, supplier.Options{Timeout: 3 * time.Second, Retries: 1, RPS: 100})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := cl.Fetch(context.Background()); !errors.Is(err, domain.ErrSupplierStatus) {
		t.Fatalf("expected ErrSupplierStatus, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 2 {
		t.Fatalf("expected 2 attempts, got %d", hits)
	}
}

func TestClient_Fetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	cl, err := supplier.New("slow", ts.URL, supplier.Options{Timeout: 100 * time.Millisecond, RPS: 100})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	start := time.Now()
	_, err = cl.Fetch(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("timeout not enforced: %v", time.Since(start))
	}
}

func TestClient_Fetch_BadBodies(t *testing.T) {
	cases := map[string]string{
		"object":  `{"id":"1"}`,
		"garbage": `not json`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer ts.Close()

			cl, err := supplier.New("acme", ts.URL, supplier.Options{RPS: 100})
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if _, err := cl.Fetch(context.Background()); err == nil {
				t.Fatalf("expected decode error")
			}
		})
	}
}

func TestClient_Fetch_NullIsEmpty(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	}))
	defer ts.Close()

	cl, err := supplier.New("acme", ts.URL, supplier.Options{RPS: 100})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	recs, err := cl.Fetch(context.Background())
	if err != nil || recs == nil || len(recs) != 0 {
		t.Fatalf("expected empty list, got %v %v", recs, err)
	}
}

func TestNameFromURL(t *testing.T) {
	cases := map[string]string{
		"https://5f2be0b3.mockapi.io/suppliers/acme":       "acme",
		"https://5f2be0b3.mockapi.io/suppliers/patagonia/": "patagonia",
		"http://localhost:8080":                            "http://localhost:8080",
	}
	for in, want := range cases {
		if got := supplier.NameFromURL(in); got != want {
			t.Fatalf("NameFromURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFromURLs(t *testing.T) {
	sups, err := supplier.FromURLs([]string{"http://x/suppliers/acme", "http://x/suppliers/paperflies"}, supplier.Options{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(sups) != 2 || sups[0].Name() != "acme" || sups[1].Name() != "paperflies" {
		t.Fatalf("unexpected suppliers: %v", sups)
	}
	if _, err := supplier.FromURLs([]string{"::bad"}, supplier.Options{}); err == nil {
		t.Fatalf("expected bad url error")
	}
}

func TestClient_Fetch_RetryAfterBoundedByTimeout(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	cl, err := supplier.New("acme", ts.URL, supplier.Options{Timeout: 200 * time.Millisecond, Retries: 2, RPS: 100})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	start := time.Now()
	_, err = cl.Fetch(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded while waiting out Retry-After, got %v", err)
	}
	if time.Since(start) > 2*time.Second || atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("took %v with %d calls", time.Since(start), hits)
	}
}
