package redisad

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

type entry struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache_MissSetHit(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	var got entry
	ok, err := c.Get(ctx, "hotels:_::1:10", &got)
	if err != nil || ok {
		t.Fatalf("expected clean miss, ok=%v err=%v", ok, err)
	}

	want := entry{Name: "Beach Villas", Items: []string{"pool"}}
	if err := c.Set(ctx, "hotels:_::1:10", want, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ttl := mr.TTL("hotels:_::1:10"); ttl != 60*time.Second {
		t.Fatalf("ttl = %v", ttl)
	}

	ok, err = c.Get(ctx, "hotels:_::1:10", &got)
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if got.Name != want.Name || len(got.Items) != 1 || got.Items[0] != "pool" {
		t.Fatalf("unexpected value: %+v", got)
	}
}

func TestCache_Expiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "hotel:1", entry{Name: "x"}, 10); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(11 * time.Second)

	var got entry
	if ok, err := c.Get(ctx, "hotel:1", &got); err != nil || ok {
		t.Fatalf("expected expired entry to miss, ok=%v err=%v", ok, err)
	}
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	c, mr := newTestCache(t)
	if err := mr.Set("hotel:1", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	var got entry
	ok, err := c.Get(context.Background(), "hotel:1", &got)
	if err != nil || ok {
		t.Fatalf("expected corrupt entry to read as miss, ok=%v err=%v", ok, err)
	}
}

func TestCache_ServerDown(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var got entry
	if _, err := c.Get(ctx, "hotel:1", &got); err == nil {
		t.Fatalf("expected get error with server down")
	}
	if err := c.Set(ctx, "hotel:1", entry{}, 10); err == nil {
		t.Fatalf("expected set error with server down")
	}
	if err := c.Ping(ctx); err == nil {
		t.Fatalf("expected ping error with server down")
	}
}
