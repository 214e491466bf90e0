package app

import (
	"math"
	"strconv"
	"testing"

	"hotel_merge/internal/domain"
)

func catalogOf(n int, dest func(i int) *int64) []domain.Hotel {
	out := make([]domain.Hotel, 0, n)
	for i := 1; i <= n; i++ {
		h := domain.NewHotel(strconv.Itoa(i))
		h.DestinationID = dest(i)
		out = append(out, h)
	}
	return out
}

func pint64(v int64) *int64 { return &v }

func ids(hs []domain.Hotel) []string {
	out := make([]string, 0, len(hs))
	for _, h := range hs {
		out = append(out, h.ID)
	}
	return out
}

func TestPaginate_Boundaries(t *testing.T) {
	all := catalogOf(25, func(int) *int64 { return pint64(1) })

	got := ids(Paginate(all, 3, 10))
	want := []string{"21", "22", "23", "24", "25"}
	if len(got) != len(want) {
		t.Fatalf("page 3: got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("page 3: got %v want %v", got, want)
		}
	}

	if out := Paginate(all, 10, 10); out == nil || len(out) != 0 {
		t.Fatalf("page past the end must be an empty list, got %v", out)
	}
	if got := ids(Paginate(all, 0, 2)); len(got) != 2 || got[0] != "1" {
		t.Fatalf("page < 1 should read as page 1, got %v", got)
	}
	if out := Paginate(all, math.MaxInt, 10); out == nil || len(out) != 0 {
		t.Fatalf("huge page must be an empty list, got %v", out)
	}
	if got := ids(Paginate(all, 1, math.MaxInt)); len(got) != 25 {
		t.Fatalf("huge limit should return everything, got %d", len(got))
	}
	if got := Paginate(all, 1, 0); len(got) != 0 {
		t.Fatalf("zero limit should be empty, got %v", got)
	}
}

func TestFilterHotels(t *testing.T) {
	all := catalogOf(6, func(i int) *int64 {
		switch {
		case i == 6:
			return nil
		case i%2 == 0:
			return pint64(200)
		default:
			return pint64(100)
		}
	})

	cases := []struct {
		name string
		dest int64
		ids  []string
		want []string
	}{
		{"no filters", 0, nil, []string{"1", "2", "3", "4", "5", "6"}},
		{"destination only", 100, nil, []string{"1", "3", "5"}},
		{"ids only", 0, []string{"6", "2"}, []string{"2", "6"}},
		{"both filters AND", 200, []string{"1", "2", "6"}, []string{"2"}},
		{"empty id list is no restriction", 200, []string{}, []string{"2", "4"}},
		{"nothing matches", 999, nil, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ids(FilterHotels(all, tc.dest, tc.ids))
			if len(got) != len(tc.want) {
				t.Fatalf("got %v want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v want %v", got, tc.want)
				}
			}
		})
	}
}

func TestFindHotel(t *testing.T) {
	all := catalogOf(3, func(int) *int64 { return nil })
	if h, ok := FindHotel(all, "2"); !ok || h.ID != "2" {
		t.Fatalf("expected hotel 2, got %+v %v", h, ok)
	}
	if _, ok := FindHotel(all, "9"); ok {
		t.Fatalf("expected not found")
	}
}

func TestListKey(t *testing.T) {
	q := domain.HotelsQuery{HotelIDs: normalizeIDs([]string{" b", "a", "b", ""})}.WithDefaults()
	if got := ListKey(q); got != "hotels:_:a,b:1:10" {
		t.Fatalf("unexpected key %q", got)
	}
	q = domain.HotelsQuery{DestinationID: 5432, Page: 2, Limit: 5}
	if got := ListKey(q); got != "hotels:5432::2:5" {
		t.Fatalf("unexpected key %q", got)
	}
	if HotelKey("iJhz") != "hotel:iJhz" {
		t.Fatalf("unexpected hotel key %q", HotelKey("iJhz"))
	}
}
