package catalog

import (
	"testing"
	"time"
)

func TestParseSort(t *testing.T) {
	cases := map[string]Sort{
		"":         Popular,
		"all":      Popular,
		"popular":  Popular,
		"latest":   Latest,
		"trending": Trending,
	}
	for in, want := range cases {
		got, ok := ParseSort(in)
		if !ok || got != want {
			t.Errorf("ParseSort(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	if _, ok := ParseSort("oldest"); ok {
		t.Error("expected oldest to be rejected")
	}
}

func TestListingQuery_HasColumnOrder(t *testing.T) {
	q := ListingQuery{Name: OrderNone, Org: OrderNone}
	if q.HasColumnOrder() {
		t.Error("expected no column order")
	}
	q.TokenCount = OrderDesc
	if !q.HasColumnOrder() {
		t.Error("expected column order")
	}
}

func TestListingQuery_Live(t *testing.T) {
	q := ListingQuery{Paging: NewPaging(3, 10), Sort: Trending, Org: OrderAsc}
	live := q.Live()
	if live.Paging.Page != 3 || live.Sort != Trending || live.Org != OrderAsc {
		t.Errorf("unexpected live query: %+v", live)
	}
}

func TestItemFromRow_UsesGeneratedAt(t *testing.T) {
	gen := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	r := Row{
		ListID:      7,
		DataType:    File,
		ListTitle:   "대기질",
		UpdatedAt:   gen.Add(-time.Hour),
		GeneratedAt: gen,
	}
	it := ItemFromRow(r)
	if !it.UpdatedAt.Equal(gen) {
		t.Errorf("expected UpdatedAt %v, got %v", gen, it.UpdatedAt)
	}
	if it.Score != nil {
		t.Error("expected nil score")
	}
}
