package catalog

import (
	"testing"

	"github.com/teamaeris/opendata-api/internal/domain/catalog"
)

func TestRankTop_TruncatesAndRanks(t *testing.T) {
	rows := make([]catalog.Row, 12)
	for i := range rows {
		rows[i].ListID = int64(i + 1)
	}

	got := rankTop(rows, 10)
	if len(got) != 10 {
		t.Fatalf("len = %d, want 10", len(got))
	}
	for i, r := range got {
		if r.Rank != i+1 {
			t.Errorf("rank at %d = %d", i, r.Rank)
		}
	}
}

func TestRankTop_ShortInput(t *testing.T) {
	got := rankTop([]catalog.Row{{ListID: 7}}, 1000)
	if len(got) != 1 || got[0].Rank != 1 {
		t.Errorf("unexpected %+v", got)
	}
	if got := rankTop(nil, 1000); len(got) != 0 {
		t.Errorf("expected empty, got %d", len(got))
	}
}

func TestSortedCopy_DoesNotMutateInput(t *testing.T) {
	rows := []catalog.Row{{ListID: 1, Popularity: 1}, {ListID: 2, Popularity: 2}}
	out := sortedCopy(rows, catalog.Popular, fixedNow)

	if rows[0].ListID != 1 {
		t.Error("input slice was reordered")
	}
	if out[0].ListID != 2 {
		t.Errorf("expected id 2 first, got %d", out[0].ListID)
	}
}

func TestDedupe_KeepsFirstPerID(t *testing.T) {
	rows := []catalog.Row{
		{ListID: 0, ListTitle: "first"},
		{ListID: 5},
		{ListID: 5, DataType: catalog.File},
		{ListID: 0, ListTitle: "second"},
	}
	got := dedupe(rows)
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %+v", got)
	}
	if got[0].ListID != 0 || got[0].ListTitle != "first" {
		t.Errorf("expected first id-less row kept, got %+v", got[0])
	}
	if got[1].ListID != 5 || got[1].DataType == catalog.File {
		t.Errorf("expected first id 5 row kept, got %+v", got[1])
	}
}

func TestGeneratedIndex_LastWins(t *testing.T) {
	idx := generatedIndex([]catalog.GeneratedInfo{
		{ListID: 1, TokenCount: 10},
		{ListID: 1, TokenCount: 20},
	})
	if idx[1].TokenCount != 20 {
		t.Errorf("token count = %d, want 20", idx[1].TokenCount)
	}
}

func TestPageOf(t *testing.T) {
	rows := make([]catalog.Row, 45)
	if got := pageOf(rows, catalog.NewPaging(3, 20)); len(got) != 5 {
		t.Errorf("last page len = %d, want 5", len(got))
	}
	if got := pageOf(rows, catalog.NewPaging(4, 20)); got == nil || len(got) != 0 {
		t.Errorf("past end = %v, want empty non-nil", got)
	}
}
