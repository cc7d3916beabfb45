package catalog

import (
	"testing"
	"time"
)

func TestNewRow_APIKeepsOwnFields(t *testing.T) {
	src := SourceRecord{ListID: 1, ListTitle: "", Title: "fallback", OrgNm: "", DeptNm: "dept", Popularity: 5}
	r := NewRow(API, src, nil)
	if r.ListTitle != "" || r.OrgNm != "" {
		t.Errorf("API row must not fall back, got title=%q org=%q", r.ListTitle, r.OrgNm)
	}
	if r.HasGeneratedDoc || r.TokenCount != 0 {
		t.Errorf("expected no generated doc, got %+v", r)
	}
}

func TestNewRow_FileFallsBack(t *testing.T) {
	src := SourceRecord{ListID: 2, Title: "file title", DeptNm: "file dept", Popularity: 9}
	r := NewRow(File, src, nil)
	if r.ListTitle != "file title" {
		t.Errorf("ListTitle = %q, want %q", r.ListTitle, "file title")
	}
	if r.OrgNm != "file dept" {
		t.Errorf("OrgNm = %q, want %q", r.OrgNm, "file dept")
	}
	if r.DataType != File {
		t.Errorf("DataType = %q", r.DataType)
	}
}

func TestNewRow_FilePrefersPrimaryFields(t *testing.T) {
	src := SourceRecord{ListID: 3, ListTitle: "primary", Title: "secondary", OrgNm: "org", DeptNm: "dept"}
	r := NewRow(File, src, nil)
	if r.ListTitle != "primary" || r.OrgNm != "org" {
		t.Errorf("got title=%q org=%q", r.ListTitle, r.OrgNm)
	}
}

func TestNewRow_WithGeneratedDoc(t *testing.T) {
	genAt := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	r := NewRow(API, SourceRecord{ListID: 4}, &GeneratedInfo{ListID: 4, TokenCount: 321, GeneratedAt: genAt})
	if !r.HasGeneratedDoc || r.TokenCount != 321 || !r.GeneratedAt.Equal(genAt) {
		t.Errorf("unexpected row %+v", r)
	}
}

func TestRow_LatestKey(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	gen := now.Add(-time.Hour)
	upd := now.Add(-2 * time.Hour)

	if got := (Row{GeneratedAt: gen, UpdatedAt: upd}).LatestKey(now); !got.Equal(gen) {
		t.Errorf("with generated_at: got %v", got)
	}
	if got := (Row{UpdatedAt: upd}).LatestKey(now); !got.Equal(upd) {
		t.Errorf("with updated_at: got %v", got)
	}
	if got := (Row{}).LatestKey(now); !got.Equal(now) {
		t.Errorf("without timestamps: got %v", got)
	}
}

func TestNewStats_Coverage(t *testing.T) {
	s := NewStats(200, 50, 100, 25)
	if s.TotalData != 300 || s.TotalDocs != 75 {
		t.Errorf("totals = %d/%d", s.TotalData, s.TotalDocs)
	}
	if s.APICoverage != 25 || s.FileCoverage != 25 || s.TotalCoverage != 25 {
		t.Errorf("coverage = %f/%f/%f", s.APICoverage, s.FileCoverage, s.TotalCoverage)
	}
}

func TestNewStats_EmptyCollections(t *testing.T) {
	s := NewStats(0, 0, 0, 0)
	if s.APICoverage != 0 || s.FileCoverage != 0 || s.TotalCoverage != 0 {
		t.Errorf("expected zero coverage, got %+v", s)
	}
}

func TestSort_Collection(t *testing.T) {
	if Popular.Collection() != "rank_popular" {
		t.Errorf("Collection = %q", Popular.Collection())
	}
	if Sort("weekly").IsValid() {
		t.Error("unexpected valid sort")
	}
}

func TestParseOrder(t *testing.T) {
	if ParseOrder("asc") != OrderAsc || ParseOrder("desc") != OrderDesc {
		t.Error("asc/desc not parsed")
	}
	if ParseOrder("") != OrderNone || ParseOrder("sideways") != OrderNone {
		t.Error("unknown order must map to OrderNone")
	}
}

func TestStats_SuccessRate(t *testing.T) {
	s := NewStats(3, 1, 0, 0)
	if got := s.SuccessRate(); got != 33.33 {
		t.Errorf("SuccessRate = %v, want 33.33", got)
	}
	if got := NewStats(0, 0, 10, 5).SuccessRate(); got != 0 {
		t.Errorf("SuccessRate without API data = %v, want 0", got)
	}
}
