package catalog

import "time"

// SourceRecord is the subset of an API or file source document that feeds a Row.
// Popularity is request_cnt for API records and download_cnt for file records,
// already coerced to an integer.
type SourceRecord struct {
	ListID     int64
	ListTitle  string
	Title      string
	OrgNm      string
	DeptNm     string
	Popularity int64
	UpdatedAt  time.Time
}

// GeneratedInfo describes the generated document for a list id, if one exists.
type GeneratedInfo struct {
	ListID      int64
	TokenCount  int
	GeneratedAt time.Time
}

// Row is one unified catalog entry. Zero times mean the timestamp is absent.
type Row struct {
	ListID          int64
	DataType        DataType
	ListTitle       string
	OrgNm           string
	TokenCount      int
	HasGeneratedDoc bool
	UpdatedAt       time.Time
	GeneratedAt     time.Time
	Popularity      int64
	TrendingScore   float64
	Rank            int
}

// NewRow projects a source record and its optional generated doc into a Row.
// File rows fall back to title and dept_nm when list_title and org_nm are empty.
func NewRow(dt DataType, src SourceRecord, gen *GeneratedInfo) Row {
	r := Row{
		ListID:     src.ListID,
		DataType:   dt,
		ListTitle:  src.ListTitle,
		OrgNm:      src.OrgNm,
		UpdatedAt:  src.UpdatedAt,
		Popularity: src.Popularity,
	}
	if dt == File {
		if r.ListTitle == "" {
			r.ListTitle = src.Title
		}
		if r.OrgNm == "" {
			r.OrgNm = src.DeptNm
		}
	}
	if gen != nil {
		r.HasGeneratedDoc = true
		r.TokenCount = gen.TokenCount
		r.GeneratedAt = gen.GeneratedAt
	}
	return r
}

// LatestKey returns the timestamp a row is ordered by in the latest snapshot:
// generated_at, else updated_at, else now.
func (r Row) LatestKey(now time.Time) time.Time {
	if !r.GeneratedAt.IsZero() {
		return r.GeneratedAt
	}
	if !r.UpdatedAt.IsZero() {
		return r.UpdatedAt
	}
	return now
}

// Item is the lean projection served from a rank snapshot.
type Item struct {
	ListID          int64
	ListTitle       string
	OrgNm           string
	TokenCount      int
	HasGeneratedDoc bool
	DataType        DataType
}

// Item returns the lean projection of the row.
func (r Row) Item() Item {
	return Item{
		ListID:          r.ListID,
		ListTitle:       r.ListTitle,
		OrgNm:           r.OrgNm,
		TokenCount:      r.TokenCount,
		HasGeneratedDoc: r.HasGeneratedDoc,
		DataType:        r.DataType,
	}
}
