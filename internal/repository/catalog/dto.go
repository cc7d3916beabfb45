package catalog

import (
	"time"

	"github.com/teamaeris/opendata-api/internal/db/mongodb"
	domcat "github.com/teamaeris/opendata-api/internal/domain/catalog"
)

// sourceDoc is the projection read from open_data_info / open_file_info.
// Loosely typed fields are coerced when mapped to the domain.
type sourceDoc struct {
	ListID      any    `bson:"list_id"`
	ListTitle   string `bson:"list_title"`
	Title       string `bson:"title"`
	OrgNm       string `bson:"org_nm"`
	DeptNm      string `bson:"dept_nm"`
	RequestCnt  any    `bson:"request_cnt"`
	DownloadCnt any    `bson:"download_cnt"`
	UpdatedAt   any    `bson:"updated_at"`
}

func (d sourceDoc) toDomain(dt domcat.DataType) domcat.SourceRecord {
	pop := d.RequestCnt
	if dt == domcat.File {
		pop = d.DownloadCnt
	}
	return domcat.SourceRecord{
		ListID:     domcat.CoerceInt(d.ListID),
		ListTitle:  d.ListTitle,
		Title:      d.Title,
		OrgNm:      d.OrgNm,
		DeptNm:     d.DeptNm,
		Popularity: domcat.CoerceInt(pop),
		UpdatedAt:  mongodb.Time(d.UpdatedAt),
	}
}

type generatedDoc struct {
	ListID      any `bson:"list_id"`
	TokenCount  any `bson:"token_count"`
	GeneratedAt any `bson:"generated_at"`
}

func (d generatedDoc) toDomain() domcat.GeneratedInfo {
	return domcat.GeneratedInfo{
		ListID:      domcat.CoerceInt(d.ListID),
		TokenCount:  int(domcat.CoerceInt(d.TokenCount)),
		GeneratedAt: mongodb.Time(d.GeneratedAt),
	}
}

// liveDoc is one row of the live aggregation: the source projection plus
// the generated docs joined by $lookup.
type liveDoc struct {
	ListID      any            `bson:"list_id"`
	ListTitle   string         `bson:"list_title"`
	Title       string         `bson:"title"`
	OrgNm       string         `bson:"org_nm"`
	DeptNm      string         `bson:"dept_nm"`
	RequestCnt  any            `bson:"request_cnt"`
	DownloadCnt any            `bson:"download_cnt"`
	UpdatedAt   any            `bson:"updated_at"`
	Generated   []generatedDoc `bson:"generated"`
}

func (d liveDoc) source() sourceDoc {
	return sourceDoc{
		ListID:      d.ListID,
		ListTitle:   d.ListTitle,
		Title:       d.Title,
		OrgNm:       d.OrgNm,
		DeptNm:      d.DeptNm,
		RequestCnt:  d.RequestCnt,
		DownloadCnt: d.DownloadCnt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (d liveDoc) toDomain(dt domcat.DataType) domcat.Row {
	var gen *domcat.GeneratedInfo
	if len(d.Generated) > 0 {
		g := d.Generated[0].toDomain()
		gen = &g
	}
	return domcat.NewRow(dt, d.source().toDomain(dt), gen)
}

// rankDoc is a persisted snapshot row.
type rankDoc struct {
	Rank            int        `bson:"rank"`
	ListID          int64      `bson:"list_id"`
	DataType        string     `bson:"data_type"`
	ListTitle       *string    `bson:"list_title"`
	OrgNm           *string    `bson:"org_nm"`
	TokenCount      int        `bson:"token_count"`
	HasGeneratedDoc bool       `bson:"has_generated_doc"`
	UpdatedAt       *time.Time `bson:"updated_at"`
	GeneratedAt     *time.Time `bson:"generated_at"`
	PopularityScore int64      `bson:"popularity_score"`
	TrendingScore   float64    `bson:"trending_score"`
}

func newRankDoc(r domcat.Row) rankDoc {
	return rankDoc{
		Rank:            r.Rank,
		ListID:          r.ListID,
		DataType:        string(r.DataType),
		ListTitle:       nullString(r.ListTitle),
		OrgNm:           nullString(r.OrgNm),
		TokenCount:      r.TokenCount,
		HasGeneratedDoc: r.HasGeneratedDoc,
		UpdatedAt:       nullTime(r.UpdatedAt),
		GeneratedAt:     nullTime(r.GeneratedAt),
		PopularityScore: r.Popularity,
		TrendingScore:   r.TrendingScore,
	}
}

// rankItemDoc is the lean projection read back from a snapshot.
type rankItemDoc struct {
	ListID          any     `bson:"list_id"`
	ListTitle       *string `bson:"list_title"`
	OrgNm           *string `bson:"org_nm"`
	TokenCount      any     `bson:"token_count"`
	HasGeneratedDoc bool    `bson:"has_generated_doc"`
	DataType        string  `bson:"data_type"`
}

func (d rankItemDoc) toDomain() domcat.Item {
	return domcat.Item{
		ListID:          domcat.CoerceInt(d.ListID),
		ListTitle:       deref(d.ListTitle),
		OrgNm:           deref(d.OrgNm),
		TokenCount:      int(domcat.CoerceInt(d.TokenCount)),
		HasGeneratedDoc: d.HasGeneratedDoc,
		DataType:        domcat.DataType(d.DataType),
	}
}

type metadataDoc struct {
	SortType    string    `bson:"sort_type"`
	TotalCount  int       `bson:"total_count"`
	LastUpdated time.Time `bson:"last_updated"`
	Generation  string    `bson:"generation,omitempty"`
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
