package search

import "github.com/teamaeris/opendata-api/internal/domain/catalog"

// Query is a title search against the full-text index.
type Query struct {
	Text       string
	From       int
	Size       int
	DataType   catalog.DataType
	ExactMatch bool
	// MinScore is ignored when zero.
	MinScore float64
	// Adaptive runs a strict query first and relaxes to fuzzy matching when it
	// returns fewer than Size hits.
	Adaptive bool
}

// WeightedQuery is one clause of a multi-keyword search.
type WeightedQuery struct {
	Text   string
	Weight float64
}

// Hit is one indexed title matching a query.
type Hit struct {
	ListID     int64
	DataType   catalog.DataType
	ListTitle  string
	Title      string
	OrgNm      string
	Score      float64
	Highlights map[string][]string
}

// Result is a page of hits plus the index-wide match count.
type Result struct {
	Hits  []Hit
	Total int
}

// IndexStats summarizes the title index.
type IndexStats struct {
	Index     string
	DocCount  int64
	SizeBytes int64
}

// TitleItem is a title-search hit restricted to datasets with a generated document.
type TitleItem struct {
	ListID    int64
	ListTitle string
	Title     string
	OrgNm     string
	DataType  catalog.DataType
	Score     float64
	Detail    map[string]any
}

// TitlePage is a page of title-search results. Total counts the filtered hits.
type TitlePage struct {
	Items    []TitleItem
	Total    int
	Page     int
	PageSize int
}
