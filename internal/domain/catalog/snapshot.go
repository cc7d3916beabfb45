package catalog

import (
	"math"
	"time"
)

// RedirectReasonSnapshotLimit is reported when a page lies past the snapshot horizon.
const RedirectReasonSnapshotLimit = "page_exceeds_snapshot_limit"

// Metadata describes the last rebuild of one snapshot ordering.
type Metadata struct {
	Sort        Sort
	TotalCount  int
	LastUpdated time.Time
	Generation  string
}

// RankedPage is a page read from a snapshot. When Redirect is set, Items is empty
// and the caller must re-query the live listing, using Total as the authoritative count.
type RankedPage struct {
	Items    []Item
	Total    int
	Page     int
	Size     int
	Redirect bool
	Reason   string
}

// RebuildCounts maps each ordering to the number of rows written by a rebuild.
type RebuildCounts map[Sort]int

// LiveQuery is a request against the uncapped live listing.
// Column orders, when set, take precedence over Sort in the order they are declared.
type LiveQuery struct {
	Paging     Paging
	Sort       Sort
	Name       Order
	Org        Order
	DataType   Order
	TokenCount Order
	Status     Order
}

// LivePage is a page of the live listing.
type LivePage struct {
	Rows  []Row
	Total int
	Page  int
	Size  int
}

// Stats reports source and generated-document counts with coverage percentages.
type Stats struct {
	APIData       int64
	APIDocs       int64
	FileData      int64
	FileDocs      int64
	TotalData     int64
	TotalDocs     int64
	APICoverage   float64
	FileCoverage  float64
	TotalCoverage float64
}

// NewStats derives totals and coverage from per-collection counts.
func NewStats(apiData, apiDocs, fileData, fileDocs int64) Stats {
	s := Stats{
		APIData:   apiData,
		APIDocs:   apiDocs,
		FileData:  fileData,
		FileDocs:  fileDocs,
		TotalData: apiData + fileData,
		TotalDocs: apiDocs + fileDocs,
	}
	s.APICoverage = percent(apiDocs, apiData)
	s.FileCoverage = percent(fileDocs, fileData)
	s.TotalCoverage = percent(s.TotalDocs, s.TotalData)
	return s
}

func percent(part, whole int64) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// SuccessRate is the share of API records with a generated document, in percent,
// rounded to two decimals.
func (s Stats) SuccessRate() float64 {
	return math.Round(s.APICoverage*100) / 100
}
