package catalog

import "time"

// ListItem is one entry of the public dataset listing, whichever source served it.
type ListItem struct {
	ListID          int64
	ListTitle       string
	OrgNm           string
	TokenCount      int
	HasGeneratedDoc bool
	DataType        DataType
	// UpdatedAt carries generated_at; zero when unknown.
	UpdatedAt time.Time
	// Score is set only for full-text search results.
	Score *float64
}

// Listing is a page of the dataset listing with navigation hints.
type Listing struct {
	Items      []ListItem
	Total      int
	Page       int
	Size       int
	TotalPages int
	HasNext    bool
	HasPrev    bool
}

// NewListing computes the page count and navigation flags for items.
func NewListing(items []ListItem, total, page, size int) Listing {
	pages := TotalPages(total, size)
	return Listing{
		Items:      items,
		Total:      total,
		Page:       page,
		Size:       size,
		TotalPages: pages,
		HasNext:    page < pages,
		HasPrev:    page > 1,
	}
}

// ListingQuery is a request for the public dataset listing. A non-empty Text
// switches from the ranked snapshots to full-text search.
type ListingQuery struct {
	Text   string
	Paging Paging
	Sort   Sort

	Name       Order
	Org        Order
	DataType   Order
	TokenCount Order
	Status     Order

	ExactMatch bool
	MinScore   float64
	Adaptive   bool
}

// HasColumnOrder reports whether any per-column ordering was requested.
func (q ListingQuery) HasColumnOrder() bool {
	for _, o := range []Order{q.Name, q.Org, q.DataType, q.TokenCount, q.Status} {
		if o != OrderNone && o != "" {
			return true
		}
	}
	return false
}

// Live converts the query into a live listing request.
func (q ListingQuery) Live() LiveQuery {
	return LiveQuery{
		Paging:     q.Paging,
		Sort:       q.Sort,
		Name:       q.Name,
		Org:        q.Org,
		DataType:   q.DataType,
		TokenCount: q.TokenCount,
		Status:     q.Status,
	}
}

// ItemFromRow converts a live row into a listing item, using generated_at as UpdatedAt.
func ItemFromRow(r Row) ListItem {
	return ListItem{
		ListID:          r.ListID,
		ListTitle:       r.ListTitle,
		OrgNm:           r.OrgNm,
		TokenCount:      r.TokenCount,
		HasGeneratedDoc: r.HasGeneratedDoc,
		DataType:        r.DataType,
		UpdatedAt:       r.GeneratedAt,
	}
}

// ItemFromSnapshot converts a snapshot entry into a listing item.
func ItemFromSnapshot(it Item) ListItem {
	return ListItem{
		ListID:          it.ListID,
		ListTitle:       it.ListTitle,
		OrgNm:           it.OrgNm,
		TokenCount:      it.TokenCount,
		HasGeneratedDoc: it.HasGeneratedDoc,
		DataType:        it.DataType,
	}
}
