package catalog

// Sort is a precomputed snapshot ordering.
type Sort string

// Snapshot orderings.
const (
	// Latest orders by generated_at, then updated_at.
	Latest   Sort = "latest"
	Popular  Sort = "popular"
	Trending Sort = "trending"
)

// Sorts lists every snapshot ordering in rebuild order.
var Sorts = []Sort{Latest, Popular, Trending}

// IsValid checks if the sort is one of the supported values.
func (s Sort) IsValid() bool {
	return s == Latest || s == Popular || s == Trending
}

// Collection returns the name of the rank collection backing this ordering.
func (s Sort) Collection() string {
	return "rank_" + string(s)
}

// Order is a per-column sort direction used by the live listing.
type Order string

// Column sort directions. OrderNone leaves the column out of the ordering.
const (
	OrderNone Order = "all"
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// ParseOrder maps a query value to an Order. Unknown or empty values mean OrderNone.
func ParseOrder(v string) Order {
	switch Order(v) {
	case OrderAsc:
		return OrderAsc
	case OrderDesc:
		return OrderDesc
	default:
		return OrderNone
	}
}

// ParseSort maps the sortBy query value to a snapshot ordering.
// Empty and "all" mean Popular.
func ParseSort(v string) (Sort, bool) {
	switch v {
	case "", "all", string(Popular):
		return Popular, true
	case string(Latest):
		return Latest, true
	case string(Trending):
		return Trending, true
	default:
		return "", false
	}
}
