package catalog

import (
	"cmp"
	"slices"
	"time"

	"github.com/teamaeris/opendata-api/internal/domain/catalog"
)

// generatedIndex maps list_id to its generated doc. Later entries overwrite earlier ones.
func generatedIndex(gens []catalog.GeneratedInfo) map[int64]*catalog.GeneratedInfo {
	idx := make(map[int64]*catalog.GeneratedInfo, len(gens))
	for i := range gens {
		idx[gens[i].ListID] = &gens[i]
	}
	return idx
}

// buildRows projects API rows first, then FILE rows, and scores them.
func buildRows(
	api, file []catalog.SourceRecord,
	apiGen, fileGen []catalog.GeneratedInfo,
	now time.Time,
) []catalog.Row {
	rows := make([]catalog.Row, 0, len(api)+len(file))
	rows = appendRows(rows, catalog.API, api, generatedIndex(apiGen), now)
	rows = appendRows(rows, catalog.File, file, generatedIndex(fileGen), now)
	return rows
}

func appendRows(
	rows []catalog.Row,
	dt catalog.DataType,
	sources []catalog.SourceRecord,
	gens map[int64]*catalog.GeneratedInfo,
	now time.Time,
) []catalog.Row {
	for _, src := range sources {
		r := catalog.NewRow(dt, src, gens[src.ListID])
		r.TrendingScore = catalog.TrendingScore(r.Popularity, r.UpdatedAt, now)
		rows = append(rows, r)
	}
	return rows
}

// sortedCopy returns rows ordered for one snapshot. The sort is stable, so
// ties keep API-then-FILE source order.
func sortedCopy(rows []catalog.Row, sort catalog.Sort, now time.Time) []catalog.Row {
	out := slices.Clone(rows)
	switch sort {
	case catalog.Latest:
		slices.SortStableFunc(out, func(a, b catalog.Row) int {
			return b.LatestKey(now).Compare(a.LatestKey(now))
		})
	case catalog.Popular:
		slices.SortStableFunc(out, func(a, b catalog.Row) int {
			return cmp.Compare(b.Popularity, a.Popularity)
		})
	case catalog.Trending:
		slices.SortStableFunc(out, func(a, b catalog.Row) int {
			return cmp.Compare(b.TrendingScore, a.TrendingScore)
		})
	}
	return out
}

// rankTop truncates rows to limit and assigns dense 1-based ranks in place.
func rankTop(rows []catalog.Row, limit int) []catalog.Row {
	if len(rows) > limit {
		rows = rows[:limit]
	}
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

// distinctCount counts distinct non-zero list ids.
func distinctCount(rows []catalog.Row) int {
	seen := make(map[int64]struct{}, len(rows))
	for _, r := range rows {
		if r.ListID == 0 {
			continue
		}
		seen[r.ListID] = struct{}{}
	}
	return len(seen)
}

// dedupe keeps the first row seen for each list id. Rows without an id share
// the key 0, so only the first of them survives.
func dedupe(rows []catalog.Row) []catalog.Row {
	seen := make(map[int64]struct{}, len(rows))
	out := rows[:0:0]
	for _, r := range rows {
		if _, ok := seen[r.ListID]; ok {
			continue
		}
		seen[r.ListID] = struct{}{}
		out = append(out, r)
	}
	return out
}

type rowCompare func(a, b catalog.Row) int

// liveOrdering builds the comparator for the live listing. Column orders win
// over the primary sort, in declaration order.
func liveOrdering(q catalog.LiveQuery) rowCompare {
	var cols []rowCompare
	cols = appendColumn(cols, q.Name, func(a, b catalog.Row) int { return cmp.Compare(a.ListTitle, b.ListTitle) })
	cols = appendColumn(cols, q.Org, func(a, b catalog.Row) int { return cmp.Compare(a.OrgNm, b.OrgNm) })
	cols = appendColumn(cols, q.DataType, func(a, b catalog.Row) int { return cmp.Compare(a.DataType, b.DataType) })
	cols = appendColumn(cols, q.TokenCount, func(a, b catalog.Row) int { return cmp.Compare(a.TokenCount, b.TokenCount) })
	cols = appendColumn(cols, q.Status, func(a, b catalog.Row) int { return compareBool(a.HasGeneratedDoc, b.HasGeneratedDoc) })

	if len(cols) > 0 {
		return func(a, b catalog.Row) int {
			for _, c := range cols {
				if n := c(a, b); n != 0 {
					return n
				}
			}
			return 0
		}
	}

	if q.Sort == catalog.Popular {
		return func(a, b catalog.Row) int { return cmp.Compare(b.Popularity, a.Popularity) }
	}
	return compareUpdatedDesc
}

func appendColumn(cols []rowCompare, o catalog.Order, asc rowCompare) []rowCompare {
	switch o {
	case catalog.OrderAsc:
		return append(cols, asc)
	case catalog.OrderDesc:
		return append(cols, func(a, b catalog.Row) int { return asc(b, a) })
	default:
		return cols
	}
}

// compareUpdatedDesc orders by updated_at descending with missing timestamps last.
func compareUpdatedDesc(a, b catalog.Row) int {
	az, bz := a.UpdatedAt.IsZero(), b.UpdatedAt.IsZero()
	switch {
	case az && bz:
		return 0
	case az:
		return 1
	case bz:
		return -1
	}
	return b.UpdatedAt.Compare(a.UpdatedAt)
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	default:
		return -1
	}
}

// pageOf slices one page out of rows.
func pageOf(rows []catalog.Row, p catalog.Paging) []catalog.Row {
	start := p.Offset()
	if start >= len(rows) {
		return []catalog.Row{}
	}
	end := min(start+p.Size, len(rows))
	return rows[start:end]
}
