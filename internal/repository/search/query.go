package search

import (
	domsearch "github.com/teamaeris/opendata-api/internal/domain/search"
)

// IndexName is the full-text index of dataset titles.
const IndexName = "open_data_titles"

var fuzzyFields = []string{
	"list_title^3",
	"title^2",
	"title.korean^2",
	"keywords^2",
	"org_nm^1.5",
	"category_nm^1.5",
	"dept_nm^1.5",
	"desc^0.8",
}

type obj = map[string]any

func fuzzyQuery(text string) obj {
	return obj{"bool": obj{
		"should": []any{
			obj{"multi_match": obj{
				"query":                text,
				"fields":               fuzzyFields,
				"type":                 "best_fields",
				"fuzziness":            "1",
				"operator":             "and",
				"minimum_should_match": "75%",
			}},
			obj{"multi_match": obj{
				"query":  text,
				"fields": []string{"list_title^4", "title^3", "org_nm^2"},
				"type":   "phrase",
				"boost":  2.0,
			}},
		},
		"minimum_should_match": 1,
	}}
}

func exactQuery(text string) obj {
	phrase := func(field string, boost float64) obj {
		return obj{"match_phrase": obj{field: obj{"query": text, "boost": boost}}}
	}
	return obj{"bool": obj{
		"should": []any{
			phrase("list_title", 3.0),
			phrase("title", 2.0),
			phrase("org_nm", 1.5),
		},
		"minimum_should_match": 1,
	}}
}

func strictQuery(text string) obj {
	return obj{"bool": obj{
		"should": []any{
			obj{"multi_match": obj{
				"query":  text,
				"fields": []string{"list_title^3", "title^2", "org_nm^1.5"},
				"type":   "phrase",
				"boost":  2.0,
			}},
			obj{"multi_match": obj{
				"query":                text,
				"fields":               []string{"list_title^3", "title^2", "keywords^2", "org_nm^1.5"},
				"type":                 "best_fields",
				"operator":             "and",
				"minimum_should_match": "100%",
			}},
		},
		"minimum_should_match": 1,
	}}
}

func weightedQuery(queries []domsearch.WeightedQuery) obj {
	should := make([]any, 0, len(queries))
	for _, q := range queries {
		w := q.Weight
		if w <= 0 {
			w = 1.0
		}
		should = append(should, obj{"multi_match": obj{
			"query":     q.Text,
			"fields":    fuzzyFields,
			"type":      "best_fields",
			"fuzziness": "AUTO",
			"operator":  "or",
			"boost":     w,
		}})
	}
	return obj{"bool": obj{"should": should, "minimum_should_match": 1}}
}

func withDataType(base obj, dt string) obj {
	if dt == "" {
		return base
	}
	return obj{"bool": obj{"must": []any{base, obj{"term": obj{"data_type": dt}}}}}
}

func fullHighlight() obj {
	return obj{"fields": obj{
		"list_title":   obj{},
		"title":        obj{},
		"title.korean": obj{},
		"keywords":     obj{},
		"org_nm":       obj{},
	}}
}

func titleHighlight() obj {
	return obj{"fields": obj{"list_title": obj{}, "title": obj{}}}
}

func searchBody(query, highlight obj, from, size int, minScore float64) obj {
	body := obj{
		"query":     query,
		"highlight": highlight,
		"from":      from,
		"size":      size,
	}
	if minScore > 0 {
		body["min_score"] = minScore
	}
	return body
}
