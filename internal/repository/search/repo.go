package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/teamaeris/opendata-api/internal/db"
	"github.com/teamaeris/opendata-api/internal/db/elastic"
	domcat "github.com/teamaeris/opendata-api/internal/domain/catalog"
	domsearch "github.com/teamaeris/opendata-api/internal/domain/search"
)

// Repo runs title searches against Elasticsearch.
type Repo struct {
	es    *elasticsearch.Client
	index string
}

// New creates a search repository. An empty index means IndexName.
func New(es *elasticsearch.Client, index string) *Repo {
	if index == "" {
		index = IndexName
	}
	return &Repo{es: es, index: index}
}

// Search runs a title query. Adaptive queries try a strict match first and
// fall back to fuzzy matching when it yields fewer than Size hits.
func (r *Repo) Search(ctx context.Context, q domsearch.Query) (domsearch.Result, error) {
	dt := string(q.DataType)
	if q.Adaptive {
		strict, err := r.run(ctx, searchBody(withDataType(strictQuery(q.Text), dt), fullHighlight(), q.From, q.Size, 0))
		if err != nil {
			return domsearch.Result{}, err
		}
		if strict.Total >= q.Size {
			return strict, nil
		}
		return r.run(ctx, searchBody(withDataType(fuzzyQuery(q.Text), dt), fullHighlight(), q.From, q.Size, 0))
	}

	base := fuzzyQuery(q.Text)
	if q.ExactMatch {
		base = exactQuery(q.Text)
	}
	return r.run(ctx, searchBody(withDataType(base, dt), fullHighlight(), q.From, q.Size, q.MinScore))
}

// SearchWeighted runs one boosted clause per query; any clause may match.
func (r *Repo) SearchWeighted(ctx context.Context, queries []domsearch.WeightedQuery, from, size int) (domsearch.Result, error) {
	if len(queries) == 0 {
		return domsearch.Result{Hits: []domsearch.Hit{}}, nil
	}
	return r.run(ctx, searchBody(weightedQuery(queries), titleHighlight(), from, size, 0))
}

// Stats reports document count and store size of the index.
func (r *Repo) Stats(ctx context.Context) (domsearch.IndexStats, error) {
	res, err := r.es.Indices.Stats(
		r.es.Indices.Stats.WithContext(ctx),
		r.es.Indices.Stats.WithIndex(r.index),
	)
	if err != nil {
		return domsearch.IndexStats{}, &db.Error{Op: db.OpStats, Err: err}
	}
	defer elastic.Drain(res.Body)
	if res.IsError() {
		return domsearch.IndexStats{}, &db.Error{Op: db.OpStats, Err: fmt.Errorf("status %s", res.Status())}
	}

	var parsed struct {
		All struct {
			Total struct {
				Docs struct {
					Count int64 `json:"count"`
				} `json:"docs"`
				Store struct {
					SizeInBytes int64 `json:"size_in_bytes"`
				} `json:"store"`
			} `json:"total"`
		} `json:"_all"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return domsearch.IndexStats{}, &db.Error{Op: db.OpStats, Err: fmt.Errorf("decode: %w", err)}
	}
	return domsearch.IndexStats{
		Index:     r.index,
		DocCount:  parsed.All.Total.Docs.Count,
		SizeBytes: parsed.All.Total.Store.SizeInBytes,
	}, nil
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Score  *float64 `json:"_score"`
			Source struct {
				ListID    any    `json:"list_id"`
				DataType  string `json:"data_type"`
				ListTitle string `json:"list_title"`
				Title     string `json:"title"`
				OrgNm     string `json:"org_nm"`
			} `json:"_source"`
			Highlight map[string][]string `json:"highlight"`
		} `json:"hits"`
	} `json:"hits"`
}

func (r *Repo) run(ctx context.Context, body obj) (domsearch.Result, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return domsearch.Result{}, fmt.Errorf("marshal query: %w", err)
	}
	res, err := r.es.Search(
		r.es.Search.WithContext(ctx),
		r.es.Search.WithIndex(r.index),
		r.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return domsearch.Result{}, &db.Error{Op: db.OpSearch, Err: err}
	}
	defer elastic.Drain(res.Body)
	if res.IsError() {
		return domsearch.Result{}, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("status %s", res.Status())}
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return domsearch.Result{}, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("decode: %w", err)}
	}

	hits := make([]domsearch.Hit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		id := domcat.CoerceInt(h.Source.ListID)
		if id == 0 {
			continue
		}
		hit := domsearch.Hit{
			ListID:     id,
			DataType:   domcat.DataType(h.Source.DataType),
			ListTitle:  h.Source.ListTitle,
			Title:      h.Source.Title,
			OrgNm:      h.Source.OrgNm,
			Highlights: h.Highlight,
		}
		if hit.DataType == "" {
			hit.DataType = domcat.API
		}
		if h.Score != nil {
			hit.Score = *h.Score
		}
		hits = append(hits, hit)
	}
	return domsearch.Result{Hits: hits, Total: parsed.Hits.Total.Value}, nil
}
