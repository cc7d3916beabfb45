package recommendation

import (
	"fmt"
	"strings"
	"time"
)

// Defaults and bounds for similarity lookups.
const (
	DefaultTopK      = 4
	MaxTopK          = 20
	DefaultThreshold = 0.5
	DefaultTTL       = 7 * 24 * time.Hour
	MaxBatchSize     = 100
)

// Source tells where a result was served from.
type Source string

// Result sources.
const (
	SourceCache    Source = "cache"
	SourceRealtime Source = "realtime"
)

// Item is one similar document.
type Item struct {
	DocID           string
	DocType         string
	SimilarityScore float64
	Rank            int
}

// Hit is a raw nearest-neighbour match from the vector index.
type Hit struct {
	DocID   string
	DocType string
	Score   float64
}

// SelectSimilar drops the target itself and hits below threshold, then keeps
// at most topK items ranked from 1.
func SelectSimilar(hits []Hit, target string, topK int, threshold float64) []Item {
	items := make([]Item, 0, topK)
	for _, h := range hits {
		if h.DocID == target || h.Score < threshold {
			continue
		}
		docType := h.DocType
		if docType == "" {
			docType = "API"
		}
		items = append(items, Item{
			DocID:           h.DocID,
			DocType:         docType,
			SimilarityScore: h.Score,
			Rank:            len(items) + 1,
		})
		if len(items) >= topK {
			break
		}
	}
	return items
}

// Cached is a stored recommendation list for one document.
type Cached struct {
	TargetDocID   string
	TargetDocType string
	Items         []Item
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ExpiresAt     time.Time
	Version       int
}

// Expired reports whether the entry is past its expiry.
func (c *Cached) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Top returns the first k items.
func (c *Cached) Top(k int) []Item {
	if k <= 0 || k >= len(c.Items) {
		return c.Items
	}
	return c.Items[:k]
}

// Result is a recommendation answer for one target document.
type Result struct {
	TargetDocID string
	Items       []Item
	Source      Source
	Cached      bool
}

// BatchSummary reports the outcome of a batch generation.
type BatchSummary struct {
	Requested int
	Succeeded int
	Failed    int
}

// Stats describes the recommendation cache.
type Stats struct {
	TotalCachedDocs       int64
	RecentRecommendations int64
	AvgPerDoc             float64
	CacheHitRatio         string
}

// HitRatio formats hits/(hits+misses) as a percentage, or "N/A" before any lookup.
func HitRatio(hits, misses int64) string {
	total := hits + misses
	if total == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", float64(hits)/float64(total)*100)
}

// IndexDocument is a dataset prepared for the similarity index.
type IndexDocument struct {
	DocID    string
	DocType  string
	Title    string
	Desc     string
	Keywords []string
}

// EmbeddingText joins the fields that describe a dataset into the text that is embedded.
func (d IndexDocument) EmbeddingText() string {
	return fmt.Sprintf("%s. %s. 핵심키워드: %s", d.Title, d.Desc, strings.Join(d.Keywords, " "))
}

// Embedding is a document vector stored in the similarity index.
type Embedding struct {
	DocID   string
	DocType string
	Vector  []float32
}
