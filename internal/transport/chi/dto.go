package chi

import (
	"time"

	dombatch "github.com/teamaeris/opendata-api/internal/domain/batch"
	"github.com/teamaeris/opendata-api/internal/domain/catalog"
	domcomment "github.com/teamaeris/opendata-api/internal/domain/comment"
	domdoc "github.com/teamaeris/opendata-api/internal/domain/document"
	domrec "github.com/teamaeris/opendata-api/internal/domain/recommendation"
	domsearch "github.com/teamaeris/opendata-api/internal/domain/search"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ListItem is one row of the catalog listing.
type ListItem struct {
	ListID          int64      `json:"listId"`
	ListTitle       string     `json:"listTitle"`
	OrgNm           string     `json:"orgNm"`
	TokenCount      int        `json:"tokenCount"`
	HasGeneratedDoc bool       `json:"hasGeneratedDoc"`
	DataType        string     `json:"dataType"`
	UpdatedAt       *time.Time `json:"updatedAt"`
	Score           *float64   `json:"score"`
}

// ListResponse is a page of the catalog listing.
type ListResponse struct {
	Items      []ListItem `json:"items"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	Size       int        `json:"size"`
	TotalPages int        `json:"totalPages"`
	HasNext    bool       `json:"hasNext"`
	HasPrev    bool       `json:"hasPrev"`
}

// RebuildResponse reports rows written per snapshot.
type RebuildResponse struct {
	Latest   int `json:"latest"`
	Popular  int `json:"popular"`
	Trending int `json:"trending"`
}

// SuccessRateResponse is the API generation coverage.
type SuccessRateResponse struct {
	TotalOpenData int64   `json:"totalOpenData"`
	TotalStdDocs  int64   `json:"totalStdDocs"`
	SuccessRate   float64 `json:"successRate"`
}

// StatsResponse is the cross-collection coverage summary.
type StatsResponse struct {
	API   CoverageStats `json:"api"`
	File  CoverageStats `json:"file"`
	Total CoverageStats `json:"total"`
}

// CoverageStats counts records and generated docs of one kind.
type CoverageStats struct {
	Data     int64   `json:"data"`
	Docs     int64   `json:"docs"`
	Coverage float64 `json:"coverage"`
}

// GeneratedDoc is a generated standard document.
type GeneratedDoc struct {
	ListID      int64          `json:"listId"`
	DataType    string         `json:"dataType"`
	DetailURL   string         `json:"detailUrl"`
	Markdown    string         `json:"markdown"`
	LLMModel    string         `json:"llmModel"`
	TokenCount  int            `json:"tokenCount"`
	ResultJSON  map[string]any `json:"resultJson"`
	Detail      map[string]any `json:"detail"`
	GeneratedAt *time.Time     `json:"generatedAt"`
	Status      *bool          `json:"status"`
}

// RecommendedDoc is a similar dataset attached to a detail response.
type RecommendedDoc struct {
	ListID          int64   `json:"listId"`
	ListTitle       string  `json:"listTitle"`
	OrgNm           string  `json:"orgNm"`
	DataType        string  `json:"dataType"`
	SimilarityScore float64 `json:"similarityScore"`
}

// DetailResponse describes one dataset.
type DetailResponse struct {
	ListID          int64            `json:"listId"`
	DataType        string           `json:"dataType"`
	ListTitle       string           `json:"listTitle"`
	DetailURL       string           `json:"detailUrl"`
	GeneratedStatus bool             `json:"generatedStatus"`
	CreatedAt       *time.Time       `json:"createdAt"`
	UpdatedAt       *time.Time       `json:"updatedAt"`
	Description     string           `json:"description"`
	OrgNm           string           `json:"orgNm"`
	DeptNm          string           `json:"deptNm"`
	IsCharged       string           `json:"isCharged"`
	ShareScopeNm    string           `json:"shareScopeNm"`
	Keywords        []string         `json:"keywords"`
	TokenCount      int              `json:"tokenCount"`
	GeneratedAt     *time.Time       `json:"generatedAt"`
	Markdown        string           `json:"markdown"`
	Recommendations []RecommendedDoc `json:"recommendations,omitempty"`
}

// SaveRequestBody asks for a document to be generated.
type SaveRequestBody struct {
	ListID *int64  `json:"listId"`
	URL    *string `json:"url"`
}

// SaveRequestResponse acknowledges a save request.
type SaveRequestResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// CreateCommentBody is the body of POST /comments.
type CreateCommentBody struct {
	ListID  int64  `json:"listId"`
	Content string `json:"content"`
}

// IDResponse returns a created resource id.
type IDResponse struct {
	ID string `json:"id"`
}

// OKResponse acknowledges a deletion.
type OKResponse struct {
	OK bool `json:"ok"`
}

// Comment is one dataset comment.
type Comment struct {
	ID        string    `json:"id"`
	ListID    int64     `json:"listId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CommentPage is a page of comments, newest first.
type CommentPage struct {
	Items []Comment `json:"items"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Size  int       `json:"size"`
}

// TitleItem is one title-search result.
type TitleItem struct {
	ListID    int64          `json:"listId"`
	ListTitle string         `json:"listTitle"`
	Title     string         `json:"title"`
	OrgNm     string         `json:"orgNm"`
	DataType  string         `json:"dataType"`
	Score     float64        `json:"score"`
	Detail    map[string]any `json:"detail"`
}

// TitlePage is a page of title-search results.
type TitlePage struct {
	Items    []TitleItem `json:"items"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}

// IndexStatsResponse describes the search index.
type IndexStatsResponse struct {
	Index     string `json:"index"`
	DocCount  int64  `json:"docCount"`
	SizeBytes int64  `json:"sizeBytes"`
}

// RecommendationItem is one similar document.
type RecommendationItem struct {
	DocID           string  `json:"docId"`
	DocType         string  `json:"docType"`
	SimilarityScore float64 `json:"similarityScore"`
	Rank            int     `json:"rank"`
}

// RecommendationResponse is the recommendation answer for one document.
type RecommendationResponse struct {
	TargetDocID     string               `json:"targetDocId"`
	Recommendations []RecommendationItem `json:"recommendations"`
	TotalCount      int                  `json:"totalCount"`
	Source          string               `json:"source"`
	Cached          bool                 `json:"cached"`
}

// BatchItem is the per-document outcome of a batch operation.
type BatchItem struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// BatchGenerateResponse reports a batch recommendation run.
type BatchGenerateResponse struct {
	Message        string      `json:"message"`
	TotalRequested int         `json:"totalRequested"`
	SuccessCount   int         `json:"successCount"`
	FailedCount    int         `json:"failedCount"`
	Items          []BatchItem `json:"items"`
}

// RecommendationStatsResponse describes the recommendation cache.
type RecommendationStatsResponse struct {
	TotalCachedDocs          int64   `json:"totalCachedDocs"`
	RecentRecommendations    int64   `json:"recentRecommendations"`
	AvgRecommendationsPerDoc float64 `json:"avgRecommendationsPerDoc"`
	CacheHitRatio            string  `json:"cacheHitRatio"`
}

// MessageResponse carries a human-readable outcome.
type MessageResponse struct {
	Message      string `json:"message"`
	DeletedCount *int64 `json:"deletedCount,omitempty"`
}

// IndexDocumentBody is one dataset to embed and index.
type IndexDocumentBody struct {
	DocID    string   `json:"docId"`
	DocType  string   `json:"docType"`
	Title    string   `json:"title"`
	Desc     string   `json:"desc"`
	Keywords []string `json:"keywords"`
}

// IndexResponse reports an index run.
type IndexResponse struct {
	Indexed int         `json:"indexed"`
	Failed  int         `json:"failed"`
	Items   []BatchItem `json:"items"`
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func listingToResponse(l catalog.Listing) ListResponse {
	items := make([]ListItem, len(l.Items))
	for i, it := range l.Items {
		items[i] = ListItem{
			ListID:          it.ListID,
			ListTitle:       it.ListTitle,
			OrgNm:           it.OrgNm,
			TokenCount:      it.TokenCount,
			HasGeneratedDoc: it.HasGeneratedDoc,
			DataType:        string(it.DataType),
			UpdatedAt:       timePtr(it.UpdatedAt),
			Score:           it.Score,
		}
	}
	return ListResponse{
		Items:      items,
		Total:      l.Total,
		Page:       l.Page,
		Size:       l.Size,
		TotalPages: l.TotalPages,
		HasNext:    l.HasNext,
		HasPrev:    l.HasPrev,
	}
}

func statsToResponse(s catalog.Stats) StatsResponse {
	return StatsResponse{
		API:   CoverageStats{Data: s.APIData, Docs: s.APIDocs, Coverage: s.APICoverage},
		File:  CoverageStats{Data: s.FileData, Docs: s.FileDocs, Coverage: s.FileCoverage},
		Total: CoverageStats{Data: s.TotalData, Docs: s.TotalDocs, Coverage: s.TotalCoverage},
	}
}

func generatedToResponse(g domdoc.Generated) GeneratedDoc {
	return GeneratedDoc{
		ListID:      g.ListID,
		DataType:    string(g.DataType),
		DetailURL:   g.DetailURL,
		Markdown:    g.Markdown,
		LLMModel:    g.LLMModel,
		TokenCount:  g.TokenCount,
		ResultJSON:  g.ResultJSON,
		Detail:      g.Detail,
		GeneratedAt: timePtr(g.GeneratedAt),
		Status:      g.Status,
	}
}

func detailToResponse(d domdoc.Detail) DetailResponse {
	keywords := d.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	resp := DetailResponse{
		ListID:          d.ListID,
		DataType:        string(d.DataType),
		ListTitle:       d.ListTitle,
		DetailURL:       d.DetailURL,
		GeneratedStatus: d.GeneratedStatus,
		CreatedAt:       timePtr(d.CreatedAt),
		UpdatedAt:       timePtr(d.UpdatedAt),
		Description:     d.Description,
		OrgNm:           d.OrgNm,
		DeptNm:          d.DeptNm,
		IsCharged:       d.IsCharged,
		ShareScopeNm:    d.ShareScopeNm,
		Keywords:        keywords,
		TokenCount:      d.TokenCount,
		GeneratedAt:     timePtr(d.GeneratedAt),
		Markdown:        d.Markdown,
	}
	if d.Recommendations != nil {
		resp.Recommendations = make([]RecommendedDoc, len(d.Recommendations))
		for i, r := range d.Recommendations {
			resp.Recommendations[i] = RecommendedDoc{
				ListID:          r.ListID,
				ListTitle:       r.ListTitle,
				OrgNm:           r.OrgNm,
				DataType:        string(r.DataType),
				SimilarityScore: r.SimilarityScore,
			}
		}
	}
	return resp
}

func commentPageToResponse(p domcomment.Page) CommentPage {
	items := make([]Comment, len(p.Items))
	for i, c := range p.Items {
		items[i] = Comment{ID: c.ID, ListID: c.ListID, Content: c.Content, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
	}
	return CommentPage{Items: items, Total: p.Total, Page: p.Page, Size: p.Size}
}

func titlePageToResponse(p domsearch.TitlePage) TitlePage {
	items := make([]TitleItem, len(p.Items))
	for i, it := range p.Items {
		items[i] = TitleItem{
			ListID:    it.ListID,
			ListTitle: it.ListTitle,
			Title:     it.Title,
			OrgNm:     it.OrgNm,
			DataType:  string(it.DataType),
			Score:     it.Score,
			Detail:    it.Detail,
		}
	}
	return TitlePage{Items: items, Total: p.Total, Page: p.Page, PageSize: p.PageSize}
}

func recommendationToResponse(r domrec.Result) RecommendationResponse {
	items := make([]RecommendationItem, len(r.Items))
	for i, it := range r.Items {
		items[i] = RecommendationItem{
			DocID:           it.DocID,
			DocType:         it.DocType,
			SimilarityScore: it.SimilarityScore,
			Rank:            it.Rank,
		}
	}
	return RecommendationResponse{
		TargetDocID:     r.TargetDocID,
		Recommendations: items,
		TotalCount:      len(items),
		Source:          string(r.Source),
		Cached:          r.Cached,
	}
}

func batchItemsToResponse(results []dombatch.Result) []BatchItem {
	items := make([]BatchItem, len(results))
	for i, r := range results {
		items[i] = BatchItem{ID: r.ID(), Status: string(r.Status())}
		if r.Err() != nil {
			items[i].Error = safeDomainMessage(r.Err())
		}
	}
	return items
}
