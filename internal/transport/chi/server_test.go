package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/teamaeris/opendata-api/internal/domain"
	dombatch "github.com/teamaeris/opendata-api/internal/domain/batch"
	"github.com/teamaeris/opendata-api/internal/domain/catalog"
	domcomment "github.com/teamaeris/opendata-api/internal/domain/comment"
	domdoc "github.com/teamaeris/opendata-api/internal/domain/document"
	domrec "github.com/teamaeris/opendata-api/internal/domain/recommendation"
	domsearch "github.com/teamaeris/opendata-api/internal/domain/search"
	"github.com/teamaeris/opendata-api/internal/repository/ratelimit"
	healthuc "github.com/teamaeris/opendata-api/internal/usecase/health"
)

// --- Mocks ---

type fakeLister struct {
	listing catalog.Listing
	err     error
	got     catalog.ListingQuery
}

func (f *fakeLister) List(_ context.Context, q catalog.ListingQuery) (catalog.Listing, error) {
	f.got = q
	return f.listing, f.err
}

type fakeRanker struct {
	counts catalog.RebuildCounts
	calls  int
}

func (f *fakeRanker) RebuildRankSnapshots(_ context.Context) (catalog.RebuildCounts, error) {
	f.calls++
	return f.counts, nil
}

type fakeDocs struct {
	detail   domdoc.Detail
	docs     []domdoc.Generated
	stats    catalog.Stats
	err      error
	gotIDs   []int64
	gotRecs  bool
	gotID    int64
	gotURL   string
	pageSize int
}

func (f *fakeDocs) Detail(_ context.Context, listID int64, withRecs bool) (domdoc.Detail, error) {
	f.gotID, f.gotRecs = listID, withRecs
	return f.detail, f.err
}

func (f *fakeDocs) StdDocs(_ context.Context, ids []int64, _, pageSize int) ([]domdoc.Generated, error) {
	f.gotIDs, f.pageSize = ids, pageSize
	return f.docs, f.err
}

func (f *fakeDocs) SaveRequest(_ context.Context, listID int64, url string) (string, error) {
	f.gotID, f.gotURL = listID, url
	if listID <= 0 && url == "" {
		return "", domain.ErrInvalidArgument
	}
	return "req-1", f.err
}

func (f *fakeDocs) Stats(_ context.Context) (catalog.Stats, error) {
	return f.stats, f.err
}

type fakeComments struct {
	page      domcomment.Page
	deleteErr error
	created   string
}

func (f *fakeComments) Create(_ context.Context, _ int64, content string) (string, error) {
	f.created = content
	return "c-1", nil
}

func (f *fakeComments) List(_ context.Context, _ int64, _, _ int) (domcomment.Page, error) {
	return f.page, nil
}

func (f *fakeComments) Delete(_ context.Context, _ string) error { return f.deleteErr }

type fakeSearch struct {
	queries []string
	page    domsearch.TitlePage
}

func (f *fakeSearch) Titles(_ context.Context, queries []string, page, pageSize int) (domsearch.TitlePage, error) {
	f.queries = queries
	f.page.Page, f.page.PageSize = page, pageSize
	return f.page, nil
}

func (f *fakeSearch) IndexStats(_ context.Context) (domsearch.IndexStats, error) {
	return domsearch.IndexStats{Index: "opendata", DocCount: 10}, nil
}

type fakeRecs struct {
	result   domrec.Result
	err      error
	useCache bool
	found    bool
	topK     int
}

func (f *fakeRecs) Get(_ context.Context, _, _ string, topK int, useCache bool) (domrec.Result, error) {
	f.topK, f.useCache = topK, useCache
	return f.result, f.err
}

func (f *fakeRecs) Realtime(_ context.Context, _ string, topK int, _ float64) (domrec.Result, error) {
	f.topK = topK
	return f.result, f.err
}

func (f *fakeRecs) FromCache(_ context.Context, _ string, _ int) (domrec.Result, error) {
	return f.result, f.err
}

func (f *fakeRecs) Batch(_ context.Context, ids []string, _ string, _ int) (domrec.BatchSummary, []dombatch.Result, error) {
	if len(ids) > 2 {
		return domrec.BatchSummary{}, nil, domain.ErrBatchTooLarge
	}
	results := []dombatch.Result{dombatch.NewOK(ids[0]), dombatch.NewError(ids[1], errors.New("mongo: socket closed"))}
	return domrec.BatchSummary{Requested: 2, Succeeded: 1, Failed: 1}, results, nil
}

func (f *fakeRecs) Stats(_ context.Context) (domrec.Stats, error) {
	return domrec.Stats{TotalCachedDocs: 3, CacheHitRatio: "50.0%"}, nil
}

func (f *fakeRecs) Clear(_ context.Context, _ string) (bool, error) { return f.found, nil }

func (f *fakeRecs) ClearAll(_ context.Context) (int64, error) { return 7, nil }

type fakeIndexer struct {
	got []domrec.IndexDocument
}

func (f *fakeIndexer) Index(_ context.Context, docs []domrec.IndexDocument) ([]dombatch.Result, error) {
	f.got = docs
	out := make([]dombatch.Result, len(docs))
	for i, d := range docs {
		out[i] = dombatch.NewOK(d.DocID)
	}
	return out, nil
}

type fakeHealth struct {
	report healthuc.Report
}

func (f *fakeHealth) Check(_ context.Context) healthuc.Report { return f.report }

type fixture struct {
	lister   *fakeLister
	ranker   *fakeRanker
	docs     *fakeDocs
	comments *fakeComments
	search   *fakeSearch
	recs     *fakeRecs
	indexer  *fakeIndexer
	health   *fakeHealth
	handler  http.Handler
}

func newFixture(t *testing.T, limiter ratelimit.Limiter) *fixture {
	t.Helper()
	f := &fixture{
		lister:   &fakeLister{},
		ranker:   &fakeRanker{counts: catalog.RebuildCounts{catalog.Latest: 1000, catalog.Popular: 1000, catalog.Trending: 812}},
		docs:     &fakeDocs{},
		comments: &fakeComments{},
		search:   &fakeSearch{},
		recs:     &fakeRecs{},
		indexer:  &fakeIndexer{},
		health:   &fakeHealth{report: healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK}}},
	}
	srv := NewServer(Services{
		Listing:         f.lister,
		Ranks:           f.ranker,
		Documents:       f.docs,
		Comments:        f.comments,
		Search:          f.search,
		Recommendations: f.recs,
		Indexer:         f.indexer,
		Health:          f.health,
	}, nil).WithAdminKeys([]string{"admin-secret"})
	if limiter != nil {
		srv.WithRateLimiter(limiter)
	}
	f.handler = srv.Handler()
	return f
}

func (f *fixture) do(method, target, body string, header ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, http.NoBody)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

// --- Tests ---

func TestListDocuments_ParsesQuery(t *testing.T) {
	f := newFixture(t, nil)
	f.lister.listing = catalog.NewListing([]catalog.ListItem{{ListID: 7, ListTitle: "버스", DataType: catalog.API}}, 1, 2, 100)

	rr := f.do("GET", "/api/v1/document?page=2&size=500&sortBy=trending&nameSortBy=asc&statusSortBy=bogus&minScore=1.5", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rr.Code, rr.Body.String())
	}

	q := f.lister.got
	if q.Sort != catalog.Trending || q.Paging.Page != 2 || q.Paging.Size != catalog.MaxPageSize {
		t.Errorf("unexpected query: %+v", q)
	}
	if q.Name != catalog.OrderAsc || q.Status != catalog.OrderNone {
		t.Errorf("unexpected column orders: %+v", q)
	}
	if !q.Adaptive || q.MinScore != 1.5 || q.ExactMatch {
		t.Errorf("unexpected search flags: %+v", q)
	}

	var raw map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&raw); err != nil {
		t.Fatal(err)
	}
	items := raw["items"].([]any)
	item := items[0].(map[string]any)
	if item["listId"].(float64) != 7 || item["score"] != nil || item["updatedAt"] != nil {
		t.Errorf("unexpected item: %v", item)
	}
	if _, ok := raw["totalPages"]; !ok {
		t.Error("expected totalPages field")
	}
}

func TestListDocuments_InvalidSort(t *testing.T) {
	f := newFixture(t, nil)
	rr := f.do("GET", "/api/v1/document?sortBy=random", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("got %d, want 400", rr.Code)
	}
}

func TestListDocuments_InvalidPage(t *testing.T) {
	f := newFixture(t, nil)
	rr := f.do("GET", "/api/v1/document?page=two", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("got %d, want 400", rr.Code)
	}
}

func TestListDocuments_PageOutOfRange(t *testing.T) {
	f := newFixture(t, nil)
	f.lister.err = domain.NewPageOutOfRange(9, 3)

	rr := f.do("GET", "/api/v1/document?page=9", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rr.Code)
	}
	resp := decode[ErrorResponse](t, rr)
	if resp.Code != codePageOutOfRange || !strings.Contains(resp.Message, "last page is 3") {
		t.Errorf("unexpected error: %+v", resp)
	}
}

func TestListDocuments_InternalErrorHidesDetail(t *testing.T) {
	f := newFixture(t, nil)
	f.lister.err = errors.New("mongo: connection reset by 10.0.0.5")

	rr := f.do("GET", "/api/v1/document", "")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("got %d, want 500", rr.Code)
	}
	resp := decode[ErrorResponse](t, rr)
	if resp.Code != codeInternal || strings.Contains(resp.Message, "10.0.0.5") {
		t.Errorf("unexpected error: %+v", resp)
	}
}

func TestRebuildRanks_RequiresAdmin(t *testing.T) {
	f := newFixture(t, nil)

	rr := f.do("POST", "/api/v1/document/ranks/rebuild", "")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("without token: got %d, want 401", rr.Code)
	}
	if f.ranker.calls != 0 {
		t.Error("rebuild should not run without auth")
	}

	rr = f.do("POST", "/api/v1/document/ranks/rebuild", "", "Authorization", "Bearer admin-secret")
	if rr.Code != http.StatusOK {
		t.Fatalf("with token: got %d", rr.Code)
	}
	resp := decode[RebuildResponse](t, rr)
	if resp.Latest != 1000 || resp.Trending != 812 {
		t.Errorf("unexpected counts: %+v", resp)
	}
}

func TestSuccessRate(t *testing.T) {
	f := newFixture(t, nil)
	f.docs.stats = catalog.NewStats(3, 1, 10, 5)

	rr := f.do("GET", "/api/v1/document/success-rate", "")
	resp := decode[SuccessRateResponse](t, rr)
	if resp.TotalOpenData != 3 || resp.TotalStdDocs != 1 || resp.SuccessRate != 33.33 {
		t.Errorf("unexpected success rate: %+v", resp)
	}
}

func TestDocumentStats(t *testing.T) {
	f := newFixture(t, nil)
	f.docs.stats = catalog.NewStats(4, 2, 6, 3)

	resp := decode[StatsResponse](t, f.do("GET", "/api/v1/document/stats", ""))
	if resp.API.Data != 4 || resp.File.Docs != 3 || resp.Total.Data != 10 {
		t.Errorf("unexpected stats: %+v", resp)
	}
}

func TestListStdDocs_ParsesIDs(t *testing.T) {
	f := newFixture(t, nil)
	f.docs.docs = []domdoc.Generated{{ListID: 1, DataType: catalog.API, Markdown: "# doc"}}

	rr := f.do("GET", "/api/v1/document/std-docs?listIds=1,2&listIds=3&pageSize=5", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
	if len(f.docs.gotIDs) != 3 || f.docs.gotIDs[2] != 3 || f.docs.pageSize != 5 {
		t.Errorf("unexpected args: ids=%v pageSize=%d", f.docs.gotIDs, f.docs.pageSize)
	}
	docs := decode[[]GeneratedDoc](t, rr)
	if len(docs) != 1 || docs[0].Markdown != "# doc" {
		t.Errorf("unexpected docs: %+v", docs)
	}

	rr = f.do("GET", "/api/v1/document/std-docs?listIds=1,x", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad ids: got %d, want 400", rr.Code)
	}
}

func TestGetDocumentDetail(t *testing.T) {
	f := newFixture(t, nil)
	f.docs.detail = domdoc.Detail{
		ListID:          15012345,
		DataType:        catalog.API,
		DetailURL:       "https://www.data.go.kr/data/15012345/openapi.do",
		Recommendations: []domdoc.Recommended{{ListID: 2, SimilarityScore: 0.9}},
	}

	rr := f.do("GET", "/api/v1/document/std-docs/15012345?includeRecommendations=true", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
	if f.docs.gotID != 15012345 || !f.docs.gotRecs {
		t.Errorf("unexpected args: id=%d recs=%v", f.docs.gotID, f.docs.gotRecs)
	}
	resp := decode[DetailResponse](t, rr)
	if len(resp.Recommendations) != 1 || resp.Keywords == nil {
		t.Errorf("unexpected detail: %+v", resp)
	}
}

func TestGetDocumentDetail_Errors(t *testing.T) {
	f := newFixture(t, nil)
	if rr := f.do("GET", "/api/v1/document/std-docs/abc", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("bad id: got %d, want 400", rr.Code)
	}

	f.docs.err = domain.ErrNotFound
	if rr := f.do("GET", "/api/v1/document/std-docs/9", ""); rr.Code != http.StatusNotFound {
		t.Errorf("missing: got %d, want 404", rr.Code)
	}
}

func TestSaveRequest(t *testing.T) {
	f := newFixture(t, nil)

	rr := f.do("POST", "/api/v1/document/save-request", `{"listId": 42}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
	if resp := decode[SaveRequestResponse](t, rr); resp.ID != "req-1" {
		t.Errorf("unexpected id %q", resp.ID)
	}

	if rr := f.do("POST", "/api/v1/document/save-request", `{}`); rr.Code != http.StatusBadRequest {
		t.Errorf("empty body: got %d, want 400", rr.Code)
	}
	if rr := f.do("POST", "/api/v1/document/save-request", `{`); rr.Code != http.StatusBadRequest {
		t.Errorf("malformed body: got %d, want 400", rr.Code)
	}
}

func TestComments(t *testing.T) {
	f := newFixture(t, nil)
	f.comments.page = domcomment.Page{
		Items: []domcomment.Comment{{ID: "c-1", ListID: 5, Content: "좋아요", CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}},
		Total: 1, Page: 1, Size: 20,
	}

	rr := f.do("POST", "/api/v1/comments", `{"listId": 5, "content": "좋아요"}`)
	if rr.Code != http.StatusCreated || f.comments.created != "좋아요" {
		t.Errorf("create: got %d, content %q", rr.Code, f.comments.created)
	}

	page := decode[CommentPage](t, f.do("GET", "/api/v1/comments/5", ""))
	if page.Total != 1 || page.Items[0].Content != "좋아요" {
		t.Errorf("unexpected page: %+v", page)
	}

	if rr := f.do("DELETE", "/api/v1/comments/c-1", ""); rr.Code != http.StatusOK {
		t.Errorf("delete: got %d", rr.Code)
	}
	f.comments.deleteErr = domain.ErrNotFound
	if rr := f.do("DELETE", "/api/v1/comments/c-2", ""); rr.Code != http.StatusNotFound {
		t.Errorf("delete missing: got %d, want 404", rr.Code)
	}
}

func TestSearchTitles_MultipleQueries(t *testing.T) {
	f := newFixture(t, nil)

	rr := f.do("GET", "/api/v1/search/title?query=버스&query=지하철&page=2", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
	if len(f.search.queries) != 2 || f.search.queries[1] != "지하철" {
		t.Errorf("unexpected queries: %v", f.search.queries)
	}
	resp := decode[TitlePage](t, rr)
	if resp.Page != 2 || resp.PageSize != defaultTitlePageSize {
		t.Errorf("unexpected paging: %+v", resp)
	}
}

func TestRecommendations_Get(t *testing.T) {
	f := newFixture(t, nil)
	f.recs.result = domrec.Result{
		TargetDocID: "1",
		Items:       []domrec.Item{{DocID: "2", DocType: "API", SimilarityScore: 0.8, Rank: 1}},
		Source:      domrec.SourceRealtime,
	}

	rr := f.do("GET", "/api/v1/recommendation/1?topK=3&useCache=false", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
	if f.recs.topK != 3 || f.recs.useCache {
		t.Errorf("unexpected args: topK=%d useCache=%v", f.recs.topK, f.recs.useCache)
	}
	resp := decode[RecommendationResponse](t, rr)
	if resp.TotalCount != 1 || resp.Source != "realtime" || resp.Recommendations[0].DocID != "2" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestRecommendations_TopKRange(t *testing.T) {
	f := newFixture(t, nil)
	for _, target := range []string{
		"/api/v1/recommendation/1?topK=0",
		"/api/v1/recommendation/realtime/1?topK=21",
		"/api/v1/recommendation/cache/1?topK=x",
	} {
		if rr := f.do("GET", target, ""); rr.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d, want 400", target, rr.Code)
		}
	}
}

func TestRecommendations_Stats(t *testing.T) {
	f := newFixture(t, nil)
	resp := decode[RecommendationStatsResponse](t, f.do("GET", "/api/v1/recommendation/stats", ""))
	if resp.TotalCachedDocs != 3 || resp.CacheHitRatio != "50.0%" {
		t.Errorf("unexpected stats: %+v", resp)
	}
}

func TestRecommendations_Batch(t *testing.T) {
	f := newFixture(t, nil)

	rr := f.do("POST", "/api/v1/recommendation/batch/generate", `["1","2"]`)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
	resp := decode[BatchGenerateResponse](t, rr)
	if resp.SuccessCount != 1 || resp.FailedCount != 1 || len(resp.Items) != 2 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Items[1].Error != "internal error" {
		t.Errorf("internal errors must not leak, got %q", resp.Items[1].Error)
	}

	rr = f.do("POST", "/api/v1/recommendation/batch/generate", `["1","2","3"]`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("too large: got %d, want 400", rr.Code)
	}
}

func TestRecommendations_ClearCache(t *testing.T) {
	f := newFixture(t, nil)

	if rr := f.do("DELETE", "/api/v1/recommendation/cache/1", ""); rr.Code != http.StatusNotFound {
		t.Errorf("missing: got %d, want 404", rr.Code)
	}
	f.recs.found = true
	if rr := f.do("DELETE", "/api/v1/recommendation/cache/1", ""); rr.Code != http.StatusOK {
		t.Errorf("found: got %d, want 200", rr.Code)
	}

	resp := decode[MessageResponse](t, f.do("DELETE", "/api/v1/recommendation/cache", ""))
	if resp.DeletedCount == nil || *resp.DeletedCount != 7 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestIndexDocuments_RequiresAdmin(t *testing.T) {
	f := newFixture(t, nil)
	body := `[{"docId":"1","title":"대기오염","desc":"측정","keywords":["대기"]}]`

	if rr := f.do("POST", "/api/v1/recommendation/index", body); rr.Code != http.StatusUnauthorized {
		t.Errorf("without token: got %d, want 401", rr.Code)
	}

	rr := f.do("POST", "/api/v1/recommendation/index", body, "Authorization", "Bearer admin-secret")
	if rr.Code != http.StatusOK {
		t.Fatalf("with token: got %d", rr.Code)
	}
	resp := decode[IndexResponse](t, rr)
	if resp.Indexed != 1 || f.indexer.got[0].Title != "대기오염" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestHealthCheck(t *testing.T) {
	f := newFixture(t, nil)
	if rr := f.do("GET", "/health", ""); rr.Code != http.StatusOK {
		t.Errorf("healthy: got %d", rr.Code)
	}

	f.health.report = healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK, "milvus": healthuc.CheckError},
	}
	rr := f.do("GET", "/health", "")
	if rr.Code != http.StatusOK {
		t.Errorf("degraded: got %d, want 200", rr.Code)
	}
	if resp := decode[HealthResponse](t, rr); resp.Status != "degraded" || resp.Checks["milvus"] != "error" {
		t.Errorf("unexpected body: %+v", resp)
	}

	f.health.report.Critical = true
	if rr := f.do("GET", "/health", ""); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("critical: got %d, want 503", rr.Code)
	}
}

func TestRateLimit_AppliesToPublicRoutesOnly(t *testing.T) {
	l := &stubLimiter{decision: ratelimit.Decision{Limit: 60, RetryAfter: 30 * time.Second}}
	f := newFixture(t, l)

	if rr := f.do("GET", "/api/v1/document", ""); rr.Code != http.StatusTooManyRequests {
		t.Errorf("public route: got %d, want 429", rr.Code)
	}
	if rr := f.do("GET", "/health", ""); rr.Code != http.StatusOK {
		t.Errorf("health: got %d, want 200", rr.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(t, nil)
	rr := f.do("GET", "/api/v2/nothing", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", rr.Code)
	}
	if resp := decode[ErrorResponse](t, rr); resp.Code != codeNotFound {
		t.Errorf("unexpected code %q", resp.Code)
	}
}
