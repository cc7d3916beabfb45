package chi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/teamaeris/opendata-api/internal/domain/catalog"
	logpkg "github.com/teamaeris/opendata-api/internal/logger"
)

// ListDocuments handles GET /api/v1/document.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	q, msg := parseListingQuery(r)
	if msg != "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, msg)
		return
	}

	listing, err := s.svc.Listing.List(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listingToResponse(listing))
}

func parseListingQuery(r *http.Request) (catalog.ListingQuery, string) {
	query := r.URL.Query()

	page, err := intQuery(r, "page", 1)
	if err != nil {
		return catalog.ListingQuery{}, err.Error()
	}
	size, err := intQuery(r, "size", catalog.DefaultPageSize)
	if err != nil {
		return catalog.ListingQuery{}, err.Error()
	}
	sort, ok := catalog.ParseSort(query.Get("sortBy"))
	if !ok {
		return catalog.ListingQuery{}, "sortBy must be one of popular, trending, latest, all"
	}
	exact, err := boolQuery(r, "exactMatch", false)
	if err != nil {
		return catalog.ListingQuery{}, err.Error()
	}
	minScore, err := floatQuery(r, "minScore", 0)
	if err != nil {
		return catalog.ListingQuery{}, err.Error()
	}
	adaptive, err := boolQuery(r, "useAdaptiveFiltering", true)
	if err != nil {
		return catalog.ListingQuery{}, err.Error()
	}

	return catalog.ListingQuery{
		Text:       strings.TrimSpace(query.Get("q")),
		Paging:     catalog.NewPaging(page, size),
		Sort:       sort,
		Name:       catalog.ParseOrder(query.Get("nameSortBy")),
		Org:        catalog.ParseOrder(query.Get("orgSortBy")),
		DataType:   catalog.ParseOrder(query.Get("dataTypeSortBy")),
		TokenCount: catalog.ParseOrder(query.Get("tokenCountSortBy")),
		Status:     catalog.ParseOrder(query.Get("statusSortBy")),
		ExactMatch: exact,
		MinScore:   minScore,
		Adaptive:   adaptive,
	}, ""
}

// RebuildRanks handles POST /api/v1/document/ranks/rebuild.
func (s *Server) RebuildRanks(w http.ResponseWriter, r *http.Request) {
	counts, err := s.svc.Ranks.RebuildRankSnapshots(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	logpkg.FromContext(r.Context()).Info("Rank snapshots rebuilt on request",
		zap.Int("latest", counts[catalog.Latest]),
		zap.Int("popular", counts[catalog.Popular]),
		zap.Int("trending", counts[catalog.Trending]),
	)
	writeJSON(w, http.StatusOK, RebuildResponse{
		Latest:   counts[catalog.Latest],
		Popular:  counts[catalog.Popular],
		Trending: counts[catalog.Trending],
	})
}

// SuccessRate handles GET /api/v1/document/success-rate.
func (s *Server) SuccessRate(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Documents.Stats(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessRateResponse{
		TotalOpenData: st.APIData,
		TotalStdDocs:  st.APIDocs,
		SuccessRate:   st.SuccessRate(),
	})
}

// DocumentStats handles GET /api/v1/document/stats.
func (s *Server) DocumentStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Documents.Stats(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statsToResponse(st))
}

// ListStdDocs handles GET /api/v1/document/std-docs.
func (s *Server) ListStdDocs(w http.ResponseWriter, r *http.Request) {
	ids, err := parseListIDs(r.URL.Query()["listIds"])
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	page, err := intQuery(r, "page", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	pageSize, err := intQuery(r, "pageSize", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	docs, err := s.svc.Documents.StdDocs(r.Context(), ids, page, pageSize)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	out := make([]GeneratedDoc, len(docs))
	for i, d := range docs {
		out[i] = generatedToResponse(d)
	}
	writeJSON(w, http.StatusOK, out)
}

var errInvalidListIDs = errors.New("listIds must be comma-separated integers")

// parseListIDs accepts repeated and comma-separated listIds values.
func parseListIDs(values []string) ([]int64, error) {
	var ids []int64
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, errInvalidListIDs
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// GetDocumentDetail handles GET /api/v1/document/std-docs/{listId}.
func (s *Server) GetDocumentDetail(w http.ResponseWriter, r *http.Request) {
	listID, err := int64Path(r, "listId")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	withRecs, err := boolQuery(r, "includeRecommendations", false)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	r = r.WithContext(logpkg.With(r.Context(), zap.Int64("list_id", listID)))

	detail, err := s.svc.Documents.Detail(r.Context(), listID, withRecs)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detailToResponse(detail))
}

// SaveRequest handles POST /api/v1/document/save-request.
func (s *Server) SaveRequest(w http.ResponseWriter, r *http.Request) {
	var body SaveRequestBody
	if !decodeJSON(w, r, &body) {
		return
	}
	var listID int64
	if body.ListID != nil {
		listID = *body.ListID
	}
	var url string
	if body.URL != nil {
		url = *body.URL
	}

	id, err := s.svc.Documents.SaveRequest(r.Context(), listID, url)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SaveRequestResponse{Message: "saved", ID: id})
}
