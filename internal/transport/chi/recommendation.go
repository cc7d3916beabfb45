package chi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	dombatch "github.com/teamaeris/opendata-api/internal/domain/batch"
	domrec "github.com/teamaeris/opendata-api/internal/domain/recommendation"
)

var errTopKRange = errors.New("topK must be between 1 and 20")

func topKQuery(r *http.Request) (int, error) {
	k, err := intQuery(r, "topK", domrec.DefaultTopK)
	if err != nil {
		return 0, err
	}
	if k < 1 || k > domrec.MaxTopK {
		return 0, errTopKRange
	}
	return k, nil
}

// GetRecommendations handles GET /api/v1/recommendation/{docId}.
func (s *Server) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	topK, err := topKQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	useCache, err := boolQuery(r, "useCache", true)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	docType := strings.ToUpper(r.URL.Query().Get("targetDocType"))

	res, err := s.svc.Recommendations.Get(r.Context(), chi.URLParam(r, "docId"), docType, topK, useCache)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recommendationToResponse(res))
}

// RealtimeRecommendations handles GET /api/v1/recommendation/realtime/{docId}.
func (s *Server) RealtimeRecommendations(w http.ResponseWriter, r *http.Request) {
	topK, err := topKQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	threshold, err := floatQuery(r, "threshold", domrec.DefaultThreshold)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	res, err := s.svc.Recommendations.Realtime(r.Context(), chi.URLParam(r, "docId"), topK, threshold)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recommendationToResponse(res))
}

// CachedRecommendations handles GET /api/v1/recommendation/cache/{docId}.
func (s *Server) CachedRecommendations(w http.ResponseWriter, r *http.Request) {
	topK, err := topKQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	res, err := s.svc.Recommendations.FromCache(r.Context(), chi.URLParam(r, "docId"), topK)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recommendationToResponse(res))
}

// BatchGenerate handles POST /api/v1/recommendation/batch/generate.
// The body is a JSON array of document ids.
func (s *Server) BatchGenerate(w http.ResponseWriter, r *http.Request) {
	var ids []string
	if !decodeJSON(w, r, &ids) {
		return
	}
	topK, err := topKQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	docType := strings.ToUpper(r.URL.Query().Get("targetDocType"))

	summary, results, err := s.svc.Recommendations.Batch(r.Context(), ids, docType, topK)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, BatchGenerateResponse{
		Message:        "batch generation completed",
		TotalRequested: summary.Requested,
		SuccessCount:   summary.Succeeded,
		FailedCount:    summary.Failed,
		Items:          batchItemsToResponse(results),
	})
}

// RecommendationStats handles GET /api/v1/recommendation/stats.
func (s *Server) RecommendationStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Recommendations.Stats(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RecommendationStatsResponse{
		TotalCachedDocs:          st.TotalCachedDocs,
		RecentRecommendations:    st.RecentRecommendations,
		AvgRecommendationsPerDoc: st.AvgPerDoc,
		CacheHitRatio:            st.CacheHitRatio,
	})
}

// ClearRecommendation handles DELETE /api/v1/recommendation/cache/{docId}.
func (s *Server) ClearRecommendation(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docId")
	found, err := s.svc.Recommendations.Clear(r.Context(), docID)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, codeNotFound, "no cached recommendations for "+docID)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "cache cleared for " + docID})
}

// ClearAllRecommendations handles DELETE /api/v1/recommendation/cache.
func (s *Server) ClearAllRecommendations(w http.ResponseWriter, r *http.Request) {
	n, err := s.svc.Recommendations.ClearAll(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "all caches cleared", DeletedCount: &n})
}

// IndexDocuments handles POST /api/v1/recommendation/index.
func (s *Server) IndexDocuments(w http.ResponseWriter, r *http.Request) {
	var body []IndexDocumentBody
	if !decodeJSON(w, r, &body) {
		return
	}
	docs := make([]domrec.IndexDocument, len(body))
	for i, b := range body {
		docs[i] = domrec.IndexDocument{
			DocID:    b.DocID,
			DocType:  b.DocType,
			Title:    b.Title,
			Desc:     b.Desc,
			Keywords: b.Keywords,
		}
	}

	results, err := s.svc.Indexer.Index(r.Context(), docs)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, IndexResponse{
		Indexed: dombatch.Count(results, dombatch.StatusOK),
		Failed:  dombatch.Count(results, dombatch.StatusError),
		Items:   batchItemsToResponse(results),
	})
}
