package chi

import (
	"net/http"
)

const defaultTitlePageSize = 10

// SearchTitles handles GET /api/v1/search/title.
func (s *Server) SearchTitles(w http.ResponseWriter, r *http.Request) {
	page, err := intQuery(r, "page", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	pageSize, err := intQuery(r, "pageSize", defaultTitlePageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	res, err := s.svc.Search.Titles(r.Context(), r.URL.Query()["query"], page, pageSize)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, titlePageToResponse(res))
}

// SearchIndexStats handles GET /api/v1/search/stats.
func (s *Server) SearchIndexStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Search.IndexStats(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, IndexStatsResponse{Index: st.Index, DocCount: st.DocCount, SizeBytes: st.SizeBytes})
}
