package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/teamaeris/opendata-api/internal/domain/catalog"
)

// CreateComment handles POST /api/v1/comments.
func (s *Server) CreateComment(w http.ResponseWriter, r *http.Request) {
	var body CreateCommentBody
	if !decodeJSON(w, r, &body) {
		return
	}
	id, err := s.svc.Comments.Create(r.Context(), body.ListID, body.Content)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, IDResponse{ID: id})
}

// ListComments handles GET /api/v1/comments/{listId}.
func (s *Server) ListComments(w http.ResponseWriter, r *http.Request) {
	listID, err := int64Path(r, "listId")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	page, err := intQuery(r, "page", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	size, err := intQuery(r, "size", catalog.DefaultPageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	p, err := s.svc.Comments.List(r.Context(), listID, page, size)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, commentPageToResponse(p))
}

// DeleteComment handles DELETE /api/v1/comments/{commentId}.
func (s *Server) DeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Comments.Delete(r.Context(), chi.URLParam(r, "commentId")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}
