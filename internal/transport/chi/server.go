package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/teamaeris/opendata-api/internal/domain"
	logpkg "github.com/teamaeris/opendata-api/internal/logger"
	"github.com/teamaeris/opendata-api/internal/repository/ratelimit"
)

// Error codes returned in ErrorResponse.Code.
const (
	codeBadRequest       = "bad_request"
	codeNotFound         = "not_found"
	codeInvalidArgument  = "invalid_argument"
	codePageOutOfRange   = "page_out_of_range"
	codeBatchTooLarge    = "batch_too_large"
	codeRateLimited      = "rate_limited"
	codeUnauthorized     = "unauthorized"
	codeEmbeddingFailure = "embedding_provider_error"
	codeInternal         = "internal_error"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Services bundles the use cases the HTTP API serves.
type Services struct {
	Listing         Lister
	Ranks           Ranker
	Documents       Documents
	Comments        Comments
	Search          TitleSearcher
	Recommendations Recommender
	Indexer         Indexer
	Health          HealthChecker
}

// Server maps HTTP routes onto use cases.
type Server struct {
	svc           Services
	adminKeys     []string
	limiter       ratelimit.Limiter
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(svc Services, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{svc: svc, logger: logger}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		detailedHandler(domain.ErrPageOutOfRange, http.StatusBadRequest, codePageOutOfRange),
		detailedHandler(domain.ErrBatchTooLarge, http.StatusBadRequest, codeBatchTooLarge),
		detailedHandler(domain.ErrInvalidArgument, http.StatusBadRequest, codeInvalidArgument),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
		sentinelHandler(domain.ErrUnauthorized, http.StatusUnauthorized, codeUnauthorized),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingFailure),
	}
	return s
}

// WithAdminKeys sets the bearer tokens accepted on admin routes.
func (s *Server) WithAdminKeys(keys []string) *Server {
	s.adminKeys = keys
	return s
}

// WithRateLimiter enables per-client rate limiting on public routes.
func (s *Server) WithRateLimiter(l ratelimit.Limiter) *Server {
	s.limiter = l
	return s
}

// Mount registers every route on r.
func (s *Server) Mount(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Admin routes authenticate before the public limiter.
		r.Group(func(r chi.Router) {
			r.Use(BearerAuthMiddleware(s.adminKeys))
			r.Post("/document/ranks/rebuild", s.RebuildRanks)
			r.Post("/recommendation/index", s.IndexDocuments)
		})

		r.Group(func(r chi.Router) {
			if s.limiter != nil {
				r.Use(RateLimitMiddleware(s.limiter, s.logger))
			}

			r.Get("/document", s.ListDocuments)
			r.Get("/document/success-rate", s.SuccessRate)
			r.Get("/document/stats", s.DocumentStats)
			r.Get("/document/std-docs", s.ListStdDocs)
			r.Get("/document/std-docs/{listId}", s.GetDocumentDetail)
			r.Post("/document/save-request", s.SaveRequest)

			r.Post("/comments", s.CreateComment)
			r.Get("/comments/{listId}", s.ListComments)
			r.Delete("/comments/{commentId}", s.DeleteComment)

			r.Get("/search/title", s.SearchTitles)
			r.Get("/search/stats", s.SearchIndexStats)

			r.Get("/recommendation/stats", s.RecommendationStats)
			r.Get("/recommendation/realtime/{docId}", s.RealtimeRecommendations)
			r.Get("/recommendation/cache/{docId}", s.CachedRecommendations)
			r.Delete("/recommendation/cache/{docId}", s.ClearRecommendation)
			r.Delete("/recommendation/cache", s.ClearAllRecommendations)
			r.Post("/recommendation/batch/generate", s.BatchGenerate)
			r.Get("/recommendation/{docId}", s.GetRecommendations)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeBadRequest, "method not allowed")
	})
}

// Handler returns a router with every route mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Mount(r)
	return r
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.svc.Health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Critical {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	logpkg.FromContext(r.Context()).Error("Unhandled error",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
}

// sentinelHandler returns an errorHandler that matches a single sentinel error
// and replies with the sentinel message only.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

// detailedHandler is sentinelHandler for client mistakes: the full message is returned.
func detailedHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

// safeDomainMessage returns a client-safe message for per-item batch errors.
func safeDomainMessage(err error) string {
	for _, s := range []error{domain.ErrInvalidArgument, domain.ErrBatchTooLarge} {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	for _, s := range []error{
		domain.ErrNotFound,
		domain.ErrVectorNotFound,
		domain.ErrEmbeddingProviderError,
		domain.ErrRateLimited,
	} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// intQuery reads an integer query parameter, falling back to def when absent.
func intQuery(r *http.Request, name string, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	return n, nil
}

func floatQuery(r *http.Request, name string, def float64) (float64, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.New(name + " must be a number")
	}
	return f, nil
}

func boolQuery(r *http.Request, name string, def bool) (bool, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.New(name + " must be a boolean")
	}
	return b, nil
}

// int64Path reads a positive integer URL parameter.
func int64Path(r *http.Request, name string) (int64, error) {
	n, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || n < 1 {
		return 0, errors.New(name + " must be a positive integer")
	}
	return n, nil
}
