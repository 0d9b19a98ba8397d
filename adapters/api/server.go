// Package api exposes the evaluation pipeline over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"goclue/app"
	"goclue/domain/annotation"
	"goclue/domain/core"
	"goclue/domain/evaluation"
	"goclue/domain/matrix"
	"goclue/internal"
	"goclue/internal/errors"
	"goclue/ports"
)

// Server wires the evaluation service and run repository into a chi router
type Server struct {
	router  *chi.Mux
	service *app.EvaluationService
	repo    ports.RunRepository
	logger  *internal.Logger
}

// NewServer builds the HTTP surface. repo may be nil, in which case the run
// listing endpoints respond 503.
func NewServer(service *app.EvaluationService, repo ports.RunRepository, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
		repo:    repo,
		logger:  logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/evaluate", s.handleEvaluate)
		r.Post("/optimize", s.handleOptimize)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{runID}", s.handleGetRun)
		r.Get("/health", s.handleHealth)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// EvaluateRequest is the JSON body of POST /api/evaluate
type EvaluateRequest struct {
	Entities    []string            `json:"entities"`
	Data        [][]float64         `json:"data"`
	Annotation  map[string][]string `json:"annotation"`
	Params      evaluation.Params   `json:"params"`
	KOverride   int                 `json:"k_override,omitempty"`
	SkipOptimal bool                `json:"skip_optimal,omitempty"`
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, errors.InvalidInput("malformed request body"))
		return
	}

	entities := make([]core.EntityID, len(req.Entities))
	for i, e := range req.Entities {
		entities[i] = core.EntityID(e)
	}
	m, err := matrix.New(entities, req.Data)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err)
		return
	}

	record, err := s.service.Evaluate(r.Context(), app.EvaluateRequest{
		Matrix:      m,
		Annotation:  annotation.NewSet(req.Annotation),
		Params:      req.Params,
		KOverride:   req.KOverride,
		SkipOptimal: req.SkipOptimal,
	})
	if err != nil {
		s.respondError(w, statusForError(err), err)
		return
	}
	s.respondJSON(w, http.StatusOK, record)
}

// OptimizeRequest is the JSON body of POST /api/optimize
type OptimizeRequest struct {
	Entities   []string            `json:"entities"`
	Data       [][]float64         `json:"data"`
	Annotation map[string][]string `json:"annotation"`
	K          int                 `json:"k"`
	Params     evaluation.Params   `json:"params"`
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, errors.InvalidInput("malformed request body"))
		return
	}

	entities := make([]core.EntityID, len(req.Entities))
	for i, e := range req.Entities {
		entities[i] = core.EntityID(e)
	}
	m, err := matrix.New(entities, req.Data)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err)
		return
	}

	record, err := s.service.OptimizeDataset(r.Context(), app.OptimizeRequest{
		Matrix:     m,
		Annotation: annotation.NewSet(req.Annotation),
		K:          req.K,
		Params:     req.Params,
	})
	if err != nil {
		s.respondError(w, statusForError(err), err)
		return
	}
	s.respondJSON(w, http.StatusOK, record)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		s.respondError(w, http.StatusServiceUnavailable, errors.New(errors.CodeDatabaseError, "run storage is not configured"))
		return
	}
	id := core.RunID(chi.URLParam(r, "runID"))
	record, err := s.repo.GetByID(r.Context(), id)
	if err != nil {
		if err == core.ErrRunNotFound {
			s.respondError(w, http.StatusNotFound, errors.NotFound("run"))
			return
		}
		s.respondError(w, http.StatusInternalServerError, err)
		return
	}
	s.respondJSON(w, http.StatusOK, record)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		s.respondError(w, http.StatusServiceUnavailable, errors.New(errors.CodeDatabaseError, "run storage is not configured"))
		return
	}
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)
	records, err := s.repo.List(r.Context(), limit, offset)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err)
		return
	}
	if records == nil {
		records = []*ports.RunRecord{}
	}
	s.respondJSON(w, http.StatusOK, records)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("[API] failed to encode response: %v", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, err error) {
	s.respondJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}

func statusForError(err error) int {
	if core.IsInputError(err) {
		return http.StatusBadRequest
	}
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput, errors.CodeDegenerateRow, errors.CodeDegenerateMatrix:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
