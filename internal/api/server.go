// internal/api/server.go

// Package api exposes the idea lab over HTTP.
package api

import (
	"context"
	"iter"
	"net/http"
	"strconv"
	"time"

	"idea-lab/internal/common/genai"
	"idea-lab/internal/common/logger"
	"idea-lab/internal/common/metrics"
	"idea-lab/internal/funding"
	"idea-lab/internal/models"
	"idea-lab/internal/repository"
	"idea-lab/internal/search"
	"idea-lab/internal/session"
)

const userHeader = "X-User-ID"

type IdeaGenerator interface {
	GenerateIdeas(ctx context.Context, industry, lang string) ([]models.BusinessIdea, error)
	GeneratePersonalizedIdeas(ctx context.Context, profile *models.UserProfile, lang string) ([]models.BusinessIdea, error)
	StreamChat(ctx context.Context, req genai.ChatRequest) iter.Seq2[string, error]
}

type IdeaStore interface {
	Save(ctx context.Context, userID string, idea *models.BusinessIdea) error
	List(ctx context.Context, userID string, opts repository.ListOptions) ([]models.BusinessIdea, error)
	Delete(ctx context.Context, userID, id string) error
	Upvote(ctx context.Context, userID, id string) (int, bool, error)
}

type ProfileStore interface {
	Get(ctx context.Context, userID string) (*models.UserProfile, error)
	Upsert(ctx context.Context, p *models.UserProfile) error
}

type IdeaSearcher interface {
	Search(ctx context.Context, q search.Query) (*search.Result, error)
	IndexAsync(ctx context.Context, ideas ...models.BusinessIdea)
}

type CanvasService interface {
	Generate(ctx context.Context, idea *models.BusinessIdea, lang string) (*models.CanvasRecord, error)
	Latest(ctx context.Context, idea *models.BusinessIdea) (*models.CanvasRecord, error)
}

type FundingService interface {
	Generate(ctx context.Context, idea *models.BusinessIdea, amount float64, lang string) (*models.FundingPlan, error)
	Plan(ctx context.Context, idea *models.BusinessIdea) (*models.FundingPlan, error)
	UpdateStatus(ctx context.Context, idea *models.BusinessIdea, index int, status models.MilestoneStatus) (*models.FundingPlan, error)
}

type PitchMailer interface {
	SendPitchDeck(ctx context.Context, to string, idea *models.BusinessIdea, deck *models.PitchDeck) error
}

var _ FundingService = (*funding.Planner)(nil)

// Deps are the collaborators behind the API. Search and Mailer may be nil.
type Deps struct {
	Ideas           IdeaGenerator
	Store           IdeaStore
	Profiles        ProfileStore
	Search          IdeaSearcher
	Sessions        *session.Manager
	Canvas          CanvasService
	Funding         FundingService
	Mailer          PitchMailer
	DefaultLanguage string
}

type Server struct {
	deps   Deps
	logger logger.Logger
	mux    *http.ServeMux
}

func NewServer(deps Deps, log logger.Logger) *Server {
	if deps.DefaultLanguage == "" {
		deps.DefaultLanguage = "en"
	}
	s := &Server{
		deps:   deps,
		logger: log.With(map[string]interface{}{"component": "api"}),
		mux:    http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.handle("POST /api/ideas/generate", s.generateIdeas)
	s.handle("POST /api/ideas/personalized", s.personalizedIdeas)
	s.handle("GET /api/ideas", s.listIdeas)
	s.handle("POST /api/ideas", s.saveIdea)
	s.handle("DELETE /api/ideas/{id}", s.deleteIdea)
	s.handle("POST /api/ideas/{id}/upvote", s.upvoteIdea)
	s.handle("GET /api/ideas/search", s.searchIdeas)

	s.handle("GET /api/profile", s.getProfile)
	s.handle("PUT /api/profile", s.putProfile)

	s.handle("GET /api/session", s.sessionSnapshot)
	s.handle("POST /api/session/open", s.sessionOpen)
	s.handle("POST /api/session/tab", s.sessionTab)
	s.handle("POST /api/session/retry", s.sessionRetry)
	s.handle("POST /api/session/close", s.sessionClose)
	s.handle("PATCH /api/session/financials", s.sessionFinancials)
	s.handle("PUT /api/session/landed-cost", s.sessionLandedCost)
	s.handle("GET /api/session/metrics", s.sessionMetrics)
	s.handle("POST /api/session/roadmap/toggle", s.sessionToggleStep)
	s.handle("POST /api/session/pitch-deck/email", s.sessionEmailDeck)

	s.handle("POST /api/canvas", s.generateCanvas)
	s.handle("POST /api/canvas/latest", s.latestCanvas)
	s.handle("POST /api/funding", s.generateFunding)
	s.handle("POST /api/funding/plan", s.fundingPlan)
	s.handle("POST /api/funding/status", s.fundingStatus)

	s.handle("POST /api/chat", s.chat)
}

type handlerFunc func(w http.ResponseWriter, r *http.Request, userID string)

// handle registers an authenticated route. The gateway in front of the
// service sets the user header.
func (s *Server) handle(pattern string, h handlerFunc) {
	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(userHeader)
		if userID == "" {
			writeError(w, s.logger, errUnauthenticated)
			return
		}
		h(w, r, userID)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	start := time.Now()
	s.mux.ServeHTTP(rec, r)

	route := r.Pattern
	if route == "" {
		route = "unmatched"
	}
	metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	s.logger.Debug("request served", map[string]interface{}{
		"route":    route,
		"status":   rec.status,
		"duration": time.Since(start).String(),
	})
}

// NewHTTPServer wraps handler with the configured timeouts. A zero write
// timeout keeps chat streams open.
func NewHTTPServer(addr string, handler http.Handler, readTimeout, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
