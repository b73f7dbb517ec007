// internal/ideagen/service.go

// Package ideagen turns business ideas into generated content: idea lists,
// canvases, blueprints, stress tests, financial estimates, roadmaps,
// supplier listings, pitch decks, funding milestones and chat.
//
// Every operation follows the same contract. Blank model output yields a
// nil result and a nil error, which callers treat as "no data yet". Transport
// failures keep the genai sentinels, malformed payloads wrap ErrInvalidPayload.
package ideagen

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"
	"text/template"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"idea-lab/internal/common/genai"
	"idea-lab/internal/common/logger"
	"idea-lab/internal/common/metrics"
	"idea-lab/internal/common/observability"
	"idea-lab/internal/common/validation"
	"idea-lab/internal/models"
)

var (
	ErrInvalidPayload = errors.New("INVALID_PAYLOAD")
	ErrInvalidInput   = errors.New("INVALID_INPUT")
)

// Content kinds, used as metric labels and span names.
const (
	KindIdeas        = "ideas"
	KindPersonalized = "personalized_ideas"
	KindCanvas       = "canvas"
	KindDetails      = "details"
	KindStressTest   = "stress_test"
	KindFinancials   = "financials"
	KindRoadmap      = "roadmap"
	KindSuppliers    = "suppliers"
	KindPitchDeck    = "pitch_deck"
	KindFunding      = "funding"
	KindChat         = "chat"
)

const defaultIdeaCount = 6

//go:embed prompts/*.tmpl
var promptFS embed.FS

var prompts = template.Must(template.New("prompts").
	Funcs(template.FuncMap{"join": strings.Join}).
	ParseFS(promptFS, "prompts/*.tmpl"))

type promptData struct {
	Idea        *models.BusinessIdea
	Profile     *models.UserProfile
	Industry    string
	MachineName string
	Amount      float64
	Count       int
	Language    string
}

// Service implements every content generation operation on top of a
// genai.Generator.
type Service struct {
	gen       genai.Generator
	obs       *observability.Observability
	logger    logger.Logger
	ideaCount int
	now       func() time.Time
}

func NewService(gen genai.Generator, obs *observability.Observability, log logger.Logger) *Service {
	if obs == nil {
		obs = observability.Noop()
	}
	return &Service{
		gen:       gen,
		obs:       obs,
		logger:    log.With(map[string]interface{}{"component": "ideagen"}),
		ideaCount: defaultIdeaCount,
		now:       time.Now,
	}
}

// GenerateIdeas suggests ideas for an industry. Every idea gets a stable id.
func (s *Service) GenerateIdeas(ctx context.Context, industry, lang string) ([]models.BusinessIdea, error) {
	industry = strings.TrimSpace(industry)
	if industry == "" {
		return nil, fmt.Errorf("%w: industry is required", ErrInvalidInput)
	}
	ideas, ok, err := generate[[]models.BusinessIdea](ctx, s, KindIdeas, ideasSchema, "ideas.tmpl",
		promptData{Industry: industry, Count: s.ideaCount, Language: lang})
	if err != nil || !ok {
		return nil, err
	}
	return s.normalizeIdeas(ideas, industry), nil
}

// GeneratePersonalizedIdeas suggests ideas matching a founder profile.
func (s *Service) GeneratePersonalizedIdeas(ctx context.Context, profile *models.UserProfile, lang string) ([]models.BusinessIdea, error) {
	if profile == nil {
		return nil, fmt.Errorf("%w: profile is required", ErrInvalidInput)
	}
	if lang == "" {
		lang = profile.Language
	}
	ideas, ok, err := generate[[]models.BusinessIdea](ctx, s, KindPersonalized, ideasSchema, "personalized.tmpl",
		promptData{Profile: profile, Count: s.ideaCount, Language: lang})
	if err != nil || !ok {
		return nil, err
	}
	return s.normalizeIdeas(ideas, ""), nil
}

func (s *Service) GenerateCanvas(ctx context.Context, idea *models.BusinessIdea, lang string) (*models.BusinessCanvas, error) {
	if idea == nil {
		return nil, fmt.Errorf("%w: idea is required", ErrInvalidInput)
	}
	c, ok, err := generate[models.BusinessCanvas](ctx, s, KindCanvas, canvasSchema, "canvas.tmpl",
		promptData{Idea: idea, Language: lang})
	if err != nil || !ok || c.IsEmpty() {
		return nil, err
	}
	return &c, nil
}

func (s *Service) GenerateBusinessDetails(ctx context.Context, idea *models.BusinessIdea, lang string) (*models.BusinessDetails, error) {
	if idea == nil {
		return nil, fmt.Errorf("%w: idea is required", ErrInvalidInput)
	}
	d, ok, err := generate[models.BusinessDetails](ctx, s, KindDetails, detailsSchema, "details.tmpl",
		promptData{Idea: idea, Language: lang})
	if err != nil || !ok || d.IsEmpty() {
		return nil, err
	}
	return &d, nil
}

func (s *Service) GenerateStressTest(ctx context.Context, idea *models.BusinessIdea, lang string) (*models.StressTestAnalysis, error) {
	if idea == nil {
		return nil, fmt.Errorf("%w: idea is required", ErrInvalidInput)
	}
	st, ok, err := generate[models.StressTestAnalysis](ctx, s, KindStressTest, stressSchema, "stress.tmpl",
		promptData{Idea: idea, Language: lang})
	if err != nil || !ok || st.IsEmpty() {
		return nil, err
	}
	return &st, nil
}

func (s *Service) GenerateFinancialEstimates(ctx context.Context, idea *models.BusinessIdea, lang string) (*models.FinancialEstimates, error) {
	if idea == nil {
		return nil, fmt.Errorf("%w: idea is required", ErrInvalidInput)
	}
	f, ok, err := generate[models.FinancialEstimates](ctx, s, KindFinancials, financialsSchema, "financials.tmpl",
		promptData{Idea: idea, Language: lang})
	if err != nil || !ok || f.IsEmpty() {
		return nil, err
	}
	return &f, nil
}

// GenerateRoadmap returns ordered phases. Phases without steps are dropped.
func (s *Service) GenerateRoadmap(ctx context.Context, idea *models.BusinessIdea, lang string) (models.Roadmap, error) {
	if idea == nil {
		return nil, fmt.Errorf("%w: idea is required", ErrInvalidInput)
	}
	rm, ok, err := generate[models.Roadmap](ctx, s, KindRoadmap, roadmapSchema, "roadmap.tmpl",
		promptData{Idea: idea, Language: lang})
	if err != nil || !ok {
		return nil, err
	}
	out := rm[:0]
	for _, p := range rm {
		if len(p.Steps) > 0 {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// FindMachineSuppliers lists marketplace links for a machine. Links whose
// URL is not an absolute http(s) URL are dropped.
func (s *Service) FindMachineSuppliers(ctx context.Context, machineName, lang string) ([]models.SourcingLink, error) {
	machineName = strings.TrimSpace(machineName)
	if machineName == "" {
		return nil, fmt.Errorf("%w: machine name is required", ErrInvalidInput)
	}
	links, ok, err := generate[[]models.SourcingLink](ctx, s, KindSuppliers, suppliersSchema, "suppliers.tmpl",
		promptData{MachineName: machineName, Language: lang})
	if err != nil || !ok {
		return nil, err
	}
	var out []models.SourcingLink
	for _, l := range links {
		l.URL = strings.TrimSpace(l.URL)
		if !validation.ValidateURL(l.URL) {
			s.logger.Debug("dropping supplier link", map[string]interface{}{
				"machine": machineName,
				"url":     l.URL,
			})
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (s *Service) GeneratePitchDeck(ctx context.Context, idea *models.BusinessIdea, lang string) (*models.PitchDeck, error) {
	if idea == nil {
		return nil, fmt.Errorf("%w: idea is required", ErrInvalidInput)
	}
	slides, ok, err := generate[[]models.PitchSlide](ctx, s, KindPitchDeck, pitchDeckSchema, "pitchdeck.tmpl",
		promptData{Idea: idea, Language: lang})
	if err != nil || !ok || len(slides) == 0 {
		return nil, err
	}
	return &models.PitchDeck{Slides: slides}, nil
}

// GenerateFundingMilestones splits amount into milestones. Every returned
// milestone starts as pending.
func (s *Service) GenerateFundingMilestones(ctx context.Context, idea *models.BusinessIdea, amount float64, lang string) ([]models.FundingMilestone, error) {
	if idea == nil {
		return nil, fmt.Errorf("%w: idea is required", ErrInvalidInput)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: funding amount must be positive", ErrInvalidInput)
	}
	ms, ok, err := generate[[]models.FundingMilestone](ctx, s, KindFunding, fundingSchema, "funding.tmpl",
		promptData{Idea: idea, Amount: amount, Language: lang})
	if err != nil || !ok || len(ms) == 0 {
		return nil, err
	}
	for i := range ms {
		ms[i].Status = models.MilestonePending
	}
	return ms, nil
}

// StreamChat relays chat fragments and records one generation per stream.
func (s *Service) StreamChat(ctx context.Context, req genai.ChatRequest) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		ctx, span := s.obs.StartSpan(ctx, "ideagen."+KindChat, attribute.String("language", req.Language))
		defer span.End()
		start := time.Now()
		outcome := "ok"
		defer func() { s.record(ctx, KindChat, outcome, start) }()

		for chunk, err := range s.gen.StreamChat(ctx, req) {
			if err != nil {
				outcome = outcomeOf(err)
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				yield("", err)
				return
			}
			if !yield(chunk, nil) {
				outcome = "cancelled"
				return
			}
		}
	}
}

func (s *Service) normalizeIdeas(ideas []models.BusinessIdea, industry string) []models.BusinessIdea {
	if len(ideas) == 0 {
		return nil
	}
	now := s.now().UTC()
	seen := make(map[string]struct{}, len(ideas))
	out := make([]models.BusinessIdea, 0, len(ideas))
	for _, idea := range ideas {
		p, err := models.ParseSourcePlatform(string(idea.SourcePlatform))
		if err != nil {
			s.logger.Debug("unknown source platform, using Alibaba", map[string]interface{}{
				"platform": string(idea.SourcePlatform),
				"title":    idea.BusinessTitle,
			})
			p = models.PlatformAlibaba
		}
		idea.SourcePlatform = p
		if idea.Industry == "" {
			idea.Industry = industry
		}
		idea.ID = ""
		idea.EnsureID()
		if _, dup := seen[idea.ID]; dup {
			continue
		}
		seen[idea.ID] = struct{}{}
		idea.Upvotes, idea.IsUpvoted, idea.IsSaved = 0, false, false
		idea.CreatedAt = now
		out = append(out, idea)
	}
	return out
}

// generate renders a prompt, calls the model and decodes the validated
// payload. ok is false when the model returned nothing.
func generate[T any](ctx context.Context, s *Service, kind string, schema *validation.Schema, tmpl string, data promptData) (result T, ok bool, err error) {
	if data.Language == "" {
		data.Language = "en"
	}
	ctx, span := s.obs.StartSpan(ctx, "ideagen."+kind, attribute.String("language", data.Language))
	defer span.End()

	start := time.Now()
	outcome := "ok"
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		s.record(ctx, kind, outcome, start)
	}()

	var buf bytes.Buffer
	if err = prompts.ExecuteTemplate(&buf, tmpl, data); err != nil {
		outcome = "failed"
		return result, false, fmt.Errorf("render %s prompt: %w", kind, err)
	}

	raw, err := s.gen.GenerateJSON(ctx, buf.String())
	if err != nil {
		outcome = outcomeOf(err)
		s.logger.Warn("generation failed", map[string]interface{}{
			"kind":  kind,
			"error": err,
		})
		return result, false, err
	}

	payload := stripFences(raw)
	if payload == "" || payload == "null" {
		outcome = "empty"
		return result, false, nil
	}
	if err = schema.Validate([]byte(payload)); err != nil {
		outcome = "invalid"
		s.logger.Warn("generated payload rejected", map[string]interface{}{
			"kind":  kind,
			"error": err,
		})
		return result, false, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err = json.Unmarshal([]byte(payload), &result); err != nil {
		outcome = "invalid"
		return result, false, fmt.Errorf("%w: decode %s: %v", ErrInvalidPayload, kind, err)
	}
	return result, true, nil
}

func (s *Service) record(ctx context.Context, kind, outcome string, start time.Time) {
	d := time.Since(start)
	metrics.GenerationRequests.WithLabelValues(kind, outcome).Inc()
	metrics.GenerationDuration.WithLabelValues(kind).Observe(d.Seconds())
	s.obs.RecordGeneration(ctx, kind, outcome, d)
}

func outcomeOf(err error) string {
	if errors.Is(err, genai.ErrGenerationTimeout) {
		return "timeout"
	}
	return "failed"
}

// stripFences removes a markdown code fence around a JSON payload.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
