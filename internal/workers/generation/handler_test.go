// internal/workers/generation/handler_test.go
package generation

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idea-lab/internal/canvas"
	"idea-lab/internal/common/config"
	"idea-lab/internal/common/errors"
	"idea-lab/internal/common/genai"
	"idea-lab/internal/common/logger"
	"idea-lab/internal/funding"
	"idea-lab/internal/ideagen"
	"idea-lab/internal/models"
	"idea-lab/internal/roadmap"
	"idea-lab/internal/storage"
)

type stubContent struct {
	err        error
	ideas      []models.BusinessIdea
	details    *models.BusinessDetails
	stress     *models.StressTestAnalysis
	financials *models.FinancialEstimates
	roadmap    models.Roadmap
	suppliers  []models.SourcingLink
	deck       *models.PitchDeck
	canvas     *models.BusinessCanvas
	milestones []models.FundingMilestone

	mu       sync.Mutex
	calls    int
	machine  string
	language string
}

func (s *stubContent) track(lang string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.language = lang
}

func (s *stubContent) GenerateIdeas(_ context.Context, _, lang string) ([]models.BusinessIdea, error) {
	s.track(lang)
	return s.ideas, s.err
}

func (s *stubContent) GenerateBusinessDetails(_ context.Context, _ *models.BusinessIdea, lang string) (*models.BusinessDetails, error) {
	s.track(lang)
	return s.details, s.err
}

func (s *stubContent) GenerateStressTest(_ context.Context, _ *models.BusinessIdea, lang string) (*models.StressTestAnalysis, error) {
	s.track(lang)
	return s.stress, s.err
}

func (s *stubContent) GenerateFinancialEstimates(_ context.Context, _ *models.BusinessIdea, lang string) (*models.FinancialEstimates, error) {
	s.track(lang)
	return s.financials, s.err
}

func (s *stubContent) GenerateRoadmap(_ context.Context, _ *models.BusinessIdea, lang string) (models.Roadmap, error) {
	s.track(lang)
	return s.roadmap, s.err
}

func (s *stubContent) FindMachineSuppliers(_ context.Context, machine, lang string) ([]models.SourcingLink, error) {
	s.track(lang)
	s.machine = machine
	return s.suppliers, s.err
}

func (s *stubContent) GeneratePitchDeck(_ context.Context, _ *models.BusinessIdea, lang string) (*models.PitchDeck, error) {
	s.track(lang)
	return s.deck, s.err
}

func (s *stubContent) GenerateCanvas(_ context.Context, _ *models.BusinessIdea, lang string) (*models.BusinessCanvas, error) {
	s.track(lang)
	return s.canvas, s.err
}

func (s *stubContent) GenerateFundingMilestones(_ context.Context, _ *models.BusinessIdea, _ float64, lang string) ([]models.FundingMilestone, error) {
	s.track(lang)
	return s.milestones, s.err
}

type recordingIndex struct {
	ideas []models.BusinessIdea
}

func (r *recordingIndex) IndexAsync(_ context.Context, ideas ...models.BusinessIdea) {
	r.ideas = append(r.ideas, ideas...)
}

func testIdea() *models.BusinessIdea {
	idea := &models.BusinessIdea{
		MachineName:   "Vinyl Cutter",
		BusinessTitle: "Custom Decal Shop",
	}
	idea.EnsureID()
	return idea
}

func newTestHandler(t *testing.T, taskType string, content *stubContent, store storage.KVStore) (*Handler, *recordingIndex) {
	t.Helper()
	log := logger.NewTestLogger(t)
	if store == nil {
		store = storage.NewMemoryStore(0, 100)
	}
	index := &recordingIndex{}
	h, err := NewHandler(taskType, &Config{Timeout: time.Second, DefaultLanguage: "de"}, Deps{
		Content:  content,
		Canvas:   canvas.NewService(content, store, log),
		Funding:  funding.NewPlanner(content, store, nil, log),
		Roadmaps: roadmap.NewTracker(store, log),
		Index:    index,
	}, log)
	require.NoError(t, err)
	return h, index
}

func requireCode(t *testing.T, err error, code errors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok, "expected StandardError, got %v", err)
	assert.Equal(t, code, stdErr.Code)
}

func TestNewHandler_UnknownTaskType(t *testing.T) {
	_, err := NewHandler("idea-lab.unknown", &Config{}, Deps{}, logger.NewNoOpLogger())
	require.Error(t, err)
}

func TestTaskTypesAllHaveKinds(t *testing.T) {
	for _, tt := range TaskTypes {
		_, ok := kinds[tt]
		assert.True(t, ok, tt)
	}
	assert.Len(t, kinds, len(TaskTypes))
}

func TestExecute_GenerateIdeas(t *testing.T) {
	content := &stubContent{ideas: []models.BusinessIdea{*testIdea()}}
	h, index := newTestHandler(t, TaskGenerateIdeas, content, nil)

	out, err := h.Execute(context.Background(), &Input{Industry: "  printing "})

	require.NoError(t, err)
	assert.Equal(t, ideagen.KindIdeas, out.Kind)
	assert.Len(t, out.Ideas, 1)
	assert.Len(t, index.ideas, 1)
	assert.Equal(t, "de", content.language)
}

func TestExecute_GenerateIdeasRequiresIndustry(t *testing.T) {
	content := &stubContent{}
	h, _ := newTestHandler(t, TaskGenerateIdeas, content, nil)

	_, err := h.Execute(context.Background(), &Input{Industry: " "})

	requireCode(t, err, errors.ErrCodeValidationFailed)
	assert.Zero(t, content.calls)
}

func TestExecute_IdeaRequired(t *testing.T) {
	for _, task := range []string{TaskDetails, TaskStressTest, TaskFinancials, TaskRoadmap, TaskPitchDeck, TaskCanvas, TaskFunding} {
		t.Run(task, func(t *testing.T) {
			content := &stubContent{}
			h, _ := newTestHandler(t, task, content, nil)

			_, err := h.Execute(context.Background(), &Input{Amount: 100})

			requireCode(t, err, errors.ErrCodeValidationFailed)
			assert.Zero(t, content.calls)
		})
	}
}

func TestExecute_EmptyGenerationIsReported(t *testing.T) {
	for _, task := range TaskTypes {
		t.Run(task, func(t *testing.T) {
			h, _ := newTestHandler(t, task, &stubContent{}, nil)

			_, err := h.Execute(context.Background(), &Input{
				Idea:     testIdea(),
				Industry: "food",
				Amount:   5000,
			})

			requireCode(t, err, errors.ErrCodeGenerationEmpty)
			stdErr, _ := errors.AsStandardError(err)
			assert.False(t, stdErr.Retryable)
		})
	}
}

func TestExecute_Financials(t *testing.T) {
	content := &stubContent{financials: &models.FinancialEstimates{
		InitialInvestment:     1200,
		MonthlyFixedCosts:     300,
		CostPerUnit:           2,
		PricePerUnit:          5,
		EstimatedMonthlySales: 200,
		Currency:              "EUR",
	}}
	h, _ := newTestHandler(t, TaskFinancials, content, nil)

	out, err := h.Execute(context.Background(), &Input{Idea: testIdea(), Language: "fr"})

	require.NoError(t, err)
	require.NotNil(t, out.Metrics)
	assert.Equal(t, 3.0, out.Metrics.Margin)
	assert.Equal(t, 300.0, out.Metrics.MonthlyProfit)
	assert.Equal(t, 100.0, out.Metrics.BreakEvenUnits)
	assert.Equal(t, 4.0, out.Metrics.BreakEvenMonths)
	assert.Equal(t, "fr", content.language)
}

func TestExecute_RoadmapReusesStoredRecord(t *testing.T) {
	rm := models.Roadmap{
		{PhaseName: "Setup", Steps: []string{"buy machine", "register"}},
		{PhaseName: "Launch", Steps: []string{"open shop", "advertise"}},
	}
	store := storage.NewMemoryStore(0, 100)
	idea := testIdea()
	content := &stubContent{roadmap: rm}
	h, _ := newTestHandler(t, TaskRoadmap, content, store)

	out, err := h.Execute(context.Background(), &Input{Idea: idea})
	require.NoError(t, err)
	assert.Equal(t, rm, out.Roadmap)
	require.NotNil(t, out.RoadmapProgress)
	assert.Equal(t, 0, *out.RoadmapProgress)
	assert.Equal(t, 1, content.calls)

	tracker := roadmap.NewTracker(store, logger.NewNoOpLogger())
	rec, ok := tracker.Load(context.Background(), idea)
	require.True(t, ok)
	require.NoError(t, tracker.ToggleStep(context.Background(), idea, rec, 0, 1))

	out, err = h.Execute(context.Background(), &Input{Idea: idea})
	require.NoError(t, err)
	assert.Equal(t, 1, content.calls)
	assert.Equal(t, 25, *out.RoadmapProgress)
}

func TestExecute_IdeaWithoutIDSharesSessionKey(t *testing.T) {
	rm := models.Roadmap{{PhaseName: "Setup", Steps: []string{"buy machine"}}}
	store := storage.NewMemoryStore(0, 100)
	content := &stubContent{roadmap: rm}
	h, _ := newTestHandler(t, TaskRoadmap, content, store)

	jobIdea := &models.BusinessIdea{MachineName: "Vinyl Cutter", BusinessTitle: "Custom Decal Shop"}
	_, err := h.Execute(context.Background(), &Input{Idea: jobIdea})
	require.NoError(t, err)

	apiIdea := testIdea()
	assert.Equal(t, apiIdea.ID, jobIdea.ID)
	_, err = store.Get(context.Background(), "roadmap_Custom_Decal_Shop")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	rec, ok := roadmap.NewTracker(store, logger.NewNoOpLogger()).Load(context.Background(), apiIdea)
	require.True(t, ok)
	assert.Equal(t, rm, rec.Roadmap)
}

func TestExecute_SuppliersUseMachineName(t *testing.T) {
	content := &stubContent{suppliers: []models.SourcingLink{{Title: "Cutter", URL: "https://example.com/c", Source: "Alibaba"}}}
	h, _ := newTestHandler(t, TaskSuppliers, content, nil)

	out, err := h.Execute(context.Background(), &Input{Idea: testIdea()})
	require.NoError(t, err)
	assert.Len(t, out.Suppliers, 1)
	assert.Equal(t, "Vinyl Cutter", content.machine)

	_, err = h.Execute(context.Background(), &Input{MachineName: "Laser Engraver"})
	require.NoError(t, err)
	assert.Equal(t, "Laser Engraver", content.machine)

	_, err = h.Execute(context.Background(), &Input{})
	requireCode(t, err, errors.ErrCodeValidationFailed)
}

func TestExecute_CanvasIsStored(t *testing.T) {
	store := storage.NewMemoryStore(0, 100)
	idea := testIdea()
	content := &stubContent{canvas: &models.BusinessCanvas{Channels: []string{"Etsy"}}}
	h, _ := newTestHandler(t, TaskCanvas, content, store)

	out, err := h.Execute(context.Background(), &Input{Idea: idea})
	require.NoError(t, err)
	assert.Equal(t, []string{"Etsy"}, out.Canvas.Channels)

	rec, err := canvas.NewService(content, store, logger.NewNoOpLogger()).Latest(context.Background(), idea)
	require.NoError(t, err)
	assert.Equal(t, []string{"Etsy"}, rec.Canvas.Channels)
}

func TestExecute_Funding(t *testing.T) {
	content := &stubContent{milestones: []models.FundingMilestone{
		{PhaseName: "Seed", Amount: 2000, Status: models.MilestonePending},
	}}
	h, _ := newTestHandler(t, TaskFunding, content, nil)

	_, err := h.Execute(context.Background(), &Input{Idea: testIdea()})
	requireCode(t, err, errors.ErrCodeValidationFailed)

	out, err := h.Execute(context.Background(), &Input{Idea: testIdea(), Amount: 2000})
	require.NoError(t, err)
	assert.Len(t, out.Milestones, 1)
}

func TestExecute_PitchDeckAndStressTest(t *testing.T) {
	content := &stubContent{
		deck:   &models.PitchDeck{Slides: []models.PitchSlide{{Title: "Problem"}}},
		stress: &models.StressTestAnalysis{Summary: "fragile", ViabilityScore: 40},
	}

	h, _ := newTestHandler(t, TaskPitchDeck, content, nil)
	out, err := h.Execute(context.Background(), &Input{Idea: testIdea()})
	require.NoError(t, err)
	assert.Len(t, out.PitchDeck.Slides, 1)

	h, _ = newTestHandler(t, TaskStressTest, content, nil)
	out, err = h.Execute(context.Background(), &Input{Idea: testIdea()})
	require.NoError(t, err)
	assert.Equal(t, 40, out.StressTest.ViabilityScore)
}

func TestExecute_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code errors.ErrorCode
	}{
		{"timeout", fmt.Errorf("%w: slow", genai.ErrGenerationTimeout), errors.ErrCodeGenerationTimeout},
		{"deadline", context.DeadlineExceeded, errors.ErrCodeGenerationTimeout},
		{"failed", fmt.Errorf("%w: 500", genai.ErrGenerationFailed), errors.ErrCodeGenerationFailed},
		{"payload", fmt.Errorf("%w: missing overview", ideagen.ErrInvalidPayload), errors.ErrCodeInvalidPayload},
		{"input", fmt.Errorf("%w: bad", ideagen.ErrInvalidInput), errors.ErrCodeValidationFailed},
		{"other", stderrors.New("boom"), errors.ErrCodeGenerationFailed},
		{"standard", errors.NewBackendFailedError("x", nil), errors.ErrCodeBackendFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(t, TaskDetails, &stubContent{err: tt.err}, nil)

			_, err := h.Execute(context.Background(), &Input{Idea: testIdea()})

			requireCode(t, err, tt.code)
		})
	}
}

func TestConfigFor(t *testing.T) {
	cfg := &config.Config{
		App: config.AppConfig{DefaultLanguage: "es"},
		Workers: map[string]config.WorkerConfig{
			"generate-roadmap": {Enabled: true, Timeout: 90000},
		},
	}

	assert.Equal(t, "generate-roadmap", ConfigKey(TaskRoadmap))
	assert.Equal(t, 90*time.Second, ConfigFor(cfg, TaskRoadmap).Timeout)
	assert.Equal(t, time.Minute, ConfigFor(cfg, TaskCanvas).Timeout)
	assert.Equal(t, "es", ConfigFor(cfg, TaskCanvas).DefaultLanguage)
}
