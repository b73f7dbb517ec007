// internal/workers/generation/handler.go
package generation

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"idea-lab/internal/common/errors"
	"idea-lab/internal/common/genai"
	"idea-lab/internal/common/logger"
	"idea-lab/internal/common/metrics"
	"idea-lab/internal/finance"
	"idea-lab/internal/ideagen"
	"idea-lab/internal/models"
	"idea-lab/internal/roadmap"
)

const (
	TaskGenerateIdeas = "idea-lab.generate-ideas"
	TaskDetails       = "idea-lab.generate-details"
	TaskStressTest    = "idea-lab.generate-stress-test"
	TaskFinancials    = "idea-lab.generate-financials"
	TaskRoadmap       = "idea-lab.generate-roadmap"
	TaskSuppliers     = "idea-lab.generate-suppliers"
	TaskPitchDeck     = "idea-lab.generate-pitch-deck"
	TaskCanvas        = "idea-lab.generate-canvas"
	TaskFunding       = "idea-lab.generate-funding"
)

// TaskTypes lists every task type this package serves.
var TaskTypes = []string{
	TaskGenerateIdeas,
	TaskDetails,
	TaskStressTest,
	TaskFinancials,
	TaskRoadmap,
	TaskSuppliers,
	TaskPitchDeck,
	TaskCanvas,
	TaskFunding,
}

var kinds = map[string]string{
	TaskGenerateIdeas: ideagen.KindIdeas,
	TaskDetails:       ideagen.KindDetails,
	TaskStressTest:    ideagen.KindStressTest,
	TaskFinancials:    ideagen.KindFinancials,
	TaskRoadmap:       ideagen.KindRoadmap,
	TaskSuppliers:     ideagen.KindSuppliers,
	TaskPitchDeck:     ideagen.KindPitchDeck,
	TaskCanvas:        ideagen.KindCanvas,
	TaskFunding:       ideagen.KindFunding,
}

type ContentGenerator interface {
	GenerateIdeas(ctx context.Context, industry, lang string) ([]models.BusinessIdea, error)
	GenerateBusinessDetails(ctx context.Context, idea *models.BusinessIdea, lang string) (*models.BusinessDetails, error)
	GenerateStressTest(ctx context.Context, idea *models.BusinessIdea, lang string) (*models.StressTestAnalysis, error)
	GenerateFinancialEstimates(ctx context.Context, idea *models.BusinessIdea, lang string) (*models.FinancialEstimates, error)
	GenerateRoadmap(ctx context.Context, idea *models.BusinessIdea, lang string) (models.Roadmap, error)
	FindMachineSuppliers(ctx context.Context, machineName, lang string) ([]models.SourcingLink, error)
	GeneratePitchDeck(ctx context.Context, idea *models.BusinessIdea, lang string) (*models.PitchDeck, error)
}

type CanvasGenerator interface {
	Generate(ctx context.Context, idea *models.BusinessIdea, lang string) (*models.CanvasRecord, error)
}

type FundingGenerator interface {
	Generate(ctx context.Context, idea *models.BusinessIdea, amount float64, lang string) (*models.FundingPlan, error)
}

type IdeaIndexer interface {
	IndexAsync(ctx context.Context, ideas ...models.BusinessIdea)
}

// Deps are the collaborators shared by all generation handlers.
// Roadmaps and Index are optional.
type Deps struct {
	Content  ContentGenerator
	Canvas   CanvasGenerator
	Funding  FundingGenerator
	Roadmaps *roadmap.Tracker
	Index    IdeaIndexer
}

// Handler serves one generation task type.
type Handler struct {
	taskType string
	kind     string
	config   *Config
	deps     Deps
	errors   *errors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(taskType string, cfg *Config, deps Deps, log logger.Logger) (*Handler, error) {
	kind, ok := kinds[taskType]
	if !ok {
		return nil, fmt.Errorf("unknown generation task type %q", taskType)
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = "en"
	}
	log = log.With(map[string]interface{}{"taskType": taskType})
	return &Handler{
		taskType: taskType,
		kind:     kind,
		config:   cfg,
		deps:     deps,
		errors:   errors.NewErrorHandler(log),
		logger:   log,
	}, nil
}

func (h *Handler) TaskType() string {
	return h.taskType
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.Key,
		"processInstanceKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, errors.NewValidationFailedError("parse variables: "+err.Error()), start)
		return
	}

	timeout := h.config.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err, start)
		return
	}
	h.completeJob(client, job, output, start)
}

// Execute generates the task's content kind. An empty generation is
// reported as GENERATION_EMPTY so the process can route to a retry prompt.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	lang := input.Language
	if lang == "" {
		lang = h.config.DefaultLanguage
	}
	if h.needsIdea() && input.Idea == nil {
		return nil, errors.NewValidationFailedError("idea is required")
	}
	// stored records are keyed by the stable id, as on the API path
	if input.Idea != nil {
		input.Idea.EnsureID()
	}

	out := &Output{Kind: h.kind}
	var (
		empty bool
		err   error
	)

	switch h.taskType {
	case TaskGenerateIdeas:
		industry := strings.TrimSpace(input.Industry)
		if industry == "" {
			return nil, errors.NewValidationFailedError("industry is required")
		}
		out.Ideas, err = h.deps.Content.GenerateIdeas(ctx, industry, lang)
		empty = len(out.Ideas) == 0
		if err == nil && !empty && h.deps.Index != nil {
			h.deps.Index.IndexAsync(ctx, out.Ideas...)
		}

	case TaskDetails:
		out.Details, err = h.deps.Content.GenerateBusinessDetails(ctx, input.Idea, lang)
		empty = out.Details == nil

	case TaskStressTest:
		out.StressTest, err = h.deps.Content.GenerateStressTest(ctx, input.Idea, lang)
		empty = out.StressTest == nil

	case TaskFinancials:
		out.Financials, err = h.deps.Content.GenerateFinancialEstimates(ctx, input.Idea, lang)
		empty = out.Financials == nil
		if !empty {
			m := finance.Calculate(*out.Financials, models.LandedCost{}).JSONSafe()
			out.Metrics = &m
		}

	case TaskRoadmap:
		var rec *roadmap.Record
		rec, err = h.roadmap(ctx, input.Idea, lang)
		empty = rec == nil
		if !empty {
			pct := rec.Percent()
			out.Roadmap = rec.Roadmap
			out.RoadmapProgress = &pct
		}

	case TaskSuppliers:
		machine := strings.TrimSpace(input.MachineName)
		if machine == "" && input.Idea != nil {
			machine = input.Idea.MachineName
		}
		if machine == "" {
			return nil, errors.NewValidationFailedError("machineName is required")
		}
		out.Suppliers, err = h.deps.Content.FindMachineSuppliers(ctx, machine, lang)
		empty = len(out.Suppliers) == 0

	case TaskPitchDeck:
		out.PitchDeck, err = h.deps.Content.GeneratePitchDeck(ctx, input.Idea, lang)
		empty = out.PitchDeck == nil

	case TaskCanvas:
		var rec *models.CanvasRecord
		rec, err = h.deps.Canvas.Generate(ctx, input.Idea, lang)
		empty = rec == nil
		if !empty {
			out.Canvas = &rec.Canvas
		}

	case TaskFunding:
		if input.Amount <= 0 {
			return nil, errors.NewValidationFailedError("amount must be positive")
		}
		var plan *models.FundingPlan
		plan, err = h.deps.Funding.Generate(ctx, input.Idea, input.Amount, lang)
		empty = plan == nil
		if !empty {
			out.Milestones = plan.Milestones
		}
	}

	if err != nil {
		return nil, h.classify(err)
	}
	if empty {
		return nil, errors.NewGenerationEmptyError(h.kind)
	}
	return out, nil
}

// roadmap reuses a stored record when one exists so completed steps survive.
func (h *Handler) roadmap(ctx context.Context, idea *models.BusinessIdea, lang string) (*roadmap.Record, error) {
	if h.deps.Roadmaps != nil {
		if rec, ok := h.deps.Roadmaps.Load(ctx, idea); ok && len(rec.Roadmap) > 0 {
			return rec, nil
		}
	}
	rm, err := h.deps.Content.GenerateRoadmap(ctx, idea, lang)
	if err != nil || len(rm) == 0 {
		return nil, err
	}
	if h.deps.Roadmaps != nil {
		return h.deps.Roadmaps.Start(ctx, idea, rm, nil), nil
	}
	return &roadmap.Record{Roadmap: rm, Progress: roadmap.Progress{}}, nil
}

func (h *Handler) needsIdea() bool {
	return h.taskType != TaskGenerateIdeas && h.taskType != TaskSuppliers
}

func (h *Handler) classify(err error) error {
	if _, ok := errors.AsStandardError(err); ok {
		return err
	}
	switch {
	case stderrors.Is(err, genai.ErrGenerationTimeout), stderrors.Is(err, context.DeadlineExceeded):
		return errors.NewGenerationTimeoutError(h.kind, err)
	case stderrors.Is(err, ideagen.ErrInvalidPayload):
		return errors.NewInvalidPayloadError(err)
	case stderrors.Is(err, ideagen.ErrInvalidInput):
		return errors.NewValidationFailedError(err.Error())
	default:
		return errors.NewGenerationFailedError(h.kind, err)
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output, start time.Time) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		h.failJob(client, job, errors.NewInvalidPayloadError(err), start)
		return
	}

	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(h.taskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(h.taskType).Observe(time.Since(start).Seconds())
	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":   job.Key,
		"duration": time.Since(start).String(),
	})
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error, start time.Time) {
	stdErr := errors.Normalize(err)
	metrics.WorkerJobsFailed.WithLabelValues(h.taskType, string(stdErr.Code)).Inc()
	metrics.WorkerJobDuration.WithLabelValues(h.taskType).Observe(time.Since(start).Seconds())
	h.errors.HandleJobError(context.Background(), client, job, stdErr)
}
