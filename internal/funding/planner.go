// internal/funding/planner.go

// Package funding splits a funding amount into milestones and tracks their
// status.
package funding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"idea-lab/internal/cachekey"
	"idea-lab/internal/common/logger"
	"idea-lab/internal/models"
	"idea-lab/internal/storage"
)

var (
	ErrNotFound      = errors.New("FUNDING_PLAN_NOT_FOUND")
	ErrInvalidStatus = errors.New("INVALID_MILESTONE_STATUS")
	ErrOutOfRange    = errors.New("MILESTONE_OUT_OF_RANGE")
)

type Generator interface {
	GenerateFundingMilestones(ctx context.Context, idea *models.BusinessIdea, amount float64, lang string) ([]models.FundingMilestone, error)
}

// Event is published when a milestone changes status.
type Event struct {
	IdeaID     string                 `json:"ideaId"`
	IdeaTitle  string                 `json:"ideaTitle"`
	Index      int                    `json:"index"`
	Milestone  models.FundingMilestone `json:"milestone"`
	Previous   models.MilestoneStatus `json:"previousStatus"`
	OccurredAt time.Time              `json:"occurredAt"`
}

type Publisher interface {
	PublishMilestone(ctx context.Context, e Event) error
}

type Planner struct {
	gen       Generator
	store     storage.KVStore
	keys      cachekey.Builder
	publisher Publisher
	logger    logger.Logger
	now       func() time.Time
}

// NewPlanner builds a planner. publisher may be nil.
func NewPlanner(gen Generator, store storage.KVStore, publisher Publisher, log logger.Logger) *Planner {
	return &Planner{
		gen:       gen,
		store:     store,
		keys:      cachekey.Funding,
		publisher: publisher,
		logger:    log.With(map[string]interface{}{"component": "funding"}),
		now:       time.Now,
	}
}

// Generate creates and stores a plan. nil, nil means no milestones were produced.
func (p *Planner) Generate(ctx context.Context, idea *models.BusinessIdea, amount float64, lang string) (*models.FundingPlan, error) {
	if idea == nil {
		return nil, fmt.Errorf("funding: idea is required")
	}
	ms, err := p.gen.GenerateFundingMilestones(ctx, idea, amount, lang)
	if err != nil {
		return nil, err
	}
	if len(ms) == 0 {
		return nil, nil
	}
	plan := &models.FundingPlan{
		Idea:       *idea,
		Amount:     amount,
		Milestones: ms,
		UpdatedAt:  p.now().UTC(),
	}
	p.save(ctx, idea, plan)
	return plan, nil
}

func (p *Planner) Plan(ctx context.Context, idea *models.BusinessIdea) (*models.FundingPlan, error) {
	var plan models.FundingPlan
	key := p.keys.Key(idea)
	err := storage.GetJSON(ctx, p.store, key, &plan)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// UpdateStatus sets one milestone's status, persists the plan and publishes
// an event. Setting the current status again is a no-op.
func (p *Planner) UpdateStatus(ctx context.Context, idea *models.BusinessIdea, index int, status models.MilestoneStatus) (*models.FundingPlan, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	plan, err := p.Plan(ctx, idea)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(plan.Milestones) {
		return nil, fmt.Errorf("%w: %d of %d", ErrOutOfRange, index, len(plan.Milestones))
	}

	previous := plan.Milestones[index].Status
	if previous == status {
		return plan, nil
	}
	plan.Milestones[index].Status = status
	plan.UpdatedAt = p.now().UTC()
	p.save(ctx, idea, plan)

	if p.publisher != nil {
		e := Event{
			IdeaID:     idea.ID,
			IdeaTitle:  idea.BusinessTitle,
			Index:      index,
			Milestone:  plan.Milestones[index],
			Previous:   previous,
			OccurredAt: plan.UpdatedAt,
		}
		if err := p.publisher.PublishMilestone(ctx, e); err != nil {
			p.logger.Warn("milestone event not published", map[string]interface{}{
				"ideaId": idea.ID,
				"index":  index,
				"error":  err,
			})
		}
	}
	return plan, nil
}

func (p *Planner) save(ctx context.Context, idea *models.BusinessIdea, plan *models.FundingPlan) {
	key := p.keys.Key(idea)
	if err := storage.SetJSON(ctx, p.store, key, plan); err != nil {
		p.logger.Warn("funding plan write failed", map[string]interface{}{
			"key":   key,
			"error": err,
		})
	}
}
