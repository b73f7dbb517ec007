// internal/session/controller.go

// Package session drives the detail view of one business idea: the active
// tab, six lazily loaded content slots, editable financials and roadmap
// progress.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"idea-lab/internal/common/logger"
	"idea-lab/internal/common/metrics"
	"idea-lab/internal/models"
	"idea-lab/internal/roadmap"
)

var (
	ErrNoIdea       = errors.New("NO_IDEA_OPEN")
	ErrUnknownTab   = errors.New("UNKNOWN_TAB")
	ErrNotLoaded    = errors.New("SLOT_NOT_LOADED")
	ErrStaleResult  = errors.New("STALE_RESULT")
	ErrInvalidInput = errors.New("INVALID_INPUT")
)

// ContentSource generates the content behind each tab. A nil or empty
// result with a nil error means "no data yet".
type ContentSource interface {
	GenerateBusinessDetails(ctx context.Context, idea *models.BusinessIdea, lang string) (*models.BusinessDetails, error)
	GenerateStressTest(ctx context.Context, idea *models.BusinessIdea, lang string) (*models.StressTestAnalysis, error)
	GenerateFinancialEstimates(ctx context.Context, idea *models.BusinessIdea, lang string) (*models.FinancialEstimates, error)
	GenerateRoadmap(ctx context.Context, idea *models.BusinessIdea, lang string) (models.Roadmap, error)
	FindMachineSuppliers(ctx context.Context, machineName, lang string) ([]models.SourcingLink, error)
	GeneratePitchDeck(ctx context.Context, idea *models.BusinessIdea, lang string) (*models.PitchDeck, error)
}

type slots struct {
	details    Slot[*models.BusinessDetails]
	stress     Slot[*models.StressTestAnalysis]
	financials Slot[*models.FinancialEstimates]
	roadmap    Slot[*roadmap.Record]
	sourcing   Slot[[]models.SourcingLink]
	pitch      Slot[*models.PitchDeck]
}

func (s *slots) reset() {
	s.details.reset()
	s.stress.reset()
	s.financials.reset()
	s.roadmap.reset()
	s.sourcing.reset()
	s.pitch.reset()
}

// Controller owns one user's detail session. Methods are safe for
// concurrent use; fetches run without holding the lock, so different tabs
// load in parallel while each slot has at most one fetch in flight.
type Controller struct {
	source  ContentSource
	tracker *roadmap.Tracker
	logger  logger.Logger
	lang    string

	mu         sync.Mutex
	epoch      uint64
	idea       *models.BusinessIdea
	tab        Tab
	slots      slots
	landedCost models.LandedCost

	// roadmapVersion orders roadmap writes; bumped under mu, written under saveMu.
	roadmapVersion uint64
	saveMu         sync.Mutex
	savedVersion   uint64
}

func NewController(source ContentSource, tracker *roadmap.Tracker, log logger.Logger, lang string) *Controller {
	if lang == "" {
		lang = "en"
	}
	return &Controller{
		source:  source,
		tracker: tracker,
		logger:  log.With(map[string]interface{}{"component": "detail_session"}),
		lang:    lang,
		tab:     TabBlueprint,
	}
}

// SetLanguage changes the language tag used for subsequent fetches.
func (c *Controller) SetLanguage(lang string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if lang != "" {
		c.lang = lang
	}
}

// Open closes any open idea, resets every slot, turns the landed-cost
// adjustment off, selects the blueprint tab and loads the blueprint.
func (c *Controller) Open(ctx context.Context, idea *models.BusinessIdea) error {
	if idea == nil {
		return ErrInvalidInput
	}
	cp := *idea

	c.mu.Lock()
	if c.idea != nil {
		c.closeLocked()
	}
	c.idea = &cp
	c.slots.reset()
	c.landedCost.Enabled = false
	c.tab = TabBlueprint
	c.epoch++
	metrics.ActiveSessions.Inc()
	c.mu.Unlock()

	c.logger.Info("idea opened", map[string]interface{}{
		"ideaId": cp.ID,
		"title":  cp.BusinessTitle,
	})

	err := c.activate(ctx, TabBlueprint, false)
	if errors.Is(err, ErrStaleResult) {
		return nil
	}
	return err
}

// Close clears the idea and all slots. Persisted roadmap records stay.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.idea == nil {
		return
	}
	c.closeLocked()
}

func (c *Controller) closeLocked() {
	c.idea = nil
	c.slots.reset()
	c.tab = TabBlueprint
	c.epoch++
	metrics.ActiveSessions.Dec()
}

// SwitchTab selects tab and loads its content if it has none yet. The
// blueprint was loaded by Open, so selecting it never fetches.
func (c *Controller) SwitchTab(ctx context.Context, tab Tab) error {
	if _, err := ParseTab(string(tab)); err != nil {
		return err
	}
	c.mu.Lock()
	if c.idea == nil {
		c.mu.Unlock()
		return ErrNoIdea
	}
	c.tab = tab
	c.mu.Unlock()

	if tab == TabBlueprint {
		return nil
	}
	return c.activate(ctx, tab, false)
}

// Retry regenerates tab's content unless a fetch is already in flight.
// A regenerated roadmap keeps progress for steps that still exist.
func (c *Controller) Retry(ctx context.Context, tab Tab) error {
	if _, err := ParseTab(string(tab)); err != nil {
		return err
	}
	return c.activate(ctx, tab, true)
}

func (c *Controller) activate(ctx context.Context, tab Tab, force bool) error {
	switch tab {
	case TabBlueprint:
		return load(ctx, c, tab, force,
			func(s *slots) *Slot[*models.BusinessDetails] { return &s.details },
			c.fetchDetails,
			(*models.BusinessDetails).IsEmpty, nil)
	case TabStressTest:
		return load(ctx, c, tab, force,
			func(s *slots) *Slot[*models.StressTestAnalysis] { return &s.stress },
			func(ctx context.Context, idea *models.BusinessIdea, lang string) (*models.StressTestAnalysis, error) {
				return c.source.GenerateStressTest(ctx, idea, lang)
			},
			(*models.StressTestAnalysis).IsEmpty, nil)
	case TabROI:
		return load(ctx, c, tab, force,
			func(s *slots) *Slot[*models.FinancialEstimates] { return &s.financials },
			func(ctx context.Context, idea *models.BusinessIdea, lang string) (*models.FinancialEstimates, error) {
				return c.source.GenerateFinancialEstimates(ctx, idea, lang)
			},
			(*models.FinancialEstimates).IsEmpty, nil)
	case TabRoadmap:
		var previous roadmap.Progress
		if force {
			c.mu.Lock()
			if rec := c.slots.roadmap.Value; rec != nil {
				previous = rec.Progress.Clone()
			}
			c.mu.Unlock()
		}
		generated := false
		return load(ctx, c, tab, force,
			func(s *slots) *Slot[*roadmap.Record] { return &s.roadmap },
			func(ctx context.Context, idea *models.BusinessIdea, lang string) (*roadmap.Record, error) {
				rec, fresh, err := c.fetchRoadmap(ctx, idea, lang, force, previous)
				generated = fresh
				return rec, err
			},
			func(r *roadmap.Record) bool { return r == nil || len(r.Roadmap) == 0 },
			func(idea *models.BusinessIdea, rec *roadmap.Record) func() {
				if !generated {
					return nil
				}
				return c.queueRoadmapSave(ctx, idea, rec)
			})
	case TabPitchDeck:
		return load(ctx, c, tab, force,
			func(s *slots) *Slot[*models.PitchDeck] { return &s.pitch },
			func(ctx context.Context, idea *models.BusinessIdea, lang string) (*models.PitchDeck, error) {
				return c.source.GeneratePitchDeck(ctx, idea, lang)
			},
			(*models.PitchDeck).IsEmpty, nil)
	case TabSupplier:
		return load(ctx, c, tab, force,
			func(s *slots) *Slot[[]models.SourcingLink] { return &s.sourcing },
			func(ctx context.Context, idea *models.BusinessIdea, lang string) ([]models.SourcingLink, error) {
				return c.source.FindMachineSuppliers(ctx, idea.MachineName, lang)
			},
			func(l []models.SourcingLink) bool { return len(l) == 0 }, nil)
	}
	return ErrUnknownTab
}

// fetchDetails applies curated requirement lists from the idea over the
// generated ones.
func (c *Controller) fetchDetails(ctx context.Context, idea *models.BusinessIdea, lang string) (*models.BusinessDetails, error) {
	d, err := c.source.GenerateBusinessDetails(ctx, idea, lang)
	if err != nil || d == nil {
		return d, err
	}
	if len(idea.SkillRequirements) > 0 {
		d.SkillRequirements = append([]string(nil), idea.SkillRequirements...)
	}
	if len(idea.OperationalRequirements) > 0 {
		d.OperationalRequirements = append([]string(nil), idea.OperationalRequirements...)
	}
	return d, nil
}

// fetchRoadmap serves from the tracker when a record exists, unless
// regeneration was requested. A generated record is returned unsaved with
// fresh set; it is persisted only once the result is committed.
func (c *Controller) fetchRoadmap(ctx context.Context, idea *models.BusinessIdea, lang string, regenerate bool, previous roadmap.Progress) (rec *roadmap.Record, fresh bool, err error) {
	if !regenerate {
		if rec, ok := c.tracker.Load(ctx, idea); ok {
			return rec, false, nil
		}
	} else if previous == nil {
		if rec, ok := c.tracker.Load(ctx, idea); ok {
			previous = rec.Progress
		}
	}
	rm, err := c.source.GenerateRoadmap(ctx, idea, lang)
	if err != nil || len(rm) == 0 {
		return nil, false, err
	}
	return &roadmap.Record{Roadmap: rm, Progress: previous.Retain(rm)}, true, nil
}

// queueRoadmapSave must be called with mu held. The returned func writes a
// copy of rec and runs after mu is released; an older version never
// overwrites a newer one.
func (c *Controller) queueRoadmapSave(ctx context.Context, idea *models.BusinessIdea, rec *roadmap.Record) func() {
	c.roadmapVersion++
	version := c.roadmapVersion
	ideaCopy := *idea
	snapshot := rec.Clone()
	return func() {
		c.saveMu.Lock()
		defer c.saveMu.Unlock()
		if version <= c.savedVersion {
			return
		}
		c.tracker.Save(ctx, &ideaCopy, snapshot)
		c.savedVersion = version
	}
}

type fetchFunc[T any] func(ctx context.Context, idea *models.BusinessIdea, lang string) (T, error)

// commitFunc runs under the lock when a value is committed as Loaded. The
// returned func, if any, runs after the lock is released.
type commitFunc[T any] func(idea *models.BusinessIdea, value T) func()

// load runs one slot's fetch. The slot moves to Loading under the lock, the
// fetch runs unlocked, and the result is committed only if no Open or Close
// happened in between. A forced refetch that comes back empty keeps the
// content that was loaded before.
func load[T any](ctx context.Context, c *Controller, tab Tab, force bool,
	slotOf func(*slots) *Slot[T], fetch fetchFunc[T], isEmpty func(T) bool, commit commitFunc[T]) error {

	c.mu.Lock()
	if c.idea == nil {
		c.mu.Unlock()
		return ErrNoIdea
	}
	slot := slotOf(&c.slots)
	if !slot.activatable(force) {
		c.mu.Unlock()
		return nil
	}
	prevState, prevValue := slot.State, slot.Value
	slot.State = Loading
	slot.Err = nil
	epoch := c.epoch
	idea := c.idea
	lang := c.lang
	c.mu.Unlock()

	start := time.Now()
	value, err := fetch(ctx, idea, lang)
	metrics.SlotFetchDuration.WithLabelValues(string(tab)).Observe(time.Since(start).Seconds())

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		metrics.SlotFetches.WithLabelValues(string(tab), "stale").Inc()
		c.logger.Debug("dropping stale result", map[string]interface{}{
			"tab":    string(tab),
			"ideaId": idea.ID,
		})
		return ErrStaleResult
	}

	var after func()
	slot = slotOf(&c.slots)
	var zero T
	switch {
	case err != nil:
		slot.State = Failed
		slot.Value = zero
		slot.Err = err
		metrics.SlotFetches.WithLabelValues(string(tab), "failed").Inc()
		c.logger.Warn("tab fetch failed", map[string]interface{}{
			"tab":    string(tab),
			"ideaId": idea.ID,
			"error":  err.Error(),
		})
	case isEmpty(value) && force && prevState == Loaded:
		slot.State = Loaded
		slot.Value = prevValue
		metrics.SlotFetches.WithLabelValues(string(tab), "no_data").Inc()
		c.logger.Info("regeneration returned nothing, keeping loaded content", map[string]interface{}{
			"tab":    string(tab),
			"ideaId": idea.ID,
		})
	case isEmpty(value):
		slot.State = NoData
		slot.Value = zero
		metrics.SlotFetches.WithLabelValues(string(tab), "no_data").Inc()
	default:
		slot.State = Loaded
		slot.Value = value
		if commit != nil {
			after = commit(idea, value)
		}
		metrics.SlotFetches.WithLabelValues(string(tab), "loaded").Inc()
	}
	c.mu.Unlock()

	if after != nil {
		after()
	}
	return nil
}
