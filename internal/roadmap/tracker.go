// internal/roadmap/tracker.go

// Package roadmap persists generated roadmaps together with per-step
// completion flags.
package roadmap

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"idea-lab/internal/cachekey"
	"idea-lab/internal/common/logger"
	"idea-lab/internal/common/metrics"
	"idea-lab/internal/models"
	"idea-lab/internal/storage"
)

var ErrStepOutOfRange = errors.New("STEP_OUT_OF_RANGE")

// Progress maps "phaseIndex-stepIndex" to completion. Only true entries are kept.
type Progress map[string]bool

// StepKey formats the progress key for a step.
func StepKey(phase, step int) string {
	return strconv.Itoa(phase) + "-" + strconv.Itoa(step)
}

// Toggle flips one step. Toggling twice restores the original map.
func (p Progress) Toggle(phase, step int) {
	k := StepKey(phase, step)
	if p[k] {
		delete(p, k)
		return
	}
	p[k] = true
}

// Completed counts true entries.
func (p Progress) Completed() int {
	n := 0
	for _, done := range p {
		if done {
			n++
		}
	}
	return n
}

// ParseStepKey is the inverse of StepKey.
func ParseStepKey(k string) (phase, step int, ok bool) {
	ps, ss, found := strings.Cut(k, "-")
	if !found {
		return 0, 0, false
	}
	phase, err1 := strconv.Atoi(ps)
	step, err2 := strconv.Atoi(ss)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return phase, step, true
}

// Retain keeps the completed steps that still exist in rm.
func (p Progress) Retain(rm models.Roadmap) Progress {
	out := Progress{}
	for k, done := range p {
		if phase, step, ok := ParseStepKey(k); ok && done && rm.HasStep(phase, step) {
			out[k] = true
		}
	}
	return out
}

func (p Progress) Clone() Progress {
	out := make(Progress, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Record is the persisted {roadmap, progress} pair.
type Record struct {
	Roadmap  models.Roadmap `json:"roadmap"`
	Progress Progress       `json:"progress"`
}

// Percent is round(100 * completed / total), or 0 for a roadmap without steps.
func (r *Record) Percent() int {
	total := r.Roadmap.TotalSteps()
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(r.Progress.Completed()) / float64(total)))
}

func (r *Record) Clone() *Record {
	return &Record{Roadmap: r.Roadmap, Progress: r.Progress.Clone()}
}

// Toggle flips one step in place.
func (r *Record) Toggle(phase, step int) error {
	if !r.Roadmap.HasStep(phase, step) {
		return fmt.Errorf("%w: %s", ErrStepOutOfRange, StepKey(phase, step))
	}
	if r.Progress == nil {
		r.Progress = Progress{}
	}
	r.Progress.Toggle(phase, step)
	return nil
}

// Tracker reads and writes Records. Storage failures are logged and never
// returned; a failed read looks like a miss.
type Tracker struct {
	store  storage.KVStore
	keys   cachekey.Builder
	logger logger.Logger
}

func NewTracker(store storage.KVStore, log logger.Logger) *Tracker {
	return &Tracker{
		store:  store,
		keys:   cachekey.Roadmap,
		logger: log.With(map[string]interface{}{"component": "roadmap_tracker"}),
	}
}

// Key is the storage key for idea's record.
func (t *Tracker) Key(idea *models.BusinessIdea) string {
	return t.keys.Key(idea)
}

// Load hydrates the record for idea. The bool is false on a miss, a read
// failure or a stored record without phases.
func (t *Tracker) Load(ctx context.Context, idea *models.BusinessIdea) (*Record, bool) {
	key := t.Key(idea)
	var rec Record
	err := storage.GetJSON(ctx, t.store, key, &rec)
	switch {
	case err == nil && len(rec.Roadmap) == 0:
		metrics.RoadmapCacheLookups.WithLabelValues("miss").Inc()
	case err == nil:
		if rec.Progress == nil {
			rec.Progress = Progress{}
		}
		metrics.RoadmapCacheLookups.WithLabelValues("hit").Inc()
		return &rec, true
	case errors.Is(err, storage.ErrNotFound):
		metrics.RoadmapCacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.RoadmapCacheLookups.WithLabelValues("error").Inc()
		t.logger.Warn("roadmap cache read failed, regenerating", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
	return nil, false
}

// Start persists a freshly generated roadmap with the given progress (nil for none).
func (t *Tracker) Start(ctx context.Context, idea *models.BusinessIdea, rm models.Roadmap, progress Progress) *Record {
	if progress == nil {
		progress = Progress{}
	}
	rec := &Record{Roadmap: rm, Progress: progress}
	t.Save(ctx, idea, rec)
	return rec
}

// ToggleStep flips one step of rec and writes the whole record, replacing
// whatever was stored for the idea.
func (t *Tracker) ToggleStep(ctx context.Context, idea *models.BusinessIdea, rec *Record, phase, step int) error {
	if err := rec.Toggle(phase, step); err != nil {
		return err
	}
	t.Save(ctx, idea, rec)
	return nil
}

// Save overwrites the stored record for idea. Failures are logged.
func (t *Tracker) Save(ctx context.Context, idea *models.BusinessIdea, rec *Record) {
	key := t.Key(idea)
	if err := storage.SetJSON(ctx, t.store, key, rec); err != nil {
		t.logger.Warn("roadmap cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}
