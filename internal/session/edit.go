// internal/session/edit.go
package session

import (
	"context"

	"idea-lab/internal/finance"
	"idea-lab/internal/models"
)

// UpdateFinancials edits the loaded estimates in place. Edits live only
// for this session.
func (c *Controller) UpdateFinancials(fn func(*models.FinancialEstimates)) (models.FinancialEstimates, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.idea == nil {
		return models.FinancialEstimates{}, ErrNoIdea
	}
	if c.slots.financials.State != Loaded {
		return models.FinancialEstimates{}, ErrNotLoaded
	}
	fn(c.slots.financials.Value)
	return *c.slots.financials.Value, nil
}

func (c *Controller) SetLandedCost(lc models.LandedCost) error {
	if lc.Shipping < 0 || lc.Fees < 0 || lc.CustomsPercent < 0 || lc.VATPercent < 0 {
		return ErrInvalidInput
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.idea == nil {
		return ErrNoIdea
	}
	c.landedCost = lc
	return nil
}

func (c *Controller) LandedCost() models.LandedCost {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.landedCost
}

// Metrics recomputes ROI figures from the current estimates and landed cost.
func (c *Controller) Metrics() (finance.Metrics, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.idea == nil {
		return finance.Metrics{}, ErrNoIdea
	}
	if c.slots.financials.State != Loaded {
		return finance.Metrics{}, ErrNotLoaded
	}
	return finance.Calculate(*c.slots.financials.Value, c.landedCost), nil
}

// ToggleStep flips a roadmap step and persists the record. The write
// happens after the session lock is released.
func (c *Controller) ToggleStep(ctx context.Context, phase, step int) (int, error) {
	c.mu.Lock()
	if c.idea == nil {
		c.mu.Unlock()
		return 0, ErrNoIdea
	}
	if c.slots.roadmap.State != Loaded {
		c.mu.Unlock()
		return 0, ErrNotLoaded
	}
	rec := c.slots.roadmap.Value.Clone()
	if err := rec.Toggle(phase, step); err != nil {
		c.mu.Unlock()
		return 0, err
	}
	c.slots.roadmap.Value = rec
	save := c.queueRoadmapSave(ctx, c.idea, rec)
	c.mu.Unlock()

	save()
	return rec.Percent(), nil
}

// Progress is the roadmap completion percentage, 0 when no roadmap is loaded.
func (c *Controller) Progress() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.slots.roadmap.State != Loaded {
		return 0
	}
	return c.slots.roadmap.Value.Percent()
}

// Idea returns a copy of the open idea, or nil.
func (c *Controller) Idea() *models.BusinessIdea {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.idea == nil {
		return nil
	}
	cp := *c.idea
	return &cp
}

// PitchDeck returns the loaded deck, if any.
func (c *Controller) PitchDeck() (*models.PitchDeck, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.slots.pitch.State != Loaded {
		return nil, false
	}
	deck := *c.slots.pitch.Value
	return &deck, true
}
