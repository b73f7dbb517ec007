// internal/canvas/canvas.go

// Package canvas generates business model canvases and keeps the latest
// one per idea.
package canvas

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

var ErrNotFound = errors.New("CANVAS_NOT_FOUND")

// Generator produces a canvas; nil with a nil error means nothing was produced.
type Generator interface {
	GenerateCanvas(ctx context.Context, idea *models.BusinessIdea, lang string) (*models.BusinessCanvas, error)
}

type Service struct {
	gen    Generator
	store  storage.KVStore
	keys   cachekey.Builder
	logger logger.Logger
	now    func() time.Time
}

func NewService(gen Generator, store storage.KVStore, log logger.Logger) *Service {
	return &Service{
		gen:    gen,
		store:  store,
		keys:   cachekey.Canvas,
		logger: log.With(map[string]interface{}{"component": "canvas"}),
		now:    time.Now,
	}
}

// Generate creates a canvas and stores it as the idea's latest. A nil record
// with a nil error means the generator produced nothing. A failed write is
// logged and the record is still returned.
func (s *Service) Generate(ctx context.Context, idea *models.BusinessIdea, lang string) (*models.CanvasRecord, error) {
	if idea == nil {
		return nil, fmt.Errorf("canvas: idea is required")
	}
	c, err := s.gen.GenerateCanvas(ctx, idea, lang)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, nil
	}

	rec := &models.CanvasRecord{Idea: *idea, Canvas: *c, Timestamp: s.now().UTC()}
	key := s.keys.Key(idea)
	if err := storage.SetJSON(ctx, s.store, key, rec); err != nil {
		s.logger.Warn("canvas write failed", map[string]interface{}{
			"key":   key,
			"error": err,
		})
	}
	return rec, nil
}

// Latest returns the stored canvas for idea.
func (s *Service) Latest(ctx context.Context, idea *models.BusinessIdea) (*models.CanvasRecord, error) {
	var rec models.CanvasRecord
	key := s.keys.Key(idea)
	err := storage.GetJSON(ctx, s.store, key, &rec)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
