// internal/repository/ideas.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"idea-lab/internal/models"
)

// ListOptions filters List.
type ListOptions struct {
	SavedOnly bool
	Limit     int
}

// IdeaRepository stores ideas per user, keyed by (user_id, id).
type IdeaRepository struct {
	db DBTX
}

func NewIdeaRepository(db DBTX) *IdeaRepository {
	return &IdeaRepository{db: db}
}

const ideaColumns = `id, machine_name, business_title, description, price_range, source_platform,
	potential_revenue, industry, skill_requirements, operational_requirements,
	upvotes, is_upvoted, is_saved, created_at`

// Save upserts the idea for userID and marks it saved. The stored
// creation time is written back into idea.
func (r *IdeaRepository) Save(ctx context.Context, userID string, idea *models.BusinessIdea) error {
	if userID == "" || idea == nil || idea.BusinessTitle == "" {
		return fmt.Errorf("%w: save idea: user id and idea title are required", ErrBackendFailed)
	}
	idea.EnsureID()

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO business_ideas (user_id, id, machine_name, business_title, description, price_range,
			source_platform, potential_revenue, industry, skill_requirements, operational_requirements, is_saved)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, TRUE)
		ON CONFLICT (user_id, id) DO UPDATE SET
			machine_name = EXCLUDED.machine_name,
			business_title = EXCLUDED.business_title,
			description = EXCLUDED.description,
			price_range = EXCLUDED.price_range,
			source_platform = EXCLUDED.source_platform,
			potential_revenue = EXCLUDED.potential_revenue,
			industry = EXCLUDED.industry,
			skill_requirements = EXCLUDED.skill_requirements,
			operational_requirements = EXCLUDED.operational_requirements,
			is_saved = TRUE
		RETURNING created_at, upvotes, is_upvoted`,
		userID, idea.ID, idea.MachineName, idea.BusinessTitle, idea.Description, idea.PriceRange,
		string(idea.SourcePlatform), idea.PotentialRevenue, idea.Industry,
		pq.Array(nonNil(idea.SkillRequirements)), pq.Array(nonNil(idea.OperationalRequirements)),
	).Scan(&idea.CreatedAt, &idea.Upvotes, &idea.IsUpvoted)
	if err != nil {
		return backendErr("save idea", err)
	}
	idea.IsSaved = true
	return nil
}

// List returns the user's ideas, newest first.
func (r *IdeaRepository) List(ctx context.Context, userID string, opts ListOptions) ([]models.BusinessIdea, error) {
	query := `SELECT ` + ideaColumns + ` FROM business_ideas WHERE user_id = $1`
	if opts.SavedOnly {
		query += ` AND is_saved = TRUE`
	}
	query += ` ORDER BY created_at DESC`
	args := []interface{}{userID}
	if opts.Limit > 0 {
		query += ` LIMIT $2`
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, backendErr("list ideas", err)
	}
	defer rows.Close()

	var ideas []models.BusinessIdea
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, backendErr("scan idea", err)
		}
		ideas = append(ideas, idea)
	}
	if err := rows.Err(); err != nil {
		return nil, backendErr("list ideas", err)
	}
	return ideas, nil
}

func (r *IdeaRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM business_ideas WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return backendErr("delete idea", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return backendErr("delete idea", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: idea %s", ErrNotFound, id)
	}
	return nil
}

// Upvote toggles the user's upvote and returns the new count and flag.
func (r *IdeaRepository) Upvote(ctx context.Context, userID, id string) (int, bool, error) {
	var (
		upvotes int
		voted   bool
	)
	err := r.db.QueryRowContext(ctx, `
		UPDATE business_ideas SET
			is_upvoted = NOT is_upvoted,
			upvotes = CASE WHEN is_upvoted THEN GREATEST(upvotes - 1, 0) ELSE upvotes + 1 END
		WHERE user_id = $1 AND id = $2
		RETURNING upvotes, is_upvoted`, userID, id).Scan(&upvotes, &voted)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("%w: idea %s", ErrNotFound, id)
	}
	if err != nil {
		return 0, false, backendErr("upvote idea", err)
	}
	return upvotes, voted, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanIdea(s scanner) (models.BusinessIdea, error) {
	var (
		idea     models.BusinessIdea
		platform string
	)
	err := s.Scan(&idea.ID, &idea.MachineName, &idea.BusinessTitle, &idea.Description, &idea.PriceRange,
		&platform, &idea.PotentialRevenue, &idea.Industry,
		pq.Array(&idea.SkillRequirements), pq.Array(&idea.OperationalRequirements),
		&idea.Upvotes, &idea.IsUpvoted, &idea.IsSaved, &idea.CreatedAt)
	idea.SourcePlatform = models.SourcePlatform(platform)
	return idea, err
}
