// internal/repository/profiles.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"idea-lab/internal/models"
)

// ProfileRepository keeps one profile row per user.
type ProfileRepository struct {
	db DBTX
}

func NewProfileRepository(db DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	p := models.UserProfile{UserID: userID}
	err := r.db.QueryRowContext(ctx, `
		SELECT name, skills, interests, budget, location, language, updated_at
		FROM user_profiles WHERE user_id = $1`, userID,
	).Scan(&p.Name, pq.Array(&p.Skills), pq.Array(&p.Interests), &p.Budget, &p.Location, &p.Language, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: profile %s", ErrNotFound, userID)
	}
	if err != nil {
		return nil, backendErr("get profile", err)
	}
	return &p, nil
}

// Upsert writes the profile and sets its UpdatedAt from the database.
func (r *ProfileRepository) Upsert(ctx context.Context, p *models.UserProfile) error {
	if p == nil || p.UserID == "" {
		return fmt.Errorf("%w: upsert profile: user id is required", ErrBackendFailed)
	}
	if p.Language == "" {
		p.Language = "en"
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO user_profiles (user_id, name, skills, interests, budget, location, language, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name,
			skills = EXCLUDED.skills,
			interests = EXCLUDED.interests,
			budget = EXCLUDED.budget,
			location = EXCLUDED.location,
			language = EXCLUDED.language,
			updated_at = NOW()
		RETURNING updated_at`,
		p.UserID, p.Name, pq.Array(nonNil(p.Skills)), pq.Array(nonNil(p.Interests)), p.Budget, p.Location, p.Language,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return backendErr("upsert profile", err)
	}
	return nil
}
