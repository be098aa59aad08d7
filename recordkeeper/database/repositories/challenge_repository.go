package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/erebor/recordkeeper/recordkeeper/database/models"
	"github.com/uptrace/bun"
)

var ErrChallengeNotFound = errors.New("challenge not found")

type ChallengeRepository interface {
	Create(ctx context.Context, challenge *models.Challenge) error
	GetByCode(ctx context.Context, code string) (*models.Challenge, error)
	SampleByAttribute(ctx context.Context, attr string, limit int) ([]*models.Challenge, error)
}

type challengeRepository struct {
	db *bun.DB
}

func NewChallengeRepository(db *bun.DB) ChallengeRepository {
	return &challengeRepository{db: db}
}

func (r *challengeRepository) Create(ctx context.Context, challenge *models.Challenge) error {
	challenge.CreatedAt = time.Now()
	_, err := r.db.NewInsert().Model(challenge).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert challenge: %w", err)
	}
	return nil
}

func (r *challengeRepository) GetByCode(ctx context.Context, code string) (*models.Challenge, error) {
	challenge := new(models.Challenge)
	err := r.db.NewSelect().
		Model(challenge).
		Where("code = ?", code).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrChallengeNotFound
	}
	if err != nil {
		return nil, err
	}

	return challenge, nil
}

// SampleByAttribute draws up to limit challenges tagged with attr, uniformly
// at random. Used for Gauntlet-style draws that are never tracked.
func (r *challengeRepository) SampleByAttribute(ctx context.Context, attr string, limit int) ([]*models.Challenge, error) {
	var challenges []*models.Challenge
	err := r.db.NewSelect().
		Model(&challenges).
		Where("? = ANY(attributes)", attr).
		OrderExpr("RANDOM()").
		Limit(limit).
		Scan(ctx)

	return challenges, err
}
