package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/erebor/recordkeeper/recordkeeper/database/models"
	"github.com/uptrace/bun"
)

type SetRepository interface {
	GetAll(ctx context.Context) ([]*models.Set, error)
	GetOrCreateByName(ctx context.Context, name string) (*models.Set, error)
}

type setRepository struct {
	db *bun.DB
}

func NewSetRepository(db *bun.DB) SetRepository {
	return &setRepository{db: db}
}

func (r *setRepository) GetAll(ctx context.Context) ([]*models.Set, error) {
	var sets []*models.Set
	err := r.db.NewSelect().
		Model(&sets).
		Order("id ASC").
		Scan(ctx)

	return sets, err
}

// GetOrCreateByName resolves a set by name, inserting it if absent. Import
// batches re-run safely against an existing catalog.
func (r *setRepository) GetOrCreateByName(ctx context.Context, name string) (*models.Set, error) {
	set := &models.Set{
		Name:      name,
		CreatedAt: time.Now(),
	}

	_, err := r.db.NewInsert().
		Model(set).
		On("CONFLICT (name) DO UPDATE").
		Set("name = EXCLUDED.name").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert set: %w", err)
	}

	return set, nil
}
