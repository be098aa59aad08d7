package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/erebor/recordkeeper/recordkeeper/database/models"
	lru "github.com/hashicorp/golang-lru"
	"github.com/uptrace/bun"
)

var ErrScenarioNotFound = errors.New("scenario not found")

const scenarioCacheSize = 512

type ScenarioRepository interface {
	GetByCode(ctx context.Context, code string) (*models.Scenario, error)
	GetByTitle(ctx context.Context, title string) (*models.Scenario, error)
	GetAll(ctx context.Context) ([]*models.Scenario, error)
	CreateIfAbsent(ctx context.Context, scenario *models.Scenario) (bool, error)
}

type scenarioRepository struct {
	db        *bun.DB
	codeCache *lru.Cache
}

func NewScenarioRepository(db *bun.DB) ScenarioRepository {
	// Scenarios are immutable after import, so a code lookup cache never
	// needs invalidation.
	cache, _ := lru.New(scenarioCacheSize)
	return &scenarioRepository{db: db, codeCache: cache}
}

func (r *scenarioRepository) GetByCode(ctx context.Context, code string) (*models.Scenario, error) {
	if cached, ok := r.codeCache.Get(code); ok {
		return cached.(*models.Scenario), nil
	}

	scenario := new(models.Scenario)
	err := r.db.NewSelect().
		Model(scenario).
		Relation("Set").
		Where("sc.code = ?", code).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScenarioNotFound
	}
	if err != nil {
		return nil, err
	}

	r.codeCache.Add(code, scenario)
	return scenario, nil
}

func (r *scenarioRepository) GetByTitle(ctx context.Context, title string) (*models.Scenario, error) {
	scenario := new(models.Scenario)
	err := r.db.NewSelect().
		Model(scenario).
		Where("title = ?", title).
		Limit(1).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScenarioNotFound
	}
	if err != nil {
		return nil, err
	}

	return scenario, nil
}

func (r *scenarioRepository) GetAll(ctx context.Context) ([]*models.Scenario, error) {
	var scenarios []*models.Scenario
	err := r.db.NewSelect().
		Model(&scenarios).
		Relation("Set").
		Order("sc.code ASC").
		Scan(ctx)

	return scenarios, err
}

// CreateIfAbsent inserts a scenario, deriving its code from set and number.
// Returns false without error when a scenario with that code already exists.
func (r *scenarioRepository) CreateIfAbsent(ctx context.Context, scenario *models.Scenario) (bool, error) {
	if scenario.Code == "" {
		scenario.Code = models.ScenarioCode(scenario.SetID, scenario.Number)
	}
	scenario.CreatedAt = time.Now()

	result, err := r.db.NewInsert().
		Model(scenario).
		On("CONFLICT (code) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to insert scenario: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}
