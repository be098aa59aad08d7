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

var (
	ErrNotOnRoster     = errors.New("scenario is not on the event roster")
	ErrAlreadyReserved = errors.New("scenario is already reserved")
	ErrAlreadyComplete = errors.New("scenario is already complete")
)

// RosterRepository is the reservation and completion engine for scenarios
// enrolled in an event. Every mutation is a single conditional statement;
// lease expiry is evaluated inside the WHERE clause at the moment of the
// write, so there is no background sweeper and no in-memory state to race.
type RosterRepository interface {
	AddScenario(ctx context.Context, eventID, scenarioID int64) (bool, error)
	AddSet(ctx context.Context, eventID, setID int64) (int64, error)
	AddAllRemaining(ctx context.Context, eventID int64) (int64, error)
	ListAvailable(ctx context.Context, eventID int64, limit int) ([]*models.EventScenario, error)
	List(ctx context.Context, eventID int64) ([]*models.EventScenario, error)
	Get(ctx context.Context, eventID, scenarioID int64) (*models.EventScenario, error)
	Checkout(ctx context.Context, eventID, scenarioID, userID int64) (*models.EventScenario, error)
	Complete(ctx context.Context, eventID, scenarioID int64) (*models.EventScenario, error)
	Counts(ctx context.Context, eventID int64) (completed int, total int, err error)
	TTL() time.Duration
}

type rosterRepository struct {
	db          *bun.DB
	checkoutTTL time.Duration
}

func NewRosterRepository(db *bun.DB, checkoutTTL time.Duration) RosterRepository {
	return &rosterRepository{db: db, checkoutTTL: checkoutTTL}
}

func (r *rosterRepository) TTL() time.Duration {
	return r.checkoutTTL
}

// AddScenario enrolls one scenario. Enrolling twice is a no-op, reported as
// added=false.
func (r *rosterRepository) AddScenario(ctx context.Context, eventID, scenarioID int64) (bool, error) {
	entry := &models.EventScenario{
		EventID:    eventID,
		ScenarioID: scenarioID,
		UpdatedAt:  time.Now(),
	}

	result, err := r.db.NewInsert().
		Model(entry).
		On("CONFLICT (event_id, scenario_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to enroll scenario: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

// AddSet enrolls every scenario of a set that is not already on the roster.
func (r *rosterRepository) AddSet(ctx context.Context, eventID, setID int64) (int64, error) {
	result, err := r.db.NewRaw(`
INSERT INTO events_scenarios (event_id, scenario_id)
SELECT ?, scenarios.id
FROM scenarios
WHERE scenarios.set_id = ?
    AND scenarios.id NOT IN (
        SELECT scenario_id
        FROM events_scenarios
        WHERE event_id = ?
    )`, eventID, setID, eventID).Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to enroll set: %w", err)
	}

	return result.RowsAffected()
}

// AddAllRemaining enrolls every catalog scenario not already on the roster.
func (r *rosterRepository) AddAllRemaining(ctx context.Context, eventID int64) (int64, error) {
	result, err := r.db.NewRaw(`
INSERT INTO events_scenarios (event_id, scenario_id)
SELECT ?, scenarios.id
FROM scenarios
WHERE scenarios.id NOT IN (
    SELECT scenario_id
    FROM events_scenarios
    WHERE event_id = ?
)`, eventID, eventID).Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to enroll remaining scenarios: %w", err)
	}

	return result.RowsAffected()
}

// ListAvailable returns up to limit roster entries that are neither complete
// nor under a live lease, drawn uniformly at random without replacement.
// This is a display listing, not a claim: concurrent callers may see
// overlapping picks.
func (r *rosterRepository) ListAvailable(ctx context.Context, eventID int64, limit int) ([]*models.EventScenario, error) {
	var entries []*models.EventScenario
	err := r.db.NewSelect().
		Model(&entries).
		Relation("Scenario").
		Relation("Scenario.Set").
		Where("es.event_id = ?", eventID).
		Where("es.complete = false").
		Where("es.checkout IS NULL OR es.checkout <= ?", time.Now().Add(-r.checkoutTTL)).
		OrderExpr("RANDOM()").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// List returns the full roster with scenarios, ordered by code.
func (r *rosterRepository) List(ctx context.Context, eventID int64) ([]*models.EventScenario, error) {
	var entries []*models.EventScenario
	err := r.db.NewSelect().
		Model(&entries).
		Relation("Scenario").
		Where("es.event_id = ?", eventID).
		OrderExpr("scenario.code ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *rosterRepository) Get(ctx context.Context, eventID, scenarioID int64) (*models.EventScenario, error) {
	entry := new(models.EventScenario)
	err := r.db.NewSelect().
		Model(entry).
		Where("event_id = ?", eventID).
		Where("scenario_id = ?", scenarioID).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotOnRoster
	}
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// Checkout places a lease on a roster entry for the configured TTL. The
// read-check and the write are one conditional UPDATE, so two actors racing
// for the same open entry cannot both win: the loser's statement matches
// zero rows and the current holder is reported back. A lease at or past its
// TTL counts as open regardless of whether it was ever released.
func (r *rosterRepository) Checkout(ctx context.Context, eventID, scenarioID, userID int64) (*models.EventScenario, error) {
	now := time.Now()
	result, err := r.db.NewUpdate().
		Model((*models.EventScenario)(nil)).
		Set("checkout = ?", now).
		Set("checkout_user_id = ?", userID).
		Set("updated_at = ?", now).
		Where("event_id = ?", eventID).
		Where("scenario_id = ?", scenarioID).
		Where("complete = false").
		Where("checkout IS NULL OR checkout <= ?", now.Add(-r.checkoutTTL)).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to checkout scenario: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows > 0 {
		checkout := now
		return &models.EventScenario{
			EventID:        eventID,
			ScenarioID:     scenarioID,
			Checkout:       &checkout,
			CheckoutUserID: &userID,
			UpdatedAt:      now,
		}, nil
	}

	// The conditional write lost. Read the entry once to say why.
	entry, err := r.Get(ctx, eventID, scenarioID)
	if err != nil {
		return nil, err
	}
	if entry.Complete {
		return entry, ErrAlreadyComplete
	}
	return entry, ErrAlreadyReserved
}

// Complete marks a roster entry done. Completion is monotonic and ungated:
// reservation is advisory, so no holder check is made, and completing an
// already-complete entry returns the prior state without error.
func (r *rosterRepository) Complete(ctx context.Context, eventID, scenarioID int64) (*models.EventScenario, error) {
	result, err := r.db.NewUpdate().
		Model((*models.EventScenario)(nil)).
		Set("complete = true").
		Set("updated_at = ?", time.Now()).
		Where("event_id = ?", eventID).
		Where("scenario_id = ?", scenarioID).
		Where("complete = false").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to complete scenario: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}

	entry, err := r.Get(ctx, eventID, scenarioID)
	if err != nil {
		return nil, err
	}
	if rows == 0 && entry.Complete {
		return entry, ErrAlreadyComplete
	}

	return entry, nil
}

// Counts returns completed and total roster sizes for progress calculation.
func (r *rosterRepository) Counts(ctx context.Context, eventID int64) (int, int, error) {
	total, err := r.db.NewSelect().
		Model((*models.EventScenario)(nil)).
		Where("event_id = ?", eventID).
		Count(ctx)
	if err != nil {
		return 0, 0, err
	}

	completed, err := r.db.NewSelect().
		Model((*models.EventScenario)(nil)).
		Where("event_id = ?", eventID).
		Where("complete = true").
		Count(ctx)
	if err != nil {
		return 0, 0, err
	}

	return completed, total, nil
}
