package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erebor/recordkeeper/recordkeeper/database/models"
	"github.com/uptrace/bun"
)

var (
	ErrNoActiveEvent = errors.New("no active event")
	ErrEventExists   = errors.New("event already exists")
	ErrEventArchived = errors.New("event is archived")
	ErrEventNotFound = errors.New("event not found")
)

type EventRepository interface {
	Create(ctx context.Context, name string) (*models.Event, error)
	GetActive(ctx context.Context) (*models.Event, error)
	FindInactive(ctx context.Context) ([]*models.Event, error)
	Activate(ctx context.Context, eventID int64) error
	Archive(ctx context.Context, eventID int64) error
}

type eventRepository struct {
	db *bun.DB
}

func NewEventRepository(db *bun.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, name string) (*models.Event, error) {
	event := &models.Event{
		Name:      name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	_, err := r.db.NewInsert().Model(event).Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEventExists
		}
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return event, nil
}

func (r *eventRepository) GetActive(ctx context.Context) (*models.Event, error) {
	event := new(models.Event)
	err := r.db.NewSelect().
		Model(event).
		Where("active = true").
		Limit(1).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoActiveEvent
	}
	if err != nil {
		return nil, err
	}

	return event, nil
}

func (r *eventRepository) FindInactive(ctx context.Context) ([]*models.Event, error) {
	var events []*models.Event
	err := r.db.NewSelect().
		Model(&events).
		Where("active = false").
		Where("archive = false").
		Order("created_at ASC").
		Scan(ctx)

	return events, err
}

// Activate makes the given event the single active one. The previous active
// row is cleared in the same transaction so the one-active invariant holds
// under concurrent activations.
func (r *eventRepository) Activate(ctx context.Context, eventID int64) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewUpdate().
			Model((*models.Event)(nil)).
			Set("active = false").
			Set("updated_at = ?", time.Now()).
			Where("active = true").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to clear active event: %w", err)
		}

		result, err := tx.NewUpdate().
			Model((*models.Event)(nil)).
			Set("active = true").
			Set("updated_at = ?", time.Now()).
			Where("id = ?", eventID).
			Where("archive = false").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to activate event: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			if exists, _ := tx.NewSelect().Model((*models.Event)(nil)).Where("id = ?", eventID).Exists(ctx); exists {
				return ErrEventArchived
			}
			return ErrEventNotFound
		}

		return nil
	})
}

// Archive retires an event for good. Clears the active flag so an archived
// event can never be the active one.
func (r *eventRepository) Archive(ctx context.Context, eventID int64) error {
	result, err := r.db.NewUpdate().
		Model((*models.Event)(nil)).
		Set("active = false").
		Set("archive = true").
		Set("updated_at = ?", time.Now()).
		Where("id = ?", eventID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to archive event: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrEventNotFound
	}

	return nil
}

// isUniqueViolation matches Postgres error 23505 regardless of driver wrapping.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
