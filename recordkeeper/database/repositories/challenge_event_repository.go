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

var ErrChallengeNotEnrolled = errors.New("challenge is not enrolled in the event")

// ChallengeFilter narrows challenge-event queries. OnlyActive restricts to
// enrollments whose active date has passed; RequireAttr and ExcludeAttr
// filter on the challenge tag set.
type ChallengeFilter struct {
	OnlyActive  bool
	RequireAttr string
	ExcludeAttr string
}

// ChallengeEventRepository tracks challenge enrollment and per-actor
// completion records. Completion inserts rely on ON CONFLICT DO NOTHING and
// the reported row count, never on a read-then-write, so concurrent
// completions by the same actor stay race-safe.
type ChallengeEventRepository interface {
	EnrollForEvent(ctx context.Context, eventID int64, activeDate time.Time) (int64, error)
	FindByCode(ctx context.Context, eventID int64, code, requireAttr string) (*models.ChallengeEvent, error)
	Complete(ctx context.Context, challengeEventID int64, userIDs []int64) ([]int64, error)
	SampleIncomplete(ctx context.Context, eventID int64, limit int, attrs ...string) ([]*models.Challenge, error)
	ListIncompleteActive(ctx context.Context, eventID int64) ([]*models.Challenge, error)
	ListActive(ctx context.Context, eventID int64) ([]*models.Challenge, error)
	CountEnrolled(ctx context.Context, eventID int64, f ChallengeFilter) (int, error)
	CountCompleted(ctx context.Context, eventID int64, f ChallengeFilter) (int, error)
	CountCompletedByUser(ctx context.Context, eventID, userID int64, f ChallengeFilter) (int, error)
}

type challengeEventRepository struct {
	db *bun.DB
}

func NewChallengeEventRepository(db *bun.DB) ChallengeEventRepository {
	return &challengeEventRepository{db: db}
}

// EnrollForEvent enrolls every challenge whose scenario is already on the
// event roster. Re-running is harmless; existing enrollments are skipped.
func (r *challengeEventRepository) EnrollForEvent(ctx context.Context, eventID int64, activeDate time.Time) (int64, error) {
	result, err := r.db.NewRaw(`
INSERT INTO challenges_events (event_id, challenge_id, active_date)
SELECT ?, challenges.id, ?
FROM events_scenarios, challenges
WHERE events_scenarios.event_id = ?
    AND challenges.scenario_id = events_scenarios.scenario_id
ON CONFLICT DO NOTHING`, eventID, activeDate, eventID).Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to enroll challenges: %w", err)
	}

	return result.RowsAffected()
}

// FindByCode resolves a challenge code to its enrollment in the event. A
// non-empty requireAttr additionally demands the tag, so hunt completion
// cannot be pointed at an untracked challenge.
func (r *challengeEventRepository) FindByCode(ctx context.Context, eventID int64, code, requireAttr string) (*models.ChallengeEvent, error) {
	enrollment := new(models.ChallengeEvent)
	q := r.db.NewSelect().
		Model(enrollment).
		Relation("Challenge").
		Where("ce.event_id = ?", eventID).
		Where("challenge.code = ?", code)
	if requireAttr != "" {
		q = q.Where("? = ANY(challenge.attributes)", requireAttr)
	}

	err := q.Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrChallengeNotEnrolled
	}
	if err != nil {
		return nil, err
	}

	return enrollment, nil
}

// Complete records a completion for each actor and returns the subset for
// whom the record is new. Duplicate completions are absorbed by the unique
// pair constraint; the affected-row count per insert decides membership.
func (r *challengeEventRepository) Complete(ctx context.Context, challengeEventID int64, userIDs []int64) ([]int64, error) {
	newlyCompleted := make([]int64, 0, len(userIDs))

	for _, userID := range userIDs {
		record := &models.ChallengeCompletion{
			ChallengeEventID: challengeEventID,
			UserID:           userID,
			CreatedAt:        time.Now(),
		}

		result, err := r.db.NewInsert().
			Model(record).
			On("CONFLICT DO NOTHING").
			Exec(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to record completion: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return nil, err
		}
		if rows > 0 {
			newlyCompleted = append(newlyCompleted, userID)
		}
	}

	return newlyCompleted, nil
}

// SampleIncomplete draws up to limit enrolled challenges carrying all of the
// given tags that nobody has completed yet, uniformly at random.
func (r *challengeEventRepository) SampleIncomplete(ctx context.Context, eventID int64, limit int, attrs ...string) ([]*models.Challenge, error) {
	var challenges []*models.Challenge
	q := r.db.NewSelect().
		Model(&challenges).
		Join("JOIN challenges_events AS ce ON ce.challenge_id = ch.id").
		Where("ce.event_id = ?", eventID).
		Where("ce.active_date <= CURRENT_TIMESTAMP").
		Where("ce.id NOT IN (SELECT challenges_events_id FROM challenges_events_users)")
	for _, attr := range attrs {
		q = q.Where("? = ANY(ch.attributes)", attr)
	}

	err := q.OrderExpr("RANDOM()").Limit(limit).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return challenges, nil
}

// ListIncompleteActive returns the enrolled, already-active challenges with
// no completion record, joined to their scenarios for display grouping.
// Gauntlet challenges are untracked dares and stay out of the listing.
func (r *challengeEventRepository) ListIncompleteActive(ctx context.Context, eventID int64) ([]*models.Challenge, error) {
	var challenges []*models.Challenge
	err := r.db.NewSelect().
		Model(&challenges).
		Relation("Scenario").
		Join("JOIN challenges_events AS ce ON ce.challenge_id = ch.id").
		Where("ce.event_id = ?", eventID).
		Where("ce.active_date <= CURRENT_TIMESTAMP").
		Where("NOT (? = ANY(ch.attributes))", models.AttrGauntlet).
		Where("ce.id NOT IN (SELECT challenges_events_id FROM challenges_events_users)").
		Order("ch.code ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return challenges, nil
}

// ListActive returns every enrolled, already-active challenge whether or not
// it has been conquered, under the same Gauntlet exclusion as the tracked
// listing.
func (r *challengeEventRepository) ListActive(ctx context.Context, eventID int64) ([]*models.Challenge, error) {
	var challenges []*models.Challenge
	err := r.db.NewSelect().
		Model(&challenges).
		Relation("Scenario").
		Join("JOIN challenges_events AS ce ON ce.challenge_id = ch.id").
		Where("ce.event_id = ?", eventID).
		Where("ce.active_date <= CURRENT_TIMESTAMP").
		Where("NOT (? = ANY(ch.attributes))", models.AttrGauntlet).
		Order("ch.code ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return challenges, nil
}

func (r *challengeEventRepository) filtered(eventID int64, f ChallengeFilter) *bun.SelectQuery {
	q := r.db.NewSelect().
		Model((*models.ChallengeEvent)(nil)).
		Join("JOIN challenges AS ch ON ch.id = ce.challenge_id").
		Where("ce.event_id = ?", eventID)
	if f.OnlyActive {
		q = q.Where("ce.active_date <= CURRENT_TIMESTAMP")
	}
	if f.RequireAttr != "" {
		q = q.Where("? = ANY(ch.attributes)", f.RequireAttr)
	}
	if f.ExcludeAttr != "" {
		q = q.Where("NOT (? = ANY(ch.attributes))", f.ExcludeAttr)
	}
	return q
}

func (r *challengeEventRepository) CountEnrolled(ctx context.Context, eventID int64, f ChallengeFilter) (int, error) {
	return r.filtered(eventID, f).Count(ctx)
}

// CountCompleted counts enrolled challenges with at least one completion
// record, one per challenge no matter how many actors finished it.
func (r *challengeEventRepository) CountCompleted(ctx context.Context, eventID int64, f ChallengeFilter) (int, error) {
	var count int
	err := r.filtered(eventID, f).
		Join("JOIN challenges_events_users AS ceu ON ceu.challenges_events_id = ce.id").
		ColumnExpr("COUNT(DISTINCT ce.id)").
		Scan(ctx, &count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// CountCompletedByUser counts the actor's own completion records under the
// same filter, for per-actor progress against the event-wide denominator.
func (r *challengeEventRepository) CountCompletedByUser(ctx context.Context, eventID, userID int64, f ChallengeFilter) (int, error) {
	var count int
	err := r.filtered(eventID, f).
		Join("JOIN challenges_events_users AS ceu ON ceu.challenges_events_id = ce.id").
		Where("ceu.user_id = ?", userID).
		ColumnExpr("COUNT(DISTINCT ce.id)").
		Scan(ctx, &count)
	if err != nil {
		return 0, err
	}

	return count, nil
}
