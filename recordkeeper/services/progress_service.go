package services

import (
	"context"
	"errors"

	"github.com/erebor/recordkeeper/recordkeeper/database/models"
	"github.com/erebor/recordkeeper/recordkeeper/database/repositories"
)

// ErrNoProgressData means the denominator is empty. Zero enrolled items is
// "no data", never 0%.
var ErrNoProgressData = errors.New("no progress data for event")

// ProgressReport is one progress figure with its raw counts.
type ProgressReport struct {
	Completed int
	Total     int
	Percent   float64
}

// ProgressService derives live completion statistics from roster and
// challenge state. It holds no state of its own; every figure is computed
// fresh from the store.
type ProgressService struct {
	roster     repositories.RosterRepository
	challenges repositories.ChallengeEventRepository
}

func NewProgressService(roster repositories.RosterRepository, challenges repositories.ChallengeEventRepository) *ProgressService {
	return &ProgressService{roster: roster, challenges: challenges}
}

// ScenarioProgress is the share of roster scenarios marked complete.
func (s *ProgressService) ScenarioProgress(ctx context.Context, eventID int64) (ProgressReport, error) {
	completed, total, err := s.roster.Counts(ctx, eventID)
	if err != nil {
		return ProgressReport{}, err
	}

	return makeReport(completed, total)
}

// trackedFilter is the event-wide challenge denominator: enrolled, already
// active, and not Gauntlet-tagged. Gauntlet challenges are drawn randomly
// per actor and are not meant to be exhaustively tracked.
func trackedFilter() repositories.ChallengeFilter {
	return repositories.ChallengeFilter{
		OnlyActive:  true,
		ExcludeAttr: models.AttrGauntlet,
	}
}

// ChallengeProgress is the share of tracked challenges with at least one
// completion record.
func (s *ProgressService) ChallengeProgress(ctx context.Context, eventID int64) (ProgressReport, error) {
	return s.challengeProgress(ctx, eventID, trackedFilter())
}

// GroupChallengeProgress is group-wide completion: a challenge counts once
// somebody finished it. Individual progress is a different notion, see
// ActorChallengeProgress.
func (s *ProgressService) GroupChallengeProgress(ctx context.Context, eventID int64) (ProgressReport, error) {
	return s.challengeProgress(ctx, eventID, trackedFilter())
}

// HuntProgress is group-wide completion restricted to hunt challenges.
func (s *ProgressService) HuntProgress(ctx context.Context, eventID int64) (ProgressReport, error) {
	return s.challengeProgress(ctx, eventID, repositories.ChallengeFilter{
		OnlyActive:  true,
		RequireAttr: models.AttrHunt,
	})
}

func (s *ProgressService) challengeProgress(ctx context.Context, eventID int64, f repositories.ChallengeFilter) (ProgressReport, error) {
	total, err := s.challenges.CountEnrolled(ctx, eventID, f)
	if err != nil {
		return ProgressReport{}, err
	}

	completed, err := s.challenges.CountCompleted(ctx, eventID, f)
	if err != nil {
		return ProgressReport{}, err
	}

	return makeReport(completed, total)
}

// ActorChallengeProgress is one actor's completion count over the event-wide
// tracked denominator. Enrollment is event-scoped, the percentage is not.
func (s *ProgressService) ActorChallengeProgress(ctx context.Context, eventID, userID int64) (ProgressReport, error) {
	f := trackedFilter()

	total, err := s.challenges.CountEnrolled(ctx, eventID, f)
	if err != nil {
		return ProgressReport{}, err
	}

	completed, err := s.challenges.CountCompletedByUser(ctx, eventID, userID, f)
	if err != nil {
		return ProgressReport{}, err
	}

	return makeReport(completed, total)
}

func makeReport(completed, total int) (ProgressReport, error) {
	if total == 0 {
		return ProgressReport{}, ErrNoProgressData
	}

	return ProgressReport{
		Completed: completed,
		Total:     total,
		Percent:   float64(completed) / float64(total) * 100,
	}, nil
}
