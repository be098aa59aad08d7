package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erebor/recordkeeper/recordkeeper/database/models"
	"github.com/erebor/recordkeeper/recordkeeper/database/repositories"
)

type stubRoster struct {
	repositories.RosterRepository

	completed int
	total     int
	err       error
}

func (s *stubRoster) Counts(context.Context, int64) (int, int, error) {
	return s.completed, s.total, s.err
}

func (s *stubRoster) TTL() time.Duration {
	return 2 * time.Hour
}

type stubChallengeEvents struct {
	repositories.ChallengeEventRepository

	enrolled        int
	completed       int
	completedByUser map[int64]int
	lastFilter      repositories.ChallengeFilter
}

func (s *stubChallengeEvents) CountEnrolled(_ context.Context, _ int64, f repositories.ChallengeFilter) (int, error) {
	s.lastFilter = f
	return s.enrolled, nil
}

func (s *stubChallengeEvents) CountCompleted(_ context.Context, _ int64, f repositories.ChallengeFilter) (int, error) {
	s.lastFilter = f
	return s.completed, nil
}

func (s *stubChallengeEvents) CountCompletedByUser(_ context.Context, _, userID int64, f repositories.ChallengeFilter) (int, error) {
	s.lastFilter = f
	return s.completedByUser[userID], nil
}

func TestScenarioProgress(t *testing.T) {
	tests := []struct {
		name        string
		completed   int
		total       int
		wantPercent float64
		wantErr     error
	}{
		{name: "three quarters", completed: 3, total: 4, wantPercent: 75.0},
		{name: "nothing done", completed: 0, total: 10, wantPercent: 0.0},
		{name: "all done", completed: 8, total: 8, wantPercent: 100.0},
		{name: "empty roster is no data", completed: 0, total: 0, wantErr: ErrNoProgressData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProgressService(&stubRoster{completed: tt.completed, total: tt.total}, nil)

			report, err := s.ScenarioProgress(context.Background(), 1)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ScenarioProgress() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ScenarioProgress() error = %v", err)
			}
			if report.Percent != tt.wantPercent {
				t.Errorf("Percent = %v, want %v", report.Percent, tt.wantPercent)
			}
			if report.Completed != tt.completed || report.Total != tt.total {
				t.Errorf("counts = (%d, %d), want (%d, %d)", report.Completed, report.Total, tt.completed, tt.total)
			}
		})
	}
}

func TestGroupChallengeProgressExcludesGauntlet(t *testing.T) {
	stub := &stubChallengeEvents{enrolled: 20, completed: 5}
	s := NewProgressService(nil, stub)

	report, err := s.GroupChallengeProgress(context.Background(), 1)
	if err != nil {
		t.Fatalf("GroupChallengeProgress() error = %v", err)
	}
	if report.Percent != 25.0 {
		t.Errorf("Percent = %v, want 25.0", report.Percent)
	}

	if !stub.lastFilter.OnlyActive {
		t.Error("expected the active-only filter")
	}
	if stub.lastFilter.ExcludeAttr != models.AttrGauntlet {
		t.Errorf("ExcludeAttr = %q, want %q", stub.lastFilter.ExcludeAttr, models.AttrGauntlet)
	}
}

func TestHuntProgressRequiresHuntAttr(t *testing.T) {
	stub := &stubChallengeEvents{enrolled: 4, completed: 1}
	s := NewProgressService(nil, stub)

	if _, err := s.HuntProgress(context.Background(), 1); err != nil {
		t.Fatalf("HuntProgress() error = %v", err)
	}
	if stub.lastFilter.RequireAttr != models.AttrHunt {
		t.Errorf("RequireAttr = %q, want %q", stub.lastFilter.RequireAttr, models.AttrHunt)
	}
}

func TestActorChallengeProgress(t *testing.T) {
	stub := &stubChallengeEvents{
		enrolled:        10,
		completedByUser: map[int64]int{42: 7},
	}
	s := NewProgressService(nil, stub)

	report, err := s.ActorChallengeProgress(context.Background(), 1, 42)
	if err != nil {
		t.Fatalf("ActorChallengeProgress() error = %v", err)
	}
	if report.Completed != 7 || report.Total != 10 {
		t.Errorf("counts = (%d, %d), want (7, 10)", report.Completed, report.Total)
	}

	report, err = s.ActorChallengeProgress(context.Background(), 1, 99)
	if err != nil {
		t.Fatalf("ActorChallengeProgress() error = %v", err)
	}
	if report.Completed != 0 {
		t.Errorf("unknown actor Completed = %d, want 0", report.Completed)
	}
}

func TestChallengeProgressEmptyDenominator(t *testing.T) {
	s := NewProgressService(nil, &stubChallengeEvents{})

	if _, err := s.ChallengeProgress(context.Background(), 1); !errors.Is(err, ErrNoProgressData) {
		t.Errorf("ChallengeProgress() error = %v, want ErrNoProgressData", err)
	}
}
