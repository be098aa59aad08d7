package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erebor/recordkeeper/recordkeeper/database/models"
)

func TestCompleteReportsOnlyNewRecords(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewChallengeEventRepository(db)

	// One insert per actor; the affected-row count decides who is new.
	mock.ExpectExec(`INSERT INTO "challenges_events_users".*ON CONFLICT DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "challenges_events_users".*ON CONFLICT DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO "challenges_events_users".*ON CONFLICT DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	newly, err := repo.Complete(context.Background(), 5, []int64{11, 22, 33})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if len(newly) != 2 || newly[0] != 11 || newly[1] != 33 {
		t.Errorf("newly completed = %v, want [11 33]", newly)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestEnrollForEventSkipsExisting(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewChallengeEventRepository(db)

	mock.ExpectExec(`INSERT INTO challenges_events.*ON CONFLICT DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(`INSERT INTO challenges_events.*ON CONFLICT DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	enrolled, err := repo.EnrollForEvent(context.Background(), 7, time.Now())
	if err != nil {
		t.Fatalf("EnrollForEvent() error = %v", err)
	}
	if enrolled != 4 {
		t.Errorf("first enrollment = %d, want 4", enrolled)
	}

	enrolled, err = repo.EnrollForEvent(context.Background(), 7, time.Now())
	if err != nil {
		t.Fatalf("second EnrollForEvent() error = %v", err)
	}
	if enrolled != 0 {
		t.Errorf("re-run enrollment = %d, want 0", enrolled)
	}
}

func TestSampleIncompleteStaysWithinBounds(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewChallengeEventRepository(db)

	mock.ExpectQuery(`SELECT .* FROM "challenges".*ce\.active_date <= CURRENT_TIMESTAMP.*NOT IN .SELECT challenges_events_id FROM challenges_events_users.*'Hunt' = ANY.*LIMIT 2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "code"}).
			AddRow(int64(1), "No casualties", "PTM01"))

	challenges, err := repo.SampleIncomplete(context.Background(), 7, 2, models.AttrHunt)
	if err != nil {
		t.Fatalf("SampleIncomplete() error = %v", err)
	}
	if len(challenges) != 1 {
		t.Fatalf("got %d challenges, want 1", len(challenges))
	}
	if challenges[0].Code != "PTM01" {
		t.Errorf("Code = %q, want PTM01", challenges[0].Code)
	}
}

func TestListActiveKeepsConqueredChallenges(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewChallengeEventRepository(db)

	// No completion filter: conquered rows come back too. Gauntlet and
	// not-yet-live enrollments stay out.
	mock.ExpectQuery(`SELECT .* FROM "challenges".*ce\.active_date <= CURRENT_TIMESTAMP.*NOT .'Gauntlet' = ANY.ch\.attributes`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "code"}).
			AddRow(int64(1), "No casualties", "PTM01").
			AddRow(int64(2), "Speed run", "PTM02"))

	challenges, err := repo.ListActive(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListActive() error = %v", err)
	}
	if len(challenges) != 2 {
		t.Fatalf("got %d challenges, want 2", len(challenges))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
