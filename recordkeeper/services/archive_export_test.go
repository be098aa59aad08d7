package services

import (
	"context"
	"testing"

	"github.com/erebor/recordkeeper/recordkeeper/database/models"
)

type snapshotRoster struct {
	stubRoster

	entries []*models.EventScenario
}

func (s *snapshotRoster) List(context.Context, int64) ([]*models.EventScenario, error) {
	return s.entries, nil
}

func TestBuildSnapshot(t *testing.T) {
	roster := &snapshotRoster{
		stubRoster: stubRoster{completed: 1, total: 2},
		entries: []*models.EventScenario{
			{ScenarioID: 1, Complete: true, Scenario: &models.Scenario{Code: "0101", Title: "Passage Through Mirkwood"}},
			{ScenarioID: 2, Scenario: &models.Scenario{Code: "0102", Title: "Journey Along the Anduin"}},
		},
	}
	progress := NewProgressService(roster, &stubChallengeEvents{enrolled: 4, completed: 2})
	exporter := NewArchiveExporter(roster, progress, nil)

	snapshot, err := exporter.BuildSnapshot(context.Background(), &models.Event{ID: 7, Name: "Winter Campaign"})
	if err != nil {
		t.Fatalf("BuildSnapshot() error = %v", err)
	}

	if snapshot.Event != "Winter Campaign" {
		t.Errorf("Event = %q", snapshot.Event)
	}
	if len(snapshot.Scenarios) != 2 {
		t.Fatalf("got %d scenarios, want 2", len(snapshot.Scenarios))
	}
	if !snapshot.Scenarios[0].Complete || snapshot.Scenarios[0].Code != "0101" {
		t.Errorf("unexpected first scenario: %+v", snapshot.Scenarios[0])
	}
	if snapshot.ScenarioPercent == nil || *snapshot.ScenarioPercent != 50.0 {
		t.Errorf("ScenarioPercent = %v, want 50.0", snapshot.ScenarioPercent)
	}
	if snapshot.ChallengePercent == nil || *snapshot.ChallengePercent != 50.0 {
		t.Errorf("ChallengePercent = %v, want 50.0", snapshot.ChallengePercent)
	}
}

func TestBuildSnapshotToleratesEmptyProgress(t *testing.T) {
	roster := &snapshotRoster{}
	progress := NewProgressService(roster, &stubChallengeEvents{})
	exporter := NewArchiveExporter(roster, progress, nil)

	snapshot, err := exporter.BuildSnapshot(context.Background(), &models.Event{ID: 7, Name: "Empty"})
	if err != nil {
		t.Fatalf("BuildSnapshot() error = %v", err)
	}
	if snapshot.ScenarioPercent != nil || snapshot.ChallengePercent != nil {
		t.Error("percentages should be omitted when there is no data")
	}
	if len(snapshot.Scenarios) != 0 {
		t.Errorf("got %d scenarios, want none", len(snapshot.Scenarios))
	}
}

func TestExportDisabledIsNoOp(t *testing.T) {
	roster := &snapshotRoster{}
	progress := NewProgressService(roster, &stubChallengeEvents{})
	exporter := NewArchiveExporter(roster, progress, nil)

	if err := exporter.Export(context.Background(), &models.Event{ID: 7, Name: "Quiet"}); err != nil {
		t.Errorf("Export() with no storage configured should be a no-op, got %v", err)
	}
}
