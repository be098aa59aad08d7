package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/erebor/recordkeeper/recordkeeper/database/models"
	"github.com/erebor/recordkeeper/recordkeeper/database/repositories"
)

// EventSnapshot is the JSON document written to object storage when an
// event is archived.
type EventSnapshot struct {
	Event            string             `json:"event"`
	ArchivedAt       time.Time          `json:"archived_at"`
	ScenarioPercent  *float64           `json:"scenario_percent,omitempty"`
	ChallengePercent *float64           `json:"challenge_percent,omitempty"`
	Scenarios        []ScenarioSnapshot `json:"scenarios"`
}

type ScenarioSnapshot struct {
	Code     string `json:"code"`
	Title    string `json:"title"`
	Complete bool   `json:"complete"`
}

// ArchiveExporter snapshots an archived event's final state to object
// storage. Export failures are reported but must never block archiving.
type ArchiveExporter struct {
	roster   repositories.RosterRepository
	progress *ProgressService
	spaces   *SpacesService
}

func NewArchiveExporter(roster repositories.RosterRepository, progress *ProgressService, spaces *SpacesService) *ArchiveExporter {
	return &ArchiveExporter{
		roster:   roster,
		progress: progress,
		spaces:   spaces,
	}
}

// BuildSnapshot assembles the snapshot document for an event.
func (e *ArchiveExporter) BuildSnapshot(ctx context.Context, event *models.Event) (*EventSnapshot, error) {
	entries, err := e.roster.List(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	snapshot := &EventSnapshot{
		Event:      event.Name,
		ArchivedAt: time.Now(),
		Scenarios:  make([]ScenarioSnapshot, 0, len(entries)),
	}

	for _, entry := range entries {
		ss := ScenarioSnapshot{Complete: entry.Complete}
		if entry.Scenario != nil {
			ss.Code = entry.Scenario.Code
			ss.Title = entry.Scenario.Title
		}
		snapshot.Scenarios = append(snapshot.Scenarios, ss)
	}

	if report, err := e.progress.ScenarioProgress(ctx, event.ID); err == nil {
		snapshot.ScenarioPercent = &report.Percent
	} else if !errors.Is(err, ErrNoProgressData) {
		return nil, err
	}

	if report, err := e.progress.ChallengeProgress(ctx, event.ID); err == nil {
		snapshot.ChallengePercent = &report.Percent
	} else if !errors.Is(err, ErrNoProgressData) {
		return nil, err
	}

	return snapshot, nil
}

// Export uploads the snapshot. A disabled spaces config is a no-op.
func (e *ArchiveExporter) Export(ctx context.Context, event *models.Event) error {
	if !e.spaces.Enabled() {
		return nil
	}

	snapshot, err := e.BuildSnapshot(ctx, event)
	if err != nil {
		return err
	}

	body, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}

	name := fmt.Sprintf("event-%d-%s.json", event.ID, snapshot.ArchivedAt.Format("20060102T150405"))
	if err := e.spaces.PutSnapshot(ctx, name, body); err != nil {
		return err
	}

	slog.Info("Event snapshot exported",
		slog.String("type", "sys"),
		slog.String("event", event.Name),
		slog.String("object", name))
	return nil
}
