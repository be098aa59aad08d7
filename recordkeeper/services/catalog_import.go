package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/erebor/recordkeeper/recordkeeper/database/models"
	"github.com/erebor/recordkeeper/recordkeeper/database/repositories"
	"github.com/pelletier/go-toml/v2"
)

// SetDescriptor is the TOML shape for a set import batch.
type SetDescriptor struct {
	Name      string               `toml:"name"`
	Scenarios []ScenarioDescriptor `toml:"scenarios"`
}

type ScenarioDescriptor struct {
	Title  string `toml:"title"`
	Number int16  `toml:"number"`
}

// ChallengeBatch is the TOML shape for a challenge import batch. Codes are
// generated from the prefix and each challenge's position in the list, so
// list order is part of the batch contract.
type ChallengeBatch struct {
	CodePrefix string                `toml:"code_prefix"`
	Challenge  []ChallengeDescriptor `toml:"challenge"`
}

type ChallengeDescriptor struct {
	Name        string   `toml:"name"`
	Description string   `toml:"description"`
	Scenario    string   `toml:"scenario"`
	Attributes  []string `toml:"attributes"`
}

// ImportStats summarizes one import run.
type ImportStats struct {
	Added   int
	Skipped int
}

// ImportService loads catalog rows from TOML import descriptors. It feeds
// the engine's catalog; it never touches rosters or completion state.
type ImportService struct {
	sets       repositories.SetRepository
	scenarios  repositories.ScenarioRepository
	challenges repositories.ChallengeRepository
}

func NewImportService(
	sets repositories.SetRepository,
	scenarios repositories.ScenarioRepository,
	challenges repositories.ChallengeRepository,
) *ImportService {
	return &ImportService{
		sets:       sets,
		scenarios:  scenarios,
		challenges: challenges,
	}
}

func ParseSetDescriptor(data []byte) (*SetDescriptor, error) {
	var desc SetDescriptor
	if err := toml.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("failed to parse set descriptor: %w", err)
	}
	if desc.Name == "" {
		return nil, fmt.Errorf("set descriptor has no name")
	}
	return &desc, nil
}

func ParseChallengeBatch(data []byte) (*ChallengeBatch, error) {
	var batch ChallengeBatch
	if err := toml.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("failed to parse challenge batch: %w", err)
	}
	if batch.CodePrefix == "" {
		return nil, fmt.Errorf("challenge batch has no code_prefix")
	}
	return &batch, nil
}

// ImportSet upserts the set and inserts its scenarios. Scenarios already in
// the catalog are skipped, so re-running a batch is safe.
func (s *ImportService) ImportSet(ctx context.Context, desc *SetDescriptor) (*ImportStats, error) {
	set, err := s.sets.GetOrCreateByName(ctx, desc.Name)
	if err != nil {
		return nil, err
	}

	stats := &ImportStats{}
	for _, sd := range desc.Scenarios {
		added, err := s.scenarios.CreateIfAbsent(ctx, &models.Scenario{
			Title:  sd.Title,
			SetID:  set.ID,
			Number: sd.Number,
		})
		if err != nil {
			return stats, err
		}
		if added {
			stats.Added++
		} else {
			stats.Skipped++
		}
	}

	slog.Info("Set imported",
		slog.String("type", "sys"),
		slog.String("set", desc.Name),
		slog.Int("added", stats.Added),
		slog.Int("skipped", stats.Skipped))
	return stats, nil
}

// ImportChallenges inserts a challenge batch, generating codes from the
// batch prefix and list position. A scenario reference that does not resolve
// by exact title is fatal for the whole batch: a half-loaded batch would
// shift the ordinals of every later code.
func (s *ImportService) ImportChallenges(ctx context.Context, batch *ChallengeBatch) (*ImportStats, error) {
	stats := &ImportStats{}
	for i, cd := range batch.Challenge {
		code := models.ChallengeCode(batch.CodePrefix, i+1)

		var scenarioID *int64
		if cd.Scenario != "" {
			scenario, err := s.scenarios.GetByTitle(ctx, cd.Scenario)
			if err != nil {
				return stats, fmt.Errorf("challenge %q references unknown scenario %q: %w", cd.Name, cd.Scenario, err)
			}
			scenarioID = &scenario.ID
		}

		err := s.challenges.Create(ctx, &models.Challenge{
			Name:        cd.Name,
			Code:        code,
			Description: cd.Description,
			ScenarioID:  scenarioID,
			Attributes:  cd.Attributes,
		})
		if err != nil {
			return stats, err
		}
		stats.Added++
	}

	slog.Info("Challenges imported",
		slog.String("type", "sys"),
		slog.String("prefix", batch.CodePrefix),
		slog.Int("added", stats.Added))
	return stats, nil
}
