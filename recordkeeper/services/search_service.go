package services

import (
	"context"

	"github.com/erebor/recordkeeper/recordkeeper/database/models"
	"github.com/erebor/recordkeeper/recordkeeper/database/repositories"
	"github.com/sahilm/fuzzy"
)

const defaultSearchLimit = 10

// scenarioSource adapts a scenario slice for fuzzy matching on titles.
type scenarioSource []*models.Scenario

func (s scenarioSource) String(i int) string {
	return s[i].Title
}

func (s scenarioSource) Len() int {
	return len(s)
}

// SearchService finds catalog scenarios by approximate title. Exact-title
// resolution for imports lives in the scenario repository; this is the
// forgiving lookup for humans typing into chat.
type SearchService struct {
	scenarios repositories.ScenarioRepository
}

func NewSearchService(scenarios repositories.ScenarioRepository) *SearchService {
	return &SearchService{scenarios: scenarios}
}

// SearchScenarios returns up to limit scenarios ranked by title match
// quality. Zero matches is a valid result, not an error.
func (s *SearchService) SearchScenarios(ctx context.Context, query string, limit int) ([]*models.Scenario, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	all, err := s.scenarios.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	matches := fuzzy.FindFrom(query, scenarioSource(all))
	if len(matches) > limit {
		matches = matches[:limit]
	}

	results := make([]*models.Scenario, 0, len(matches))
	for _, m := range matches {
		results = append(results, all[m.Index])
	}

	return results, nil
}
