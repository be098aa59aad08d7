package services

import (
	"context"
	"testing"

	"github.com/erebor/recordkeeper/recordkeeper/database/models"
	"github.com/erebor/recordkeeper/recordkeeper/database/repositories"
)

type stubScenarios struct {
	repositories.ScenarioRepository

	all []*models.Scenario
}

func (s *stubScenarios) GetAll(context.Context) ([]*models.Scenario, error) {
	return s.all, nil
}

func catalogFixture() []*models.Scenario {
	return []*models.Scenario{
		{ID: 1, Code: "0101", Title: "Passage Through Mirkwood"},
		{ID: 2, Code: "0102", Title: "Journey Along the Anduin"},
		{ID: 3, Code: "0103", Title: "Escape from Dol Guldur"},
		{ID: 4, Code: "0201", Title: "The Hunt for Gollum"},
	}
}

func TestSearchScenarios(t *testing.T) {
	s := NewSearchService(&stubScenarios{all: catalogFixture()})

	tests := []struct {
		name      string
		query     string
		wantFirst string
		wantNone  bool
	}{
		{name: "partial title", query: "anduin", wantFirst: "Journey Along the Anduin"},
		{name: "typo tolerant", query: "mirkwod", wantFirst: "Passage Through Mirkwood"},
		{name: "no match", query: "zzzzzz", wantNone: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := s.SearchScenarios(context.Background(), tt.query, 10)
			if err != nil {
				t.Fatalf("SearchScenarios() error = %v", err)
			}
			if tt.wantNone {
				if len(results) != 0 {
					t.Fatalf("got %d results, want none", len(results))
				}
				return
			}
			if len(results) == 0 {
				t.Fatal("got no results")
			}
			if results[0].Title != tt.wantFirst {
				t.Errorf("first result = %q, want %q", results[0].Title, tt.wantFirst)
			}
		})
	}
}

func TestSearchScenariosLimit(t *testing.T) {
	s := NewSearchService(&stubScenarios{all: catalogFixture()})

	results, err := s.SearchScenarios(context.Background(), "the", 2)
	if err != nil {
		t.Fatalf("SearchScenarios() error = %v", err)
	}
	if len(results) > 2 {
		t.Errorf("got %d results, want at most 2", len(results))
	}
}
