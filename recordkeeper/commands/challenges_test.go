package commands

import (
	"strings"
	"testing"

	"github.com/erebor/recordkeeper/recordkeeper/database/models"
)

func TestGroupByScenario(t *testing.T) {
	mirkwood := &models.Scenario{Code: "0101", Title: "Passage Through Mirkwood"}
	anduin := &models.Scenario{Code: "0102", Title: "Journey Along the Anduin"}

	challenges := []*models.Challenge{
		{Code: "PTM01", Name: "No casualties", Scenario: mirkwood},
		{Code: "PTM02", Name: "Speed run", Scenario: mirkwood},
		{Code: "JAA01", Name: "No ranged attacks", Scenario: anduin},
		{Code: "GEN01", Name: "Anywhere you like"},
	}

	lines := groupByScenario(challenges)

	joined := strings.Join(lines, "\n")
	// One header per scenario, not per challenge.
	if strings.Count(joined, "Passage Through Mirkwood") != 1 {
		t.Errorf("expected exactly one Mirkwood header:\n%s", joined)
	}
	if strings.Count(joined, "Journey Along the Anduin") != 1 {
		t.Errorf("expected exactly one Anduin header:\n%s", joined)
	}

	// Scenario-less challenges land at the end under General.
	last := lines[len(lines)-1]
	if !strings.Contains(last, "GEN01") {
		t.Errorf("scenario-less challenge should be last, got %q", last)
	}
	if !strings.Contains(lines[len(lines)-2], "General") {
		t.Errorf("expected a General header before orphans, got %q", lines[len(lines)-2])
	}

	// Challenges stay under their scenario's header.
	mirkwoodIdx := indexOf(lines, "__0101 Passage Through Mirkwood__")
	anduinIdx := indexOf(lines, "__0102 Journey Along the Anduin__")
	if mirkwoodIdx == -1 || anduinIdx == -1 {
		t.Fatalf("missing headers:\n%s", joined)
	}
	if !(mirkwoodIdx < indexOfContains(lines, "PTM01") && indexOfContains(lines, "PTM01") < anduinIdx) {
		t.Errorf("PTM01 should sit between the two headers:\n%s", joined)
	}
}

func indexOf(lines []string, want string) int {
	for i, l := range lines {
		if l == want {
			return i
		}
	}
	return -1
}

func indexOfContains(lines []string, sub string) int {
	for i, l := range lines {
		if strings.Contains(l, sub) {
			return i
		}
	}
	return -1
}
