package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAssignSets(t *testing.T) {
	entries := []catalogExport{
		{Title: "Passage Through Mirkwood", Product: "Core Set", Number: 1},
		{Title: "The Hunt for Gollum", Product: "The Hunt for Gollum", Number: 1},
		{Title: "The Battle of Five Armies", Product: "The Hobbit: On the Doorstep", Number: 3},
		{Title: "The Fords of Isen", Product: "The Voice of Isengard", Number: 1},
		{Title: "The Dunland Trap", Product: "The Dunland Trap", Number: 1},
		{Title: "The Massing at Osgiliath", Product: "17", Number: 1},
		{Title: "The Battle of Lake-town", Product: "23", Number: 1},
		{Title: "The Siege of Annuminas", Product: "First Age", Number: 1},
	}

	got := assignSets(entries)

	want := []CatalogScenario{
		{Title: "Passage Through Mirkwood", Set: "Core Set", Number: 1},
		{Title: "The Hunt for Gollum", Set: "Shadows of Mirkwood", Number: 1},
		{Title: "The Battle of Five Armies", Set: "The Hobbit: On the Doorstep", Number: 3},
		{Title: "The Fords of Isen", Set: "The Voice of Isengard", Number: 1},
		{Title: "The Dunland Trap", Set: "The Ring-maker", Number: 1},
		{Title: "The Massing at Osgiliath", Set: "Standalone Scenarios", Number: 1},
		{Title: "The Battle of Lake-town", Set: "Standalone Scenarios", Number: 2},
	}

	if len(got) != len(want) {
		t.Fatalf("got %d scenarios, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("scenario %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestAssignSetsDeluxeBoundary(t *testing.T) {
	// A pack following a later deluxe must land in the later cycle.
	entries := []catalogExport{
		{Title: "Into the Pit", Product: "Khazad-dûm", Number: 1},
		{Title: "The Redhorn Gate", Product: "The Redhorn Gate", Number: 1},
		{Title: "Peril in Pelargir", Product: "Heirs of Númenor", Number: 1},
		{Title: "The Steward's Fear", Product: "The Steward's Fear", Number: 1},
	}

	got := assignSets(entries)
	if got[1].Set != "Dwarrowdelf" {
		t.Errorf("pack after Khazad-dûm assigned to %q, want Dwarrowdelf", got[1].Set)
	}
	if got[3].Set != "Against the Shadow" {
		t.Errorf("pack after Heirs of Númenor assigned to %q, want Against the Shadow", got[3].Set)
	}
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"Title": "Passage Through Mirkwood", "Product": "Core Set", "Number": 1},
			{"Title": "Journey Along the Anduin", "Product": "Core Set", "Number": 2}
		]`))
	}))
	defer server.Close()

	f := NewCatalogFetcher(server.URL, nil, nil)
	scenarios, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if len(scenarios) != 2 {
		t.Fatalf("got %d scenarios, want 2", len(scenarios))
	}
	if scenarios[1].Title != "Journey Along the Anduin" || scenarios[1].Set != "Core Set" {
		t.Errorf("unexpected second scenario: %+v", scenarios[1])
	}
}

func TestFetchBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	f := NewCatalogFetcher(server.URL, nil, nil)
	if _, err := f.Fetch(context.Background()); err == nil {
		t.Fatal("expected an error for a non-200 response")
	}
}
