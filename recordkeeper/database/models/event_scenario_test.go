package models

import (
	"testing"
	"time"
)

func TestEventScenarioLeasing(t *testing.T) {
	now := time.Now()
	ttl := 2 * time.Hour

	fresh := now.Add(-30 * time.Minute)
	stale := now.Add(-3 * time.Hour)
	atTTL := now.Add(-ttl)

	tests := []struct {
		name          string
		entry         EventScenario
		wantLeased    bool
		wantAvailable bool
	}{
		{
			name:          "never checked out",
			entry:         EventScenario{},
			wantLeased:    false,
			wantAvailable: true,
		},
		{
			name:          "live lease",
			entry:         EventScenario{Checkout: &fresh},
			wantLeased:    true,
			wantAvailable: false,
		},
		{
			name:          "expired lease reverts to open",
			entry:         EventScenario{Checkout: &stale},
			wantLeased:    false,
			wantAvailable: true,
		},
		{
			name:          "lease exactly at ttl is expired",
			entry:         EventScenario{Checkout: &atTTL},
			wantLeased:    false,
			wantAvailable: true,
		},
		{
			name:          "complete is never available",
			entry:         EventScenario{Complete: true},
			wantLeased:    false,
			wantAvailable: false,
		},
		{
			name:          "complete with live lease",
			entry:         EventScenario{Complete: true, Checkout: &fresh},
			wantLeased:    false,
			wantAvailable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.Leased(now, ttl); got != tt.wantLeased {
				t.Errorf("Leased() = %v, want %v", got, tt.wantLeased)
			}
			if got := tt.entry.Available(now, ttl); got != tt.wantAvailable {
				t.Errorf("Available() = %v, want %v", got, tt.wantAvailable)
			}
		})
	}
}

func TestLeaseExpiresAt(t *testing.T) {
	ttl := 2 * time.Hour
	checkout := time.Date(2025, 11, 1, 10, 0, 0, 0, time.UTC)

	entry := EventScenario{Checkout: &checkout}
	want := checkout.Add(ttl)
	if got := entry.LeaseExpiresAt(ttl); !got.Equal(want) {
		t.Errorf("LeaseExpiresAt() = %v, want %v", got, want)
	}

	var open EventScenario
	if got := open.LeaseExpiresAt(ttl); !got.IsZero() {
		t.Errorf("LeaseExpiresAt() on open entry = %v, want zero", got)
	}
}
