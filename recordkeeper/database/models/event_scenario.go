package models

import (
	"time"

	"github.com/uptrace/bun"
)

// EventScenario is a roster entry: one scenario enrolled in one event. It is
// the unit of reservation. A checkout is an advisory lease; it expires on its
// own after the configured TTL and is never swept by a background job.
type EventScenario struct {
	bun.BaseModel `bun:"table:events_scenarios,alias:es"`

	EventID        int64      `bun:"event_id,pk"`
	ScenarioID     int64      `bun:"scenario_id,pk"`
	Complete       bool       `bun:"complete,notnull,default:false"`
	Checkout       *time.Time `bun:"checkout"`
	CheckoutUserID *int64     `bun:"checkout_user_id"`
	UpdatedAt      time.Time  `bun:"updated_at,notnull,default:current_timestamp"`

	// Relations
	Scenario *Scenario `bun:"rel:belongs-to,join:scenario_id=id"`
}

// Leased reports whether the entry holds a live checkout at the given time.
func (es *EventScenario) Leased(now time.Time, ttl time.Duration) bool {
	if es.Complete || es.Checkout == nil {
		return false
	}
	return now.Sub(*es.Checkout) < ttl
}

// Available reports whether the entry can be listed or checked out: not
// complete and not under a live lease.
func (es *EventScenario) Available(now time.Time, ttl time.Duration) bool {
	return !es.Complete && !es.Leased(now, ttl)
}

// LeaseExpiresAt returns when the current checkout lapses. Zero time when no
// checkout is held.
func (es *EventScenario) LeaseExpiresAt(ttl time.Duration) time.Time {
	if es.Checkout == nil {
		return time.Time{}
	}
	return es.Checkout.Add(ttl)
}
