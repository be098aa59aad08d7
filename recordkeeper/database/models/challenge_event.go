package models

import (
	"time"

	"github.com/uptrace/bun"
)

// ChallengeEvent enrolls a challenge into an event. The challenge only counts
// toward progress once ActiveDate has passed, which lets organizers stage
// challenge waves inside a running event.
type ChallengeEvent struct {
	bun.BaseModel `bun:"table:challenges_events,alias:ce"`

	ID          int64     `bun:"id,pk,autoincrement"`
	EventID     int64     `bun:"event_id,notnull"`
	ChallengeID int64     `bun:"challenge_id,notnull"`
	ActiveDate  time.Time `bun:"active_date,notnull,default:current_timestamp"`

	// Relations
	Challenge *Challenge `bun:"rel:belongs-to,join:challenge_id=id"`
}

// ChallengeCompletion records that one actor finished one enrolled challenge.
// The (challenge event, user) pair is unique; presence is the completion.
type ChallengeCompletion struct {
	bun.BaseModel `bun:"table:challenges_events_users,alias:ceu"`

	ChallengeEventID int64     `bun:"challenges_events_id,pk"`
	UserID           int64     `bun:"user_id,pk"`
	CreatedAt        time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
