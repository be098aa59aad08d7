package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Event is a named, time-boxed community event. At most one event is active
// at a time; archiving is terminal.
type Event struct {
	bun.BaseModel `bun:"table:events,alias:ev"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull,unique"`
	Active    bool      `bun:"active,notnull,default:false"`
	Archive   bool      `bun:"archive,notnull,default:false"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
