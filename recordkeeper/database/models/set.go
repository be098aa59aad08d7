package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Set struct {
	bun.BaseModel `bun:"table:sets,alias:st"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull,unique"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
