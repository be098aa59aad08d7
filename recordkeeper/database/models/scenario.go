package models

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

type Scenario struct {
	bun.BaseModel `bun:"table:scenarios,alias:sc"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Title     string    `bun:"title,notnull"`
	Code      string    `bun:"code,notnull,unique"`
	SetID     int64     `bun:"set_id,notnull"`
	Number    int16     `bun:"number"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`

	// Relations
	Set *Set `bun:"rel:belongs-to,join:set_id=id"`
}

// ScenarioCode derives the stable human-facing code for a scenario from its
// set and sequence number. Set 7, scenario 3 yields "0703".
func ScenarioCode(setID int64, number int16) string {
	return fmt.Sprintf("%02d%02d", setID, number)
}
