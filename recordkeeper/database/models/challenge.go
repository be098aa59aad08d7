package models

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Challenge attributes used to branch completion policy. Hunt challenges are
// drawn per actor and tracked to completion; Gauntlet challenges are drawn
// randomly and never counted in group denominators.
const (
	AttrHunt     = "Hunt"
	AttrGauntlet = "Gauntlet"
	AttrStandard = "Standard"
	AttrExpert   = "Expert"
)

type Challenge struct {
	bun.BaseModel `bun:"table:challenges,alias:ch"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Name        string    `bun:"name,notnull"`
	Code        string    `bun:"code,notnull,unique"`
	Description string    `bun:"description"`
	ScenarioID  *int64    `bun:"scenario_id"`
	Attributes  []string  `bun:"attributes,array"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`

	// Relations
	Scenario *Scenario `bun:"rel:belongs-to,join:scenario_id=id"`
}

// HasAttribute reports whether the challenge carries the given tag.
func (c *Challenge) HasAttribute(attr string) bool {
	for _, a := range c.Attributes {
		if a == attr {
			return true
		}
	}
	return false
}

// ChallengeCode derives a challenge code from the import batch prefix and the
// challenge's 1-based position within the batch.
func ChallengeCode(prefix string, ordinal int) string {
	return fmt.Sprintf("%s%02d", prefix, ordinal)
}
