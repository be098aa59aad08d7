package migration

import (
	"strconv"
	"time"
)

// Legacy document shapes. The previous bot kept its state in Mongo with
// string discord ids and free-form event names.

type MongoUser struct {
	DiscordID string `bson:"discordId"`
	Name      string `bson:"username"`
}

// MongoRosterEntry is one scenario row of a legacy event. The legacy bot
// stored checkout timestamps as unix millis and never cleared stale ones.
type MongoRosterEntry struct {
	EventName    string `bson:"eventName"`
	ScenarioCode string `bson:"scenarioCode"`
	Complete     bool   `bson:"complete"`
	CheckoutMs   int64  `bson:"checkout,omitempty"`
	CheckoutUser string `bson:"checkoutUser,omitempty"`
}

type MongoCompletion struct {
	EventName     string `bson:"eventName"`
	ChallengeCode string `bson:"challengeCode"`
	DiscordID     string `bson:"discordId"`
}

// ParseDiscordID converts the legacy string snowflake to int64. Legacy data
// contains a handful of malformed ids; callers skip those rows.
func ParseDiscordID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// CheckoutTime converts the legacy millisecond timestamp. Zero means no
// checkout was recorded.
func (e MongoRosterEntry) CheckoutTime() *time.Time {
	if e.CheckoutMs <= 0 {
		return nil
	}
	t := time.UnixMilli(e.CheckoutMs).UTC()
	return &t
}

type TableStats struct {
	TableName string `json:"table_name"`
	Processed int    `json:"processed"`
	Inserted  int    `json:"inserted"`
	Skipped   int    `json:"skipped"`
	Errors    int    `json:"errors"`
}

type MigrationStats struct {
	Tables    map[string]*TableStats `json:"tables"`
	StartTime time.Time              `json:"start_time"`
	EndTime   time.Time              `json:"end_time"`
}

func (s *MigrationStats) table(name string) *TableStats {
	if s.Tables == nil {
		s.Tables = make(map[string]*TableStats)
	}
	ts, ok := s.Tables[name]
	if !ok {
		ts = &TableStats{TableName: name}
		s.Tables[name] = ts
	}
	return ts
}
