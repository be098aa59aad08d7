package migration

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/erebor/recordkeeper/recordkeeper/database/models"
	"github.com/uptrace/bun"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Migrator imports the legacy bot's Mongo state into Postgres. It reads
// either raw BSON dumps from a data directory or a live Mongo database.
// Every insert is conflict-tolerant, so re-running a migration is safe.
type Migrator struct {
	db      *bun.DB
	dataDir string
	stats   MigrationStats

	// Optional direct Mongo access
	mongoDB *mongo.Database

	// Legacy event names map onto archived events here; IDs are cached per
	// run because roster dumps repeat the event name on every row.
	eventIDs map[string]int64
}

func NewMigrator(db *bun.DB, dataDir string) *Migrator {
	return &Migrator{
		db:       db,
		dataDir:  dataDir,
		eventIDs: make(map[string]int64),
		stats: MigrationStats{
			Tables:    make(map[string]*TableStats),
			StartTime: time.Now(),
		},
	}
}

// ConnectMongo dials the legacy database for direct migration mode.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, nil
}

// UseMongo enables direct-from-Mongo migration mode.
func (m *Migrator) UseMongo(client *mongo.Client, dbName string) {
	if client != nil && dbName != "" {
		m.mongoDB = client.Database(dbName)
	}
}

func (m *Migrator) Stats() MigrationStats {
	return m.stats
}

// MigrateAll runs the full import in dependency order: users first, then
// event rosters, then challenge completions (which reference both).
func (m *Migrator) MigrateAll(ctx context.Context) error {
	slog.Info("Starting legacy migration",
		slog.String("type", "sys"),
		slog.String("data_dir", m.dataDir),
		slog.Bool("live_mongo", m.mongoDB != nil))

	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"users", m.MigrateUsers},
		{"rosters", m.MigrateRosters},
		{"completions", m.MigrateCompletions},
	}

	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			return fmt.Errorf("migration step %s: %w", step.name, err)
		}
	}

	m.stats.EndTime = time.Now()
	for _, ts := range m.stats.Tables {
		slog.Info("Migration table done",
			slog.String("type", "sys"),
			slog.String("table", ts.TableName),
			slog.Int("processed", ts.Processed),
			slog.Int("inserted", ts.Inserted),
			slog.Int("skipped", ts.Skipped),
			slog.Int("errors", ts.Errors))
	}
	return nil
}

func (m *Migrator) MigrateUsers(ctx context.Context) error {
	handle := func(mu MongoUser) error { return m.importUser(ctx, mu) }

	if m.mongoDB != nil {
		return migrateCollection(ctx, m.mongoDB.Collection("users"), handle)
	}
	return processBSONFile(filepath.Join(m.dataDir, "users.bson"), func(doc []byte) error {
		var mu MongoUser
		if err := bson.Unmarshal(doc, &mu); err != nil {
			return fmt.Errorf("failed to decode user document: %w", err)
		}
		return handle(mu)
	})
}

func (m *Migrator) MigrateRosters(ctx context.Context) error {
	handle := func(me MongoRosterEntry) error { return m.importRosterEntry(ctx, me) }

	if m.mongoDB != nil {
		return migrateCollection(ctx, m.mongoDB.Collection("rosters"), handle)
	}
	return processBSONFile(filepath.Join(m.dataDir, "rosters.bson"), func(doc []byte) error {
		var me MongoRosterEntry
		if err := bson.Unmarshal(doc, &me); err != nil {
			return fmt.Errorf("failed to decode roster document: %w", err)
		}
		return handle(me)
	})
}

func (m *Migrator) MigrateCompletions(ctx context.Context) error {
	handle := func(mc MongoCompletion) error { return m.importCompletion(ctx, mc) }

	if m.mongoDB != nil {
		return migrateCollection(ctx, m.mongoDB.Collection("completions"), handle)
	}
	return processBSONFile(filepath.Join(m.dataDir, "completions.bson"), func(doc []byte) error {
		var mc MongoCompletion
		if err := bson.Unmarshal(doc, &mc); err != nil {
			return fmt.Errorf("failed to decode completion document: %w", err)
		}
		return handle(mc)
	})
}

func (m *Migrator) importUser(ctx context.Context, mu MongoUser) error {
	ts := m.stats.table("users")
	ts.Processed++

	discordID, ok := ParseDiscordID(mu.DiscordID)
	if !ok {
		ts.Skipped++
		return nil
	}

	user := &models.User{DiscordID: discordID, Name: mu.Name}
	result, err := m.db.NewInsert().
		Model(user).
		On("CONFLICT (discord_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		ts.Errors++
		return fmt.Errorf("failed to insert user %d: %w", discordID, err)
	}
	if rows, _ := result.RowsAffected(); rows > 0 {
		ts.Inserted++
	} else {
		ts.Skipped++
	}
	return nil
}

func (m *Migrator) importRosterEntry(ctx context.Context, me MongoRosterEntry) error {
	ts := m.stats.table("events_scenarios")
	ts.Processed++

	eventID, err := m.ensureArchivedEvent(ctx, me.EventName)
	if err != nil {
		ts.Errors++
		return err
	}

	scenarioID, ok, err := m.scenarioIDByCode(ctx, me.ScenarioCode)
	if err != nil {
		ts.Errors++
		return err
	}
	if !ok {
		ts.Skipped++
		slog.Warn("Roster entry references unknown scenario",
			slog.String("type", "sys"),
			slog.String("event", me.EventName),
			slog.String("code", me.ScenarioCode))
		return nil
	}

	entry := &models.EventScenario{
		EventID:    eventID,
		ScenarioID: scenarioID,
		Complete:   me.Complete,
		Checkout:   me.CheckoutTime(),
		UpdatedAt:  time.Now(),
	}
	if me.CheckoutUser != "" {
		if userID, ok := ParseDiscordID(me.CheckoutUser); ok {
			if dbID, err := m.userIDByDiscordID(ctx, userID); err == nil {
				entry.CheckoutUserID = &dbID
			}
		}
	}

	result, err := m.db.NewInsert().
		Model(entry).
		On("CONFLICT (event_id, scenario_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		ts.Errors++
		return fmt.Errorf("failed to insert roster entry %s/%s: %w", me.EventName, me.ScenarioCode, err)
	}
	if rows, _ := result.RowsAffected(); rows > 0 {
		ts.Inserted++
	} else {
		ts.Skipped++
	}
	return nil
}

func (m *Migrator) importCompletion(ctx context.Context, mc MongoCompletion) error {
	ts := m.stats.table("challenges_events_users")
	ts.Processed++

	discordID, ok := ParseDiscordID(mc.DiscordID)
	if !ok {
		ts.Skipped++
		return nil
	}
	userID, err := m.userIDByDiscordID(ctx, discordID)
	if err != nil {
		ts.Skipped++
		return nil
	}

	eventID, err := m.ensureArchivedEvent(ctx, mc.EventName)
	if err != nil {
		ts.Errors++
		return err
	}

	// Legacy completions imply enrollment, so the enrollment row is created
	// on demand before the completion record.
	var challengeEventID int64
	err = m.db.NewRaw(`
WITH challenge AS (
    SELECT id FROM challenges WHERE code = ?
), enrolled AS (
    INSERT INTO challenges_events (event_id, challenge_id)
    SELECT ?, challenge.id FROM challenge
    ON CONFLICT (event_id, challenge_id) DO NOTHING
    RETURNING id
)
SELECT id FROM enrolled
UNION ALL
SELECT ce.id
FROM challenges_events ce
JOIN challenge ON challenge.id = ce.challenge_id
WHERE ce.event_id = ?
LIMIT 1`, mc.ChallengeCode, eventID, eventID).
		Scan(ctx, &challengeEventID)
	if errors.Is(err, sql.ErrNoRows) {
		ts.Skipped++
		slog.Warn("Completion references unknown challenge",
			slog.String("type", "sys"),
			slog.String("event", mc.EventName),
			slog.String("code", mc.ChallengeCode))
		return nil
	}
	if err != nil {
		ts.Errors++
		return fmt.Errorf("failed to enroll challenge %s: %w", mc.ChallengeCode, err)
	}

	record := &models.ChallengeCompletion{
		ChallengeEventID: challengeEventID,
		UserID:           userID,
		CreatedAt:        time.Now(),
	}
	result, err := m.db.NewInsert().
		Model(record).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	if err != nil {
		ts.Errors++
		return fmt.Errorf("failed to insert completion %s/%s: %w", mc.EventName, mc.ChallengeCode, err)
	}
	if rows, _ := result.RowsAffected(); rows > 0 {
		ts.Inserted++
	} else {
		ts.Skipped++
	}
	return nil
}

// ensureArchivedEvent resolves a legacy event name, creating the event as
// archived if it has never been seen. Migrated events never become active.
func (m *Migrator) ensureArchivedEvent(ctx context.Context, name string) (int64, error) {
	if id, ok := m.eventIDs[name]; ok {
		return id, nil
	}

	var id int64
	err := m.db.NewRaw(`
INSERT INTO events (name, active, archive)
VALUES (?, false, true)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id`, name).Scan(ctx, &id)
	if err != nil {
		return 0, fmt.Errorf("failed to ensure event %q: %w", name, err)
	}

	m.eventIDs[name] = id
	return id, nil
}

func (m *Migrator) scenarioIDByCode(ctx context.Context, code string) (int64, bool, error) {
	var id int64
	err := m.db.NewSelect().
		Model((*models.Scenario)(nil)).
		Column("id").
		Where("code = ?", code).
		Scan(ctx, &id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (m *Migrator) userIDByDiscordID(ctx context.Context, discordID int64) (int64, error) {
	var id int64
	err := m.db.NewSelect().
		Model((*models.User)(nil)).
		Column("id").
		Where("discord_id = ?", discordID).
		Scan(ctx, &id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// migrateCollection streams every document of a live Mongo collection
// through handle, decoding into T.
func migrateCollection[T any](ctx context.Context, col *mongo.Collection, handle func(T) error) error {
	cur, err := col.Find(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", col.Name(), err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc T
		if err := cur.Decode(&doc); err != nil {
			slog.Warn("Skipping undecodable document",
				slog.String("type", "sys"),
				slog.String("collection", col.Name()),
				slog.Any("error", err))
			continue
		}
		if err := handle(doc); err != nil {
			return err
		}
	}
	return cur.Err()
}

// processBSONFile reads a raw BSON dump document by document. Each document
// starts with a little-endian int32 of its own total length.
func processBSONFile(path string, processDoc func([]byte) error) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("Dump file missing, skipping",
				slog.String("type", "sys"),
				slog.String("path", path))
			return nil
		}
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	for {
		lengthBytes := make([]byte, 4)
		if _, err := io.ReadFull(reader, lengthBytes); err == io.EOF {
			break
		} else if err != nil {
			return fmt.Errorf("failed to read document length: %w", err)
		}

		length := int32(binary.LittleEndian.Uint32(lengthBytes))
		if length <= 4 {
			return fmt.Errorf("invalid document length: %d", length)
		}

		docBytes := make([]byte, length-4)
		if _, err := io.ReadFull(reader, docBytes); err != nil {
			return fmt.Errorf("failed to read document bytes: %w", err)
		}

		if err := processDoc(append(lengthBytes, docBytes...)); err != nil {
			return err
		}
	}
	return nil
}
