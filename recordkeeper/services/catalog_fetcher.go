package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/erebor/recordkeeper/recordkeeper/database/models"
	"github.com/erebor/recordkeeper/recordkeeper/database/repositories"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	defaultCatalogURL   = "http://hallofbeorn.com/Export/Scenarios"
	fetcherMaxInflight  = 8
	fetcherFetchTimeout = 30 * time.Second
)

// catalogExport mirrors the third-party catalog's JSON export.
type catalogExport struct {
	Title   string `json:"Title"`
	Product string `json:"Product"`
	Number  int16  `json:"Number"`
}

// CatalogScenario is a catalog entry resolved to its owning set.
type CatalogScenario struct {
	Title  string
	Set    string
	Number int16
}

// CatalogFetcher syncs the scenario catalog from the third-party export.
// The export lists products, not sets; assignSets reconstructs set
// membership from the product sequence.
type CatalogFetcher struct {
	url       string
	client    *http.Client
	sets      repositories.SetRepository
	scenarios repositories.ScenarioRepository
}

func NewCatalogFetcher(url string, sets repositories.SetRepository, scenarios repositories.ScenarioRepository) *CatalogFetcher {
	if url == "" {
		url = defaultCatalogURL
	}
	return &CatalogFetcher{
		url:       url,
		client:    &http.Client{Timeout: fetcherFetchTimeout},
		sets:      sets,
		scenarios: scenarios,
	}
}

// deluxeCycles maps each deluxe box to the adventure-pack cycle it opens.
// Packs in the export carry the deluxe's product name until the next deluxe
// appears.
var deluxeCycles = map[string]string{
	"Core Set":               "Shadows of Mirkwood",
	"Khazad-dûm":             "Dwarrowdelf",
	"Heirs of Númenor":       "Against the Shadow",
	"The Voice of Isengard":  "The Ring-maker",
	"The Lost Realm":         "Angmar Awakened",
	"The Grey Havens":        "Dream-chaser",
	"The Sands of Harad":     "Haradrim",
	"The Wilds of Rhovanion": "Ered Mithrin",
	"A Shadow in the East":   "Vengeance of Mordor",
}

// sagaProducts are boxes whose scenarios stay under the box's own name.
var sagaProducts = map[string]bool{
	"The Hobbit: Over Hill and Under Hill": true,
	"The Hobbit: On the Doorstep":          true,
	"The Black Riders":                     true,
	"The Road Darkens":                     true,
	"The Treason of Saruman":               true,
	"The Land of Shadow":                   true,
	"The Flame of the West":                true,
	"The Mountain of Fire":                 true,
	"Two-Player Limited Edition Starter":   true,
}

const standaloneSet = "Standalone Scenarios"

// assignSets resolves each export entry to a set name. Numeric products are
// standalone scenarios and get renumbered sequentially because the export
// reuses numbers between them.
func assignSets(entries []catalogExport) []CatalogScenario {
	var lastDeluxe string
	var standaloneNumber int16

	scenarios := make([]CatalogScenario, 0, len(entries))
	for _, e := range entries {
		if e.Product == "First Age" {
			continue
		}

		if _, isDeluxe := deluxeCycles[e.Product]; isDeluxe && e.Product != lastDeluxe {
			lastDeluxe = e.Product
		}

		var set string
		number := e.Number
		switch {
		case isNumeric(e.Product):
			standaloneNumber++
			set = standaloneSet
			number = standaloneNumber
		case sagaProducts[e.Product]:
			set = e.Product
		case e.Product != lastDeluxe:
			set = deluxeCycles[lastDeluxe]
		default:
			set = lastDeluxe
		}

		scenarios = append(scenarios, CatalogScenario{
			Title:  e.Title,
			Set:    set,
			Number: number,
		})
	}

	return scenarios
}

func isNumeric(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

// Fetch downloads and resolves the full catalog.
func (f *CatalogFetcher) Fetch(ctx context.Context) ([]CatalogScenario, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog export returned status %d", resp.StatusCode)
	}

	var entries []catalogExport
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode catalog export: %w", err)
	}

	return assignSets(entries), nil
}

// Sync fetches the catalog and upserts it. Set rows are resolved serially
// (their IDs feed scenario codes); scenario inserts run concurrently under a
// small in-flight bound.
func (f *CatalogFetcher) Sync(ctx context.Context) (int, error) {
	scenarios, err := f.Fetch(ctx)
	if err != nil {
		return 0, err
	}

	setIDs := make(map[string]int64)
	for _, sc := range scenarios {
		if _, ok := setIDs[sc.Set]; ok {
			continue
		}
		set, err := f.sets.GetOrCreateByName(ctx, sc.Set)
		if err != nil {
			return 0, err
		}
		setIDs[sc.Set] = set.ID
	}

	var added atomic.Int64
	sem := semaphore.NewWeighted(fetcherMaxInflight)
	g, gctx := errgroup.WithContext(ctx)

	for _, sc := range scenarios {
		sc := sc
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)

			inserted, err := f.scenarios.CreateIfAbsent(gctx, &models.Scenario{
				Title:  sc.Title,
				SetID:  setIDs[sc.Set],
				Number: sc.Number,
			})
			if err != nil {
				return err
			}
			if inserted {
				added.Add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return int(added.Load()), err
	}

	slog.Info("Catalog synced",
		slog.String("type", "sys"),
		slog.Int("fetched", len(scenarios)),
		slog.Int64("added", added.Load()))
	return int(added.Load()), nil
}
