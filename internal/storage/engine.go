// Package storage persists inventory documents as pretty-printed JSON files
// under a configurable storage root:
//
//	<root>/
//	  settings.json
//	  categories.json
//	  inventory.json
//	  analytics.json
//	  sessions_list.json
//	  sessions/session_<id>.json
//	  exports/
//
// The settings file is additionally mirrored to the default root so the
// configured storage path can be discovered on the next start.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/NepaliUtsab/blckpinkinventory/internal/inventory"
	"github.com/NepaliUtsab/blckpinkinventory/internal/model"
)

const (
	settingsName     = "settings.json"
	categoriesName   = "categories.json"
	inventoryName    = "inventory.json"
	analyticsName    = "analytics.json"
	sessionsListName = "sessions_list.json"
	sessionsDirName  = "sessions"
	exportsDirName   = "exports"
)

// Engine is the filesystem implementation of inventory.Store. It holds no
// business state, only the resolved roots.
type Engine struct {
	defaultRoot string
	root        string
	logger      inventory.Logger
}

var _ inventory.Store = (*Engine)(nil)

// NewEngine creates an Engine. It reads the settings mirror under defaultRoot
// to discover a configured storage root and ensures the root's directory
// layout exists. If the configured root cannot be created the engine falls
// back to the default root and resets the persisted settings, so the
// application always starts.
func NewEngine(defaultRoot string, logger inventory.Logger) (*Engine, error) {
	e := &Engine{defaultRoot: defaultRoot, root: defaultRoot, logger: logger}

	settings := e.readSettingsFile(filepath.Join(defaultRoot, settingsName))
	if settings.StoragePath != nil {
		e.root = *settings.StoragePath
	}

	if err := ensureLayout(e.root); err != nil {
		logger.Warn("storage root unusable, falling back to default", "root", e.root, "error", err)
		e.root = defaultRoot
		if err := ensureLayout(e.root); err != nil {
			return nil, fmt.Errorf("creating default storage root: %w", err)
		}
		if err := e.SaveSettings(model.DefaultSettings()); err != nil {
			logger.Warn("resetting settings failed", "error", err)
		}
	}

	return e, nil
}

// ensureLayout creates the storage root and its subdirectories. Safe to call
// repeatedly.
func ensureLayout(root string) error {
	for _, dir := range []string{root, filepath.Join(root, sessionsDirName), filepath.Join(root, exportsDirName)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return nil
}

func (e *Engine) settingsFile() string     { return filepath.Join(e.root, settingsName) }
func (e *Engine) categoriesFile() string   { return filepath.Join(e.root, categoriesName) }
func (e *Engine) inventoryFile() string    { return filepath.Join(e.root, inventoryName) }
func (e *Engine) analyticsFile() string    { return filepath.Join(e.root, analyticsName) }
func (e *Engine) sessionsListFile() string { return filepath.Join(e.root, sessionsListName) }
func (e *Engine) sessionsDir() string      { return filepath.Join(e.root, sessionsDirName) }

func (e *Engine) sessionFile(id string) string {
	return filepath.Join(e.sessionsDir(), "session_"+id+".json")
}

// loadJSON reads a document into v. Missing files report exists=false with no
// error; parse failures report an error with exists=true.
func loadJSON(path string, v any) (exists bool, err error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return true, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("decoding %s: %w", path, err)
	}
	return true, nil
}

// writeJSON stages and swaps a single document.
func writeJSON(path string, v any) error {
	var c commit
	if err := c.stageJSON(path, v); err != nil {
		return err
	}
	return c.apply()
}

// StoragePathDefined reports whether the persisted settings carry a storage
// path.
func (e *Engine) StoragePathDefined() bool {
	return e.LoadSettings().StoragePath != nil
}

// StoragePath returns the active storage root.
func (e *Engine) StoragePath() string { return e.root }

// readSettingsFile loads settings from an explicit path. Settings are a
// recoverable cache: missing or corrupt files degrade to defaults.
func (e *Engine) readSettingsFile(path string) model.AppSettings {
	settings := model.DefaultSettings()
	exists, err := loadJSON(path, &settings)
	if err != nil {
		e.logger.Warn("loading settings failed, using defaults", "path", path, "error", err)
		return model.DefaultSettings()
	}
	_ = exists
	return settings
}

// LoadSettings returns the settings from the active root, or defaults.
func (e *Engine) LoadSettings() model.AppSettings {
	return e.readSettingsFile(e.settingsFile())
}

// SaveSettings persists settings to the active root and mirrors them to the
// default root, staged and swapped together.
func (e *Engine) SaveSettings(settings model.AppSettings) error {
	var c commit
	if err := c.stageJSON(e.settingsFile(), settings); err != nil {
		return err
	}
	mirror := filepath.Join(e.defaultRoot, settingsName)
	if mirror != e.settingsFile() {
		if err := c.stageJSON(mirror, settings); err != nil {
			return err
		}
	}
	return c.apply()
}

// UpdateStoragePath writes settings carrying the new path to both the default
// root and the new root, migrates all existing data into the new root, and
// switches the engine over. A nil path resets to the default root. On failure
// the engine keeps operating on its previous root.
func (e *Engine) UpdateStoragePath(path *string) error {
	settings := e.LoadSettings()
	settings.StoragePath = path

	if err := os.MkdirAll(e.defaultRoot, 0755); err != nil {
		return fmt.Errorf("creating default root: %w", err)
	}
	if err := writeJSON(filepath.Join(e.defaultRoot, settingsName), settings); err != nil {
		return fmt.Errorf("writing settings to default root: %w", err)
	}

	newRoot := e.defaultRoot
	if path != nil {
		newRoot = *path
		if err := ensureLayout(newRoot); err != nil {
			return err
		}
		if e.root != newRoot {
			if err := copyTree(e.root, newRoot); err != nil {
				return fmt.Errorf("copying data to new root: %w", err)
			}
		}
		// After the copy so the migrated settings.json does not clobber it.
		if err := writeJSON(filepath.Join(newRoot, settingsName), settings); err != nil {
			return fmt.Errorf("writing settings to new root: %w", err)
		}
	}

	e.root = newRoot
	return ensureLayout(e.root)
}

// LoadCategories returns the category list, or an empty list when the file
// does not exist yet. Parse failures are errors: category data is not
// recoverable.
func (e *Engine) LoadCategories() ([]model.Category, error) {
	var categories []model.Category
	exists, err := loadJSON(e.categoriesFile(), &categories)
	if err != nil {
		return nil, fmt.Errorf("loading categories: %w", err)
	}
	if !exists {
		return []model.Category{}, nil
	}
	return categories, nil
}

// SaveCategories overwrites the category list document.
func (e *Engine) SaveCategories(categories []model.Category) error {
	if categories == nil {
		categories = []model.Category{}
	}
	if err := writeJSON(e.categoriesFile(), categories); err != nil {
		return fmt.Errorf("saving categories: %w", err)
	}
	return nil
}

// LoadInventory returns the inventory list, or an empty list when the file
// does not exist yet.
func (e *Engine) LoadInventory() ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	exists, err := loadJSON(e.inventoryFile(), &items)
	if err != nil {
		return nil, fmt.Errorf("loading inventory: %w", err)
	}
	if !exists {
		return []model.InventoryItem{}, nil
	}
	return items, nil
}

// SaveInventory overwrites the inventory list document.
func (e *Engine) SaveInventory(items []model.InventoryItem) error {
	if items == nil {
		items = []model.InventoryItem{}
	}
	if err := writeJSON(e.inventoryFile(), items); err != nil {
		return fmt.Errorf("saving inventory: %w", err)
	}
	return nil
}

// stageSession stages the session document together with the refreshed
// summary index: the session's prior entry is dropped, the fresh summary
// appended, and the index rewritten sorted by start date descending.
func (e *Engine) stageSession(c *commit, session *model.InventorySession) error {
	if err := c.stageJSON(e.sessionFile(session.ID), session); err != nil {
		return err
	}

	summaries := e.ListSessions()
	summaries = slices.DeleteFunc(summaries, func(s model.SessionSummary) bool { return s.ID == session.ID })
	summaries = append(summaries, model.Summarize(session))
	slices.SortStableFunc(summaries, func(a, b model.SessionSummary) int {
		return strings.Compare(b.StartDate, a.StartDate)
	})

	return c.stageJSON(e.sessionsListFile(), summaries)
}

// SaveSession persists the session document and its summary index entry.
func (e *Engine) SaveSession(session *model.InventorySession) error {
	var c commit
	if err := e.stageSession(&c, session); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	if err := c.apply(); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// LoadSession loads a session document by id. Returns nil with no error when
// the session does not exist.
func (e *Engine) LoadSession(id string) (*model.InventorySession, error) {
	var session model.InventorySession
	exists, err := loadJSON(e.sessionFile(id), &session)
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", id, err)
	}
	if !exists {
		return nil, nil
	}
	return &session, nil
}

// DeleteSession removes the session document and, best-effort, its summary
// index entry. An index update failure is logged but does not invalidate the
// deletion.
func (e *Engine) DeleteSession(id string) (bool, error) {
	path := e.sessionFile(id)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false, nil
	}
	if err := os.Remove(path); err != nil {
		return false, fmt.Errorf("deleting session %s: %w", id, err)
	}

	summaries := e.ListSessions()
	summaries = slices.DeleteFunc(summaries, func(s model.SessionSummary) bool { return s.ID == id })
	if err := writeJSON(e.sessionsListFile(), summaries); err != nil {
		e.logger.Warn("updating sessions index after delete failed", "session", id, "error", err)
	}

	return true, nil
}

// ListSessions returns the session-summary index. The index is a recoverable
// cache: missing or corrupt files degrade to an empty list.
func (e *Engine) ListSessions() []model.SessionSummary {
	var summaries []model.SessionSummary
	if _, err := loadJSON(e.sessionsListFile(), &summaries); err != nil {
		e.logger.Warn("loading sessions index failed", "error", err)
		return []model.SessionSummary{}
	}
	if summaries == nil {
		summaries = []model.SessionSummary{}
	}
	return summaries
}

// SaveAnalytics overwrites the analytics document.
func (e *Engine) SaveAnalytics(analytics model.InventoryAnalytics) error {
	if err := writeJSON(e.analyticsFile(), analytics); err != nil {
		return fmt.Errorf("saving analytics: %w", err)
	}
	return nil
}

// LoadAnalytics returns the analytics document. Analytics are derived data:
// missing or corrupt files degrade to empty analytics.
func (e *Engine) LoadAnalytics() model.InventoryAnalytics {
	analytics := model.EmptyAnalytics()
	if _, err := loadJSON(e.analyticsFile(), &analytics); err != nil {
		e.logger.Warn("loading analytics failed", "error", err)
		return model.EmptyAnalytics()
	}
	if analytics.ItemValueByCategory == nil {
		analytics.ItemValueByCategory = map[string]float64{}
	}
	if analytics.StockLevelsByItem == nil {
		analytics.StockLevelsByItem = map[string]int{}
	}
	if analytics.TransactionHistory == nil {
		analytics.TransactionHistory = map[string][]model.InventoryTransaction{}
	}
	return analytics
}

// CommitState persists one logical mutation. Every document is staged before
// any is swapped into place, so a failure during staging leaves all live
// files untouched.
func (e *Engine) CommitState(st inventory.StateSnapshot) error {
	items := st.Inventory
	if items == nil {
		items = []model.InventoryItem{}
	}

	var c commit
	if err := c.stageJSON(e.inventoryFile(), items); err != nil {
		return fmt.Errorf("committing state: %w", err)
	}
	if st.Session != nil {
		if err := e.stageSession(&c, st.Session); err != nil {
			return fmt.Errorf("committing state: %w", err)
		}
	}
	if st.Analytics != nil {
		if err := c.stageJSON(e.analyticsFile(), *st.Analytics); err != nil {
			return fmt.Errorf("committing state: %w", err)
		}
	}
	if err := c.apply(); err != nil {
		return fmt.Errorf("committing state: %w", err)
	}
	return nil
}
