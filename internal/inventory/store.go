package inventory

import "github.com/NepaliUtsab/blckpinkinventory/internal/model"

// Store is the persistence boundary for the repository. Implementations own
// no business state: they serialize the documents they are handed and read
// them back, keyed by a configurable storage root.
//
// Error semantics follow two document classes. Inventory, categories and
// session documents are critical: load and save failures are returned as
// errors. Settings, analytics and the session-summary index are recoverable
// caches: loads degrade to defaults and the implementation logs rather than
// fails where possible.
type Store interface {
	// StoragePathDefined reports whether the user has configured a storage
	// path in the persisted settings.
	StoragePathDefined() bool

	// StoragePath returns the currently active storage root.
	StoragePath() string

	// UpdateStoragePath points the store at a new root, migrating existing
	// data into it. A nil path resets to the default root. On failure the
	// store keeps operating on its previous root.
	UpdateStoragePath(path *string) error

	// LoadSettings returns the persisted settings, or defaults when the file
	// is missing or unreadable.
	LoadSettings() model.AppSettings

	// SaveSettings persists settings to the active root and mirrors them to
	// the default root.
	SaveSettings(settings model.AppSettings) error

	LoadCategories() ([]model.Category, error)
	SaveCategories(categories []model.Category) error

	LoadInventory() ([]model.InventoryItem, error)
	SaveInventory(items []model.InventoryItem) error

	// SaveSession persists the full session document and refreshes that
	// session's entry in the summary index, both staged and swapped together.
	SaveSession(session *model.InventorySession) error

	// LoadSession loads a session by id. Returns nil with no error when the
	// session does not exist.
	LoadSession(id string) (*model.InventorySession, error)

	// DeleteSession removes the session document. It reports false when no
	// such session exists. Removing the summary index entry is best-effort.
	DeleteSession(id string) (bool, error)

	// ListSessions returns the session-summary index, or an empty list when
	// it is missing or unreadable.
	ListSessions() []model.SessionSummary

	SaveAnalytics(analytics model.InventoryAnalytics) error
	LoadAnalytics() model.InventoryAnalytics

	// CommitState persists one logical repository mutation: every document in
	// the snapshot is staged to a temp file first and swapped into place only
	// after all staging writes succeed. Session, when present, also refreshes
	// the summary index within the same swap group.
	CommitState(st StateSnapshot) error

	// ExportAll writes a timestamped zip archive of all current documents
	// into targetDir and returns the archive path.
	ExportAll(targetDir string) (string, error)

	// Import restores documents from an archive produced by ExportAll,
	// taking a recursive backup of the current root first.
	Import(archivePath string) error
}

// StateSnapshot carries the documents touched by one logical mutation.
// Inventory is always present; Session and Analytics are included when the
// operation changed them.
type StateSnapshot struct {
	Inventory []model.InventoryItem
	Session   *model.InventorySession
	Analytics *model.InventoryAnalytics
}
