package testutil

import (
	"slices"

	"github.com/NepaliUtsab/blckpinkinventory/internal/inventory"
	"github.com/NepaliUtsab/blckpinkinventory/internal/model"
)

// MemoryStore is an in-memory inventory.Store for repository tests. Set Err
// to make every write fail with that error.
type MemoryStore struct {
	Root        string
	Settings    model.AppSettings
	Categories  []model.Category
	Inventory   []model.InventoryItem
	SessionDocs map[string]model.InventorySession
	Summaries   []model.SessionSummary
	Analytics   model.InventoryAnalytics

	// Err, when non-nil, is returned from every mutating operation.
	Err error

	// Commits counts CommitState calls that succeeded.
	Commits int
}

var _ inventory.Store = (*MemoryStore)(nil)

// NewMemoryStore returns a store with a configured storage path, ready for
// session-gated operations.
func NewMemoryStore() *MemoryStore {
	root := "/mem"
	return &MemoryStore{
		Root:        root,
		Settings:    model.AppSettings{StoragePath: &root, DarkMode: true, LowStockAlerts: true},
		SessionDocs: map[string]model.InventorySession{},
		Analytics:   model.EmptyAnalytics(),
	}
}

// NewUnconfiguredMemoryStore returns a store with no storage path set.
func NewUnconfiguredMemoryStore() *MemoryStore {
	s := NewMemoryStore()
	s.Settings = model.DefaultSettings()
	return s
}

func (s *MemoryStore) StoragePathDefined() bool { return s.Settings.StoragePath != nil }
func (s *MemoryStore) StoragePath() string      { return s.Root }

func (s *MemoryStore) UpdateStoragePath(path *string) error {
	if s.Err != nil {
		return s.Err
	}
	s.Settings.StoragePath = path
	if path != nil {
		s.Root = *path
	}
	return nil
}

func (s *MemoryStore) LoadSettings() model.AppSettings { return s.Settings }

func (s *MemoryStore) SaveSettings(settings model.AppSettings) error {
	if s.Err != nil {
		return s.Err
	}
	s.Settings = settings
	return nil
}

func (s *MemoryStore) LoadCategories() ([]model.Category, error) {
	return slices.Clone(s.Categories), nil
}

func (s *MemoryStore) SaveCategories(categories []model.Category) error {
	if s.Err != nil {
		return s.Err
	}
	s.Categories = slices.Clone(categories)
	return nil
}

func (s *MemoryStore) LoadInventory() ([]model.InventoryItem, error) {
	return slices.Clone(s.Inventory), nil
}

func (s *MemoryStore) SaveInventory(items []model.InventoryItem) error {
	if s.Err != nil {
		return s.Err
	}
	s.Inventory = slices.Clone(items)
	return nil
}

func (s *MemoryStore) SaveSession(session *model.InventorySession) error {
	if s.Err != nil {
		return s.Err
	}
	s.storeSession(session)
	return nil
}

// storeSession keeps a deep copy and refreshes the summary index.
func (s *MemoryStore) storeSession(session *model.InventorySession) {
	copied := *session
	copied.Items = slices.Clone(session.Items)
	copied.Transactions = slices.Clone(session.Transactions)
	s.SessionDocs[session.ID] = copied

	s.Summaries = slices.DeleteFunc(s.Summaries, func(sum model.SessionSummary) bool { return sum.ID == session.ID })
	s.Summaries = append(s.Summaries, model.Summarize(session))
}

func (s *MemoryStore) LoadSession(id string) (*model.InventorySession, error) {
	session, ok := s.SessionDocs[id]
	if !ok {
		return nil, nil
	}
	copied := session
	copied.Items = slices.Clone(session.Items)
	copied.Transactions = slices.Clone(session.Transactions)
	return &copied, nil
}

func (s *MemoryStore) DeleteSession(id string) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	if _, ok := s.SessionDocs[id]; !ok {
		return false, nil
	}
	delete(s.SessionDocs, id)
	s.Summaries = slices.DeleteFunc(s.Summaries, func(sum model.SessionSummary) bool { return sum.ID == id })
	return true, nil
}

func (s *MemoryStore) ListSessions() []model.SessionSummary {
	return slices.Clone(s.Summaries)
}

func (s *MemoryStore) SaveAnalytics(analytics model.InventoryAnalytics) error {
	if s.Err != nil {
		return s.Err
	}
	s.Analytics = analytics
	return nil
}

func (s *MemoryStore) LoadAnalytics() model.InventoryAnalytics { return s.Analytics }

func (s *MemoryStore) CommitState(st inventory.StateSnapshot) error {
	if s.Err != nil {
		return s.Err
	}
	s.Inventory = slices.Clone(st.Inventory)
	if st.Session != nil {
		s.storeSession(st.Session)
	}
	if st.Analytics != nil {
		s.Analytics = *st.Analytics
	}
	s.Commits++
	return nil
}

func (s *MemoryStore) ExportAll(targetDir string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	return targetDir + "/blackandpink_backup_test.zip", nil
}

func (s *MemoryStore) Import(archivePath string) error {
	return s.Err
}
