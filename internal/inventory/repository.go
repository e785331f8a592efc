package inventory

import (
	"fmt"
	"math"
	"slices"

	"github.com/NepaliUtsab/blckpinkinventory/internal/datefmt"
	"github.com/NepaliUtsab/blckpinkinventory/internal/model"
)

// Repository owns all in-memory inventory state and is the only component
// allowed to decide whether a mutation is permitted. Every mutation persists
// through the Store before it is considered complete. Repository is not safe
// for concurrent use; callers serialize operations.
type Repository struct {
	store   Store
	logger  Logger
	clock   Clock
	idgen   IDGenerator
	codegen CodeGenerator

	items      []model.InventoryItem
	categories []model.Category
	session    *model.InventorySession
	sessions   []model.SessionSummary
	analytics  model.InventoryAnalytics
	settings   model.AppSettings
}

// NewRepository creates a Repository with the provided dependencies and loads
// persisted state. When no storage path is configured the repository starts
// empty and refuses most mutations until one is set.
func NewRepository(store Store, logger Logger, clock Clock, idgen IDGenerator, codegen CodeGenerator) *Repository {
	r := &Repository{
		store:     store,
		logger:    logger,
		clock:     clock,
		idgen:     idgen,
		codegen:   codegen,
		analytics: model.EmptyAnalytics(),
		settings:  model.DefaultSettings(),
	}

	r.settings = store.LoadSettings()
	if store.StoragePathDefined() {
		r.reloadAll()
	}
	return r
}

// reloadAll refreshes every cached collection from the store. Critical-document
// load failures degrade to empty collections with a log line; startup must not
// wedge on a corrupt cache the user can re-import.
func (r *Repository) reloadAll() {
	categories, err := r.store.LoadCategories()
	if err != nil {
		r.logger.Warn("loading categories failed", "error", err)
		categories = nil
	}
	r.categories = categories

	items, err := r.store.LoadInventory()
	if err != nil {
		r.logger.Warn("loading inventory failed", "error", err)
		items = nil
	}
	r.items = items

	r.sessions = r.store.ListSessions()
	r.analytics = r.store.LoadAnalytics()
	r.restoreActiveSession()
}

// restoreActiveSession reloads the open session, if any, so an active session
// survives process restarts. Open sessions carry a null end date in the
// summary index; at most one exists because CreateSession refuses to open a
// second.
func (r *Repository) restoreActiveSession() {
	r.session = nil
	for _, summary := range r.sessions {
		if summary.EndDate != nil {
			continue
		}
		session, err := r.store.LoadSession(summary.ID)
		if err != nil || session == nil {
			r.logger.Warn("restoring active session failed", "id", summary.ID, "error", err)
			return
		}
		r.session = session
		return
	}
}

// now returns the current timestamp in the canonical persisted format.
func (r *Repository) now() string {
	return datefmt.Format(r.clock.Now())
}

// IsStoragePathDefined reports whether a storage path has been configured.
func (r *Repository) IsStoragePathDefined() bool {
	return r.store.StoragePathDefined()
}

// StoragePath returns the active storage root.
func (r *Repository) StoragePath() string {
	return r.store.StoragePath()
}

// UpdateStoragePath migrates storage to the given root (nil resets to the
// default), persists the updated settings, and reloads all cached collections
// from the new location.
func (r *Repository) UpdateStoragePath(path *string) error {
	if err := r.store.UpdateStoragePath(path); err != nil {
		return fmt.Errorf("updating storage path: %w", err)
	}

	r.settings.StoragePath = path
	if err := r.store.SaveSettings(r.settings); err != nil {
		r.logger.Warn("saving settings after path change failed", "error", err)
	}

	r.reloadAll()
	r.logger.Info("storage path updated", "path", r.store.StoragePath())
	return nil
}

// Settings returns the cached application settings.
func (r *Repository) Settings() model.AppSettings {
	return r.settings
}

// UpdateSettings replaces the settings and persists them.
func (r *Repository) UpdateSettings(settings model.AppSettings) error {
	r.settings = settings
	if err := r.store.SaveSettings(settings); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

// Categories returns all categories.
func (r *Repository) Categories() []model.Category {
	return slices.Clone(r.categories)
}

// CategoryByID returns the category with the given id, or nil.
func (r *Repository) CategoryByID(id string) *model.Category {
	for i := range r.categories {
		if r.categories[i].ID == id {
			c := r.categories[i]
			return &c
		}
	}
	return nil
}

// CategoryByName returns the category with the given name, or nil.
func (r *Repository) CategoryByName(name string) *model.Category {
	for i := range r.categories {
		if r.categories[i].Name == name {
			c := r.categories[i]
			return &c
		}
	}
	return nil
}

// AddCategory creates a new category. Categories are not session-gated, but
// they do require a configured storage path: a category that cannot be
// persisted would silently vanish when the process exits.
func (r *Repository) AddCategory(name, description string) (model.Category, error) {
	category := model.Category{
		ID:          r.idgen.New(),
		Name:        name,
		Description: description,
		CreatedAt:   r.now(),
	}
	r.categories = append(r.categories, category)

	if err := r.saveCategories(); err != nil {
		r.categories = r.categories[:len(r.categories)-1]
		return model.Category{}, err
	}

	r.logger.Info("category added", "id", category.ID, "name", name)
	return category, nil
}

// UpdateCategory replaces the category with the same id.
func (r *Repository) UpdateCategory(category model.Category) error {
	idx := slices.IndexFunc(r.categories, func(c model.Category) bool { return c.ID == category.ID })
	if idx == -1 {
		return ErrNotFound
	}

	previous := r.categories[idx]
	r.categories[idx] = category
	if err := r.saveCategories(); err != nil {
		r.categories[idx] = previous
		return err
	}
	return nil
}

// DeleteCategory removes a category. It fails with ErrCategoryInUse when any
// inventory item still references the category, regardless of session state.
func (r *Repository) DeleteCategory(id string) error {
	for i := range r.items {
		if r.items[i].CategoryID == id {
			return ErrCategoryInUse
		}
	}

	idx := slices.IndexFunc(r.categories, func(c model.Category) bool { return c.ID == id })
	if idx == -1 {
		return ErrNotFound
	}

	removed := r.categories[idx]
	r.categories = slices.Delete(r.categories, idx, idx+1)
	if err := r.saveCategories(); err != nil {
		r.categories = slices.Insert(r.categories, idx, removed)
		return err
	}

	r.logger.Info("category deleted", "id", id)
	return nil
}

func (r *Repository) saveCategories() error {
	if !r.store.StoragePathDefined() {
		return ErrNoStoragePath
	}
	if err := r.store.SaveCategories(r.categories); err != nil {
		return fmt.Errorf("saving categories: %w", err)
	}
	return nil
}

// Items returns all inventory items.
func (r *Repository) Items() []model.InventoryItem {
	return slices.Clone(r.items)
}

// ItemByID returns the item with the given id, or nil.
func (r *Repository) ItemByID(id string) *model.InventoryItem {
	for i := range r.items {
		if r.items[i].ID == id {
			item := r.items[i]
			return &item
		}
	}
	return nil
}

// ItemByShareableCode returns the item with the given shareable code, or nil.
func (r *Repository) ItemByShareableCode(code string) *model.InventoryItem {
	for i := range r.items {
		if r.items[i].ShareableCode == code {
			item := r.items[i]
			return &item
		}
	}
	return nil
}

// codeAttempts bounds shareable-code generation. The codespace holds 36^6
// values, so exhausting this indicates a broken generator, not a full space.
const codeAttempts = 10000

// GenerateUniqueShareableCode returns a code no current item uses.
func (r *Repository) GenerateUniqueShareableCode() (string, error) {
	for range codeAttempts {
		code := r.codegen.Code()
		if r.ItemByShareableCode(code) == nil {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique shareable code after %d attempts", codeAttempts)
}

// AddItemParams carries the caller-supplied fields for a new inventory item.
// MaxStock <= 0 means unbounded.
type AddItemParams struct {
	Name        string
	Description string
	Color       string
	CategoryID  string
	Price       float64
	Cost        float64
	Quantity    int
	Location    string
	MinStock    int
	MaxStock    int
	ImageURL    *string
	Tags        []string
}

// AddItem creates a new inventory item inside the active session. The item is
// appended to both the global inventory and the session's working copy, an
// ADDITION transaction is recorded, and inventory, session and analytics are
// persisted together. Fails with ErrNoActiveSession when no session is open.
func (r *Repository) AddItem(p AddItemParams) (*model.InventoryItem, error) {
	session := r.session
	if session == nil {
		return nil, ErrNoActiveSession
	}

	code, err := r.GenerateUniqueShareableCode()
	if err != nil {
		return nil, err
	}

	maxStock := p.MaxStock
	if maxStock <= 0 {
		maxStock = math.MaxInt
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	now := r.now()
	item := model.InventoryItem{
		ID:            r.idgen.New(),
		Name:          p.Name,
		Description:   p.Description,
		Color:         p.Color,
		CategoryID:    p.CategoryID,
		ShareableCode: code,
		Price:         p.Price,
		Cost:          p.Cost,
		Quantity:      p.Quantity,
		Location:      p.Location,
		MinStock:      p.MinStock,
		MaxStock:      maxStock,
		ImageURL:      p.ImageURL,
		Tags:          tags,
		LastUpdated:   now,
	}

	r.items = append(r.items, item)
	session.Items = append(session.Items, item)
	session.Transactions = append(session.Transactions, model.InventoryTransaction{
		ID:              r.idgen.New(),
		ItemID:          item.ID,
		Quantity:        p.Quantity,
		TransactionType: model.Addition,
		Reason:          "Initial item creation",
		Timestamp:       now,
	})

	analytics := r.computeAnalytics()
	if err := r.store.CommitState(StateSnapshot{Inventory: r.items, Session: session, Analytics: &analytics}); err != nil {
		r.items = r.items[:len(r.items)-1]
		session.Items = session.Items[:len(session.Items)-1]
		session.Transactions = session.Transactions[:len(session.Transactions)-1]
		return nil, fmt.Errorf("persisting new item: %w", err)
	}

	r.analytics = analytics
	r.sessions = r.store.ListSessions()
	r.logger.Info("item added", "id", item.ID, "code", code, "name", p.Name)
	return &item, nil
}

// UpdateItem replaces the item with the same id in the global inventory.
// Direct edits are deliberately not session-gated; only stock-level changes
// go through sessions.
func (r *Repository) UpdateItem(item model.InventoryItem) error {
	idx := slices.IndexFunc(r.items, func(i model.InventoryItem) bool { return i.ID == item.ID })
	if idx == -1 {
		return ErrNotFound
	}

	previous := r.items[idx]
	item.LastUpdated = r.now()
	r.items[idx] = item

	analytics := r.computeAnalytics()
	if err := r.store.CommitState(StateSnapshot{Inventory: r.items, Analytics: &analytics}); err != nil {
		r.items[idx] = previous
		return fmt.Errorf("persisting item update: %w", err)
	}

	r.analytics = analytics
	return nil
}

// DeleteItem removes an item from the global inventory. Historical session
// snapshots keep their copies.
func (r *Repository) DeleteItem(id string) error {
	idx := slices.IndexFunc(r.items, func(i model.InventoryItem) bool { return i.ID == id })
	if idx == -1 {
		return ErrNotFound
	}

	removed := r.items[idx]
	r.items = slices.Delete(r.items, idx, idx+1)

	analytics := r.computeAnalytics()
	if err := r.store.CommitState(StateSnapshot{Inventory: r.items, Analytics: &analytics}); err != nil {
		r.items = slices.Insert(r.items, idx, removed)
		return fmt.Errorf("persisting item deletion: %w", err)
	}

	r.analytics = analytics
	r.logger.Info("item deleted", "id", id)
	return nil
}

// RecordTransaction applies a stock-level change to an item inside the active
// session. ADDITION adds the quantity, REMOVAL subtracts it, ADJUSTMENT sets
// the absolute value. Quantities are not clamped; negative stock is possible
// and left to the caller to police.
func (r *Repository) RecordTransaction(itemID string, quantity int, typ model.TransactionType, reason string) error {
	if !r.store.StoragePathDefined() {
		return ErrNoStoragePath
	}
	session := r.session
	if session == nil {
		return ErrNoActiveSession
	}
	if !typ.Valid() {
		return fmt.Errorf("unknown transaction type: %q", typ)
	}

	idx := slices.IndexFunc(r.items, func(i model.InventoryItem) bool { return i.ID == itemID })
	if idx == -1 {
		return ErrNotFound
	}

	previous := r.items[idx]
	item := previous
	switch typ {
	case model.Addition:
		item.Quantity += quantity
	case model.Removal:
		item.Quantity -= quantity
	case model.Adjustment:
		item.Quantity = quantity
	}
	item.LastUpdated = r.now()
	r.items[idx] = item

	session.Transactions = append(session.Transactions, model.InventoryTransaction{
		ID:              r.idgen.New(),
		ItemID:          itemID,
		Quantity:        quantity,
		TransactionType: typ,
		Reason:          reason,
		Timestamp:       item.LastUpdated,
	})

	// Refresh the session's working copy of the item, if it has one.
	sessionIdx := slices.IndexFunc(session.Items, func(i model.InventoryItem) bool { return i.ID == itemID })
	var previousCopy model.InventoryItem
	if sessionIdx != -1 {
		previousCopy = session.Items[sessionIdx]
		session.Items[sessionIdx] = item
	}

	analytics := r.computeAnalytics()
	if err := r.store.CommitState(StateSnapshot{Inventory: r.items, Session: session, Analytics: &analytics}); err != nil {
		r.items[idx] = previous
		session.Transactions = session.Transactions[:len(session.Transactions)-1]
		if sessionIdx != -1 {
			session.Items[sessionIdx] = previousCopy
		}
		return fmt.Errorf("persisting transaction: %w", err)
	}

	r.analytics = analytics
	r.sessions = r.store.ListSessions()
	r.logger.Info("transaction recorded", "item", itemID, "type", string(typ), "quantity", quantity)
	return nil
}

// CreateSession opens a new counting session seeded with a snapshot of the
// entire current inventory. At most one session may be open: creating another
// fails with ErrSessionActive until the current one is closed.
func (r *Repository) CreateSession(name, description string) (*model.InventorySession, error) {
	if !r.store.StoragePathDefined() {
		return nil, ErrNoStoragePath
	}
	if r.session != nil {
		return nil, ErrSessionActive
	}

	session := &model.InventorySession{
		ID:           r.idgen.New(),
		Name:         name,
		Description:  description,
		StartDate:    r.now(),
		Items:        slices.Clone(r.items),
		Transactions: []model.InventoryTransaction{},
	}
	if session.Items == nil {
		session.Items = []model.InventoryItem{}
	}

	if err := r.store.SaveSession(session); err != nil {
		return nil, fmt.Errorf("persisting new session: %w", err)
	}

	r.session = session
	r.sessions = r.store.ListSessions()
	r.logger.Info("session created", "id", session.ID, "name", name)
	return session, nil
}

// LoadSession reopens a session by id and makes it the active one. A closed
// session has its end date cleared and is persisted as open again, so the
// resume outlives the process. Fails with ErrSessionActive while a different
// session is open.
func (r *Repository) LoadSession(id string) (*model.InventorySession, error) {
	if !r.store.StoragePathDefined() {
		return nil, ErrNoStoragePath
	}
	if r.session != nil && r.session.ID != id {
		return nil, ErrSessionActive
	}

	session, err := r.store.LoadSession(id)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if session == nil {
		return nil, ErrNotFound
	}

	if session.EndDate != nil {
		session.EndDate = nil
		if err := r.store.SaveSession(session); err != nil {
			return nil, fmt.Errorf("reopening session: %w", err)
		}
		r.sessions = r.store.ListSessions()
	}

	r.session = session
	r.logger.Info("session loaded", "id", id)
	return session, nil
}

// CloseCurrentSession writes the session's working copies back into the
// global inventory, stamps the end date, persists everything, and clears the
// active session.
func (r *Repository) CloseCurrentSession() error {
	if !r.store.StoragePathDefined() {
		return ErrNoStoragePath
	}
	session := r.session
	if session == nil {
		return ErrNoActiveSession
	}

	itemsBefore := slices.Clone(r.items)
	for _, sessionItem := range session.Items {
		idx := slices.IndexFunc(r.items, func(i model.InventoryItem) bool { return i.ID == sessionItem.ID })
		if idx != -1 {
			r.items[idx] = sessionItem
		}
	}

	endDate := r.now()
	session.EndDate = &endDate

	analytics := r.computeAnalytics()
	if err := r.store.CommitState(StateSnapshot{Inventory: r.items, Session: session, Analytics: &analytics}); err != nil {
		r.items = itemsBefore
		session.EndDate = nil
		return fmt.Errorf("persisting session close: %w", err)
	}

	r.session = nil
	r.analytics = analytics
	r.sessions = r.store.ListSessions()
	r.logger.Info("session closed", "id", session.ID)
	return nil
}

// Sessions returns the cached session-summary index, newest first.
func (r *Repository) Sessions() []model.SessionSummary {
	return slices.Clone(r.sessions)
}

// CurrentSession returns the active session, or nil.
func (r *Repository) CurrentSession() *model.InventorySession {
	return r.session
}

// DeleteSession removes a session document and its summary index entry.
// Deleting the active session also deactivates it.
func (r *Repository) DeleteSession(id string) error {
	if !r.store.StoragePathDefined() {
		return ErrNoStoragePath
	}

	deleted, err := r.store.DeleteSession(id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}

	if r.session != nil && r.session.ID == id {
		r.session = nil
	}
	r.sessions = r.store.ListSessions()
	r.logger.Info("session deleted", "id", id)
	return nil
}

// Analytics returns the cached derived analytics.
func (r *Repository) Analytics() model.InventoryAnalytics {
	return r.analytics
}

// computeAnalytics derives analytics from the current inventory and the
// transaction history. Item value and stock levels come from the entire
// global inventory. Transaction history accumulates: previously persisted
// entries are carried forward and the active session's log is merged in by
// transaction id, so history survives session closure and switching.
func (r *Repository) computeAnalytics() model.InventoryAnalytics {
	analytics := model.EmptyAnalytics()

	for _, item := range r.items {
		analytics.ItemValueByCategory[item.CategoryID] += item.Price * float64(item.Quantity)
		analytics.StockLevelsByItem[item.ID] = item.Quantity
	}

	for itemID, txns := range r.analytics.TransactionHistory {
		analytics.TransactionHistory[itemID] = slices.Clone(txns)
	}
	if r.session != nil {
		for _, txn := range r.session.Transactions {
			analytics.TransactionHistory[txn.ItemID] = upsertTransaction(analytics.TransactionHistory[txn.ItemID], txn)
		}
	}

	return analytics
}

func upsertTransaction(list []model.InventoryTransaction, txn model.InventoryTransaction) []model.InventoryTransaction {
	for i := range list {
		if list[i].ID == txn.ID {
			list[i] = txn
			return list
		}
	}
	return append(list, txn)
}

// ExportAllData writes a backup archive of all persisted documents into
// targetDir and returns the archive path.
func (r *Repository) ExportAllData(targetDir string) (string, error) {
	if !r.store.StoragePathDefined() {
		return "", ErrNoStoragePath
	}

	archive, err := r.store.ExportAll(targetDir)
	if err != nil {
		return "", fmt.Errorf("exporting data: %w", err)
	}

	r.logger.Info("data exported", "archive", archive)
	return archive, nil
}

// ImportData restores documents from a backup archive and reloads all cached
// collections.
func (r *Repository) ImportData(archivePath string) error {
	if !r.store.StoragePathDefined() {
		return ErrNoStoragePath
	}

	if err := r.store.Import(archivePath); err != nil {
		return fmt.Errorf("importing data: %w", err)
	}

	r.reloadAll()
	r.logger.Info("data imported", "archive", archivePath)
	return nil
}
