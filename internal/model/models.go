package model

// Category represents a product category.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
}

// StockStatus classifies an item's quantity relative to its stock bounds.
type StockStatus string

const (
	StockLow  StockStatus = "Low"
	StockFull StockStatus = "Full"
	StockOK   StockStatus = "OK"
)

// InventoryItem represents an inventory item with stock management information.
// ShareableCode is a six-character uppercase alphanumeric code, unique among
// current items. Timestamps are datefmt strings.
type InventoryItem struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Color         string   `json:"color"`
	CategoryID    string   `json:"categoryId"`
	ShareableCode string   `json:"shareableCode"`
	Price         float64  `json:"price"`
	Cost          float64  `json:"cost"`
	Quantity      int      `json:"quantity"`
	Location      string   `json:"location"`
	MinStock      int      `json:"minStock"`
	MaxStock      int      `json:"maxStock"`
	ImageURL      *string  `json:"imageUrl"`
	Tags          []string `json:"tags"`
	LastUpdated   string   `json:"lastUpdated"`
}

// StockStatus derives the stock classification; it is never persisted.
func (i *InventoryItem) StockStatus() StockStatus {
	switch {
	case i.Quantity <= i.MinStock:
		return StockLow
	case i.Quantity >= i.MaxStock:
		return StockFull
	default:
		return StockOK
	}
}

// TransactionType is the kind of inventory transaction.
type TransactionType string

const (
	Addition   TransactionType = "ADDITION"
	Removal    TransactionType = "REMOVAL"
	Adjustment TransactionType = "ADJUSTMENT"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case Addition, Removal, Adjustment:
		return true
	}
	return false
}

// InventoryTransaction records a single stock-level change. Transactions are
// append-only: once created they are never modified. Quantity is a delta for
// ADDITION/REMOVAL and an absolute target for ADJUSTMENT.
type InventoryTransaction struct {
	ID              string          `json:"id"`
	ItemID          string          `json:"itemId"`
	Quantity        int             `json:"quantity"`
	TransactionType TransactionType `json:"transactionType"`
	Reason          string          `json:"reason"`
	Timestamp       string          `json:"timestamp"`
}

// InventorySession is a time-bounded counting session. A nil EndDate means the
// session is still open. Items is the session-local working copy of inventory
// items; Transactions is the append-only log of changes made during the
// session.
type InventorySession struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Description  string                 `json:"description"`
	StartDate    string                 `json:"startDate"`
	EndDate      *string                `json:"endDate"`
	Items        []InventoryItem        `json:"items"`
	Transactions []InventoryTransaction `json:"transactions"`
}

// Active reports whether the session is still open.
func (s *InventorySession) Active() bool { return s.EndDate == nil }

// SessionSummary is a denormalized index entry derived from an
// InventorySession, used for listing sessions without loading full documents.
type SessionSummary struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	StartDate  string  `json:"startDate"`
	EndDate    *string `json:"endDate"`
	ItemCount  int     `json:"itemCount"`
	TotalValue float64 `json:"totalValue"`
}

// Summarize derives the summary index entry for a session.
func Summarize(s *InventorySession) SessionSummary {
	total := 0.0
	for _, item := range s.Items {
		total += item.Price * float64(item.Quantity)
	}
	return SessionSummary{
		ID:         s.ID,
		Name:       s.Name,
		StartDate:  s.StartDate,
		EndDate:    s.EndDate,
		ItemCount:  len(s.Items),
		TotalValue: total,
	}
}

// InventoryAnalytics is fully derived data, recomputed after every mutating
// repository operation and never edited independently.
type InventoryAnalytics struct {
	ItemValueByCategory map[string]float64                `json:"itemValueByCategory"`
	StockLevelsByItem   map[string]int                    `json:"stockLevelsByItem"`
	TransactionHistory  map[string][]InventoryTransaction `json:"transactionHistory"`
}

// EmptyAnalytics returns analytics with all maps allocated and empty.
func EmptyAnalytics() InventoryAnalytics {
	return InventoryAnalytics{
		ItemValueByCategory: map[string]float64{},
		StockLevelsByItem:   map[string]int{},
		TransactionHistory:  map[string][]InventoryTransaction{},
	}
}

// AppSettings holds user-facing application settings. A nil StoragePath means
// storage is not yet configured and most inventory operations are refused.
type AppSettings struct {
	StoragePath         *string `json:"storagePath"`
	DarkMode            bool    `json:"darkMode"`
	EnableNotifications bool    `json:"enableNotifications"`
	LowStockAlerts      bool    `json:"lowStockAlerts"`
}

// DefaultSettings returns the settings used before the user configures
// anything.
func DefaultSettings() AppSettings {
	return AppSettings{
		StoragePath:         nil,
		DarkMode:            true,
		EnableNotifications: false,
		LowStockAlerts:      true,
	}
}
