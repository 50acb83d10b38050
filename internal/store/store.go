package store

import "context"

// Store is the durable local key/value snapshot store. It is the
// cache-of-record for the catalog, the order list, favorites/compare sets
// and cached settings. Implementations must be safe for concurrent use.
type Store interface {
	// Read retrieves a value by key. Returns ErrNotFound if absent.
	Read(ctx context.Context, key string) ([]byte, error)

	// Write stores a value under key, replacing any previous value.
	Write(ctx context.Context, key string, value []byte) error

	// Delete removes a value by key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Stats returns statistics about the store for the admin dashboard.
	Stats(ctx context.Context) (map[string]interface{}, error)

	// Close closes the underlying connection.
	Close() error
}

// StoreError is a sentinel error type for store failures.
type StoreError string

func (e StoreError) Error() string { return string(e) }

const (
	// ErrNotFound indicates the key is absent from the store.
	ErrNotFound StoreError = "key not found"
)

// Namespaced persistence keys.
const (
	KeyCatalog         = "catalog:cars"
	KeyOrders          = "orders:list"
	KeyOrdersCSV       = "orders:csv"
	KeyOrdersCSVAt     = "orders:csv_at"
	KeyFavoritesPrefix = "favorites:"
	KeyComparePrefix   = "compare:"
	KeySettingsPrefix  = "settings:"
)
