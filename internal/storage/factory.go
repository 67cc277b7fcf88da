package storage

import "fmt"

// NewStore builds the run store named by kind: "memory" (the default for an
// empty kind) keeps run reports and tuned profiles in process, "sqlite"
// persists them at sqlitePath and needs the sqlite build tag.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return newSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

// CloseIfSupported releases the store's underlying resources when the
// backend holds any; the memory store does not, the sqlite store does.
func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
