package reportcache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// MemorySlots is an in-process SlotStore.
type MemorySlots struct {
	mu    sync.RWMutex
	slots map[string]CacheEntry
}

// NewMemorySlots creates an empty in-memory slot store.
func NewMemorySlots() *MemorySlots {
	return &MemorySlots{slots: make(map[string]CacheEntry)}
}

func (m *MemorySlots) Get(_ context.Context, key string) (*CacheEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.slots[key]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *MemorySlots) Put(_ context.Context, key string, entry CacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[key] = entry
	return nil
}

func (m *MemorySlots) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, key)
	return nil
}

// ---------------------------------------------------------------------------
// Badger
// ---------------------------------------------------------------------------

const slotKeyPrefix = "report_slot:"

// BadgerSlots persists slots in BadgerDB so that a restarted consumer can
// serve its last report immediately.
type BadgerSlots struct {
	db *badger.DB
}

// NewBadgerSlots creates a BadgerDB-backed slot store.
func NewBadgerSlots(db *badger.DB) *BadgerSlots {
	return &BadgerSlots{db: db}
}

func (s *BadgerSlots) Get(_ context.Context, key string) (*CacheEntry, error) {
	var entry CacheEntry
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(slotKeyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get slot %s: %w", key, err)
	}
	return &entry, nil
}

func (s *BadgerSlots) Put(_ context.Context, key string, entry CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal slot: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(slotKeyPrefix+key), data)
	})
}

func (s *BadgerSlots) Delete(_ context.Context, key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(slotKeyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// ---------------------------------------------------------------------------
// Persisted identity override
// ---------------------------------------------------------------------------

const overrideKey = "identity_override"

// OverrideStore persists a user-chosen identity override next to the slots.
type OverrideStore struct {
	db *badger.DB
}

// NewOverrideStore creates a BadgerDB-backed override store.
func NewOverrideStore(db *badger.DB) *OverrideStore {
	return &OverrideStore{db: db}
}

// Load returns the persisted override, if any.
func (s *OverrideStore) Load(_ context.Context) (Identity, bool, error) {
	var id Identity
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(overrideKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &id)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Identity{}, false, nil
	}
	if err != nil {
		return Identity{}, false, fmt.Errorf("load identity override: %w", err)
	}
	return id, true, nil
}

// Save stores id as the override.
func (s *OverrideStore) Save(_ context.Context, id Identity) error {
	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("marshal identity override: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(overrideKey), data)
	})
}

// Clear removes the override.
func (s *OverrideStore) Clear(_ context.Context) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(overrideKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// OpenBadger opens (or creates) the cache database in dir with badger's
// own logging silenced.
func OpenBadger(dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open cache db %s: %w", dir, err)
	}
	return db, nil
}
