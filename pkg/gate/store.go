package gate

import (
	"encoding/json"
	"fmt"
	"sync"

	"go.etcd.io/bbolt"
)

// Persisted is what survives between runs: the remember-me choice and, for
// non-browser clients, the session cookie itself.
type Persisted struct {
	RememberMe    bool   `json:"remember_me"`
	SessionCookie string `json:"session_cookie,omitempty"`
}

// Store keeps Persisted between runs.
type Store interface {
	Load() (Persisted, error)
	Save(Persisted) error
	Clear() error
}

// MemoryStore is a Store that forgets everything on exit.
type MemoryStore struct {
	mu sync.Mutex
	p  Persisted
}

func (m *MemoryStore) Load() (Persisted, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.p, nil
}

func (m *MemoryStore) Save(p Persisted) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.p = p
	return nil
}

func (m *MemoryStore) Clear() error {
	return m.Save(Persisted{})
}

var (
	sessionBucket = []byte("gate")
	sessionKey    = []byte("session")
)

// BoltStore implements Store on a BBolt file.
type BoltStore struct {
	db *bbolt.DB
}

var _ Store = (*BoltStore)(nil)

func NewBoltStore(db *bbolt.DB) *BoltStore {
	return &BoltStore{db: db}
}

// OpenBoltStore opens (or creates) the BBolt database at path.
func OpenBoltStore(path string, options *bbolt.Options) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, options)
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}
	return NewBoltStore(db), nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Load returns the zero Persisted when nothing was saved yet.
func (s *BoltStore) Load() (Persisted, error) {
	var p Persisted
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(sessionBucket)
		if b == nil {
			return nil
		}
		data := b.Get(sessionKey)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &p)
	})
	return p, err
}

func (s *BoltStore) Save(p Persisted) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(sessionBucket)
		if err != nil {
			return err
		}
		data, err := json.Marshal(p)
		if err != nil {
			return err
		}
		return b.Put(sessionKey, data)
	})
}

func (s *BoltStore) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(sessionBucket)
		if b == nil {
			return nil
		}
		return b.Delete(sessionKey)
	})
}
