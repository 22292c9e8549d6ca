package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// Storage keys
const (
	keySearchPrefix = "search/"

	// Fixed-width so that keys sort in time order.
	keyTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Entry is one completed search.
type Entry struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	FEN       string        `json:"fen"`
	Moves     []string      `json:"moves,omitempty"`
	BestMove  string        `json:"best_move"`
	PV        []string      `json:"pv,omitempty"` // SAN, from the searched position
	Depth     int           `json:"depth"`
	ScoreCP   int           `json:"score_cp"`
	Mate      int           `json:"mate,omitempty"` // +1 or -1 when a king capture was forced
	Nodes     uint64        `json:"nodes"`
	Elapsed   time.Duration `json:"elapsed"`
}

// key returns the database key for e.
func (e Entry) key() []byte {
	return []byte(keySearchPrefix + e.StartedAt.UTC().Format(keyTimeLayout) + "/" + e.ID)
}

// Journal wraps BadgerDB as an append-only history of searches.
// Nothing in it is read back by the engine.
type Journal struct {
	db *badger.DB
}

// Open opens or creates a journal in dir.
func Open(dir string) (*Journal, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", dir, err)
	}

	return &Journal{db: db}, nil
}

// OpenInMemory opens a journal that is discarded on Close.
func OpenInMemory() (*Journal, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory journal: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the database
func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// Record stores e and returns it with its ID and start time filled in.
func (j *Journal) Record(e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.StartedAt.IsZero() {
		e.StartedAt = time.Now()
	}

	data, err := json.Marshal(e)
	if err != nil {
		return e, err
	}

	err = j.db.Update(func(txn *badger.Txn) error {
		return txn.Set(e.key(), data)
	})
	if err != nil {
		return e, fmt.Errorf("record search %s: %w", e.ID, err)
	}
	return e, nil
}

// Recent returns up to n entries, newest first.
func (j *Journal) Recent(n int) ([]Entry, error) {
	var entries []Entry
	if n <= 0 {
		return entries, nil
	}

	prefix := []byte(keySearchPrefix)
	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration starts at the last key with the prefix.
		seek := append([]byte(keySearchPrefix), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix) && len(entries) < n; it.Next() {
			var e Entry
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			})
			if err != nil {
				return err
			}
			entries = append(entries, e)
		}
		return nil
	})

	return entries, err
}
