// Package history persists finished and in-flight runs in a bbolt database.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/ytget/ytfetch/internal/model"
)

// Bucket names
var (
	bucketRuns = []byte("runs")
)

// OpenTimeout bounds how long Open waits for another process holding the database
const OpenTimeout = 1 * time.Second

// Store records runs keyed by run ID
type Store struct {
	db *bolt.DB

	// memory-only mode when db is nil
	mu   sync.RWMutex
	runs map[string][]byte
}

// Open opens or creates the database at path. An empty path keeps runs in memory.
func Open(path string) (*Store, error) {
	if path == "" {
		return &Store{runs: make(map[string][]byte)}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: OpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRuns)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close releases the database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record inserts or replaces run
func (s *Store) Record(run *model.Run) error {
	if run == nil || run.ID == "" {
		return fmt.Errorf("run without id")
	}
	data, err := json.Marshal(run)
	if err != nil {
		return err
	}

	if s.db == nil {
		s.mu.Lock()
		s.runs[run.ID] = data
		s.mu.Unlock()
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRuns).Put([]byte(run.ID), data)
	})
}

// Get returns the run with id
func (s *Store) Get(id string) (*model.Run, bool) {
	var data []byte
	if s.db == nil {
		s.mu.RLock()
		data = s.runs[id]
		s.mu.RUnlock()
	} else {
		s.db.View(func(tx *bolt.Tx) error {
			if v := tx.Bucket(bucketRuns).Get([]byte(id)); v != nil {
				data = make([]byte, len(v))
				copy(data, v)
			}
			return nil
		})
	}
	if data == nil {
		return nil, false
	}

	var run model.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, false
	}
	return &run, true
}

// List returns up to limit runs, newest first. A non-positive limit returns all.
func (s *Store) List(limit int) ([]*model.Run, error) {
	var runs []*model.Run
	decode := func(v []byte) {
		var run model.Run
		if err := json.Unmarshal(v, &run); err == nil {
			runs = append(runs, &run)
		}
	}

	if s.db == nil {
		s.mu.RLock()
		for _, v := range s.runs {
			decode(v)
		}
		s.mu.RUnlock()
	} else {
		err := s.db.View(func(tx *bolt.Tx) error {
			return tx.Bucket(bucketRuns).ForEach(func(_, v []byte) error {
				decode(v)
				return nil
			})
		})
		if err != nil {
			return nil, err
		}
	}

	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].ID > runs[j].ID
		}
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
