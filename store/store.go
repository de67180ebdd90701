// Package store implements the persistent question/answer memory.
//
// The memory is an ordered sequence of records persisted as a single
// human-readable JSON array. The file is the sole source of truth: every
// mutation rewrites it wholesale before returning, so a process restart
// always recovers the full sequence.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Record is a stored question/answer pair. Records are immutable once
// created; identity is the position in the store's ordered sequence.
type Record struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Store is the durable ordered memory of records. Duplicates are permitted.
type Store struct {
	path string

	mu      sync.RWMutex
	records []Record
}

// Load opens the memory file at path. If the file does not exist it is
// created holding an empty JSON array. Malformed content is a fatal
// condition surfaced to the caller, never recovered silently.
func Load(path string) (*Store, error) {
	s := &Store{path: path}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Wrapf(err, "create memory directory for %s", path)
		}
		if err := s.persist(nil); err != nil {
			return nil, err
		}
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read memory file %s", path)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrapf(err, "malformed memory file %s", path)
	}

	s.records = records
	return s, nil
}

// Append trims both fields, appends a record to the in-memory sequence and
// rewrites the whole file. Once Append returns successfully a restart will
// recover the new record.
func (s *Store) Append(question, answer string) (Record, error) {
	record := Record{
		Question: strings.TrimSpace(question),
		Answer:   strings.TrimSpace(answer),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updated := append(append([]Record(nil), s.records...), record)
	if err := s.persist(updated); err != nil {
		return Record{}, err
	}
	s.records = updated
	return record, nil
}

// Records returns a copy of the current ordered sequence.
func (s *Store) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Record(nil), s.records...)
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Path returns the location of the memory file.
func (s *Store) Path() string {
	return s.path
}

// persist rewrites the whole memory file. A temp-file rename keeps readers
// of the file from ever observing a partial record.
func (s *Store) persist(records []Record) error {
	if records == nil {
		records = []Record{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode memory")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrapf(err, "write memory file %s", tmp)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrapf(err, "replace memory file %s", s.path)
	}
	return nil
}
