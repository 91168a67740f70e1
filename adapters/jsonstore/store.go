// Package jsonstore persists application state as JSON files on disk: one
// state.json for datasets, conversations, and settings, one file per trained
// model, and the uploaded files themselves.
package jsonstore

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"datalens/domain/chat"
	"datalens/domain/core"
	"datalens/domain/dataset"
)

const stateFile = "state.json"

// conversationRecord keeps a conversation together with its messages
type conversationRecord struct {
	Conversation *chat.Conversation `json:"conversation"`
	Messages     []*chat.Message    `json:"messages"`
}

// state is everything held in state.json
type state struct {
	Datasets      map[string]*dataset.Dataset    `json:"datasets"`
	Conversations map[string]*conversationRecord `json:"conversations"`
	Settings      *chat.Settings                 `json:"settings,omitempty"`
}

func emptyState() *state {
	return &state{
		Datasets:      make(map[string]*dataset.Dataset),
		Conversations: make(map[string]*conversationRecord),
	}
}

// Store owns state.json. Mutations mark the store dirty; the state reaches
// disk on Flush, which the maintenance scheduler calls on a timer and Close
// calls on shutdown.
type Store struct {
	mu     sync.RWMutex
	dir    string
	state  *state
	dirty  bool
	closed bool
}

// Open loads state.json from dir, creating the directory and starting from
// empty state when the file does not exist yet.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	s := &Store{dir: dir, state: emptyState()}
	path := s.statePath()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Printf("[JSONStore] No state file at %s, starting empty", path)
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	if err := json.Unmarshal(data, s.state); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrCorruptedState, path, err)
	}
	if s.state.Datasets == nil {
		s.state.Datasets = make(map[string]*dataset.Dataset)
	}
	if s.state.Conversations == nil {
		s.state.Conversations = make(map[string]*conversationRecord)
	}

	log.Printf("[JSONStore] Loaded %s: %d datasets, %d conversations", path, len(s.state.Datasets), len(s.state.Conversations))
	return s, nil
}

// Dir returns the store's base directory
func (s *Store) Dir() string { return s.dir }

func (s *Store) statePath() string {
	return filepath.Join(s.dir, stateFile)
}

// Flush writes state.json if anything changed since the last write. The
// write goes through a temp file and rename so readers never see a partial
// state file.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

func (s *Store) flushLocked() error {
	if !s.dirty {
		return nil
	}

	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	path := s.statePath()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp state file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	s.dirty = false
	log.Printf("[JSONStore] Flushed state to %s (%d bytes)", path, len(data))
	return nil
}

// Close flushes pending state and rejects further mutations
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	if err := s.flushLocked(); err != nil {
		return err
	}
	s.closed = true
	return nil
}

// markDirty records a pending change; the caller holds the write lock
func (s *Store) markDirty() {
	s.dirty = true
}

// guard rejects mutations after Close; the caller holds a lock
func (s *Store) guard() error {
	if s.closed {
		return core.ErrStoreClosed
	}
	return nil
}
