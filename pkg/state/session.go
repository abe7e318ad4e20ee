package state

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jwebster45206/turn-engine/pkg/storage"
	"github.com/jwebster45206/turn-engine/pkg/turnerr"
)

// Session is one turn's view of an owner's records. Loads are cached, writes
// are buffered, and Commit flushes every written record in a single
// SaveBatch. A session that is never committed leaves the store untouched.
//
// A Session is not safe for concurrent use; the worker owns it for the turn.
type Session struct {
	store   storage.Store
	ownerID string
	cache   map[string]any // record id → *T, or nil for absent/cleared
	dirty   map[string]bool
}

// NewSession starts a unit of work for ownerID.
func NewSession(store storage.Store, ownerID string) *Session {
	return &Session{
		store:   store,
		ownerID: ownerID,
		cache:   make(map[string]any),
		dirty:   make(map[string]bool),
	}
}

// OwnerID returns the owner whose records the session reads and writes.
func (s *Session) OwnerID() string { return s.ownerID }

var jsonNull = []byte("null")

// Load returns the record decoded as T, or nil when it does not exist. Later
// loads of the same record return the same pointer, so callers mutate in
// place and then call Put.
func Load[T any](ctx context.Context, s *Session, recordID string) (*T, error) {
	if v, ok := s.cache[recordID]; ok {
		if v == nil {
			return nil, nil
		}
		t, ok := v.(*T)
		if !ok {
			return nil, fmt.Errorf("record %s already loaded as %T", recordID, v)
		}
		return t, nil
	}

	data, err := s.store.Load(ctx, s.ownerID, recordID)
	if err != nil {
		return nil, &turnerr.StoreError{Op: "load", OwnerID: s.ownerID, RecordID: recordID, Err: err}
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, jsonNull) {
		s.cache[recordID] = nil
		return nil, nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, &turnerr.StoreError{
			Op: "load", OwnerID: s.ownerID, RecordID: recordID,
			Err: fmt.Errorf("failed to unmarshal record: %w", err),
		}
	}
	s.cache[recordID] = &v
	return &v, nil
}

// Put stages v as the new value of recordID.
func Put[T any](s *Session, recordID string, v *T) {
	if v == nil {
		s.Clear(recordID)
		return
	}
	s.cache[recordID] = v
	s.dirty[recordID] = true
}

// Clear stages recordID as absent.
func (s *Session) Clear(recordID string) {
	s.cache[recordID] = nil
	s.dirty[recordID] = true
}

// Dirty returns the staged record ids in sorted order.
func (s *Session) Dirty() []string {
	ids := make([]string, 0, len(s.dirty))
	for id := range s.dirty {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Commit writes every staged record in one batch. On failure nothing is
// written and the session is discarded.
func (s *Session) Commit(ctx context.Context) error {
	if len(s.dirty) == 0 {
		return nil
	}
	batch := make(map[string][]byte, len(s.dirty))
	for id := range s.dirty {
		v := s.cache[id]
		if v == nil {
			batch[id] = jsonNull
			continue
		}
		data, err := json.Marshal(v)
		if err != nil {
			s.Discard()
			return fmt.Errorf("failed to marshal record %s: %w", id, err)
		}
		batch[id] = data
	}
	if err := s.store.SaveBatch(ctx, s.ownerID, batch); err != nil {
		s.Discard()
		return &turnerr.StoreError{Op: "save_batch", OwnerID: s.ownerID, Err: err}
	}
	s.dirty = make(map[string]bool)
	return nil
}

// Discard drops every cached and staged record.
func (s *Session) Discard() {
	s.cache = make(map[string]any)
	s.dirty = make(map[string]bool)
}
