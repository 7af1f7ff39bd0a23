package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemStore is an in-memory Store used by tests and local development
// runs without a database. FailReads/FailWrites inject faults.
type MemStore struct {
	notifier Notifier

	mu          sync.Mutex
	collections map[string][]Document

	FailReads  error
	FailWrites error
}

func NewMemStore(notifier Notifier) *MemStore {
	return &MemStore{
		notifier:    notifier,
		collections: make(map[string][]Document),
	}
}

func (s *MemStore) FetchAll(_ context.Context, collection string) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailReads != nil {
		return nil, s.FailReads
	}
	docs := s.collections[collection]
	out := make([]Document, len(docs))
	copy(out, docs)
	return out, nil
}

func (s *MemStore) Get(_ context.Context, collection, id string) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailReads != nil {
		return Document{}, s.FailReads
	}
	for _, d := range s.collections[collection] {
		if d.ID == id {
			return d, nil
		}
	}
	return Document{}, fmt.Errorf("%s/%s: not found", collection, id)
}

func (s *MemStore) Create(_ context.Context, collection string, data json.RawMessage) (string, error) {
	s.mu.Lock()
	if s.FailWrites != nil {
		err := s.FailWrites
		s.mu.Unlock()
		return "", err
	}
	id := uuid.NewString()
	s.collections[collection] = append(s.collections[collection], Document{ID: id, Data: data})
	s.mu.Unlock()

	s.publish(collection)
	return id, nil
}

func (s *MemStore) Upsert(_ context.Context, collection, id string, data json.RawMessage) error {
	s.mu.Lock()
	if s.FailWrites != nil {
		err := s.FailWrites
		s.mu.Unlock()
		return err
	}
	docs := s.collections[collection]
	replaced := false
	for i := range docs {
		if docs[i].ID == id {
			docs[i].Data = data
			replaced = true
			break
		}
	}
	if !replaced {
		s.collections[collection] = append(docs, Document{ID: id, Data: data})
	}
	s.mu.Unlock()

	s.publish(collection)
	return nil
}

func (s *MemStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	if s.FailWrites != nil {
		err := s.FailWrites
		s.mu.Unlock()
		return err
	}
	docs := s.collections[collection]
	kept := docs[:0]
	for _, d := range docs {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	s.collections[collection] = kept
	s.mu.Unlock()

	s.publish(collection)
	return nil
}

// Seed writes a document without firing notifications.
func (s *MemStore) Seed(collection, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection] = append(s.collections[collection], Document{ID: id, Data: data})
	return nil
}

func (s *MemStore) publish(collection string) {
	if s.notifier == nil {
		return
	}
	_ = s.notifier.Publish(collection)
}
