// Package memory provides a process-local KeyValueStore
package memory

import (
	"context"
	"sync"

	"rolstat/domain/core"
	"rolstat/ports"
)

// Store keeps values in a map. Changes are published in-process only; writing
// the value a key already holds is not a change.
type Store struct {
	mu        sync.RWMutex
	items     map[string]string
	publisher ports.ChangePublisher
}

// NewStore creates an empty store; publisher may be nil
func NewStore(publisher ports.ChangePublisher) *Store {
	return &Store{items: make(map[string]string), publisher: publisher}
}

func (s *Store) GetItem(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok, nil
}

func (s *Store) SetItem(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	old, had := s.items[key]
	s.items[key] = value
	s.mu.Unlock()

	if had && old == value {
		return nil
	}
	ev := ports.ChangeEvent{Key: key, NewValue: &value, Origin: core.OriginFrom(ctx)}
	if had {
		ev.OldValue = &old
	}
	s.publish(ev)
	return nil
}

func (s *Store) RemoveItem(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	old, had := s.items[key]
	delete(s.items, key)
	s.mu.Unlock()

	if had {
		s.publish(ports.ChangeEvent{Key: key, OldValue: &old, Origin: core.OriginFrom(ctx)})
	}
	return nil
}

func (s *Store) Close() error { return nil }

func (s *Store) publish(ev ports.ChangeEvent) {
	if s.publisher != nil {
		s.publisher.Publish(ev)
	}
}

var _ ports.KeyValueStore = (*Store)(nil)
