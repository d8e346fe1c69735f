// Package filestore keeps items in a JSON file that several processes can
// share. A filesystem watcher turns writes made by other processes into
// change events.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"rolstat/domain/core"
	"rolstat/internal"
	"rolstat/ports"

	"github.com/fsnotify/fsnotify"
)

// FileName is the name of the store file inside its directory
const FileName = "rol_storage.json"

// Store reads the file on every access so writes from other processes are
// visible as soon as they land.
type Store struct {
	path      string
	mu        sync.Mutex
	last      map[string]string
	publisher ports.ChangePublisher
	log       *internal.Logger
}

// NewStore opens the store in dir, creating the directory if needed
func NewStore(dir string, publisher ports.ChangePublisher, logger *internal.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory %s: %w", dir, err)
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Store{
		path:      filepath.Join(dir, FileName),
		publisher: publisher,
		log:       logger.Named("filestore"),
	}
	items, err := s.read()
	if err != nil {
		return nil, err
	}
	s.last = items
	return s, nil
}

// Path returns the store file
func (s *Store) Path() string { return s.path }

func (s *Store) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	items := map[string]string{}
	if len(data) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.path, err)
	}
	return items, nil
}

// write replaces the file atomically so readers never see a partial document
func (s *Store) write(items map[string]string) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".rol_storage-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) GetItem(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.read()
	if err != nil {
		return "", false, err
	}
	v, ok := items[key]
	return v, ok, nil
}

func (s *Store) SetItem(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	items, err := s.read()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	old, had := items[key]
	if had && old == value {
		s.mu.Unlock()
		return nil
	}
	items[key] = value
	if err := s.write(items); err != nil {
		s.mu.Unlock()
		return err
	}
	s.last = items
	s.mu.Unlock()

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
	items, err := s.read()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	old, had := items[key]
	if !had {
		s.mu.Unlock()
		return nil
	}
	delete(items, key)
	if err := s.write(items); err != nil {
		s.mu.Unlock()
		return err
	}
	s.last = items
	s.mu.Unlock()

	s.publish(ports.ChangeEvent{Key: key, OldValue: &old, Origin: core.OriginFrom(ctx)})
	return nil
}

func (s *Store) Close() error { return nil }

// Watch publishes changes made to the file by other processes until ctx is
// done. Writes made through this Store are already published and are not
// reported again.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: atomic renames replace the file's inode.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(s.path), err)
	}
	s.log.Info("watching %s", s.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(s.path) {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove) {
				s.Sync()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("watcher error: %v", err)
		}
	}
}

// Sync re-reads the file and publishes an external change event for every key
// that differs from the last known contents.
func (s *Store) Sync() {
	s.mu.Lock()
	current, err := s.read()
	if err != nil {
		s.mu.Unlock()
		s.log.Warn("failed to re-read store: %v", err)
		return
	}
	previous := s.last
	s.last = current
	s.mu.Unlock()

	for _, ev := range diff(previous, current) {
		s.publish(ev)
	}
}

func diff(previous, current map[string]string) []ports.ChangeEvent {
	var events []ports.ChangeEvent
	for key, value := range current {
		old, had := previous[key]
		if had && old == value {
			continue
		}
		v := value
		ev := ports.ChangeEvent{Key: key, NewValue: &v, Origin: core.OriginExternal}
		if had {
			o := old
			ev.OldValue = &o
		}
		events = append(events, ev)
	}
	for key, old := range previous {
		if _, still := current[key]; still {
			continue
		}
		o := old
		events = append(events, ports.ChangeEvent{Key: key, OldValue: &o, Origin: core.OriginExternal})
	}
	return events
}

func (s *Store) publish(ev ports.ChangeEvent) {
	if s.publisher != nil {
		s.publisher.Publish(ev)
	}
}

var _ ports.KeyValueStore = (*Store)(nil)
