package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rolstat/domain/core"
	"rolstat/internal"
	"rolstat/ports"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// NotifyChannel is the LISTEN/NOTIFY channel carrying store changes
const NotifyChannel = "rol_changes"

// changeNotice is the pg_notify payload
type changeNotice struct {
	Node     string  `json:"node"`
	Key      string  `json:"key"`
	OldValue *string `json:"old_value"`
	NewValue *string `json:"new_value"`
	Origin   string  `json:"origin"`
}

// KVStore keeps items in the rol_kv table and announces every write on
// NotifyChannel so other processes sharing the database see it.
type KVStore struct {
	db        *sqlx.DB
	node      core.ID
	publisher ports.ChangePublisher
	log       *internal.Logger
}

// NewKVStore creates a store over db. The rol_kv table must exist (see
// internal/migration).
func NewKVStore(db *sqlx.DB, publisher ports.ChangePublisher, logger *internal.Logger) *KVStore {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &KVStore{db: db, node: core.NewID(), publisher: publisher, log: logger.Named("postgres")}
}

func (s *KVStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM rol_kv WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

func (s *KVStore) SetItem(ctx context.Context, key, value string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var old sql.NullString
	err = tx.GetContext(ctx, &old, `SELECT value FROM rol_kv WHERE key = $1 FOR UPDATE`, key)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if old.Valid && old.String == value {
		return nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO rol_kv (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, value)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	ev := ports.ChangeEvent{Key: key, NewValue: &value, Origin: core.OriginFrom(ctx)}
	if old.Valid {
		ev.OldValue = &old.String
	}
	if err := s.notify(ctx, tx, ev); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", key, err)
	}
	s.publish(ev)
	return nil
}

func (s *KVStore) RemoveItem(ctx context.Context, key string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var old string
	err = tx.GetContext(ctx, &old, `DELETE FROM rol_kv WHERE key = $1 RETURNING value`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}

	ev := ports.ChangeEvent{Key: key, OldValue: &old, Origin: core.OriginFrom(ctx)}
	if err := s.notify(ctx, tx, ev); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit removal of %s: %w", key, err)
	}
	s.publish(ev)
	return nil
}

// notify queues the change on NotifyChannel; Postgres delivers it on commit
func (s *KVStore) notify(ctx context.Context, tx *sqlx.Tx, ev ports.ChangeEvent) error {
	payload, err := json.Marshal(changeNotice{
		Node:     s.node.String(),
		Key:      ev.Key,
		OldValue: ev.OldValue,
		NewValue: ev.NewValue,
		Origin:   ev.Origin.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode change notice: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `SELECT pg_notify($1, $2)`, NotifyChannel, string(payload)); err != nil {
		return fmt.Errorf("failed to notify change of %s: %w", ev.Key, err)
	}
	return nil
}

func (s *KVStore) Close() error {
	return s.db.Close()
}

// Listen relays notifications written by other processes to the publisher
// until ctx is done. Notices sent by this store are skipped: they were
// published when the write happened.
func (s *KVStore) Listen(ctx context.Context, dsn string) error {
	listener := pq.NewListener(dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			s.log.Warn("listener event %d: %v", ev, err)
		}
	})
	defer listener.Close()

	if err := listener.Listen(NotifyChannel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", NotifyChannel, err)
	}
	s.log.Info("listening on %s", NotifyChannel)

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			if n == nil {
				// Connection was re-established; changes may have been missed.
				s.log.Warn("listener reconnected")
				continue
			}
			s.relay(n.Extra)
		case <-time.After(90 * time.Second):
			go func() {
				if err := listener.Ping(); err != nil {
					s.log.Warn("listener ping failed: %v", err)
				}
			}()
		}
	}
}

func (s *KVStore) relay(payload string) {
	ev, ok := s.decodeNotice(payload)
	if !ok {
		return
	}
	s.publish(ev)
}

func (s *KVStore) decodeNotice(payload string) (ports.ChangeEvent, bool) {
	var notice changeNotice
	if err := json.Unmarshal([]byte(payload), &notice); err != nil {
		s.log.Warn("malformed change notice: %v", err)
		return ports.ChangeEvent{}, false
	}
	if notice.Node == s.node.String() {
		return ports.ChangeEvent{}, false
	}
	origin := core.Origin(notice.Origin)
	if origin == "" {
		origin = core.OriginExternal
	}
	return ports.ChangeEvent{
		Key:      notice.Key,
		OldValue: notice.OldValue,
		NewValue: notice.NewValue,
		Origin:   origin,
		At:       time.Now(),
	}, true
}

func (s *KVStore) publish(ev ports.ChangeEvent) {
	if s.publisher != nil {
		s.publisher.Publish(ev)
	}
}

var _ ports.KeyValueStore = (*KVStore)(nil)
