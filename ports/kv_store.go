package ports

import (
	"context"
	"time"

	"rolstat/domain/core"
)

// KeyValueStore is a durable string key-value store shared by every context of
// the application, in the manner of browser local storage. Writers do not
// coordinate: the last write wins.
type KeyValueStore interface {
	// GetItem returns the value under key; found is false when the key is absent
	GetItem(ctx context.Context, key string) (value string, found bool, err error)

	// SetItem stores value under key. The writer is read from core.OriginFrom(ctx).
	SetItem(ctx context.Context, key, value string) error

	// RemoveItem deletes key. Removing an absent key is not an error.
	RemoveItem(ctx context.Context, key string) error

	// Close releases the store's resources
	Close() error
}

// ChangeEvent describes one key changing in a KeyValueStore
type ChangeEvent struct {
	Key      string      `json:"key"`
	OldValue *string     `json:"old_value"`
	NewValue *string     `json:"new_value"`
	Origin   core.Origin `json:"origin"`
	At       time.Time   `json:"at"`
}

// Removed reports whether the event deleted the key
func (e ChangeEvent) Removed() bool { return e.NewValue == nil }

// ChangePublisher receives change events from stores
type ChangePublisher interface {
	Publish(ev ChangeEvent)
}

// Subscription is a registered change listener
type Subscription interface {
	Close()
}

// ChangeNotifier lets a context observe changes made by other contexts.
// Events whose Origin equals the subscriber's origin are not delivered, unless
// the origin is core.OriginExternal.
type ChangeNotifier interface {
	Subscribe(origin core.Origin, fn func(ChangeEvent)) Subscription
}
