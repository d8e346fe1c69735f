// Package storage persists the ROL in a key-value store under two keys: the
// JSON list and a flag recording that a ROL was generated.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"rolstat/domain/core"
	"rolstat/internal"
	"rolstat/internal/errors"
	"rolstat/ports"
)

const (
	// KeyValues holds the JSON-encoded sorted list
	KeyValues = "rol_values"
	// KeyGenerated holds GeneratedMarker once a ROL has been generated
	KeyGenerated = "rol_generated"
	// GeneratedMarker is the only flag value that makes KeyValues meaningful
	GeneratedMarker = "1"
)

// Bridge saves, loads and clears the ROL on behalf of one context. Storage
// failures are logged as warnings and returned; they never panic.
type Bridge struct {
	store  ports.KeyValueStore
	origin core.Origin
	log    *internal.Logger
}

// NewBridge binds a bridge to store. Writes are attributed to origin unless
// the caller's context already names one.
func NewBridge(store ports.KeyValueStore, origin core.Origin, logger *internal.Logger) *Bridge {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Bridge{store: store, origin: origin, log: logger.Named("storage")}
}

// Origin returns the context the bridge writes as
func (b *Bridge) Origin() core.Origin { return b.origin }

// Save sets the generated flag and then writes list under KeyValues, so a
// listener woken by the KeyValues change already sees the flag. A nil list is
// saved as an empty one.
func (b *Bridge) Save(ctx context.Context, list []string) error {
	if list == nil {
		list = []string{}
	}
	payload, err := json.Marshal(list)
	if err != nil {
		return b.fail("save", err)
	}

	ctx = b.writeContext(ctx)
	if err := b.store.SetItem(ctx, KeyGenerated, GeneratedMarker); err != nil {
		return b.fail("save", err)
	}
	if err := b.store.SetItem(ctx, KeyValues, string(payload)); err != nil {
		return b.fail("save", err)
	}
	b.log.Debug("saved %d value(s)", len(list))
	return nil
}

// Load returns the persisted list, or an empty list when no ROL was generated
// or the payload cannot be read as a list. It never fails.
func (b *Bridge) Load(ctx context.Context) []string {
	flag, found, err := b.store.GetItem(ctx, KeyGenerated)
	if err != nil {
		b.log.Warn("load failed reading %s: %v", KeyGenerated, err)
		return []string{}
	}
	if !found || flag != GeneratedMarker {
		return []string{}
	}

	raw, found, err := b.store.GetItem(ctx, KeyValues)
	if err != nil {
		b.log.Warn("load failed reading %s: %v", KeyValues, err)
		return []string{}
	}
	if !found || raw == "" {
		return []string{}
	}

	list, err := DecodeList(raw)
	if err != nil {
		b.log.Warn("load ignored %s: %v", KeyValues, err)
		return []string{}
	}
	return list
}

// Clear removes both keys. Clearing an empty store succeeds.
func (b *Bridge) Clear(ctx context.Context) error {
	ctx = b.writeContext(ctx)
	if err := b.store.RemoveItem(ctx, KeyValues); err != nil {
		return b.fail("clear", err)
	}
	if err := b.store.RemoveItem(ctx, KeyGenerated); err != nil {
		return b.fail("clear", err)
	}
	b.log.Debug("cleared")
	return nil
}

func (b *Bridge) writeContext(ctx context.Context) context.Context {
	if core.OriginFrom(ctx) != core.OriginExternal {
		return ctx
	}
	return core.WithOrigin(ctx, b.origin)
}

func (b *Bridge) fail(op string, err error) error {
	b.log.Warn("%s failed: %v", op, err)
	return errors.StorageError(op, fmt.Errorf("%w: %v", core.ErrStorage, err))
}

// DecodeList parses a persisted payload. It must be a JSON array of scalars;
// numbers, booleans and null are turned into the text JavaScript's String()
// would produce.
func DecodeList(raw string) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()

	var items []interface{}
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrPayloadMalformed, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after list", core.ErrPayloadMalformed)
	}
	if items == nil {
		// JSON null decodes into a nil slice.
		return nil, fmt.Errorf("%w: null", core.ErrPayloadMalformed)
	}

	list := make([]string, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case string:
			list[i] = v
		case json.Number:
			list[i] = numberText(v)
		case bool:
			list[i] = strconv.FormatBool(v)
		case nil:
			list[i] = "null"
		default:
			return nil, fmt.Errorf("%w: element %d is %T", core.ErrPayloadMalformed, i, item)
		}
	}
	return list, nil
}

func numberText(n json.Number) string {
	f, err := n.Float64()
	if err != nil {
		return n.String()
	}
	if math.IsInf(f, 0) {
		if f > 0 {
			return "Infinity"
		}
		return "-Infinity"
	}
	if f != 0 && (math.Abs(f) >= 1e21 || math.Abs(f) < 1e-6) {
		return trimExponent(strconv.FormatFloat(f, 'e', -1, 64))
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// trimExponent drops the leading zeros Go pads exponents with, so 1e-07
// reads 1e-7.
func trimExponent(s string) string {
	i := strings.IndexByte(s, 'e')
	if i < 0 || i+2 > len(s) {
		return s
	}
	digits := strings.TrimLeft(s[i+2:], "0")
	if digits == "" {
		digits = "0"
	}
	return s[:i+2] + digits
}
