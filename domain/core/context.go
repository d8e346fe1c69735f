package core

import "context"

type originKey struct{}

// WithOrigin tags ctx with the context that is about to write to the store
func WithOrigin(ctx context.Context, origin Origin) context.Context {
	return context.WithValue(ctx, originKey{}, origin)
}

// OriginFrom returns the origin carried by ctx, or OriginExternal
func OriginFrom(ctx context.Context) Origin {
	if o, ok := ctx.Value(originKey{}).(Origin); ok && o != "" {
		return o
	}
	return OriginExternal
}
