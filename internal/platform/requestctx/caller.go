package requestctx

import "context"

// callerContextKey is the context key for the authenticated caller address.
type callerContextKey struct{}

// WithCaller stores a caller account address in context.
func WithCaller(ctx context.Context, address string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, callerContextKey{}, address)
}

// CallerFromContext returns the caller account address stored in context.
func CallerFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(callerContextKey{}).(string)
	return value
}
