package envutil

import "context"

type envContextKey string

// WithEnvOverride returns a context in which key reads as value, regardless
// of the process environment. Readers that receive this context see the
// override first. Tests use it to avoid mutating the real environment.
func WithEnvOverride(ctx context.Context, key string, value string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, envContextKey(key), value)
}

// WithEnvOverrides applies several overrides at once.
func WithEnvOverrides(ctx context.Context, values map[string]string) context.Context {
	for k, v := range values {
		ctx = WithEnvOverride(ctx, k, v)
	}

	return ctx
}

func getEnvOverride(ctx context.Context, key string) (string, bool) {
	if ctx == nil {
		return "", false
	}

	val, ok := ctx.Value(envContextKey(key)).(string)

	return val, ok
}
