// Package envutil reads typed configuration from environment variables.
//
//	sep := envutil.String(ctx, "DUESORT_SEPARATOR", envutil.Default("-")).ValueOrFatal()
//	workers := envutil.Int[int](ctx, "DUESORT_BATCH_WORKERS", envutil.Default(4)).ValueOrElse(4)
//
// Every reader consults context overrides (see WithEnvOverride) before the
// process environment.
package envutil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

var ErrNotAllowed = errors.New("value not allowed")

// get returns a Reader for the given key.
func get(ctx context.Context, key string) Reader[string] {
	if val, ok := getEnvOverride(ctx, key); ok {
		return Reader[string]{key: key, present: true, value: val}
	}

	val, ok := os.LookupEnv(key)

	return Reader[string]{
		key:     key,
		present: ok,
		value:   val,
	}
}

func apply[T any](rdr Reader[T], opts []Option[T]) Reader[T] {
	for _, opt := range opts {
		rdr = opt(rdr)
	}

	return rdr
}

// String returns a Reader for the given environment variable key.
func String(ctx context.Context, key string, opts ...Option[string]) Reader[string] {
	return apply(get(ctx, key), opts)
}

// Bool accepts the forms understood by strconv.ParseBool.
func Bool(ctx context.Context, key string, opts ...Option[bool]) Reader[bool] {
	rdr := Map(get(ctx, key), func(s string) (bool, error) {
		return strconv.ParseBool(strings.TrimSpace(s))
	})

	return apply(rdr, opts)
}

type Intish interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

func Int[I Intish](ctx context.Context, key string, opts ...Option[I]) Reader[I] {
	rdr := Map(get(ctx, key), func(s string) (I, error) {
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)

		return I(v), err
	})

	return apply(rdr, opts)
}

func Duration(ctx context.Context, key string, opts ...Option[time.Duration]) Reader[time.Duration] {
	rdr := Map(get(ctx, key), func(s string) (time.Duration, error) {
		return time.ParseDuration(strings.TrimSpace(s))
	})

	return apply(rdr, opts)
}

// SlogLevel parses debug, info, warn or error (case-insensitive).
func SlogLevel(ctx context.Context, key string, opts ...Option[slog.Level]) Reader[slog.Level] {
	rdr := Map(get(ctx, key), func(s string) (slog.Level, error) {
		var lvl slog.Level

		err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(s))))

		return lvl, err
	})

	return apply(rdr, opts)
}

// OneOf reads a string that must be one of the allowed values, compared
// case-insensitively. The returned value is lower-cased.
func OneOf(ctx context.Context, key string, allowed []string, opts ...Option[string]) Reader[string] {
	rdr := get(ctx, key).Map(func(s string) (string, error) {
		s = strings.ToLower(strings.TrimSpace(s))
		if !slices.Contains(allowed, s) {
			return s, fmt.Errorf("%w: %q (allowed: %s)", ErrNotAllowed, s, strings.Join(allowed, ", "))
		}

		return s, nil
	})

	return apply(rdr, opts)
}
