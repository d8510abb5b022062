package keysort

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	duerrors "github.com/amp-labs/duesort/errors"
	"github.com/amp-labs/duesort/logger"
	"github.com/amp-labs/duesort/maps"
	"github.com/amp-labs/duesort/sortable"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/amp-labs/duesort/keysort"

// cancelCheckInterval is how many records are keyed between context checks.
const cancelCheckInterval = 1024

// Sorter orders records of type R. It holds no per-call state and is safe
// for concurrent use.
type Sorter[R any] struct {
	fields Fields[R]
	opts   options
}

// New returns a Sorter that reads fields with the given accessors.
func New[R any](fields Fields[R], opts ...Option) *Sorter[R] {
	o := defaultOptions()

	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return &Sorter[R]{fields: fields, opts: o}
}

// Sort is a shortcut for New(RecordFields[R](), opts...).Sort(ctx, records).
func Sort[R Record](ctx context.Context, records []R, opts ...Option) ([]R, error) {
	return New(RecordFields[R](), opts...).Sort(ctx, records)
}

// Policy returns the duplicate policy in effect.
func (s *Sorter[R]) Policy() DuplicatePolicy {
	return s.opts.duplicates
}

// Comparison returns the key comparison in effect.
func (s *Sorter[R]) Comparison() Comparison {
	return s.opts.comparison
}

func (s *Sorter[R]) log(ctx context.Context) *slog.Logger {
	if s.opts.logger != nil {
		return s.opts.logger
	}

	return logger.Get(ctx)
}

func (s *Sorter[R]) tracer() trace.Tracer {
	if s.opts.tracer != nil {
		return s.opts.tracer
	}

	return otel.Tracer(tracerName)
}

// Key derives the sort key of a single record.
func (s *Sorter[R]) Key(record R) (string, error) {
	due, dueOK := s.fields.DueDate(record)
	id, idOK := s.fields.ID(record)

	key, field, err := s.opts.keyer.key(due, dueOK, id, idOK)
	if err != nil {
		return "", fmt.Errorf("%s: %w", field, err)
	}

	return key, nil
}

// Keys derives the key of every record, in input order. It stops at the
// first invalid record.
func (s *Sorter[R]) Keys(ctx context.Context, records []R) ([]string, error) {
	keys := make([]string, len(records))

	for i, rec := range records {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		due, dueOK := s.fields.DueDate(rec)
		id, idOK := s.fields.ID(rec)

		key, field, err := s.opts.keyer.key(due, dueOK, id, idOK)
		if err != nil {
			return nil, &RecordError{Index: i, Field: field, Err: err}
		}

		keys[i] = key
	}

	return keys, nil
}

// Sort returns a new slice holding the records in ascending key order.
// The input slice is left untouched. An empty input yields an empty,
// non-nil slice.
func (s *Sorter[R]) Sort(ctx context.Context, records []R) ([]R, error) {
	ctx, span := s.tracer().Start(ctx, "keysort.Sort", trace.WithAttributes(
		attribute.Int("records", len(records)),
		attribute.String("duplicates", s.opts.duplicates.String()),
		attribute.String("comparison", s.opts.comparison.String()),
	))
	defer span.End()

	start := time.Now()

	out, dropped, err := s.sort(ctx, records)

	sortDuration.Observe(float64(time.Since(start).Microseconds()) / 1000.0) //nolint:mnd

	if err != nil {
		sortsTotal.WithLabelValues(outcomeOf(err)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "sort failed")

		return nil, err
	}

	sortsTotal.WithLabelValues(outcomeOK).Inc()
	recordsSorted.Add(float64(len(out)))
	span.SetAttributes(attribute.Int("dropped", dropped))
	span.SetStatus(codes.Ok, "")

	s.log(ctx).Debug("sorted records",
		"records", len(records),
		"dropped", dropped,
		"duplicates", s.opts.duplicates.String(),
		"comparison", s.opts.comparison.String(),
		"elapsed", time.Since(start))

	return out, nil
}

func (s *Sorter[R]) sort(ctx context.Context, records []R) ([]R, int, error) {
	keys, err := s.Keys(ctx, records)
	if err != nil {
		return nil, 0, err
	}

	switch s.opts.comparison {
	case CompareLexicographic:
		return build(ctx, s, keys, records, func(k string) sortable.String { return sortable.String(k) })
	case CompareNatural:
		return build(ctx, s, keys, records, func(k string) sortable.Natural { return sortable.Natural(k) })
	default:
		return nil, 0, fmt.Errorf("%w: %s", duerrors.ErrUnknownComparison, s.opts.comparison)
	}
}

// entry remembers where a record came from so collisions can be reported.
type entry[R any] struct {
	index  int
	record R
}

// build inserts every (key, record) pair into an ordered index and reads it
// back in key order. Each index slot holds the records that share a key;
// outside DuplicateKeepOrder it never holds more than one.
func build[K sortable.Sortable[K], R any](
	ctx context.Context, s *Sorter[R], keys []string, records []R, toKey func(string) K,
) ([]R, int, error) {
	index := maps.NewRedBlackTreeMap[K, []entry[R]]()
	dropped := 0

	var dupErr error

	for i, rec := range records {
		key := toKey(keys[i])

		index.Upsert(key, func(bucket []entry[R], exists bool) []entry[R] {
			if !exists {
				return []entry[R]{{index: i, record: rec}}
			}

			duplicateKeys.WithLabelValues(s.opts.duplicates.String()).Inc()

			switch s.opts.duplicates {
			case DuplicateKeepOrder:
				return append(bucket, entry[R]{index: i, record: rec})
			case DuplicateLastWins:
				dropped += len(bucket)
				s.log(ctx).Warn("duplicate sort key, earlier record dropped",
					"key", keys[i], "dropped_index", bucket[len(bucket)-1].index, "kept_index", i)

				return []entry[R]{{index: i, record: rec}}
			case DuplicateFail:
				fallthrough
			default:
				if dupErr == nil {
					dupErr = &DuplicateKeyError{Key: keys[i], First: bucket[0].index, Second: i}
				}

				return bucket
			}
		})

		if dupErr != nil {
			return nil, 0, dupErr
		}
	}

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("distinct_keys", index.Size()))

	out := make([]R, 0, len(records)-dropped)

	for _, bucket := range index.Seq() {
		for _, e := range bucket {
			out = append(out, e.record)
		}
	}

	return out, dropped, nil
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, duerrors.ErrDuplicateKey):
		return outcomeDuplicateKey
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return outcomeCanceled
	default:
		return outcomeInvalidRecord
	}
}
