package keysort

import (
	"context"
	"fmt"

	duerrors "github.com/amp-labs/duesort/errors"
	"github.com/amp-labs/duesort/maps"
	"github.com/amp-labs/duesort/sortable"
)

// IsSorted reports whether records are already in ascending key order.
// Equal adjacent keys count as sorted.
func (s *Sorter[R]) IsSorted(ctx context.Context, records []R) (bool, error) {
	keys, err := s.Keys(ctx, records)
	if err != nil {
		return false, err
	}

	switch s.opts.comparison {
	case CompareLexicographic:
		return keysSorted(keys, func(k string) sortable.String { return sortable.String(k) }), nil
	case CompareNatural:
		return keysSorted(keys, func(k string) sortable.Natural { return sortable.Natural(k) }), nil
	default:
		return false, fmt.Errorf("%w: %s", duerrors.ErrUnknownComparison, s.opts.comparison)
	}
}

func keysSorted[K sortable.Sortable[K]](keys []string, toKey func(string) K) bool {
	for i := 1; i < len(keys); i++ {
		if sortable.Compare(toKey(keys[i-1]), toKey(keys[i])) > 0 {
			return false
		}
	}

	return true
}

// Validate checks every record instead of stopping at the first problem.
// It reports invalid records and, under DuplicateFail, every repeated key.
// The returned error joins all findings; nil means Sort would succeed.
func (s *Sorter[R]) Validate(ctx context.Context, records []R) error {
	var (
		errs  duerrors.Collection
		seen  = maps.NewRedBlackTreeMap[sortable.String, int]()
		fails = s.opts.duplicates == DuplicateFail
	)

	for i, rec := range records {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		due, dueOK := s.fields.DueDate(rec)
		id, idOK := s.fields.ID(rec)

		key, field, err := s.opts.keyer.key(due, dueOK, id, idOK)
		if err != nil {
			errs.Add(&RecordError{Index: i, Field: field, Err: err})

			continue
		}

		if first, dup := seen.Get(sortable.String(key)); dup {
			if fails {
				errs.Add(&DuplicateKeyError{Key: key, First: first, Second: i})
			}

			continue
		}

		seen.Put(sortable.String(key), i)
	}

	s.log(ctx).Debug("validated records",
		"records", len(records),
		"distinct_keys", seen.Size(),
		"problems", errs.Len())

	return errs.GetError()
}
