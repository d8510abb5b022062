package keysort

import (
	"context"

	duerrors "github.com/amp-labs/duesort/errors"
	"github.com/amp-labs/duesort/envutil"
)

// Environment variables read by OptionsFromEnv.
const (
	EnvSeparator      = "DUESORT_SEPARATOR"
	EnvDuplicates     = "DUESORT_DUPLICATES"
	EnvCompare        = "DUESORT_COMPARE"
	EnvDateLayout     = "DUESORT_DATE_LAYOUT"
	EnvCanonicalDates = "DUESORT_CANONICAL_DATES"
	EnvNormalizeIDs   = "DUESORT_NORMALIZE_IDS"
)

// OptionsFromEnv builds sorter options from the environment. Unset
// variables leave the defaults alone; malformed ones are reported together.
func OptionsFromEnv(ctx context.Context) ([]Option, error) {
	var (
		opts []Option
		errs duerrors.Collection
	)

	envutil.String(ctx, EnvSeparator).DoWithValue(func(sep string) {
		opts = append(opts, WithSeparator(sep))
	})

	envutil.String(ctx, EnvDateLayout).DoWithValue(func(layout string) {
		opts = append(opts, WithDateLayout(layout))
	})

	policy := envutil.Map(envutil.String(ctx, EnvDuplicates), ParseDuplicatePolicy)
	if policy.HasError() {
		_, err := policy.Value()
		errs.Add(err)
	}

	policy.DoWithValue(func(p DuplicatePolicy) {
		opts = append(opts, WithDuplicatePolicy(p))
	})

	cmp := envutil.Map(envutil.String(ctx, EnvCompare), ParseComparison)
	if cmp.HasError() {
		_, err := cmp.Value()
		errs.Add(err)
	}

	cmp.DoWithValue(func(c Comparison) {
		opts = append(opts, WithComparison(c))
	})

	for key, apply := range map[string]func(bool) Option{
		EnvCanonicalDates: WithCanonicalDates,
		EnvNormalizeIDs:   WithNormalizedIDs,
	} {
		rdr := envutil.Bool(ctx, key)
		if rdr.HasError() {
			_, err := rdr.Value()
			errs.Add(err)
		}

		rdr.DoWithValue(func(b bool) {
			opts = append(opts, apply(b))
		})
	}

	if errs.HasError() {
		return nil, errs.GetError()
	}

	return opts, nil
}
