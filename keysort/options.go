package keysort

import (
	"fmt"
	"log/slog"
	"strings"

	duerrors "github.com/amp-labs/duesort/errors"
	"go.opentelemetry.io/otel/trace"
)

// DuplicatePolicy decides what happens when two records share a key.
type DuplicatePolicy int

const (
	// DuplicateFail rejects the input with ErrDuplicateKey.
	DuplicateFail DuplicatePolicy = iota
	// DuplicateKeepOrder keeps all records; ties keep their input order.
	DuplicateKeepOrder
	// DuplicateLastWins keeps the last record seen for a key.
	DuplicateLastWins
)

func (p DuplicatePolicy) String() string {
	switch p {
	case DuplicateFail:
		return "fail"
	case DuplicateKeepOrder:
		return "keep-order"
	case DuplicateLastWins:
		return "last-wins"
	default:
		return fmt.Sprintf("DuplicatePolicy(%d)", int(p))
	}
}

// PolicyNames lists the accepted spellings for ParseDuplicatePolicy.
var PolicyNames = []string{"fail", "keep-order", "last-wins"} //nolint:gochecknoglobals

// ParseDuplicatePolicy parses fail, keep-order or last-wins.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fail", "":
		return DuplicateFail, nil
	case "keep-order", "stable":
		return DuplicateKeepOrder, nil
	case "last-wins", "overwrite":
		return DuplicateLastWins, nil
	default:
		return DuplicateFail, fmt.Errorf("%w: %q", duerrors.ErrUnknownPolicy, s)
	}
}

// Comparison selects how keys are ordered.
type Comparison int

const (
	// CompareLexicographic compares keys byte by byte.
	CompareLexicographic Comparison = iota
	// CompareNatural compares digit runs numerically.
	CompareNatural
)

func (c Comparison) String() string {
	switch c {
	case CompareLexicographic:
		return "lexicographic"
	case CompareNatural:
		return "natural"
	default:
		return fmt.Sprintf("Comparison(%d)", int(c))
	}
}

// ComparisonNames lists the accepted spellings for ParseComparison.
var ComparisonNames = []string{"lexicographic", "natural"} //nolint:gochecknoglobals

// ParseComparison parses lexicographic or natural.
func ParseComparison(s string) (Comparison, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lexicographic", "lex", "":
		return CompareLexicographic, nil
	case "natural", "nat":
		return CompareNatural, nil
	default:
		return CompareLexicographic, fmt.Errorf("%w: %q", duerrors.ErrUnknownComparison, s)
	}
}

type options struct {
	keyer      keyer
	duplicates DuplicatePolicy
	comparison Comparison
	logger     *slog.Logger
	tracer     trace.Tracer
}

func defaultOptions() options {
	return options{
		keyer: keyer{
			separator: DefaultSeparator,
			layout:    DefaultDateLayout,
			accepted:  DefaultAcceptedLayouts,
			canonical: true,
		},
		duplicates: DuplicateFail,
		comparison: CompareLexicographic,
	}
}

// Option configures a Sorter.
type Option func(*options)

// WithSeparator sets the string placed between date and identifier.
func WithSeparator(sep string) Option {
	return func(o *options) {
		o.keyer.separator = sep
	}
}

func WithDuplicatePolicy(p DuplicatePolicy) Option {
	return func(o *options) {
		o.duplicates = p
	}
}

func WithComparison(c Comparison) Option {
	return func(o *options) {
		o.comparison = c
	}
}

// WithDateLayout sets the layout due dates are written in. It should be
// fixed width when lexicographic comparison is used.
func WithDateLayout(layout string) Option {
	return func(o *options) {
		if layout != "" {
			o.keyer.layout = layout
		}
	}
}

// WithAcceptedLayouts replaces the layouts tried when parsing string dates.
func WithAcceptedLayouts(layouts ...string) Option {
	return func(o *options) {
		if len(layouts) > 0 {
			o.keyer.accepted = layouts
		}
	}
}

// WithCanonicalDates controls whether string due dates are parsed and
// rewritten in the date layout (true, the default) or used verbatim.
func WithCanonicalDates(enabled bool) Option {
	return func(o *options) {
		o.keyer.canonical = enabled
	}
}

// WithNormalizedIDs applies Unicode NFC normalization to identifiers, so
// composed and decomposed spellings of the same text produce the same key.
func WithNormalizedIDs(enabled bool) Option {
	return func(o *options) {
		o.keyer.normalize = enabled
	}
}

// WithLogger sets the logger. By default logger.Get(ctx) is used per call.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithTracer sets the tracer. By default the global provider is used.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}
