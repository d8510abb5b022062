package keysort

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// sortsTotal counts Sort calls by outcome: ok, invalid_record,
	// duplicate_key or canceled.
	sortsTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Namespace: "duesort",
		Name:      "sorts_total",
		Help:      "Total number of sort calls by outcome",
	}, []string{"outcome"})

	// recordsSorted counts records emitted by successful sorts.
	recordsSorted = promauto.NewCounter(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Namespace: "duesort",
		Name:      "records_sorted_total",
		Help:      "Total number of records returned by successful sorts",
	})

	// duplicateKeys counts key collisions by the policy that handled them.
	duplicateKeys = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Namespace: "duesort",
		Name:      "duplicate_keys_total",
		Help:      "Total number of duplicate sort keys encountered",
	}, []string{"policy"})

	sortDuration = promauto.NewHistogram(prometheus.HistogramOpts{ //nolint:gochecknoglobals
		Namespace: "duesort",
		Name:      "sort_duration_millis",
		Help:      "Time spent in Sort, in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 50, 100, 500, 1000, 5000},
	})
)

const (
	outcomeOK            = "ok"
	outcomeInvalidRecord = "invalid_record"
	outcomeDuplicateKey  = "duplicate_key"
	outcomeCanceled      = "canceled"
)

func init() {
	for _, o := range []string{outcomeOK, outcomeInvalidRecord, outcomeDuplicateKey, outcomeCanceled} {
		sortsTotal.WithLabelValues(o).Add(0)
	}

	for _, p := range []DuplicatePolicy{DuplicateFail, DuplicateKeepOrder, DuplicateLastWins} {
		duplicateKeys.WithLabelValues(p.String()).Add(0)
	}
}
