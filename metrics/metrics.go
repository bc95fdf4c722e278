package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(
		ProposalsTotal, SubmissionsTotal,
		SubmissionDuration, MiningDuration,
		PendingProposals,
	)
}

// ProposalsTotal counts ingested proposals by result.
var ProposalsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "reconciler_proposals_total",
		Help: "Proposals offered to the pool, by result",
	},
	[]string{"result"}, // added | duplicate | malformed
)

var SubmissionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "reconciler_submissions_total",
		Help: "Ledger submissions, by outcome",
	},
	[]string{"status"}, // submitted | failed | timeout | duplicate
)

var SubmissionDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "reconciler_submission_duration_seconds",
		Help:    "Time spent in a single ledger submission",
		Buckets: prometheus.DefBuckets,
	},
)

var MiningDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "reconciler_mining_duration_seconds",
		Help:    "Time to find a satisfying nonce",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	},
)

var PendingProposals = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "reconciler_pending_proposals",
		Help: "Proposals waiting in the pool",
	},
)

// WritePrometheus writes the registry in text exposition format.
func WritePrometheus(w io.Writer) error {
	families, err := DefaultRegistry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
