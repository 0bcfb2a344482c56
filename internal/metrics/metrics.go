// README: Prometheus collectors for autosave, submission and catalog resolution.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "spaceseller"

// Autosave results.
const (
	AutosaveWritten   = "written"
	AutosaveUnchanged = "unchanged"
	AutosaveDropped   = "dropped"
	AutosaveFailed    = "failed"
)

var (
	AutosaveAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "autosave_attempts_total",
		Help:      "Draft autosave attempts by result.",
	}, []string{"result"})

	SubmissionStepFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submission_step_failures_total",
		Help:      "Order submission aborts by failing step.",
	}, []string{"step"})

	Submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_total",
		Help:      "Order submissions by outcome and category.",
	}, []string{"outcome", "category"})

	AddOnCatalogMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "addon_catalog_misses_total",
		Help:      "Selected add-ons that could not be resolved against the catalog and were skipped.",
	})
)
