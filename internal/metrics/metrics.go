package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeValid   = "valid"
	OutcomeInvalid = "invalid"
)

var (
	// Labels: outcome (valid, invalid), field (offending field, empty when valid)
	configValidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chore_helper",
		Name:      "chore_config_validations_total",
		Help:      "Chore configuration validations by outcome and rejected field",
	}, []string{"outcome", "field"})

	// Labels: allocation_mode
	choreCompletions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chore_helper",
		Name:      "chore_completions_total",
		Help:      "Chore completions by allocation mode",
	}, []string{"allocation_mode"})
)

// RecordValidation counts one validation attempt. field is the rejected
// field, or empty for a configuration that resolved.
func RecordValidation(field string) {
	if field == "" {
		configValidations.WithLabelValues(OutcomeValid, "").Inc()
		return
	}
	configValidations.WithLabelValues(OutcomeInvalid, field).Inc()
}

func RecordCompletion(allocationMode string) {
	choreCompletions.WithLabelValues(allocationMode).Inc()
}
