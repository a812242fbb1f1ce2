package mail

import (
	apperrors "github.com/akeren/waitlist-api/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

type dispatchMetrics struct {
	dispatches *prometheus.CounterVec
}

func newDispatchMetrics(reg prometheus.Registerer) *dispatchMetrics {
	m := &dispatchMetrics{
		dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waitlist_mail_dispatch_total",
				Help: "Welcome email dispatch attempts by outcome.",
			},
			[]string{"result"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.dispatches)
	}
	return m
}

func (m *dispatchMetrics) observe(err error) {
	result := "sent"
	switch {
	case err == nil:
	case apperrors.IsType(err, apperrors.ErrorTypeInvalidRequest):
		result = "invalid"
	case apperrors.IsType(err, apperrors.ErrorTypeDelivery):
		result = "failed"
	default:
		result = "error"
	}
	m.dispatches.WithLabelValues(result).Inc()
}
