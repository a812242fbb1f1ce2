package waitlist

import (
	apperrors "github.com/akeren/waitlist-api/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

type enrollmentMetrics struct {
	enrollments *prometheus.CounterVec
}

func newEnrollmentMetrics(reg prometheus.Registerer) *enrollmentMetrics {
	m := &enrollmentMetrics{
		enrollments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waitlist_enrollments_total",
				Help: "Waitlist enrollment attempts by outcome.",
			},
			[]string{"result"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.enrollments)
	}
	return m
}

func (m *enrollmentMetrics) observe(err error) {
	m.enrollments.WithLabelValues(enrollmentResult(err)).Inc()
}

func enrollmentResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case apperrors.IsType(err, apperrors.ErrorTypeConflict):
		return "duplicate"
	case apperrors.IsType(err, apperrors.ErrorTypeInvalidRequest):
		return "invalid"
	default:
		return "error"
	}
}
