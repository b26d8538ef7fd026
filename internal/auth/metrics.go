package auth

import "github.com/prometheus/client_golang/prometheus"

const (
	resultSuccess    = "success"
	resultFailed     = "failed"
	resultInvalid    = "invalid"
	resultInProgress = "in_progress"
	resultCanceled   = "canceled"
	resultError      = "error"
)

type Metrics struct {
	Logins *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_logins_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),
	}
	reg.MustRegister(m.Logins)
	return m
}
