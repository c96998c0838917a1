package http

import (
	"errors"

	"github.com/layer-3/warden/core"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	logins        *prometheus.CounterVec
	verifications *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "warden",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "warden",
			Name:      "token_verifications_total",
			Help:      "Bearer token verifications by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.logins, m.verifications)
	return m
}

func (m *metrics) observeLogin(err error) {
	m.logins.WithLabelValues(string(loginOutcome(err))).Inc()
}

func (m *metrics) observeVerification(err error) {
	outcome := "valid"
	if err != nil {
		outcome = "invalid"
	}
	m.verifications.WithLabelValues(outcome).Inc()
}

func loginOutcome(err error) core.LoginOutcome {
	switch {
	case err == nil:
		return core.LoginSuccess
	case errors.Is(err, core.ErrMissingCredentials):
		return core.LoginMissingCredentials
	case errors.Is(err, core.ErrWrongCredentials):
		return core.LoginWrongCredentials
	default:
		return core.LoginTokenCreation
	}
}
