// Package metrics exposes login-flow counters. Defined standalone so
// handler and resolver packages can record without import cycles.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	LoginOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "oauth_login_outcomes_total",
		Help: "Terminal outcomes of completed OAuth callbacks.",
	}, []string{"outcome"})

	CallbackFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "oauth_callback_failures_total",
		Help: "Callback requests that failed before an outcome was reached.",
	}, []string{"reason"})

	AuthorizeRedirects = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "oauth_authorize_redirects_total",
		Help: "Redirects issued to the provider's authorize endpoint.",
	})
)

func init() {
	prometheus.MustRegister(LoginOutcomes, CallbackFailures, AuthorizeRedirects)
}
