// Package metrics defines the Prometheus collectors for the identity and
// session flows. Standalone package so both the HTTP layer and the oauth flow
// can record without import cycles.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SignIns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sessiond_signins_total",
		Help: "Completed sign-in attempts by provider and outcome",
	}, []string{"provider", "outcome"})

	SignOuts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sessiond_signouts_total",
		Help: "Sign-out requests",
	})

	SessionResolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sessiond_session_resolutions_total",
		Help: "Session resolutions by result (authenticated, anonymous, error)",
	}, []string{"result"})

	InvariantViolations = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sessiond_invariant_violations_total",
		Help: "Sessions that resolved to a missing user record",
	})
)

// Register registers all collectors on the given registry (default if nil).
// Already-registered collectors are tolerated so tests can call it freely.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{SignIns, SignOuts, SessionResolutions, InvariantViolations} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
