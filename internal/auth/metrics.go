package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var decisions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "cms",
	Name:      "auth_decisions_total",
	Help:      "Authentication outcomes by gate and reason.",
}, []string{"gate", "reason"})

func observeDecision(gate Method, err error) {
	decisions.WithLabelValues(string(gate), Reason(err)).Inc()
}
