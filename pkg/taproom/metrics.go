package taproom

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tapkeeper",
	Subsystem: "taproom",
	Name:      "operations_total",
	Help:      "Engine operations by name and outcome.",
}, []string{"operation", "outcome"})

func countOp(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}

	operationsTotal.WithLabelValues(operation, outcome).Inc()
}

func countErr(operation string, err error) error {
	countOp(operation, err)

	return err
}
