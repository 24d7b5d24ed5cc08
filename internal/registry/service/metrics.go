package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	heartbeatsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "central_heartbeats_total",
		Help: "Heartbeats received, partitioned by processing result.",
	}, []string{"result"})

	versionChangesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "central_version_changes_total",
		Help: "Version transitions recorded in the history ledger.",
	})

	instancesTracked = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "central_instances_tracked",
		Help: "Customer instances ever registered with this process.",
	})
)
