/*
Copyright 2021 The dnssec-operator authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package metrics exposes reconciler metrics on the controller-runtime registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	runtimemetrics "sigs.k8s.io/controller-runtime/pkg/metrics"
)

const (
	metricsTag = "dnssec_operator"

	loopLabel   = "loop"
	resultLabel = "result"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	metricTicks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: metricsTag,
		Name:      "ticks_total",
		Help:      "Number of completed reconciler ticks",
	}, []string{loopLabel, resultLabel})
	metricTickDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Subsystem: metricsTag,
		Name:      "tick_duration_seconds",
		Help:      "Duration of reconciler ticks",
		Buckets:   prometheus.DefBuckets,
	}, []string{loopLabel})
	metricZoneChanges = prometheus.NewCounter(prometheus.CounterOpts{
		Subsystem: metricsTag,
		Name:      "zone_changes_total",
		Help:      "Number of zones added, updated or deleted on disk",
	})
	metricRestartRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Subsystem: metricsTag,
		Name:      "restart_requests_total",
		Help:      "Number of name server restarts requested",
	})
	metricUpdateTransactions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: metricsTag,
		Name:      "update_transactions_total",
		Help:      "Number of submitted dynamic update transactions",
	}, []string{resultLabel})
)

// ObserveTick records a completed tick of the named loop.
func ObserveTick(loop string, d time.Duration, err error) {
	metricTicks.
		With(prometheus.Labels{loopLabel: loop, resultLabel: result(err)}).
		Inc()
	metricTickDuration.
		With(prometheus.Labels{loopLabel: loop}).
		Observe(d.Seconds())
}

func IncZoneChanges() {
	metricZoneChanges.Inc()
}

func IncRestartRequests() {
	metricRestartRequests.Inc()
}

// ObserveUpdateTransaction records a submitted update transaction.
func ObserveUpdateTransaction(err error) {
	metricUpdateTransactions.
		With(prometheus.Labels{resultLabel: result(err)}).
		Inc()
}

func result(err error) string {
	if err != nil {
		return resultError
	}
	return resultSuccess
}

func RegisterMetrics() {
	runtimemetrics.Registry.MustRegister(metricTicks)
	runtimemetrics.Registry.MustRegister(metricTickDuration)
	runtimemetrics.Registry.MustRegister(metricZoneChanges)
	runtimemetrics.Registry.MustRegister(metricRestartRequests)
	runtimemetrics.Registry.MustRegister(metricUpdateTransactions)
}
