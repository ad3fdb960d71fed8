package main

import (
	"log"
	"strings"

	"clinetl/internal/config"
	"clinetl/internal/metrics"
	"clinetl/internal/metrics/datadog"
	"clinetl/internal/metrics/prompush"
)

// setupMetrics installs the configured backend and returns the function that
// flushes it at exit. Backend failures are logged and leave metrics disabled.
func setupMetrics(m config.Metrics, job string, verbose bool) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch name := strings.ToLower(strings.TrimSpace(m.Backend)); name {
	case "pushgateway":
		b, err = prompush.NewBackend(job, m.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       m.DatadogAddr,
			Namespace:  "clinetl.",
			GlobalTags: []string{"job:" + job},
		})
	case "", "none":
		if verbose {
			log.Printf("metrics: disabled")
		}
		return func() {}
	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", m.Backend)
		return func() {}
	}
	if err != nil {
		log.Printf("metrics: init %s backend: %v; using nop", m.Backend, err)
		return func() {}
	}

	log.Printf("metrics: backend=%s job=%s", m.Backend, job)
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
		metrics.Reset()
	}
}
