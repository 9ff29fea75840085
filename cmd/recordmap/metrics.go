package main

import (
	"github.com/rs/zerolog"

	"recordmap/internal/config"
	"recordmap/internal/metrics"
	"recordmap/internal/metrics/datadog"
	"recordmap/internal/metrics/prompush"
)

// setupMetrics installs the configured backend and returns the function that
// flushes it at exit. Backend failures are logged and leave metrics disabled.
func setupMetrics(cfg config.Metrics, log zerolog.Logger) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch cfg.Backend {
	case "prompush":
		b, err = prompush.NewBackend(cfg.Job, cfg.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       cfg.DatadogAddr,
			Namespace:  cfg.Namespace,
			GlobalTags: cfg.Tags,
		})
	default:
		log.Debug().Str("backend", cfg.Backend).Msg("metrics disabled")
		return func() {}
	}
	if err != nil {
		log.Warn().Err(err).Str("backend", cfg.Backend).Msg("metrics backend unavailable; using nop")
		return func() {}
	}

	log.Debug().Str("backend", cfg.Backend).Msg("metrics enabled")
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn().Err(err).Msg("metrics flush failed")
		}
		metrics.Reset()
	}
}
