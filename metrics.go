package main

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// writeMetrics stores the registry in the node exporter textfile format.
func writeMetrics(path string, reg *prometheus.Registry) error {
	if path == "" {
		return nil
	}
	return errors.Wrapf(prometheus.WriteToTextfile(path, reg), "writing metrics to %s", path)
}
