package api

import (
	"expvar"

	"tailscale.com/metrics"
)

// Exported on /debug/varz by the tsweb debugger mounted in serve.
var (
	queriesByKind = &metrics.LabelMap{Label: "kind"}
	sourceErrors  = &metrics.LabelMap{Label: "source"}
)

func init() {
	expvar.Publish("counter_asha_queries", queriesByKind)
	expvar.Publish("counter_asha_source_errors", sourceErrors)
}

func (s *Server) sourceLabel() string {
	if s.remote {
		return "remote"
	}
	return "sqlite"
}
