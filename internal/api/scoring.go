package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/banshee-data/asha.report/internal/httputil"
	"github.com/banshee-data/asha.report/internal/indicators"
	"github.com/banshee-data/asha.report/internal/version"
)

type totalsResponse struct {
	Kind    indicators.Kind   `json:"kind"`
	Period  string            `json:"period"`
	Scope   indicators.Scope  `json:"scope"`
	Totals  indicators.Totals `json:"totals"`
	Workers int               `json:"workers"`
}

type indicatorsResponse struct {
	totalsResponse
	Targets    *indicators.TargetSet         `json:"targets,omitempty"`
	Indicators []indicators.DerivedIndicator `json:"indicators"`
}

type scorecardsResponse struct {
	Kind          indicators.Kind        `json:"kind"`
	Period        string                 `json:"period"`
	Scope         indicators.Scope       `json:"scope"`
	Scorecards    []indicators.Scorecard `json:"scorecards"`
	Distributions []indicators.Summary   `json:"distributions"`
}

// writeSourceError reports a failed data-source read. Failures of a remote
// source are upstream errors.
func (s *Server) writeSourceError(w http.ResponseWriter, err error) {
	log.Printf("data source read failed: %v", err)
	sourceErrors.Add(s.sourceLabel(), 1)
	if s.remote {
		httputil.BadGateway(w, fmt.Sprintf("data source unavailable: %v", err))
		return
	}
	httputil.InternalServerError(w, "failed to read indicator data")
}

// load fetches the records and, for a region scope, the targets of q.
// Targets are not per-worker, so a worker-only scope scores against
// counter-derived expectations.
func (s *Server) load(ctx context.Context, q query) ([]indicators.Record, *indicators.TargetSet, error) {
	records, err := s.source.FetchRecords(ctx, q.Kind, q.Scope, q.Period)
	if err != nil {
		return nil, nil, err
	}
	if q.Scope.Region == "" {
		return records, nil, nil
	}
	targets, err := s.source.FetchTargets(ctx, q.Scope.Region, q.Kind, q.Period)
	if err != nil {
		return nil, nil, err
	}
	return records, targets, nil
}

func countWorkers(records []indicators.Record) int {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		seen[r.WorkerID] = struct{}{}
	}
	return len(seen)
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	q, err := s.parseQuery(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	records, err := s.source.FetchRecords(r.Context(), q.Kind, q.Scope, q.Period)
	if err != nil {
		s.writeSourceError(w, err)
		return
	}
	httputil.WriteJSONOK(w, totalsResponse{
		Kind:    q.Kind,
		Period:  q.Period.String(),
		Scope:   q.Scope,
		Totals:  indicators.Aggregate(q.Kind, records),
		Workers: countWorkers(records),
	})
}

func (s *Server) handleIndicators(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	q, err := s.parseQuery(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	resp, err := s.scoreIndicators(r.Context(), q)
	if err != nil {
		s.writeSourceError(w, err)
		return
	}
	httputil.WriteJSONOK(w, resp)
}

func (s *Server) scoreIndicators(ctx context.Context, q query) (indicatorsResponse, error) {
	records, targets, err := s.load(ctx, q)
	if err != nil {
		return indicatorsResponse{}, err
	}
	totals := indicators.Aggregate(q.Kind, records)
	return indicatorsResponse{
		totalsResponse: totalsResponse{
			Kind:    q.Kind,
			Period:  q.Period.String(),
			Scope:   q.Scope,
			Totals:  totals,
			Workers: countWorkers(records),
		},
		Targets:    targets,
		Indicators: indicators.Build(s.cfg.Definitions(q.Kind), totals, targets),
	}, nil
}

func (s *Server) handleScorecards(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	q, err := s.parseQuery(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	records, targets, err := s.load(r.Context(), q)
	if err != nil {
		s.writeSourceError(w, err)
		return
	}

	defs := s.cfg.Definitions(q.Kind)
	cards := indicators.Scorecards(q.Kind, defs, records, targets)
	httputil.WriteJSONOK(w, scorecardsResponse{
		Kind:          q.Kind,
		Period:        q.Period.String(),
		Scope:         q.Scope,
		Scorecards:    cards,
		Distributions: indicators.Distributions(cards, defs),
	})
}

func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	defs := make(map[indicators.Kind][]indicators.Definition)
	for _, kind := range indicators.Kinds() {
		defs[kind] = s.cfg.Definitions(kind)
	}

	httputil.WriteJSONOK(w, map[string]interface{}{
		"version":        version.Version,
		"git_sha":        version.GitSHA,
		"build_time":     version.BuildTime,
		"default_region": s.cfg.GetDefaultRegion(),
		"time_zone":      s.cfg.GetLocation().String(),
		"current_period": indicators.PeriodOf(s.clock.Now()).String(),
		"definitions":    defs,
	})
}
