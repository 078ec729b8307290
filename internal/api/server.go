package api

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/banshee-data/asha.report/internal/config"
	"github.com/banshee-data/asha.report/internal/db"
	"github.com/banshee-data/asha.report/internal/indicators"
	"github.com/banshee-data/asha.report/internal/timeutil"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Source supplies the records and targets the read endpoints score.
// Both *db.DB and *remote.Client satisfy it.
type Source interface {
	FetchRecords(ctx context.Context, kind indicators.Kind, scope indicators.Scope, period indicators.Period) ([]indicators.Record, error)
	FetchTargets(ctx context.Context, region string, kind indicators.Kind, period indicators.Period) (*indicators.TargetSet, error)
}

// Store is the writable side: workers, records and targets entered through
// the API.
type Store interface {
	Source
	CreateWorker(ctx context.Context, w *db.Worker) error
	GetWorker(ctx context.Context, id string) (*db.Worker, error)
	ListWorkers(ctx context.Context, region string) ([]db.Worker, error)
	InsertRecord(ctx context.Context, r *indicators.Record) error
	UpsertRecord(ctx context.Context, r *indicators.Record) error
	GetRecord(ctx context.Context, id string) (*indicators.Record, error)
	DeleteRecord(ctx context.Context, id string) error
	SetTargets(ctx context.Context, t indicators.TargetSet) error
}

type Server struct {
	store  Store
	source Source
	cfg    *config.IndicatorConfig
	clock  timeutil.Clock
	// remote is set when reads come from a source other than store.
	remote bool
}

// NewServer wires the API. A nil source reads from store; a nil cfg uses
// built-in defaults.
func NewServer(store Store, source Source, cfg *config.IndicatorConfig) *Server {
	remote := source != nil && source != Source(store)
	if source == nil {
		source = store
	}
	if cfg == nil {
		cfg = config.EmptyIndicatorConfig()
	}
	return &Server{
		store:  store,
		source: source,
		cfg:    cfg,
		clock:  timeutil.InLocation(timeutil.RealClock{}, cfg.GetLocation()),
		remote: remote,
	}
}

// SetClock replaces the clock used to pick the default period. Tests use a
// MockClock.
func (s *Server) SetClock(c timeutil.Clock) {
	s.clock = timeutil.InLocation(c, s.cfg.GetLocation())
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/workers", s.handleWorkers)
	mux.HandleFunc("/api/workers/", s.handleWorker)
	mux.HandleFunc("/api/records", s.handleRecords)
	mux.HandleFunc("/api/records/", s.handleRecord)
	mux.HandleFunc("/api/targets", s.handleTargets)
	mux.HandleFunc("/api/totals", s.handleTotals)
	mux.HandleFunc("/api/indicators", s.handleIndicators)
	mux.HandleFunc("/api/scorecards", s.handleScorecards)
	mux.HandleFunc("/api/config", s.showConfig)
	mux.HandleFunc("/api/charts/coverage.png", s.handleCoveragePNG)
	mux.HandleFunc("/debug/charts/indicators", s.handleIndicatorChart)
	return mux
}

// query holds the common kind/period/region/worker parameters of the read
// endpoints.
type query struct {
	Kind   indicators.Kind
	Period indicators.Period
	Scope  indicators.Scope
}

// parseQuery reads kind (required), period (YYYY-MM, default the current
// month in the configured zone), region (default from config) and any number
// of worker parameters.
func (s *Server) parseQuery(r *http.Request) (query, error) {
	v := r.URL.Query()

	kind, err := indicators.ParseKind(v.Get("kind"))
	if err != nil {
		return query{}, err
	}
	queriesByKind.Add(string(kind), 1)

	period := indicators.PeriodOf(s.clock.Now())
	if p := v.Get("period"); p != "" {
		if period, err = indicators.ParsePeriod(p); err != nil {
			return query{}, err
		}
	}

	region := v.Get("region")
	if region == "" {
		region = s.cfg.GetDefaultRegion()
	}

	var workers []string
	for _, w := range v["worker"] {
		for _, id := range strings.Split(w, ",") {
			if id = strings.TrimSpace(id); id != "" {
				workers = append(workers, id)
			}
		}
	}

	return query{
		Kind:   kind,
		Period: period,
		Scope:  indicators.Scope{Region: region, WorkerIDs: workers},
	}, nil
}
