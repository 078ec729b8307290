package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/banshee-data/asha.report/internal/db"
	"github.com/banshee-data/asha.report/internal/httputil"
	"github.com/banshee-data/asha.report/internal/indicators"
)

// recordRequest is the body of POST and PUT /api/records. Period is
// "YYYY-MM" and defaults to the current month.
type recordRequest struct {
	ID       string           `json:"id,omitempty"`
	WorkerID string           `json:"worker_id"`
	Kind     string           `json:"kind"`
	Period   string           `json:"period,omitempty"`
	Counts   map[string]int64 `json:"counts"`
}

type targetsRequest struct {
	Region   string           `json:"region"`
	Kind     string           `json:"kind"`
	Period   string           `json:"period"`
	Expected map[string]int64 `json:"expected"`
}

type workerRequest struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Region string `json:"region"`
	Phone  string `json:"phone,omitempty"`
	Active *bool  `json:"active,omitempty"`
}

// writeStoreError maps store and validation errors onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, db.ErrDuplicateRecord), errors.Is(err, db.ErrDuplicateWorker):
		httputil.Conflict(w, err.Error())
	case errors.Is(err, db.ErrNotFound):
		httputil.NotFound(w, err.Error())
	case errors.Is(err, indicators.ErrUnknownKind),
		errors.Is(err, indicators.ErrInvalidPeriod),
		errors.Is(err, indicators.ErrMissingWorker),
		errors.Is(err, indicators.ErrNegativeCounter),
		errors.Is(err, indicators.ErrUnknownField):
		httputil.BadRequest(w, err.Error())
	default:
		log.Printf("failed to %s: %v", action, err)
		httputil.InternalServerError(w, fmt.Sprintf("failed to %s", action))
	}
}

func (s *Server) handleWorkers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		workers, err := s.store.ListWorkers(r.Context(), r.URL.Query().Get("region"))
		if err != nil {
			writeStoreError(w, err, "list workers")
			return
		}
		httputil.WriteJSONOK(w, workers)

	case http.MethodPost:
		var req workerRequest
		if err := httputil.DecodeJSON(w, r, &req); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			httputil.BadRequest(w, "name is required")
			return
		}
		worker := &db.Worker{
			ID:     req.ID,
			Name:   req.Name,
			Region: req.Region,
			Phone:  req.Phone,
			Active: req.Active == nil || *req.Active,
		}
		if err := s.store.CreateWorker(r.Context(), worker); err != nil {
			writeStoreError(w, err, "create worker")
			return
		}
		httputil.WriteJSONCreated(w, worker)

	default:
		httputil.MethodNotAllowed(w)
	}
}

func (s *Server) handleWorker(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/workers/")
	if id == "" || strings.Contains(id, "/") {
		httputil.NotFound(w, "worker not found")
		return
	}
	worker, err := s.store.GetWorker(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "get worker")
		return
	}
	httputil.WriteJSONOK(w, worker)
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listRecords(w, r)
	case http.MethodPost, http.MethodPut:
		s.saveRecord(w, r)
	default:
		httputil.MethodNotAllowed(w)
	}
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
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
	if records == nil {
		records = []indicators.Record{}
	}
	httputil.WriteJSONOK(w, records)
}

// saveRecord inserts on POST and upserts on PUT.
func (s *Server) saveRecord(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	period := indicators.PeriodOf(s.clock.Now())
	if req.Period != "" {
		p, err := indicators.ParsePeriod(req.Period)
		if err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		period = p
	}

	rec := &indicators.Record{
		ID:       req.ID,
		WorkerID: req.WorkerID,
		Kind:     indicators.Kind(strings.ToLower(strings.TrimSpace(req.Kind))),
		Period:   period,
		Counts:   req.Counts,
	}

	if r.Method == http.MethodPut {
		if err := s.store.UpsertRecord(r.Context(), rec); err != nil {
			writeStoreError(w, err, "save record")
			return
		}
		httputil.WriteJSONOK(w, rec)
		return
	}

	if err := s.store.InsertRecord(r.Context(), rec); err != nil {
		writeStoreError(w, err, "save record")
		return
	}
	httputil.WriteJSONCreated(w, rec)
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/records/")
	if id == "" || strings.Contains(id, "/") {
		httputil.NotFound(w, "record not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		rec, err := s.store.GetRecord(r.Context(), id)
		if err != nil {
			writeStoreError(w, err, "get record")
			return
		}
		httputil.WriteJSONOK(w, rec)
	case http.MethodDelete:
		if err := s.store.DeleteRecord(r.Context(), id); err != nil {
			writeStoreError(w, err, "delete record")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		httputil.MethodNotAllowed(w)
	}
}

func (s *Server) handleTargets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		q, err := s.parseQuery(r)
		if err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		targets, err := s.source.FetchTargets(r.Context(), q.Scope.Region, q.Kind, q.Period)
		if err != nil {
			s.writeSourceError(w, err)
			return
		}
		if targets == nil {
			httputil.NotFound(w, fmt.Sprintf("no %s targets for region %q in %s", q.Kind, q.Scope.Region, q.Period))
			return
		}
		httputil.WriteJSONOK(w, targets)

	case http.MethodPut:
		var req targetsRequest
		if err := httputil.DecodeJSON(w, r, &req); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		period, err := indicators.ParsePeriod(req.Period)
		if err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		set := indicators.TargetSet{
			Region:   req.Region,
			Kind:     indicators.Kind(strings.ToLower(strings.TrimSpace(req.Kind))),
			Period:   period,
			Expected: req.Expected,
		}
		if err := s.store.SetTargets(r.Context(), set); err != nil {
			writeStoreError(w, err, "save targets")
			return
		}
		httputil.WriteJSONOK(w, set)

	default:
		httputil.MethodNotAllowed(w)
	}
}
