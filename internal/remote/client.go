// Package remote reads indicator records and targets from a hosted
// PostgREST (Supabase) backend.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/banshee-data/asha.report/internal/httputil"
	"github.com/banshee-data/asha.report/internal/indicators"
	"github.com/banshee-data/asha.report/internal/monitoring"
)

const (
	recordsPath = "/rest/v1/indicator_records"
	targetsPath = "/rest/v1/targets"

	// maxErrorBody caps how much of a failed response is quoted in errors.
	maxErrorBody = 512
)

var logf = monitoring.Tagged("remote")

// Client is a read-only data source backed by PostgREST.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    httputil.HTTPClient
}

// NewClient returns a Client. A nil hc uses a StandardClient with a 15s timeout.
func NewClient(baseURL, apiKey string, hc httputil.HTTPClient) *Client {
	if hc == nil {
		hc = httputil.NewStandardClient(15 * time.Second)
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), APIKey: apiKey, HTTP: hc}
}

type recordRow struct {
	ID          string           `json:"id"`
	WorkerID    string           `json:"worker_id"`
	Kind        string           `json:"kind"`
	Month       int              `json:"month"`
	Year        int              `json:"year"`
	Counts      map[string]int64 `json:"counts"`
	SubmittedAt time.Time        `json:"submitted_at"`
}

type targetRow struct {
	Field    string `json:"field"`
	Expected int64  `json:"expected"`
}

// FetchRecords returns the records of kind for period, narrowed by scope.
// The backend has no uniqueness guarantee, so duplicate submissions for a
// worker and period are collapsed to the latest one.
func (c *Client) FetchRecords(ctx context.Context, kind indicators.Kind, scope indicators.Scope, period indicators.Period) ([]indicators.Record, error) {
	q := periodFilter(string(kind), period)
	q.Set("select", "id,worker_id,kind,month,year,counts,submitted_at")
	q.Set("order", "worker_id.asc,submitted_at.asc")
	if scope.Region != "" {
		q.Set("region", "eq."+scope.Region)
	}
	if len(scope.WorkerIDs) > 0 {
		q.Set("worker_id", "in.("+strings.Join(quoteAll(scope.WorkerIDs), ",")+")")
	}

	var rows []recordRow
	if err := c.get(ctx, recordsPath, q, &rows); err != nil {
		return nil, err
	}

	records := make([]indicators.Record, 0, len(rows))
	for _, row := range rows {
		rec := indicators.Record{
			ID:          row.ID,
			WorkerID:    row.WorkerID,
			Kind:        indicators.Kind(row.Kind),
			Period:      indicators.Period{Month: time.Month(row.Month), Year: row.Year},
			Counts:      row.Counts,
			SubmittedAt: row.SubmittedAt,
		}
		if neg := rec.NegativeFields(); len(neg) > 0 {
			logf("record %s for worker %s has negative counters %v", rec.ID, rec.WorkerID, neg)
		}
		records = append(records, rec)
	}

	if dups := indicators.DuplicateKeys(records); len(dups) > 0 {
		for _, k := range dups {
			logf("duplicate %s submissions for worker %s in %s, keeping the latest", k.Kind, k.WorkerID, k.Period)
		}
		records = indicators.Latest(records)
	}
	return records, nil
}

// FetchTargets returns the target set for region, kind and period, or nil
// when the backend holds none.
func (c *Client) FetchTargets(ctx context.Context, region string, kind indicators.Kind, period indicators.Period) (*indicators.TargetSet, error) {
	q := periodFilter(string(kind), period)
	q.Set("select", "field,expected")
	q.Set("region", "eq."+region)

	var rows []targetRow
	if err := c.get(ctx, targetsPath, q, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ts := &indicators.TargetSet{Region: region, Kind: kind, Period: period, Expected: make(map[string]int64, len(rows))}
	for _, row := range rows {
		ts.Expected[row.Field] = row.Expected
	}
	return ts, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out interface{}) error {
	endpoint := c.BaseURL + path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.APIKey != "" {
		req.Header.Set("apikey", c.APIKey)
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// StatusError reports a non-2xx response from the backend.
type StatusError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Path, e.StatusCode, e.Body)
}

func periodFilter(kind string, period indicators.Period) url.Values {
	q := url.Values{}
	q.Set("kind", "eq."+kind)
	q.Set("month", "eq."+strconv.Itoa(int(period.Month)))
	q.Set("year", "eq."+strconv.Itoa(period.Year))
	return q
}

// quoteAll double-quotes values for a PostgREST in.() list.
func quoteAll(vals []string) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
	}
	return out
}
