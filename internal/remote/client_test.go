package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/asha.report/internal/httputil"
	"github.com/banshee-data/asha.report/internal/indicators"
	"github.com/banshee-data/asha.report/internal/monitoring"
)

var march2024 = indicators.Period{Month: time.March, Year: 2024}

func captureLogs(t *testing.T) *[]string {
	t.Helper()
	original := monitoring.Logf
	t.Cleanup(func() { monitoring.Logf = original })

	var lines []string
	monitoring.SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})
	return &lines
}

func TestFetchRecordsBuildsPostgRESTQuery(t *testing.T) {
	mock := httputil.NewMockHTTPClient().AddJSONResponse(http.StatusOK, `[
		{"id":"r1","worker_id":"w1","kind":"maternal","month":3,"year":2024,
		 "counts":{"pregnant_women_registered":10,"anc3":8},"submitted_at":"2024-04-01T10:00:00Z"},
		{"id":"r2","worker_id":"w2","kind":"maternal","month":3,"year":2024,
		 "counts":{"pregnant_women_registered":20,"anc3":15},"submitted_at":"2024-04-02T10:00:00Z"}
	]`)
	c := NewClient("https://example.supabase.co/", "anon-key", mock)

	recs, err := c.FetchRecords(context.Background(), indicators.KindMaternal,
		indicators.Scope{Region: "block-a", WorkerIDs: []string{"w1", "w2"}}, march2024)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, int64(8), recs[0].Count("anc3"))
	assert.Equal(t, march2024, recs[1].Period)
	assert.Equal(t, time.Date(2024, 4, 2, 10, 0, 0, 0, time.UTC), recs[1].SubmittedAt)

	req := mock.GetRequest(0)
	require.NotNil(t, req)
	assert.Equal(t, "example.supabase.co", req.URL.Host)
	assert.Equal(t, "/rest/v1/indicator_records", req.URL.Path)
	q := req.URL.Query()
	assert.Equal(t, "eq.maternal", q.Get("kind"))
	assert.Equal(t, "eq.3", q.Get("month"))
	assert.Equal(t, "eq.2024", q.Get("year"))
	assert.Equal(t, "eq.block-a", q.Get("region"))
	assert.Equal(t, `in.("w1","w2")`, q.Get("worker_id"))
	assert.Equal(t, "anon-key", req.Header.Get("apikey"))
	assert.Equal(t, "Bearer anon-key", req.Header.Get("Authorization"))

	totals := indicators.Aggregate(indicators.KindMaternal, recs)
	assert.Equal(t, int64(23), totals.Get("anc3"))
}

func TestFetchRecordsCollapsesDuplicates(t *testing.T) {
	logs := captureLogs(t)
	mock := httputil.NewMockHTTPClient().AddJSONResponse(http.StatusOK, `[
		{"id":"old","worker_id":"w1","kind":"referral","month":3,"year":2024,
		 "counts":{"referrals_made":4},"submitted_at":"2024-04-01T10:00:00Z"},
		{"id":"new","worker_id":"w1","kind":"referral","month":3,"year":2024,
		 "counts":{"referrals_made":6},"submitted_at":"2024-04-03T10:00:00Z"}
	]`)
	c := NewClient("http://backend", "", mock)

	recs, err := c.FetchRecords(context.Background(), indicators.KindReferral, indicators.Scope{}, march2024)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "new", recs[0].ID)
	assert.Equal(t, int64(6), recs[0].Count("referrals_made"))

	require.Len(t, *logs, 1)
	assert.Contains(t, (*logs)[0], "[remote] duplicate referral submissions for worker w1")

	assert.Empty(t, mock.GetRequest(0).Header.Get("apikey"), "no key configured")
}

func TestFetchRecordsLogsNegativeCounters(t *testing.T) {
	logs := captureLogs(t)
	mock := httputil.NewMockHTTPClient().AddJSONResponse(http.StatusOK, `[
		{"id":"r1","worker_id":"w1","kind":"child","month":3,"year":2024,"counts":{"bcg":-2}}
	]`)

	recs, err := NewClient("http://backend", "", mock).FetchRecords(context.Background(), indicators.KindChild, indicators.Scope{}, march2024)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, int64(-2), recs[0].Count("bcg"), "passed through unchanged")
	require.Len(t, *logs, 1)
	assert.Contains(t, (*logs)[0], "negative counters [bcg]")
}

func TestFetchRecordsErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("status", func(t *testing.T) {
		mock := httputil.NewMockHTTPClient().AddResponse(http.StatusUnauthorized, `{"message":"invalid JWT"}`)
		_, err := NewClient("http://backend", "bad", mock).FetchRecords(ctx, indicators.KindChild, indicators.Scope{}, march2024)

		var se *StatusError
		require.True(t, errors.As(err, &se), "got %v", err)
		assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
		assert.Contains(t, err.Error(), "invalid JWT")
	})

	t.Run("transport", func(t *testing.T) {
		boom := errors.New("dial tcp: connection refused")
		mock := httputil.NewMockHTTPClient().AddErrorResponse(boom)
		_, err := NewClient("http://backend", "", mock).FetchRecords(ctx, indicators.KindChild, indicators.Scope{}, march2024)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("decode", func(t *testing.T) {
		mock := httputil.NewMockHTTPClient().AddJSONResponse(http.StatusOK, `{"not":"an array"}`)
		_, err := NewClient("http://backend", "", mock).FetchRecords(ctx, indicators.KindChild, indicators.Scope{}, march2024)
		assert.ErrorContains(t, err, "failed to decode")
	})
}

func TestFetchTargets(t *testing.T) {
	mock := httputil.NewMockHTTPClient().
		AddJSONResponse(http.StatusOK, `[{"field":"anc3","expected":30},{"field":"pregnant_women_registered","expected":30}]`).
		AddJSONResponse(http.StatusOK, `[]`)
	c := NewClient("http://backend", "k", mock)

	ts, err := c.FetchTargets(context.Background(), "block-a", indicators.KindMaternal, march2024)
	require.NoError(t, err)
	require.NotNil(t, ts)
	assert.Equal(t, indicators.TargetSet{
		Region:   "block-a",
		Kind:     indicators.KindMaternal,
		Period:   march2024,
		Expected: map[string]int64{"anc3": 30, "pregnant_women_registered": 30},
	}, *ts)

	req := mock.GetRequest(0)
	assert.Equal(t, "/rest/v1/targets", req.URL.Path)
	assert.Equal(t, "eq.block-a", req.URL.Query().Get("region"))

	none, err := c.FetchTargets(context.Background(), "block-z", indicators.KindMaternal, march2024)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestClientAgainstHTTPServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/rest/v1/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"id":"r1","worker_id":"w1","kind":"referral","month":3,"year":2024,"counts":{"referrals_made":5,"referrals_completed":4}}]`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", nil)
	recs, err := c.FetchRecords(context.Background(), indicators.KindReferral, indicators.Scope{}, march2024)
	require.NoError(t, err)

	inds := indicators.Build(indicators.Catalog(indicators.KindReferral), indicators.Aggregate(indicators.KindReferral, recs), nil)
	assert.Equal(t, 80, inds[0].Percentage)
	assert.Equal(t, "Good", inds[0].Tier)
}

func TestFetchRecordsHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewClient(srv.URL, "", nil).FetchRecords(ctx, indicators.KindReferral, indicators.Scope{}, march2024)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
