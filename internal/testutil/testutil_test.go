package testutil

import (
	"errors"
	"net/http"
	"testing"

	"github.com/banshee-data/asha.report/internal/indicators"
)

func TestAssertHelpersPass(t *testing.T) {
	t.Parallel()

	AssertStatusCode(t, http.StatusOK, http.StatusOK)
	AssertNoError(t, nil)
	AssertError(t, errors.New("test error"))
}

func TestNewTestRequest(t *testing.T) {
	t.Parallel()

	req := NewTestRequest(http.MethodGet, "/api/config")
	if req.Method != http.MethodGet || req.URL.Path != "/api/config" {
		t.Errorf("request = %s %s", req.Method, req.URL.Path)
	}
}

func TestNewJSONRequestAndDecode(t *testing.T) {
	t.Parallel()

	req := NewJSONRequest(t, http.MethodPost, "/api/records", map[string]string{"kind": "child"})
	if got := req.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}

	w := NewTestRecorder()
	if _, err := w.Body.ReadFrom(req.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	var body map[string]string
	DecodeJSON(t, w, &body)
	if body["kind"] != "child" {
		t.Errorf("decoded body = %v", body)
	}

	raw := NewJSONRequest(t, http.MethodPut, "/api/records", `{"kind":`)
	if raw.ContentLength != int64(len(`{"kind":`)) {
		t.Errorf("raw body length = %d", raw.ContentLength)
	}
}

func TestRecord(t *testing.T) {
	t.Parallel()

	r := Record("w1", indicators.KindChild, March2024, map[string]int64{"bcg": 3})
	if r.Key() != (indicators.Key{WorkerID: "w1", Kind: indicators.KindChild, Period: March2024}) {
		t.Errorf("key = %+v", r.Key())
	}
	if r.Count("bcg") != 3 {
		t.Errorf("bcg = %d", r.Count("bcg"))
	}
}
