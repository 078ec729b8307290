// Package httputil provides the outbound HTTP client seam and the JSON
// response helpers shared by the API handlers.
package httputil

import (
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/banshee-data/asha.report/internal/version"
)

// HTTPClient is satisfied by *StandardClient and *MockHTTPClient.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// StandardClient is an *http.Client that identifies itself as asha-report.
type StandardClient struct {
	*http.Client
}

// NewStandardClient creates a StandardClient with the given request timeout.
// A zero timeout means no timeout.
func NewStandardClient(timeout time.Duration) *StandardClient {
	return &StandardClient{Client: &http.Client{Timeout: timeout}}
}

// UserAgent is sent on requests that do not set their own.
func UserAgent() string {
	return "asha-report/" + version.Version
}

func (c *StandardClient) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", UserAgent())
	}
	return c.Client.Do(req)
}

type mockReply struct {
	status int
	body   string
	header http.Header
	err    error
}

// MockHTTPClient answers from a queue of canned replies and keeps every
// request it was given. Once the queue is drained it answers 200 with an
// empty JSON array, which is what PostgREST returns when no rows match.
type MockHTTPClient struct {
	mu       sync.Mutex
	requests []*http.Request
	replies  []mockReply
}

func NewMockHTTPClient() *MockHTTPClient {
	return &MockHTTPClient{}
}

// AddResponse queues a plain reply.
func (m *MockHTTPClient) AddResponse(status int, body string) *MockHTTPClient {
	return m.push(mockReply{status: status, body: body, header: http.Header{}})
}

// AddJSONResponse queues a reply with an application/json content type.
func (m *MockHTTPClient) AddJSONResponse(status int, body string) *MockHTTPClient {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	return m.push(mockReply{status: status, body: body, header: h})
}

// AddErrorResponse queues a transport failure.
func (m *MockHTTPClient) AddErrorResponse(err error) *MockHTTPClient {
	return m.push(mockReply{err: err})
}

func (m *MockHTTPClient) push(r mockReply) *MockHTTPClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, r)
	return m
}

func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	r := mockReply{status: http.StatusOK, body: "[]", header: http.Header{}}
	if len(m.replies) > 0 {
		r, m.replies = m.replies[0], m.replies[1:]
	}
	if r.err != nil {
		return nil, r.err
	}
	return &http.Response{
		StatusCode: r.status,
		Body:       io.NopCloser(strings.NewReader(r.body)),
		Header:     r.header,
		Request:    req,
	}, nil
}

// GetRequest returns the nth request seen, or nil.
func (m *MockHTTPClient) GetRequest(n int) *http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n < 0 || n >= len(m.requests) {
		return nil
	}
	return m.requests[n]
}

func (m *MockHTTPClient) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}
