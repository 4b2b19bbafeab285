package salesking

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/salesking/salesking-go/pkg/transport"
)

const testBaseURL = "https://demo.salesking.eu"

// testID passes the 22 character id constraint of the bundled documents.
const testID = "abcdefghijklmnopqrstuv"

// spyTransport records every request and answers with handler.
type spyTransport struct {
	mu       sync.Mutex
	requests []*transport.Request
	handler  func(req *transport.Request) (*transport.Response, error)
}

func (s *spyTransport) Do(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	if s.handler == nil {
		return jsonResponse(http.StatusOK, `{}`), nil
	}
	return s.handler(req)
}

func (s *spyTransport) last(t *testing.T) *transport.Request {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.requests, "no request was sent")
	return s.requests[len(s.requests)-1]
}

func (s *spyTransport) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func respond(status int, body string) *spyTransport {
	return &spyTransport{
		handler: func(*transport.Request) (*transport.Response, error) {
			return jsonResponse(status, body), nil
		},
	}
}

func jsonResponse(status int, body string) *transport.Response {
	return &transport.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       []byte(body),
	}
}

func newTestClient(t *testing.T, spy *spyTransport) *Client {
	t.Helper()
	c, err := NewClient(Config{
		BaseURL:  testBaseURL,
		User:     "user@example.com",
		Password: "secret",
	}, WithTransport(spy))
	require.NoError(t, err)
	return c
}

func newTestObject(t *testing.T, spy *spyTransport, resourceType string) *Entity {
	t.Helper()
	e, err := newTestClient(t, spy).Object(resourceType)
	require.NoError(t, err)
	return e
}

func queryOf(t *testing.T, req *transport.Request) url.Values {
	t.Helper()
	u, err := url.Parse(req.URL)
	require.NoError(t, err)
	return u.Query()
}
