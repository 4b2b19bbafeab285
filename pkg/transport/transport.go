// Package transport performs the HTTP exchanges of the SalesKing client.
//
// The client only depends on the Transport interface, so tests and callers
// with special networking needs can substitute their own implementation.
package transport

import (
	"context"
	"net/http"
)

// Request is a fully prepared HTTP request. URL is absolute and Header
// already carries authentication.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Response is the raw result of an exchange. Any status code is a valid
// response; only failures to complete the exchange are errors.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport executes requests.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// Func adapts an ordinary function to the Transport interface.
type Func func(ctx context.Context, req *Request) (*Response, error)

// Do calls f(ctx, req).
func (f Func) Do(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}
