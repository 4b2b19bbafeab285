package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// maxLoggedBody caps how much of a body is written to debug logs.
const maxLoggedBody = 4096

// HTTP is the net/http implementation of Transport. Requests are never
// retried.
type HTTP struct {
	config *Config
	client *http.Client
	logger hclog.Logger
}

var _ Transport = (*HTTP)(nil)

// NewHTTP creates an HTTP transport. A nil cfg uses DefaultConfig and a nil
// logger discards output.
func NewHTTP(cfg *Config, logger hclog.Logger) (*HTTP, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid transport config: %w", err)
	}

	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &HTTP{
		config: cfg,
		client: cfg.NewHTTPClient(),
		logger: logger.Named("transport"),
	}, nil
}

// Config returns the effective configuration.
func (t *HTTP) Config() Config {
	return *t.config
}

// Do executes req and reads the whole response body.
func (t *HTTP) Do(ctx context.Context, req *Request) (*Response, error) {
	var bodyReader io.Reader
	if len(req.Body) > 0 {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", t.config.UserAgent)
	}

	var (
		id    string
		start time.Time
	)
	if t.config.Debug {
		id = uuid.NewString()
		start = time.Now()
		t.logger.Debug("sending request",
			"request_id", id,
			"method", req.Method,
			"url", req.URL,
			"body", truncate(req.Body),
		)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		if t.config.Debug {
			t.logger.Debug("request failed", "request_id", id, "error", err)
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if t.config.Debug {
		t.logger.Debug("received response",
			"request_id", id,
			"status", resp.StatusCode,
			"duration", time.Since(start),
			"body", truncate(body),
		)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

func truncate(b []byte) string {
	if len(b) > maxLoggedBody {
		return string(b[:maxLoggedBody]) + "..."
	}
	return string(b)
}
