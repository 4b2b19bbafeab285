package salesking

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/oauth2"

	"github.com/salesking/salesking-go/pkg/schema"
	"github.com/salesking/salesking-go/pkg/transport"
)

// Version is the SDK version.
const Version = "1.1.0"

// AuthMode is the authentication scheme a Client uses.
type AuthMode string

const (
	AuthBasic  AuthMode = "basic"
	AuthOAuth2 AuthMode = "oauth2"
)

// Config contains the connection and authentication settings of a Client.
//
// Basic authentication needs BaseURL, User and Password. OAuth2 needs
// BaseURL, RedirectURL, AppID and AppSecret; AccessToken may be supplied
// later with SetAccessToken.
type Config struct {
	// BaseURL is the account URL, e.g. "https://demo.salesking.eu".
	BaseURL string

	User     string
	Password string

	RedirectURL string
	AppID       string
	AppSecret   string
	AppScope    string
	AccessToken string

	// Debug logs every HTTP exchange at debug level.
	Debug bool

	// Transport configures the default HTTP transport. It is ignored when a
	// transport is supplied with WithTransport.
	Transport *transport.Config
}

func (c Config) basicComplete() bool {
	return c.User != "" && c.Password != "" && c.BaseURL != ""
}

func (c Config) oauthComplete() bool {
	return c.RedirectURL != "" && c.BaseURL != "" && c.AppID != "" && c.AppSecret != ""
}

// Option configures a Client.
type Option func(*Client)

// WithTransport replaces the default HTTP transport.
func WithTransport(t transport.Transport) Option {
	return func(c *Client) {
		c.transport = t
	}
}

// WithSchemaStore replaces the bundled schema documents.
func WithSchemaStore(s schema.Store) Option {
	return func(c *Client) {
		c.schemas = s
	}
}

// WithLogger sets the logger. The client only logs at debug and trace level.
func WithLogger(logger hclog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client talks to the SalesKing API and creates entities and collections
// bound to it. A Client is safe for concurrent use; the entities and
// collections it creates are not.
type Client struct {
	config    Config
	mode      AuthMode
	transport transport.Transport
	schemas   schema.Store
	logger    hclog.Logger

	mu    sync.RWMutex
	token *oauth2.Token
}

// NewClient creates a client. Basic authentication is used when its settings
// are complete, OAuth2 otherwise.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	c := &Client{config: cfg}

	switch {
	case cfg.basicComplete():
		c.mode = AuthBasic
	case cfg.oauthComplete():
		c.mode = AuthOAuth2
		if cfg.AccessToken != "" {
			c.token = &oauth2.Token{AccessToken: cfg.AccessToken, TokenType: "Bearer"}
		}
	default:
		return nil, &Error{
			Op:   "NewClient",
			Code: CodeMissingConfig,
			Msg:  "could not initialize library - missing authentication params",
		}
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = hclog.NewNullLogger()
	}
	c.logger = c.logger.Named("salesking")

	if c.schemas == nil {
		c.schemas = schema.DefaultStore()
	}

	if c.transport == nil {
		tcfg := transport.DefaultConfig()
		if cfg.Transport != nil {
			copied := *cfg.Transport
			tcfg = &copied
		}
		if cfg.Debug {
			tcfg.Debug = true
		}
		t, err := transport.NewHTTP(tcfg, c.logger)
		if err != nil {
			return nil, &Error{
				Op:   "NewClient",
				Code: CodeMissingConfig,
				Msg:  "invalid transport configuration",
				Err:  err,
			}
		}
		c.transport = t
	}

	return c, nil
}

// BaseURL returns the account URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// AppID returns the OAuth2 application id.
func (c *Client) AppID() string {
	return c.config.AppID
}

// RedirectURL returns the OAuth2 redirect URL.
func (c *Client) RedirectURL() string {
	return c.config.RedirectURL
}

// AuthMode returns the authentication scheme chosen at construction.
func (c *Client) AuthMode() AuthMode {
	return c.mode
}

// Schemas returns the store entities and collections load their schema
// documents from.
func (c *Client) Schemas() schema.Store {
	return c.schemas
}

// AccessToken returns the current OAuth2 access token, if any.
func (c *Client) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.token == nil {
		return ""
	}
	return c.token.AccessToken
}

// SetAccessToken replaces the OAuth2 access token. An empty token removes
// it.
func (c *Client) SetAccessToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if token == "" {
		c.token = nil
		return
	}
	c.token = &oauth2.Token{AccessToken: token, TokenType: "Bearer"}
}

// SetToken replaces the OAuth2 token with one obtained from
// RequestAccessToken.
func (c *Client) SetToken(token *oauth2.Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Response is the result of an API request. Non-2xx responses are returned
// as responses, not errors.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte

	// Data is the decoded JSON body, with numbers as json.Number. It is nil
	// when the body is empty or not JSON.
	Data any
}

// Object returns the JSON object stored under key in the response body.
func (r *Response) Object(key string) (map[string]any, bool) {
	if r == nil {
		return nil, false
	}
	body, ok := r.Data.(map[string]any)
	if !ok {
		return nil, false
	}
	obj, ok := body[key].(map[string]any)
	return obj, ok
}

// Request sends an authenticated request. path is appended to the base URL
// unless it already starts with it or is an absolute URL. An empty method
// means GET.
func (c *Client) Request(ctx context.Context, path, method string, body []byte) (*Response, error) {
	if method == "" {
		method = http.MethodGet
	}

	url := path
	if !strings.HasPrefix(path, c.config.BaseURL) && !isAbsoluteURL(path) {
		url = c.config.BaseURL + path
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Accept", "application/json")
	if auth := c.authorization(); auth != "" {
		header.Set("Authorization", auth)
	}

	c.logger.Trace("request", "method", method, "url", url)

	resp, err := c.transport.Do(ctx, &transport.Request{
		Method: method,
		URL:    url,
		Header: header,
		Body:   body,
	})
	if err != nil {
		return nil, &Error{
			Op:      "Request",
			Code:    CodeTransferError,
			Msg:     "a transfer error occurred",
			Context: map[string]any{"method": method, "url": url},
			Err:     err,
		}
	}

	return newResponse(resp), nil
}

func (c *Client) authorization() string {
	switch c.mode {
	case AuthBasic:
		creds := c.config.User + ":" + c.config.Password
		return "Basic " + base64.StdEncoding.EncodeToString([]byte(creds))
	case AuthOAuth2:
		c.mu.RLock()
		tok := c.token
		c.mu.RUnlock()
		if tok != nil && tok.AccessToken != "" {
			return "Bearer " + tok.AccessToken
		}
	}
	return ""
}

func newResponse(resp *transport.Response) *Response {
	r := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
	}

	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return r
	}

	dec := json.NewDecoder(bytes.NewReader(resp.Body))
	dec.UseNumber()
	var data any
	if err := dec.Decode(&data); err == nil {
		r.Data = data
	}
	return r
}

func isAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Object creates an empty entity of resourceType.
func (c *Client) Object(resourceType string) (*Entity, error) {
	doc, err := c.schema("Object", resourceType)
	if err != nil {
		return nil, err
	}
	return newEntity(c, resourceType, doc), nil
}

// CollectionOption configures a Collection.
type CollectionOption func(*Collection)

// WithAutoload makes Load fetch every page of the result set.
func WithAutoload(autoload bool) CollectionOption {
	return func(c *Collection) {
		c.autoload = autoload
	}
}

// Collection creates an empty collection of resourceType.
func (c *Client) Collection(resourceType string, opts ...CollectionOption) (*Collection, error) {
	doc, err := c.schema("Collection", resourceType)
	if err != nil {
		return nil, err
	}

	col := newCollection(c, resourceType, doc)
	for _, opt := range opts {
		opt(col)
	}
	return col, nil
}

func (c *Client) schema(op, resourceType string) (*schema.Document, error) {
	doc, err := c.schemas.Get(resourceType)
	if err == nil {
		return doc, nil
	}

	code, msg := CodeSchemaNotFound, "could not find schema file"
	if errors.Is(err, schema.ErrInvalid) {
		code, msg = CodeSchemaInvalid, "could not parse schema file"
	}
	return nil, &Error{
		Op:      op,
		Code:    code,
		Msg:     fmt.Sprintf("%s for %q", msg, resourceType),
		Context: map[string]any{"resource_type": resourceType},
		Err:     err,
	}
}
