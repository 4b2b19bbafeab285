package salesking

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesking/salesking-go/pkg/schema"
	"github.com/salesking/salesking-go/pkg/transport"
)

func TestNewClient_AuthMode(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		wantMode AuthMode
		wantErr  bool
	}{
		{
			name:     "basic",
			config:   Config{BaseURL: testBaseURL, User: "u", Password: "p"},
			wantMode: AuthBasic,
		},
		{
			name:     "oauth2",
			config:   Config{BaseURL: testBaseURL, RedirectURL: "https://app.example.com", AppID: "id", AppSecret: "s"},
			wantMode: AuthOAuth2,
		},
		{
			name: "basic wins when both are complete",
			config: Config{
				BaseURL: testBaseURL, User: "u", Password: "p",
				RedirectURL: "https://app.example.com", AppID: "id", AppSecret: "s",
			},
			wantMode: AuthBasic,
		},
		{
			name:     "incomplete basic falls back to oauth2",
			config:   Config{BaseURL: testBaseURL, User: "u", RedirectURL: "https://app.example.com", AppID: "id", AppSecret: "s"},
			wantMode: AuthOAuth2,
		},
		{
			name:    "empty",
			config:  Config{},
			wantErr: true,
		},
		{
			name:    "basic without url",
			config:  Config{User: "u", Password: "p"},
			wantErr: true,
		},
		{
			name:    "oauth2 without secret",
			config:  Config{BaseURL: testBaseURL, RedirectURL: "https://app.example.com", AppID: "id"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.config, WithTransport(&spyTransport{}))
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, CodeMissingConfig, CodeOf(err))
				assert.True(t, errors.Is(err, ErrMissingConfig))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMode, c.AuthMode())
		})
	}
}

func TestNewClient_DefaultTransport(t *testing.T) {
	c, err := NewClient(Config{BaseURL: testBaseURL + "/", User: "u", Password: "p", Debug: true})
	require.NoError(t, err)

	assert.Equal(t, testBaseURL, c.BaseURL())
	require.IsType(t, &transport.HTTP{}, c.transport)
	assert.True(t, c.transport.(*transport.HTTP).Config().Debug)
	assert.Equal(t, schema.DefaultStore(), c.Schemas())
}

func TestClient_Request_BasicAuth(t *testing.T) {
	spy := &spyTransport{}
	c := newTestClient(t, spy)

	_, err := c.Request(context.Background(), "/api/clients", http.MethodGet, nil)
	require.NoError(t, err)

	req := spy.last(t)
	assert.Equal(t, testBaseURL+"/api/clients", req.URL)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, "application/json", req.Header.Get("Accept"))

	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("user@example.com:secret"))
	assert.Equal(t, want, req.Header.Get("Authorization"))
}

func TestClient_Request_OAuth2(t *testing.T) {
	spy := &spyTransport{}
	c, err := NewClient(Config{
		BaseURL:     testBaseURL,
		RedirectURL: "https://app.example.com/callback",
		AppID:       "app",
		AppSecret:   "secret",
	}, WithTransport(spy))
	require.NoError(t, err)

	_, err = c.Request(context.Background(), "/api/clients", "", nil)
	require.NoError(t, err)
	assert.Empty(t, spy.last(t).Header.Get("Authorization"), "no token yet")
	assert.Equal(t, http.MethodGet, spy.last(t).Method)

	c.SetAccessToken("tok123")
	assert.Equal(t, "tok123", c.AccessToken())

	_, err = c.Request(context.Background(), "/api/clients", http.MethodGet, nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok123", spy.last(t).Header.Get("Authorization"))

	c.SetAccessToken("")
	assert.Empty(t, c.AccessToken())
}

func TestClient_Request_AccessTokenFromConfig(t *testing.T) {
	spy := &spyTransport{}
	c, err := NewClient(Config{
		BaseURL:     testBaseURL,
		RedirectURL: "https://app.example.com/callback",
		AppID:       "app",
		AppSecret:   "secret",
		AccessToken: "configured",
	}, WithTransport(spy))
	require.NoError(t, err)

	_, err = c.Request(context.Background(), "/api/clients", http.MethodGet, nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer configured", spy.last(t).Header.Get("Authorization"))
}

func TestClient_Request_URLPrefix(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"relative path", "/api/clients", testBaseURL + "/api/clients"},
		{"already prefixed", testBaseURL + "/api/clients", testBaseURL + "/api/clients"},
		{"absolute url", "https://other.example.com/api/clients", "https://other.example.com/api/clients"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spy := &spyTransport{}
			_, err := newTestClient(t, spy).Request(context.Background(), tt.path, http.MethodGet, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, spy.last(t).URL)
		})
	}
}

func TestClient_Request_Response(t *testing.T) {
	spy := respond(http.StatusUnprocessableEntity, `{"errors": {"number": ["is taken"]}, "count": 12}`)
	c := newTestClient(t, spy)

	resp, err := c.Request(context.Background(), "/api/clients", http.MethodPost, []byte(`{"client":{}}`))
	require.NoError(t, err, "error statuses are responses")

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, []byte(`{"client":{}}`), spy.last(t).Body)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, json.Number("12"), data["count"])

	errs, ok := resp.Object("errors")
	require.True(t, ok)
	assert.Contains(t, errs, "number")
}

func TestClient_Request_NonJSONBody(t *testing.T) {
	for _, body := range []string{"", "  ", "<html>"} {
		resp, err := newTestClient(t, respond(http.StatusOK, body)).Request(context.Background(), "/", http.MethodGet, nil)
		require.NoError(t, err)
		assert.Nil(t, resp.Data)
		assert.Equal(t, body, string(resp.Body))
	}
}

func TestClient_Request_TransferError(t *testing.T) {
	cause := errors.New("connection refused")
	spy := &spyTransport{
		handler: func(*transport.Request) (*transport.Response, error) {
			return nil, cause
		},
	}

	_, err := newTestClient(t, spy).Request(context.Background(), "/api/clients", http.MethodGet, nil)
	require.Error(t, err)
	assert.Equal(t, CodeTransferError, CodeOf(err))
	assert.True(t, errors.Is(err, ErrTransfer))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestClient_Logger(t *testing.T) {
	var buf bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{Output: &buf, Level: hclog.Trace})

	c, err := NewClient(Config{BaseURL: testBaseURL, User: "u", Password: "p"},
		WithTransport(&spyTransport{}), WithLogger(logger))
	require.NoError(t, err)

	_, err = c.Request(context.Background(), "/api/clients", http.MethodGet, nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "salesking: request")
}

func TestClient_Object_SchemaErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "schemes/broken.json", []byte(`{"properties": [}`), 0644))

	c, err := NewClient(Config{BaseURL: testBaseURL, User: "u", Password: "p"},
		WithTransport(&spyTransport{}),
		WithSchemaStore(schema.NewFileStore(fs, "schemes")),
	)
	require.NoError(t, err)

	_, err = c.Object("missing")
	assert.Equal(t, CodeSchemaNotFound, CodeOf(err))
	assert.True(t, errors.Is(err, ErrSchemaNotFound))
	assert.True(t, errors.Is(err, schema.ErrNotFound))

	_, err = c.Collection("broken")
	assert.Equal(t, CodeSchemaInvalid, CodeOf(err))
	assert.True(t, errors.Is(err, schema.ErrInvalid))
}

func TestClient_WithSchemaStore(t *testing.T) {
	store := schema.NewMemoryStore()
	require.NoError(t, store.Add("note", []byte(`{
		"properties": {"id": {"type": "string"}, "text": {"type": "string", "maxLength": 5}},
		"links": [{"rel": "instances", "href": "notes"}]
	}`)))

	c, err := NewClient(Config{BaseURL: testBaseURL, User: "u", Password: "p"},
		WithTransport(&spyTransport{}), WithSchemaStore(store))
	require.NoError(t, err)

	note, err := c.Object("note")
	require.NoError(t, err)
	assert.NoError(t, note.Set("text", "short"))
	assert.Error(t, note.Set("text", "too long"))

	_, err = c.Object("client")
	assert.Equal(t, CodeSchemaNotFound, CodeOf(err))
}
