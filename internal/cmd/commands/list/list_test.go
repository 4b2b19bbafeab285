package list

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesking/salesking-go/internal/cmd/base"
	"github.com/salesking/salesking-go/pkg/salesking"
	"github.com/salesking/salesking-go/pkg/transport"
)

const testConfig = `
url = "https://demo.salesking.eu"

basic_auth {
  user     = "user@example.com"
  password = "secret"
}
`

type recorder struct {
	mu      sync.Mutex
	urls    []string
	handler func(u *url.URL) string
}

func (r *recorder) Do(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	r.mu.Lock()
	r.urls = append(r.urls, req.URL)
	r.mu.Unlock()

	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, err
	}
	return &transport.Response{StatusCode: http.StatusOK, Body: []byte(r.handler(u))}, nil
}

func newCommand(t *testing.T, handler func(u *url.URL) string) (*Command, *cli.MockUi, *recorder) {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "skctl.hcl", []byte(testConfig), 0600))

	ui := cli.NewMockUi()
	rec := &recorder{handler: handler}
	return &Command{Command: &base.Command{
		UI:            ui,
		Log:           hclog.NewNullLogger(),
		FS:            fs,
		ClientOptions: []salesking.Option{salesking.WithTransport(rec)},
	}}, ui, rec
}

// page renders one page of clients; each page holds a single client named
// after the page number.
func page(current, total int) string {
	return fmt.Sprintf(`{
		"collection": {"current_page": %d, "total_pages": %d, "total_entries": %d},
		"clients": [{"client": {"number": "K-%d", "organisation": "Org %d"}}]
	}`, current, total, total, current, current)
}

func TestCommand(t *testing.T) {
	c, ui, rec := newCommand(t, func(*url.URL) string {
		return `{
			"collection": {"current_page": 1, "total_pages": 1, "total_entries": 2},
			"clients": [
				{"client": {"number": "K-1", "organisation": "Acme Ltd"}},
				{"client": {"number": "K-2", "organisation": "Beta GmbH"}}
			]
		}`
	})

	code := c.Run([]string{
		"-config", "skctl.hcl",
		"-filter", "q=acme beta",
		"-sort", "DESC",
		"-sort-by", "organisation",
		"-per-page", "10",
		"client",
	})
	require.Equal(t, 0, code, ui.ErrorWriter.String())

	require.Len(t, rec.urls, 1)
	assert.Equal(t,
		"https://demo.salesking.eu/api/clients?filter[q]=acme+beta&sort=DESC&sort_by=organisation&per_page=10",
		rec.urls[0])

	lines := strings.Split(strings.TrimSpace(ui.OutputWriter.String()), "\n")
	require.Len(t, lines, 3)
	assert.JSONEq(t, `{"number": "K-1", "organisation": "Acme Ltd"}`, lines[0])
	assert.JSONEq(t, `{"number": "K-2", "organisation": "Beta GmbH"}`, lines[1])
	assert.Equal(t, "page 1 of 1, 2 entries", lines[2])
}

func TestCommand_Table(t *testing.T) {
	c, ui, _ := newCommand(t, func(*url.URL) string { return page(1, 1) })

	code := c.Run([]string{"-config", "skctl.hcl", "-fields", "number, organisation", "client"})
	require.Equal(t, 0, code, ui.ErrorWriter.String())

	out := ui.OutputWriter.String()
	assert.Contains(t, out, "NUMBER  ORGANISATION")
	assert.Contains(t, out, "K-1     Org 1")
}

func TestCommand_All(t *testing.T) {
	c, ui, rec := newCommand(t, func(u *url.URL) string {
		p := u.Query().Get("page")
		if p == "" {
			p = "1"
		}
		var n int
		fmt.Sscanf(p, "%d", &n)
		return page(n, 3)
	})

	code := c.Run([]string{"-config", "skctl.hcl", "-all", "client"})
	require.Equal(t, 0, code, ui.ErrorWriter.String())

	require.Len(t, rec.urls, 3)
	assert.NotContains(t, rec.urls[0], "&page=")
	assert.Contains(t, rec.urls[1], "&page=2")
	assert.Contains(t, rec.urls[2], "&page=3")

	out := ui.OutputWriter.String()
	for _, org := range []string{"Org 1", "Org 2", "Org 3"} {
		assert.Contains(t, out, org)
	}
}

func TestCommand_Page(t *testing.T) {
	c, ui, rec := newCommand(t, func(*url.URL) string { return page(2, 3) })

	code := c.Run([]string{"-config", "skctl.hcl", "-page", "2", "client"})
	require.Equal(t, 0, code, ui.ErrorWriter.String())

	require.Len(t, rec.urls, 1)
	assert.Contains(t, rec.urls[0], "&page=2")
	assert.Contains(t, ui.OutputWriter.String(), "page 2 of 3")
}

func TestCommand_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unknown filter", []string{"-filter", "colour=red", "client"}, salesking.CodeFilterNotExisting},
		{"invalid filter value", []string{"-filter", "due_days=soon", "client"}, salesking.CodeFilterInvalid},
		{"bad direction", []string{"-sort", "UP", "client"}, salesking.CodeSortInvalidDirection},
		{"unsortable field", []string{"-sort-by", "tag_list", "client"}, salesking.CodeSortByInvalidProperty},
		{"type without sort_by", []string{"-sort-by", "city", "address"}, salesking.CodeSortByCannotSort},
		{"per page too large", []string{"-per-page", "500", "client"}, salesking.CodePerPageOnlyInt},
		{"all with page", []string{"-all", "-page", "2", "client"}, "cannot be combined"},
		{"no type", []string{}, "expected a resource type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ui, rec := newCommand(t, func(*url.URL) string { return page(1, 1) })

			code := c.Run(append([]string{"-config", "skctl.hcl"}, tt.args...))
			assert.Equal(t, 1, code)
			assert.Contains(t, ui.ErrorWriter.String(), tt.wantErr)
			assert.Empty(t, rec.urls)
		})
	}
}

func TestCommand_Help(t *testing.T) {
	c, _, _ := newCommand(t, nil)
	help := c.Help()
	for _, flag := range []string{"-filter", "-sort", "-sort-by", "-per-page", "-page", "-all", "-fields"} {
		assert.Contains(t, help, flag)
	}
}
