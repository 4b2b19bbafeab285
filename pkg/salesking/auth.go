package salesking

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
)

// AuthorizationURL returns the URL the user is sent to in order to grant the
// application access. An empty scope falls back to Config.AppScope.
func (c *Client) AuthorizationURL(scope string) string {
	if scope == "" {
		scope = c.config.AppScope
	}
	return c.config.BaseURL + "/oauth/authorize?" +
		"client_id=" + c.config.AppID +
		"&scope=" + url.QueryEscape(scope) +
		"&redirect_uri=" + url.QueryEscape(c.config.RedirectURL)
}

// AccessTokenURL returns the URL exchanging an authorization code for an
// access token.
func (c *Client) AccessTokenURL(code string) string {
	return c.config.BaseURL + "/oauth/token?" +
		"client_id=" + c.config.AppID +
		"&redirect_uri=" + url.QueryEscape(c.config.RedirectURL) +
		"&client_secret=" + c.config.AppSecret +
		"&code=" + code
}

type tokenPayload struct {
	AccessToken  string      `json:"access_token"`
	TokenType    string      `json:"token_type"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    json.Number `json:"expires_in"`
}

// RequestAccessToken exchanges an authorization code for an access token.
// The token is not installed on the client; use SetToken for that. The raw
// payload is available through Token.Extra. A response without an
// access_token yields a token with an empty AccessToken.
func (c *Client) RequestAccessToken(ctx context.Context, code string) (*oauth2.Token, error) {
	resp, err := c.Request(ctx, c.AccessTokenURL(code), http.MethodGet, nil)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{
			Op:       "RequestAccessToken",
			Code:     CodeRequestTokenError,
			Msg:      "could not fetch access_token",
			Response: resp,
		}
	}

	var payload tokenPayload
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, &Error{
			Op:       "RequestAccessToken",
			Code:     CodeRequestTokenError,
			Msg:      "could not parse the token response",
			Response: resp,
			Err:      err,
		}
	}

	tok := &oauth2.Token{
		AccessToken:  payload.AccessToken,
		TokenType:    payload.TokenType,
		RefreshToken: payload.RefreshToken,
	}
	if secs, err := strconv.ParseInt(payload.ExpiresIn.String(), 10, 64); err == nil && secs > 0 {
		tok.Expiry = time.Now().Add(time.Duration(secs) * time.Second)
	}

	var raw map[string]any
	_ = json.Unmarshal(resp.Body, &raw)

	c.logger.Debug("received access token", "token_type", tok.Type(), "expiry", tok.Expiry)

	return tok.WithExtra(raw), nil
}
