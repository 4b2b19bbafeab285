// Package auth implements the OAuth2 authorization commands.
package auth

import (
	"github.com/pkg/browser"
)

// openURL opens the authorization page in the user's browser.
var openURL = browser.OpenURL
