package auth

import (
	"flag"
	"fmt"

	"github.com/salesking/salesking-go/internal/cmd/base"
)

type AuthorizeCommand struct {
	*base.Command

	flagConfig string
	flagScope  string
	flagOpen   bool
}

func (c *AuthorizeCommand) Synopsis() string {
	return "Print the OAuth2 authorization URL"
}

func (c *AuthorizeCommand) Help() string {
	return `Usage: skctl authorize [options]

  Prints the URL a user visits to grant the configured OAuth2 application
  access to their account. After approval SalesKing redirects to the
  configured redirect URL with a code parameter; exchange it with
  "skctl token <code>".` + c.Flags().Help()
}

func (c *AuthorizeCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("authorize", flag.ContinueOnError))

	f.StringVar(
		&c.flagConfig, "config", "",
		"[SKCTL_CONFIG] Path to the skctl configuration file.",
	)
	f.StringVar(
		&c.flagScope, "scope", "",
		"Scope to request. Defaults to the app_scope of the configuration.",
	)
	f.BoolVar(
		&c.flagOpen, "open", false,
		"Open the authorization URL in the default browser.",
	)

	return f
}

func (c *AuthorizeCommand) Run(args []string) int {
	ui := c.UI

	f := c.Flags()
	if err := f.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if f.NArg() != 0 {
		ui.Error("authorize takes no arguments")
		return 1
	}

	client, err := c.NewClient(c.flagConfig)
	if err != nil {
		ui.Error(fmt.Sprintf("error initializing client: %v", err))
		return 1
	}
	if client.AppID() == "" {
		ui.Error("the configuration has no oauth block")
		return 1
	}

	u := client.AuthorizationURL(c.flagScope)
	ui.Output(u)

	if c.flagOpen {
		if err := openURL(u); err != nil {
			ui.Warn(fmt.Sprintf("unable to open browser: %v", err))
		}
	}

	return 0
}

