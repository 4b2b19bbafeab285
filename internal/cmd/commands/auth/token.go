package auth

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/salesking/salesking-go/internal/cmd/base"
)

type TokenCommand struct {
	*base.Command

	flagConfig string
}

func (c *TokenCommand) Synopsis() string {
	return "Exchange an authorization code for an access token"
}

func (c *TokenCommand) Help() string {
	return `Usage: skctl token [options] <code>

  Exchanges the code SalesKing passed to the redirect URL for an access
  token. Store the token as access_token in the oauth block of the
  configuration, or export it as SALESKING_ACCESS_TOKEN.` + c.Flags().Help()
}

func (c *TokenCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("token", flag.ContinueOnError))

	f.StringVar(
		&c.flagConfig, "config", "",
		"[SKCTL_CONFIG] Path to the skctl configuration file.",
	)

	return f
}

func (c *TokenCommand) Run(args []string) int {
	ui := c.UI

	f := c.Flags()
	if err := f.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if f.NArg() != 1 || f.Arg(0) == "" {
		ui.Error("expected an authorization code")
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

	tok, err := client.RequestAccessToken(context.Background(), f.Arg(0))
	if err != nil {
		ui.Error(base.ErrorMessage(err))
		return 1
	}

	if tok.AccessToken == "" {
		msg := "the token response carries no access_token"
		if reason, ok := tok.Extra("error").(string); ok && reason != "" {
			msg += ": " + reason
		}
		ui.Error(msg)
		return 1
	}

	ui.Output(fmt.Sprintf("access_token:  %s", tok.AccessToken))
	if tok.RefreshToken != "" {
		ui.Output(fmt.Sprintf("refresh_token: %s", tok.RefreshToken))
	}
	if !tok.Expiry.IsZero() {
		ui.Output(fmt.Sprintf("expires:       %s", tok.Expiry.Format(time.RFC3339)))
	}
	return 0
}
