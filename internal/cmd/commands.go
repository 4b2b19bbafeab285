package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"

	"github.com/salesking/salesking-go/internal/cmd/base"
	"github.com/salesking/salesking-go/internal/cmd/commands/auth"
	"github.com/salesking/salesking-go/internal/cmd/commands/list"
	"github.com/salesking/salesking-go/internal/cmd/commands/object"
	"github.com/salesking/salesking-go/internal/cmd/commands/schemas"
	"github.com/salesking/salesking-go/internal/cmd/commands/version"
)

// Commands is the mapping of all available skctl commands.
var Commands map[string]cli.CommandFactory

func initCommands(log hclog.Logger, ui cli.Ui) {
	b := &base.Command{
		Log: log,
		UI:  ui,
		FS:  afero.NewOsFs(),
	}

	Commands = map[string]cli.CommandFactory{
		"authorize": func() (cli.Command, error) {
			return &auth.AuthorizeCommand{Command: b}, nil
		},
		"create": func() (cli.Command, error) {
			return &object.CreateCommand{Command: b}, nil
		},
		"delete": func() (cli.Command, error) {
			return &object.DeleteCommand{Command: b}, nil
		},
		"get": func() (cli.Command, error) {
			return &object.GetCommand{Command: b}, nil
		},
		"list": func() (cli.Command, error) {
			return &list.Command{Command: b}, nil
		},
		"schema": func() (cli.Command, error) {
			return &schemas.SchemaCommand{Command: b}, nil
		},
		"token": func() (cli.Command, error) {
			return &auth.TokenCommand{Command: b}, nil
		},
		"update": func() (cli.Command, error) {
			return &object.UpdateCommand{Command: b}, nil
		},
		"validate": func() (cli.Command, error) {
			return &schemas.ValidateCommand{Command: b}, nil
		},
		"version": func() (cli.Command, error) {
			return &version.Command{Command: b}, nil
		},
	}
}
