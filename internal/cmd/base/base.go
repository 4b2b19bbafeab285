package base

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"

	"github.com/salesking/salesking-go/pkg/salesking"
)

// Command is embedded by every skctl command.
type Command struct {
	Log hclog.Logger
	UI  cli.Ui

	// FS is the filesystem configuration files, schema directories and
	// payload files are read from.
	FS afero.Fs

	// ClientOptions are appended to the options of every client a command
	// creates.
	ClientOptions []salesking.Option
}

// Filesystem returns the command filesystem, falling back to the local disk.
func (c *Command) Filesystem() afero.Fs {
	if c.FS == nil {
		return afero.NewOsFs()
	}
	return c.FS
}
