package object

import (
	"context"
	"fmt"

	"github.com/salesking/salesking-go/internal/cmd/base"
)

type CreateCommand struct {
	*base.Command

	flagConfig string
}

func (c *CreateCommand) Synopsis() string {
	return "Create an object"
}

func (c *CreateCommand) Help() string {
	return `Usage: skctl create [options] <type> [field=value | field:=json ...]

  Creates an object from the given field assignments and prints the object
  returned by the server. Field names are converted to snake_case and every
  value is validated against the schema before the request is sent.

  Example:

      $ skctl create client organisation="Acme Ltd" due_days:=14` + c.Flags().Help()
}

func (c *CreateCommand) Flags() *base.FlagSet {
	return newFlagSet("create", &c.flagConfig)
}

func (c *CreateCommand) Run(args []string) int {
	ui := c.UI

	f := c.Flags()
	if err := f.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if f.NArg() < 1 {
		ui.Error("expected a resource type")
		return 1
	}

	assignments, err := base.ParseAssignments(f.Args()[1:])
	if err != nil {
		ui.Error(err.Error())
		return 1
	}

	client, err := c.NewClient(c.flagConfig)
	if err != nil {
		ui.Error(fmt.Sprintf("error initializing client: %v", err))
		return 1
	}

	obj, err := client.Object(f.Arg(0))
	if err != nil {
		ui.Error(base.ErrorMessage(err))
		return 1
	}
	if err := assign(obj, assignments); err != nil {
		ui.Error(base.ErrorMessage(err))
		return 1
	}
	if _, ok := obj.ID(); ok {
		ui.Error("id cannot be set on create, use update instead")
		return 1
	}

	if _, err := obj.Save(context.Background()); err != nil {
		ui.Error(base.ErrorMessage(err))
		return 1
	}

	output(c.Command, obj)
	return 0
}
