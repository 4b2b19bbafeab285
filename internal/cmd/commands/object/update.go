package object

import (
	"context"
	"fmt"

	"github.com/salesking/salesking-go/internal/cmd/base"
)

type UpdateCommand struct {
	*base.Command

	flagConfig string
}

func (c *UpdateCommand) Synopsis() string {
	return "Update an object"
}

func (c *UpdateCommand) Help() string {
	return `Usage: skctl update [options] <type> <id> [field=value | field:=json ...]

  Sends the given fields to the update link of the object and prints the
  object returned by the server. Fields that are not given are left
  unchanged.

  Example:

      $ skctl update client abcdefghijklmnopqrstuv email=info@acme.example` + c.Flags().Help()
}

func (c *UpdateCommand) Flags() *base.FlagSet {
	return newFlagSet("update", &c.flagConfig)
}

func (c *UpdateCommand) Run(args []string) int {
	ui := c.UI

	f := c.Flags()
	if err := f.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if f.NArg() < 2 {
		ui.Error("expected a resource type and an id")
		return 1
	}
	if f.Arg(1) == "" {
		ui.Error("id must not be empty")
		return 1
	}

	assignments, err := base.ParseAssignments(f.Args()[2:])
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
	if err := obj.Set("id", f.Arg(1)); err != nil {
		ui.Error(base.ErrorMessage(err))
		return 1
	}
	if err := assign(obj, assignments); err != nil {
		ui.Error(base.ErrorMessage(err))
		return 1
	}

	if _, err := obj.Save(context.Background()); err != nil {
		ui.Error(base.ErrorMessage(err))
		return 1
	}

	output(c.Command, obj)
	return 0
}
