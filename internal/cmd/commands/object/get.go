package object

import (
	"context"
	"fmt"

	"github.com/salesking/salesking-go/internal/cmd/base"
)

type GetCommand struct {
	*base.Command

	flagConfig string
}

func (c *GetCommand) Synopsis() string {
	return "Fetch an object by id"
}

func (c *GetCommand) Help() string {
	return `Usage: skctl get [options] <type> <id>

  Fetches a single object through the self link of its schema and prints it
  as JSON.

  Example:

      $ skctl get client abcdefghijklmnopqrstuv` + c.Flags().Help()
}

func (c *GetCommand) Flags() *base.FlagSet {
	return newFlagSet("get", &c.flagConfig)
}

func (c *GetCommand) Run(args []string) int {
	ui := c.UI

	f := c.Flags()
	if err := f.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if f.NArg() != 2 {
		ui.Error("expected a resource type and an id")
		return 1
	}
	resourceType, id := f.Arg(0), f.Arg(1)

	client, err := c.NewClient(c.flagConfig)
	if err != nil {
		ui.Error(fmt.Sprintf("error initializing client: %v", err))
		return 1
	}

	obj, err := client.Object(resourceType)
	if err != nil {
		ui.Error(base.ErrorMessage(err))
		return 1
	}

	if _, err := obj.LoadByID(context.Background(), id); err != nil {
		ui.Error(base.ErrorMessage(err))
		return 1
	}

	output(c.Command, obj)
	return 0
}
