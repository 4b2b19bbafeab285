package object

import (
	"context"
	"fmt"

	"github.com/salesking/salesking-go/internal/cmd/base"
)

type DeleteCommand struct {
	*base.Command

	flagConfig string
}

func (c *DeleteCommand) Synopsis() string {
	return "Delete an object"
}

func (c *DeleteCommand) Help() string {
	return `Usage: skctl delete [options] <type> <id>

  Deletes an object through the destroy link of its schema.` + c.Flags().Help()
}

func (c *DeleteCommand) Flags() *base.FlagSet {
	return newFlagSet("delete", &c.flagConfig)
}

func (c *DeleteCommand) Run(args []string) int {
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
	if err := obj.Set("id", id); err != nil {
		ui.Error(base.ErrorMessage(err))
		return 1
	}

	if _, err := obj.Delete(context.Background()); err != nil {
		ui.Error(base.ErrorMessage(err))
		return 1
	}

	ui.Output(fmt.Sprintf("Deleted %s %s", resourceType, id))
	return 0
}
