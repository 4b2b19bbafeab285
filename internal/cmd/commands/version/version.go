package version

import (
	"fmt"

	"github.com/salesking/salesking-go/internal/cmd/base"
	"github.com/salesking/salesking-go/internal/version"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the skctl version"
}

func (c *Command) Help() string {
	return `Usage: skctl version

  Prints the skctl version.`
}

func (c *Command) Run(args []string) int {
	c.UI.Output(fmt.Sprintf("skctl %s", version.FullVersion()))
	return 0
}
