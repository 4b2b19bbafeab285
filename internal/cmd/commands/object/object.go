// Package object implements the commands that read and write single
// SalesKing objects.
package object

import (
	"flag"

	"github.com/salesking/salesking-go/internal/cmd/base"
	"github.com/salesking/salesking-go/pkg/salesking"
)

const configUsage = "[SKCTL_CONFIG] Path to the skctl configuration file."

func newFlagSet(name string, config *string) *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet(name, flag.ContinueOnError))
	f.StringVar(config, "config", "", configUsage)
	return f
}

// assign sets each assignment on obj, stopping at the first rejected value.
func assign(obj *salesking.Entity, assignments []base.Assignment) error {
	for _, a := range assignments {
		if err := obj.Set(a.Field, a.Value); err != nil {
			return err
		}
	}
	return nil
}

func output(c *base.Command, obj *salesking.Entity) {
	data, err := obj.Serialize()
	if err != nil {
		c.UI.Error(base.ErrorMessage(err))
		return
	}
	c.UI.Output(base.IndentJSON(data))
}
