// Package schemas implements the commands that inspect schema documents and
// check payloads against them without contacting the server.
package schemas

import (
	"github.com/salesking/salesking-go/internal/cmd/base"
	"github.com/salesking/salesking-go/pkg/schema"
)

func store(c *base.Command, dir string) schema.Store {
	if dir == "" {
		return schema.DefaultStore()
	}
	return schema.NewFileStore(c.Filesystem(), dir, schema.WithLogger(c.Logger()))
}
