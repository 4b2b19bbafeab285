package schemas

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"

	"github.com/salesking/salesking-go/internal/cmd/base"
)

type ValidateCommand struct {
	*base.Command

	flagDir string
}

func (c *ValidateCommand) Synopsis() string {
	return "Validate a JSON payload against a schema"
}

func (c *ValidateCommand) Help() string {
	return `Usage: skctl validate [options] <type> <file>

  Checks every field of a JSON object against the schema of a resource type
  and reports all failures. The object may be wrapped in the resource type,
  as in {"client": {...}}.` + c.Flags().Help()
}

func (c *ValidateCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("validate", flag.ContinueOnError))

	f.StringVar(
		&c.flagDir, "dir", "",
		"Directory to load schema documents from instead of the bundled set.",
	)

	return f
}

func (c *ValidateCommand) Run(args []string) int {
	ui := c.UI

	f := c.Flags()
	if err := f.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if f.NArg() != 2 {
		ui.Error("expected a resource type and a file")
		return 1
	}
	resourceType, filename := f.Arg(0), f.Arg(1)

	doc, err := store(c.Command, c.flagDir).Get(resourceType)
	if err != nil {
		ui.Error(fmt.Sprintf("error loading schema: %v", err))
		return 1
	}

	src, err := afero.ReadFile(c.Filesystem(), filename)
	if err != nil {
		ui.Error(fmt.Sprintf("error reading payload: %v", err))
		return 1
	}

	payload, err := decodePayload(src, resourceType)
	if err != nil {
		ui.Error(fmt.Sprintf("error decoding payload: %v", err))
		return 1
	}

	if err := doc.ValidateData(payload); err != nil {
		var merr *multierror.Error
		if errors.As(err, &merr) {
			for _, e := range merr.Errors {
				ui.Error(e.Error())
			}
		} else {
			ui.Error(err.Error())
		}
		return 1
	}

	ui.Output(fmt.Sprintf("%s: %d fields valid", filename, len(payload)))
	return 0
}

func decodePayload(src []byte, resourceType string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(src))
	dec.UseNumber()

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, errors.New("payload must be a JSON object")
	}

	if len(payload) == 1 {
		if inner, ok := payload[resourceType].(map[string]any); ok {
			return inner, nil
		}
	}
	return payload, nil
}
