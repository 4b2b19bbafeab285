// Package list implements the collection query command.
package list

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/salesking/salesking-go/internal/cmd/base"
	"github.com/salesking/salesking-go/pkg/salesking"
)

type Command struct {
	*base.Command

	flagConfig  string
	flagFilters base.StringMap
	flagSort    string
	flagSortBy  string
	flagPerPage int
	flagPage    int
	flagAll     bool
	flagFields  string
}

func (c *Command) Synopsis() string {
	return "List objects of a resource type"
}

func (c *Command) Help() string {
	return `Usage: skctl list [options] <type>

  Queries the instances link of a resource type. Filters and the sort field
  are checked against the schema before any request is sent.

  Without -fields every object is printed as one line of JSON. With -fields
  the given columns are printed as a table.

  Example:

      $ skctl list -filter q=acme -sort-by organisation -fields id,organisation client` +
		c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("list", flag.ContinueOnError))

	f.StringVar(
		&c.flagConfig, "config", "",
		"[SKCTL_CONFIG] Path to the skctl configuration file.",
	)
	f.Var(
		&c.flagFilters, "filter",
		"Filter as name=value, without the filter[] wrapper. May be repeated.",
	)
	f.StringVar(
		&c.flagSort, "sort", salesking.SortAscending,
		"Sort direction, ASC or DESC.",
	)
	f.StringVar(
		&c.flagSortBy, "sort-by", "",
		"Field to sort by. Must be listed in the sort_by enum of the schema.",
	)
	f.IntVar(
		&c.flagPerPage, "per-page", salesking.MaxPerPage,
		"Number of objects per page, at most 100.",
	)
	f.IntVar(
		&c.flagPage, "page", 0,
		"Page to fetch. The server default is used when zero.",
	)
	f.BoolVar(
		&c.flagAll, "all", false,
		"Fetch every remaining page after the first one.",
	)
	f.StringVar(
		&c.flagFields, "fields", "",
		"Comma separated fields to print as a table.",
	)

	return f
}

func (c *Command) Run(args []string) int {
	logger, ui := c.Logger(), c.UI

	f := c.Flags()
	if err := f.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if f.NArg() != 1 {
		ui.Error("expected a resource type")
		return 1
	}
	if c.flagAll && c.flagPage != 0 {
		ui.Error("-all and -page cannot be combined")
		return 1
	}

	client, err := c.NewClient(c.flagConfig)
	if err != nil {
		ui.Error(fmt.Sprintf("error initializing client: %v", err))
		return 1
	}

	coll, err := c.collection(client, f.Arg(0))
	if err != nil {
		ui.Error(base.ErrorMessage(err))
		return 1
	}

	logger.Debug("listing objects",
		"resource_type", coll.ResourceType(),
		"query", coll.Query(c.flagPage),
	)

	ctx := context.Background()
	if c.flagPage > 0 {
		_, err = coll.LoadPage(ctx, c.flagPage)
	} else {
		_, err = coll.Load(ctx)
	}
	if err != nil {
		ui.Error(base.ErrorMessage(err))
		return 1
	}

	if c.flagFields != "" {
		c.table(coll.Items())
	} else {
		for _, obj := range coll.Items() {
			ui.Output(obj.String())
		}
	}

	ui.Info(fmt.Sprintf("page %d of %d, %d entries",
		deref(coll.CurrentPage()), deref(coll.TotalPages()), deref(coll.Total())))
	return 0
}

func (c *Command) collection(client *salesking.Client, resourceType string) (*salesking.Collection, error) {
	coll, err := client.Collection(resourceType, salesking.WithAutoload(c.flagAll))
	if err != nil {
		return nil, err
	}

	for _, name := range c.flagFilters.Keys {
		if _, err := coll.AddFilter(name, c.flagFilters.Values[name]); err != nil {
			return nil, err
		}
	}
	if _, err := coll.Sort(c.flagSort); err != nil {
		return nil, err
	}
	if c.flagSortBy != "" {
		if _, err := coll.SortBy(c.flagSortBy); err != nil {
			return nil, err
		}
	}
	if _, err := coll.PerPage(c.flagPerPage); err != nil {
		return nil, err
	}

	return coll, nil
}

func (c *Command) table(items []*salesking.Entity) {
	fields := strings.Split(c.flagFields, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(fields, "\t")))
	for _, obj := range items {
		row := make([]string, len(fields))
		for i, field := range fields {
			if v := obj.Get(field); v != nil {
				row[i] = fmt.Sprint(v)
			}
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()

	c.UI.Output(strings.TrimRight(b.String(), "\n"))
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
