package schemas

import (
	"flag"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/salesking/salesking-go/internal/cmd/base"
	"github.com/salesking/salesking-go/pkg/schema"
)

type SchemaCommand struct {
	*base.Command

	flagDir string
}

func (c *SchemaCommand) Synopsis() string {
	return "Describe the schema of a resource type"
}

func (c *SchemaCommand) Help() string {
	return `Usage: skctl schema [options] <type>

  Prints the properties, links and collection filters declared by the schema
  document of a resource type.` + c.Flags().Help()
}

func (c *SchemaCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("schema", flag.ContinueOnError))

	f.StringVar(
		&c.flagDir, "dir", "",
		"Directory to load schema documents from instead of the bundled set.",
	)

	return f
}

func (c *SchemaCommand) Run(args []string) int {
	ui := c.UI

	f := c.Flags()
	if err := f.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if f.NArg() != 1 {
		ui.Error("expected a resource type")
		return 1
	}

	doc, err := store(c.Command, c.flagDir).Get(f.Arg(0))
	if err != nil {
		ui.Error(fmt.Sprintf("error loading schema: %v", err))
		return 1
	}

	ui.Output(describe(doc))
	return 0
}

func describe(doc *schema.Document) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "PROPERTY\tTYPE\tFORMAT\tLENGTH\tENUM")
	for _, name := range doc.PropertyNames {
		p := doc.Property(name)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", name, p.Type, p.Format, length(p), enum(p))
	}

	links := make([]string, 0, len(doc.Links))
	for rel := range doc.Links {
		links = append(links, rel)
	}
	sort.Strings(links)

	fmt.Fprintln(w, "\nLINK\tMETHOD\tHREF")
	for _, rel := range links {
		l := doc.Link(rel)
		method := l.Method
		if method == "" {
			method = "GET"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", rel, method, l.Href)
	}

	if instances := doc.Link(schema.RelInstances); instances != nil && len(instances.Properties) > 0 {
		params := make([]string, 0, len(instances.Properties))
		for name := range instances.Properties {
			params = append(params, name)
		}
		sort.Strings(params)

		fmt.Fprintln(w, "\nPARAMETER\tTYPE\tFORMAT\tLENGTH\tENUM")
		for _, name := range params {
			p := instances.Properties[name]
			if p == nil {
				p = &schema.Property{}
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", name, p.Type, p.Format, length(p), enum(p))
		}
	}

	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

func length(p *schema.Property) string {
	switch {
	case p.MinLength != nil && p.MaxLength != nil:
		return strconv.Itoa(*p.MinLength) + ".." + strconv.Itoa(*p.MaxLength)
	case p.MaxLength != nil:
		return "<=" + strconv.Itoa(*p.MaxLength)
	case p.MinLength != nil:
		return ">=" + strconv.Itoa(*p.MinLength)
	}
	return ""
}

func enum(p *schema.Property) string {
	members := make([]string, 0, len(p.Enum))
	for _, e := range p.Enum {
		members = append(members, fmt.Sprint(e))
	}
	return strings.Join(members, ",")
}
