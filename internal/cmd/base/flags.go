package base

import (
	"bytes"
	"flag"
	"fmt"
	"strings"

	"github.com/mitchellh/go-wordwrap"
)

// FlagSet wraps a standard flag set with help rendering.
type FlagSet struct {
	*flag.FlagSet
}

// NewFlagSet wraps f. Parse errors are returned to the caller instead of being
// printed by the flag package.
func NewFlagSet(f *flag.FlagSet) *FlagSet {
	f.SetOutput(new(bytes.Buffer))
	return &FlagSet{FlagSet: f}
}

// Help renders the options section of a command's help text.
func (f *FlagSet) Help() string {
	var out bytes.Buffer
	n := 0

	f.VisitAll(func(fl *flag.Flag) {
		if n == 0 {
			out.WriteString("\n\nOptions:\n")
		}
		n++

		out.WriteString("\n  -")
		out.WriteString(fl.Name)
		if fl.DefValue != "" && fl.DefValue != "false" && fl.DefValue != "[]" {
			fmt.Fprintf(&out, "=%s", fl.DefValue)
		}
		out.WriteString("\n")

		usage := wordwrap.WrapString(fl.Usage, 70)
		for _, line := range strings.Split(usage, "\n") {
			out.WriteString("      ")
			out.WriteString(line)
			out.WriteString("\n")
		}
	})

	return strings.TrimRight(out.String(), "\n")
}

// StringMap is a repeatable key=value flag.
type StringMap struct {
	Keys   []string
	Values map[string]string
}

func (m *StringMap) String() string {
	if m == nil || len(m.Keys) == 0 {
		return ""
	}
	parts := make([]string, 0, len(m.Keys))
	for _, k := range m.Keys {
		parts = append(parts, k+"="+m.Values[k])
	}
	return strings.Join(parts, ",")
}

// Set parses one key=value pair. A repeated key keeps its first position and
// the last value.
func (m *StringMap) Set(s string) error {
	k, v, ok := strings.Cut(s, "=")
	if !ok || k == "" {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	if m.Values == nil {
		m.Values = make(map[string]string)
	}
	if _, seen := m.Values[k]; !seen {
		m.Keys = append(m.Keys, k)
	}
	m.Values[k] = v
	return nil
}
