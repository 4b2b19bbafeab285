package base

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/salesking/salesking-go/pkg/salesking"
)

// Assignment is a field value given on the command line.
type Assignment struct {
	Field string
	Value any
}

// ParseAssignments parses field assignments of the form key=value, which
// assigns a string, and key:=json, which assigns a decoded JSON value. Keys
// are converted to snake_case.
func ParseAssignments(args []string) ([]Assignment, error) {
	out := make([]Assignment, 0, len(args))

	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" || k == ":" {
			return nil, fmt.Errorf("invalid field assignment %q: expected key=value or key:=json", arg)
		}

		if strings.HasSuffix(k, ":") {
			k = strings.TrimSuffix(k, ":")
			dec := json.NewDecoder(strings.NewReader(v))
			dec.UseNumber()
			var value any
			if err := dec.Decode(&value); err != nil {
				return nil, fmt.Errorf("invalid JSON value for %q: %w", k, err)
			}
			out = append(out, Assignment{Field: strcase.ToSnake(k), Value: value})
			continue
		}

		out = append(out, Assignment{Field: strcase.ToSnake(k), Value: v})
	}

	return out, nil
}

// IndentJSON pretty-prints a JSON document. Invalid input is returned as is.
func IndentJSON(data []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return string(data)
	}
	return buf.String()
}

// ErrorMessage renders err for the terminal, including the SalesKing error
// code and the HTTP status of a failed exchange when present.
func ErrorMessage(err error) string {
	msg := err.Error()
	if code := salesking.CodeOf(err); code != "" {
		msg = fmt.Sprintf("%s [%s]", msg, code)
	}
	if resp := salesking.ResponseOf(err); resp != nil {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, resp.StatusCode)
		if len(resp.Body) > 0 {
			msg += "\n" + IndentJSON(resp.Body)
		}
	}
	return msg
}
