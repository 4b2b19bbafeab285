package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Property types understood by the validator.
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeArray   = "array"
)

// Property formats understood by the validator.
const (
	FormatDate     = "date"
	FormatDateTime = "date-time"
)

// Link relations used by entities and collections.
const (
	RelSelf      = "self"
	RelCreate    = "create"
	RelUpdate    = "update"
	RelDestroy   = "destroy"
	RelInstances = "instances"
)

// SortByProperty is the name of the instances link property that lists
// sortable fields in its enum.
const SortByProperty = "sort_by"

// Property describes a single field of a resource type.
type Property struct {
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Format      string `json:"format,omitempty"`
	MaxLength   *int   `json:"maxLength,omitempty"`
	MinLength   *int   `json:"minLength,omitempty"`
	Enum        []any  `json:"enum,omitempty"`
	ReadOnly    bool   `json:"readonly,omitempty"`
}

// Link is a hypermedia link declared by a schema document.
type Link struct {
	Rel    string `json:"rel"`
	Href   string `json:"href"`
	Method string `json:"method,omitempty"`

	// Properties is only populated for the instances relation and describes
	// the accepted filter[...] query parameters and sort_by.
	Properties map[string]*Property `json:"properties,omitempty"`
}

// Filter returns the property describing filter[name], or nil.
func (l *Link) Filter(name string) *Property {
	if l == nil || l.Properties == nil {
		return nil
	}
	return l.Properties["filter["+name+"]"]
}

// Document is a parsed schema document for one resource type. Documents are
// shared between entities and must not be modified after loading.
type Document struct {
	ResourceType string
	Title        string
	Properties   map[string]*Property

	// PropertyNames holds the property names in declaration order.
	PropertyNames []string

	// Links is keyed by relation name.
	Links map[string]*Link
}

// Property returns the named property, or nil if it is not declared.
func (d *Document) Property(name string) *Property {
	if d == nil {
		return nil
	}
	return d.Properties[name]
}

// HasProperty reports whether name is a declared property.
func (d *Document) HasProperty(name string) bool {
	return d.Property(name) != nil
}

// Link returns the link for rel, or nil if the relation is not declared.
func (d *Document) Link(rel string) *Link {
	if d == nil {
		return nil
	}
	return d.Links[rel]
}

type rawDocument struct {
	Title      string          `json:"title"`
	Name       string          `json:"name"`
	Properties json.RawMessage `json:"properties"`
	Links      []*Link         `json:"links"`
}

// Parse decodes a JSON schema document for resourceType. Links are re-indexed
// by their rel and property declaration order is preserved.
func Parse(resourceType string, data []byte) (*Document, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, resourceType, err)
	}

	doc := &Document{
		ResourceType: resourceType,
		Title:        raw.Title,
		Properties:   make(map[string]*Property),
		Links:        make(map[string]*Link, len(raw.Links)),
	}

	if len(raw.Properties) > 0 && !bytes.Equal(bytes.TrimSpace(raw.Properties), []byte("null")) {
		if err := json.Unmarshal(raw.Properties, &doc.Properties); err != nil {
			return nil, fmt.Errorf("%w: %s: properties: %v", ErrInvalid, resourceType, err)
		}
		names, err := objectKeys(raw.Properties)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: properties: %v", ErrInvalid, resourceType, err)
		}
		for _, name := range names {
			if doc.Properties[name] == nil {
				doc.Properties[name] = &Property{}
			}
		}
		doc.PropertyNames = names
	}

	for _, l := range raw.Links {
		if l == nil || l.Rel == "" {
			continue
		}
		doc.Links[l.Rel] = l
	}

	return doc, nil
}

// objectKeys returns the keys of a JSON object in document order. Duplicate
// keys are reported once.
func objectKeys(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("expected object")
	}

	var keys []string
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.New("expected object key")
		}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}

		// Skip the value.
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	if _, err := dec.Token(); err != nil && err != io.EOF {
		return nil, err
	}
	return keys, nil
}
