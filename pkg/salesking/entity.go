package salesking

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mitchellh/mapstructure"

	"github.com/salesking/salesking-go/pkg/schema"
)

var idPlaceholder = regexp.MustCompile(`(?i)\{id\}`)

// Entity is a single API object. Only fields declared by its schema document
// can be set and every value is validated when written. Fields keep the order
// in which they were first set.
type Entity struct {
	client       *Client
	resourceType string
	schema       *schema.Document

	keys []string
	data map[string]any
}

func newEntity(client *Client, resourceType string, doc *schema.Document) *Entity {
	return &Entity{
		client:       client,
		resourceType: resourceType,
		schema:       doc,
		data:         make(map[string]any),
	}
}

// ResourceType returns the entity's resource type, e.g. "client".
func (e *Entity) ResourceType() string {
	return e.resourceType
}

// SetResourceType switches the entity to another resource type. Fields that
// are already set are kept as they are and not validated again.
func (e *Entity) SetResourceType(resourceType string) error {
	doc, err := e.client.schema("SetResourceType", resourceType)
	if err != nil {
		return err
	}
	e.resourceType = resourceType
	e.schema = doc
	return nil
}

// Schema returns the schema document of the entity's resource type.
func (e *Entity) Schema() *schema.Document {
	return e.schema
}

// Set validates value and stores it under field.
func (e *Entity) Set(field string, value any) error {
	p := e.schema.Property(field)
	if p == nil {
		return &Error{
			Op:      "Set",
			Code:    CodeInvalidProperty,
			Msg:     fmt.Sprintf("invalid property %q for %s", field, e.resourceType),
			Context: map[string]any{"property": field},
		}
	}

	if err := schema.Check(p, value); err != nil {
		return &Error{
			Op:      "Set",
			Code:    CodePropertyValidation,
			Msg:     fmt.Sprintf("invalid property value. Property: %s - Value: %v", field, value),
			Context: map[string]any{"property": field, "value": value},
			Err:     err,
		}
	}

	if _, ok := e.data[field]; !ok {
		e.keys = append(e.keys, field)
	}
	e.data[field] = value
	return nil
}

// Get returns the value of field, or nil when it is not set.
func (e *Entity) Get(field string) any {
	return e.data[field]
}

// Has reports whether field is set. A field set to nil is set.
func (e *Entity) Has(field string) bool {
	_, ok := e.data[field]
	return ok
}

// Fields returns the names of the set fields in insertion order.
func (e *Entity) Fields() []string {
	return append([]string(nil), e.keys...)
}

// Data returns a copy of the set fields.
func (e *Entity) Data() map[string]any {
	out := make(map[string]any, len(e.data))
	for k, v := range e.data {
		out[k] = v
	}
	return out
}

// Serialize encodes the set fields as a JSON object in insertion order.
func (e *Entity) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range e.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.data[k])
		if err != nil {
			return nil, fmt.Errorf("failed to encode field %s: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON implements json.Marshaler.
func (e *Entity) MarshalJSON() ([]byte, error) {
	return e.Serialize()
}

func (e *Entity) String() string {
	b, err := e.Serialize()
	if err != nil {
		return "{}"
	}
	return string(b)
}

// Bind sets every declared property present in data, in declaration order,
// then copies data[source] to target for each entry of fieldMap whose source
// exists in data and whose target is declared. data may be a map with string
// keys, another *Entity or a struct, whose fields are read by their json tag
// names. Binding stops at the first field that fails validation.
func (e *Entity) Bind(data any, fieldMap map[string]string) (*Entity, error) {
	src, err := toMap(data)
	if err != nil {
		return e, &Error{
			Op:      "Bind",
			Code:    CodeBindInvalidType,
			Msg:     "invalid data type - please provide a map, struct or entity",
			Context: map[string]any{"type": fmt.Sprintf("%T", data)},
			Err:     err,
		}
	}

	for _, name := range e.schema.PropertyNames {
		if v, ok := src[name]; ok {
			if err := e.Set(name, v); err != nil {
				return e, err
			}
		}
	}

	sources := make([]string, 0, len(fieldMap))
	for source := range fieldMap {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	for _, source := range sources {
		target := fieldMap[source]
		v, ok := src[source]
		if !ok || !e.schema.HasProperty(target) {
			continue
		}
		if err := e.Set(target, v); err != nil {
			return e, err
		}
	}

	return e, nil
}

func toMap(data any) (map[string]any, error) {
	switch d := data.(type) {
	case nil:
		return nil, fmt.Errorf("data is nil")
	case map[string]any:
		return d, nil
	case *Entity:
		if d == nil {
			return nil, fmt.Errorf("data is a nil entity")
		}
		return d.Data(), nil
	}

	rv := reflect.ValueOf(data)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, fmt.Errorf("data is a nil %T", data)
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("map keys must be strings, got %s", rv.Type().Key())
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out, nil

	case reflect.Struct:
		out := make(map[string]any)
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName: "json",
			Result:  &out,
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(rv.Interface()); err != nil {
			return nil, fmt.Errorf("failed to decode struct: %w", err)
		}
		return out, nil
	}

	return nil, fmt.Errorf("unsupported data type %T", data)
}

// ID returns the entity id and whether it is set to a non-empty value.
func (e *Entity) ID() (string, bool) {
	v, ok := e.data["id"]
	if !ok || v == nil {
		return "", false
	}
	id := formatValue(v)
	return id, id != ""
}

// Endpoint returns the link for rel. An empty rel means "self".
func (e *Entity) Endpoint(rel string) (*schema.Link, error) {
	if rel == "" {
		rel = schema.RelSelf
	}
	link := e.schema.Link(rel)
	if link == nil {
		return nil, &Error{
			Op:      "Endpoint",
			Code:    CodeEndpointNotFound,
			Msg:     fmt.Sprintf("invalid endpoint %q for %s", rel, e.resourceType),
			Context: map[string]any{"rel": rel},
		}
	}
	return link, nil
}

// Save creates the entity when it has no id and updates it otherwise. The
// server's representation is bound back into the entity.
func (e *Entity) Save(ctx context.Context) (*Response, error) {
	body, err := e.envelope()
	if err != nil {
		return nil, &Error{Op: "Save", Code: CodeBindInvalidType, Msg: "could not encode entity", Err: err}
	}

	rel, fallback, want, code, msg := schema.RelCreate, http.MethodPost, http.StatusCreated, CodeCreateError, "create failed, an error occurred"
	id, hasID := e.ID()
	if hasID {
		rel, fallback, want, code, msg = schema.RelUpdate, http.MethodPut, http.StatusOK, CodeUpdateError, "update failed, an error occurred"
	}

	link, err := e.Endpoint(rel)
	if err != nil {
		return nil, err
	}

	resp, err := e.client.Request(ctx, expandHref(link.Href, id), methodOf(link, fallback), body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != want {
		return nil, &Error{Op: "Save", Code: code, Msg: msg, Response: resp}
	}

	if err := e.bindResponse(resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// Load fetches the entity by its id and binds the result.
func (e *Entity) Load(ctx context.Context) (*Entity, error) {
	link, err := e.Endpoint(schema.RelSelf)
	if err != nil {
		return e, err
	}

	id, ok := e.ID()
	if !ok {
		return e, &Error{Op: "Load", Code: CodeLoadIDNotSet, Msg: "could not load object without an id"}
	}

	resp, err := e.client.Request(ctx, expandHref(link.Href, id), methodOf(link, http.MethodGet), nil)
	if err != nil {
		return e, err
	}
	if resp.StatusCode != http.StatusOK {
		return e, &Error{Op: "Load", Code: CodeLoadError, Msg: "fetching failed, an error happened", Response: resp}
	}

	return e, e.bindResponse(resp)
}

// LoadByID sets the id field and loads the entity. An empty id keeps the
// current one.
func (e *Entity) LoadByID(ctx context.Context, id string) (*Entity, error) {
	if id != "" {
		if err := e.Set("id", id); err != nil {
			return e, err
		}
	}
	return e.Load(ctx)
}

// Delete removes the entity on the server.
func (e *Entity) Delete(ctx context.Context) (*Response, error) {
	link, err := e.Endpoint(schema.RelDestroy)
	if err != nil {
		return nil, err
	}

	id, ok := e.ID()
	if !ok {
		return nil, &Error{Op: "Delete", Code: CodeDeleteIDNotSet, Msg: "could not delete object without an id"}
	}

	resp, err := e.client.Request(ctx, expandHref(link.Href, id), methodOf(link, http.MethodDelete), nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Op: "Delete", Code: CodeDeleteError, Msg: "deleting failed, an error happened", Response: resp}
	}
	return resp, nil
}

// envelope wraps the fields as {"<type>": {...}}.
func (e *Entity) envelope() ([]byte, error) {
	fields, err := e.Serialize()
	if err != nil {
		return nil, err
	}
	key, err := json.Marshal(e.resourceType)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	buf.Write(key)
	buf.WriteByte(':')
	buf.Write(fields)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (e *Entity) bindResponse(resp *Response) error {
	var payload any
	if obj, ok := resp.Object(e.resourceType); ok {
		payload = obj
	}
	_, err := e.Bind(payload, nil)
	return err
}

// expandHref substitutes {id} and resolves the href under the API prefix.
func expandHref(href, id string) string {
	if id != "" {
		href = idPlaceholder.ReplaceAllLiteralString(href, url.PathEscape(id))
	}
	return apiPath(href)
}

func apiPath(href string) string {
	if isAbsoluteURL(href) {
		return href
	}
	return "/api/" + strings.TrimPrefix(href, "/")
}

func methodOf(link *schema.Link, fallback string) string {
	if link.Method == "" {
		return fallback
	}
	return strings.ToUpper(link.Method)
}

// formatValue renders a scalar the way it appears in URLs.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}
