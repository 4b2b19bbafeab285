package salesking

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-hclog"

	"github.com/salesking/salesking-go/pkg/schema"
)

// Sort directions.
const (
	SortAscending  = "ASC"
	SortDescending = "DESC"
)

// MaxPerPage is the largest page size the API serves.
const MaxPerPage = 100

// Collection is a filtered, sorted and paginated list of entities of one
// resource type. Items accumulate across loads.
type Collection struct {
	client       *Client
	resourceType string
	schema       *schema.Document
	logger       hclog.Logger

	items []*Entity

	filterNames []string
	filters     map[string]any

	sort     string
	sortBy   string
	perPage  string
	autoload bool

	currentPage  *int
	totalPages   *int
	totalEntries *int
}

func newCollection(client *Client, resourceType string, doc *schema.Document) *Collection {
	return &Collection{
		client:       client,
		resourceType: resourceType,
		schema:       doc,
		logger:       client.logger.Named("collection"),
		filters:      make(map[string]any),
		sort:         SortAscending,
		perPage:      strconv.Itoa(MaxPerPage),
	}
}

// ResourceType returns the resource type of the listed entities.
func (c *Collection) ResourceType() string {
	return c.resourceType
}

// SetResourceType switches the collection to another resource type. Filters
// and loaded items are kept.
func (c *Collection) SetResourceType(resourceType string) error {
	doc, err := c.client.schema("SetResourceType", resourceType)
	if err != nil {
		return err
	}
	c.resourceType = resourceType
	c.schema = doc
	return nil
}

func (c *Collection) instances() *schema.Link {
	return c.schema.Link(schema.RelInstances)
}

// AddFilter validates value against the filter[name] declaration of the
// instances link and stores it.
func (c *Collection) AddFilter(name string, value any) (*Collection, error) {
	p := c.instances().Filter(name)
	if p == nil {
		return c, &Error{
			Op:      "AddFilter",
			Code:    CodeFilterNotExisting,
			Msg:     fmt.Sprintf("filter %q does not exist", name),
			Context: map[string]any{"filter": name},
		}
	}

	if err := schema.Check(p, value); err != nil {
		return c, &Error{
			Op:      "AddFilter",
			Code:    CodeFilterInvalid,
			Msg:     "invalid filter value",
			Context: map[string]any{"filter": name, "value": value},
			Err:     err,
		}
	}

	if _, ok := c.filters[name]; !ok {
		c.filterNames = append(c.filterNames, name)
	}
	c.filters[name] = value
	return c, nil
}

// Filter is AddFilter for callers addressing filters by name as if they were
// methods: an unknown filter is reported as an undefined method.
func (c *Collection) Filter(name string, value any) (*Collection, error) {
	_, err := c.AddFilter(name, value)
	if CodeOf(err) == CodeFilterNotExisting {
		return c, &Error{
			Op:      "Filter",
			Code:    CodeUndefinedMethod,
			Msg:     "call to undefined method: " + name,
			Context: map[string]any{"method": name},
		}
	}
	return c, err
}

// SetFilters replaces all filters. Entries are added in sorted key order and
// the first invalid entry aborts; entries added before it stay applied.
func (c *Collection) SetFilters(filters map[string]any) (*Collection, error) {
	c.filterNames = nil
	c.filters = make(map[string]any, len(filters))

	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, err := c.AddFilter(name, filters[name]); err != nil {
			return c, err
		}
	}
	return c, nil
}

// Filters returns a copy of the active filters.
func (c *Collection) Filters() map[string]any {
	out := make(map[string]any, len(c.filters))
	for k, v := range c.filters {
		out[k] = v
	}
	return out
}

// Sort sets the sort direction, SortAscending or SortDescending.
func (c *Collection) Sort(direction string) (*Collection, error) {
	if direction != SortAscending && direction != SortDescending {
		return c, &Error{
			Op:      "Sort",
			Code:    CodeSortInvalidDirection,
			Msg:     "invalid sorting direction - please choose either ASC or DESC",
			Context: map[string]any{"direction": direction},
		}
	}
	c.sort = direction
	return c, nil
}

// SortDirection returns the sort direction.
func (c *Collection) SortDirection() string {
	return c.sort
}

// SortBy sets the field to sort by. The field must be listed by the
// sort_by property of the instances link.
func (c *Collection) SortBy(field string) (*Collection, error) {
	var sortable *schema.Property
	if link := c.instances(); link != nil {
		sortable = link.Properties[schema.SortByProperty]
	}
	if sortable == nil {
		return c, &Error{
			Op:      "SortBy",
			Code:    CodeSortByCannotSort,
			Msg:     fmt.Sprintf("%s does not support sorting", c.resourceType),
			Context: map[string]any{"field": field},
		}
	}

	for _, allowed := range sortable.Enum {
		if formatValue(allowed) == field {
			c.sortBy = field
			return c, nil
		}
	}
	return c, &Error{
		Op:      "SortBy",
		Code:    CodeSortByInvalidProperty,
		Msg:     fmt.Sprintf("invalid property %q for sorting", field),
		Context: map[string]any{"field": field},
	}
}

// SortField returns the field to sort by, or the empty string.
func (c *Collection) SortField() string {
	return c.sortBy
}

// PerPage sets the page size. Any number up to MaxPerPage is accepted,
// numeric strings included, and sent to the server as given.
func (c *Collection) PerPage(n any) (*Collection, error) {
	v, ok := perPageValue(n)
	if !ok {
		return c, &Error{
			Op:      "PerPage",
			Code:    CodePerPageOnlyInt,
			Msg:     fmt.Sprintf("please set a number up to %d for the per-page limit", MaxPerPage),
			Context: map[string]any{"value": n},
		}
	}
	c.perPage = v
	return c, nil
}

// PerPageValue returns the page size as it appears in the query.
func (c *Collection) PerPageValue() string {
	return c.perPage
}

var numberProperty = &schema.Property{Type: schema.TypeNumber}

func perPageValue(n any) (string, bool) {
	if n == nil || schema.Check(numberProperty, n) != nil {
		return "", false
	}
	s := strings.TrimSpace(formatValue(n))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f > MaxPerPage {
		return "", false
	}
	return s, true
}

// Autoload reports whether Load fetches every page.
func (c *Collection) Autoload() bool {
	return c.autoload
}

// SetAutoload enables or disables fetching every page on Load.
func (c *Collection) SetAutoload(autoload bool) {
	c.autoload = autoload
}

// Items returns the loaded entities.
func (c *Collection) Items() []*Entity {
	return append([]*Entity(nil), c.items...)
}

// Total returns the number of entries reported by the last load, or nil
// before the first successful load.
func (c *Collection) Total() *int {
	return c.totalEntries
}

// TotalPages returns the number of pages reported by the last load.
func (c *Collection) TotalPages() *int {
	return c.totalPages
}

// CurrentPage returns the page number reported by the last load.
func (c *Collection) CurrentPage() *int {
	return c.currentPage
}

func (c *Collection) String() string {
	b, err := json.Marshal(c.items)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// Load fetches the first page. With autoload enabled the remaining pages are
// fetched too, one after another.
func (c *Collection) Load(ctx context.Context) (*Collection, error) {
	return c.load(ctx, 0)
}

// LoadPage fetches a single page. Page 0 leaves the page to the server and
// behaves like Load.
func (c *Collection) LoadPage(ctx context.Context, page int) (*Collection, error) {
	return c.load(ctx, page)
}

// Query returns the query string sent for page; page 0 omits the page
// parameter.
func (c *Collection) Query(page int) string {
	var query []string
	for _, name := range c.filterNames {
		query = append(query, "filter["+name+"]="+url.QueryEscape(formatValue(c.filters[name])))
	}
	if c.sort != "" {
		query = append(query, "sort="+c.sort)
	}
	if c.sortBy != "" {
		query = append(query, "sort_by="+c.sortBy)
	}
	if c.perPage != "" {
		query = append(query, "per_page="+url.QueryEscape(c.perPage))
	}
	if page > 0 {
		query = append(query, "page="+strconv.Itoa(page))
	}
	return "?" + strings.Join(query, "&")
}

func (c *Collection) load(ctx context.Context, page int) (*Collection, error) {
	link := c.instances()
	if link == nil {
		return c, &Error{
			Op:      "Load",
			Code:    CodeEndpointNotFound,
			Msg:     fmt.Sprintf("invalid endpoint %q for %s", schema.RelInstances, c.resourceType),
			Context: map[string]any{"rel": schema.RelInstances},
		}
	}

	resp, err := c.client.Request(ctx, apiPath(link.Href)+c.Query(page), http.MethodGet, nil)
	if err != nil {
		return c, err
	}
	if resp.StatusCode != http.StatusOK {
		return c, &Error{Op: "Load", Code: CodeLoadError, Msg: "fetching failed, an error happened", Response: resp}
	}

	body, ok := resp.Data.(map[string]any)
	if !ok {
		return c, &Error{Op: "Load", Code: CodeLoadError, Msg: "unexpected response payload", Response: resp}
	}

	meta, hasMeta := body["collection"].(map[string]any)
	var totalEntries, totalPages, currentPage *int
	if hasMeta {
		totalEntries = intField(meta, "total_entries")
		totalPages = intField(meta, "total_pages")
		currentPage = intField(meta, "current_page")
	}

	elements, _ := body[Pluralize(c.resourceType)].([]any)
	items := make([]*Entity, 0, len(elements))
	for _, el := range elements {
		var payload any
		if obj, ok := el.(map[string]any); ok {
			if inner, ok := obj[c.resourceType].(map[string]any); ok {
				payload = inner
			}
		}

		item := newEntity(c.client, c.resourceType, c.schema)
		if _, err := item.Bind(payload, nil); err != nil {
			return c, err
		}
		items = append(items, item)
	}

	// The page is only applied once every element bound.
	if hasMeta {
		c.totalEntries = totalEntries
		c.totalPages = totalPages
		c.currentPage = currentPage
	}
	c.items = append(c.items, items...)

	c.logger.Trace("loaded page",
		"resource_type", c.resourceType,
		"page", page,
		"items", len(elements),
		"total_pages", derefInt(c.totalPages),
	)

	if c.autoload && page == 0 {
		for next := 2; c.totalPages != nil && next <= *c.totalPages; next++ {
			if _, err := c.load(ctx, next); err != nil {
				return c, err
			}
		}
	}

	return c, nil
}

func intField(m map[string]any, key string) *int {
	v, ok := wholeNumber(m[key])
	if !ok {
		return nil
	}
	n := int(v)
	return &n
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
