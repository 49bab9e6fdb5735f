// Package query translates company list filters into a store query.
//
// A Query is plain data: the Record Store turns it into SQL scopes and the
// client evaluates it in memory with Matches and Less, so a filter means the
// same thing wherever it runs.
package query

import (
	"math"
	"strings"

	"github.com/gartstein/companies/internal/company/models"
)

const (
	// DefaultPageSize is used when a spec carries no page size.
	DefaultPageSize = 10
	// MaxPageSize caps the page size a caller may request.
	MaxPageSize = 100
)

// Field names a sortable or filterable company attribute.
type Field string

const (
	FieldName      Field = "name"
	FieldIndustry  Field = "industry"
	FieldLocation  Field = "location"
	FieldSize      Field = "size"
	FieldFounded   Field = "founded"
	FieldCreatedAt Field = "createdAt"
	FieldUpdatedAt Field = "updatedAt"
)

var sortable = []Field{
	FieldName, FieldIndustry, FieldLocation, FieldSize,
	FieldFounded, FieldCreatedAt, FieldUpdatedAt,
}

// Match selects how a condition compares its value. Both kinds ignore case.
type Match int

const (
	// Contains matches when the field contains the value.
	Contains Match = iota
	// Equals matches when the field equals the value.
	Equals
)

// Spec describes a filtered, sorted page as a client or query string states it.
// Empty text fields do not filter.
type Spec struct {
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Industry string `json:"industry,omitempty" yaml:"industry,omitempty"`
	Location string `json:"location,omitempty" yaml:"location,omitempty"`
	Size     string `json:"size,omitempty" yaml:"size,omitempty"`
	// Sort is a field name, optionally prefixed with "-" for descending.
	Sort     string `json:"sort,omitempty" yaml:"sort,omitempty"`
	Page     int    `json:"page,omitempty" yaml:"page,omitempty"`
	PageSize int    `json:"pageSize,omitempty" yaml:"pageSize,omitempty"`
}

// Condition is one field constraint. Value is already lower-cased.
type Condition struct {
	Field Field
	Match Match
	Value string
}

// Order is the sort key of a query.
type Order struct {
	Field Field
	Desc  bool
}

// String renders o in the "-field" notation.
func (o Order) String() string {
	if o.Desc {
		return "-" + string(o.Field)
	}
	return string(o.Field)
}

// Query is the translated form of a Spec. Page and PageSize are normalized.
type Query struct {
	Conditions []Condition
	Order      Order
	Page       int
	PageSize   int
}

// Offset is the number of matching records before the requested page. It
// saturates at math.MaxInt instead of wrapping.
func (q Query) Offset() int {
	if q.Page <= 1 || q.PageSize <= 0 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.PageSize {
		return math.MaxInt
	}
	return (q.Page - 1) * q.PageSize
}

// Limit is the maximum number of records on the requested page.
func (q Query) Limit() int {
	return q.PageSize
}

// Builder builds queries with its own pagination bounds. A zero MaxPageSize
// leaves the page size uncapped.
type Builder struct {
	DefaultPageSize int
	MaxPageSize     int
}

// NewBuilder returns a Builder, falling back to the package defaults for
// non-positive arguments.
func NewBuilder(defaultPageSize, maxPageSize int) Builder {
	if defaultPageSize <= 0 {
		defaultPageSize = DefaultPageSize
	}
	if maxPageSize < 0 {
		maxPageSize = MaxPageSize
	}
	return Builder{DefaultPageSize: defaultPageSize, MaxPageSize: maxPageSize}
}

// Build translates spec into a Query. It performs no I/O.
func (b Builder) Build(spec Spec) Query {
	q := Query{
		Order:    ParseOrder(spec.Sort),
		Page:     spec.Page,
		PageSize: spec.PageSize,
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = b.DefaultPageSize
	}
	if b.MaxPageSize > 0 && q.PageSize > b.MaxPageSize {
		q.PageSize = b.MaxPageSize
	}
	// Past this page the offset no longer fits in an int.
	if last := math.MaxInt / q.PageSize; q.Page > last {
		q.Page = last
	}

	add := func(f Field, m Match, v string) {
		v = strings.TrimSpace(v)
		if v == "" {
			return
		}
		q.Conditions = append(q.Conditions, Condition{Field: f, Match: m, Value: Fold(v)})
	}
	add(FieldName, Contains, spec.Name)
	add(FieldIndustry, Equals, spec.Industry)
	add(FieldLocation, Equals, spec.Location)
	add(FieldSize, Equals, spec.Size)
	return q
}

// Build translates spec with the package default bounds.
func Build(spec Spec) Query {
	return NewBuilder(DefaultPageSize, MaxPageSize).Build(spec)
}

// ParseOrder parses "field" or "-field". Unknown fields sort by name ascending.
func ParseOrder(s string) Order {
	s = strings.TrimSpace(s)
	desc := strings.HasPrefix(s, "-")
	name := strings.ReplaceAll(strings.TrimPrefix(s, "-"), "_", "")
	for _, f := range sortable {
		if strings.EqualFold(name, string(f)) {
			return Order{Field: f, Desc: desc}
		}
	}
	return Order{Field: FieldName}
}

// Fold is the case folding every text comparison uses. Stores that filter
// outside Go keep a folded copy of each filterable column rather than relying
// on the database's own lower-casing.
func Fold(s string) string {
	return strings.ToLower(s)
}

// TotalPages is ceil(total/pageSize), never less than 1.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// Matches reports whether c satisfies every condition of q.
func (q Query) Matches(c *models.Company) bool {
	for _, cond := range q.Conditions {
		v := Fold(text(c, cond.Field))
		switch cond.Match {
		case Contains:
			if !strings.Contains(v, cond.Value) {
				return false
			}
		case Equals:
			if v != cond.Value {
				return false
			}
		}
	}
	return true
}

// Less orders a before b by the query's sort key, breaking ties by id.
func (q Query) Less(a, b *models.Company) bool {
	c := compare(a, b, q.Order.Field)
	if q.Order.Desc {
		c = -c
	}
	if c != 0 {
		return c < 0
	}
	return a.ID.String() < b.ID.String()
}

func text(c *models.Company, f Field) string {
	switch f {
	case FieldName:
		return c.Name
	case FieldIndustry:
		return c.Industry
	case FieldLocation:
		return c.Location
	case FieldSize:
		return c.Size
	}
	return ""
}

func compare(a, b *models.Company, f Field) int {
	switch f {
	case FieldFounded:
		return a.Founded - b.Founded
	case FieldCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case FieldUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	}
	return strings.Compare(text(a, f), text(b, f))
}
