// Package resources serves the CRUD surface for every table-backed resource
// from one generic handler, configured per resource by a Descriptor.
package resources

import (
	"github.com/shareshine/backend/internal/models"
	"github.com/shareshine/backend/internal/store"
)

// Op identifies one CRUD operation.
type Op uint8

const (
	OpList Op = 1 << iota
	OpGet
	OpCreate
	OpUpdate
	OpDelete
)

// Descriptor configures the generic handler for one resource.
type Descriptor struct {
	// Name is the URL segment under /api.
	Name string
	// Table is the store table.
	Table string
	// Singular is used in client messages ("Event not found").
	Singular string
	// Required fields are checked on create, in order; the first missing
	// one is reported.
	Required []string
	// NotNull fields may be omitted but never sent as null.
	NotNull []string
	// DefaultOrder applies when the client does not pass ?sort.
	DefaultOrder store.Order
	// Filterable query parameters become equality filters on list.
	Filterable []string
	// Sortable allows ?sort=field or ?sort=-field on list.
	Sortable bool
	// Columns are the fields that may be sorted on.
	Columns []string
	// Schema returns a fresh pointer to the write schema.
	Schema func() any
	// Admin marks operations that require an admin session when admin
	// auth is enforced.
	Admin Op
}

// Events is the events resource.
var Events = Descriptor{
	Name:         "events",
	Table:        "events",
	Singular:     "Event",
	NotNull:      []string{"image_urls", "highlights"},
	DefaultOrder: store.Order{Field: "date", Desc: true},
	Filterable:   []string{"type"},
	Sortable:     true,
	Columns:      models.EventColumns,
	Schema:       func() any { return &models.Event{} },
	Admin:        OpCreate | OpUpdate | OpDelete,
}

// Members is the membership applications resource.
var Members = Descriptor{
	Name:         "members",
	Table:        "members",
	Singular:     "Member",
	Required:     []string{"full_name", "email", "phone", "age"},
	NotNull:      []string{"full_name", "email", "phone", "age"},
	DefaultOrder: store.Order{Field: store.ColumnCreatedAt, Desc: true},
	Columns:      models.MemberColumns,
	Schema:       func() any { return &models.Member{} },
	Admin:        OpList | OpGet | OpUpdate | OpDelete,
}

// Partners is the partnership requests resource.
var Partners = Descriptor{
	Name:         "partners",
	Table:        "partners",
	Singular:     "Partner",
	Required:     []string{"organization_name", "contact_person", "email", "phone"},
	NotNull:      []string{"organization_name", "contact_person", "email", "phone", "partnership_interest"},
	DefaultOrder: store.Order{Field: store.ColumnCreatedAt, Desc: true},
	Columns:      models.PartnerColumns,
	Schema:       func() any { return &models.Partner{} },
	Admin:        OpList | OpGet | OpUpdate | OpDelete,
}

// All lists every resource in mount order.
var All = []Descriptor{Events, Members, Partners}

// Tables returns the table names of descs.
func Tables(descs ...Descriptor) []string {
	out := make([]string, len(descs))
	for i, d := range descs {
		out[i] = d.Table
	}
	return out
}

func (d Descriptor) hasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}
