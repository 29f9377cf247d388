// ABOUTME: Entity descriptors: the per-kind schema, search/export fields and activity templates
// ABOUTME: Kinds are data; adding one means adding a Descriptor, not a new switch arm

package entity

import (
	"math/rand/v2"
	"strings"
	"time"
)

// Kind names an entity collection ("users", "products", ...).
type Kind string

// Built-in kinds
const (
	Users     Kind = "users"
	Products  Kind = "products"
	Orders    Kind = "orders"
	Customers Kind = "customers"
	Invoices  Kind = "invoices"
)

// Action is a mutation recorded in the activity log.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// FieldType is the HTML input type used to edit a field.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldTel      FieldType = "tel"
	FieldNumber   FieldType = "number"
	FieldSelect   FieldType = "select"
	FieldDate     FieldType = "date"
	FieldTextarea FieldType = "textarea"
)

// Field is one editable form field.
type Field struct {
	Name     string
	Label    string
	Type     FieldType
	Required bool
	Options  []string
	Step     string
}

// ExportField maps a CSV column label to a record key (dotted paths allowed).
type ExportField struct {
	Label string
	Key   string
}

// ColumnFormat controls how a list column renders its value.
type ColumnFormat string

const (
	FormatText   ColumnFormat = "text"
	FormatPrice  ColumnFormat = "price"
	FormatDate   ColumnFormat = "date"
	FormatStatus ColumnFormat = "status"
	FormatName   ColumnFormat = "name"
)

// Column is one list-table column. Keys are tried in order and the first
// non-empty value wins.
type Column struct {
	Label  string
	Keys   []string
	Format ColumnFormat
}

// Value returns the first non-empty value among the column's keys.
func (c Column) Value(r Record) string {
	for _, k := range c.Keys {
		if s := r.Text(k); s != "" {
			return s
		}
	}
	return ""
}

// ActivityTemplate phrases an activity entry. Title and Description may use
// {name}, {id}, {kind} and {action} placeholders.
type ActivityTemplate struct {
	Title       string
	Description string
	Icon        string
	Color       string
}

// Descriptor describes one entity kind.
type Descriptor struct {
	Kind     Kind
	Singular string
	Plural   string
	Icon     string

	Fields       []Field
	Columns      []Column
	SearchFields []string
	ExportFields []ExportField
	// MarkdownFields are rendered as Markdown on the detail page.
	MarkdownFields []string

	// Activity holds per-action templates. Missing actions use Fallback.
	Activity map[Action]ActivityTemplate
	Fallback ActivityTemplate

	// DisplayName names a record in activity descriptions.
	DisplayName func(r Record) string
	// Defaults fills kind-specific fields on local create.
	Defaults func(r Record, now time.Time, rnd *rand.Rand)
}

// Exports returns the CSV column list, derived from Fields when no explicit
// export list is configured.
func (d *Descriptor) Exports() []ExportField {
	if len(d.ExportFields) > 0 {
		return d.ExportFields
	}
	out := make([]ExportField, 0, len(d.Fields))
	for _, f := range d.Fields {
		out = append(out, ExportField{Label: f.Label, Key: f.Name})
	}
	return out
}

// Searchable returns the fields the free-text search scans.
func (d *Descriptor) Searchable() []string {
	if len(d.SearchFields) == 0 {
		return []string{"id"}
	}
	return d.SearchFields
}

// Field returns the named form field.
func (d *Descriptor) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// StatusOptions returns the options of the "status" select, used for the
// list filter.
func (d *Descriptor) StatusOptions() []string {
	f, ok := d.Field("status")
	if !ok {
		return nil
	}
	return f.Options
}

// Entry is a fully rendered activity log message.
type Entry struct {
	Title       string
	Description string
	Icon        string
	Color       string
}

// Describe renders the activity message for action on r. For deletes r is
// nil and rawID names the removed record.
func (d *Descriptor) Describe(action Action, r Record, rawID string) Entry {
	tmpl, ok := d.Activity[action]
	if !ok {
		tmpl = d.Fallback
	}

	name := rawID
	if r != nil {
		if d.DisplayName != nil {
			name = d.DisplayName(r)
		} else if id := r.ID(); id != "" {
			name = id
		}
		if rawID == "" {
			rawID = r.ID()
		}
	}

	rep := strings.NewReplacer(
		"{name}", name,
		"{id}", rawID,
		"{kind}", string(d.Kind),
		"{action}", string(action),
	)
	return Entry{
		Title:       rep.Replace(tmpl.Title),
		Description: rep.Replace(tmpl.Description),
		Icon:        tmpl.Icon,
		Color:       tmpl.Color,
	}
}

// StatusClass buckets a status value into "active", "inactive" or "warning"
// for badge styling.
func StatusClass(status string) string {
	switch strings.ToLower(status) {
	case "actif", "active", "en stock", "in_stock", "livré", "delivered", "payée", "paid", "shipped":
		return "active"
	case "inactif", "inactive", "rupture", "out_of_stock", "annulé", "cancelled", "impayée", "discontinued":
		return "inactive"
	default:
		return "warning"
	}
}

// Cell returns the raw text of column c for r. FormatName columns use the
// descriptor's display name.
func (d *Descriptor) Cell(c Column, r Record) string {
	if c.Format == FormatName && d.DisplayName != nil {
		if name := r.Text("name"); name != "" {
			return name
		}
		return d.DisplayName(r)
	}
	return c.Value(r)
}
