package record

import "strings"

// Kind classifies a column once, when the row is constructed. Substitution
// dispatches on it instead of probing types at render time.
type Kind int

const (
	KindScalar Kind = iota
	KindMultiScalar
	KindGroupRef
	KindMultiGroupRef
)

// GroupTypeNames holds the declared column types treated as group references.
// Empty when the group capability is not installed, in which case every
// column renders as a plain scalar.
var GroupTypeNames = map[string]bool{
	"group": true,
}

// Column describes one declared column of a schema.
type Column struct {
	Table string `bson:"-" json:"table"`
	Label string `bson:"label" json:"label"`
	Type  string `bson:"type" json:"type"`
	Multi bool   `bson:"multi" json:"multi"`
}

// ResolveKind maps the declared type and multi flag onto the closed variant
// set used by the placeholder resolver.
func (c Column) ResolveKind() Kind {
	group := GroupTypeNames[strings.ToLower(c.Type)]
	switch {
	case group && c.Multi:
		return KindMultiGroupRef
	case group:
		return KindGroupRef
	case c.Multi:
		return KindMultiScalar
	default:
		return KindScalar
	}
}

// Value is one column's content for one row. Raw holds the underlying
// scalars (always at least length one for a populated value), Display the
// human-rendered forms.
type Value struct {
	Column  Column
	Kind    Kind
	Raw     []string
	Display []string
}

func NewValue(col Column, raw, display []string) Value {
	if display == nil {
		display = raw
	}
	return Value{
		Column:  col,
		Kind:    col.ResolveKind(),
		Raw:     raw,
		Display: display,
	}
}

// FirstRaw returns the first underlying scalar, or "" for an empty value.
func (v Value) FirstRaw() string {
	if len(v.Raw) == 0 {
		return ""
	}
	return v.Raw[0]
}

// RawJoined renders the raw scalars comma-joined, single values unchanged.
func (v Value) RawJoined() string {
	return strings.Join(v.Raw, ",")
}

// DisplayJoined renders the display values comma-joined.
func (v Value) DisplayJoined() string {
	return strings.Join(v.Display, ",")
}

// IsGroup reports whether the value carries group references.
func (v Value) IsGroup() bool {
	return v.Kind == KindGroupRef || v.Kind == KindMultiGroupRef
}

// Row is one matched record: an ordered set of values plus the row
// identifier, unique within its schema. Ephemeral, produced per query.
type Row struct {
	ID     string
	Values []Value
}

// Lookup returns the first value whose column label matches, searching
// across all queried columns in order.
func (r Row) Lookup(label string) (Value, bool) {
	for _, v := range r.Values {
		if v.Column.Label == label {
			return v, true
		}
	}
	return Value{}, false
}

// LookupQualified returns the first value matching both table and label.
func (r Row) LookupQualified(table, label string) (Value, bool) {
	for _, v := range r.Values {
		if v.Column.Table == table && v.Column.Label == label {
			return v, true
		}
	}
	return Value{}, false
}
