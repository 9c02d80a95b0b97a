package record

import (
	"context"
)

// FilterClause is one parsed filter line, typed at the boundary with the
// record source. Clauses on a query are AND-combined.
type FilterClause struct {
	Column     string
	Comparator string
	Value      string
}

// Query is the assembled request handed to a Source.
type Query struct {
	Schemas []string
	Columns []string
	Filters []FilterClause
}

// Source executes assembled queries against the structured-data store.
type Source interface {
	Execute(ctx context.Context, q Query) ([]Row, error)
}

// Search accumulates schemas, columns and filters, then executes against a
// Source. Mirrors the builder surface of the structured-data engine.
type Search struct {
	source Source
	query  Query
}

func NewSearch(source Source) *Search {
	return &Search{source: source}
}

func (s *Search) AddSchema(name string) {
	s.query.Schemas = append(s.query.Schemas, name)
}

// AddColumn requests a column. "table.*" requests every declared column of
// table; synthetic specs like "%rowid%" are passed through untouched.
func (s *Search) AddColumn(spec string) {
	s.query.Columns = append(s.query.Columns, spec)
}

func (s *Search) AddFilter(column, value, comparator, combinator string) {
	// Only AND combination is supported; the combinator argument exists to
	// mirror the collaborator surface.
	_ = combinator
	s.query.Filters = append(s.query.Filters, FilterClause{
		Column:     column,
		Comparator: comparator,
		Value:      value,
	})
}

func (s *Search) Execute(ctx context.Context) ([]Row, error) {
	return s.source.Execute(ctx, s.query)
}
