package record

import (
	"fmt"
	"strings"
)

// Comparators in scan order: two-character operators first so "<=" is not
// read as "<" followed by a stray "=".
var comparators = []string{"!=", "<=", ">=", "!~", "=", "<", ">", "~"}

// ParseFilterLine parses one line of the filter mini-language into a typed
// clause. The grammar is "column comparator value"; the value may contain
// further whitespace.
func ParseFilterLine(line string) (FilterClause, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return FilterClause{}, fmt.Errorf("empty filter line")
	}

	idx := -1
	comp := ""
	for _, c := range comparators {
		if i := strings.Index(trimmed, c); i > 0 {
			if idx == -1 || i < idx || (i == idx && len(c) > len(comp)) {
				idx = i
				comp = c
			}
		}
	}
	if idx == -1 {
		return FilterClause{}, fmt.Errorf("no comparator in filter line %q", line)
	}

	column := strings.TrimSpace(trimmed[:idx])
	value := strings.TrimSpace(trimmed[idx+len(comp):])
	if column == "" {
		return FilterClause{}, fmt.Errorf("missing column in filter line %q", line)
	}

	value = strings.Trim(value, `"`)

	return FilterClause{
		Column:     column,
		Comparator: comp,
		Value:      value,
	}, nil
}

// ParseFilterText splits newline-separated filter text into clauses. Blank
// lines are skipped; a malformed line fails the whole block so a predicate
// never silently runs with fewer filters than written.
func ParseFilterText(text string) ([]FilterClause, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var clauses []FilterClause
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		clause, err := ParseFilterLine(line)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
	}
	return clauses, nil
}
