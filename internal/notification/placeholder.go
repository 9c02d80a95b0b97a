package notification

import (
	"strings"

	"structnotify/internal/record"
)

// token is one @@schema.field@@ occurrence found in a template. Schema is
// empty when the inner text carries no dot.
type token struct {
	full   string
	schema string
	field  string
}

// scanTokens walks the template left to right and returns every delimited
// token. Discovery is separate from substitution so each can be tested on
// its own.
func scanTokens(template string) []token {
	var tokens []token
	rest := template
	for {
		start := strings.Index(rest, "@@")
		if start < 0 {
			return tokens
		}
		end := strings.Index(rest[start+2:], "@@")
		if end < 0 {
			return tokens
		}

		inner := rest[start+2 : start+2+end]
		full := rest[start : start+2+end+2]

		trimmed := strings.TrimSpace(inner)
		schema, field := "", trimmed
		if dot := strings.Index(trimmed, "."); dot >= 0 {
			schema = strings.TrimSpace(trimmed[:dot])
			field = strings.TrimSpace(trimmed[dot+1:])
		}

		tokens = append(tokens, token{full: full, schema: schema, field: field})
		rest = rest[start+2+end+2:]
	}
}

// SubstituteMessage resolves @@schema.field@@ tokens against the row for
// message rendering. Tokens with no matching (table, label) value stay
// literal in the output; matches render as display values, multi-valued
// columns comma-joined. Every distinct token is substituted in one pass,
// covering repeated references to the same column.
func SubstituteMessage(template string, row record.Row) string {
	result := template
	seen := make(map[string]bool)

	for _, tok := range scanTokens(template) {
		if seen[tok.full] {
			continue
		}
		seen[tok.full] = true

		if tok.schema == "" || tok.field == "" {
			continue
		}
		value, ok := row.LookupQualified(tok.schema, tok.field)
		if !ok {
			continue
		}
		result = strings.ReplaceAll(result, tok.full, value.DisplayJoined())
	}

	return result
}

// SubstituteRecipients resolves tokens in a recipient specification. Unlike
// message rendering, an unmatched, dotless, or fieldless token vanishes, and
// matches render raw values: group columns as @-prefixed identifiers,
// comma-joined, anything else as plain raw scalars.
func SubstituteRecipients(spec string, row record.Row) string {
	result := spec
	seen := make(map[string]bool)

	for _, tok := range scanTokens(spec) {
		if seen[tok.full] {
			continue
		}
		seen[tok.full] = true

		result = strings.ReplaceAll(result, tok.full, recipientReplacement(tok, row))
	}

	return result
}

func recipientReplacement(tok token, row record.Row) string {
	if tok.schema == "" || tok.field == "" {
		return ""
	}

	value, ok := row.Lookup(tok.field)
	if !ok {
		return ""
	}

	if value.IsGroup() {
		prefixed := make([]string, len(value.Raw))
		for i, id := range value.Raw {
			prefixed[i] = "@" + id
		}
		return strings.Join(prefixed, ",")
	}

	return value.RawJoined()
}
