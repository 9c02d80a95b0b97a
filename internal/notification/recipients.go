package notification

import (
	"strings"

	"structnotify/internal/directory"
	"structnotify/internal/record"
)

// ResolveRecipients computes the set of users a predicate's recipient
// specification addresses for one row. The spec is substituted against the
// row first, so placeholders can pull recipients out of the data itself.
//
// A user is included when its identifier is listed literally, or when it
// belongs to at least one referenced @group. A token of just "@" names the
// empty group, which matches nobody.
func ResolveRecipients(spec string, row record.Row, users map[string]directory.UserInfo) map[string]struct{} {
	substituted := SubstituteRecipients(spec, row)

	literals := make(map[string]struct{})
	groups := make(map[string]struct{})

	for _, tok := range strings.Split(substituted, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if strings.HasPrefix(tok, "@") {
			group := tok[1:]
			if group != "" {
				groups[group] = struct{}{}
			}
			continue
		}
		literals[tok] = struct{}{}
	}

	recipients := make(map[string]struct{})
	for name, info := range users {
		if _, ok := literals[name]; ok {
			recipients[name] = struct{}{}
			continue
		}
		for _, g := range info.Groups {
			if _, ok := groups[g]; ok {
				recipients[name] = struct{}{}
				break
			}
		}
	}

	return recipients
}
