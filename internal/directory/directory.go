// Package directory resolves users and their group memberships. The engine
// only reads it: identifiers in, group lists out.
package directory

import "context"

type UserInfo struct {
	Groups []string
}

type Directory interface {
	// AllUsers enumerates every known user keyed by identifier.
	AllUsers(ctx context.Context) (map[string]UserInfo, error)
}
