package directory

import (
	"context"

	"structnotify/internal/config"
)

// StaticDirectory serves a fixed user set, seeded from configuration. Used
// for small deployments and tests.
type StaticDirectory struct {
	users map[string]UserInfo
}

func NewStaticDirectory(users map[string]UserInfo) *StaticDirectory {
	if users == nil {
		users = make(map[string]UserInfo)
	}
	return &StaticDirectory{users: users}
}

func NewStaticDirectoryFromConfig(cfg config.DirectoryConfig) *StaticDirectory {
	users := make(map[string]UserInfo, len(cfg.Users))
	for name, u := range cfg.Users {
		users[name] = UserInfo{Groups: u.Groups}
	}
	return &StaticDirectory{users: users}
}

func (d *StaticDirectory) AllUsers(ctx context.Context) (map[string]UserInfo, error) {
	out := make(map[string]UserInfo, len(d.users))
	for name, info := range d.users {
		out[name] = info
	}
	return out, nil
}
