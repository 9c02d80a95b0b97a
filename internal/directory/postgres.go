package directory

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// PostgresDirectory reads the users table: one row per user with a text
// array of group names.
type PostgresDirectory struct {
	db *sql.DB
}

func NewPostgresDirectory(db *sql.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

func (d *PostgresDirectory) AllUsers(ctx context.Context) (map[string]UserInfo, error) {
	query := `SELECT name, groups FROM users`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := make(map[string]UserInfo)
	for rows.Next() {
		var name string
		var groups pq.StringArray
		if err := rows.Scan(&name, &groups); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users[name] = UserInfo{Groups: groups}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return users, nil
}
