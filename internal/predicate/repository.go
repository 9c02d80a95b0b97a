package predicate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgerrors "structnotify/pkg/errors"
)

type Repository interface {
	CreatePredicate(ctx context.Context, p *Predicate) error
	ListPredicates(ctx context.Context) ([]Predicate, error)
	GetPredicate(ctx context.Context, id string) (*Predicate, error)
	UpdatePredicate(ctx context.Context, p *Predicate) error
	DeletePredicate(ctx context.Context, id string) error
	BackingSchemas(ctx context.Context) ([]string, error)
}

type PostgresRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreatePredicate(ctx context.Context, p *Predicate) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `
		INSERT INTO predicates (id, schema, field, operator, value, filters, users_and_groups, message, expression, enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Schema, p.Field, p.Operator, p.Value,
		p.Filters, p.UsersAndGroups, p.Message, p.Expression,
		p.Enabled, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create predicate: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetPredicate(ctx context.Context, id string) (*Predicate, error) {
	query := `
		SELECT id, schema, field, operator, value, filters, users_and_groups, message, expression, enabled, created_at, updated_at
		FROM predicates
		WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)

	var p Predicate
	err := row.Scan(
		&p.ID, &p.Schema, &p.Field, &p.Operator, &p.Value,
		&p.Filters, &p.UsersAndGroups, &p.Message, &p.Expression,
		&p.Enabled, &p.CreatedAt, &p.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrNotFound.WithDetail("id", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get predicate: %w", err)
	}

	return &p, nil
}

// ListPredicates returns predicates in storage order. The engine evaluates
// them in this order, so it must be stable across calls.
func (r *PostgresRepository) ListPredicates(ctx context.Context) ([]Predicate, error) {
	query := `
		SELECT id, schema, field, operator, value, filters, users_and_groups, message, expression, enabled, created_at, updated_at
		FROM predicates
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list predicates: %w", err)
	}
	defer rows.Close()

	var predicates []Predicate
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		var p Predicate
		if err := rows.Scan(
			&p.ID, &p.Schema, &p.Field, &p.Operator, &p.Value,
			&p.Filters, &p.UsersAndGroups, &p.Message, &p.Expression,
			&p.Enabled, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan predicate: %w", err)
		}
		predicates = append(predicates, p)
	}

	return predicates, rows.Err()
}

func (r *PostgresRepository) UpdatePredicate(ctx context.Context, p *Predicate) error {
	p.UpdatedAt = time.Now()

	query := `
		UPDATE predicates
		SET schema = $1, field = $2, operator = $3, value = $4, filters = $5,
		    users_and_groups = $6, message = $7, expression = $8, enabled = $9, updated_at = $10
		WHERE id = $11
	`

	res, err := r.db.ExecContext(ctx, query,
		p.Schema, p.Field, p.Operator, p.Value, p.Filters,
		p.UsersAndGroups, p.Message, p.Expression, p.Enabled, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update predicate: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return pkgerrors.ErrNotFound.WithDetail("id", p.ID)
	}

	return nil
}

func (r *PostgresRepository) DeletePredicate(ctx context.Context, id string) error {
	query := `DELETE FROM predicates WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete predicate: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return pkgerrors.ErrNotFound.WithDetail("id", id)
	}

	return nil
}

// BackingSchemas lists the distinct schemas enabled predicates read from.
// Used to report cache dependencies without evaluating anything.
func (r *PostgresRepository) BackingSchemas(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT schema FROM predicates WHERE enabled ORDER BY schema`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list backing schemas: %w", err)
	}
	defer rows.Close()

	var schemas []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan schema: %w", err)
		}
		schemas = append(schemas, s)
	}

	return schemas, rows.Err()
}
