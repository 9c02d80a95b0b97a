package predicate

import "time"

// Predicate is one stored notification rule: match rows of Schema whose
// Field satisfies Operator/Value, then notify UsersAndGroups with Message.
// Filters narrow the candidate rows, Expression optionally guards each match.
type Predicate struct {
	ID             string    `json:"id" db:"id"`
	Schema         string    `json:"schema" db:"schema"`
	Field          string    `json:"field" db:"field"`
	Operator       string    `json:"operator" db:"operator"`
	Value          string    `json:"value" db:"value"`
	Filters        string    `json:"filters" db:"filters"`
	UsersAndGroups string    `json:"users_and_groups" db:"users_and_groups"`
	Message        string    `json:"message" db:"message"`
	Expression     string    `json:"expression,omitempty" db:"expression"`
	Enabled        bool      `json:"enabled" db:"enabled"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

type CreatePredicateRequest struct {
	Schema         string `json:"schema" binding:"required"`
	Field          string `json:"field" binding:"required"`
	Operator       string `json:"operator" binding:"required"`
	Value          string `json:"value" binding:"required"`
	Filters        string `json:"filters"`
	UsersAndGroups string `json:"users_and_groups" binding:"required"`
	Message        string `json:"message" binding:"required"`
	Expression     string `json:"expression"`
	Enabled        *bool  `json:"enabled"`
}

type UpdatePredicateRequest struct {
	Schema         *string `json:"schema"`
	Field          *string `json:"field"`
	Operator       *string `json:"operator"`
	Value          *string `json:"value"`
	Filters        *string `json:"filters"`
	UsersAndGroups *string `json:"users_and_groups"`
	Message        *string `json:"message"`
	Expression     *string `json:"expression"`
	Enabled        *bool   `json:"enabled"`
}
