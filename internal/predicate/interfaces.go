package predicate

import (
	"context"
)

type Service interface {
	CreatePredicate(ctx context.Context, req CreatePredicateRequest) (*Predicate, error)
	ListPredicates(ctx context.Context) ([]Predicate, error)
	GetPredicate(ctx context.Context, id string) (*Predicate, error)
	UpdatePredicate(ctx context.Context, id string, req UpdatePredicateRequest) (*Predicate, error)
	DeletePredicate(ctx context.Context, id string) error
	BackingSchemas(ctx context.Context) ([]string, error)
}
