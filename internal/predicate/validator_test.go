package predicate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validCreateRequest() CreatePredicateRequest {
	return CreatePredicateRequest{
		Schema:         "tasks",
		Field:          "due",
		Operator:       "before",
		Value:          "3",
		UsersAndGroups: "alice,@eng",
		Message:        "Task @@tasks.title@@ due @@tasks.due@@",
	}
}

func TestValidatePredicate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*CreatePredicateRequest)
		wantError bool
	}{
		{
			name:   "valid before predicate",
			mutate: func(r *CreatePredicateRequest) {},
		},
		{
			name: "valid after predicate",
			mutate: func(r *CreatePredicateRequest) {
				r.Operator = "after"
				r.Value = "14"
			},
		},
		{
			name: "valid at predicate",
			mutate: func(r *CreatePredicateRequest) {
				r.Operator = "at"
				r.Value = "09:30"
			},
		},
		{
			name: "at with seconds",
			mutate: func(r *CreatePredicateRequest) {
				r.Operator = "at"
				r.Value = "09:30:15"
			},
		},
		{
			name: "valid filters",
			mutate: func(r *CreatePredicateRequest) {
				r.Filters = "status = open\npriority >= 2"
			},
		},
		{
			name: "valid guard expression",
			mutate: func(r *CreatePredicateRequest) {
				r.Expression = `fields["status"] == "open"`
			},
		},
		{
			name:      "blank schema",
			mutate:    func(r *CreatePredicateRequest) { r.Schema = "" },
			wantError: true,
		},
		{
			name:      "blank field",
			mutate:    func(r *CreatePredicateRequest) { r.Field = "" },
			wantError: true,
		},
		{
			name:      "unknown operator rejected at write time",
			mutate:    func(r *CreatePredicateRequest) { r.Operator = "around" },
			wantError: true,
		},
		{
			name:      "non-integer day count",
			mutate:    func(r *CreatePredicateRequest) { r.Value = "soon" },
			wantError: true,
		},
		{
			name:      "negative day count",
			mutate:    func(r *CreatePredicateRequest) { r.Value = "-1" },
			wantError: true,
		},
		{
			name: "bad clock pattern",
			mutate: func(r *CreatePredicateRequest) {
				r.Operator = "at"
				r.Value = "quarter past nine"
			},
			wantError: true,
		},
		{
			name:      "blank recipients",
			mutate:    func(r *CreatePredicateRequest) { r.UsersAndGroups = "" },
			wantError: true,
		},
		{
			name:      "blank message",
			mutate:    func(r *CreatePredicateRequest) { r.Message = "" },
			wantError: true,
		},
		{
			name:      "malformed filter line",
			mutate:    func(r *CreatePredicateRequest) { r.Filters = "no comparator here" },
			wantError: true,
		},
		{
			name:      "guard expression must compile",
			mutate:    func(r *CreatePredicateRequest) { r.Expression = "nonsense ===" },
			wantError: true,
		},
		{
			name:      "guard expression must be boolean",
			mutate:    func(r *CreatePredicateRequest) { r.Expression = `fields["status"]` },
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(&req)

			err := ValidatePredicate(req)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUpdatePredicate(t *testing.T) {
	str := func(s string) *string { return &s }

	t.Run("empty update is fine", func(t *testing.T) {
		assert.NoError(t, ValidateUpdatePredicate(UpdatePredicateRequest{}))
	})

	t.Run("blank schema rejected", func(t *testing.T) {
		assert.Error(t, ValidateUpdatePredicate(UpdatePredicateRequest{Schema: str("")}))
	})

	t.Run("unknown operator rejected", func(t *testing.T) {
		assert.Error(t, ValidateUpdatePredicate(UpdatePredicateRequest{Operator: str("never")}))
	})

	t.Run("filters revalidated", func(t *testing.T) {
		assert.Error(t, ValidateUpdatePredicate(UpdatePredicateRequest{Filters: str("broken line")}))
		assert.NoError(t, ValidateUpdatePredicate(UpdatePredicateRequest{Filters: str("status = open")}))
	})

	t.Run("clearing filters allowed", func(t *testing.T) {
		assert.NoError(t, ValidateUpdatePredicate(UpdatePredicateRequest{Filters: str("")}))
	})
}

func TestValidateOperatorValue(t *testing.T) {
	assert.NoError(t, ValidateOperatorValue("before", "7"))
	assert.NoError(t, ValidateOperatorValue("at", "08:00"))
	assert.Error(t, ValidateOperatorValue("before", "08:00"))
	assert.Error(t, ValidateOperatorValue("at", "7"))
}
