package cel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvaluator(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)
	assert.NotNil(t, eval)
}

func TestValidateGuardExpression(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	tests := []struct {
		name      string
		expr      string
		wantError bool
	}{
		{
			name:      "valid field comparison",
			expr:      `fields["status"] == "open"`,
			wantError: false,
		},
		{
			name:      "valid list membership",
			expr:      `"urgent" in lists["tags"]`,
			wantError: false,
		},
		{
			name:      "valid schema check",
			expr:      `schema == "tasks" && row_id != ""`,
			wantError: false,
		},
		{
			name:      "non-bool expression",
			expr:      `fields["status"]`,
			wantError: true,
		},
		{
			name:      "invalid syntax",
			expr:      `invalid syntax here!!!`,
			wantError: true,
		},
		{
			name:      "undefined variable",
			expr:      `payload.status == "open"`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := eval.ValidateGuardExpression(tt.expr)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEvaluateGuard(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	fields := map[string]string{"status": "open", "title": "Report"}
	lists := map[string][]string{"tags": {"q1", "urgent"}}

	tests := []struct {
		name string
		expr string
		want bool
	}{
		{
			name: "field match",
			expr: `fields["status"] == "open"`,
			want: true,
		},
		{
			name: "field mismatch",
			expr: `fields["status"] == "closed"`,
			want: false,
		},
		{
			name: "list membership",
			expr: `"urgent" in lists["tags"]`,
			want: true,
		},
		{
			name: "schema and row id",
			expr: `schema == "tasks" && row_id == "17"`,
			want: true,
		},
		{
			name: "compound expression",
			expr: `fields["title"].startsWith("Rep") && "q1" in lists["tags"]`,
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval.EvaluateGuard(context.Background(), tt.expr, "tasks", "17", fields, lists)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateGuardErrors(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	_, err = eval.EvaluateGuard(context.Background(), `broken ===`, "tasks", "1", nil, nil)
	assert.Error(t, err)
}
