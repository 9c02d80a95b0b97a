package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilterLine(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		want      FilterClause
		wantError bool
	}{
		{
			name: "simple equality",
			line: "status = open",
			want: FilterClause{Column: "status", Comparator: "=", Value: "open"},
		},
		{
			name: "no spaces",
			line: "status=open",
			want: FilterClause{Column: "status", Comparator: "=", Value: "open"},
		},
		{
			name: "two-character comparator wins over prefix",
			line: "priority >= 2",
			want: FilterClause{Column: "priority", Comparator: ">=", Value: "2"},
		},
		{
			name: "not-equal",
			line: "state != done",
			want: FilterClause{Column: "state", Comparator: "!=", Value: "done"},
		},
		{
			name: "regex match",
			line: "title ~ ^Report",
			want: FilterClause{Column: "title", Comparator: "~", Value: "^Report"},
		},
		{
			name: "value keeps internal whitespace",
			line: "title = Quarterly Report 2024",
			want: FilterClause{Column: "title", Comparator: "=", Value: "Quarterly Report 2024"},
		},
		{
			name: "quoted value unwrapped",
			line: `status = "in progress"`,
			want: FilterClause{Column: "status", Comparator: "=", Value: "in progress"},
		},
		{
			name: "qualified column",
			line: "tasks.due <= 2024-02-01",
			want: FilterClause{Column: "tasks.due", Comparator: "<=", Value: "2024-02-01"},
		},
		{
			name:      "blank line",
			line:      "   ",
			wantError: true,
		},
		{
			name:      "no comparator",
			line:      "just words",
			wantError: true,
		},
		{
			name:      "comparator first means no column",
			line:      "= value",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFilterLine(tt.line)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFilterText(t *testing.T) {
	t.Run("blank text means no clauses", func(t *testing.T) {
		clauses, err := ParseFilterText("  \n \n")
		require.NoError(t, err)
		assert.Nil(t, clauses)
	})

	t.Run("multiple lines with blanks and CRLF", func(t *testing.T) {
		clauses, err := ParseFilterText("status = open\r\n\npriority >= 2\n")
		require.NoError(t, err)
		require.Len(t, clauses, 2)
		assert.Equal(t, "status", clauses[0].Column)
		assert.Equal(t, "priority", clauses[1].Column)
	})

	t.Run("one malformed line fails the block", func(t *testing.T) {
		_, err := ParseFilterText("status = open\nnot a filter")
		assert.Error(t, err)
	})
}
