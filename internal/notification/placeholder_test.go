package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"structnotify/internal/record"
)

func taskRow() record.Row {
	return record.Row{
		ID: "42",
		Values: []record.Value{
			record.NewValue(record.Column{Table: "tasks", Label: "title", Type: "text"}, []string{"Report"}, nil),
			record.NewValue(record.Column{Table: "tasks", Label: "due", Type: "date"}, []string{"2024-01-10"}, []string{"10 Jan 2024"}),
			record.NewValue(record.Column{Table: "tasks", Label: "owner", Type: "group"}, []string{"alice"}, nil),
			record.NewValue(record.Column{Table: "tasks", Label: "reviewers", Type: "group", Multi: true}, []string{"bob", "carol"}, nil),
			record.NewValue(record.Column{Table: "tasks", Label: "tags", Type: "text", Multi: true}, []string{"q1", "urgent"}, []string{"Q1", "Urgent"}),
		},
	}
}

func TestSubstituteMessage(t *testing.T) {
	row := taskRow()

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{
			name:     "scalar display value",
			template: "Task @@tasks.title@@ is open",
			want:     "Task Report is open",
		},
		{
			name:     "display form preferred over raw",
			template: "Due @@tasks.due@@",
			want:     "Due 10 Jan 2024",
		},
		{
			name:     "unmatched token stays literal",
			template: "Hi @@people.name@@",
			want:     "Hi @@people.name@@",
		},
		{
			name:     "wrong table stays literal",
			template: "See @@projects.title@@",
			want:     "See @@projects.title@@",
		},
		{
			name:     "multi-valued renders comma-joined display",
			template: "Tags: @@tasks.tags@@",
			want:     "Tags: Q1,Urgent",
		},
		{
			name:     "group column renders plain in message context",
			template: "Reviewers: @@tasks.reviewers@@",
			want:     "Reviewers: bob,carol",
		},
		{
			name:     "repeated token substituted everywhere",
			template: "@@tasks.title@@ and again @@tasks.title@@",
			want:     "Report and again Report",
		},
		{
			name:     "mixed matched and unmatched",
			template: "@@tasks.title@@ / @@tasks.missing@@",
			want:     "Report / @@tasks.missing@@",
		},
		{
			name:     "no tokens",
			template: "plain text",
			want:     "plain text",
		},
		{
			name:     "unterminated token untouched",
			template: "broken @@tasks.title",
			want:     "broken @@tasks.title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SubstituteMessage(tt.template, row))
		})
	}
}

func TestSubstituteRecipients(t *testing.T) {
	row := taskRow()

	tests := []struct {
		name string
		spec string
		want string
	}{
		{
			name: "group column gains at-prefix",
			spec: "@@tasks.owner@@",
			want: "@alice",
		},
		{
			name: "multi group column prefixes each identifier",
			spec: "@@tasks.reviewers@@",
			want: "@bob,@carol",
		},
		{
			name: "non-group column renders raw",
			spec: "@@tasks.due@@",
			want: "2024-01-10",
		},
		{
			name: "multi non-group comma-joined raw",
			spec: "@@tasks.tags@@",
			want: "q1,urgent",
		},
		{
			name: "unmatched token vanishes",
			spec: "admin,@@tasks.missing@@",
			want: "admin,",
		},
		{
			name: "fieldless token vanishes",
			spec: "@@ @@",
			want: "",
		},
		{
			name: "dotless token vanishes even when the label exists",
			spec: "@@owner@@",
			want: "",
		},
		{
			name: "literals pass through untouched",
			spec: "alice,@sales",
			want: "alice,@sales",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SubstituteRecipients(tt.spec, row))
		})
	}
}

func TestScanTokens(t *testing.T) {
	tokens := scanTokens("a @@s.f@@ b @@plain@@ c")
	assert.Len(t, tokens, 2)

	assert.Equal(t, "@@s.f@@", tokens[0].full)
	assert.Equal(t, "s", tokens[0].schema)
	assert.Equal(t, "f", tokens[0].field)

	assert.Equal(t, "@@plain@@", tokens[1].full)
	assert.Equal(t, "", tokens[1].schema)
	assert.Equal(t, "plain", tokens[1].field)
}
