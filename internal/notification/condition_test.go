package notification

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 1, 8, 12, 0, 0, 0, time.Local)

func TestEvaluateConditionBefore(t *testing.T) {
	tests := []struct {
		name    string
		rawDate string
		arg     string
		want    bool
	}{
		{
			name:    "date within window",
			rawDate: "2024-01-10",
			arg:     "3",
			want:    true,
		},
		{
			name:    "date exactly at window edge",
			rawDate: "2024-01-11",
			arg:     "3",
			want:    true,
		},
		{
			name:    "date beyond window",
			rawDate: "2024-01-12",
			arg:     "3",
			want:    false,
		},
		{
			name:    "past date always within window",
			rawDate: "2023-12-01",
			arg:     "0",
			want:    true,
		},
		{
			name:    "today with zero days",
			rawDate: "2024-01-08",
			arg:     "0",
			want:    true,
		},
		{
			name:    "datetime value truncated to day",
			rawDate: "2024-01-10 23:59:59",
			arg:     "3",
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvaluateCondition(tt.rawDate, "before", tt.arg, testNow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateConditionAfter(t *testing.T) {
	tests := []struct {
		name    string
		rawDate string
		arg     string
		want    bool
	}{
		{
			name:    "date old enough",
			rawDate: "2024-01-05",
			arg:     "3",
			want:    true,
		},
		{
			name:    "date exactly at threshold",
			rawDate: "2024-01-05",
			arg:     "3",
			want:    true,
		},
		{
			name:    "date too recent",
			rawDate: "2024-01-06",
			arg:     "3",
			want:    false,
		},
		{
			name:    "future date never old enough",
			rawDate: "2024-02-01",
			arg:     "0",
			want:    false,
		},
		{
			name:    "today with zero days",
			rawDate: "2024-01-08",
			arg:     "0",
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvaluateCondition(tt.rawDate, "after", tt.arg, testNow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateConditionAt(t *testing.T) {
	tests := []struct {
		name    string
		rawDate string
		arg     string
		want    bool
	}{
		{
			name:    "clock time already passed today",
			rawDate: "2024-01-08",
			arg:     "11:00",
			want:    true,
		},
		{
			name:    "clock time still ahead today",
			rawDate: "2024-01-08",
			arg:     "13:00",
			want:    false,
		},
		{
			name:    "clock time on a past day",
			rawDate: "2024-01-07",
			arg:     "23:00",
			want:    true,
		},
		{
			name:    "clock time on a future day",
			rawDate: "2024-01-09",
			arg:     "11:00",
			want:    false,
		},
		{
			name:    "seconds precision",
			rawDate: "2024-01-08",
			arg:     "11:59:59",
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvaluateCondition(tt.rawDate, "at", tt.arg, testNow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateConditionErrors(t *testing.T) {
	t.Run("unparseable date", func(t *testing.T) {
		_, err := EvaluateCondition("not-a-date", "before", "3", testNow)
		assert.Error(t, err)
	})

	t.Run("non-integer day count", func(t *testing.T) {
		_, err := EvaluateCondition("2024-01-10", "before", "soon", testNow)
		assert.Error(t, err)
	})

	t.Run("unparseable clock pattern", func(t *testing.T) {
		_, err := EvaluateCondition("2024-01-08", "at", "noon", testNow)
		assert.Error(t, err)
	})

	t.Run("unknown operator is false without error", func(t *testing.T) {
		got, err := EvaluateCondition("2024-01-10", "around", "3", testNow)
		require.NoError(t, err)
		assert.False(t, got)
	})
}

// Growing the day count widens the before window but narrows after
// eligibility: before may only flip false->true, after only true->false.
func TestEvaluateConditionMonotonic(t *testing.T) {
	dates := []string{"2023-12-20", "2024-01-05", "2024-01-08", "2024-01-12", "2024-02-01"}

	t.Run("before only gains matches", func(t *testing.T) {
		for _, date := range dates {
			previous := false
			for n := 0; n <= 30; n++ {
				got, err := EvaluateCondition(date, "before", fmt.Sprintf("%d", n), testNow)
				require.NoError(t, err)
				if previous {
					assert.True(t, got, "before date %s flipped true->false at n=%d", date, n)
				}
				previous = got
			}
		}
	})

	t.Run("after only loses matches", func(t *testing.T) {
		for _, date := range dates {
			previous := true
			for n := 0; n <= 30; n++ {
				got, err := EvaluateCondition(date, "after", fmt.Sprintf("%d", n), testNow)
				require.NoError(t, err)
				if !previous {
					assert.False(t, got, "after date %s flipped false->true at n=%d", date, n)
				}
				previous = got
			}
		}
	})
}

func TestParseTimestamp(t *testing.T) {
	ts, err := ParseTimestamp("2024-01-10")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.Local).Unix(), ts)

	_, err = ParseTimestamp("garbage")
	assert.Error(t, err)
}
