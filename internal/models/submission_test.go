package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClassifyCompletion(t *testing.T) {
	assign := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	due := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name        string
		submittedAt time.Time
		assignDate  *time.Time
		dueDate     *time.Time
		want        CompletionStatus
	}{
		{
			name:        "within window",
			submittedAt: time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
			assignDate:  &assign,
			dueDate:     &due,
			want:        StatusOnTime,
		},
		{
			name:        "before assignment",
			submittedAt: time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC),
			assignDate:  &assign,
			dueDate:     &due,
			want:        StatusBeforeAssignment,
		},
		{
			name:        "last millisecond of due date is on time",
			submittedAt: time.Date(2024, 1, 20, 23, 59, 59, 999*int(time.Millisecond), time.UTC),
			assignDate:  &assign,
			dueDate:     &due,
			want:        StatusOnTime,
		},
		{
			name:        "just past midnight is late",
			submittedAt: time.Date(2024, 1, 21, 0, 0, 1, 0, time.UTC),
			assignDate:  &assign,
			dueDate:     &due,
			want:        StatusLate,
		},
		{
			name:        "no due date never late",
			submittedAt: time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC),
			assignDate:  &assign,
			want:        StatusOnTime,
		},
		{
			name:        "no assign date has no early cutoff",
			submittedAt: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
			dueDate:     &due,
			want:        StatusOnTime,
		},
		{
			name:        "no dates at all",
			submittedAt: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			want:        StatusOnTime,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClassifyCompletion(tc.submittedAt, tc.assignDate, tc.dueDate)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestClassifyCompletionDueDateInNonUTCZone(t *testing.T) {
	assign := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	// 2024-01-20 08:00 +08:00 is 2024-01-20 00:00 UTC; the cutoff is still
	// end of the UTC calendar day.
	zone := time.FixedZone("UTC+8", 8*3600)
	due := time.Date(2024, 1, 20, 8, 0, 0, 0, zone)

	onTime := time.Date(2024, 1, 20, 22, 0, 0, 0, time.UTC)
	require.Equal(t, StatusOnTime, ClassifyCompletion(onTime, &assign, &due))

	late := time.Date(2024, 1, 21, 2, 0, 0, 0, time.UTC)
	require.Equal(t, StatusLate, ClassifyCompletion(late, &assign, &due))
}

func TestDueEndOfDay(t *testing.T) {
	due := time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)
	assignment := Assignment{DueDate: &due}

	cutoff := assignment.DueEndOfDay()
	require.NotNil(t, cutoff)
	require.Equal(t, time.Date(2024, 3, 5, 23, 59, 59, 999*int(time.Millisecond), time.UTC), *cutoff)

	require.Nil(t, Assignment{}.DueEndOfDay())
}
