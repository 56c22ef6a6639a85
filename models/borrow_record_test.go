package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDueDate(t *testing.T) {
	tests := []struct {
		name     string
		borrowed string
		days     int
		want     string
	}{
		{
			name:     "default_period",
			borrowed: "2025-03-03T10:30:00Z",
			days:     DefaultLoanPeriodDays,
			want:     "2025-03-10T10:30:00Z",
		},
		{
			name:     "rolls_over_month_end",
			borrowed: "2025-01-28T09:00:00Z",
			days:     7,
			want:     "2025-02-04T09:00:00Z",
		},
		{
			name:     "rolls_over_year_end",
			borrowed: "2025-12-29T23:59:59Z",
			days:     7,
			want:     "2026-01-05T23:59:59Z",
		},
		{
			name:     "leap_february",
			borrowed: "2024-02-26T08:00:00Z",
			days:     7,
			want:     "2024-03-04T08:00:00Z",
		},
		{
			name:     "custom_period",
			borrowed: "2025-06-01T12:00:00Z",
			days:     14,
			want:     "2025-06-15T12:00:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			borrowed, err := time.Parse(time.RFC3339, tt.borrowed)
			assert.NoError(t, err)
			want, err := time.Parse(time.RFC3339, tt.want)
			assert.NoError(t, err)
			assert.True(t, DueDate(borrowed, tt.days).Equal(want))
		})
	}
}

func TestBorrowRecordIsOverdue(t *testing.T) {
	due := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status BorrowStatus
		now    time.Time
		want   bool
	}{
		{"borrowed_before_due", StatusBorrowed, due.Add(-time.Hour), false},
		{"borrowed_at_due", StatusBorrowed, due, false},
		{"borrowed_past_due", StatusBorrowed, due.Add(time.Hour), true},
		{"returned_past_due", StatusReturned, due.Add(240 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := BorrowRecord{Status: tt.status, DueDate: due}
			assert.Equal(t, tt.want, r.IsOverdue(tt.now))
		})
	}
}
