package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookAvailability(t *testing.T) {
	b := Book{TotalCopies: 3, AvailableCopies: 3}
	assert.True(t, b.IsAvailable())
	assert.Equal(t, 0, b.OnLoan())

	b.AvailableCopies = 0
	assert.False(t, b.IsAvailable())
	assert.Equal(t, 3, b.OnLoan())
}

func TestBookAvailableAfterResize(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		avail    int
		newTotal int
		want     int
	}{
		{"grow_adds_to_available", 5, 2, 8, 5},
		{"shrink_to_on_loan_count", 5, 2, 3, 0},
		{"shrink_below_on_loan_goes_negative", 5, 2, 2, -1},
		{"unchanged", 5, 2, 5, 2},
		{"no_copies_out", 4, 4, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Book{TotalCopies: tt.total, AvailableCopies: tt.avail}
			assert.Equal(t, tt.want, b.AvailableAfterResize(tt.newTotal))
		})
	}
}
