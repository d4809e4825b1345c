package invoice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNext(t *testing.T) {
	at := time.Date(2025, time.August, 31, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "INV/25-26/001", Next(0, at))
	assert.Equal(t, "INV/25-26/004", Next(3, at))
	assert.Equal(t, "INV/25-26/100", Next(99, at))
	assert.Equal(t, "INV/25-26/1000", Next(999, at), "padding widens past three digits")
}

func TestFiscalYearRollsOverInApril(t *testing.T) {
	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2025, time.March, 31, 23, 59, 0, 0, time.UTC), "24-25"},
		{time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), "25-26"},
		{time.Date(2025, time.December, 15, 0, 0, 0, 0, time.UTC), "25-26"},
		{time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), "25-26"},
		{time.Date(2030, time.June, 1, 0, 0, 0, 0, time.UTC), "30-31"},
		// Century wrap keeps two digits.
		{time.Date(2099, time.May, 1, 0, 0, 0, 0, time.UTC), "99-00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FiscalYear(tt.at), "at %s", tt.at)
	}
}

func TestFallbackIsStable(t *testing.T) {
	createdAt := time.Date(2024, time.November, 2, 9, 30, 0, 0, time.UTC)

	first := Fallback(2, createdAt)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Fallback(2, createdAt))
	}
	assert.Equal(t, "INV/24-25/003", first)
}
