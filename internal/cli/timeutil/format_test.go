package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatAge(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{0, "0s"},
		{45 * time.Second, "45s"},
		{3*time.Minute + 12*time.Second, "3m12s"},
		{2*time.Hour + 5*time.Minute + 9*time.Second, "2h5m"},
		{4*24*time.Hour + 3*time.Hour, "4d3h"},
		{-time.Minute, "0s"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAge(now.Add(-tt.ago), now))
		})
	}
}

func TestFormatLocal(t *testing.T) {
	assert.Equal(t, "-", FormatLocal(time.Time{}))
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)
	assert.Equal(t, "2024-05-01 12:00:00", FormatLocal(ts))
}
