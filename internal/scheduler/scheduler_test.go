package scheduler

import (
	"testing"

	"real-estate-site/internal/cleanup"
	"real-estate-site/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestParseDailyRunTime(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"03:30", "30 3 * * *"},
		{"00:00", "0 0 * * *"},
		{"23:59", "59 23 * * *"},
		{"4:5", "5 4 * * *"},
		{"24:00", "30 3 * * *"},
		{"12:60", "30 3 * * *"},
		{"noon", "30 3 * * *"},
		{"", "30 3 * * *"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, parseDailyRunTime(tt.input), "input %q", tt.input)
	}
}

func TestStartWhenDisabled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Cleanup.Enabled = false

	s := NewScheduler(cleanup.NewService(nil, t.TempDir()), cfg)
	assert.NoError(t, s.Start())
	s.Stop()
}

func TestStartAndStop(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Cleanup.Enabled = true
	cfg.Cleanup.DailyRunTime = "03:30"

	s := NewScheduler(cleanup.NewService(nil, t.TempDir()), cfg)
	assert.NoError(t, s.Start())
	assert.True(t, s.isRunning)

	s.Stop()
	assert.False(t, s.isRunning)
}
