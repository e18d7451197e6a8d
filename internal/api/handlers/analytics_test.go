package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coachdesk/teamtrainer/internal/analytics"
)

func TestNewAnalyticsHandlerWindowSettings(t *testing.T) {
	h := NewAnalyticsHandler(nil, 5, 12)
	assert.Equal(t, 5, h.defaultWindow)
	assert.Equal(t, 12, h.maxWindow)

	// Unset configuration falls back to the engine constants.
	h = NewAnalyticsHandler(nil, 0, 0)
	assert.Equal(t, analytics.DefaultTrendWindow, h.defaultWindow)
	assert.Equal(t, analytics.MaxTrendWindow, h.maxWindow)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 8, clampLimit("", 8, 1, 30))
	assert.Equal(t, 8, clampLimit("abc", 8, 1, 30))
	assert.Equal(t, 1, clampLimit("0", 8, 1, 30))
	assert.Equal(t, 12, clampLimit("999", 8, 1, 12))
	assert.Equal(t, 4, clampLimit("4", 8, 2, 30))
}
