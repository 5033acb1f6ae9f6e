package mocks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMockClockNextMinute(t *testing.T) {
	c := NewMockClock(time.Date(2025, 9, 14, 1, 9, 30, 0, time.UTC))

	assert.Equal(t, time.Date(2025, 9, 14, 1, 10, 0, 0, time.UTC), c.NextMinute())
	assert.Equal(t, time.Date(2025, 9, 14, 1, 11, 0, 0, time.UTC), c.NextMinute())

	c.Advance(90 * time.Second)
	assert.Equal(t, time.Date(2025, 9, 14, 1, 12, 30, 0, time.UTC), c.Now())
}
