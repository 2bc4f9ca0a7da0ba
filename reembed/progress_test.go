package reembed

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_ReportsAtInterval(t *testing.T) {
	var out bytes.Buffer
	tracker := NewProgressTracker(&out, 10, 5)
	tracker.Start()

	tracker.Update(3)
	assert.Empty(t, out.String(), "below interval, no report yet")

	tracker.Update(5)
	assert.Contains(t, out.String(), "5/10")
	assert.Contains(t, out.String(), "50.0%")
}

func TestProgressTracker_Increment(t *testing.T) {
	var out bytes.Buffer
	tracker := NewProgressTracker(&out, 4, 2)
	tracker.Start()

	tracker.Increment(1)
	tracker.Increment(1)
	assert.Contains(t, out.String(), "2/4")

	// Increments past total are capped.
	tracker.Increment(10)
	assert.Contains(t, out.String(), "4/4")
}

func TestProgressTracker_Finish(t *testing.T) {
	var out bytes.Buffer
	tracker := NewProgressTracker(&out, 7, 100)
	tracker.Start()
	tracker.Update(3)
	tracker.Finish()

	assert.Contains(t, out.String(), "7/7")
	assert.Contains(t, out.String(), "100.0%")
	assert.True(t, strings.HasSuffix(out.String(), "\n"))
}

func TestProgressTracker_IgnoredBeforeStart(t *testing.T) {
	var out bytes.Buffer
	tracker := NewProgressTracker(&out, 10, 1)

	tracker.Update(5)
	tracker.Increment(5)
	tracker.Finish()
	assert.Empty(t, out.String())
	assert.Zero(t, tracker.Elapsed())
}
