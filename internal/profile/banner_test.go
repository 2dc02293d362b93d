package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDismissKeyTracksPercentage(t *testing.T) {
	assert.Equal(t, "dismissed_completion_36", DismissKey(36))
	assert.NotEqual(t, DismissKey(36), DismissKey(45))
}

func TestShouldShowBanner(t *testing.T) {
	incomplete := &Analysis{IsComplete: false, CompletionPercentage: 36}
	complete := &Analysis{IsComplete: true, CompletionPercentage: 100}

	assert.True(t, ShouldShowBanner("patient", incomplete, false))
	assert.False(t, ShouldShowBanner("patient", incomplete, true), "dismissed")
	assert.False(t, ShouldShowBanner("patient", complete, false), "complete profile")
	assert.False(t, ShouldShowBanner("admin", incomplete, false), "admin suppressed")
	assert.False(t, ShouldShowBanner("doctor", incomplete, false), "doctor suppressed")
	assert.False(t, ShouldShowBanner("patient", nil, false), "no analysis")
}
