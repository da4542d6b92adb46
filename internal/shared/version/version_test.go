package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "v1.2.3", Normalize("1.2.3"))
	assert.Equal(t, "v1.2.3", Normalize("v1.2.3"))
	assert.Equal(t, "", Normalize(""))
}

func TestIsRelease(t *testing.T) {
	assert.True(t, IsRelease("1.4.0"))
	assert.False(t, IsRelease("1.4.0-rc.1"))
	assert.False(t, IsRelease("dev"))
}

func TestAtLeast(t *testing.T) {
	tests := []struct {
		current, minimum string
		want             bool
	}{
		{"1.2.0", "1.1.9", true},
		{"v1.2.0", "1.2.0", true},
		{"1.0.0", "1.2.0", false},
		{"dev", "9.9.9", true},
		{"garbage", "1.0.0", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AtLeast(tt.current, tt.minimum), tt.current+" vs "+tt.minimum)
	}
}

func TestString(t *testing.T) {
	assert.Contains(t, String(), Version)
}
