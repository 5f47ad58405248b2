package storagedir_test

import (
	"testing"

	"github.com/lumenvault/photovault/internal/storagedir"
	"github.com/stretchr/testify/assert"
)

func TestFindContainingPicksLongestPrefix(t *testing.T) {
	disks := []storagedir.DiskInfo{
		{MountPoint: "/"},
		{MountPoint: "/mnt/photos"},
	}

	d, ok := storagedir.FindContaining("/mnt/photos/2024", disks)
	assert.True(t, ok)
	assert.Equal(t, "/mnt/photos", d.MountPoint)
}

func TestFindContainingReturnsFalseWhenNoneMatch(t *testing.T) {
	disks := []storagedir.DiskInfo{{MountPoint: "/data"}}
	_, ok := storagedir.FindContaining("/other/path", disks)
	assert.False(t, ok)
}
