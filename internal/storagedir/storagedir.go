// Package storagedir reports disk capacity for configured storage
// roots, used by the storage-location picker to warn an operator
// before pointing ingest at a nearly-full volume (spec §5).
package storagedir

import (
	"sort"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/lumenvault/photovault/internal/apperr"
)

// DiskInfo summarizes one mounted volume.
type DiskInfo struct {
	Name           string
	MountPoint     string
	TotalBytes     uint64
	AvailableBytes uint64
}

// ListDisks enumerates mounted physical volumes (gopsutil's
// all=false partition set, which can include removable drives),
// skipping any whose usage cannot be read, sorted so
// drive-letter-style mounts (Windows) sort before Unix paths, then
// alphabetically within each group — mirroring the sort key the
// original storage picker used.
func ListDisks() ([]DiskInfo, error) {
	partitions, err := disk.Partitions(false)
	if err != nil {
		return nil, apperr.New(apperr.KindIO, "storagedir.ListDisks", err)
	}

	out := make([]DiskInfo, 0, len(partitions))
	for _, part := range partitions {
		usage, err := disk.Usage(part.Mountpoint)
		if err != nil {
			continue
		}
		out = append(out, DiskInfo{
			Name:           part.Device,
			MountPoint:     part.Mountpoint,
			TotalBytes:     usage.Total,
			AvailableBytes: usage.Free,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		ki, si := diskSortKey(out[i].MountPoint)
		kj, sj := diskSortKey(out[j].MountPoint)
		if ki != kj {
			return ki < kj
		}
		return si < sj
	})

	return out, nil
}

// diskSortKey buckets drive-letter mount points (e.g. "C:\") ahead of
// everything else, then orders lexicographically within the bucket.
func diskSortKey(mountPoint string) (int, string) {
	normalized := strings.ToLower(strings.TrimSpace(mountPoint))
	if len(normalized) >= 2 && normalized[1] == ':' {
		return 0, normalized
	}
	return 1, normalized
}

// FindContaining returns the disk with the longest matching mount
// point prefix for path, i.e. the volume path actually lives on.
func FindContaining(path string, disks []DiskInfo) (DiskInfo, bool) {
	pathLower := strings.ToLower(path)

	var best DiskInfo
	found := false
	for _, d := range disks {
		mount := strings.ToLower(d.MountPoint)
		if mount == "" || !strings.HasPrefix(pathLower, mount) {
			continue
		}
		if !found || len(d.MountPoint) > len(best.MountPoint) {
			best = d
			found = true
		}
	}
	return best, found
}
