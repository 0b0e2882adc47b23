package preflight

import (
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v3/mem"
	"golang.org/x/sys/unix"
)

// minAvailableMemoryBytes is the floor below which rendering is likely to
// thrash: ffmpeg buffers every description clip while mixing.
const minAvailableMemoryBytes = 256 << 20

// CheckDirectoryAccess verifies that the directory exists and is readable and
// writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDiskSpace verifies that the filesystem holding path has at least
// minFreeGiB gibibytes available.
func CheckDiskSpace(name, path string, minFreeGiB int) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	freeBytes := stat.Bavail * uint64(stat.Bsize)
	freeGiB := float64(freeBytes) / float64(1<<30)
	detail := fmt.Sprintf("%.1f GiB free on %s", freeGiB, path)
	if minFreeGiB > 0 && freeBytes < uint64(minFreeGiB)<<30 {
		return Result{Name: name, Detail: fmt.Sprintf("%s (need %d GiB)", detail, minFreeGiB)}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckMemory verifies that enough memory is available for a render.
func CheckMemory() Result {
	const name = "Available memory"
	stats, err := mem.VirtualMemory()
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("error: %v", err)}
	}
	detail := fmt.Sprintf("%.1f GiB available", float64(stats.Available)/float64(1<<30))
	if stats.Available < minAvailableMemoryBytes {
		return Result{Name: name, Detail: detail + " (low)"}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}
