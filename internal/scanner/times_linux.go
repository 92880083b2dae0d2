//go:build linux

package scanner

import (
	"os"
	"syscall"
	"time"
)

// statTimes extracts filesystem timestamps. Linux has no birth time in
// Stat_t, so birth is reported as zero and the caller falls back to ctime.
func statTimes(info os.FileInfo) (birth, change, mod time.Time) {
	stat := info.Sys().(*syscall.Stat_t)
	change = time.Unix(stat.Ctim.Sec, stat.Ctim.Nsec)
	mod = info.ModTime()
	return time.Time{}, change, mod
}
