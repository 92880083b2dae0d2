//go:build darwin

package scanner

import (
	"os"
	"syscall"
	"time"
)

// statTimes extracts filesystem timestamps including the birth time that
// APFS/HFS+ record.
func statTimes(info os.FileInfo) (birth, change, mod time.Time) {
	stat := info.Sys().(*syscall.Stat_t)
	birth = time.Unix(stat.Birthtimespec.Sec, stat.Birthtimespec.Nsec)
	change = time.Unix(stat.Ctimespec.Sec, stat.Ctimespec.Nsec)
	mod = info.ModTime()
	return birth, change, mod
}
