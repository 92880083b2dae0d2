//go:build !linux && !darwin

package scanner

import (
	"os"
	"time"
)

// statTimes on platforms without a portable Stat_t reports only the modify
// time; birth and change fall back through the resolver's precedence.
func statTimes(info os.FileInfo) (birth, change, mod time.Time) {
	return time.Time{}, time.Time{}, info.ModTime()
}
