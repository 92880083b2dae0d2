package main

import (
	"context"
	"os/exec"
	"time"

	"github.com/orsenthil/organizer/internal/executor"
	"github.com/orsenthil/organizer/internal/metadata"
)

const exiftoolDateFormat = "2006:01:02 15:04:05"

// restoreFileDates returns a TimestampFunc that sets a moved file's creation
// and modification dates via exiftool. Best-effort: failures are ignored,
// the move already happened.
func restoreFileDates(timeout time.Duration) executor.TimestampFunc {
	if timeout <= 0 {
		timeout = metadata.DefaultTimeout
	}
	return func(path string, created, modified time.Time) {
		if created.IsZero() || created.Unix() <= 0 {
			created = modified
		}
		if created.IsZero() || created.Unix() <= 0 {
			return
		}
		if modified.IsZero() || modified.Unix() <= 0 {
			modified = created
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		_ = exec.CommandContext(ctx, "exiftool",
			"-overwrite_original",
			"-FileCreateDate="+created.Format(exiftoolDateFormat),
			"-FileModifyDate="+modified.Format(exiftoolDateFormat),
			path,
		).Run()
	}
}
