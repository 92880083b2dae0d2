// Package hasher computes content fingerprints for duplicate grouping.
//
// MD5 is deliberate: the threat model is accidental collision between files
// on one disk, not an adversary crafting collisions, and the digests stay
// compatible with reports produced by earlier runs.
package hasher

import (
	"crypto/md5" //nolint:gosec // content fingerprint, not authentication
	"encoding/hex"
	"io"
	"os"
)

// chunkSize is the read buffer size (1MB).
const chunkSize = 1 << 20

// Fingerprint returns the hex MD5 digest of the file at path.
//
// The file is streamed in chunkSize reads so memory stays flat regardless of
// file size. An I/O error mid-read propagates to the caller, which excludes
// that file from the scan rather than aborting the run.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := md5.New() //nolint:gosec
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
