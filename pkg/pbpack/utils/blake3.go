package utils

import (
	"fmt"
	"io"
	"os"

	blake3 "lukechampine.com/blake3"
)

// ComputeBLAKE3 returns the hex BLAKE3-256 digest of pack bytes. Used to
// fingerprint serialized packs independently of the per-resource CRCs.
func ComputeBLAKE3(data []byte) string {
	sum := blake3.Sum256(data)
	return fmt.Sprintf("%x", sum[:])
}

// ComputeBLAKE3File returns the hex BLAKE3-256 digest of a pack file,
// streaming it rather than holding the whole pack in memory.
func ComputeBLAKE3File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := blake3.New(32, nil)
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
