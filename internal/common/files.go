package common

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// Sha256OfFile returns the hex digest and byte length of the file at path.
func Sha256OfFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), size, nil
}
