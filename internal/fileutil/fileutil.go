// Package fileutil provides file and path utility functions.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// WriteTempImage persists normalized image bytes to a uniquely named
// temporary file and returns its path. Names are unique per call so
// concurrent pipeline runs never collide in the temp namespace.
func WriteTempImage(data []byte) (string, error) {
	path := filepath.Join(os.TempDir(), "image-"+uuid.NewString()+".jpg")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("writing temp image: %w", err)
	}
	return path, nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
