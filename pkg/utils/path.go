package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// CreateFolder makes sure every given directory exists.
func CreateFolder(folderPath ...string) error {
	for _, folder := range folderPath {
		if folder == "" {
			continue
		}
		if err := os.MkdirAll(folder, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", folder, err)
		}
	}
	return nil
}

// SessionPath returns the file that backs a named Telegram session.
func SessionPath(storageDir, name string) string {
	if filepath.Ext(name) == "" {
		name += ".session.json"
	}
	return filepath.Join(storageDir, name)
}
