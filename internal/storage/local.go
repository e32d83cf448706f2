// Package storage provides the image stores used by the import pipeline:
// a local-disk store serving files under /static/images, and an Aliyun OSS
// client that falls back to local disk when the bucket is unreachable.
package storage

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Local stores image objects on disk under root/images and serves them from
// the /static/images route.
type Local struct {
	root string
}

func NewLocal(root string) *Local {
	return &Local{root: root}
}

func (l *Local) Put(data []byte, objectName string) (string, error) {
	if !validObjectName(objectName) {
		return "", fmt.Errorf("invalid object name %q", objectName)
	}
	path := filepath.Join(l.root, "images", filepath.FromSlash(objectName))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return "/static/images/" + objectName, nil
}

func (l *Local) DeleteAll(bookID string) bool {
	if !validObjectName(bookID) {
		return false
	}
	dir := filepath.Join(l.root, "images", bookID)
	if err := os.RemoveAll(dir); err != nil {
		log.Printf("[storage] remove %s: %v", dir, err)
		return false
	}
	return true
}

// ImagesDir is the directory the static file route serves.
func (l *Local) ImagesDir() string {
	return filepath.Join(l.root, "images")
}

// validObjectName rejects names that would escape the images directory.
func validObjectName(name string) bool {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, "\\") {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" || part == "." || part == ".." {
			return false
		}
	}
	return true
}
