// Package storage implements the host file bridge: atomic file access under a root directory.
package storage

import "time"

// FileInfo describes one file found under the root. Path is slash-separated
// and relative to the root.
type FileInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Provider confines file operations to one directory tree.
type Provider interface {
	Root() string
	// List returns every regular file under dir whose name ends with ext.
	List(dir, ext string) ([]FileInfo, error)
	Read(path string) ([]byte, error)
	// Write replaces path atomically, creating parent directories.
	Write(path string, content []byte) error
	Delete(path string) error
}
