// Package loader reads raw configuration maps for mindstorm from TOML
// files and environment variables. Maps from several sources are combined
// with DeepMerge before being decoded into typed settings.
package loader

import (
	"io/fs"
	"os"
)

// Loader reads one configuration source into a nested map. A source that
// does not exist yields a nil map and no error.
type Loader interface {
	Load() (map[string]any, error)
}

// FileSystem is the part of the file system the TOML loader reads.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	Stat(path string) (fs.FileInfo, error)
}

// OSFS reads from the operating system.
type OSFS struct{}

func (OSFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }
func (OSFS) Stat(path string) (fs.FileInfo, error) { return os.Stat(path) }

// DefaultFS returns OSFS.
func DefaultFS() FileSystem {
	return OSFS{}
}
