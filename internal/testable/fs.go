// Package testable holds the seams drydock uses to swap OS-level
// operations (file system, process execution, git repositories) for test
// doubles.
package testable

import (
	"io/fs"
	"os"
	"path/filepath"
)

// FileSystem is the subset of file operations used by discovery, scanning,
// and report persistence.
type FileSystem interface {
	Abs(path string) (string, error)
	Stat(name string) (os.FileInfo, error)
	Open(name string) (*os.File, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
	MkdirAll(path string, perm os.FileMode) error
	Rename(oldpath, newpath string) error
	Remove(name string) error
	WalkDir(root string, fn fs.WalkDirFunc) error
}

// OsFileSystem delegates to the os and filepath packages.
type OsFileSystem struct{}

func (OsFileSystem) Abs(path string) (string, error)       { return filepath.Abs(path) }
func (OsFileSystem) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }
func (OsFileSystem) Rename(oldpath, newpath string) error  { return os.Rename(oldpath, newpath) }
func (OsFileSystem) Remove(name string) error              { return os.Remove(name) }

func (OsFileSystem) Open(name string) (*os.File, error) {
	return os.Open(name) //nolint:gosec // caller controls path
}

func (OsFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name) //nolint:gosec // caller controls path
}

func (OsFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm) //nolint:gosec // caller controls path and perms
}

func (OsFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (OsFileSystem) WalkDir(root string, fn fs.WalkDirFunc) error {
	return filepath.WalkDir(root, fn)
}

// DefaultFS is the production FileSystem.
var DefaultFS FileSystem = OsFileSystem{}

var _ FileSystem = OsFileSystem{}
