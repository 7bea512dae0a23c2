// Package validation checks local files before fm-cli reads or writes them.
package validation

import (
	"fmt"
	"os"
	"path/filepath"
)

// InputFile checks that path exists and is a regular file.
func InputFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking file %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", path)
	}
	return nil
}

// OutputPath checks that a file can be created at path: the parent
// directory must exist and path itself must not be a directory.
func OutputPath(path string) error {
	if path == "" {
		return fmt.Errorf("output path is empty")
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("output path %s is a directory", path)
	}

	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return fmt.Errorf("output directory does not exist: %s", dir)
	}
	if err != nil {
		return fmt.Errorf("error checking output directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// IsValidFilePermissions reports an error when group or others have any
// access. The session file holds tokens and must stay owner-only.
func IsValidFilePermissions(mode os.FileMode) error {
	if mode.Perm()&0o077 != 0 {
		return fmt.Errorf("file permissions are too permissive: %s, expected 0600", mode.Perm().String())
	}
	return nil
}

// PrivateFile checks the permissions of an existing file. A missing file
// is not an error.
func PrivateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error checking file %s: %w", path, err)
	}
	if err := IsValidFilePermissions(info.Mode()); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
