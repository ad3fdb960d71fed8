package file

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
)

// WalkFunc is called for each matching regular file.
type WalkFunc func(path string) error

// SkipFunc is told about subdirectories that could not be read. It may be nil.
type SkipFunc func(path string, err error)

// Walk visits every regular file under root whose base name matches pattern
// (filepath.Match syntax), depth-first in lexical order.
//
// An unreadable root is fatal. An unreadable subdirectory is reported to
// onSkip and left out. Errors returned by fn stop the walk and are returned.
func Walk(ctx context.Context, root, pattern string, fn WalkFunc, onSkip SkipFunc) error {
	if _, err := filepath.Match(pattern, "probe"); err != nil {
		return fmt.Errorf("walk %s: pattern %q: %w", root, pattern, err)
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("walk %s: %w", root, err)
			}
			if onSkip != nil {
				onSkip(path, err)
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if ok, _ := filepath.Match(pattern, d.Name()); !ok {
			return nil
		}
		return fn(path)
	})
}
