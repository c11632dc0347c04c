// Package archive creates the compressed archives a release is distributed
// as. An archive holds its source directory as the single top-level entry.
package archive

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/heroiclabs/sdkbuild/pkgs/command"
)

// Archiver compresses a directory into an archive file.
type Archiver interface {
	// Ext is the file extension including the leading dot.
	Ext() string
	// Archive writes srcDir to dest, leaving out every file or directory
	// whose name matches one of exclude (path.Match syntax) at any depth.
	Archive(ctx context.Context, srcDir, dest string, exclude []string) error
}

// Formats lists the names accepted by New.
var Formats = []string{"7z", "zip", "tar.zst", "tar.xz"}

// New returns the Archiver for format. runner is used by external tools.
func New(format string, runner command.Runner) (Archiver, error) {
	switch strings.ToLower(format) {
	case "7z", "":
		return &SevenZip{Runner: runner}, nil
	case "zip":
		return Zip{}, nil
	case "tar.zst", "zst":
		return TarZstd{}, nil
	case "tar.xz", "xz":
		return TarXz{}, nil
	}
	return nil, fmt.Errorf("archive: unknown format %q (valid: %s)", format, strings.Join(Formats, ", "))
}

// Excluded reports whether any element of the slash-separated name matches
// one of patterns.
func Excluded(name string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	for _, elem := range strings.Split(name, "/") {
		for _, p := range patterns {
			if ok, _ := path.Match(p, elem); ok {
				return true
			}
		}
	}
	return false
}

// entry is one file or directory to store, named relative to the parent of
// the source directory.
type entry struct {
	name string
	path string
	info fs.FileInfo
}

// walk lists srcDir in lexical order, skipping excluded entries.
func walk(srcDir string, exclude []string, fn func(e entry) error) error {
	srcDir = filepath.Clean(srcDir)
	base := filepath.Base(srcDir)
	return filepath.WalkDir(srcDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, p)
		if err != nil {
			return err
		}
		name := base
		if rel != "." {
			name = path.Join(base, filepath.ToSlash(rel))
		}
		if rel != "." && Excluded(filepath.ToSlash(rel), exclude) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return fn(entry{name: name, path: p, info: info})
	})
}

// closeOrRemove closes f and deletes it when *errp is set, so a failed run
// leaves no partial archive behind.
func closeOrRemove(f *os.File, errp *error) {
	if err := f.Close(); err != nil && *errp == nil {
		*errp = err
	}
	if *errp != nil {
		os.Remove(f.Name())
	}
}
