// Package release splits a multi-platform SDK tree into one archive per
// platform.
//
// The SDK tree holds every platform side by side:
//
//	sdkDir/
//	  include/
//	  libs/<platform>/...
//	  shared-libs/<platform>/...
//	  nakama-cpp-android/
//
// To archive platform P every other platform folder is moved into the
// temporary area, the SDK directory is archived and the folders are moved
// back. A run that dies halfway leaves folders in the temporary area;
// Recover moves them back.
package release

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/qiniu/x/log"

	"github.com/heroiclabs/sdkbuild/internal/lockedfile"
	"github.com/heroiclabs/sdkbuild/pkgs/archive"
)

// DefaultPlatforms are the release folder names packaged by default.
var DefaultPlatforms = []string{"win32", "win64", "mac", "ios", "android", "linux"}

// AndroidProject is the Android wrapper project shipped only with the
// android archive.
const AndroidProject = "nakama-cpp-android"

const lockFile = ".sdkbuild.lock"

// trees are the SDK folders holding one subfolder per platform.
var trees = []string{"libs", "shared-libs"}

// Packager produces the per-platform archives of an SDK tree.
type Packager struct {
	SDKDir  string
	TempDir string
	OutDir  string
	// Name prefixes every archive name.
	Name      string
	Platforms []string
	// Ignore overrides the exclude patterns of a platform. Platforms not
	// listed leave out AndroidProject, except android itself.
	Ignore   map[string][]string
	Archiver archive.Archiver
}

func (p *Packager) platforms() []string {
	if len(p.Platforms) == 0 {
		return DefaultPlatforms
	}
	return p.Platforms
}

// IgnorePatterns returns the exclude patterns used for platform.
func (p *Packager) IgnorePatterns(platform string) []string {
	pats, ok := p.Ignore[platform]
	if !ok && platform != "android" {
		pats = []string{AndroidProject}
	}
	return append([]string{lockFile}, pats...)
}

// ArchivePath returns where the archive of platform for version is written.
func (p *Packager) ArchivePath(version, platform string) string {
	name := fmt.Sprintf("%s_%s_%s%s", p.Name, version, platform, p.Archiver.Ext())
	return filepath.Join(p.OutDir, name)
}

// Recover moves every platform folder left in the temporary area back into
// the SDK tree while holding the release-tree lock. It does nothing when the
// area is empty and fails, without moving anything, when a platform exists
// in both places.
func (p *Packager) Recover() error {
	unlock, err := p.lock()
	if err != nil {
		return err
	}
	defer unlock()
	return p.recoverLocked()
}

func (p *Packager) lock() (func(), error) {
	return lockedfile.MutexAt(filepath.Join(p.SDKDir, lockFile)).Lock()
}

func (p *Packager) recoverLocked() error {
	if j, err := loadJournal(p.TempDir); err == nil {
		log.Warn("recovering interrupted release run", j.RunID, "(version", j.Version+", platform", j.Platform+")")
	}

	var moves []move
	for _, tree := range trees {
		entries, err := os.ReadDir(filepath.Join(p.TempDir, tree))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		for _, e := range entries {
			from := filepath.Join(p.TempDir, tree, e.Name())
			to := filepath.Join(p.SDKDir, tree, e.Name())
			if _, err := os.Stat(to); err == nil {
				return fmt.Errorf("release: %s exists in both %s and %s", filepath.Join(tree, e.Name()), p.SDKDir, p.TempDir)
			}
			moves = append(moves, move{from, to})
		}
	}
	for _, m := range moves {
		if err := os.MkdirAll(filepath.Dir(m.to), 0o755); err != nil {
			return err
		}
		log.Info("restoring", m.to)
		if err := os.Rename(m.from, m.to); err != nil {
			return err
		}
	}
	p.cleanTemp()
	return nil
}

// Package writes one archive per platform for version and returns their
// paths in platform order. Folders left behind by an interrupted run are
// recovered first, even when version is empty. The SDK tree is restored
// before Package returns, whether or not archiving succeeded.
func (p *Packager) Package(ctx context.Context, version string) ([]string, error) {
	unlock, err := p.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := p.recoverLocked(); err != nil {
		return nil, err
	}
	if version == "" {
		return nil, ErrVersionNotFound
	}
	if err := os.MkdirAll(p.OutDir, 0o755); err != nil {
		return nil, err
	}

	j := &journal{
		RunID:   uuid.NewString(),
		Version: version,
		Started: time.Now(),
	}
	var archives []string
	for _, platform := range p.platforms() {
		dest, err := p.packageOne(ctx, j, version, platform)
		if err != nil {
			return archives, err
		}
		archives = append(archives, dest)
	}
	if err := removeJournal(p.TempDir); err != nil {
		return archives, err
	}
	p.cleanTemp()
	return archives, nil
}

func (p *Packager) packageOne(ctx context.Context, j *journal, version, platform string) (dest string, err error) {
	j.Platform = platform
	j.Updated = time.Now()
	if err := saveJournal(p.TempDir, j); err != nil {
		return "", err
	}

	moves, err := p.moveAway(platform)
	defer func() {
		if rerr := restore(moves); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}()
	if err != nil {
		return "", err
	}

	dest = p.ArchivePath(version, platform)
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		return "", err
	}
	log.Info("packaging", platform, "->", dest)
	if err := p.Archiver.Archive(ctx, p.SDKDir, dest, p.IgnorePatterns(platform)); err != nil {
		return "", fmt.Errorf("release: archive %s: %w", platform, err)
	}
	return dest, nil
}

// move is a folder relocation; restore renames to back to from.
type move struct{ from, to string }

// moveAway moves the folders of every platform except keep into the
// temporary area. The returned moves are valid even on error.
func (p *Packager) moveAway(keep string) ([]move, error) {
	var done []move
	for _, other := range p.platforms() {
		if other == keep {
			continue
		}
		for _, tree := range trees {
			src := filepath.Join(p.SDKDir, tree, other)
			if _, err := os.Stat(src); err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return done, err
			}
			dst := filepath.Join(p.TempDir, tree, other)
			if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
				return done, err
			}
			if err := os.Rename(src, dst); err != nil {
				return done, err
			}
			done = append(done, move{from: src, to: dst})
		}
	}
	return done, nil
}

// restore undoes moves in reverse order.
func restore(moves []move) error {
	var errs []error
	for i := len(moves) - 1; i >= 0; i-- {
		m := moves[i]
		if err := os.Rename(m.to, m.from); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// cleanTemp removes the temporary area if nothing is left in it.
func (p *Packager) cleanTemp() {
	for _, tree := range trees {
		os.Remove(filepath.Join(p.TempDir, tree))
	}
	os.Remove(p.TempDir)
}
