// Package collect copies located library files into a release directory.
package collect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/qiniu/x/log"

	"github.com/heroiclabs/sdkbuild/artifact"
	"github.com/heroiclabs/sdkbuild/feature"
	"github.com/heroiclabs/sdkbuild/internal/locate"
	"github.com/heroiclabs/sdkbuild/target"
)

// File is one copied library.
type File struct {
	Group string
	Role  string
	Kind  artifact.Kind
	Src   string
	Dest  string
}

// Result lists what a collection copied, in order.
type Result struct {
	Files []File
	// Missing holds the roles that could not be located in tolerant mode.
	Missing []*locate.MissingArtifactError
	// Skipped names groups that ship inside the shared library.
	Skipped []string
}

// Dests returns the destination paths of all copied files.
func (r *Result) Dests() []string {
	out := make([]string, len(r.Files))
	for i, f := range r.Files {
		out[i] = f.Dest
	}
	return out
}

// Collector copies the files of artifact groups into a release directory.
type Collector struct {
	Locator locate.Locator

	// Tolerant records missing roles in Result.Missing and carries on
	// instead of failing.
	Tolerant bool

	// AfterCopy, when set, runs on every copied file.
	AfterCopy func(ctx context.Context, f File) error
}

// Collect copies every role of groups for t into dest. dest is created on
// demand and existing files are overwritten. Roles are handled in order; in
// strict mode the first missing role aborts the collection and files copied
// before it stay in place.
func (c *Collector) Collect(ctx context.Context, cfg feature.Config, t target.Descriptor, groups []artifact.Group, dest string) (*Result, error) {
	res := &Result{}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return res, err
	}
	mode := cfg.BuildMode()
	kinds := c.Locator.Kinds(cfg.LinkMode())

	for _, g := range groups {
		if cfg.LinkMode() == feature.Shared && g.EmbeddedInShared {
			log.Debug("skipping", g.Name, "(linked into the shared library)")
			res.Skipped = append(res.Skipped, g.Name)
			continue
		}
		for _, role := range g.Roles {
			for _, kind := range kinds {
				cand, err := locate.Find(c.Locator, t, mode, g, role, kind)
				if err != nil {
					var missing *locate.MissingArtifactError
					if c.Tolerant && errors.As(err, &missing) {
						log.Warn(t.String()+":", "no", kind, "library for", g.Name+"/"+role.Name)
						res.Missing = append(res.Missing, missing)
						continue
					}
					return res, err
				}
				f := File{
					Group: g.Name,
					Role:  role.Name,
					Kind:  kind,
					Src:   cand.Path,
					Dest:  filepath.Join(dest, cand.Name),
				}
				if err := copyFile(cand.Path, f.Dest); err != nil {
					return res, fmt.Errorf("collect %s/%s: %w", g.Name, role.Name, err)
				}
				log.Debug("copied", cand.Name)
				if c.AfterCopy != nil {
					if err := c.AfterCopy(ctx, f); err != nil {
						return res, err
					}
				}
				res.Files = append(res.Files, f)
			}
		}
	}
	return res, nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
