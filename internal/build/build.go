// Package build runs the generator for every configured target and collects
// the produced libraries into the release tree.
package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/qiniu/x/log"

	"github.com/heroiclabs/sdkbuild/artifact"
	"github.com/heroiclabs/sdkbuild/feature"
	"github.com/heroiclabs/sdkbuild/internal/collect"
	"github.com/heroiclabs/sdkbuild/internal/env"
	"github.com/heroiclabs/sdkbuild/internal/locate"
	"github.com/heroiclabs/sdkbuild/internal/resolve"
	"github.com/heroiclabs/sdkbuild/internal/universal"
	"github.com/heroiclabs/sdkbuild/pkgs/command"
	"github.com/heroiclabs/sdkbuild/target"
	"github.com/heroiclabs/sdkbuild/x/apple"
)

// Builder builds and collects the SDK for a list of targets.
type Builder struct {
	Runner    command.Runner
	Features  feature.Config
	SourceDir string
	// BuildRoot holds one generator output tree per target.
	BuildRoot string
	// SDKDir is the release tree.
	SDKDir string
	// StageDir receives the per-architecture trees of universal
	// platforms. Empty means env.StageDir.
	StageDir string
	// SkipGenerate collects from existing build trees.
	SkipGenerate bool
	// Merger combines universal slices. Nil means lipo.
	Merger universal.Merger
}

// Target is one platform to build.
type Target struct {
	Matrix    target.Matrix
	Toolchain string
	// UniversalShared merges the shared libraries of a universal platform
	// instead of shipping one folder per architecture.
	UniversalShared bool
}

// Result describes what one target contributed to the release tree.
type Result struct {
	Target  target.Descriptor
	Dir     string
	Files   []collect.File
	Merged  []universal.Merged
	Skipped []string
}

// Build processes targets in order and stops at the first error. Results of
// the targets completed before the error are returned with it.
func (b *Builder) Build(ctx context.Context, targets []Target) ([]Result, error) {
	groups := resolve.Resolve(b.Features)
	log.Info("features:", b.Features)
	log.Info("artifact groups:", resolve.Names(groups))

	var results []Result
	for _, t := range targets {
		scheme, err := locate.ForPlatform(t.Matrix.Platform)
		if err != nil {
			return results, err
		}
		var res []Result
		if t.Matrix.Platform.Universal() {
			res, err = b.buildUniversal(ctx, scheme, t, groups)
		} else {
			res, err = b.buildEach(ctx, scheme, t, groups)
		}
		results = append(results, res...)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

func (b *Builder) buildEach(ctx context.Context, scheme *locate.Scheme, t Target, groups []artifact.Group) ([]Result, error) {
	link, mode := b.Features.LinkMode(), b.Features.BuildMode()
	var results []Result
	for _, d := range t.Matrix.Combinations(b.BuildRoot, b.SDKDir) {
		if err := b.generate(ctx, scheme, t, d); err != nil {
			return results, fmt.Errorf("%s: %w", d, err)
		}
		dir := d.ReleaseDir(link, mode)
		c := &collect.Collector{Locator: scheme, AfterCopy: b.afterCopy(d.Platform)}
		r, err := c.Collect(ctx, b.Features, d, groups, dir)
		if err != nil {
			return results, fmt.Errorf("%s: %w", d, err)
		}
		results = append(results, Result{Target: d, Dir: dir, Files: r.Files, Skipped: r.Skipped})
	}
	return results, nil
}

func (b *Builder) buildUniversal(ctx context.Context, scheme *locate.Scheme, t Target, groups []artifact.Group) ([]Result, error) {
	descs := t.Matrix.Combinations(b.BuildRoot, b.SDKDir)
	if len(descs) == 0 {
		return nil, nil
	}
	link, mode := b.Features.LinkMode(), b.Features.BuildMode()

	if link == feature.Shared && !t.UniversalShared {
		var results []Result
		for _, d := range descs {
			if err := b.generate(ctx, scheme, t, d); err != nil {
				return results, fmt.Errorf("%s: %w", d, err)
			}
			dir := filepath.Join(d.ReleaseDir(link, mode), d.Arch)
			c := &collect.Collector{Locator: scheme, AfterCopy: b.afterCopy(d.Platform)}
			r, err := c.Collect(ctx, b.Features, d, groups, dir)
			if err != nil {
				return results, fmt.Errorf("%s: %w", d, err)
			}
			results = append(results, Result{Target: d, Dir: dir, Files: r.Files, Skipped: r.Skipped})
		}
		return results, nil
	}

	stage, err := b.stageDir()
	if err != nil {
		return nil, err
	}
	res := Result{Target: descs[0].WithArch(""), Dir: descs[0].ReleaseDir(link, mode)}
	var slices []universal.Slice
	for _, d := range descs {
		if err := b.generate(ctx, scheme, t, d); err != nil {
			return nil, fmt.Errorf("%s: %w", d, err)
		}
		dir := filepath.Join(stage, string(d.Platform), d.Arch)
		if err := os.RemoveAll(dir); err != nil {
			return nil, err
		}
		c := &collect.Collector{Locator: scheme, Tolerant: true}
		r, err := c.Collect(ctx, b.Features, d, groups, dir)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d, err)
		}
		res.Files = append(res.Files, r.Files...)
		res.Skipped = r.Skipped
		slices = append(slices, universal.Slice{Arch: d.Arch, Files: r.Dests()})
	}

	ub := &universal.Builder{Merger: b.merger()}
	required := requiredNames(scheme, descs[0], b.Features, groups)
	merged, err := ub.Build(ctx, slices, res.Dir, required)
	if err != nil {
		return nil, err
	}
	res.Merged = merged
	if link == feature.Shared && t.Matrix.Platform.Darwin() {
		for _, m := range merged {
			if err := apple.SetInstallName(ctx, b.Runner, m.Output); err != nil {
				return nil, err
			}
		}
	}
	return []Result{res}, nil
}

// requiredNames lists the release file names every resolved role must
// produce in at least one architecture.
func requiredNames(l locate.Locator, d target.Descriptor, cfg feature.Config, groups []artifact.Group) []string {
	link := cfg.LinkMode()
	var names []string
	for _, g := range groups {
		if link == feature.Shared && g.EmbeddedInShared {
			continue
		}
		for _, role := range g.Roles {
			for _, kind := range l.Kinds(link) {
				if cands := l.Candidates(d, cfg.BuildMode(), role, kind); len(cands) > 0 {
					names = append(names, cands[0].Name)
				}
			}
		}
	}
	return names
}

func (b *Builder) afterCopy(p target.Platform) func(context.Context, collect.File) error {
	if !p.Darwin() {
		return nil
	}
	return func(ctx context.Context, f collect.File) error {
		if f.Kind != artifact.SharedLib {
			return nil
		}
		return apple.SetInstallName(ctx, b.Runner, f.Dest)
	}
}

func (b *Builder) merger() universal.Merger {
	if b.Merger != nil {
		return b.Merger
	}
	return &apple.Lipo{Runner: b.Runner}
}

func (b *Builder) stageDir() (string, error) {
	if b.StageDir != "" {
		return b.StageDir, nil
	}
	return env.StageDir()
}
