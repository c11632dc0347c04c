// Package universal merges per-architecture libraries into universal
// (multi-architecture) files.
package universal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/qiniu/x/log"
)

// Merger combines single-architecture inputs into output.
type Merger interface {
	Merge(ctx context.Context, inputs []string, output string) error
}

// Slice is the set of files one architecture contributes.
type Slice struct {
	Arch  string
	Files []string
}

// Merged describes one produced universal file.
type Merged struct {
	Output string
	Inputs []string
	Archs  []string
}

// NoInputsError is returned when a required file was produced by no
// architecture at all.
type NoInputsError struct {
	Name  string
	Archs []string
}

func (e *NoInputsError) Error() string {
	return fmt.Sprintf("universal: no architecture of %v produced %s", e.Archs, e.Name)
}

// Builder produces universal files with a Merger.
type Builder struct {
	Merger Merger
}

// Build groups the files of slices by base name and merges each group into
// destDir/<base name>. Inputs keep the order of slices; base names keep the
// order in which they first appear. A base name contributed by a single
// architecture is still merged. Every name in required must have at least
// one input.
func (b *Builder) Build(ctx context.Context, slices []Slice, destDir string, required []string) ([]Merged, error) {
	groups := Group(slices)

	archs := make([]string, len(slices))
	for i, s := range slices {
		archs[i] = s.Arch
	}
	have := make(map[string]bool, len(groups))
	for _, g := range groups {
		have[filepath.Base(g.Output)] = true
	}
	for _, name := range required {
		if !have[name] {
			return nil, &NoInputsError{Name: name, Archs: archs}
		}
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, err
	}
	merged := make([]Merged, 0, len(groups))
	for _, g := range groups {
		g.Output = filepath.Join(destDir, g.Output)
		log.Info("creating universal library", filepath.Base(g.Output), "from", g.Archs)
		if err := b.Merger.Merge(ctx, g.Inputs, g.Output); err != nil {
			return merged, fmt.Errorf("universal: merge %s: %w", filepath.Base(g.Output), err)
		}
		merged = append(merged, g)
	}
	return merged, nil
}

// Group returns the merge plan for slices without running anything. Output
// holds only the base name.
func Group(slices []Slice) []Merged {
	var order []string
	byName := make(map[string]*Merged)
	for _, s := range slices {
		for _, f := range s.Files {
			name := filepath.Base(f)
			m, ok := byName[name]
			if !ok {
				m = &Merged{Output: name}
				byName[name] = m
				order = append(order, name)
			}
			m.Inputs = append(m.Inputs, f)
			m.Archs = append(m.Archs, s.Arch)
		}
	}
	out := make([]Merged, len(order))
	for i, name := range order {
		out[i] = *byName[name]
	}
	return out
}
