// Package locate finds library files in a generator's build output tree.
//
// The path of a file is composed from three independent parts:
//
//   - a Layout: where the build tree of one target lives below the build root
//     and which mode-named subfolders a generator may add below a project
//     directory;
//   - a Naming convention: prefix, extensions, debug suffix and per-platform
//     base-name aliases;
//   - a list of project directories per role, probed in order because
//     dependencies moved their output between versions.
//
// Each platform gets one Scheme combining these parts.
package locate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/heroiclabs/sdkbuild/artifact"
	"github.com/heroiclabs/sdkbuild/feature"
	"github.com/heroiclabs/sdkbuild/target"
)

// Candidate is one possible source location of a file together with the
// name it is released under.
type Candidate struct {
	Path string
	Name string
}

// Locator produces the candidate paths of a role on a target.
type Locator interface {
	// Kinds returns the file kinds shipped for a library in link mode.
	Kinds(link feature.LinkMode) []artifact.Kind
	// Candidates returns the possible locations of role in probe order.
	Candidates(t target.Descriptor, mode feature.BuildMode, role artifact.Role, kind artifact.Kind) []Candidate
}

// MissingArtifactError is returned when none of the candidates exists.
type MissingArtifactError struct {
	Target string
	Group  string
	Role   string
	Kind   artifact.Kind
	Tried  []string
}

func (e *MissingArtifactError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: missing %s library %s/%s, tried:", e.Target, e.Kind, e.Group, e.Role)
	for _, p := range e.Tried {
		b.WriteString("\n\t")
		b.WriteString(p)
	}
	return b.String()
}

// Find returns the first existing candidate of role. Only regular files
// qualify.
func Find(l Locator, t target.Descriptor, mode feature.BuildMode, group artifact.Group, role artifact.Role, kind artifact.Kind) (Candidate, error) {
	cands := l.Candidates(t, mode, role, kind)
	tried := make([]string, 0, len(cands))
	for _, c := range cands {
		if fi, err := os.Stat(c.Path); err == nil && fi.Mode().IsRegular() {
			return c, nil
		}
		tried = append(tried, c.Path)
	}
	return Candidate{}, &MissingArtifactError{
		Target: t.String(),
		Group:  group.Name,
		Role:   role.Name,
		Kind:   kind,
		Tried:  tried,
	}
}

// -----------------------------------------------------------------------------

// Layout describes the generator-specific shape of a build tree. Templates
// may reference {mode}, {arch} and {toolset}.
type Layout struct {
	// Root is the target's build tree relative to the build root.
	Root string
	// ModeDirs are the subfolders probed below each project directory.
	// Multi-configuration generators nest output by mode.
	ModeDirs []string
}

// Naming is a platform's library file naming convention.
type Naming struct {
	Prefix      string
	StaticExt   string
	SharedExt   string
	ImportExt   string
	DebugSuffix string

	// Bases maps a role to the base names its file may carry, in probe
	// order. Roles not listed use their own name.
	Bases map[string][]string
	// ReleaseBases renames a base name in the release tree.
	ReleaseBases map[string]string
	// SharedKinds are the files shipped for a shared library.
	SharedKinds []artifact.Kind
}

// FileName returns the file name of base for kind in mode.
func (n Naming) FileName(base string, kind artifact.Kind, mode feature.BuildMode) string {
	ext := n.StaticExt
	switch kind {
	case artifact.SharedLib:
		ext = n.SharedExt
	case artifact.ImportLib:
		ext = n.ImportExt
	}
	if mode == feature.Debug {
		base += n.DebugSuffix
	}
	return n.Prefix + base + ext
}

func (n Naming) bases(role string) []string {
	if bs, ok := n.Bases[role]; ok {
		return bs
	}
	return []string{role}
}

func (n Naming) releaseBase(base string) string {
	if rb, ok := n.ReleaseBases[base]; ok {
		return rb
	}
	return base
}

// Scheme is the Locator of one platform.
type Scheme struct {
	Platform target.Platform
	Layout   Layout
	Naming   Naming
	// Dirs maps a role to its project directories relative to the target's
	// build tree, in probe order. Templates as in Layout.
	Dirs map[string][]string
}

var _ Locator = (*Scheme)(nil)

func (s *Scheme) Kinds(link feature.LinkMode) []artifact.Kind {
	if link == feature.Shared {
		return s.Naming.SharedKinds
	}
	return []artifact.Kind{artifact.StaticLib}
}

// BuildDir returns the build tree of t in mode.
func (s *Scheme) BuildDir(t target.Descriptor, mode feature.BuildMode) string {
	return filepath.Join(t.BuildRoot, filepath.FromSlash(expand(s.Layout.Root, t, mode)))
}

func (s *Scheme) Candidates(t target.Descriptor, mode feature.BuildMode, role artifact.Role, kind artifact.Kind) []Candidate {
	mode = t.Platform.EffectiveMode(mode)
	root := s.BuildDir(t, mode)
	modeDirs := s.Layout.ModeDirs
	if len(modeDirs) == 0 {
		modeDirs = []string{""}
	}

	var cands []Candidate
	seen := make(map[string]bool)
	for _, base := range s.Naming.bases(role.Name) {
		file := s.Naming.FileName(base, kind, mode)
		name := s.Naming.FileName(s.Naming.releaseBase(base), kind, mode)
		for _, dir := range s.Dirs[role.Name] {
			for _, md := range modeDirs {
				rel := filepath.FromSlash(expand(dir, t, mode))
				p := filepath.Join(root, rel, filepath.FromSlash(expand(md, t, mode)), file)
				if seen[p] {
					continue
				}
				seen[p] = true
				cands = append(cands, Candidate{Path: p, Name: name})
			}
		}
	}
	return cands
}

func expand(tmpl string, t target.Descriptor, mode feature.BuildMode) string {
	return strings.NewReplacer(
		"{mode}", mode.CMakeName(),
		"{arch}", t.Arch,
		"{toolset}", t.Toolset,
	).Replace(tmpl)
}
