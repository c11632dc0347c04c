package universal

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	inputs []string
	output string
}

type fakeMerger struct {
	calls []call
	fail  string
}

func (f *fakeMerger) Merge(ctx context.Context, inputs []string, output string) error {
	f.calls = append(f.calls, call{inputs: append([]string(nil), inputs...), output: output})
	if f.fail != "" && filepath.Base(output) == f.fail {
		return errors.New("merge tool failed")
	}
	return nil
}

func archPath(arch, name string) string {
	return filepath.Join("stage", arch, name)
}

func TestBuildThreeArchsTwoNames(t *testing.T) {
	archs := []string{"arm64", "armv7", "x86_64"}
	var slices []Slice
	for _, arch := range archs {
		slices = append(slices, Slice{Arch: arch, Files: []string{archPath(arch, "A"), archPath(arch, "B")}})
	}
	m := &fakeMerger{}
	dest := t.TempDir()

	merged, err := (&Builder{Merger: m}).Build(context.Background(), slices, dest, []string{"A", "B"})
	require.NoError(t, err)
	require.Len(t, merged, 2)
	require.Len(t, m.calls, 2)

	for i, name := range []string{"A", "B"} {
		assert.Equal(t, filepath.Join(dest, name), m.calls[i].output)
		assert.Equal(t, []string{archPath("arm64", name), archPath("armv7", name), archPath("x86_64", name)}, m.calls[i].inputs)
		assert.Equal(t, archs, merged[i].Archs)
	}
}

func TestBuildKeepsCallerArchOrder(t *testing.T) {
	slices := []Slice{
		{Arch: "x86_64", Files: []string{archPath("x86_64", "libz.a")}},
		{Arch: "arm64", Files: []string{archPath("arm64", "libz.a")}},
	}
	m := &fakeMerger{}
	_, err := (&Builder{Merger: m}).Build(context.Background(), slices, t.TempDir(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{archPath("x86_64", "libz.a"), archPath("arm64", "libz.a")}, m.calls[0].inputs)
}

func TestBuildSingleContributor(t *testing.T) {
	slices := []Slice{
		{Arch: "arm64", Files: []string{archPath("arm64", "libcpprest.a")}},
		{Arch: "armv7"},
		{Arch: "x86_64"},
	}
	m := &fakeMerger{}
	merged, err := (&Builder{Merger: m}).Build(context.Background(), slices, t.TempDir(), []string{"libcpprest.a"})
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, []string{archPath("arm64", "libcpprest.a")}, m.calls[0].inputs)
}

func TestBuildRequiredWithoutInputs(t *testing.T) {
	slices := []Slice{
		{Arch: "arm64", Files: []string{archPath("arm64", "libnakama-cpp.a")}},
		{Arch: "x86_64"},
	}
	m := &fakeMerger{}
	_, err := (&Builder{Merger: m}).Build(context.Background(), slices, t.TempDir(), []string{"libnakama-cpp.a", "libssl.a"})
	var nie *NoInputsError
	require.ErrorAs(t, err, &nie)
	assert.Equal(t, "libssl.a", nie.Name)
	assert.Empty(t, m.calls, "no merge may run when a required file is missing")
}

func TestBuildMergeFailure(t *testing.T) {
	slices := []Slice{{Arch: "arm64", Files: []string{archPath("arm64", "a"), archPath("arm64", "b"), archPath("arm64", "c")}}}
	m := &fakeMerger{fail: "b"}
	merged, err := (&Builder{Merger: m}).Build(context.Background(), slices, t.TempDir(), nil)
	require.Error(t, err)
	assert.Len(t, merged, 1)
	assert.Len(t, m.calls, 2, "merging stops at the first failure")
}

func TestGroupOrder(t *testing.T) {
	slices := []Slice{
		{Arch: "arm64", Files: []string{archPath("arm64", "b"), archPath("arm64", "a")}},
		{Arch: "armv7", Files: []string{archPath("armv7", "c"), archPath("armv7", "a")}},
	}
	var names []string
	for _, g := range Group(slices) {
		names = append(names, fmt.Sprintf("%s:%d", g.Output, len(g.Inputs)))
	}
	assert.Equal(t, []string{"b:1", "a:2", "c:1"}, names)
}
