package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heroiclabs/sdkbuild/feature"
	"github.com/heroiclabs/sdkbuild/target"
)

const sample = `
features:
  link_mode: static
  build_mode: debug
  grpc_client: true
  http_transport: cpprest
  websocket_transport: cpprest
build_dir: out/build
sdk_dir: /opt/nakama-cpp-sdk
targets:
  - platform: windows
    archs: [x64]
    toolsets: [v142]
  - platform: ios
    toolchain: cmake/ios.toolchain.cmake
    universal_shared: true
release:
  name: nakama
  platforms: [win64, ios]
  ignore:
    ios: ["*.pdb"]
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, sample)
	dir := filepath.Dir(path)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.SourceDir)
	assert.Equal(t, filepath.Join(dir, "out", "build"), cfg.BuildDir)
	assert.Equal(t, "/opt/nakama-cpp-sdk", cfg.SDKDir)
	assert.Empty(t, cfg.StageDir)

	require.Len(t, cfg.Targets, 2)
	assert.Equal(t, []string{"x64"}, cfg.Targets[0].Archs)
	assert.Equal(t, filepath.Join(dir, "cmake", "ios.toolchain.cmake"), cfg.Targets[1].Toolchain)
	assert.True(t, cfg.Targets[1].UniversalShared)

	// Keys absent from the file keep their defaults.
	assert.Equal(t, "nakama", cfg.Release.Name)
	assert.Equal(t, "7z", cfg.Release.Format)
	assert.Equal(t, filepath.Join(dir, "_tmp"), cfg.Release.TempDir)
	assert.Equal(t, filepath.Join(dir, "src", "Nakama.cpp"), cfg.Release.VersionFile)
	assert.Equal(t, []string{"*.pdb"}, cfg.Release.Ignore["ios"])

	fc, err := cfg.FeatureConfig()
	require.NoError(t, err)
	assert.Equal(t, feature.Debug, fc.BuildMode())
	assert.True(t, fc.GRPCClient())
	assert.True(t, fc.UsesCppRestRuntime())

	matrices, err := cfg.Matrices()
	require.NoError(t, err)
	require.Len(t, matrices, 2)
	assert.Equal(t, target.Windows, matrices[0].Platform)
	assert.Equal(t, 1, matrices[0].CombinationCount())
	assert.Equal(t, 4, matrices[1].CombinationCount())

	tc, ok := cfg.Target(target.IOS)
	assert.True(t, ok)
	assert.True(t, tc.UniversalShared)
	_, ok = cfg.Target(target.Linux)
	assert.False(t, ok)
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, DefaultFile))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "nakama-cpp-sdk"), cfg.SDKDir)
	assert.Equal(t, "nakama-cpp-sdk", cfg.Release.Name)
	assert.Empty(t, cfg.Targets)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "7z", cfg.Release.Format)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		message string
	}{
		{"bad yaml", "targets: [", "failed to parse YAML"},
		{"unknown key", "colour: blue\n", "failed to parse YAML"},
		{"bad feature", "features:\n  websocket_transport: carrier-pigeon\n", "invalid features"},
		{"bad platform", "targets:\n  - platform: amiga\n", "targets[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := Load(path)
			require.Error(t, err)

			var le *LoadError
			require.True(t, errors.As(err, &le), "got %T", err)
			assert.Equal(t, path, le.File)
			assert.Contains(t, le.Error(), tt.message)
		})
	}
}

func TestLoadErrorWrapsFeatureError(t *testing.T) {
	_, err := Parse([]byte("features:\n  link_mode: dynamic\n"))
	assert.ErrorIs(t, err, feature.ErrInvalidConfig)
}
