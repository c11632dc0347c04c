// Package config loads the sdkbuild.yaml project file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/heroiclabs/sdkbuild/feature"
	"github.com/heroiclabs/sdkbuild/target"
)

// DefaultFile is the config file name looked up in the working directory.
const DefaultFile = "sdkbuild.yaml"

// Config is the content of a project file. Relative paths are resolved
// against the directory of the file.
type Config struct {
	Features feature.Options `yaml:"features"`

	// SourceDir holds the top-level CMakeLists.txt.
	SourceDir string `yaml:"source_dir"`
	// BuildDir is the root of the generator output trees.
	BuildDir string `yaml:"build_dir"`
	// SDKDir is the release tree the libraries are collected into.
	SDKDir string `yaml:"sdk_dir"`
	// StageDir holds per-architecture trees of universal builds. Empty
	// means a directory under the user cache.
	StageDir string `yaml:"stage_dir"`
	// SkipGenerate collects from an existing build tree without running
	// the generator.
	SkipGenerate bool `yaml:"skip_generate"`

	Targets []Target `yaml:"targets"`
	Release Release  `yaml:"release"`
}

// Target selects the variants built for one platform.
type Target struct {
	Platform string   `yaml:"platform"`
	Archs    []string `yaml:"archs"`
	Toolsets []string `yaml:"toolsets"`
	// Toolchain is passed to CMake as CMAKE_TOOLCHAIN_FILE.
	Toolchain string `yaml:"toolchain"`
	// UniversalShared merges the per-architecture shared libraries of a
	// universal platform instead of shipping one folder per architecture.
	UniversalShared bool `yaml:"universal_shared"`
}

// Release configures packaging.
type Release struct {
	TempDir     string              `yaml:"temp_dir"`
	OutDir      string              `yaml:"out_dir"`
	Name        string              `yaml:"name"`
	VersionFile string              `yaml:"version_file"`
	Format      string              `yaml:"format"`
	Platforms   []string            `yaml:"platforms"`
	Ignore      map[string][]string `yaml:"ignore"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		SourceDir: ".",
		BuildDir:  "build",
		SDKDir:    "nakama-cpp-sdk",
		Release: Release{
			TempDir:     "_tmp",
			OutDir:      ".",
			Name:        "nakama-cpp-sdk",
			VersionFile: filepath.Join("src", "Nakama.cpp"),
			Format:      "7z",
		},
	}
}

// LoadError reports a config file that could not be read or is invalid.
type LoadError struct {
	File    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.File != "" {
		msg = e.File + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Parse decodes data over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, &LoadError{Message: "failed to parse YAML", Cause: err}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads the file at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	var cfg *Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		cfg, err = Parse(data)
		if err != nil {
			var le *LoadError
			if errors.As(err, &le) {
				le.File = path
				return nil, le
			}
			return nil, &LoadError{File: path, Message: err.Error()}
		}
	case os.IsNotExist(err):
		cfg = Default()
	default:
		return nil, &LoadError{File: path, Message: "failed to read file", Cause: err}
	}
	cfg.resolve(filepath.Dir(path))
	return cfg, nil
}

func (c *Config) validate() error {
	if _, err := feature.New(c.Features); err != nil {
		return &LoadError{Message: "invalid features", Cause: err}
	}
	for i, t := range c.Targets {
		if _, err := target.ParsePlatform(t.Platform); err != nil {
			return &LoadError{Message: fmt.Sprintf("targets[%d]", i), Cause: err}
		}
	}
	return nil
}

func (c *Config) resolve(base string) {
	abs := func(p *string) {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
	abs(&c.SourceDir)
	abs(&c.BuildDir)
	abs(&c.SDKDir)
	abs(&c.StageDir)
	abs(&c.Release.TempDir)
	abs(&c.Release.OutDir)
	abs(&c.Release.VersionFile)
	for i := range c.Targets {
		abs(&c.Targets[i].Toolchain)
	}
}

// FeatureConfig builds the feature configuration.
func (c *Config) FeatureConfig() (feature.Config, error) {
	return feature.New(c.Features)
}

// Matrices returns the target matrix of every configured platform.
func (c *Config) Matrices() ([]target.Matrix, error) {
	out := make([]target.Matrix, 0, len(c.Targets))
	for _, t := range c.Targets {
		p, err := target.ParsePlatform(t.Platform)
		if err != nil {
			return nil, err
		}
		out = append(out, target.Matrix{Platform: p, Archs: t.Archs, Toolsets: t.Toolsets})
	}
	return out, nil
}

// Target returns the configuration of platform p, if any.
func (c *Config) Target(p target.Platform) (Target, bool) {
	for _, t := range c.Targets {
		if parsed, err := target.ParsePlatform(t.Platform); err == nil && parsed == p {
			return t, true
		}
	}
	return Target{}, false
}
