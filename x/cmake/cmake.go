// Package cmake wraps the cmake configure/build workflow.
package cmake

import (
	"context"
	"os"
	"sort"

	"github.com/heroiclabs/sdkbuild/pkgs/buildsys"
	"github.com/heroiclabs/sdkbuild/pkgs/command"
)

type defineValue struct {
	value    string
	typeName string
}

// CMake drives a CMake project.
type CMake struct {
	runner    command.Runner
	sourceDir string
	buildDir  string
	generator string
	toolset   string
	platform  string
	buildType string
	toolchain string
	multiCfg  bool
	defines   map[string]defineValue
	env       map[string]string
}

var _ buildsys.Generator = (*CMake)(nil)

// New returns a CMake that configures sourceDir into buildDir.
func New(runner command.Runner, sourceDir, buildDir string) *CMake {
	return &CMake{
		runner:    runner,
		sourceDir: sourceDir,
		buildDir:  buildDir,
		defines:   make(map[string]defineValue),
		env:       make(map[string]string),
	}
}

// Generator sets the CMake generator (e.g. "Ninja", "Unix Makefiles").
func (c *CMake) Generator(name string) { c.generator = name }

// Toolset sets the generator toolset (-T), e.g. "v142".
func (c *CMake) Toolset(name string) { c.toolset = name }

// Platform sets the generator platform (-A), e.g. "x64".
func (c *CMake) Platform(name string) { c.platform = name }

// BuildType sets the configuration. Single-configuration generators get
// CMAKE_BUILD_TYPE, multi-configuration ones get --config at build time.
func (c *CMake) BuildType(name string, multiConfig bool) {
	c.buildType = name
	c.multiCfg = multiConfig
}

// Toolchain sets CMAKE_TOOLCHAIN_FILE.
func (c *CMake) Toolchain(path string) { c.toolchain = path }

// Define adds a -D<key>:STRING=<value> definition.
func (c *CMake) Define(key, value string) {
	c.defines[key] = defineValue{value: value, typeName: "STRING"}
}

// DefineBool adds a -D<key>:BOOL=ON/OFF definition.
func (c *CMake) DefineBool(key string, value bool) {
	v := "OFF"
	if value {
		v = "ON"
	}
	c.defines[key] = defineValue{value: v, typeName: "BOOL"}
}

// Env sets an environment variable for every cmake invocation.
func (c *CMake) Env(key, value string) { c.env[key] = value }

// BuildDir returns the binary directory.
func (c *CMake) BuildDir() string { return c.buildDir }

// Configure runs "cmake -S <source> -B <build>" with all configured options.
// Extra args are appended at the end.
func (c *CMake) Configure(ctx context.Context, args ...string) error {
	if err := os.MkdirAll(c.buildDir, 0o755); err != nil {
		return err
	}
	cmakeArgs := []string{"-S", c.sourceDir, "-B", c.buildDir}
	if c.generator != "" {
		cmakeArgs = append(cmakeArgs, "-G", c.generator)
	}
	if c.toolset != "" {
		cmakeArgs = append(cmakeArgs, "-T", c.toolset)
	}
	if c.platform != "" {
		cmakeArgs = append(cmakeArgs, "-A", c.platform)
	}
	if c.toolchain != "" {
		c.Define("CMAKE_TOOLCHAIN_FILE", c.toolchain)
	}
	if c.buildType != "" && !c.multiCfg {
		c.Define("CMAKE_BUILD_TYPE", c.buildType)
	}
	cmakeArgs = append(cmakeArgs, c.definesArgs()...)
	cmakeArgs = append(cmakeArgs, args...)
	return c.run(ctx, cmakeArgs)
}

// Build runs "cmake --build <build> --target <target>".
func (c *CMake) Build(ctx context.Context, target string) error {
	cmakeArgs := []string{"--build", c.buildDir, "--target", target}
	if c.buildType != "" && c.multiCfg {
		cmakeArgs = append(cmakeArgs, "--config", c.buildType)
	}
	return c.run(ctx, cmakeArgs)
}

func (c *CMake) run(ctx context.Context, args []string) error {
	cmd := command.Cmd{Name: "cmake", Args: args}
	if len(c.env) > 0 {
		cmd.Env = c.env
	}
	return c.runner.Run(ctx, cmd)
}

func (c *CMake) definesArgs() []string {
	if len(c.defines) == 0 {
		return nil
	}
	keys := make([]string, 0, len(c.defines))
	for k := range c.defines {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]string, 0, len(keys))
	for _, k := range keys {
		d := c.defines[k]
		args = append(args, "-D"+k+":"+d.typeName+"="+d.value)
	}
	return args
}
