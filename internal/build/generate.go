package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/qiniu/x/log"

	"github.com/heroiclabs/sdkbuild/internal/locate"
	"github.com/heroiclabs/sdkbuild/pkgs/buildsys"
	"github.com/heroiclabs/sdkbuild/target"
	"github.com/heroiclabs/sdkbuild/x/cmake"
)

const (
	macDeploymentTarget = "10.10"
	iosDeploymentTarget = "8.0"
	androidAPILevel     = "16"
	windowsSystem       = "10.0"
)

type visualStudio struct {
	generator string
	year      int
}

var visualStudios = map[string]visualStudio{
	"v140": {"Visual Studio 14 2015", 2015},
	"v141": {"Visual Studio 15 2017", 2017},
	"v142": {"Visual Studio 16 2019", 2019},
	"v143": {"Visual Studio 17 2022", 2022},
}

// vsGenerator returns the Visual Studio generator for toolset and the
// generator platform (-A) for arch. Generators older than 2019 take the
// architecture as a name suffix instead.
func vsGenerator(toolset, arch string) (generator, platform string, err error) {
	vs, ok := visualStudios[toolset]
	if !ok {
		return "", "", fmt.Errorf("unknown Visual Studio toolset %q (valid: %v)", toolset, target.Windows.DefaultToolsets())
	}
	generator = vs.generator
	switch {
	case vs.year >= 2019 && arch == "x64":
		platform = "x64"
	case vs.year >= 2019:
		platform = "Win32"
	case arch == "x64":
		generator += " Win64"
	}
	return generator, platform, nil
}

// buildTargets returns the generator targets built for p, in order. The
// gRPC code generators are host tools and cannot be built when cross
// compiling for iOS.
func (b *Builder) buildTargets(p target.Platform) []string {
	if b.Features.GRPCClient() && p != target.IOS {
		return []string{"grpc_cpp_plugin", "protoc", "nakama-cpp"}
	}
	return []string{"nakama-cpp"}
}

func (b *Builder) generate(ctx context.Context, scheme *locate.Scheme, t Target, d target.Descriptor) error {
	if b.SkipGenerate {
		return nil
	}
	gen, err := b.generator(scheme, t, d)
	if err != nil {
		return err
	}
	log.Info("building", d.String(), "in", gen.BuildDir())
	if err := gen.Configure(ctx); err != nil {
		return err
	}
	for _, name := range b.buildTargets(d.Platform) {
		if err := gen.Build(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) generator(scheme *locate.Scheme, t Target, d target.Descriptor) (buildsys.Generator, error) {
	mode := d.Platform.EffectiveMode(b.Features.BuildMode())
	c := cmake.New(b.Runner, b.SourceDir, scheme.BuildDir(d, mode))

	toolchain := t.Toolchain
	switch d.Platform {
	case target.Windows:
		generator, platform, err := vsGenerator(d.Toolset, d.Arch)
		if err != nil {
			return nil, err
		}
		c.Generator(generator)
		c.Toolset(d.Toolset)
		if platform != "" {
			c.Platform(platform)
		}
		c.BuildType(mode.CMakeName(), true)
		c.Define("CMAKE_SYSTEM_VERSION", windowsSystem)
	case target.IOS:
		c.Generator("Unix Makefiles")
		c.BuildType(mode.CMakeName(), false)
		c.Define("CMAKE_SYSTEM_NAME", "iOS")
		c.DefineBool("APPLE_IOS", true)
		c.Define("CMAKE_OSX_DEPLOYMENT_TARGET", iosDeploymentTarget)
		c.Define("CMAKE_OSX_ARCHITECTURES", d.Arch)
		c.DefineBool("protobuf_BUILD_PROTOC_BINARIES", false)
		c.DefineBool("gRPC_BUILD_CODEGEN", false)
		c.DefineBool("CARES_INSTALL", false)
		c.DefineBool("ENABLE_BITCODE", false)
		c.DefineBool("ENABLE_ARC", true)
		if d.Arch == "x86_64" {
			c.Define("CMAKE_OSX_SYSROOT", "iphonesimulator")
		}
	case target.Mac:
		c.Generator("Ninja")
		c.BuildType(mode.CMakeName(), false)
		c.Define("CMAKE_OSX_DEPLOYMENT_TARGET", macDeploymentTarget)
		c.DefineBool("ENABLE_BITCODE", false)
		c.DefineBool("ENABLE_ARC", true)
	case target.Android:
		c.Generator("Ninja")
		c.BuildType(mode.CMakeName(), false)
		c.Define("ANDROID_ABI", d.Arch)
		c.Define("ANDROID_NATIVE_API_LEVEL", androidAPILevel)
		if ndk := os.Getenv("ANDROID_NDK"); toolchain == "" && ndk != "" {
			toolchain = filepath.Join(ndk, "build", "cmake", "android.toolchain.cmake")
		}
	default:
		c.Generator("Ninja")
		c.BuildType(mode.CMakeName(), false)
	}
	if toolchain != "" {
		c.Toolchain(toolchain)
	}
	for _, def := range b.Features.CMakeDefines() {
		c.DefineBool(def.Key, def.Value)
	}
	return c, nil
}
