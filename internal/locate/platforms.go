package locate

import (
	"fmt"

	"github.com/heroiclabs/sdkbuild/artifact"
	"github.com/heroiclabs/sdkbuild/target"
)

const (
	grpcDir     = "third_party/grpc"
	grpcDepsDir = "third_party/grpc/third_party"
)

// projectDirs lists where each role's project writes its library, relative
// to the target build tree. Later entries are fallbacks for other dependency
// versions or generators.
var projectDirs = map[string][]string{
	"nakama-cpp": {"src"},
	"protobuf": {
		grpcDepsDir + "/protobuf",
		grpcDepsDir + "/protobuf/cmake",
	},
	"ssl": {
		grpcDepsDir + "/boringssl/ssl",
		grpcDepsDir + "/boringssl-with-bazel",
	},
	"crypto": {
		grpcDepsDir + "/boringssl/crypto",
		grpcDepsDir + "/boringssl-with-bazel",
	},
	"address_sorting": {grpcDir},
	"gpr":             {grpcDir},
	"grpc++":          {grpcDir},
	"grpc":            {grpcDir},
	"cares":           {grpcDepsDir + "/cares/cares/lib"},
	"zlib":            {grpcDepsDir + "/zlib"},
	"cpprest": {
		"third_party/cpprestsdk/{mode}/Binaries",
		"third_party/cpprestsdk/Release/Binaries",
	},
}

func unixNaming(sharedExt string) Naming {
	return Naming{
		Prefix:      "lib",
		StaticExt:   ".a",
		SharedExt:   sharedExt,
		Bases:       map[string][]string{"zlib": {"z"}},
		SharedKinds: []artifact.Kind{artifact.SharedLib},
	}
}

var windowsNaming = Naming{
	StaticExt:   ".lib",
	SharedExt:   ".dll",
	ImportExt:   ".lib",
	DebugSuffix: "d",
	Bases: map[string][]string{
		"protobuf": {"libprotobuf"},
		"zlib":     {"zlibstatic", "zlib"},
	},
	ReleaseBases: map[string]string{"zlibstatic": "zlib"},
	SharedKinds:  []artifact.Kind{artifact.ImportLib, artifact.SharedLib},
}

var schemes = map[target.Platform]*Scheme{
	target.Linux: {
		Platform: target.Linux,
		Layout:   Layout{Root: "{mode}_{arch}"},
		Naming:   unixNaming(".so"),
		Dirs:     projectDirs,
	},
	target.Mac: {
		Platform: target.Mac,
		Layout:   Layout{Root: "{mode}"},
		Naming:   unixNaming(".dylib"),
		Dirs:     projectDirs,
	},
	target.IOS: {
		Platform: target.IOS,
		Layout:   Layout{Root: "{mode}/{arch}"},
		Naming:   unixNaming(".dylib"),
		Dirs:     projectDirs,
	},
	target.Android: {
		Platform: target.Android,
		Layout:   Layout{Root: "{arch}/{mode}"},
		Naming:   unixNaming(".so"),
		Dirs:     projectDirs,
	},
	target.Windows: {
		Platform: target.Windows,
		// Visual Studio generators nest by configuration, Ninja does not.
		Layout: Layout{Root: "{toolset}_{arch}", ModeDirs: []string{"{mode}", ""}},
		Naming: windowsNaming,
		Dirs:   projectDirs,
	},
}

// ForPlatform returns the Scheme of p.
func ForPlatform(p target.Platform) (*Scheme, error) {
	s, ok := schemes[p]
	if !ok {
		return nil, fmt.Errorf("locate: no scheme for platform %q", p)
	}
	return s, nil
}
