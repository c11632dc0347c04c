package internal

import (
	"os"
	"strings"

	"github.com/qiniu/x/log"
	"github.com/spf13/cobra"

	"github.com/heroiclabs/sdkbuild/internal/build"
	"github.com/heroiclabs/sdkbuild/internal/config"
	"github.com/heroiclabs/sdkbuild/pkgs/command"
	"github.com/heroiclabs/sdkbuild/target"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "sdkbuild",
	Short: "sdkbuild builds and packages the Nakama C++ SDK",
	Long: `sdkbuild drives CMake for every configured platform, collects the
libraries the enabled features need into the release tree and packages one
archive per platform.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetOutputLevel(log.Ldebug)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultFile, "Project config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(command.ExitCode(err))
	}
}

// featureFlags are the command-line overrides of the features section.
type featureFlags struct {
	linkMode  string
	buildMode string
	rest      bool
	grpc      bool
	http      string
	websocket string
}

func (f *featureFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.linkMode, "link-mode", "", "static or shared")
	cmd.Flags().StringVar(&f.buildMode, "build-mode", "", "release or debug")
	cmd.Flags().BoolVar(&f.rest, "rest", false, "Build the REST client")
	cmd.Flags().BoolVar(&f.grpc, "grpc", false, "Build the gRPC client")
	cmd.Flags().StringVar(&f.http, "http", "", "HTTP transport: none, cpprest")
	cmd.Flags().StringVar(&f.websocket, "websocket", "", "Websocket transport: none, cpprest, websocketpp, ixwebsocket")
}

// apply copies the flags set on cmd over cfg.
func (f *featureFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("link-mode") {
		cfg.Features.LinkMode = f.linkMode
	}
	if flags.Changed("build-mode") {
		cfg.Features.BuildMode = f.buildMode
	}
	if flags.Changed("rest") {
		cfg.Features.RESTClient = f.rest
	}
	if flags.Changed("grpc") {
		cfg.Features.GRPCClient = f.grpc
	}
	if flags.Changed("http") {
		cfg.Features.HTTPTransport = f.http
	}
	if flags.Changed("websocket") {
		cfg.Features.WebsocketTransport = f.websocket
	}
}

// targetFlags narrow or extend the configured targets.
type targetFlags struct {
	platforms []string
	archs     []string
	toolsets  []string
}

func (f *targetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.platforms, "platform", "p", nil, "Platforms to build (default: all configured)")
	cmd.Flags().StringSliceVar(&f.archs, "arch", nil, "Architectures, overriding the config")
	cmd.Flags().StringSliceVar(&f.toolsets, "toolset", nil, "Windows toolsets, overriding the config")
}

// targets returns the build targets selected by the flags. Platforms named
// on the command line but absent from the config use their defaults.
func (f *targetFlags) targets(cfg *config.Config) ([]build.Target, error) {
	var selected []config.Target
	if len(f.platforms) == 0 {
		selected = cfg.Targets
	} else {
		for _, name := range f.platforms {
			p, err := target.ParsePlatform(name)
			if err != nil {
				return nil, err
			}
			t, ok := cfg.Target(p)
			if !ok {
				t = config.Target{Platform: string(p)}
			}
			selected = append(selected, t)
		}
	}
	if len(selected) == 0 {
		return nil, errNoTargets
	}

	out := make([]build.Target, 0, len(selected))
	for _, t := range selected {
		p, err := target.ParsePlatform(t.Platform)
		if err != nil {
			return nil, err
		}
		m := target.Matrix{Platform: p, Archs: t.Archs, Toolsets: t.Toolsets}
		if len(f.archs) > 0 {
			m.Archs = f.archs
		}
		if len(f.toolsets) > 0 && p == target.Windows {
			m.Toolsets = f.toolsets
		}
		out = append(out, build.Target{Matrix: m, Toolchain: t.Toolchain, UniversalShared: t.UniversalShared})
	}
	return out, nil
}

type usageError string

func (e usageError) Error() string { return string(e) }

var errNoTargets = usageError("no targets: add a targets section to " + config.DefaultFile + " or pass --platform (" + platformList() + ")")

func platformList() string {
	names := make([]string, 0, len(target.Platforms()))
	for _, p := range target.Platforms() {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}
