package internal

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heroiclabs/sdkbuild/internal/build"
	"github.com/heroiclabs/sdkbuild/internal/config"
	"github.com/heroiclabs/sdkbuild/pkgs/command"
)

var (
	buildFeatures     featureFlags
	buildTargets      targetFlags
	buildSkipGenerate bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the SDK and collect it into the release tree",
	Long: `Build configures and builds the library with CMake for every selected
target, then copies the libraries the enabled features need into the
release tree. iOS architectures are merged into universal libraries.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildFeatures.register(buildCmd)
	buildTargets.register(buildCmd)
	buildCmd.Flags().BoolVar(&buildSkipGenerate, "skip-generate", false, "Collect from existing build trees without running CMake")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	buildFeatures.apply(cmd, cfg)
	features, err := cfg.FeatureConfig()
	if err != nil {
		return err
	}
	targets, err := buildTargets.targets(cfg)
	if err != nil {
		return err
	}

	b := &build.Builder{
		Runner:       command.NewExec(),
		Features:     features,
		SourceDir:    cfg.SourceDir,
		BuildRoot:    cfg.BuildDir,
		SDKDir:       cfg.SDKDir,
		StageDir:     cfg.StageDir,
		SkipGenerate: cfg.SkipGenerate || buildSkipGenerate,
	}
	results, err := b.Build(context.Background(), targets)
	if err != nil {
		return err
	}
	for _, r := range results {
		n := len(r.Files)
		if len(r.Merged) > 0 {
			n = len(r.Merged)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d libraries in %s\n", r.Target, n, r.Dir)
	}
	return nil
}
