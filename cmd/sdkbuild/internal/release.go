package internal

import (
	"context"
	"fmt"

	"github.com/qiniu/x/log"
	"github.com/spf13/cobra"

	"github.com/heroiclabs/sdkbuild/internal/config"
	"github.com/heroiclabs/sdkbuild/internal/release"
	"github.com/heroiclabs/sdkbuild/pkgs/archive"
	"github.com/heroiclabs/sdkbuild/pkgs/command"
)

var (
	releaseVersion   string
	releaseFormat    string
	releasePlatforms []string
	releaseRecover   bool
	releaseSevenZip  string
)

var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Package the release tree into one archive per platform",
	Long: `Release reads the SDK version from the library sources and writes one
archive per platform, each holding the shared headers and only that
platform's libraries. The release tree is left as it was found.`,
	Args: cobra.NoArgs,
	RunE: runRelease,
}

func init() {
	releaseCmd.Flags().StringVar(&releaseVersion, "version", "", "Release version (default: read from the version file)")
	releaseCmd.Flags().StringVarP(&releaseFormat, "format", "f", "", "Archive format: 7z, zip, tar.zst, tar.xz")
	releaseCmd.Flags().StringSliceVarP(&releasePlatforms, "platform", "p", nil, "Release platforms to package (default: all)")
	releaseCmd.Flags().BoolVar(&releaseRecover, "recover", false, "Only move back folders left behind by an interrupted run")
	releaseCmd.Flags().StringVar(&releaseSevenZip, "7z", "", "Path of the 7-Zip executable")
	rootCmd.AddCommand(releaseCmd)
}

func runRelease(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	packager, err := newPackager(cfg)
	if err != nil {
		return err
	}
	// Restore an interrupted run before anything else can fail.
	if err := packager.Recover(); err != nil {
		return err
	}
	if releaseRecover {
		return nil
	}

	version := releaseVersion
	if version == "" {
		version, err = release.DetectVersion(cfg.Release.VersionFile)
		if err != nil {
			return err
		}
	}
	log.Info("release version", version)

	archives, err := packager.Package(context.Background(), version)
	for _, a := range archives {
		fmt.Fprintln(cmd.OutOrStdout(), a)
	}
	return err
}

func newPackager(cfg *config.Config) (*release.Packager, error) {
	format := cfg.Release.Format
	if releaseFormat != "" {
		format = releaseFormat
	}
	arch, err := archive.New(format, command.NewExec())
	if err != nil {
		return nil, err
	}
	if sz, ok := arch.(*archive.SevenZip); ok && releaseSevenZip != "" {
		sz.Path = releaseSevenZip
	}
	platforms := cfg.Release.Platforms
	if len(releasePlatforms) > 0 {
		platforms = releasePlatforms
	}
	return &release.Packager{
		SDKDir:    cfg.SDKDir,
		TempDir:   cfg.Release.TempDir,
		OutDir:    cfg.Release.OutDir,
		Name:      cfg.Release.Name,
		Platforms: platforms,
		Ignore:    cfg.Release.Ignore,
		Archiver:  arch,
	}, nil
}
