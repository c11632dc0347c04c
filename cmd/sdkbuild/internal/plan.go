package internal

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/heroiclabs/sdkbuild/feature"
	"github.com/heroiclabs/sdkbuild/internal/config"
	"github.com/heroiclabs/sdkbuild/internal/locate"
	"github.com/heroiclabs/sdkbuild/internal/resolve"
)

var (
	planFeatures featureFlags
	planTargets  targetFlags
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the libraries a build would collect",
	Long: `Plan prints the dependency rules, the artifact groups the enabled features
select and, per target, the candidate paths probed for every library.
Nothing is built or copied.`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

func init() {
	planFeatures.register(planCmd)
	planTargets.register(planCmd)
	rootCmd.AddCommand(planCmd)
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(
		w,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Borders:  tw.BorderNone,
			Settings: tw.Settings{Separators: tw.Separators{BetweenColumns: tw.On, BetweenRows: tw.On}},
		})),
	)
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	planFeatures.apply(cmd, cfg)
	features, err := cfg.FeatureConfig()
	if err != nil {
		return err
	}
	targets, err := planTargets.targets(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "features:", features)

	groups := resolve.Resolve(features)
	selected := make(map[string]bool, len(groups))
	for _, g := range groups {
		selected[g.Name] = true
	}
	rulesTbl := newTable(out)
	rulesTbl.Header([]string{"Group", "Required When", "Selected"})
	var rows [][]any
	for _, r := range resolve.Rules() {
		when := "always"
		if len(r.AnyOf) > 0 {
			names := make([]string, len(r.AnyOf))
			for i, f := range r.AnyOf {
				names[i] = f.String()
			}
			when = strings.Join(names, " or ")
		}
		rows = append(rows, []any{r.Group, when, selected[r.Group]})
	}
	if err := rulesTbl.Bulk(rows); err != nil {
		return err
	}
	if err := rulesTbl.Render(); err != nil {
		return err
	}

	link, mode := features.LinkMode(), features.BuildMode()
	for _, t := range targets {
		scheme, err := locate.ForPlatform(t.Matrix.Platform)
		if err != nil {
			return err
		}
		descs := t.Matrix.Combinations(cfg.BuildDir, cfg.SDKDir)
		if len(descs) == 0 {
			continue
		}
		d := descs[0]
		fmt.Fprintf(out, "\n%s: %d variant(s), first %s -> %s\n", d.Platform, len(descs), d, d.ReleaseDir(link, mode))

		tbl := newTable(out)
		tbl.Header([]string{"Group", "Role", "Kind", "Release Name", "Candidates"})
		rows = nil
		for _, g := range groups {
			if link == feature.Shared && g.EmbeddedInShared {
				rows = append(rows, []any{g.Name, strings.Join(g.RoleNames(), " "), "-", "-", "linked into the shared library"})
				continue
			}
			for _, role := range g.Roles {
				for _, kind := range scheme.Kinds(link) {
					cands := scheme.Candidates(d, mode, role, kind)
					paths := make([]string, len(cands))
					name := "-"
					for i, c := range cands {
						paths[i] = c.Path
						name = c.Name
					}
					rows = append(rows, []any{g.Name, role.Name, kind, name, strings.Join(paths, "\n")})
				}
			}
		}
		if err := tbl.Bulk(rows); err != nil {
			return err
		}
		if err := tbl.Render(); err != nil {
			return err
		}
	}
	return nil
}
