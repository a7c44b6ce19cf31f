package main

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/runson/internal/engine"
	"github.com/pankaj-dahiya-devops/runson/internal/output"
)

func newEstimateCmd(a *app) *cobra.Command {
	var (
		configPath string
		noFetch    bool
		format     string
		prices     string
	)

	cmd := &cobra.Command{
		Use:   "estimate RUN",
		Short: "Estimate the cost of a GitHub Actions workflow run",
		Long: `Estimate the cost of a GitHub Actions workflow run.

RUN is a run URL (https://github.com/OWNER/REPO/actions/runs/ID) or a bare
run ID, in which case the repository is taken from the origin remote of the
current git checkout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := engine.ReportFormat(format)
			if f != engine.ReportFormatTable && f != engine.ReportFormatJSON {
				return fmt.Errorf("unknown format %q (use table or json)", format)
			}

			ref, err := engine.ParseRunRef(cmd.Context(), args[0], a.workDir, a.resolveRepo)
			if err != nil {
				return err
			}

			instances, err := a.loadCatalog(prices)
			if err != nil {
				return err
			}

			client, err := a.newGitHub(a.cfg.GitHub, a.logger)
			if err != nil {
				return fmt.Errorf("github client: %w", err)
			}
			est := engine.NewDefaultEstimatorWithClock(client, instances, a.logger, a.now)

			ctx, cancel := a.githubContext(cmd.Context())
			defer cancel()

			stop := startSpinner(cmd, "Fetching "+ref.String())
			runners, origin, err := est.ResolveRunners(ctx, ref, engine.RunnerOptions{
				Path:    configPath,
				NoFetch: noFetch,
				Dir:     a.workDir,
			})
			if err != nil {
				stop()
				return err
			}
			report, err := est.Estimate(ctx, engine.EstimateOptions{Ref: ref, Runners: runners})
			stop()
			if err != nil {
				return fmt.Errorf("estimate %s: %w", ref, err)
			}

			if origin != "" {
				note(cmd, "Using runner config: %s (%d runners)", origin, len(runners))
			} else {
				note(cmd, "No runner config found; runs-on jobs use inline labels only")
			}

			if f == engine.ReportFormatJSON {
				return output.RenderEstimateJSON(cmd.OutOrStdout(), report)
			}
			output.RenderEstimate(cmd.OutOrStdout(), report, a.palette)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to runs-on.yml (overrides remote and local configs)")
	cmd.Flags().BoolVar(&noFetch, "no-fetch-config", false, "Do not read runs-on.yml from the run's repository")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")
	cmd.Flags().StringVar(&prices, "prices", "", "Pricing table CSV (default: bundled snapshot)")

	return cmd
}

// startSpinner shows progress on stderr when it is a terminal and returns
// the function that stops it.
func startSpinner(cmd *cobra.Command, msg string) func() {
	f := asFile(cmd.ErrOrStderr())
	if f == nil || !output.IsTerminal(f) {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(f))
	s.Suffix = " " + msg
	s.Start()
	return s.Stop
}
