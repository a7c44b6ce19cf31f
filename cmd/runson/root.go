package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/runson/internal/catalog"
	"github.com/pankaj-dahiya-devops/runson/internal/config"
	"github.com/pankaj-dahiya-devops/runson/internal/githubapi"
	"github.com/pankaj-dahiya-devops/runson/internal/inference"
	"github.com/pankaj-dahiya-devops/runson/internal/logging"
	"github.com/pankaj-dahiya-devops/runson/internal/models"
	"github.com/pankaj-dahiya-devops/runson/internal/output"
	"github.com/pankaj-dahiya-devops/runson/internal/providers/aws/common"
	"github.com/pankaj-dahiya-devops/runson/internal/providers/aws/hardware"
)

// app carries the dependencies shared by every subcommand. Fields set by
// persistent flags and PersistentPreRunE are filled before RunE executes.
type app struct {
	configLoader config.Loader
	workDir      string
	now          func() time.Time

	newGitHub    func(cfg config.GitHubConfig, logger log.Logger) (githubapi.Client, error)
	resolveRepo  githubapi.RemoteResolver
	awsProvider  common.AWSClientProvider
	newCollector func(logger log.Logger) hardware.Collector

	verbosity int
	noColor   bool

	cfg     *config.Config
	logger  log.Logger
	palette output.Palette
}

func newApp() *app {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	provider := common.NewDefaultAWSClientProvider()
	return &app{
		configLoader: config.NewDefaultLoader(),
		workDir:      wd,
		now:          time.Now,
		newGitHub: func(cfg config.GitHubConfig, logger log.Logger) (githubapi.Client, error) {
			return githubapi.NewDefaultClient(githubapi.Options{
				Token:   cfg.Token,
				BaseURL: cfg.APIURL,
				Timeout: cfg.Timeout,
				Logger:  logger,
			})
		},
		resolveRepo: githubapi.OriginRepo,
		awsProvider: provider,
		newCollector: func(logger log.Logger) hardware.Collector {
			return hardware.NewDefaultCollectorWithFactory(provider.Factory(), inference.NewHeuristicClassifier(), logger)
		},
	}
}

func newRootCmd() *cobra.Command {
	return newRootCmdWithApp(newApp())
}

func newRootCmdWithApp(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "runson",
		Short:         "Pick EC2 instance families for runs-on runners and estimate workflow costs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable coloured output")

	root.AddCommand(newFamilyCmd(a))
	root.AddCommand(newEstimateCmd(a))
	root.AddCommand(newCatalogCmd(a))
	root.AddCommand(newDoctorCmd(a))
	root.AddCommand(newVersionCmd())
	return root
}

// setup loads the application config and resolves the logger and palette.
func (a *app) setup(cmd *cobra.Command) error {
	a.logger = logging.New(cmd.ErrOrStderr(), a.verbosity)

	cfg, err := a.configLoader.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	level.Debug(a.logger).Log("msg", "config loaded", "path", a.configLoader.ConfigPath())

	mode := cfg.Output.Color
	if a.noColor {
		mode = config.ColorNever
	}
	a.palette = output.NewPalette(output.ResolveColor(mode, asFile(cmd.OutOrStdout())))
	return nil
}

// asFile returns w as an *os.File, or nil when w is anything else.
func asFile(w io.Writer) *os.File {
	if f, ok := w.(*os.File); ok {
		return f
	}
	return nil
}

// pricesPath returns the pricing table chosen by flag, then config.
func (a *app) pricesPath(flag string) string {
	if flag != "" {
		return flag
	}
	return a.cfg.Catalog.PricesPath
}

// loadCatalog reads the pricing table chosen by flag, then config, then
// the bundled snapshot.
func (a *app) loadCatalog(flag string) ([]models.Instance, error) {
	path := a.pricesPath(flag)
	instances, err := catalog.NewLoader(inference.NewHeuristicClassifier(), a.logger).LoadPath(path)
	if err != nil {
		return nil, fmt.Errorf("load pricing table: %w", err)
	}
	level.Info(a.logger).Log("msg", "pricing table loaded", "source", catalog.Source(path), "rows", len(instances))
	return instances, nil
}

// githubContext bounds every GitHub call made by one command.
func (a *app) githubContext(parent context.Context) (context.Context, context.CancelFunc) {
	timeout := a.cfg.GitHub.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}
	return context.WithTimeout(parent, timeout)
}

// note writes an informational line to stderr so stdout stays parseable.
func note(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
}
