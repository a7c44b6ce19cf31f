package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/runson/internal/matching"
	"github.com/pankaj-dahiya-devops/runson/internal/models"
	"github.com/pankaj-dahiya-devops/runson/internal/output"
	"github.com/pankaj-dahiya-devops/runson/internal/runnerconfig"
	"github.com/pankaj-dahiya-devops/runson/internal/synthesis"
)

// errNoSelectors is returned when family has nothing to select instances by.
var errNoSelectors = errors.New("no selectors provided and no runs-on.yml found")

// tmpfsRAM is the memory requirement applied by --for-tmpfs.
var tmpfsRAM = models.Between(32, 99999)

// familyOptions holds the flag values of runson family.
type familyOptions struct {
	sortBy     string
	cpu        string
	mem        string
	runner     string
	format     string
	pickFamily bool
	arches     []string
	budget     float64
	ebsMin     int
	nvme       bool
	forTmpfs   bool
	globs      bool
	configPath string
	prices     string
}

func newFamilyCmd(a *app) *cobra.Command {
	var opts familyOptions

	cmd := &cobra.Command{
		Use:   "family [SELECTORS...]",
		Short: "List instance types matching family selectors or runner configs",
		Long: `List EC2 instance types matching family selectors (m7i, m7*, c7i.large),
a runner from .github/runs-on.yml, or every configured runner.

With --globs the matching set is summarised as the smallest list of family
globs that select it without pulling in anything else.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFamily(cmd, a, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.sortBy, "sort", "price", "Sort column: "+strings.Join(output.SortColumns, ", "))
	cmd.Flags().StringVar(&opts.cpu, "cpu", "", `vCPU requirement, "8" or "8:16"`)
	cmd.Flags().StringVar(&opts.mem, "mem", "", `Memory requirement in GB, "16" or "16:64"`)
	cmd.Flags().StringVar(&opts.runner, "runner", "", "Use the families and requirements of this runner")
	cmd.Flags().StringVarP(&opts.format, "output", "o", "list", "Output format: list, yaml or json")
	cmd.Flags().BoolVar(&opts.pickFamily, "pick-family", false, "Ignore family patterns and search every family")
	cmd.Flags().StringArrayVar(&opts.arches, "arch", nil, "Restrict to an architecture (repeatable): x86_64, amd64, arm64")
	cmd.Flags().Float64Var(&opts.budget, "budget", 0, "Maximum on-demand price in USD per hour")
	cmd.Flags().IntVar(&opts.ebsMin, "ebs-min", 0, "Minimum EBS baseline bandwidth in Mbps")
	cmd.Flags().BoolVar(&opts.nvme, "nvme", false, "Only instances with local NVMe storage")
	cmd.Flags().BoolVar(&opts.forTmpfs, "for-tmpfs", false, "Require at least 32 GB of memory unless --mem is set")
	cmd.Flags().BoolVar(&opts.globs, "globs", false, "Print family globs selecting the matching instances")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to runs-on.yml (default: <repo>/.github/runs-on.yml)")
	cmd.Flags().StringVar(&opts.prices, "prices", "", "Pricing table CSV (default: bundled snapshot)")

	return cmd
}

// selection is the outcome of family mode resolution.
type selection struct {
	patterns []string
	cpu      *models.Requirement
	ram      *models.Requirement

	// runners annotate the Matched By column.
	runners []models.RunnerConfig
}

func runFamily(cmd *cobra.Command, a *app, args []string, opts familyOptions) error {
	switch opts.format {
	case "list", "yaml", "json":
	default:
		return fmt.Errorf("unknown output format %q (use list, yaml or json)", opts.format)
	}
	arches, err := parseArches(opts.arches)
	if err != nil {
		return err
	}

	runners, _, err := loadRunners(a, opts.configPath)
	if err != nil {
		return err
	}
	sel, err := resolveSelection(args, runners, opts)
	if err != nil {
		return err
	}

	instances, err := a.loadCatalog(opts.prices)
	if err != nil {
		return err
	}

	filter := matching.Filter{
		Patterns: sel.patterns,
		CPU:      sel.cpu,
		RAM:      sel.ram,
		Arches:   arches,
	}
	if cmd.Flags().Changed("budget") {
		filter.MaxPrice = &opts.budget
	}
	if cmd.Flags().Changed("ebs-min") {
		filter.EBSMin = &opts.ebsMin
	}
	if opts.nvme {
		filter.NVMe = &opts.nvme
	}

	filtered := matching.FilterInstances(instances, filter)
	level.Debug(a.logger).Log("msg", "instances filtered", "patterns", strings.Join(sel.patterns, ","), "matched", len(filtered))

	sorted, err := output.SortInstances(filtered, opts.sortBy)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if opts.globs {
		// NVMe guarantees are checked against the whole catalog.
		globs := synthesis.Synthesize(filtered, instances, synthesis.Options{
			Budget: filter.MaxPrice,
			NVMe:   filter.NVMe,
		})
		output.RenderGlobs(w, globs, filtered, opts.sortBy, a.palette)
		return nil
	}
	return renderFamily(w, sorted, sel.runners, opts.format, a.palette)
}

func renderFamily(w io.Writer, instances []models.Instance, runners []models.RunnerConfig, format string, p output.Palette) error {
	switch format {
	case "json":
		return output.RenderInstanceJSON(w, instances)
	case "yaml":
		output.RenderInstanceYAML(w, instances, p)
	default:
		output.RenderInstanceTable(w, instances, output.TableOptions{Runners: runners, Palette: p})
	}
	return nil
}

// resolveSelection applies the family mode precedence: --pick-family, then
// --runner, then explicit selectors, then the union of configured runners.
func resolveSelection(args []string, runners models.RunnerSet, opts familyOptions) (selection, error) {
	cpu, err := optionalRequirement(opts.cpu)
	if err != nil {
		return selection{}, fmt.Errorf("--cpu: %w", err)
	}
	ram, err := optionalRequirement(opts.mem)
	if err != nil {
		return selection{}, fmt.Errorf("--mem: %w", err)
	}

	var sel selection
	switch {
	case opts.pickFamily:
		sel = selection{cpu: cpu, ram: ram, runners: runners}
		if opts.runner != "" {
			rc, err := runnerconfig.Lookup(runners, opts.runner)
			if err != nil {
				return selection{}, err
			}
			if sel.cpu == nil {
				sel.cpu = rc.CPU
			}
			if sel.ram == nil {
				sel.ram = rc.RAM
			}
		}

	case opts.runner != "":
		rc, err := runnerconfig.Lookup(runners, opts.runner)
		if err != nil {
			return selection{}, err
		}
		sel = selection{
			patterns: rc.Families,
			cpu:      rc.CPU,
			ram:      rc.RAM,
			runners:  []models.RunnerConfig{rc},
		}

	case len(args) > 0:
		sel = selection{patterns: args, cpu: cpu, ram: ram, runners: runners}

	case len(runners) > 0:
		sel = selection{patterns: unionFamilies(runners), cpu: cpu, ram: ram, runners: runners}

	default:
		return selection{}, errNoSelectors
	}

	if opts.forTmpfs && sel.ram == nil {
		r := tmpfsRAM
		sel.ram = &r
	}
	return sel, nil
}

func optionalRequirement(s string) (*models.Requirement, error) {
	if s == "" {
		return nil, nil
	}
	return runnerconfig.ParseCLIRequirement(s)
}

// unionFamilies returns every family pattern of runners, sorted and unique.
func unionFamilies(runners models.RunnerSet) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, rc := range runners {
		for _, f := range rc.Families {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

func parseArches(values []string) ([]models.Arch, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make([]models.Arch, 0, len(values))
	for _, v := range values {
		arch := models.Arch(strings.ToLower(strings.TrimSpace(v)))
		if !validArch(arch) {
			return nil, fmt.Errorf("unknown architecture %q (use x86_64, amd64 or arm64)", v)
		}
		out = append(out, arch)
	}
	return out, nil
}

func validArch(arch models.Arch) bool {
	for _, a := range models.ValidArches {
		if a == arch {
			return true
		}
	}
	return false
}

// loadRunners reads the runner configuration at path, or the repository
// default when path is empty. A missing default file yields no runners.
func loadRunners(a *app, path string) (models.RunnerSet, string, error) {
	explicit := path != ""
	if !explicit {
		path = runnerconfig.DefaultPath(a.workDir)
	}
	set, err := runnerconfig.Load(path)
	switch {
	case !explicit && errors.Is(err, os.ErrNotExist):
		level.Debug(a.logger).Log("msg", "no runner config", "path", path)
		return nil, "", nil
	case err != nil:
		return nil, "", fmt.Errorf("load runner config %q: %w", path, err)
	}
	level.Info(a.logger).Log("msg", "runner config loaded", "path", path, "runners", len(set))
	return set, path, nil
}
