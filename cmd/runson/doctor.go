package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/runson/internal/catalog"
	"github.com/pankaj-dahiya-devops/runson/internal/runnerconfig"
)

// errUnhealthy is returned by doctor when a required check fails.
var errUnhealthy = errors.New("environment checks failed")

// DoctorResult is the structured output of runson doctor. It can be
// serialised to JSON via --format=json or rendered as a table (default).
type DoctorResult struct {
	Catalog struct {
		Source string `json:"source"`
		OK     bool   `json:"ok"`
		Rows   int    `json:"rows"`
		Error  string `json:"error,omitempty"`
	} `json:"catalog"`

	RunnerConfig struct {
		Path    string   `json:"path"`
		Present bool     `json:"present"`
		Valid   bool     `json:"valid"`
		Runners int      `json:"runners"`
		Errors  []string `json:"errors,omitempty"`
	} `json:"runner_config"`

	GitHub struct {
		TokenPresent bool   `json:"token_present"`
		APIURL       string `json:"api_url,omitempty"`
	} `json:"github"`

	AWS struct {
		Profile     string `json:"profile,omitempty"`
		Credentials bool   `json:"credentials_ok"`
		AccountID   string `json:"account_id,omitempty"`
		Profiles    int    `json:"profiles_found"`
		Error       string `json:"error,omitempty"`
	} `json:"aws"`

	// OverallHealthy covers the required checks only: the pricing table
	// loads and any runner config present is valid. GitHub and AWS are
	// reported but optional.
	OverallHealthy bool `json:"overall_healthy"`
}

// doctorOptions holds the flag values of runson doctor.
type doctorOptions struct {
	format     string
	profile    string
	configPath string
	prices     string
}

func newDoctorCmd(a *app) *cobra.Command {
	var opts doctorOptions

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run environment diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.profile == "" {
				opts.profile = a.cfg.AWS.DefaultProfile
			}
			result, err := runDoctor(cmd.Context(), a, cmd.OutOrStdout(), opts)
			if err != nil {
				return err
			}
			if !result.OverallHealthy {
				return errUnhealthy
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.format, "format", "table", `Output format: "table" or "json"`)
	cmd.Flags().StringVar(&opts.profile, "profile", "", "AWS profile to use (default: credential chain)")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to runs-on.yml (default: <repo>/.github/runs-on.yml)")
	cmd.Flags().StringVar(&opts.prices, "prices", "", "Pricing table CSV (default: bundled snapshot)")
	return cmd
}

// runDoctor collects all diagnostic results, renders them to w in the
// requested format, and returns the result. The returned error covers only
// rendering failures; callers inspect result.OverallHealthy.
func runDoctor(ctx context.Context, a *app, w io.Writer, opts doctorOptions) (DoctorResult, error) {
	result := collectDoctorResult(ctx, a, opts)

	switch opts.format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return result, fmt.Errorf("encode doctor result: %w", err)
		}
	default:
		renderDoctorTable(result, w)
	}

	return result, nil
}

// collectDoctorResult runs all environment checks and populates a
// DoctorResult. It performs no rendering.
func collectDoctorResult(ctx context.Context, a *app, opts doctorOptions) DoctorResult {
	var result DoctorResult

	// Pricing table: bundled snapshot unless overridden.
	path := a.pricesPath(opts.prices)
	result.Catalog.Source = catalog.Source(path)
	instances, err := catalog.NewLoader(nil, a.logger).LoadPath(path)
	if err != nil {
		result.Catalog.Error = err.Error()
	} else {
		result.Catalog.OK = true
		result.Catalog.Rows = len(instances)
	}

	// Runner config: stat → validate → parse (file is optional).
	rcPath := opts.configPath
	if rcPath == "" {
		rcPath = runnerconfig.DefaultPath(a.workDir)
	}
	result.RunnerConfig.Path = rcPath
	data, err := os.ReadFile(rcPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		result.RunnerConfig.Present = true
		result.RunnerConfig.Errors = []string{err.Error()}
	default:
		result.RunnerConfig.Present = true
		for _, e := range runnerconfig.Validate(data) {
			result.RunnerConfig.Errors = append(result.RunnerConfig.Errors, e.Error())
		}
		if len(result.RunnerConfig.Errors) == 0 {
			result.RunnerConfig.Valid = true
			if set, err := runnerconfig.Parse(data); err == nil {
				result.RunnerConfig.Runners = len(set)
			}
		}
	}

	// GitHub: the token is only needed by estimate.
	result.GitHub.TokenPresent = a.cfg.GitHub.Token != ""
	result.GitHub.APIURL = a.cfg.GitHub.APIURL

	// AWS: credentials → STS account ID; profiles are listed without loading.
	result.AWS.Profile = opts.profile
	profileCfg, err := a.awsProvider.LoadProfile(ctx, opts.profile, a.cfg.AWS.DefaultRegion)
	if err != nil {
		result.AWS.Error = err.Error()
	} else {
		result.AWS.Credentials = true
		result.AWS.AccountID = profileCfg.AccountID
	}
	if profiles, err := a.awsProvider.ListProfiles(); err == nil {
		result.AWS.Profiles = len(profiles)
	}

	result.OverallHealthy = result.Catalog.OK &&
		(!result.RunnerConfig.Present || result.RunnerConfig.Valid)

	return result
}

// renderDoctorTable writes the human-readable diagnostic output from result to w.
func renderDoctorTable(result DoctorResult, w io.Writer) {
	fmt.Fprintln(w, "Environment Diagnostics")

	fmt.Fprintln(w, "\nPricing table:")
	if result.Catalog.OK {
		doctorPrint(w, "Loaded", "OK", fmt.Sprintf("%s, %d rows", result.Catalog.Source, result.Catalog.Rows))
	} else {
		doctorPrint(w, "Loaded", "FAIL", result.Catalog.Error)
	}

	fmt.Fprintln(w, "\nRunner config:")
	if !result.RunnerConfig.Present {
		doctorPrint(w, "runs-on.yml present", "Not found (optional)", result.RunnerConfig.Path)
	} else {
		doctorPrint(w, "runs-on.yml present", "YES", result.RunnerConfig.Path)
		if result.RunnerConfig.Valid {
			doctorPrint(w, "Config valid", "OK", fmt.Sprintf("%d runners", result.RunnerConfig.Runners))
		} else {
			for _, e := range result.RunnerConfig.Errors {
				doctorPrint(w, "Config valid", "FAIL", e)
			}
		}
	}

	fmt.Fprintln(w, "\nGitHub:")
	if result.GitHub.TokenPresent {
		doctorPrint(w, "Token", "OK", result.GitHub.APIURL)
	} else {
		doctorPrint(w, "Token", "MISSING", "set GITHUB_TOKEN to use estimate")
	}

	if result.AWS.Profile != "" {
		fmt.Fprintf(w, "\nAWS (profile: %s):\n", result.AWS.Profile)
	} else {
		fmt.Fprintln(w, "\nAWS:")
	}
	if result.AWS.Credentials {
		doctorPrint(w, "STS Identity", "OK", "Account: "+result.AWS.AccountID)
	} else {
		doctorPrint(w, "STS Identity", "FAIL", result.AWS.Error)
	}
	doctorPrint(w, "Profiles", fmt.Sprintf("%d found", result.AWS.Profiles), "")
}

// doctorPrint writes a single diagnostic check line to w.
// When detail is non-empty it is appended in parentheses.
func doctorPrint(w io.Writer, label, status, detail string) {
	if detail != "" {
		fmt.Fprintf(w, "  %s: %s (%s)\n", label, status, detail)
	} else {
		fmt.Fprintf(w, "  %s: %s\n", label, status)
	}
}
