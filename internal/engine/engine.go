// Package engine estimates the cost of GitHub Actions workflow runs.
//
// The engine resolves a run reference, reads the run and its jobs through
// githubapi.Client, attributes each job to a runs-on runner or a
// GitHub-hosted runner from its labels and prices it against the instance
// catalog. It never talks to the network directly.
package engine

import (
	"context"

	"github.com/pankaj-dahiya-devops/runson/internal/models"
)

// ReportFormat controls how the CLI renders an estimate.
type ReportFormat string

const (
	ReportFormatJSON  ReportFormat = "json"
	ReportFormatTable ReportFormat = "table"
)

// EstimateOptions configures a single estimate.
type EstimateOptions struct {
	// Ref identifies the run.
	Ref RunRef

	// Runners are the runner configurations jobs are priced against.
	Runners models.RunnerSet
}

// RunnerOptions selects where runner configuration is read from.
type RunnerOptions struct {
	// Path is an explicit runs-on.yml. It takes precedence over everything.
	Path string

	// NoFetch disables reading runs-on.yml from the run's repository when the
	// run was given as a URL.
	NoFetch bool

	// Dir is the working directory used to find the local repository config.
	Dir string
}

// Estimator is the central estimation interface.
type Estimator interface {
	// ResolveRunners loads the runner configuration that applies to ref and
	// reports where it came from. An empty origin means none was found.
	ResolveRunners(ctx context.Context, ref RunRef, opts RunnerOptions) (runners models.RunnerSet, origin string, err error)

	// Estimate fetches the run and prices every job.
	Estimate(ctx context.Context, opts EstimateOptions) (*models.RunEstimate, error)
}
