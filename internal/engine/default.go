package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/pankaj-dahiya-devops/runson/internal/githubapi"
	"github.com/pankaj-dahiya-devops/runson/internal/matching"
	"github.com/pankaj-dahiya-devops/runson/internal/models"
	"github.com/pankaj-dahiya-devops/runson/internal/runnerconfig"
)

// DefaultEstimator is the production implementation of Estimator.
type DefaultEstimator struct {
	client    githubapi.Client
	instances []models.Instance
	now       func() time.Time
	logger    log.Logger
}

// NewDefaultEstimator returns an estimator pricing runs-on jobs against
// instances. In-progress jobs are costed up to the current time.
func NewDefaultEstimator(client githubapi.Client, instances []models.Instance, logger log.Logger) *DefaultEstimator {
	return NewDefaultEstimatorWithClock(client, instances, logger, time.Now)
}

// NewDefaultEstimatorWithClock is NewDefaultEstimator with an injected clock.
func NewDefaultEstimatorWithClock(client githubapi.Client, instances []models.Instance, logger log.Logger, now func() time.Time) *DefaultEstimator {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &DefaultEstimator{
		client:    client,
		instances: instances,
		now:       now,
		logger:    log.With(logger, "component", "estimate"),
	}
}

// ---------------------------------------------------------------------------
// Runner configuration
// ---------------------------------------------------------------------------

// ResolveRunners implements Estimator. Precedence: explicit path, then the
// run repository's runs-on.yml when the run was given as a URL, then the
// local repository's runs-on.yml.
func (e *DefaultEstimator) ResolveRunners(ctx context.Context, ref RunRef, opts RunnerOptions) (models.RunnerSet, string, error) {
	if opts.Path != "" {
		set, err := runnerconfig.Load(opts.Path)
		if err != nil {
			return nil, "", fmt.Errorf("load runner config %q: %w", opts.Path, err)
		}
		return set, opts.Path, nil
	}

	if ref.Remote && !opts.NoFetch {
		return e.remoteRunners(ctx, ref.Repo)
	}

	path := runnerconfig.DefaultPath(opts.Dir)
	set, err := runnerconfig.Load(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		level.Info(e.logger).Log("msg", "no local runner config", "path", path)
		return nil, "", nil
	case err != nil:
		return nil, "", fmt.Errorf("load runner config %q: %w", path, err)
	}
	return set, path, nil
}

// remoteRunners reads runs-on.yml from repo. A missing or unreadable file
// yields no runners rather than an error.
func (e *DefaultEstimator) remoteRunners(ctx context.Context, repo githubapi.Repo) (models.RunnerSet, string, error) {
	data, err := e.client.GetFile(ctx, repo, runnerconfig.FileName)
	if err != nil {
		if errors.Is(err, githubapi.ErrNotFound) {
			level.Warn(e.logger).Log("msg", "no runner config in repository", "repo", repo)
		} else {
			level.Warn(e.logger).Log("msg", "could not fetch runner config", "repo", repo, "err", err)
		}
		return nil, "", nil
	}

	set, err := runnerconfig.Parse(data)
	if err != nil {
		level.Warn(e.logger).Log("msg", "invalid runner config in repository", "repo", repo, "err", err)
		return nil, "", nil
	}
	return set, repo.String() + ":" + runnerconfig.FileName, nil
}

// ---------------------------------------------------------------------------
// Estimation
// ---------------------------------------------------------------------------

// Estimate implements Estimator.
func (e *DefaultEstimator) Estimate(ctx context.Context, opts EstimateOptions) (*models.RunEstimate, error) {
	ref := opts.Ref

	run, err := e.client.GetWorkflowRun(ctx, ref.Repo, ref.RunID)
	if err != nil {
		return nil, fmt.Errorf("fetch workflow run: %w", err)
	}
	jobs, err := e.client.ListJobs(ctx, ref.Repo, ref.RunID)
	if err != nil {
		return nil, fmt.Errorf("fetch workflow jobs: %w", err)
	}

	est := &models.RunEstimate{
		Repo:         ref.Repo.String(),
		RunID:        ref.RunID,
		WorkflowName: run.Name,
		RunNumber:    run.RunNumber,
		Status:       statusOf(run.Status, run.Conclusion),
		Jobs:         make([]models.JobEstimate, 0, len(jobs)),
	}
	if !run.StartedAt.IsZero() && !run.UpdatedAt.IsZero() {
		est.Duration = run.UpdatedAt.Sub(run.StartedAt)
	}

	for _, job := range jobs {
		je := e.estimateJob(job, opts.Runners)
		est.TotalLower += je.CostLower
		est.TotalUpper += je.CostUpper
		est.Jobs = append(est.Jobs, je)
	}

	level.Info(e.logger).Log(
		"msg", "estimated run",
		"run", ref,
		"jobs", len(est.Jobs),
		"total_lower", fmt.Sprintf("%.4f", est.TotalLower),
		"total_upper", fmt.Sprintf("%.4f", est.TotalUpper),
	)
	return est, nil
}

// estimateJob prices one job.
func (e *DefaultEstimator) estimateJob(job githubapi.Job, runners models.RunnerSet) models.JobEstimate {
	je := models.JobEstimate{
		Name:   job.Name,
		Status: statusOf(job.Status, job.Conclusion),
	}

	switch {
	case !job.StartedAt.IsZero() && !job.CompletedAt.IsZero():
		je.Started = true
		je.Duration = job.CompletedAt.Sub(job.StartedAt)
	case !job.StartedAt.IsZero():
		je.Started = true
		je.InProgress = true
		je.Duration = e.now().Sub(job.StartedAt)
	}
	if je.Duration < 0 {
		je.Duration = 0
	}
	minutes := je.Duration.Minutes()

	lr := RunnerFromLabels(job.Labels)
	je.RunnerKind = lr.Kind

	switch lr.Kind {
	case models.RunnerKindRunsOn:
		rc, display := e.runsOnRunner(lr, runners)
		je.Runner = display

		pr, ok := matching.RunnerPriceRange(rc, e.instances)
		if !ok {
			je.Detail = "no pricing data"
			level.Debug(e.logger).Log("msg", "no pricing data for runner", "job", job.Name, "runner", display)
			return je
		}
		hours := minutes / 60
		je.Priced = true
		je.CostLower = pr.Min * hours
		je.CostUpper = pr.Max * hours
		je.Detail = fmt.Sprintf("%s @ $%.2f/hr", pr.MinInstance, pr.Min)
		if rc.Spot.Enabled {
			je.Detail = "spot, " + je.Detail
		}

	case models.RunnerKindGitHubHosted:
		je.Runner = lr.Name
		cost, detail := HostedCost(lr.Name, minutes)
		je.Priced = true
		je.CostLower = cost
		je.CostUpper = cost
		je.Detail = detail

	default:
		je.Runner = "unknown"
	}
	return je
}

// runsOnRunner builds the effective runner configuration for a runs-on job
// and its display name: the runner name, "name*" when inline parameters
// override it, or the formatted inline parameters alone.
func (e *DefaultEstimator) runsOnRunner(lr LabelRunner, runners models.RunnerSet) (models.RunnerConfig, string) {
	rc := models.RunnerConfig{Spot: models.DefaultSpot}
	display := ""
	if lr.Name != "" {
		display = lr.Name
		if base, ok := runners.Get(lr.Name); ok {
			rc = base
		} else {
			level.Debug(e.logger).Log("msg", "runner not in config", "runner", lr.Name)
		}
	}

	if lr.Overrides != nil {
		rc = MergeRunner(rc, *lr.Overrides)
		if display != "" {
			display += "*"
		} else {
			display = FormatInlineSpec(*lr.Overrides)
		}
	}
	if display == "" {
		display = "inline"
	}
	return rc, display
}

// statusOf prefers the conclusion of a finished run or job.
func statusOf(status, conclusion string) string {
	if conclusion != "" {
		return conclusion
	}
	if status == "" {
		return "unknown"
	}
	return status
}
