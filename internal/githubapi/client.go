// Package githubapi reads workflow runs, jobs and repository files from the
// GitHub REST API.
//
// Callers depend on the Client interface. DefaultClient wraps go-github and
// reaches it only through the narrow ActionsService and RepositoriesService
// interfaces so tests can substitute canned responses.
package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/go-github/v66/github"
)

// ErrNoToken is returned when no API token is configured.
var ErrNoToken = errors.New("no GitHub token: set GITHUB_TOKEN or GH_TOKEN, or github.token in the config file")

// ErrNotFound is returned when the requested run or file does not exist.
var ErrNotFound = errors.New("not found")

// jobsPerPage is the page size used when listing jobs.
const jobsPerPage = 100

// Repo identifies a repository as owner/name.
type Repo struct {
	Owner string
	Name  string
}

// String renders r as "owner/name".
func (r Repo) String() string {
	return r.Owner + "/" + r.Name
}

// ParseRepo parses "owner/name".
func ParseRepo(s string) (Repo, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return Repo{}, fmt.Errorf("invalid repository %q (use owner/name)", s)
	}
	return Repo{Owner: owner, Name: name}, nil
}

// WorkflowRun is the subset of a workflow run needed for estimation.
type WorkflowRun struct {
	ID         int64
	Name       string
	RunNumber  int
	Status     string
	Conclusion string
	StartedAt  time.Time
	UpdatedAt  time.Time
}

// Job is the subset of a workflow job needed for estimation. Zero times mean
// the job has not started or completed.
type Job struct {
	Name        string
	Status      string
	Conclusion  string
	Labels      []string
	StartedAt   time.Time
	CompletedAt time.Time
}

// Client is the read-only GitHub surface used by the estimate command.
type Client interface {
	// GetWorkflowRun returns a single run.
	GetWorkflowRun(ctx context.Context, repo Repo, runID int64) (*WorkflowRun, error)

	// ListJobs returns every job of a run across all pages.
	ListJobs(ctx context.Context, repo Repo, runID int64) ([]Job, error)

	// GetFile returns the decoded contents of path at the default branch.
	// It returns an error wrapping ErrNotFound when the file does not exist.
	GetFile(ctx context.Context, repo Repo, path string) ([]byte, error)
}

// ---------------------------------------------------------------------------
// go-github service interfaces
// ---------------------------------------------------------------------------

// ActionsService is the subset of github.ActionsService used here.
type ActionsService interface {
	GetWorkflowRunByID(ctx context.Context, owner, repo string, runID int64) (*github.WorkflowRun, *github.Response, error)
	ListWorkflowJobs(ctx context.Context, owner, repo string, runID int64, opts *github.ListWorkflowJobsOptions) (*github.Jobs, *github.Response, error)
}

// RepositoriesService is the subset of github.RepositoriesService used here.
type RepositoriesService interface {
	GetContents(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentGetOptions) (*github.RepositoryContent, []*github.RepositoryContent, *github.Response, error)
}

// Options configures NewDefaultClient.
type Options struct {
	Token string

	// BaseURL is a GitHub Enterprise Server API URL. Empty means github.com.
	BaseURL string

	// Timeout bounds each HTTP request. Zero means no limit.
	Timeout time.Duration

	Logger log.Logger
}

// DefaultClient is the production Client backed by go-github.
type DefaultClient struct {
	actions ActionsService
	repos   RepositoriesService
	logger  log.Logger
}

// NewDefaultClient builds an authenticated go-github client. It returns
// ErrNoToken when opts.Token is empty.
func NewDefaultClient(opts Options) (*DefaultClient, error) {
	if opts.Token == "" {
		return nil, ErrNoToken
	}

	gh := github.NewClient(&http.Client{Timeout: opts.Timeout}).WithAuthToken(opts.Token)
	if opts.BaseURL != "" {
		var err error
		gh, err = gh.WithEnterpriseURLs(opts.BaseURL, opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("github enterprise url %q: %w", opts.BaseURL, err)
		}
	}
	return NewDefaultClientWithServices(gh.Actions, gh.Repositories, opts.Logger), nil
}

// NewDefaultClientWithServices returns a client over the given services.
// Pass fakes in tests.
func NewDefaultClientWithServices(actions ActionsService, repos RepositoriesService, logger log.Logger) *DefaultClient {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &DefaultClient{
		actions: actions,
		repos:   repos,
		logger:  log.With(logger, "component", "github"),
	}
}

// GetWorkflowRun implements Client.
func (c *DefaultClient) GetWorkflowRun(ctx context.Context, repo Repo, runID int64) (*WorkflowRun, error) {
	run, resp, err := c.actions.GetWorkflowRunByID(ctx, repo.Owner, repo.Name, runID)
	if err != nil {
		return nil, fmt.Errorf("get workflow run %d in %s: %w", runID, repo, notFound(resp, err))
	}
	level.Debug(c.logger).Log("msg", "fetched workflow run", "repo", repo, "run_id", runID, "status", run.GetStatus())

	return &WorkflowRun{
		ID:         run.GetID(),
		Name:       run.GetName(),
		RunNumber:  run.GetRunNumber(),
		Status:     run.GetStatus(),
		Conclusion: run.GetConclusion(),
		StartedAt:  run.GetRunStartedAt().Time,
		UpdatedAt:  run.GetUpdatedAt().Time,
	}, nil
}

// ListJobs implements Client. Pages are fetched sequentially until the API
// reports no next page.
func (c *DefaultClient) ListJobs(ctx context.Context, repo Repo, runID int64) ([]Job, error) {
	opts := &github.ListWorkflowJobsOptions{
		Filter:      "latest",
		ListOptions: github.ListOptions{PerPage: jobsPerPage},
	}

	var jobs []Job
	for {
		page, resp, err := c.actions.ListWorkflowJobs(ctx, repo.Owner, repo.Name, runID, opts)
		if err != nil {
			return nil, fmt.Errorf("list jobs for run %d in %s: %w", runID, repo, notFound(resp, err))
		}
		for _, j := range page.Jobs {
			jobs = append(jobs, Job{
				Name:        j.GetName(),
				Status:      j.GetStatus(),
				Conclusion:  j.GetConclusion(),
				Labels:      j.Labels,
				StartedAt:   j.GetStartedAt().Time,
				CompletedAt: j.GetCompletedAt().Time,
			})
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	level.Debug(c.logger).Log("msg", "listed jobs", "repo", repo, "run_id", runID, "count", len(jobs))
	return jobs, nil
}

// GetFile implements Client.
func (c *DefaultClient) GetFile(ctx context.Context, repo Repo, path string) ([]byte, error) {
	file, _, resp, err := c.repos.GetContents(ctx, repo.Owner, repo.Name, path, nil)
	if err != nil {
		return nil, fmt.Errorf("get %s from %s: %w", path, repo, notFound(resp, err))
	}
	if file == nil {
		return nil, fmt.Errorf("get %s from %s: path is a directory", path, repo)
	}
	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decode %s from %s: %w", path, repo, err)
	}
	return []byte(content), nil
}

// notFound maps a 404 response onto ErrNotFound and leaves other errors
// untouched.
func notFound(resp *github.Response, err error) error {
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
