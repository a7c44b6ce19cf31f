package githubapi

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-github/v66/github"
)

// ── fakes ────────────────────────────────────────────────────────────────────

type fakeActions struct {
	run    *github.WorkflowRun
	runErr error

	// pages maps a page number (0 for the first request) to its jobs.
	pages    map[int][]*github.WorkflowJob
	lastPage int
	pageReqs []int
	perPage  int
}

func (f *fakeActions) GetWorkflowRunByID(_ context.Context, _, _ string, _ int64) (*github.WorkflowRun, *github.Response, error) {
	if f.runErr != nil {
		return nil, &github.Response{Response: &http.Response{StatusCode: http.StatusNotFound}}, f.runErr
	}
	return f.run, &github.Response{Response: &http.Response{StatusCode: http.StatusOK}}, nil
}

func (f *fakeActions) ListWorkflowJobs(_ context.Context, _, _ string, _ int64, opts *github.ListWorkflowJobsOptions) (*github.Jobs, *github.Response, error) {
	f.pageReqs = append(f.pageReqs, opts.Page)
	f.perPage = opts.PerPage
	resp := &github.Response{Response: &http.Response{StatusCode: http.StatusOK}}
	page := opts.Page
	if page == 0 {
		page = 1
	}
	if page < f.lastPage {
		resp.NextPage = page + 1
	}
	return &github.Jobs{Jobs: f.pages[page]}, resp, nil
}

type fakeRepos struct {
	content *github.RepositoryContent
	status  int
}

func (f *fakeRepos) GetContents(_ context.Context, _, _, _ string, _ *github.RepositoryContentGetOptions) (*github.RepositoryContent, []*github.RepositoryContent, *github.Response, error) {
	if f.status != 0 {
		resp := &github.Response{Response: &http.Response{StatusCode: f.status}}
		return nil, nil, resp, &github.ErrorResponse{Response: resp.Response, Message: "Not Found"}
	}
	return f.content, nil, &github.Response{Response: &http.Response{StatusCode: http.StatusOK}}, nil
}

func ts(s string) *github.Timestamp {
	t, _ := time.Parse(time.RFC3339, s)
	return &github.Timestamp{Time: t}
}

var repo = Repo{Owner: "acme", Name: "widgets"}

// ── tests ────────────────────────────────────────────────────────────────────

func TestParseRepo(t *testing.T) {
	r, err := ParseRepo("acme/widgets")
	if err != nil || r != repo {
		t.Fatalf("ParseRepo = %+v, %v", r, err)
	}
	for _, bad := range []string{"", "acme", "acme/", "/widgets", "a/b/c"} {
		if _, err := ParseRepo(bad); err == nil {
			t.Errorf("ParseRepo(%q): expected error", bad)
		}
	}
}

func TestNewDefaultClient_RequiresToken(t *testing.T) {
	if _, err := NewDefaultClient(Options{}); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
	if _, err := NewDefaultClient(Options{Token: "t", BaseURL: "https://github.example.com/api/v3/"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGetWorkflowRun(t *testing.T) {
	actions := &fakeActions{run: &github.WorkflowRun{
		ID:           github.Int64(42),
		Name:         github.String("CI"),
		RunNumber:    github.Int(7),
		Status:       github.String("completed"),
		Conclusion:   github.String("success"),
		RunStartedAt: ts("2025-12-26T21:10:31Z"),
		UpdatedAt:    ts("2025-12-26T21:20:31Z"),
	}}
	c := NewDefaultClientWithServices(actions, &fakeRepos{}, nil)

	run, err := c.GetWorkflowRun(context.Background(), repo, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Name != "CI" || run.RunNumber != 7 || run.Conclusion != "success" {
		t.Errorf("run = %+v", run)
	}
	if got := run.UpdatedAt.Sub(run.StartedAt); got != 10*time.Minute {
		t.Errorf("run duration = %v; want 10m", got)
	}
}

func TestGetWorkflowRun_NotFound(t *testing.T) {
	c := NewDefaultClientWithServices(&fakeActions{runErr: errors.New("404 Not Found")}, &fakeRepos{}, nil)
	_, err := c.GetWorkflowRun(context.Background(), repo, 1)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListJobs_FollowsPages(t *testing.T) {
	actions := &fakeActions{
		lastPage: 3,
		pages: map[int][]*github.WorkflowJob{
			1: {{Name: github.String("build"), Labels: []string{"ubuntu-latest"}, StartedAt: ts("2025-12-26T21:10:31Z")}},
			2: {{Name: github.String("test")}},
			3: {{Name: github.String("deploy"), Status: github.String("queued")}},
		},
	}
	c := NewDefaultClientWithServices(actions, &fakeRepos{}, nil)

	jobs, err := c.ListJobs(context.Background(), repo, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 3 || jobs[0].Name != "build" || jobs[2].Status != "queued" {
		t.Fatalf("jobs = %+v", jobs)
	}
	if jobs[0].StartedAt.IsZero() || !jobs[1].StartedAt.IsZero() {
		t.Errorf("start times not carried over: %+v", jobs[:2])
	}
	if len(actions.pageReqs) != 3 || actions.pageReqs[1] != 2 || actions.pageReqs[2] != 3 {
		t.Errorf("page requests = %v; want [0 2 3]", actions.pageReqs)
	}
	if actions.perPage != jobsPerPage {
		t.Errorf("per page = %d; want %d", actions.perPage, jobsPerPage)
	}
}

func TestGetFile(t *testing.T) {
	body := "runners:\n  default:\n    family: [m7]\n"
	repos := &fakeRepos{content: &github.RepositoryContent{
		Encoding: github.String("base64"),
		Content:  github.String(base64.StdEncoding.EncodeToString([]byte(body))),
	}}
	c := NewDefaultClientWithServices(&fakeActions{}, repos, nil)

	got, err := c.GetFile(context.Background(), repo, ".github/runs-on.yml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != body {
		t.Errorf("content = %q; want %q", got, body)
	}
}

func TestGetFile_NotFound(t *testing.T) {
	c := NewDefaultClientWithServices(&fakeActions{}, &fakeRepos{status: http.StatusNotFound}, nil)
	_, err := c.GetFile(context.Background(), repo, ".github/runs-on.yml")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetFile_OtherErrorsPassThrough(t *testing.T) {
	c := NewDefaultClientWithServices(&fakeActions{}, &fakeRepos{status: http.StatusForbidden}, nil)
	_, err := c.GetFile(context.Background(), repo, ".github/runs-on.yml")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected a non-404 error, got %v", err)
	}
}
