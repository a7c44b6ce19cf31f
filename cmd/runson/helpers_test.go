package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/go-kit/log"

	"github.com/pankaj-dahiya-devops/runson/internal/catalog"
	"github.com/pankaj-dahiya-devops/runson/internal/config"
	"github.com/pankaj-dahiya-devops/runson/internal/githubapi"
	"github.com/pankaj-dahiya-devops/runson/internal/models"
	"github.com/pankaj-dahiya-devops/runson/internal/models/modelstest"
	"github.com/pankaj-dahiya-devops/runson/internal/providers/aws/common"
	"github.com/pankaj-dahiya-devops/runson/internal/providers/aws/hardware"
)

// ── AWS mock ──────────────────────────────────────────────────────────────────

type mockAWSProvider struct {
	profileResult *common.ProfileConfig
	profileErr    error
	regionsResult []string
	regionsErr    error
	profiles      []string

	lastProfile string
	lastRegion  string
}

func (m *mockAWSProvider) LoadProfile(_ context.Context, profile, region string) (*common.ProfileConfig, error) {
	m.lastProfile, m.lastRegion = profile, region
	return m.profileResult, m.profileErr
}

func (m *mockAWSProvider) ListProfiles() ([]string, error) {
	return m.profiles, nil
}

func (m *mockAWSProvider) GetActiveRegions(_ context.Context, _ *common.ProfileConfig) ([]string, error) {
	return m.regionsResult, m.regionsErr
}

func (m *mockAWSProvider) ConfigForRegion(_ *common.ProfileConfig, region string) aws.Config {
	return aws.Config{Region: region}
}

func goodMockAWS() *mockAWSProvider {
	return &mockAWSProvider{
		profileResult: &common.ProfileConfig{
			ProfileName: "default",
			AccountID:   "123456789012",
			Region:      "us-east-1",
		},
		regionsResult: []string{"eu-west-1", "us-east-1"},
		profiles:      []string{"default", "prod"},
	}
}

// ── hardware collector fake ──────────────────────────────────────────────────

type fakeCollector struct {
	instances []models.Instance
	err       error
	regions   []string
}

func (f *fakeCollector) CollectRegion(_ context.Context, _ aws.Config, region string) ([]models.Instance, error) {
	f.regions = append(f.regions, region)
	return f.instances, f.err
}

func (f *fakeCollector) CollectAll(_ context.Context, _ *common.ProfileConfig, _ common.AWSClientProvider, regions []string) ([]models.Instance, error) {
	f.regions = append(f.regions, regions...)
	return f.instances, f.err
}

// ── GitHub fake ──────────────────────────────────────────────────────────────

type fakeGitHub struct {
	run   *githubapi.WorkflowRun
	jobs  []githubapi.Job
	files map[string][]byte

	gotRepo githubapi.Repo
	gotRun  int64
}

func (f *fakeGitHub) GetWorkflowRun(_ context.Context, repo githubapi.Repo, runID int64) (*githubapi.WorkflowRun, error) {
	f.gotRepo, f.gotRun = repo, runID
	return f.run, nil
}

func (f *fakeGitHub) ListJobs(context.Context, githubapi.Repo, int64) ([]githubapi.Job, error) {
	return f.jobs, nil
}

func (f *fakeGitHub) GetFile(_ context.Context, repo githubapi.Repo, path string) ([]byte, error) {
	data, ok := f.files[repo.String()+"/"+path]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", path, githubapi.ErrNotFound)
	}
	return data, nil
}

// ── app helpers ──────────────────────────────────────────────────────────────

var testNow = time.Date(2025, 12, 26, 22, 0, 0, 0, time.UTC)

// testApp returns an app rooted at a fresh directory with no config file,
// no environment and fake external services.
func testApp(t *testing.T) *app {
	t.Helper()
	return &app{
		configLoader: configAt(filepath.Join(t.TempDir(), "config.yaml"), nil),
		workDir:      t.TempDir(),
		now:          func() time.Time { return testNow },
		newGitHub: func(config.GitHubConfig, log.Logger) (githubapi.Client, error) {
			return &fakeGitHub{}, nil
		},
		resolveRepo: func(context.Context, string) (githubapi.Repo, error) {
			return githubapi.Repo{Owner: "acme", Name: "widgets"}, nil
		},
		awsProvider: goodMockAWS(),
		newCollector: func(log.Logger) hardware.Collector {
			return &fakeCollector{}
		},
	}
}

// configAt returns a config loader reading path with env as the only
// environment.
func configAt(path string, env map[string]string) config.Loader {
	return config.NewDefaultLoaderWithPath(path, func(k string) string { return env[k] })
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, a *app, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmdWithApp(a)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// writeSamplePrices writes the sample instance table as a pricing CSV and
// returns its path.
func writeSamplePrices(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prices.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := catalog.WriteCSV(f, modelstest.SampleInstances()); err != nil {
		t.Fatal(err)
	}
	return path
}

// writeRunnerConfig writes .github/runs-on.yml under dir.
func writeRunnerConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ".github", "runs-on.yml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
