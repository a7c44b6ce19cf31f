package main

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/go-kit/log"

	"github.com/pankaj-dahiya-devops/runson/internal/config"
	"github.com/pankaj-dahiya-devops/runson/internal/engine"
	"github.com/pankaj-dahiya-devops/runson/internal/githubapi"
	"github.com/pankaj-dahiya-devops/runson/internal/models"
)

const estimateRunners = `runners:
  m7-4cpu:
    family: ["m7"]
    cpu: 4
`

func minutesAfter(start time.Time, m int) time.Time {
	return start.Add(time.Duration(m) * time.Minute)
}

func estimateGitHub() *fakeGitHub {
	start := testNow.Add(-time.Hour)
	return &fakeGitHub{
		run: &githubapi.WorkflowRun{
			ID: 42, Name: "CI", RunNumber: 12, Status: "completed", Conclusion: "success",
			StartedAt: start, UpdatedAt: minutesAfter(start, 45),
		},
		jobs: []githubapi.Job{
			{Name: "build", Conclusion: "success", Labels: []string{"runs-on=42/runner=m7-4cpu"},
				StartedAt: start, CompletedAt: minutesAfter(start, 30)},
			{Name: "lint", Conclusion: "success", Labels: []string{"ubuntu-latest"},
				StartedAt: start, CompletedAt: minutesAfter(start, 10)},
		},
		files: map[string][]byte{
			"acme/widgets/.github/runs-on.yml": []byte(estimateRunners),
		},
	}
}

func withGitHub(a *app, gh githubapi.Client) *app {
	a.newGitHub = func(config.GitHubConfig, log.Logger) (githubapi.Client, error) { return gh, nil }
	return a
}

func decodeEstimate(t *testing.T, out string) models.RunEstimate {
	t.Helper()
	var est models.RunEstimate
	if err := json.Unmarshal([]byte(out), &est); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	return est
}

// ── run URL with remote config ───────────────────────────────────────────────

func TestEstimate_RunURLUsesRemoteConfig(t *testing.T) {
	gh := estimateGitHub()
	a := withGitHub(testApp(t), gh)

	out, errOut, err := execute(t, a, "estimate", "https://github.com/acme/widgets/actions/runs/42",
		"--prices", writeSamplePrices(t), "--format", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gh.gotRepo.String() != "acme/widgets" || gh.gotRun != 42 {
		t.Errorf("fetched %s#%d; want acme/widgets#42", gh.gotRepo, gh.gotRun)
	}
	if !strings.Contains(errOut, "Using runner config: acme/widgets:.github/runs-on.yml (1 runners)") {
		t.Errorf("stderr = %q", errOut)
	}

	est := decodeEstimate(t, out)
	if len(est.Jobs) != 2 || est.Jobs[0].Runner != "m7-4cpu" || !est.Jobs[0].Priced {
		t.Fatalf("jobs = %+v", est.Jobs)
	}
	// m7 with 4 vCPUs: m7g.xlarge $0.163 .. m7a.xlarge $0.204 for 30 minutes,
	// plus 10 minutes of ubuntu-latest at $0.008.
	if math.Abs(est.TotalLower-(0.163/2+0.08)) > 1e-9 || math.Abs(est.TotalUpper-(0.204/2+0.08)) > 1e-9 {
		t.Errorf("totals = %v..%v", est.TotalLower, est.TotalUpper)
	}
}

func TestEstimate_NoFetchUsesLocalConfig(t *testing.T) {
	gh := estimateGitHub()
	gh.files = nil
	a := withGitHub(testApp(t), gh)
	local := writeRunnerConfig(t, a.workDir, estimateRunners)

	_, errOut, err := execute(t, a, "estimate", "https://github.com/acme/widgets/actions/runs/42",
		"--no-fetch-config", "--prices", writeSamplePrices(t), "--format", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(errOut, "Using runner config: "+local) {
		t.Errorf("stderr = %q; want local config %s", errOut, local)
	}
}

// ── bare run ID ──────────────────────────────────────────────────────────────

func TestEstimate_BareRunIDTable(t *testing.T) {
	gh := estimateGitHub()
	a := withGitHub(testApp(t), gh)

	out, errOut, err := execute(t, a, "estimate", "42", "--prices", writeSamplePrices(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gh.gotRepo.String() != "acme/widgets" {
		t.Errorf("repo = %s; want origin repository", gh.gotRepo)
	}
	if !strings.Contains(errOut, "No runner config found") {
		t.Errorf("stderr = %q", errOut)
	}
	for _, want := range []string{"CI (#12)", "Status: success", "TOTAL COST ESTIMATE", "build", "lint"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("non-terminal output must not be coloured")
	}
}

func TestEstimate_ExplicitConfig(t *testing.T) {
	gh := estimateGitHub()
	a := withGitHub(testApp(t), gh)
	path := writeRunnerConfig(t, t.TempDir(), estimateRunners)

	_, errOut, err := execute(t, a, "estimate", "https://github.com/acme/widgets/actions/runs/42", "-c", path,
		"--prices", writeSamplePrices(t), "--format", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(errOut, "Using runner config: "+path+" (1 runners)") {
		t.Errorf("stderr = %q; want explicit config to win over the remote one", errOut)
	}
}

// ── errors ───────────────────────────────────────────────────────────────────

func TestEstimate_Errors(t *testing.T) {
	t.Run("invalid run", func(t *testing.T) {
		_, _, err := execute(t, testApp(t), "estimate", "not-a-run")
		if !errors.Is(err, engine.ErrInvalidRunRef) {
			t.Errorf("error = %v; want ErrInvalidRunRef", err)
		}
	})
	t.Run("bad format", func(t *testing.T) {
		_, _, err := execute(t, testApp(t), "estimate", "42", "--format", "xml")
		if err == nil || !strings.Contains(err.Error(), "unknown format") {
			t.Errorf("error = %v", err)
		}
	})
	t.Run("no token", func(t *testing.T) {
		a := testApp(t)
		a.newGitHub = func(config.GitHubConfig, log.Logger) (githubapi.Client, error) {
			return nil, githubapi.ErrNoToken
		}
		_, _, err := execute(t, a, "estimate", "42")
		if !errors.Is(err, githubapi.ErrNoToken) {
			t.Errorf("error = %v; want ErrNoToken", err)
		}
	})
	t.Run("missing argument", func(t *testing.T) {
		if _, _, err := execute(t, testApp(t), "estimate"); err == nil {
			t.Error("expected an argument error")
		}
	})
}
