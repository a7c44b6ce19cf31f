package models

import "time"

// RunnerKind identifies how a job's runner was provisioned.
type RunnerKind string

const (
	RunnerKindRunsOn       RunnerKind = "runs-on"
	RunnerKindGitHubHosted RunnerKind = "github-hosted"
	RunnerKindUnknown      RunnerKind = "unknown"
)

// JobEstimate is the cost estimate for a single workflow job.
type JobEstimate struct {
	Name       string        `json:"name"`
	Status     string        `json:"status"`
	Duration   time.Duration `json:"duration_ns"`
	InProgress bool          `json:"in_progress"`
	Started    bool          `json:"started"`

	RunnerKind RunnerKind `json:"runner_kind"`

	// Runner is the display name: a runner name, "name*" when inline labels
	// override it, a formatted inline spec, or a GitHub-hosted label.
	Runner string `json:"runner"`

	// Priced is false when no pricing data could be found for the runner.
	Priced    bool    `json:"priced"`
	CostLower float64 `json:"cost_lower_usd"`
	CostUpper float64 `json:"cost_upper_usd"`

	// Detail explains how the cost was derived, e.g. "spot, m7i.large @ $0.10/hr".
	Detail string `json:"detail,omitempty"`
}

// RunEstimate is the cost estimate for one workflow run.
type RunEstimate struct {
	Repo         string        `json:"repo"`
	RunID        int64         `json:"run_id"`
	WorkflowName string        `json:"workflow_name"`
	RunNumber    int           `json:"run_number"`
	Status       string        `json:"status"`
	Duration     time.Duration `json:"duration_ns"`
	Jobs         []JobEstimate `json:"jobs"`

	// TotalLower sums spot-priced runs-on jobs and GitHub-hosted jobs.
	TotalLower float64 `json:"total_lower_usd"`

	// TotalUpper sums on-demand fallback prices and GitHub-hosted jobs.
	TotalUpper float64 `json:"total_upper_usd"`
}
