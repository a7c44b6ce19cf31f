package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pankaj-dahiya-devops/runson/internal/models"
)

const ruleWidth = 80

// colorStatus colours a run or job status.
func colorStatus(p Palette, status string) string {
	switch status {
	case "success":
		return p.Green(status)
	case "failure":
		return p.Red(status)
	case "in_progress":
		return p.Yellow(status)
	default:
		return status
	}
}

func statusIcon(p Palette, status string) string {
	switch status {
	case "success":
		return p.Green("✓")
	case "failure":
		return p.Red("✗")
	case "in_progress":
		return p.Yellow("●")
	case "queued":
		return p.Dim("○")
	default:
		return p.Dim("?")
	}
}

// jobDuration renders "-" for jobs that never started and a trailing "+"
// for jobs still running.
func jobDuration(j models.JobEstimate) string {
	switch {
	case !j.Started:
		return "-"
	case j.InProgress:
		return FormatDuration(j.Duration) + "+"
	default:
		return FormatDuration(j.Duration)
	}
}

// RenderEstimate writes a human-readable cost breakdown of a run.
func RenderEstimate(w io.Writer, est *models.RunEstimate, p Palette) {
	rule := p.Bold(strings.Repeat("━", ruleWidth))

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  %s %s\n", p.Bold(est.WorkflowName), p.Dim(fmt.Sprintf("(#%d)", est.RunNumber)))
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  Status: %s\n", colorStatus(p, est.Status))
	if est.Duration > 0 {
		fmt.Fprintf(w, "  Duration: %s\n", FormatDuration(est.Duration))
	}

	fmt.Fprintf(w, "\n%s\n", p.Cyan("Jobs:"))
	for _, j := range est.Jobs {
		var runner, cost string
		switch {
		case j.RunnerKind == models.RunnerKindRunsOn && j.Priced:
			runner, cost = p.Cyan(pad(j.Runner, 25)), fmt.Sprintf("$%.3f", j.CostLower)
		case j.RunnerKind == models.RunnerKindRunsOn:
			runner, cost = p.Yellow(pad(j.Runner, 25)), "?"
		case j.RunnerKind == models.RunnerKindGitHubHosted:
			runner, cost = p.Dim(pad(j.Runner, 25)), fmt.Sprintf("$%.3f", j.CostLower)
		default:
			runner, cost = p.Dim(pad(j.Runner, 25)), "-"
		}

		line := fmt.Sprintf("  %s %s %s  %s ",
			statusIcon(p, j.Status),
			pad(Shorten(j.Name, 40), 40),
			pad(jobDuration(j), -10),
			runner,
		)
		if j.Detail != "" {
			line += p.Green(pad(cost, -8)) + " " + p.Dim("("+j.Detail+")")
		} else {
			line += pad(cost, -8)
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  %s\n", p.Bold("TOTAL COST ESTIMATE"))
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "\n  %s %s\n", p.Bold(p.Green(fmt.Sprintf("$%.2f", est.TotalLower))), p.Dim("(spot pricing)"))
	if est.TotalLower != est.TotalUpper {
		fmt.Fprintf(w, "  %s\n", p.Dim(fmt.Sprintf("$%.2f (on-demand fallback)", est.TotalUpper)))
	}
	fmt.Fprintln(w)
}

// RenderEstimateJSON writes est as indented JSON.
func RenderEstimateJSON(w io.Writer, est *models.RunEstimate) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(est)
}
