package engine

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pankaj-dahiya-devops/runson/internal/githubapi"
)

// ErrInvalidRunRef is returned for a run reference that is neither a run URL
// nor a numeric run ID.
var ErrInvalidRunRef = errors.New("invalid workflow run URL or ID")

// RunRef identifies a workflow run.
type RunRef struct {
	Repo  githubapi.Repo
	RunID int64

	// Remote is true when the run was given as a full URL rather than a bare
	// ID resolved against the local repository.
	Remote bool
}

// String renders r as "owner/name#id".
func (r RunRef) String() string {
	return fmt.Sprintf("%s#%d", r.Repo, r.RunID)
}

var runURLPattern = regexp.MustCompile(`^(?:https?://)?[^/]+/([^/]+)/([^/]+)/actions/runs/(\d+)`)

// ParseRunRef parses a run URL such as
// https://github.com/owner/repo/actions/runs/123 or a bare run ID. A bare ID
// is resolved against the repository of the working copy at dir via resolve.
func ParseRunRef(ctx context.Context, s string, dir string, resolve githubapi.RemoteResolver) (RunRef, error) {
	s = strings.TrimSpace(s)

	if isDigits(s) {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return RunRef{}, fmt.Errorf("%w: %s", ErrInvalidRunRef, s)
		}
		if resolve == nil {
			resolve = githubapi.OriginRepo
		}
		repo, err := resolve(ctx, dir)
		if err != nil {
			return RunRef{}, err
		}
		return RunRef{Repo: repo, RunID: id}, nil
	}

	m := runURLPattern.FindStringSubmatch(s)
	if m == nil {
		return RunRef{}, fmt.Errorf("%w: %s", ErrInvalidRunRef, s)
	}
	id, err := strconv.ParseInt(m[3], 10, 64)
	if err != nil {
		return RunRef{}, fmt.Errorf("%w: %s", ErrInvalidRunRef, s)
	}
	return RunRef{
		Repo:   githubapi.Repo{Owner: m[1], Name: m[2]},
		RunID:  id,
		Remote: true,
	}, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
