package githubapi

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// remotePattern extracts owner/name from https and scp-style remotes:
//
//	https://github.com/owner/name.git
//	git@github.com:owner/name.git
//	ssh://git@github.example.com/owner/name
var remotePattern = regexp.MustCompile(`^(?:[a-z+]+://)?(?:[^@/]+@)?[^/:]+(?::\d+)?[:/]([^/]+)/([^/]+?)(?:\.git)?/?$`)

// ParseRemoteURL returns the repository named by a git remote URL.
func ParseRemoteURL(remote string) (Repo, bool) {
	m := remotePattern.FindStringSubmatch(strings.TrimSpace(remote))
	if m == nil {
		return Repo{}, false
	}
	return Repo{Owner: m[1], Name: m[2]}, true
}

// RemoteResolver returns the repository of the working copy at dir.
type RemoteResolver func(ctx context.Context, dir string) (Repo, error)

// OriginRepo resolves the repository from `git remote get-url origin` run in
// dir.
func OriginRepo(ctx context.Context, dir string) (Repo, error) {
	cmd := exec.CommandContext(ctx, "git", "remote", "get-url", "origin")
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return Repo{}, fmt.Errorf("could not determine repository from git remote: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	repo, ok := ParseRemoteURL(string(out))
	if !ok {
		return Repo{}, fmt.Errorf("could not determine repository from git remote %q", strings.TrimSpace(string(out)))
	}
	return repo, nil
}
