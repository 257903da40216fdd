// Package gitmeta derives build metadata from the build context repository.
package gitmeta

import (
	"github.com/go-git/go-git/v5"
)

// DefaultTagFallback is used when the build context is not a git repository
// or HEAD cannot be resolved.
const DefaultTagFallback = "latest"

// shortHashLen matches the conventional abbreviated commit length.
const shortHashLen = 7

// DefaultTag resolves the image tag for a build context: the abbreviated
// HEAD commit hash, or "latest" outside a repository. Resolution failures
// are not errors; an untagged deploy is still a valid deploy.
func DefaultTag(contextDir string) string {
	repo, err := git.PlainOpenWithOptions(contextDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return DefaultTagFallback
	}
	head, err := repo.Head()
	if err != nil {
		return DefaultTagFallback
	}
	return head.Hash().String()[:shortHashLen]
}
