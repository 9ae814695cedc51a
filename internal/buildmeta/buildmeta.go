// Package buildmeta resolves commit and timestamp metadata for a build from
// the working tree, for injection into the binary via -ldflags.
package buildmeta

import (
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
)

const shortCommitLen = 7

// versionPkg is the import path holding the ldflags-injected variables.
const versionPkg = "github.com/fedlogin/fedlogin/internal/version"

// Meta holds the build metadata baked into released binaries.
type Meta struct {
	Commit string
	Date   string
}

// Resolve returns the short HEAD commit of the repository containing root
// and the current UTC timestamp. Outside a repository, or on any git error,
// the commit is "none": builds from exported tarballs are still valid.
func Resolve(root string) Meta {
	m := Meta{
		Commit: "none",
		Date:   time.Now().UTC().Format(time.RFC3339),
	}

	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return m
	}
	head, err := repo.Head()
	if err != nil {
		return m
	}

	hash := head.Hash().String()
	if len(hash) > shortCommitLen {
		hash = hash[:shortCommitLen]
	}
	m.Commit = hash
	return m
}

// LDFlags renders the -ldflags value wiring commit and date into the
// version package.
func (m Meta) LDFlags() string {
	return fmt.Sprintf("-X %s.commit=%s -X %s.date=%s", versionPkg, m.Commit, versionPkg, m.Date)
}
