// Package pipeline implements the version-synchronized build and release
// orchestrators. Both are strictly sequential: each step is a hard
// precondition for the next, the first failure aborts the remainder, and
// completed steps are never rolled back. The CODE_VERSION key in
// release.yaml is the single source of truth for the version string; the
// generated version file is rewritten from it before any build step runs.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fedlogin/fedlogin/internal/ui"
)

const (
	// BinaryName is the name of the CLI tool the pipeline builds.
	BinaryName = "fedlogin"

	// mainPackage is the package built into the released binary.
	mainPackage = "./cmd/fedlogin"

	// DistDir is the artifact output directory, relative to the repo root.
	DistDir = "dist"

	// VersionFilePath is the generated version file, relative to the repo
	// root. It is a build artifact that happens to live in the source tree;
	// it is overwritten on every orchestrator run and never hand-edited.
	VersionFilePath = "internal/version/current.go"
)

// step is one stage of an orchestrator run.
type step struct {
	name string
	run  func(ctx context.Context) error
}

// runSteps executes steps in order, aborting on the first error.
func runSteps(ctx context.Context, steps []step) error {
	for i, s := range steps {
		ui.Stepf("%s (%d/%d)", s.name, i+1, len(steps))
		if err := s.run(ctx); err != nil {
			ui.Errorf("%s %s", ui.FailTag(), s.name)
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

// WriteVersionFile overwrites the generated version file with a constant
// declaration for version. The payload is a single assignment line; the
// header and package clause are fixed.
func WriteVersionFile(path, version string) error {
	content := fmt.Sprintf(
		"// Code generated by the build pipeline from release.yaml. DO NOT EDIT.\n\npackage version\n\nconst Version = %q\n",
		version,
	)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating version file directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing version file %s: %w", path, err)
	}
	return nil
}
