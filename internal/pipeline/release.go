package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fedlogin/fedlogin/internal/buildmeta"
	"github.com/fedlogin/fedlogin/internal/executor"
)

// Uploader publishes an artifact directory to the package index.
type Uploader interface {
	UploadDir(ctx context.Context, dir string) error
}

// Mirror copies an artifact directory to a secondary destination.
type Mirror interface {
	MirrorDir(ctx context.Context, dir string) error
}

// target is one platform a release binary is built for.
type target struct {
	goos   string
	goarch string
}

// releaseTargets are the platforms every release ships.
var releaseTargets = []target{
	{"linux", "amd64"},
	{"linux", "arm64"},
	{"darwin", "amd64"},
	{"darwin", "arm64"},
	{"windows", "amd64"},
}

// Release is the runner-invoked orchestrator: it regenerates the version
// file from CODE_VERSION, cross-compiles and packages release artifacts,
// copies them to the handoff directory, and uploads them to the package
// index with skip-existing semantics.
type Release struct {
	// Root is the repository working tree.
	Root string
	// Config is the validated release environment.
	Config *ReleaseConfig
	// Runner executes subprocess steps; nil means the local machine.
	Runner executor.Runner
	// Index publishes artifacts; required.
	Index Uploader
	// S3 mirrors artifacts when non-nil.
	S3 Mirror

	meta buildmeta.Meta
}

// Run executes the release sequence, aborting on the first failure.
// Completed steps are left in place; re-running with the same version is
// safe because the upload step skips artifacts the index already holds.
func (r *Release) Run(ctx context.Context) error {
	if r.Runner == nil {
		r.Runner = executor.Local{}
	}
	r.meta = buildmeta.Resolve(r.Root)

	steps := []step{
		{"write version file", r.writeVersion},
		{"build release artifacts", r.build},
		{"copy artifacts to handoff dir", r.handoff},
		{"upload artifacts to index", r.upload},
	}
	if r.S3 != nil {
		steps = append(steps, step{"mirror artifacts to S3", r.mirror})
	}
	// A release record used to be created against the code-hosting API after
	// the upload step. That integration was retired when publishing moved to
	// the artifact index and stays out deliberately.
	return runSteps(ctx, steps)
}

func (r *Release) writeVersion(ctx context.Context) error {
	return WriteVersionFile(filepath.Join(r.Root, VersionFilePath), r.Config.Version)
}

func (r *Release) distDir() string {
	return filepath.Join(r.Root, DistDir)
}

// build cross-compiles the binary for every release target with a hermetic
// invocation (CGO disabled, trimmed paths) and packages each into a
// platform archive, then writes the checksum manifest.
func (r *Release) build(ctx context.Context) error {
	if err := os.MkdirAll(r.distDir(), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", r.distDir(), err)
	}

	stage := filepath.Join(r.distDir(), ".build")
	defer os.RemoveAll(stage)

	for _, t := range releaseTargets {
		if err := r.buildTarget(ctx, stage, t); err != nil {
			return err
		}
	}
	return writeChecksums(r.distDir())
}

func (r *Release) buildTarget(ctx context.Context, stage string, t target) error {
	binName := BinaryName
	if t.goos == "windows" {
		binName += ".exe"
	}
	binPath := filepath.Join(stage, t.goos+"_"+t.goarch, binName)
	if err := os.MkdirAll(filepath.Dir(binPath), 0o755); err != nil {
		return fmt.Errorf("creating build stage: %w", err)
	}

	_, err := r.Runner.Run(ctx, "go",
		[]string{"build", "-trimpath", "-ldflags", r.meta.LDFlags(), "-o", binPath, mainPackage},
		executor.WithDir(r.Root),
		executor.WithEnv(map[string]string{
			"CGO_ENABLED": "0",
			"GOOS":        t.goos,
			"GOARCH":      t.goarch,
		}))
	if err != nil {
		return fmt.Errorf("building %s/%s: %w", t.goos, t.goarch, err)
	}

	base := fmt.Sprintf("%s_%s_%s_%s", BinaryName, r.Config.Version, t.goos, t.goarch)
	if t.goos == "windows" {
		return writeZip(filepath.Join(r.distDir(), base+".zip"), binPath, binName)
	}
	return writeTarGz(filepath.Join(r.distDir(), base+".tar.gz"), binPath, binName)
}

// handoff copies the artifact directory verbatim to the fixed handoff path
// consumed by the downstream distribution job.
func (r *Release) handoff(ctx context.Context) error {
	return copyTree(r.distDir(), r.Config.HandoffDir)
}

func (r *Release) upload(ctx context.Context) error {
	return r.Index.UploadDir(ctx, r.distDir())
}

func (r *Release) mirror(ctx context.Context) error {
	return r.S3.MirrorDir(ctx, r.distDir())
}

// copyTree copies every regular file under src into dst, preserving
// relative paths. Hidden staging directories are not part of the handoff.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			if rel != "." && d.Name()[0] == '.' {
				return filepath.SkipDir
			}
			return os.MkdirAll(filepath.Join(dst, rel), 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return copyFile(path, filepath.Join(dst, rel), info.Mode().Perm())
	})
}
