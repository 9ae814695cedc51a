package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/fedlogin/fedlogin/internal/buildmeta"
	"github.com/fedlogin/fedlogin/internal/executor"
	"github.com/fedlogin/fedlogin/internal/manifest"
)

// LocalBuild is the developer-run orchestrator: it refreshes the dependency
// lock, regenerates the version file from release.yaml, builds a
// host-platform artifact, and installs it into the local environment.
type LocalBuild struct {
	// Root is the repository working tree.
	Root string
	// Runner executes subprocess steps; nil means the local machine.
	Runner executor.Runner
	// BinDir is the install destination; empty resolves GOBIN then
	// $GOPATH/bin, matching where go install would put the tool.
	BinDir string

	version string
	meta    buildmeta.Meta
}

// Version returns the version extracted from the manifest, once Run has
// passed the extraction step.
func (b *LocalBuild) Version() string {
	return b.version
}

// Run executes the local build sequence, aborting on the first failure.
func (b *LocalBuild) Run(ctx context.Context) error {
	if b.Runner == nil {
		b.Runner = executor.Local{}
	}
	return runSteps(ctx, []step{
		{"refresh dependency lock", b.refreshLock},
		{"read version from manifest", b.readVersion},
		{"write version file", b.writeVersion},
		{"sync dependencies", b.syncDeps},
		{"build artifact", b.build},
		{"install", b.install},
	})
}

func (b *LocalBuild) refreshLock(ctx context.Context) error {
	_, err := b.Runner.Run(ctx, "go", []string{"mod", "tidy"}, executor.WithDir(b.Root))
	return err
}

func (b *LocalBuild) readVersion(ctx context.Context) error {
	v, err := manifest.Load(filepath.Join(b.Root, manifest.DefaultPath))
	if err != nil {
		return err
	}
	b.version = v
	b.meta = buildmeta.Resolve(b.Root)
	return nil
}

func (b *LocalBuild) writeVersion(ctx context.Context) error {
	return WriteVersionFile(filepath.Join(b.Root, VersionFilePath), b.version)
}

func (b *LocalBuild) syncDeps(ctx context.Context) error {
	_, err := b.Runner.Run(ctx, "go", []string{"mod", "download"}, executor.WithDir(b.Root))
	return err
}

// artifactName is the versioned host-platform artifact filename.
func (b *LocalBuild) artifactName() string {
	name := fmt.Sprintf("%s_%s", BinaryName, b.version)
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return name
}

func (b *LocalBuild) build(ctx context.Context) error {
	out := filepath.Join(DistDir, b.artifactName())
	_, err := b.Runner.Run(ctx, "go",
		[]string{"build", "-trimpath", "-ldflags", b.meta.LDFlags(), "-o", out, mainPackage},
		executor.WithDir(b.Root))
	return err
}

// install copies the just-built artifact, located by its versioned name,
// over any prior install of the tool.
func (b *LocalBuild) install(ctx context.Context) error {
	src := filepath.Join(b.Root, DistDir, b.artifactName())
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("built artifact not found: %w", err)
	}

	binDir := b.BinDir
	if binDir == "" {
		binDir = goBinDir()
	}
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating install dir %s: %w", binDir, err)
	}

	installed := BinaryName
	if runtime.GOOS == "windows" {
		installed += ".exe"
	}
	return copyFile(src, filepath.Join(binDir, installed), 0o755)
}

// goBinDir mirrors go install's destination resolution: GOBIN, then
// $GOPATH/bin, then ~/go/bin.
func goBinDir() string {
	if gobin := os.Getenv("GOBIN"); gobin != "" {
		return gobin
	}
	if gopath := os.Getenv("GOPATH"); gopath != "" {
		return filepath.Join(gopath, "bin")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "bin")
	}
	return filepath.Join(home, "go", "bin")
}

// copyFile replaces dst with a copy of src at the given mode.
func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying to %s: %w", dst, err)
	}
	return out.Close()
}
