package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUploader records upload invocations.
type fakeUploader struct {
	dirs []string
	err  error
}

func (f *fakeUploader) UploadDir(ctx context.Context, dir string) error {
	f.dirs = append(f.dirs, dir)
	return f.err
}

type fakeMirror struct {
	dirs []string
}

func (f *fakeMirror) MirrorDir(ctx context.Context, dir string) error {
	f.dirs = append(f.dirs, dir)
	return nil
}

func newRelease(t *testing.T, version string) (*Release, *fakeRunner, *fakeUploader) {
	t.Helper()
	runner := &fakeRunner{}
	runner.onRun = func(i int, c recordedCall) error {
		if isGoBuild(c) {
			touchBuildOutput(t, c)
		}
		return nil
	}
	uploader := &fakeUploader{}
	return &Release{
		Root: t.TempDir(),
		Config: &ReleaseConfig{
			Version:    version,
			IndexURL:   DefaultIndexURL,
			Username:   "releasebot",
			Password:   "hunter2",
			HandoffDir: t.TempDir(),
		},
		Runner: runner,
		Index:  uploader,
	}, runner, uploader
}

func TestReleaseHappyPath(t *testing.T) {
	r, runner, uploader := newRelease(t, "1.2.3")
	require.NoError(t, r.Run(context.Background()))

	// Version file regenerated from CODE_VERSION.
	data, err := os.ReadFile(filepath.Join(r.Root, VersionFilePath))
	require.NoError(t, err)
	assert.Contains(t, string(data), `const Version = "1.2.3"`)

	// One hermetic build per release target.
	var builds []recordedCall
	for _, c := range runner.calls {
		if isGoBuild(c) {
			builds = append(builds, c)
			assert.Equal(t, "0", c.opts.Env["CGO_ENABLED"], "release builds must disable cgo")
			assert.NotEmpty(t, c.opts.Env["GOOS"])
			assert.NotEmpty(t, c.opts.Env["GOARCH"])
		}
	}
	assert.Len(t, builds, len(releaseTargets))

	// Packaged archives plus the checksum manifest.
	dist := filepath.Join(r.Root, DistDir)
	assert.FileExists(t, filepath.Join(dist, "fedlogin_1.2.3_linux_amd64.tar.gz"))
	assert.FileExists(t, filepath.Join(dist, "fedlogin_1.2.3_linux_arm64.tar.gz"))
	assert.FileExists(t, filepath.Join(dist, "fedlogin_1.2.3_darwin_amd64.tar.gz"))
	assert.FileExists(t, filepath.Join(dist, "fedlogin_1.2.3_darwin_arm64.tar.gz"))
	assert.FileExists(t, filepath.Join(dist, "fedlogin_1.2.3_windows_amd64.zip"))
	assert.FileExists(t, filepath.Join(dist, ChecksumsName))

	// Handoff received a verbatim copy.
	assert.FileExists(t, filepath.Join(r.Config.HandoffDir, "fedlogin_1.2.3_linux_amd64.tar.gz"))
	assert.FileExists(t, filepath.Join(r.Config.HandoffDir, ChecksumsName))
	// The build staging dir must not leak into the handoff.
	assert.NoDirExists(t, filepath.Join(r.Config.HandoffDir, ".build"))

	// Upload ran against the dist dir.
	require.Len(t, uploader.dirs, 1)
	assert.Equal(t, dist, uploader.dirs[0])
}

func TestReleaseVersionFileWrittenBeforeBuild(t *testing.T) {
	r, runner, _ := newRelease(t, "3.1.4")
	runner.onRun = func(i int, c recordedCall) error {
		if isGoBuild(c) {
			data, err := os.ReadFile(filepath.Join(r.Root, VersionFilePath))
			if err != nil {
				t.Errorf("build ran before version file write: %v", err)
			} else {
				assert.Contains(t, string(data), `const Version = "3.1.4"`)
			}
			touchBuildOutput(t, c)
		}
		return nil
	}
	require.NoError(t, r.Run(context.Background()))
}

func TestReleaseBuildFailureAbortsBeforeUpload(t *testing.T) {
	r, runner, uploader := newRelease(t, "1.2.3")
	buildErr := errors.New("compile error")
	runner.onRun = func(i int, c recordedCall) error {
		return buildErr
	}

	err := r.Run(context.Background())
	require.ErrorIs(t, err, buildErr)
	assert.Empty(t, uploader.dirs, "upload must not run after a failed build")
	assert.NoFileExists(t, filepath.Join(r.Config.HandoffDir, ChecksumsName))
}

func TestReleaseUploadFailurePropagates(t *testing.T) {
	r, _, uploader := newRelease(t, "1.2.3")
	uploader.err = errors.New("index unreachable")

	err := r.Run(context.Background())
	require.ErrorIs(t, err, uploader.err)
}

func TestReleaseMirrorStepOptional(t *testing.T) {
	r, _, _ := newRelease(t, "1.2.3")
	mirror := &fakeMirror{}
	r.S3 = mirror

	require.NoError(t, r.Run(context.Background()))
	require.Len(t, mirror.dirs, 1)
	assert.Equal(t, filepath.Join(r.Root, DistDir), mirror.dirs[0])
}
