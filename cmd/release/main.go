// Command release is the runner-invoked release orchestrator. Invoked with
// no arguments, it validates its environment (CODE_VERSION exported by the
// runner from release.yaml, TWINE_USERNAME/TWINE_PASSWORD for the artifact
// index), regenerates the version file, cross-compiles and packages release
// artifacts, copies them to the handoff directory, and uploads them with
// skip-existing semantics so re-running a release is safe.
package main

import (
	"context"
	"os"
	"path"

	"github.com/fedlogin/fedlogin/internal/log"
	"github.com/fedlogin/fedlogin/internal/pipeline"
	"github.com/fedlogin/fedlogin/internal/publish"
	"github.com/fedlogin/fedlogin/internal/ui"
)

func main() {
	log.Init(log.Options{})
	ctx := context.Background()

	cfg, err := pipeline.ReleaseConfigFromEnv(nil)
	if err != nil {
		ui.Error(err.Error())
		os.Exit(1)
	}

	root, err := os.Getwd()
	if err != nil {
		ui.Errorf("resolving working directory: %v", err)
		os.Exit(1)
	}

	r := &pipeline.Release{
		Root:   root,
		Config: cfg,
		Index: &publish.IndexClient{
			BaseURL:  cfg.IndexURL,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	}

	if cfg.S3Bucket != "" {
		mirror, err := publish.NewS3Mirror(ctx, cfg.S3Bucket, path.Join(pipeline.BinaryName, cfg.Version))
		if err != nil {
			ui.Error(err.Error())
			os.Exit(1)
		}
		r.S3 = mirror
	}

	if err := r.Run(ctx); err != nil {
		ui.Error(err.Error())
		os.Exit(1)
	}

	ui.Infof("%s released %s %s", ui.OKTag(), pipeline.BinaryName, cfg.Version)
}
