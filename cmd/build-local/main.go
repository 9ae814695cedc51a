// Command build-local is the developer-run build orchestrator. Invoked with
// no arguments from the repository root, it refreshes the dependency lock,
// regenerates the version file from release.yaml, builds the fedlogin
// binary, and installs it into the local environment. Each step is a hard
// precondition for the next; the first failure aborts the run.
package main

import (
	"context"
	"os"

	"github.com/fedlogin/fedlogin/internal/log"
	"github.com/fedlogin/fedlogin/internal/pipeline"
	"github.com/fedlogin/fedlogin/internal/ui"
)

func main() {
	log.Init(log.Options{})

	root, err := os.Getwd()
	if err != nil {
		ui.Errorf("resolving working directory: %v", err)
		os.Exit(1)
	}

	b := &pipeline.LocalBuild{Root: root}
	if err := b.Run(context.Background()); err != nil {
		ui.Error(err.Error())
		os.Exit(1)
	}

	ui.Infof("%s %s %s built and installed", ui.OKTag(), pipeline.BinaryName, b.Version())
}
