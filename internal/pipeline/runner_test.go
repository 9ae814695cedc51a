package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fedlogin/fedlogin/internal/executor"
)

// recordedCall is one subprocess invocation captured by fakeRunner.
type recordedCall struct {
	program string
	args    []string
	opts    executor.Options
}

func (c recordedCall) String() string {
	return c.program + " " + strings.Join(c.args, " ")
}

// fakeRunner scripts subprocess outcomes so pipeline tests can exercise the
// ordering and abort properties without spawning processes.
type fakeRunner struct {
	calls []recordedCall
	// onRun, when set, is invoked for each call and may fail it.
	onRun func(i int, c recordedCall) error
}

func (f *fakeRunner) Run(ctx context.Context, program string, args []string, opts ...executor.Option) (*executor.Result, error) {
	var o executor.Options
	for _, opt := range opts {
		opt(&o)
	}
	c := recordedCall{program: program, args: args, opts: o}
	f.calls = append(f.calls, c)
	if f.onRun != nil {
		if err := f.onRun(len(f.calls)-1, c); err != nil {
			return &executor.Result{ExitCode: 1}, err
		}
	}
	return &executor.Result{}, nil
}

// touchBuildOutput creates a dummy file at the -o argument of a go build
// invocation, the way the real toolchain would.
func touchBuildOutput(t *testing.T, c recordedCall) {
	t.Helper()
	for i, a := range c.args {
		if a == "-o" && i+1 < len(c.args) {
			out := c.args[i+1]
			if !filepath.IsAbs(out) {
				out = filepath.Join(c.opts.Dir, out)
			}
			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(out, []byte("fake-binary"), 0o755); err != nil {
				t.Fatal(err)
			}
			return
		}
	}
	t.Fatalf("go build call without -o: %v", c)
}

// isGoBuild reports whether the call is a go build invocation.
func isGoBuild(c recordedCall) bool {
	return c.program == "go" && len(c.args) > 0 && c.args[0] == "build"
}
