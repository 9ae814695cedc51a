// Package executor runs external commands for the build and release
// pipelines. Commands block until completion; a non-zero exit surfaces as an
// error carrying the captured stderr so the caller can abort immediately.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Result holds the output of a completed command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes external commands. The pipeline depends on this interface
// so tests can script step outcomes without spawning processes.
type Runner interface {
	Run(ctx context.Context, program string, args []string, opts ...Option) (*Result, error)
}

// Options configures a single command invocation.
type Options struct {
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env holds variables appended to the current environment.
	Env map[string]string
	// Quiet suppresses streaming of the command's output to the console.
	Quiet bool
	// Stdout and Stderr receive the command's output in addition to the
	// captured buffers (for advanced use; nil means the process streams).
	Stdout io.Writer
	Stderr io.Writer
}

// Option mutates Options.
type Option func(*Options)

// WithDir sets the working directory.
func WithDir(dir string) Option {
	return func(o *Options) { o.Dir = dir }
}

// WithEnv appends environment variables to the invocation.
func WithEnv(env map[string]string) Option {
	return func(o *Options) {
		if o.Env == nil {
			o.Env = make(map[string]string, len(env))
		}
		for k, v := range env {
			o.Env[k] = v
		}
	}
}

// WithEnvVar appends a single environment variable.
func WithEnvVar(key, value string) Option {
	return func(o *Options) {
		if o.Env == nil {
			o.Env = make(map[string]string, 1)
		}
		o.Env[key] = value
	}
}

// Quiet suppresses console streaming; output is still captured.
func Quiet() Option {
	return func(o *Options) { o.Quiet = true }
}

// Local runs commands on the local machine.
type Local struct{}

var _ Runner = Local{}

// Run executes program with args and blocks until it exits. The returned
// error wraps the exit status; Result is non-nil whenever the process ran.
func (Local) Run(ctx context.Context, program string, args []string, opts ...Option) (*Result, error) {
	var options Options
	for _, opt := range opts {
		opt(&options)
	}

	cmd := exec.CommandContext(ctx, program, args...)
	if options.Dir != "" {
		cmd.Dir = options.Dir
	}
	if len(options.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range options.Env {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
		}
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	stdout := []io.Writer{&stdoutBuf}
	stderr := []io.Writer{&stderrBuf}
	if !options.Quiet {
		stdout = append(stdout, os.Stdout)
		stderr = append(stderr, os.Stderr)
	}
	if options.Stdout != nil {
		stdout = append(stdout, options.Stdout)
	}
	if options.Stderr != nil {
		stderr = append(stderr, options.Stderr)
	}
	cmd.Stdout = io.MultiWriter(stdout...)
	cmd.Stderr = io.MultiWriter(stderr...)

	err := cmd.Run()

	result := &Result{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return result, nil
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		result.ExitCode = -1
	}

	detail := strings.TrimSpace(stderrBuf.String())
	if detail != "" {
		return result, fmt.Errorf("%s %s: %w: %s", program, strings.Join(args, " "), err, detail)
	}
	return result, fmt.Errorf("%s %s: %w", program, strings.Join(args, " "), err)
}
