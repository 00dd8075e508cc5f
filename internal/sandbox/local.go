package sandbox

import (
	"bytes"
	"context"
	"errors"
	"os/exec"

	"github.com/bobbuildtool/bob/internal/xerr"
)

// LocalExecutor runs a step's script directly on the host with no
// isolation at all. It is the executor for NoSandbox.
type LocalExecutor struct{}

func (LocalExecutor) Run(ctx context.Context, spec Spec) (Result, error) {
	shell := spec.Shell
	if shell == "" {
		shell = "/bin/sh"
	}
	args := append([]string{"-c", spec.Script, shell}, spec.Args...)
	cmd := exec.CommandContext(ctx, shell, args...)
	cmd.Dir = spec.WorkDir
	cmd.Env = spec.Env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		result.ExitCode = 0
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		return result, xerr.Wrap(ErrRuntime, err)
	}
	return result, nil
}
