package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/bobbuildtool/bob/internal/xerr"
)

// NamespaceExecutor runs a step's script under the out-of-scope
// namespace-sandbox helper binary, a fixed external CLI we only
// construct arguments for (§1). It backs Sandbox and SlimSandbox,
// neither of which uses a container image.
type NamespaceExecutor struct {
	// HelperPath is the namespace-sandbox helper binary, e.g.
	// "bob-namespace-helper".
	HelperPath string
}

// StablePath derives the deterministic "/bob/..." execution path the
// Sandbox and StrictSandbox modes require, keyed by the step's
// Variant-Id so repeated builds of the same step reuse the same path
// regardless of which workspace produced it.
func StablePath(variantID [32]byte) string {
	return fmt.Sprintf("/bob/%x", variantID[:8])
}

func (n NamespaceExecutor) Run(ctx context.Context, spec Spec) (Result, error) {
	helper := n.HelperPath
	if helper == "" {
		return Result{}, errors.New("namespace-sandbox helper path not configured")
	}

	args := n.helperArgs(spec, spec.WorkDir)

	cmd := exec.CommandContext(ctx, helper, args...)
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
		return result, xerr.Wrap(ErrHelperFailed, err)
	}
	return result, nil
}

// helperArgs builds the namespace-sandbox helper's fixed argument
// dialect: a bind-mount list, a hostname, a UID mapping, a working
// directory, and the script to run via the step's shell.
func (n NamespaceExecutor) helperArgs(spec Spec, workdir string) []string {
	args := []string{}
	for _, m := range spec.BindMounts {
		mode := "rw"
		if m.ReadOnly {
			mode = "ro"
		}
		args = append(args, "--bind", fmt.Sprintf("%s:%s:%s", m.Source, m.Target, mode))
	}
	if spec.Hostname != "" {
		args = append(args, "--hostname", spec.Hostname)
	}
	args = append(args, "--uid-map", "0:$(id -u):1")
	args = append(args, "--chdir", workdir)

	shell := spec.Shell
	if shell == "" {
		shell = "/bin/sh"
	}
	args = append(args, "--", shell, "-c", spec.Script, shell)
	args = append(args, spec.Args...)
	return args
}
