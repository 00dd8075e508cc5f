package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/bobbuildtool/bob/internal/bobenv"
	"github.com/bobbuildtool/bob/internal/bobinfo"
	"github.com/bobbuildtool/bob/internal/cache"
	"github.com/bobbuildtool/bob/internal/graph"
	"github.com/bobbuildtool/bob/internal/hash"
	"github.com/bobbuildtool/bob/internal/identity"
	"github.com/bobbuildtool/bob/internal/paths"
	"github.com/bobbuildtool/bob/internal/sandbox"
	"github.com/bobbuildtool/bob/internal/scm"
)

// executeStep is the scheduler's Executor callback: it dispatches a
// step to the checkout or script pipeline depending on its kind.
func (e *Engine) executeStep(ctx context.Context, step *graph.Step) error {
	info, ok := e.steps[step]
	if !ok {
		return fmt.Errorf("engine: step not indexed, expansion/scheduling are out of sync")
	}
	if step.Kind == identity.Checkout {
		return e.runCheckout(ctx, step, info)
	}
	return e.runScript(ctx, step, info)
}

// runCheckout materializes every SCM declaration of a checkout step
// into its workspace, applying the attic-move decision per declaration
// (§4.5), then computes and predicts the step's Build-Id.
func (e *Engine) runCheckout(ctx context.Context, step *graph.Step, info stepInfo) error {
	workspace, err := e.Workspaces.Resolve(e.Layout, info.Package.RecipePath, paths.StageSrc, step.VariantId, e.mode())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(workspace, paths.DefaultDirMode); err != nil {
		return err
	}

	digests := make([]hash.Digest, 0, len(step.Scms))
	for i, decl := range step.Scms {
		if decl.If != "" {
			cond, err := bobenv.CompileCondition(decl.If)
			if err != nil {
				return err
			}
			run, err := cond.Eval(step.Env)
			if err != nil {
				return err
			}
			if !run {
				continue
			}
		}

		impl, err := scm.New(decl)
		if err != nil {
			return err
		}

		target := workspace
		if decl.Dir != "" {
			target = filepath.Join(workspace, decl.Dir)
		}

		key := info.Package.RecipePath + "#scm#" + strconv.Itoa(i)
		newState := scm.FromScm(decl)

		skipCheckout := false
		if prior, ok := e.Workspaces.PriorScmState(key); ok {
			dirty, _ := impl.Dirty(ctx, target)
			switch scm.DecideTransition(prior, newState, dirty) {
			case scm.NoOp:
				skipCheckout = true
			case scm.AtticMove:
				if err := scm.MoveToAttic(target, step.VariantId); err != nil {
					return err
				}
			}
		}

		if !skipCheckout {
			if err := impl.Checkout(ctx, target); err != nil {
				return fmt.Errorf("checking out %s: %w", info.Package.RecipePath, err)
			}
		}
		if err := e.Workspaces.RecordScmState(key, newState); err != nil {
			return err
		}
		digests = append(digests, newState.Digest())
	}

	buildID := identity.CheckoutBuildID(step.Script, identity.CheckoutInput{
		ScmDigests:    digests,
		InputBuildIds: e.inputBuildIDs(step),
	})
	e.Identity.Store(step.VariantId, buildID)
	return nil
}

// runScript executes a build or package step: it resolves the step's
// Build-Id from its tool/input dependencies and optional fingerprint,
// tries the shared-package store and artifact cache before falling
// back to actual execution, and uploads/installs the result afterward.
func (e *Engine) runScript(ctx context.Context, step *graph.Step, info stepInfo) error {
	stage := paths.StageOf(step.Kind)
	workspace, err := e.Workspaces.Resolve(e.Layout, info.Package.RecipePath, stage, step.VariantId, e.mode())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(workspace, paths.DefaultDirMode); err != nil {
		return err
	}

	toolBuildIds := make(map[string]hash.Digest, len(step.Tools))
	for name, t := range step.Tools {
		if id, ok := e.Identity.Predict(t.VariantId); ok {
			toolBuildIds[name] = id
		}
	}

	fingerprint, hasFingerprint, err := e.runFingerprintIfDue(ctx, step, info, workspace)
	if err != nil {
		return err
	}

	buildID := identity.BuildID(step.Kind, step.Script, identity.BuildInput{
		ToolBuildIds:      toolBuildIds,
		InputBuildIds:     e.inputBuildIDs(step),
		FingerprintOutput: fingerprint,
		HasFingerprint:    hasFingerprint,
	})

	if e.Share != nil {
		if dir, ok := e.Share.Lookup(buildID); ok {
			if err := linkShared(dir, workspace); err == nil {
				e.Identity.Store(step.VariantId, buildID)
				return nil
			}
		}
	}

	if e.Cache != nil {
		if _, ok, err := e.Cache.Lookup(ctx, buildID); err == nil && ok {
			if _, err := e.Cache.Download(ctx, buildID, workspace); err == nil {
				e.Identity.Store(step.VariantId, buildID)
				e.maybeInstallShared(step, info, buildID, workspace)
				return nil
			}
		}
	}

	spec := e.buildSpec(step, info, workspace)
	result, err := e.Sandbox.Run(ctx, spec)
	if err != nil {
		return fmt.Errorf("%s %s: %w", info.Package.RecipePath, step.Kind, err)
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("%s %s: exit %d: %s", info.Package.RecipePath, step.Kind, result.ExitCode, result.Stderr)
	}

	e.Identity.Store(step.VariantId, buildID)

	if e.Cache != nil {
		meta := cache.AuditTrail{
			BuildID:    buildID.String(),
			VariantID:  step.VariantId.String(),
			BobVersion: bobinfo.Version(),
			StepKind:   string(step.Kind),
			Recipe:     info.Package.RecipeName,
			Package:    info.Package.RecipePath,
			BuildDate:  time.Now().UTC(),
			MetaEnv:    step.Meta,
		}
		if err := e.Cache.Upload(ctx, buildID, meta, workspace); err != nil {
			slog.Warn("uploading artifact failed", "package", info.Package.RecipePath, "stage", stage, "error", err)
		}
	}

	e.maybeInstallShared(step, info, buildID, workspace)
	return nil
}

// runFingerprintIfDue runs a step's fingerprint script, if declared and
// its "if" condition (or absence of one) says it applies (§4.3). The
// script runs under the same sandbox spec as the step itself.
func (e *Engine) runFingerprintIfDue(ctx context.Context, step *graph.Step, info stepInfo, workspace string) ([]byte, bool, error) {
	if step.Fingerprint == nil {
		return nil, false, nil
	}
	if step.Fingerprint.If != "" {
		cond, err := bobenv.CompileCondition(step.Fingerprint.If)
		if err != nil {
			return nil, false, err
		}
		ok, err := cond.Eval(step.Env)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}
	}

	spec := e.buildSpec(step, info, workspace)
	spec.Script = step.Fingerprint.Script
	result, err := e.Sandbox.Run(ctx, spec)
	if err != nil {
		return nil, false, fmt.Errorf("fingerprint: %w", err)
	}
	if result.ExitCode != 0 {
		return nil, false, fmt.Errorf("fingerprint exited %d: %s", result.ExitCode, result.Stderr)
	}
	return []byte(result.Stdout), true, nil
}

// inputBuildIDs returns the predicted Build-Ids of a step's direct
// inputs, declaration order, skipping any whose prediction is not yet
// known (an input that itself produced no identity, e.g. a checkout
// still pending within the same run would already have run first
// since the scheduler walks Inputs before Execute).
func (e *Engine) inputBuildIDs(step *graph.Step) []hash.Digest {
	ids := make([]hash.Digest, 0, len(step.Inputs))
	for _, in := range step.Inputs {
		if id, ok := e.Identity.Predict(in.VariantId); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// buildSpec assembles the sandbox.Spec for a build/package step: its
// resolved isolation policy, BOB_* environment, tool PATH/library
// paths, and the workspace paths of its direct inputs as positional
// arguments (§5 "Shared resources": "build/package steps read their
// inputs' workspaces through positional arguments").
func (e *Engine) buildSpec(step *graph.Step, info stepInfo, workspace string) sandbox.Spec {
	policy, err := sandbox.PolicyFor(e.sandboxModeOf(step))
	if err != nil {
		policy = sandbox.Policy{Mode: sandbox.NoSandbox}
	}

	env := bobinfo.Inject(step.Env, bobinfo.StepEnv{
		RecipeName:  info.Package.RecipeName,
		PackageName: filepath.Base(info.Package.RecipePath),
		PackagePath: info.Package.RecipePath,
		Cwd:         workspace,
	})

	if path, ldPath := toolPaths(step.Tools); path != "" {
		merged := path
		if cur, ok := env.Get("PATH"); ok && cur != "" {
			merged = path + ":" + cur
		} else {
			merged = path + ":" + os.Getenv("PATH")
		}
		env = env.Set("PATH", merged)
		if ldPath != "" {
			env = env.Set("LD_LIBRARY_PATH", ldPath)
		}
	}

	args := make([]string, 0, len(step.Inputs))
	for _, in := range step.Inputs {
		if p, ok := e.stepWorkspace(in); ok {
			args = append(args, p)
		}
	}

	spec := sandbox.Spec{
		Policy:  policy,
		Script:  step.Script,
		Shell:   "/bin/sh",
		Args:    args,
		Env:     env.Strings(),
		WorkDir: workspace,
	}
	if policy.StablePath {
		spec.WorkDir = sandbox.StablePath(step.VariantId)
		spec.BindMounts = []sandbox.BindMount{{Source: workspace, Target: spec.WorkDir}}
	}
	if policy.UsesImage {
		spec.ContainerID = step.VariantId.String()
	}
	return spec
}

// stepWorkspace returns the on-disk workspace path an already-scheduled
// input step settled into, looked up the same way runCheckout/runScript
// computed it, without re-running anything.
func (e *Engine) stepWorkspace(step *graph.Step) (string, bool) {
	info, ok := e.steps[step]
	if !ok {
		return "", false
	}
	stage := paths.StageOf(step.Kind)
	return e.Layout.Workspace(info.Package.RecipePath, stage, 0), true
}

func (e *Engine) mode() paths.Mode {
	if e.Layout == nil {
		return paths.Release
	}
	return e.Layout.Mode
}

// sandboxModeOf resolves the §4.7 sandbox policy a step runs under: a
// step's own declared mode wins; otherwise the project's configured
// default applies; failing both, a step with an injected sandbox image
// runs under plain "sandbox" and one without runs unsandboxed.
func (e *Engine) sandboxModeOf(step *graph.Step) sandbox.Mode {
	if step.SandboxMode != "" {
		return sandbox.Mode(step.SandboxMode)
	}
	if e.Config != nil && e.Config.DefaultSandboxMode != "" {
		return sandbox.Mode(e.Config.DefaultSandboxMode)
	}
	if !step.Sandbox.Present {
		return sandbox.NoSandbox
	}
	return sandbox.Sandbox
}

// toolPaths renders a step's resolved tools into PATH and
// LD_LIBRARY_PATH entries, tool names sorted for determinism.
func toolPaths(tools map[string]graph.Tool) (path, ldLibraryPath string) {
	names := make([]string, 0, len(tools))
	for n := range tools {
		names = append(names, n)
	}
	sort.Strings(names)

	var pathParts, libParts []string
	for _, n := range names {
		t := tools[n]
		if t.Path != "" {
			pathParts = append(pathParts, t.Path)
		}
		libParts = append(libParts, t.LibraryPaths...)
	}
	return joinPaths(pathParts), joinPaths(libParts)
}

func joinPaths(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ":"
		}
		out += p
	}
	return out
}

// linkShared replaces workspace with a symlink into the shared-package
// store's install directory for an already-built artifact.
func linkShared(installDir, workspace string) error {
	if err := os.RemoveAll(workspace); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(workspace), paths.DefaultDirMode); err != nil {
		return err
	}
	return os.Symlink(filepath.Join(installDir, "workspace"), workspace)
}

// maybeInstallShared installs a freshly built/downloaded workspace into
// the shared-package store when the step opted in via relocatable:, then
// reclaims the store down to its quota when share.autoClean is set.
func (e *Engine) maybeInstallShared(step *graph.Step, info stepInfo, buildID hash.Digest, workspace string) {
	if e.Share == nil || !step.Relocatable {
		return
	}
	if _, err := e.Share.Install(buildID, workspace); err != nil {
		slog.Warn("installing shared package failed", "package", info.Package.RecipePath, "error", err)
		return
	}
	if e.Config != nil && e.Config.Share.AutoClean {
		if err := e.Share.Reclaim(context.Background()); err != nil {
			slog.Warn("reclaiming shared packages failed", "error", err)
		}
	}
}
