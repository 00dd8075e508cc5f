package sandbox

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	goruntime "runtime"
	"strings"
	"sync/atomic"
	"syscall"

	containerd "github.com/containerd/containerd/v2/client"
	"github.com/containerd/containerd/v2/core/images"
	"github.com/containerd/containerd/v2/pkg/cio"
	"github.com/containerd/containerd/v2/pkg/oci"
	"github.com/containerd/errdefs"
	"github.com/containerd/platforms"
	specs "github.com/opencontainers/runtime-spec/specs-go"

	"github.com/bobbuildtool/bob/internal/xerr"
)

const (
	snapshotter = "fuse-overlayfs"
	ociRuntime  = "io.containerd.runc.v2"
)

// ImageRuntime is the containerd-backed executor for dev-sandbox and
// strict-sandbox steps: it imports the recipe-provided OCI archive,
// starts a long-running container, and execs the step's script inside
// it.
type ImageRuntime struct {
	client *containerd.Client
}

// NewImageRuntime connects to the containerd socket at address, scoping
// every operation to namespace so concurrent Bob invocations never
// collide over shared container/image names.
func NewImageRuntime(address, namespace string) (*ImageRuntime, error) {
	client, err := containerd.New(address, containerd.WithDefaultNamespace(namespace))
	if err != nil {
		return nil, xerr.Wrap(ErrRuntime, err)
	}
	return &ImageRuntime{client: client}, nil
}

func (rt *ImageRuntime) Close() error {
	return rt.client.Close()
}

// Run imports and tags spec.ImagePath on every call, starts a
// container keyed by spec.ContainerID, execs the script inside it, and
// tears the container down before returning.
func (rt *ImageRuntime) Run(ctx context.Context, spec Spec) (Result, error) {
	platform := spec.Platform
	if platform == "" {
		platform = defaultPlatform()
	}
	tag := imageTag(spec.ImagePath)

	source, err := rt.importArchive(ctx, spec.ImagePath)
	if err != nil {
		return Result{}, xerr.Wrap(ErrRuntime, err)
	}
	if err := rt.tagImage(ctx, source, tag); err != nil {
		return Result{}, xerr.Wrap(ErrRuntime, err)
	}
	if err := rt.unpackImage(ctx, tag, platform); err != nil {
		return Result{}, xerr.Wrap(ErrRuntime, err)
	}

	c := &container{client: rt.client, id: spec.ContainerID, platform: platform}
	c.remove(ctx)

	image, err := rt.resolveImage(ctx, tag, platform)
	if err != nil {
		return Result{}, xerr.Wrap(ErrRuntime, err)
	}

	ctr, err := c.create(ctx, image, spec)
	if err != nil {
		return Result{}, xerr.Wrap(ErrRuntime, err)
	}
	defer ctr.Delete(ctx, containerd.WithSnapshotCleanup)

	if err := c.startTask(ctx); err != nil {
		return Result{}, xerr.Wrap(ErrRuntime, err)
	}
	defer c.stopTask(ctx)

	return c.exec(ctx, spec)
}

func (rt *ImageRuntime) importArchive(ctx context.Context, path string) (images.Image, error) {
	fh, err := os.Open(path)
	if err != nil {
		return images.Image{}, err
	}
	defer fh.Close()

	imported, err := rt.client.Import(ctx, fh)
	if err != nil {
		return images.Image{}, err
	}
	if len(imported) == 0 {
		return images.Image{}, ErrEmptyArchive
	} else if len(imported) > 1 {
		return images.Image{}, ErrMultipleImages
	}
	return imported[0], nil
}

func defaultPlatform() string {
	return "linux/" + goruntime.GOARCH
}

func imageTag(path string) string {
	h := sha256.Sum256([]byte(path))
	return fmt.Sprintf("bob-sandbox/%s:latest", hex.EncodeToString(h[:]))
}

func (rt *ImageRuntime) tagImage(ctx context.Context, source images.Image, tag string) error {
	is := rt.client.ImageService()
	img := images.Image{Name: tag, Target: source.Target}
	if _, err := is.Create(ctx, img); err != nil {
		if !errdefs.IsAlreadyExists(err) {
			return err
		}
		if _, err := is.Update(ctx, img, "target"); err != nil {
			return err
		}
	}
	if source.Name != tag {
		_ = is.Delete(ctx, source.Name)
	}
	return nil
}

func (rt *ImageRuntime) unpackImage(ctx context.Context, tag, platform string) error {
	image, err := rt.resolveImage(ctx, tag, platform)
	if err != nil {
		return err
	}
	return image.Unpack(ctx, snapshotter)
}

func (rt *ImageRuntime) resolveImage(ctx context.Context, tag, platform string) (containerd.Image, error) {
	p, err := platforms.Parse(platform)
	if err != nil {
		return nil, err
	}
	img, err := rt.client.ImageService().Get(ctx, tag)
	if err != nil {
		return nil, err
	}
	return containerd.NewImageWithPlatform(rt.client, img, platforms.Only(p)), nil
}

type container struct {
	client   *containerd.Client
	id       string
	platform string
}

func (c *container) create(ctx context.Context, image containerd.Image, spec Spec) (containerd.Container, error) {
	opts := []oci.SpecOpts{
		oci.WithDefaultSpecForPlatform(c.platform),
		oci.WithImageConfig(image),
		oci.WithHostResolvconf,
		oci.WithProcessArgs("sleep", "infinity"),
	}
	if spec.Policy.StablePath {
		opts = append(opts, oci.WithLinuxNamespace(specs.LinuxNamespace{Type: specs.NetworkNamespace}))
	} else {
		opts = append(opts, oci.WithHostNamespace(specs.NetworkNamespace))
	}
	if spec.Hostname != "" {
		opts = append(opts, oci.WithHostname(spec.Hostname))
	}
	for _, m := range spec.BindMounts {
		opts = append(opts, oci.WithMounts([]specs.Mount{bindMountSpec(m)}))
	}

	return c.client.NewContainer(ctx, c.id,
		containerd.WithImage(image),
		containerd.WithSnapshotter(snapshotter),
		containerd.WithNewSnapshot(c.id, image),
		containerd.WithRuntime(ociRuntime, nil),
		containerd.WithNewSpec(opts...),
	)
}

func bindMountSpec(m BindMount) specs.Mount {
	options := []string{"rbind"}
	if m.ReadOnly {
		options = append(options, "ro")
	} else {
		options = append(options, "rw")
	}
	return specs.Mount{Type: "bind", Source: m.Source, Destination: m.Target, Options: options}
}

func (c *container) startTask(ctx context.Context) error {
	ctr, err := c.client.LoadContainer(ctx, c.id)
	if err != nil {
		return err
	}
	task, err := ctr.NewTask(ctx, cio.NullIO)
	if err != nil {
		return err
	}
	return task.Start(ctx)
}

func (c *container) stopTask(ctx context.Context) {
	ctr, err := c.client.LoadContainer(ctx, c.id)
	if err != nil {
		return
	}
	task, err := ctr.Task(ctx, nil)
	if err != nil {
		return
	}
	task.Kill(ctx, syscall.SIGKILL)
	task.Delete(ctx, containerd.WithProcessKill)
}

func (c *container) remove(ctx context.Context) {
	existing, err := c.client.LoadContainer(ctx, c.id)
	if err != nil {
		return
	}
	if task, err := existing.Task(ctx, nil); err == nil {
		task.Kill(ctx, syscall.SIGKILL)
		task.Delete(ctx, containerd.WithProcessKill)
	}
	existing.Delete(ctx, containerd.WithSnapshotCleanup)
}

func (c *container) exec(ctx context.Context, spec Spec) (Result, error) {
	ctr, err := c.client.LoadContainer(ctx, c.id)
	if err != nil {
		return Result{}, xerr.Wrap(ErrRuntime, err)
	}
	task, err := ctr.Task(ctx, nil)
	if err != nil {
		return Result{}, xerr.Wrap(ErrRuntime, err)
	}
	origSpec, err := ctr.Spec(ctx)
	if err != nil {
		return Result{}, xerr.Wrap(ErrRuntime, err)
	}
	pspec := *origSpec.Process
	pspec.Terminal = false
	shell := spec.Shell
	if shell == "" {
		shell = "/bin/sh"
	}
	pspec.Args = []string{shell, "-c", spec.Script}
	if len(spec.Env) > 0 {
		pspec.Env = mergeEnv(pspec.Env, spec.Env)
	}
	if spec.WorkDir != "" {
		pspec.Cwd = spec.WorkDir
	}

	var stdout, stderr strings.Builder
	process, err := task.Exec(ctx, nextExecID(), &pspec, cio.NewCreator(cio.WithStreams(nil, &stdout, &stderr)))
	if err != nil {
		return Result{}, xerr.Wrap(ErrRuntime, err)
	}
	defer process.Delete(ctx)

	statusC, err := process.Wait(ctx)
	if err != nil {
		return Result{}, xerr.Wrap(ErrRuntime, err)
	}
	if err := process.Start(ctx); err != nil {
		return Result{}, xerr.Wrap(ErrRuntime, err)
	}
	exitStatus := <-statusC
	code, _, err := exitStatus.Result()
	if err != nil {
		return Result{}, xerr.Wrap(ErrRuntime, err)
	}

	slog.Debug("sandbox step finished", "container", c.id, "exit_code", code)
	return Result{ExitCode: int(code), Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

var execSeq uint64

func nextExecID() string {
	return fmt.Sprintf("exec-%d", atomic.AddUint64(&execSeq, 1))
}

func splitEnv(entry string) (string, string, bool) {
	return strings.Cut(entry, "=")
}

func mergeEnv(base, overrides []string) []string {
	merged := make(map[string]string, len(base)+len(overrides))
	for _, kv := range base {
		if k, v, ok := splitEnv(kv); ok {
			merged[k] = v
		}
	}
	for _, kv := range overrides {
		if k, v, ok := splitEnv(kv); ok {
			merged[k] = v
		}
	}
	out := make([]string, 0, len(merged))
	for k, v := range merged {
		out = append(out, k+"="+v)
	}
	return out
}
