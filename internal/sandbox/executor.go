package sandbox

import "context"

// Executor runs one step's script under a resolved Spec.
type Executor interface {
	Run(ctx context.Context, spec Spec) (Result, error)
}

// Dispatcher routes a Spec to LocalExecutor, NamespaceExecutor, or
// ImageRuntime depending on its Policy.
type Dispatcher struct {
	Local     Executor
	Namespace Executor
	Image     Executor
}

// NewDispatcher wires the three executors with their usual
// implementations; helperPath configures the namespace-sandbox helper
// and image is the image-backed executor. image may be nil, since not
// every invocation needs dev-sandbox/strict-sandbox; Run then fails
// image-backed specs with ErrRuntime.
func NewDispatcher(helperPath string, image Executor) *Dispatcher {
	return &Dispatcher{
		Local:     LocalExecutor{},
		Namespace: NamespaceExecutor{HelperPath: helperPath},
		Image:     image,
	}
}

func (d *Dispatcher) Run(ctx context.Context, spec Spec) (Result, error) {
	switch {
	case spec.Policy.UsesImage:
		if d.Image == nil {
			return Result{}, ErrRuntime
		}
		return d.Image.Run(ctx, spec)
	case spec.Policy.Isolated:
		return d.Namespace.Run(ctx, spec)
	default:
		return d.Local.Run(ctx, spec)
	}
}
