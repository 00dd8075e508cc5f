package sandbox

// Mode is one of the five sandbox policies a step can run under.
type Mode string

const (
	NoSandbox     Mode = "no-sandbox"
	Sandbox       Mode = "sandbox"
	SlimSandbox   Mode = "slim-sandbox"
	DevSandbox    Mode = "dev-sandbox"
	StrictSandbox Mode = "strict-sandbox"
)

// Policy is the resolved set of isolation decisions for a mode: whether
// the namespace-sandbox helper isolates the step's mount namespace at
// all, whether execution happens at a deterministic "/bob/..." path
// derived from the step's Variant-Id rather than the ordinary workspace
// path, and whether a container image backs the filesystem.
type Policy struct {
	Mode        Mode
	Isolated    bool // namespace-sandbox helper used for execution
	StablePath  bool // execution path is deterministic, keyed by Variant-Id
	UsesImage   bool // execution filesystem is a recipe-provided container image
}

// PolicyFor returns the isolation policy for mode, per the five-mode
// matrix: no-sandbox isolates nothing; sandbox isolates and pins
// execution to a stable path without an image; slim-sandbox isolates
// at ordinary workspace paths without an image; dev-sandbox isolates
// at ordinary workspace paths with an image; strict-sandbox isolates
// at a stable path with an image.
func PolicyFor(mode Mode) (Policy, error) {
	switch mode {
	case NoSandbox:
		return Policy{Mode: mode}, nil
	case Sandbox:
		return Policy{Mode: mode, Isolated: true, StablePath: true}, nil
	case SlimSandbox:
		return Policy{Mode: mode, Isolated: true}, nil
	case DevSandbox:
		return Policy{Mode: mode, Isolated: true, UsesImage: true}, nil
	case StrictSandbox:
		return Policy{Mode: mode, Isolated: true, StablePath: true, UsesImage: true}, nil
	default:
		return Policy{}, ErrUnknownMode
	}
}

// BindMount is one path the namespace-helper or container executor
// must make visible inside the sandboxed process's mount namespace.
type BindMount struct {
	Source   string
	Target   string
	ReadOnly bool
}

// Spec is everything an executor needs to run one step's script under
// a resolved policy.
type Spec struct {
	Policy      Policy
	Script      string
	Shell       string
	Args        []string // positional arguments, the workspace paths of direct input steps
	Env         []string
	WorkDir     string
	BindMounts  []BindMount
	Hostname    string
	ImagePath   string // OCI archive path, set only when Policy.UsesImage
	ContainerID string // stable id, derived from the sandbox package's Variant-Id
	Platform    string
}

// Result is the outcome of running a Spec.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}
