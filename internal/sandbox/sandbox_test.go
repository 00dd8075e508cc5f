package sandbox

import "testing"

func TestPolicyForMatrix(t *testing.T) {
	cases := []struct {
		mode       Mode
		isolated   bool
		stablePath bool
		usesImage  bool
	}{
		{NoSandbox, false, false, false},
		{Sandbox, true, true, false},
		{SlimSandbox, true, false, false},
		{DevSandbox, true, false, true},
		{StrictSandbox, true, true, true},
	}
	for _, c := range cases {
		p, err := PolicyFor(c.mode)
		if err != nil {
			t.Fatalf("PolicyFor(%s): %v", c.mode, err)
		}
		if p.Isolated != c.isolated || p.StablePath != c.stablePath || p.UsesImage != c.usesImage {
			t.Fatalf("PolicyFor(%s) = %+v, want isolated=%v stablePath=%v usesImage=%v", c.mode, p, c.isolated, c.stablePath, c.usesImage)
		}
	}
}

func TestPolicyForUnknownMode(t *testing.T) {
	if _, err := PolicyFor(Mode("bogus")); err != ErrUnknownMode {
		t.Fatalf("PolicyFor(bogus) error = %v, want ErrUnknownMode", err)
	}
}

func TestLocalExecutorRunsScript(t *testing.T) {
	exec := LocalExecutor{}
	res, err := exec.Run(t.Context(), Spec{Script: "echo hello"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.ExitCode != 0 {
		t.Fatalf("ExitCode = %d, want 0", res.ExitCode)
	}
	if res.Stdout != "hello\n" {
		t.Fatalf("Stdout = %q, want %q", res.Stdout, "hello\n")
	}
}

func TestLocalExecutorNonZeroExit(t *testing.T) {
	exec := LocalExecutor{}
	res, err := exec.Run(t.Context(), Spec{Script: "exit 7"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.ExitCode != 7 {
		t.Fatalf("ExitCode = %d, want 7", res.ExitCode)
	}
}

func TestDispatcherRoutesByPolicy(t *testing.T) {
	d := &Dispatcher{Local: LocalExecutor{}}
	policy, _ := PolicyFor(NoSandbox)
	if _, err := d.Run(t.Context(), Spec{Policy: policy, Script: "true"}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	imagePolicy, _ := PolicyFor(StrictSandbox)
	if _, err := d.Run(t.Context(), Spec{Policy: imagePolicy}); err != ErrRuntime {
		t.Fatalf("Run without an image executor = %v, want ErrRuntime", err)
	}
}

func TestStablePathIsDeterministic(t *testing.T) {
	var v [32]byte
	v[0] = 0xab
	if StablePath(v) != StablePath(v) {
		t.Fatal("StablePath must be a pure function of the Variant-Id")
	}
}
