package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeYAML(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolveDefinesWinOverEverything(t *testing.T) {
	dir := t.TempDir()
	projectPath := writeYAML(t, dir, "default.yaml", "environment:\n  FOO: base\n")
	overridePath := writeYAML(t, dir, "override.yaml", "environment:\n  FOO: override\n")

	project, err := Load(projectPath)
	if err != nil {
		t.Fatalf("Load project: %v", err)
	}

	cfg, err := Resolve(nil, project, []string{overridePath}, []string{"FOO=define"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Environment["FOO"] != "define" {
		t.Fatalf("Environment[FOO] = %q, want %q", cfg.Environment["FOO"], "define")
	}
}

func TestResolveOverridesLaterFileWins(t *testing.T) {
	dir := t.TempDir()
	a := writeYAML(t, dir, "a.yaml", "rootFilter:\n  - app-*\n")
	b := writeYAML(t, dir, "b.yaml", "rootFilter:\n  - lib-*\n")

	cfg, err := Resolve(nil, nil, []string{a, b}, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(cfg.RootFilter) != 1 || cfg.RootFilter[0] != "lib-*" {
		t.Fatalf("RootFilter = %v, want [lib-*] (later -c file wins)", cfg.RootFilter)
	}
}

func TestResolveEnvironmentMapsMerge(t *testing.T) {
	dir := t.TempDir()
	base := writeYAML(t, dir, "base.yaml", "environment:\n  A: \"1\"\n")
	overlay := writeYAML(t, dir, "overlay.yaml", "environment:\n  B: \"2\"\n")

	baseCfg, err := Load(base)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := Resolve(nil, baseCfg, []string{overlay}, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Environment["A"] != "1" || cfg.Environment["B"] != "2" {
		t.Fatalf("Environment = %v, want both A and B present", cfg.Environment)
	}
}

func TestApplyDefineRejectsMalformed(t *testing.T) {
	cfg := &Config{}
	if err := applyDefine(cfg, "NOVALUE"); err == nil {
		t.Fatal("expected an error for a define with no '='")
	}
}

func TestRegistryValidatesPlugins(t *testing.T) {
	r := NewRegistry()
	r.Register(CapabilityArchiveBackend, "s3")

	ok := &Config{Plugins: []string{"s3"}}
	if err := r.ValidatePlugins(ok); err != nil {
		t.Fatalf("ValidatePlugins(registered): %v", err)
	}

	bad := &Config{Plugins: []string{"unknown-thing"}}
	if err := r.ValidatePlugins(bad); err == nil {
		t.Fatal("expected an error for an unregistered plugin name")
	}
}
