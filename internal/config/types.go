package config

// ArchiveBackendKind names one of the pluggable artifact cache
// backends a config's archive entry can select.
type ArchiveBackendKind string

const (
	BackendFile  ArchiveBackendKind = "file"
	BackendHTTP  ArchiveBackendKind = "http"
	BackendAzure ArchiveBackendKind = "azure"
	BackendS3    ArchiveBackendKind = "s3"
)

// Archive is one configured artifact cache backend.
type Archive struct {
	Name    string             `yaml:"name"`
	Backend ArchiveBackendKind `yaml:"backend"`
	Path    string             `yaml:"path,omitempty"`
	URL     string             `yaml:"url,omitempty"`
	Flags   ArchiveFlags       `yaml:"flags,omitempty"`
}

// ArchiveFlags mirrors internal/cache.Flags at the configuration layer.
type ArchiveFlags struct {
	Download    *bool `yaml:"download,omitempty"`
	Upload      *bool `yaml:"upload,omitempty"`
	SrcDownload *bool `yaml:"srcDownload,omitempty"`
	SrcUpload   *bool `yaml:"srcUpload,omitempty"`
}

// Share configures the shared-package store.
type Share struct {
	Path      string `yaml:"path,omitempty"`
	Quota     int64  `yaml:"quota,omitempty"`
	AutoClean bool   `yaml:"autoClean,omitempty"`
}

// ScmOverrideRule rewrites matching SCM declarations before they are
// resolved, e.g. to redirect a URL through an internal mirror.
type ScmOverrideRule struct {
	Match       string            `yaml:"match"`
	SetURL      string            `yaml:"url,omitempty"`
	SetBranch   string            `yaml:"branch,omitempty"`
	Environment map[string]string `yaml:"environment,omitempty"`
}

// Layer is one externally sourced recipe bundle merged into the
// project's recipe search path ahead of loading (§6 "layers").
type Layer struct {
	Name string `yaml:"name"`
	Scm  `yaml:",inline"`
}

// Scm mirrors the shape internal/recipe.Scm expects, duplicated here
// because config-level SCM declarations (for layers) are parsed
// independently of recipe YAML.
type Scm struct {
	Kind      string `yaml:"scm"`
	URL       string `yaml:"url"`
	Branch    string `yaml:"branch,omitempty"`
	Tag       string `yaml:"tag,omitempty"`
	Commit    string `yaml:"commit,omitempty"`
	Submodule bool   `yaml:"submodule,omitempty"`
	Dir       string `yaml:"dir,omitempty"`
}

// Config is the fully merged, normalized project configuration (§6).
type Config struct {
	Environment        map[string]string  `yaml:"environment,omitempty"`
	Whitelist          []string           `yaml:"whitelist,omitempty"`
	Archive            []Archive          `yaml:"archive,omitempty"`
	Share              Share              `yaml:"share,omitempty"`
	ScmOverrides       []ScmOverrideRule  `yaml:"scmOverrides,omitempty"`
	ScmDefaults        map[string]string  `yaml:"scmDefaults,omitempty"`
	RootFilter         []string           `yaml:"rootFilter,omitempty"`
	Hooks              map[string]string  `yaml:"hooks,omitempty"`
	Plugins            []string           `yaml:"plugins,omitempty"`
	Policies           map[string]bool    `yaml:"policies,omitempty"`
	BobMinimumVersion  string             `yaml:"bobMinimumVersion,omitempty"`
	Layers             []Layer            `yaml:"layers,omitempty"`
	LayersScmOverrides []ScmOverrideRule  `yaml:"layersScmOverrides,omitempty"`

	// DefaultSandboxMode is applied to steps that declare no sandbox
	// mode of their own (§4.7): one of "no-sandbox", "sandbox",
	// "slim-sandbox", "dev-sandbox", "strict-sandbox".
	DefaultSandboxMode string `yaml:"defaultSandboxMode,omitempty"`
}
