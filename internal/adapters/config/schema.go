package config

// Projectfile is the on-disk shape of respawn.yaml, respawn.yml and respawn.toml.
type Projectfile struct {
	Version    string      `yaml:"version"    toml:"version"`
	Extensions []string    `yaml:"extensions" toml:"extensions"`
	Ignore     []string    `yaml:"ignore"     toml:"ignore"`
	OutDir     string      `yaml:"outDir"     toml:"outDir"`
	ESM        bool        `yaml:"esm"        toml:"esm"`
	Compiler   CompilerDTO `yaml:"compiler"   toml:"compiler"`
	Reload     ReloadDTO   `yaml:"reload"     toml:"reload"`
}

// CompilerDTO configures the compiler engine. Options are passed through untouched.
type CompilerDTO struct {
	Command      []string          `yaml:"command"      toml:"command"`
	OutExtension string            `yaml:"outExtension" toml:"outExtension"`
	Target       string            `yaml:"target"       toml:"target"`
	SourceMaps   bool              `yaml:"sourceMaps"   toml:"sourceMaps"`
	Options      map[string]string `yaml:"options"      toml:"options"`
}

// ReloadDTO holds reload timings as Go duration strings ("15ms", "5s").
type ReloadDTO struct {
	Debounce    string `yaml:"debounce"    toml:"debounce"`
	StopTimeout string `yaml:"stopTimeout" toml:"stopTimeout"`
}
