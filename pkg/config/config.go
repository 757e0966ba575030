package config

// Config is the effective stackops configuration
type Config struct {
	Workspace Workspace `koanf:"workspace" toml:"workspace"`
	Exec      Exec      `koanf:"exec" toml:"exec"`
	History   History   `koanf:"history" toml:"history"`
	Metrics   Metrics   `koanf:"metrics" toml:"metrics"`
	UI        UI        `koanf:"ui" toml:"ui"`
	Preflight Preflight `koanf:"preflight" toml:"preflight"`
}

// Workspace locates the directories reset by every run
type Workspace struct {
	Base string `koanf:"base" toml:"base"`
}

// Exec controls how scripts are invoked
type Exec struct {
	Escalation []string `koanf:"escalation" toml:"escalation"`
	Shell      string   `koanf:"shell" toml:"shell"`
}

// History configures the run ledger
type History struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Path    string `koanf:"path" toml:"path"`
}

// Metrics configures the Prometheus textfile export
type Metrics struct {
	Textfile string `koanf:"textfile" toml:"textfile"`
}

// UI configures terminal output
type UI struct {
	Styles string `koanf:"styles" toml:"styles"`
}

// Preflight holds host resource thresholds in megabytes
type Preflight struct {
	Memory uint64 `koanf:"memory" toml:"memory"`
	Disk   uint64 `koanf:"disk" toml:"disk"`
}
