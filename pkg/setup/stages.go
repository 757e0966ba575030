package setup

import (
	"github.com/arthur-debert/stackops/pkg/scripts"
)

// Stage names, in execution order
const (
	StageInitialHardening = "initial_hardening"
	StageContainerRuntime = "container_runtime"
	StageReverseProxy     = "reverse_proxy_tls"
	StageCIRunner         = "ci_runner"
)

// Environment variables handed to stage scripts
const (
	EnvDomain      = "DOMAIN"
	EnvEmail       = "EMAIL"
	EnvGitHubToken = "GITHUB_TOKEN"
)

// RunContext carries the operator input for one run. It is never persisted
// and the token is never logged.
type RunContext struct {
	Domain      string
	Email       string
	GitHubToken string

	// Env holds operator overrides merged under stage variables
	Env map[string]string
}

// HasRunnerToken reports whether CI runner registration was requested
func (rc RunContext) HasRunnerToken() bool {
	return rc.GitHubToken != ""
}

// Stage is one named provisioning step backed by exactly one script
type Stage struct {
	Name     string
	ScriptID string

	// Env returns the stage specific variables. Nil means none.
	Env func(rc RunContext) map[string]string

	// Enabled decides whether the stage runs. Nil means always; a disabled
	// stage is recorded as a skipped success.
	Enabled func(rc RunContext) bool
}

// environment returns the operator overrides overlaid by stage variables
func (s Stage) environment(rc RunContext) map[string]string {
	env := make(map[string]string, len(rc.Env)+2)
	for k, v := range rc.Env {
		env[k] = v
	}
	if s.Env != nil {
		for k, v := range s.Env(rc) {
			env[k] = v
		}
	}
	return env
}

func (s Stage) enabled(rc RunContext) bool {
	return s.Enabled == nil || s.Enabled(rc)
}

// DefaultStages returns the fixed provisioning sequence
func DefaultStages() []Stage {
	return []Stage{
		{
			Name:     StageInitialHardening,
			ScriptID: scripts.InitialSetup,
		},
		{
			Name:     StageContainerRuntime,
			ScriptID: scripts.DockerSetup,
		},
		{
			Name:     StageReverseProxy,
			ScriptID: scripts.ProxySetup,
			Env: func(rc RunContext) map[string]string {
				return map[string]string{EnvDomain: rc.Domain, EnvEmail: rc.Email}
			},
		},
		{
			Name:     StageCIRunner,
			ScriptID: scripts.RunnerSetup,
			Env: func(rc RunContext) map[string]string {
				return map[string]string{EnvGitHubToken: rc.GitHubToken}
			},
			Enabled: RunContext.HasRunnerToken,
		},
	}
}
