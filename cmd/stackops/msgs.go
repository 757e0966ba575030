package stackops

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort           = "Provision a Linux server for container workloads"
	MsgSetupShort          = "Run the server setup"
	MsgScriptsShort        = "Inspect and install the embedded scripts"
	MsgScriptsListShort    = "List the embedded scripts"
	MsgScriptsShowShort    = "Print an embedded script"
	MsgScriptsInstallShort = "Write the embedded scripts to a directory"
	MsgVerifyShort         = "Check the host and workspace"
	MsgHistoryShort        = "Show past setup runs"
	MsgHistoryShowShort    = "Show the stages of one run"
	MsgConfigShort         = "Inspect the configuration"
	MsgConfigShowShort     = "Print the effective configuration as TOML"
	MsgConfigInitShort     = "Print a commented configuration file"
	MsgVersionShort        = "Print version information"
	MsgCompletionShort     = "Generate shell completion script"
	MsgManShort            = "Generate man page"

	// Prompts
	MsgConfirmReset  = "This will clear any previous setup. Continue?"
	MsgPromptDomain  = "Enter your domain name"
	MsgPromptEmail   = "Enter your email for SSL certificate"
	MsgConfirmRunner = "Do you want to set up GitHub Actions Runner?"
	MsgPromptToken   = "Enter your GitHub token"
	MsgConfirmRun    = "Proceed with setup?"

	// Status messages
	MsgSetupCancelled   = "Setup cancelled."
	MsgInstallFailed    = "Failed to install required scripts."
	MsgSetupSucceeded   = "Setup completed successfully!"
	MsgSetupFailed      = "Setup failed. Check logs for details: %s"
	MsgInvalidAnswer    = "%v. Please try again."
	MsgScriptsInstalled = "Installed %d scripts in %s"
	MsgScriptsDryRun    = "Would install %d scripts in %s"
	MsgVerifyRoot       = "Running with root privileges"
	MsgVerifyNotRoot    = "Not running as root; stages that need root will fail"
	MsgVerifyWorkspace  = "Workspace %s is ready"
	MsgNoHistory        = "No runs recorded yet."
	MsgHistoryDisabled  = "Run history is disabled (history.enabled = false)."
	MsgConfigWritten    = "Wrote %s"
	MsgVersionFormat    = "stackops version %s\n  commit: %s\n  built:  %s\n"

	// Error messages
	MsgErrNotInteractive = "stdin is not a terminal: pass --domain and --email"
	MsgErrUnknownScript  = "unknown script %q"
	MsgErrNoCommand      = "no command specified"
	MsgErrFileExists     = "%s already exists (use --force to overwrite)"

	// Flag descriptions
	MsgFlagVerbose = "Increase verbosity (-v DEBUG, -vv TRACE)"
	MsgFlagConfig  = "Config file (default /etc/stackops/stackops.toml)"
	MsgFlagBaseDir = "Workspace directory holding scripts/ and logs/"
	MsgFlagNoColor = "Disable colored output"
	MsgFlagDomain  = "Domain served by Nginx and covered by the certificate"
	MsgFlagEmail   = "Email for the ACME account"
	MsgFlagToken   = "GitHub token; registers a self-hosted runner when set"
	MsgFlagEnvFile = "File of KEY=VALUE pairs passed to every script"
	MsgFlagYes     = "Answer yes to every confirmation"
	MsgFlagNoClear = "Do not clear the screen before the welcome banner"
	MsgFlagDryRun  = "Show what would be written without touching the disk"
	MsgFlagLimit   = "Maximum number of runs to show (0 for all)"
	MsgFlagFormat  = "Output format: auto, term, text or json"
	MsgFlagForce   = "Overwrite an existing file"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/setup-long.txt
	msgSetupLongRaw string
	MsgSetupLong    = strings.TrimSpace(msgSetupLongRaw)

	//go:embed msgs/setup-example.txt
	msgSetupExampleRaw string
	MsgSetupExample    = strings.TrimRight(msgSetupExampleRaw, "\n")

	//go:embed msgs/scripts-long.txt
	msgScriptsLongRaw string
	MsgScriptsLong    = strings.TrimSpace(msgScriptsLongRaw)

	//go:embed msgs/history-long.txt
	msgHistoryLongRaw string
	MsgHistoryLong    = strings.TrimSpace(msgHistoryLongRaw)

	//go:embed msgs/config-long.txt
	msgConfigLongRaw string
	MsgConfigLong    = strings.TrimSpace(msgConfigLongRaw)

	//go:embed msgs/verify-long.txt
	msgVerifyLongRaw string
	MsgVerifyLong    = strings.TrimSpace(msgVerifyLongRaw)
)
