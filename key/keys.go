// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Provider - the podcast host being scraped.
const (
	ProviderBaseURL = "provider.base_url"
)

// Network - HTTP client behaviour for page requests.
const (
	NetworkUserAgent = "network.user_agent"
	NetworkTimeout   = "network.timeout"
)

// Download - audio and sidecar writing.
const (
	DownloadTimeout   = "download.timeout"
	DownloadPause     = "download.pause"
	DownloadOverwrite = "download.overwrite"
)

// History - record of completed downloads.
const (
	HistoryWrite = "history.write"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment.
const (
	CliColored = "cli.colored"
)
