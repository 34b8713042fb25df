// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Provider Registry - these keys control which providers take part in catalog aggregation.
const (
	ProvidersDisabled = "providers.disabled"
	ProvidersCustom   = "providers.custom"
	ProvidersCacheTTL = "providers.cache_ttl_minutes"
)

// Catalog Aggregation - these keys tune the catalog builder and its memoization.
const (
	CatalogCacheSize         = "catalog.cache_size"
	CatalogFilterSuggestions = "catalog.filter_suggestions"
)

// Availability Probing - these keys configure the bounded retry policy of the prober.
const (
	ProbeAttempts       = "probe.attempts"
	ProbeBaseDelay      = "probe.base_delay_ms"
	ProbeTimeout        = "probe.timeout_ms"
	ProbeConcurrency    = "probe.concurrency"
	ProbeFailOpen       = "probe.fail_open"
	ProbeTLSFingerprint = "probe.tls_fingerprint"
)

// Retrieval Lifecycle - these keys govern the tick driver of every retrieval instance.
const (
	LifecycleTickInterval = "lifecycle.tick_interval_ms"
	LifecycleIncrementMin = "lifecycle.increment_min"
	LifecycleIncrementMax = "lifecycle.increment_max"
	LifecycleProbeOnStart = "lifecycle.probe_on_start"
)

// History Tracking - these keys configure the persistence of completion events.
const (
	HistorySaveOnComplete = "history.save_on_complete"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Terminal User Interface (TUI) - these keys define the retrieval dashboard.
const (
	TUIShowLocators = "tui.show_locators"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-TUI application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
