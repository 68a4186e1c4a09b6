// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-session application behavior.
const (
	CliColored   = "cli.colored"
	IconsVariant = "icons.variant"
)

// Profiles - the active profile selects which persisted state is loaded.
const (
	ProfileName = "profile.name"
)

// Position History - these keys configure the bounded position cache and its persistence.
const (
	HistoryCapacity       = "history.capacity"
	HistoryLowMemory      = "history.low_memory"
	HistoryPersistDelayMs = "history.persist_delay_ms"
)

// Playback Queue.
const (
	QueueMaxSize = "queue.max_size"
)

// Media Engine - these keys maintain the configuration of the external player.
const (
	Player       = "player.default"
	PlayerTickMs = "player.tick_ms"
)

// Display Synchronization - these keys govern refresh-rate and resolution switching around playback.
const (
	DisplayAutoSync          = "display.auto_sync"
	DisplayPauseMs           = "display.pause_ms"
	DisplayApplyDelayMs      = "display.apply_delay_ms"
	DisplayRestoreDelayMs    = "display.restore_delay_ms"
	DisplaySkipShorts        = "display.skip_shorts"
	DisplayResolutionSwitch  = "display.resolution_switch"
	DisplayFpsCorrection     = "display.fps_correction"
	DisplayDoubleRefreshRate = "display.double_refresh_rate"
	DisplaySkip24Rate        = "display.skip_24_rate"
)

// Session Add-ons - these keys toggle the optional network-backed controllers.
const (
	SegmentsEnable     = "segments.enable"
	SegmentsCategories = "segments.categories"
	SegmentsURL        = "segments.url"
	ChatEnable         = "chat.enable"
	ChatBlacklist      = "chat.blacklist"
	CommentsEnable     = "comments.enable"
)
