package config

import "time"

// UI and Display Constants
const (
	ErrorColor   = 0xFF0000
	SuccessColor = 0x00FF00
	InfoColor    = 0x0099FF
	WarningColor = 0xFFAA00

	EmbedDefaultColor = 0x2B2D31

	CodesPerPage = 10
)

// Confession Flow Constants
const (
	// Minimum gap between accepted confessions per (author, guild) pair.
	ConfessionCooldown = 30 * time.Second

	// How far back replies search a channel for the original confession.
	// Older confessions become unlinkable; replies still get delivered.
	HistoryScanDepth = 100

	// Cap on guild choices offered when a DM could target several servers.
	MaxGuildChoices = 5

	// How long a guild selection prompt stays actionable.
	SelectTimeout = 60 * time.Second

	MessageCacheSize = 256
)

// Timeouts
const (
	DMHandlerTimeout        = 15 * time.Second
	CommandExecutionTimeout = 10 * time.Second
	SessionCleanupInterval  = 30 * time.Second
)
