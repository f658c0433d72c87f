package config

import "time"

// Default values for configuration.
const (
	// Server defaults
	DefaultServerHost      = "0.0.0.0"
	DefaultServerPort      = 8080
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultMaxUploadSizeMB = 10

	// Analytics defaults
	DefaultTopMembers      = 10
	DefaultCacheTTL        = 60 * time.Minute
	DefaultCleanupInterval = 1 * time.Hour

	// Bot defaults
	DefaultExcelThreshold      = 30
	DefaultHTTPTimeout         = 30 * time.Second
	DefaultNameColumnWidth     = 22
	DefaultMessagesColumnWidth = 8
	DefaultShareColumnWidth    = 6

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)
