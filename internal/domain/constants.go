package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Pipeline bounds. These are not configurable.
const (
	// MaxNetworkRetries is the number of same-backend retries after a transient failure.
	MaxNetworkRetries = 1
	// MaxEscalations is the number of Fallback Policy hops per turn.
	MaxEscalations = 1
	// MaxRecoveryAttempts is the number of automatic re-entries after a failed execution.
	MaxRecoveryAttempts = 1
)

// Timeout and duration constants
const (
	DefaultRequestTimeout = 30 * time.Second
	DefaultLocalTimeout   = 120 * time.Second
	DefaultRetryBackoff   = 750 * time.Millisecond
	// DefaultCommandTimeout bounds helper commands such as `git rev-parse`.
	DefaultCommandTimeout = 2 * time.Second
	DefaultBreakerTimeout = 60 * time.Second
)

// Limit constants
const (
	DefaultMaxTokens          = 1024
	DefaultMaxContextFiles    = 20
	DefaultMaxOutputBytes     = 4000
	DefaultMinConfidence      = 0.6
	DefaultBreakerMaxFailures = 3
	DefaultRequestsPerMinute  = 30
	DefaultRateBurst          = 3
)

// History constants
const (
	// DefaultHistoryLimit is the default number of history records to display
	DefaultHistoryLimit = 20
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
)
