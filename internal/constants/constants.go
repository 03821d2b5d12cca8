package constants

import "time"

// BuilderVersion is stamped onto every saved draft.
const BuilderVersion = "2.3.0"

const (
	SaveDebounce     = 1000 * time.Millisecond
	SaveMaxRetries   = 3
	SaveRetryBackoff = 250 * time.Millisecond
	SaveRetryCap     = 5 * time.Second
)

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	DBMaxOpenConns    = 1
	DBMaxIdleConns    = 1
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBatchSize       = 100
)

const (
	ShutdownTimeout = 5 * time.Second
)
