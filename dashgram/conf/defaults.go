package conf

import "time"

const (
	defaultTrackLevel      = 2
	defaultBatchSize       = 50
	defaultQueueSize       = 1000
	defaultFlushInterval   = 5 * time.Second
	defaultHTTPTimeout     = 30 * time.Second
	defaultMaxRetries      = 3
	defaultRetryBackoff    = 500 * time.Millisecond
	defaultMaxRetryBackoff = 8 * time.Second
	defaultShutdownTimeout = 3 * time.Second
	defaultEventsURL       = "https://events.dashgram.io/api"
)
