// Package conf contains configuration structures used to setup the client
package conf

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/splitio/go-toolkit/v5/datastructures/set"
	"github.com/splitio/go-toolkit/v5/logging"
	"github.com/splitio/go-toolkit/v5/nethelpers"
)

// Config struct used to setup a Dashgram client.
//
// Parameters:
// - TrackLevel (Optional) Initial verbosity level (1-3). Can be changed at runtime through the client.
// - FlushInterval (Optional) How often queued events are submitted to the backend
// - Debug (Optional) Raises the built-in logger to debug level and reports dropped events
// - Disabled (Optional) Master kill switch. When set, every Track call is rejected
// - OnError (Optional) Callback invoked with every absorbed failure (overflow, delivery errors, shutdown timeout)
// - InstanceName (Optional) Name to be used when submitting events to Dashgram servers
// - IPAddress (Optional) Address to be used when submitting events to Dashgram servers
// - Logger (Optional) Custom logger complying with logging.LoggerInterface
// - LoggerConfig (Optional) Options to setup the client's own logger
// - Advanced (Optional) Sets up various advanced options for the client
type Config struct {
	TrackLevel    int
	FlushInterval time.Duration
	Debug         bool
	Disabled      bool
	OnError       func(error)
	InstanceName  string
	IPAddress     string
	Logger        logging.LoggerInterface
	LoggerConfig  logging.LoggerOptions
	Advanced      AdvancedConfig
}

// AdvancedConfig exposes more configurable parameters that can be used to further tailor the client to the user's needs
// - EventsURL - Override of the events endpoint, mainly for proxies and testing
// - HTTPTimeout - Timeout for HTTP requests when submitting bulks
// - BatchSize - Maximum amount of events submitted in a single delivery attempt
// - QueueSize - How many events can be held in memory before the oldest ones are evicted
// - MaxRetries - How many times a transiently failed delivery is retried before giving up
// - RetryBackoffBase - Initial wait between retries, doubled on every attempt
// - RetryBackoffMax - Cap applied to the doubling backoff
// - ShutdownTimeout - Upper bound for the final flush performed on Destroy
type AdvancedConfig struct {
	EventsURL        string
	HTTPTimeout      time.Duration
	BatchSize        int
	QueueSize        int
	MaxRetries       int
	RetryBackoffBase time.Duration
	RetryBackoffMax  time.Duration
	ShutdownTimeout  time.Duration
}

// Default returns a config struct with all the default values
func Default() *Config {
	ipAddress, err := nethelpers.ExternalIP()
	if err != nil {
		ipAddress = "unknown"
	}

	return &Config{
		TrackLevel:    defaultTrackLevel,
		FlushInterval: defaultFlushInterval,
		IPAddress:     ipAddress,
		InstanceName:  fmt.Sprintf("ip-%s", strings.Replace(ipAddress, ".", "-", -1)),
		Logger:        nil,
		LoggerConfig:  logging.LoggerOptions{},
		Advanced: AdvancedConfig{
			EventsURL:        defaultEventsURL,
			HTTPTimeout:      defaultHTTPTimeout,
			BatchSize:        defaultBatchSize,
			QueueSize:        defaultQueueSize,
			MaxRetries:       defaultMaxRetries,
			RetryBackoffBase: defaultRetryBackoff,
			RetryBackoffMax:  defaultMaxRetryBackoff,
			ShutdownTimeout:  defaultShutdownTimeout,
		},
	}
}

// Normalize checks that the parameters passed by the user are correct and updates parameters if necessary.
// returns an error if something is wrong
func Normalize(projectID string, cfg *Config) error {
	// Fail if no project id is provided
	if strings.TrimSpace(projectID) == "" {
		return errors.New("Factory instantiation: you passed an empty projectID, projectID must be a non-empty string")
	}

	if cfg == nil {
		return errors.New("Factory instantiation: config cannot be nil, use conf.Default() as a starting point")
	}

	trackLevels := set.NewSet(1, 2, 3)
	if cfg.TrackLevel == 0 {
		cfg.TrackLevel = defaultTrackLevel
	}
	if !trackLevels.Has(cfg.TrackLevel) {
		return fmt.Errorf("TrackLevel parameter must be one of: %v", trackLevels.List())
	}

	if cfg.FlushInterval < 0 {
		return errors.New("FlushInterval parameter must be a positive duration")
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = defaultFlushInterval
	}

	if cfg.Advanced.BatchSize < 0 || cfg.Advanced.QueueSize < 0 {
		return errors.New("BatchSize and QueueSize parameters must be positive integers")
	}
	if cfg.Advanced.BatchSize == 0 {
		cfg.Advanced.BatchSize = defaultBatchSize
	}
	if cfg.Advanced.QueueSize == 0 {
		cfg.Advanced.QueueSize = defaultQueueSize
	}
	if cfg.Advanced.BatchSize > cfg.Advanced.QueueSize {
		cfg.Advanced.BatchSize = cfg.Advanced.QueueSize
	}

	if cfg.Advanced.EventsURL == "" {
		cfg.Advanced.EventsURL = defaultEventsURL
	}
	if cfg.Advanced.HTTPTimeout == 0 {
		cfg.Advanced.HTTPTimeout = defaultHTTPTimeout
	}
	if cfg.Advanced.MaxRetries == 0 {
		cfg.Advanced.MaxRetries = defaultMaxRetries
	}
	if cfg.Advanced.RetryBackoffBase <= 0 {
		cfg.Advanced.RetryBackoffBase = defaultRetryBackoff
	}
	if cfg.Advanced.RetryBackoffMax < cfg.Advanced.RetryBackoffBase {
		cfg.Advanced.RetryBackoffMax = defaultMaxRetryBackoff
	}
	if cfg.Advanced.ShutdownTimeout <= 0 {
		cfg.Advanced.ShutdownTimeout = defaultShutdownTimeout
	}

	return nil
}
