package client

import (
	"errors"
	"time"

	"github.com/dashgram/go-client/dashgram/dtos"
	"github.com/dashgram/go-client/dashgram/storage"
	"github.com/dashgram/go-client/dashgram/tracklevel"
	"github.com/splitio/go-toolkit/v5/deepcopy"
	"github.com/splitio/go-toolkit/v5/logging"
)

// DashgramClient is the handle producers use to submit events. Track never
// blocks on the network and never panics; at worst an event is dropped and the
// drop is reported.
type DashgramClient struct {
	logger    logging.LoggerInterface
	events    storage.EventStorageProducer
	validator inputValidation
	factory   *Factory
}

// Track submits an event at the standard level (2)
func (c *DashgramClient) Track(eventName string, properties map[string]interface{}) error {
	return c.track(eventName, tracklevel.Standard, properties)
}

// TrackWithLevel submits an event that requires the given track level
func (c *DashgramClient) TrackWithLevel(level int, eventName string, properties map[string]interface{}) error {
	return c.track(eventName, level, properties)
}

func (c *DashgramClient) track(eventName string, level int, properties map[string]interface{}) error {
	if c.IsDestroyed() {
		c.logger.Error("Client has already been destroyed - no calls possible")
		return errors.New("Track: the client has been destroyed, event dropped")
	}
	if !c.factory.IsReady() {
		c.logger.Debug("Track: client not ready yet, dropping event ", eventName)
		return nil
	}
	if c.factory.cfg.Disabled {
		c.logger.Debug("Track: client is disabled, dropping event ", eventName)
		return nil
	}

	if err := c.validator.ValidateTrackInputs(eventName, level); err != nil {
		c.logger.Error(err.Error())
		return err
	}

	if !tracklevel.Admit(level, c.factory.TrackLevel()) {
		c.logger.Debug("Track: event filtered out by track level ", eventName)
		return nil
	}

	event := dtos.EventDTO{
		Name:       eventName,
		Timestamp:  time.Now().UnixMilli(),
		SequenceID: c.factory.nextSequenceID(),
		Level:      level,
	}
	if properties != nil {
		// Snapshot the caller's map so later mutations cannot leak into the queue
		if copied, ok := deepcopy.Copy(properties).(map[string]interface{}); ok {
			event.Properties = copied
		} else {
			event.Properties = properties
		}
	}

	// An eviction on overflow is already reported through the storage callback
	_ = c.events.Push(event)
	return nil
}

// Flush forces a delivery attempt of everything queued at call time and
// blocks until it completes. Concurrent calls share a single in-flight drain.
func (c *DashgramClient) Flush() error {
	return c.factory.Flush()
}

// SetTrackLevel changes the verbosity gate for all subsequent Track calls.
// Already queued events are not re-filtered.
func (c *DashgramClient) SetTrackLevel(level int) error {
	if !tracklevel.Valid(level) {
		err := errors.New("SetTrackLevel: level must be 1, 2 or 3")
		c.logger.Error(err.Error())
		return err
	}
	c.factory.setTrackLevel(level)
	return nil
}

// GetTrackLevel returns the level currently applied to Track calls
func (c *DashgramClient) GetTrackLevel() int {
	return c.factory.TrackLevel()
}

// Destroy the client instance
func (c *DashgramClient) Destroy() {
	c.factory.Destroy()
}

// IsDestroyed returns true if the client has been destroyed
func (c *DashgramClient) IsDestroyed() bool {
	return c.factory.IsDestroyed()
}
