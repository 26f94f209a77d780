package tasks

import (
	"time"

	"github.com/splitio/go-toolkit/v5/logging"
)

// Flusher is the single entry point the periodic task uses to drain the
// events queue. The implementation coalesces concurrent triggers, so a timer
// tick landing while a forced flush is in flight joins it instead of posting
// a duplicate bulk.
type Flusher interface {
	Flush() error
}

// NewRecordEventsTask creates a new events recording task
func NewRecordEventsTask(
	flusher Flusher,
	period time.Duration,
	logger logging.LoggerInterface,
) *AsyncTask {
	record := func(logger logging.LoggerInterface) error {
		return flusher.Flush()
	}

	return NewAsyncTask("SubmitEvents", record, period, nil, logger)
}
