// Package synchronizer implements the delivery side of the client: draining
// the events queue into the backend with bounded retries.
package synchronizer

import (
	"errors"
	"fmt"
	"time"

	"github.com/dashgram/go-client/dashgram/dtos"
	"github.com/dashgram/go-client/dashgram/service"
	"github.com/dashgram/go-client/dashgram/storage"
	"github.com/splitio/go-toolkit/v5/logging"
)

// ErrRetriesExhausted is returned when a transiently failing batch ran out of
// retry budget. The affected events remain queued for a future cycle.
var ErrRetriesExhausted = errors.New("event delivery retries exhausted")

// EventSynchronizer submits queued events to the backend one batch at a time.
// It is not safe for concurrent use; callers are expected to serialize cycles
// (the client factory funnels every trigger through a single flush operation).
type EventSynchronizer struct {
	eventStorage  storage.EventStorage
	eventRecorder service.EventsRecorder
	batchSize     int
	maxRetries    int
	backoffBase   time.Duration
	backoffMax    time.Duration
	logger        logging.LoggerInterface
	onError       func(error)
}

// NewEventSynchronizer creates a new EventSynchronizer
func NewEventSynchronizer(
	eventStorage storage.EventStorage,
	eventRecorder service.EventsRecorder,
	batchSize int,
	maxRetries int,
	backoffBase time.Duration,
	backoffMax time.Duration,
	logger logging.LoggerInterface,
	onError func(error),
) *EventSynchronizer {
	return &EventSynchronizer{
		eventStorage:  eventStorage,
		eventRecorder: eventRecorder,
		batchSize:     batchSize,
		maxRetries:    maxRetries,
		backoffBase:   backoffBase,
		backoffMax:    backoffMax,
		logger:        logger,
		onError:       onError,
	}
}

// transient reports whether a delivery failure is worth retrying. Network
// level errors and 5xx responses are; any other HTTP status is not, and
// neither is a batch that could not be serialized in the first place.
func transient(err error) bool {
	if errors.Is(err, service.ErrMalformedPayload) {
		return false
	}
	var httpError *dtos.HTTPError
	if errors.As(err, &httpError) {
		return httpError.Code >= 500
	}
	return true
}

func (e *EventSynchronizer) backoff(attempt int) time.Duration {
	wait := e.backoffBase << uint(attempt)
	if wait <= 0 || wait > e.backoffMax {
		wait = e.backoffMax
	}
	return wait
}

func (e *EventSynchronizer) report(err error) {
	if e.onError != nil {
		e.onError(err)
	}
}

// SynchronizeEvents performs one delivery cycle: it takes a stable snapshot of
// at most batchSize events from the queue head, posts it, and reconciles the
// queue with the outcome. Events enqueued while the post is in flight are
// untouched. Returns nil when the snapshot was fully or partially accepted.
func (e *EventSynchronizer) SynchronizeEvents() error {
	queuedEvents := e.eventStorage.PeekN(e.batchSize)
	if len(queuedEvents) == 0 {
		e.logger.Debug("No events fetched from queue. Nothing to send")
		return nil
	}
	lastSequenceID := queuedEvents[len(queuedEvents)-1].SequenceID

	for attempt := 0; ; attempt++ {
		report, err := e.eventRecorder.Record(queuedEvents)
		if err == nil {
			e.eventStorage.RemoveUpTo(lastSequenceID)
			if report != nil && len(report.Rejected) > 0 {
				e.logger.Warning(fmt.Sprintf(
					"Backend rejected %d of %d events in batch %s, requeuing them",
					len(report.Rejected), len(queuedEvents), report.BatchID,
				))
				e.eventStorage.Requeue(report.Rejected)
			}
			return nil
		}

		if !transient(err) {
			e.eventStorage.RemoveUpTo(lastSequenceID)
			dropErr := fmt.Errorf("dropping batch of %d events after permanent delivery failure: %w", len(queuedEvents), err)
			e.logger.Error(dropErr.Error())
			e.report(dropErr)
			return dropErr
		}

		if attempt >= e.maxRetries {
			exhaustedErr := fmt.Errorf("%w: %d events remain queued: %v", ErrRetriesExhausted, len(queuedEvents), err)
			e.logger.Error(exhaustedErr.Error())
			e.report(exhaustedErr)
			return exhaustedErr
		}

		wait := e.backoff(attempt)
		e.logger.Warning(fmt.Sprintf("Transient delivery failure (%v), retrying in %s", err, wait))
		time.Sleep(wait)
	}
}

// FlushAll drains everything queued at call time, one batch per cycle. It
// stops early when a batch exhausts its retry budget (those events stay
// queued) or when a cycle makes no progress, and keeps going past permanently
// dropped batches.
func (e *EventSynchronizer) FlushAll() error {
	var lastErr error
	for !e.eventStorage.Empty() {
		before := e.eventStorage.Count()
		err := e.SynchronizeEvents()
		if err != nil {
			if errors.Is(err, ErrRetriesExhausted) {
				return err
			}
			// Permanent failure: the batch was dropped, keep draining
			lastErr = err
		}
		if e.eventStorage.Count() >= before {
			break
		}
	}
	return lastErr
}
