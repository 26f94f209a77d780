package service

import (
	"errors"

	"github.com/dashgram/go-client/dashgram/dtos"
)

// ErrMalformedPayload is wrapped into Record errors when the batch cannot be
// serialized. Retrying such a batch can never succeed, so callers should drop
// it instead.
var ErrMalformedPayload = errors.New("event batch could not be serialized")

// DeliveryReport describes the outcome of a successful delivery attempt.
// Rejected holds the events the backend refused, in their original order.
type DeliveryReport struct {
	BatchID  string
	Rejected []dtos.EventDTO
}

// EventsRecorder interface to post event bulks to the backend
type EventsRecorder interface {
	Record(events []dtos.EventDTO) (*DeliveryReport, error)
}
