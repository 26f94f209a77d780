package storage

import (
	"github.com/dashgram/go-client/dashgram/dtos"
)

// EventStorageProducer interface used by the tracking path to admit events
type EventStorageProducer interface {
	Push(event dtos.EventDTO) error
	Count() int
}

// EventStorageConsumer interface used by the flush path to drain events
type EventStorageConsumer interface {
	PeekN(n int) []dtos.EventDTO
	RemoveUpTo(sequenceID int64) int
	Requeue(events []dtos.EventDTO)
	Clear() int
	Count() int
	Empty() bool
}

// EventStorage is the composition of both tracking-side and flush-side views
type EventStorage interface {
	EventStorageProducer
	EventStorageConsumer
}
