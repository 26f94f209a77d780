package mutexqueue

import (
	"container/list"
	"errors"
	"sync"

	"github.com/dashgram/go-client/dashgram/dtos"
	"github.com/splitio/go-toolkit/v5/logging"
)

// ErrorOldestEvicted is returned by Push when admitting the new event forced
// the oldest queued one out. The new event is stored regardless; the error is
// a report, not a rejection.
var ErrorOldestEvicted = errors.New("Queue max size has been reached, oldest event evicted")

// NewMQEventsStorage returns an instance of MQEventsStorage
func NewMQEventsStorage(
	queueSize int,
	flushThreshold int,
	isFull chan<- bool,
	logger logging.LoggerInterface,
	onEvict func(dtos.EventDTO),
) *MQEventsStorage {
	return &MQEventsStorage{
		queue:          list.New(),
		size:           queueSize,
		flushThreshold: flushThreshold,
		mutexQueue:     &sync.Mutex{},
		fullChan:       isFull,
		logger:         logger,
		onEvict:        onEvict,
	}
}

// MQEventsStorage in memory events storage. FIFO order is preserved; when the
// queue is at capacity the oldest event is dropped in favor of the new one.
type MQEventsStorage struct {
	queue          *list.List
	size           int
	flushThreshold int
	mutexQueue     *sync.Mutex
	fullChan       chan<- bool // only write channel
	logger         logging.LoggerInterface
	onEvict        func(dtos.EventDTO)
}

func (s *MQEventsStorage) sendSignalIsFull() {
	// Non blocking select
	select {
	case s.fullChan <- true:
		// Send "queue reached flush threshold" signal
		break
	default:
		break
	}
}

// Push appends an event at the back of the queue. When the queue is already at
// capacity the front (oldest) event is evicted and ErrorOldestEvicted returned.
func (s *MQEventsStorage) Push(event dtos.EventDTO) error {
	s.mutexQueue.Lock()
	defer s.mutexQueue.Unlock()

	var err error
	if s.queue.Len()+1 > s.size {
		evicted := s.queue.Remove(s.queue.Front()).(dtos.EventDTO)
		if s.logger != nil {
			s.logger.Warning("Events queue is full, dropping oldest event", evicted.Name)
		}
		if s.onEvict != nil {
			s.onEvict(evicted)
		}
		err = ErrorOldestEvicted
	}

	s.queue.PushBack(event)

	if s.flushThreshold > 0 && s.queue.Len() >= s.flushThreshold {
		s.sendSignalIsFull()
	}

	return err
}

// PeekN returns up to n events from the front of the queue without removing
// them, preserving insertion order.
func (s *MQEventsStorage) PeekN(n int) []dtos.EventDTO {
	s.mutexQueue.Lock()
	defer s.mutexQueue.Unlock()

	totalItems := n
	if s.queue.Len() < totalItems {
		totalItems = s.queue.Len()
	}

	toReturn := make([]dtos.EventDTO, 0, totalItems)
	current := s.queue.Front()
	for i := 0; i < totalItems; i++ {
		toReturn = append(toReturn, current.Value.(dtos.EventDTO))
		current = current.Next()
	}

	return toReturn
}

// RemoveUpTo drops every event at the front of the queue whose sequence id is
// lower than or equal to the supplied one, and returns how many were removed.
// Keying the removal on sequence ids keeps a delivered snapshot and the queue
// head consistent even if an eviction happened while the send was in flight.
func (s *MQEventsStorage) RemoveUpTo(sequenceID int64) int {
	s.mutexQueue.Lock()
	defer s.mutexQueue.Unlock()

	removed := 0
	for front := s.queue.Front(); front != nil; front = s.queue.Front() {
		if front.Value.(dtos.EventDTO).SequenceID > sequenceID {
			break
		}
		s.queue.Remove(front)
		removed++
	}
	return removed
}

// Requeue pushes a rejected subset back at the front of the queue keeping its
// relative order. If that overflows capacity, the oldest requeued events are
// the ones given up.
func (s *MQEventsStorage) Requeue(events []dtos.EventDTO) {
	s.mutexQueue.Lock()
	defer s.mutexQueue.Unlock()

	for i := len(events) - 1; i >= 0; i-- {
		s.queue.PushFront(events[i])
	}

	for s.queue.Len() > s.size {
		evicted := s.queue.Remove(s.queue.Front()).(dtos.EventDTO)
		if s.logger != nil {
			s.logger.Warning("Events queue is full, dropping oldest requeued event", evicted.Name)
		}
		if s.onEvict != nil {
			s.onEvict(evicted)
		}
	}
}

// Clear discards everything still queued and returns how many events were dropped
func (s *MQEventsStorage) Clear() int {
	s.mutexQueue.Lock()
	defer s.mutexQueue.Unlock()

	dropped := s.queue.Len()
	s.queue.Init()
	return dropped
}

// Empty returns true if the queue has no events
func (s *MQEventsStorage) Empty() bool {
	s.mutexQueue.Lock()
	defer s.mutexQueue.Unlock()

	return s.queue.Len() == 0
}

// Count returns the number of events in the queue
func (s *MQEventsStorage) Count() int {
	s.mutexQueue.Lock()
	defer s.mutexQueue.Unlock()

	return s.queue.Len()
}
