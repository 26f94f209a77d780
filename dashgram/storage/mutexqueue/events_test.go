package mutexqueue

import (
	"strconv"
	"testing"

	"github.com/dashgram/go-client/dashgram/dtos"
	"github.com/splitio/go-toolkit/v5/logging"
)

func makeEvent(i int) dtos.EventDTO {
	return dtos.EventDTO{
		Name:       "EV" + strconv.Itoa(i),
		Timestamp:  int64(i),
		SequenceID: int64(i),
		Level:      2,
	}
}

func TestMQEventsStorageOrdering(t *testing.T) {
	logger := logging.NewLogger(&logging.LoggerOptions{})
	isFull := make(chan bool, 1)
	queue := NewMQEventsStorage(20, 15, isFull, logger, nil)

	if queue.Count() != 0 {
		t.Error("Queue count error")
	}
	if !queue.Empty() {
		t.Error("Queue empty error")
	}

	for i := 0; i < 10; i++ {
		if err := queue.Push(makeEvent(i)); err != nil {
			t.Error("Error pushing element into queue")
		}
	}

	if queue.Count() != 10 {
		t.Error("Queue count error")
	}
	if queue.Empty() {
		t.Error("Queue empty error")
	}

	events := queue.PeekN(25)
	if len(events) != 10 {
		t.Error("PeekN should return everything queued when asked for more")
	}
	for i := 0; i < len(events); i++ {
		if events[i].Name != "EV"+strconv.Itoa(i) {
			t.Error("Event order not preserved")
		}
		if events[i].SequenceID != int64(i) {
			t.Error("SequenceID error")
		}
	}

	// Peeking must not mutate the queue
	if queue.Count() != 10 {
		t.Error("PeekN should not remove events")
	}

	removed := queue.RemoveUpTo(events[4].SequenceID)
	if removed != 5 {
		t.Error("RemoveUpTo should have removed 5 events, removed", removed)
	}
	remaining := queue.PeekN(25)
	if len(remaining) != 5 || remaining[0].Name != "EV5" {
		t.Error("RemoveUpTo removed the wrong events")
	}
}

func TestMQEventsStorageMaxSizeEvictsOldest(t *testing.T) {
	logger := logging.NewLogger(&logging.LoggerOptions{})
	isFull := make(chan bool, 1)
	maxSize := 10

	evicted := make([]dtos.EventDTO, 0)
	queue := NewMQEventsStorage(maxSize, maxSize, isFull, logger, func(e dtos.EventDTO) {
		evicted = append(evicted, e)
	})

	for i := 0; i < maxSize; i++ {
		if err := queue.Push(makeEvent(i)); err != nil {
			t.Error("Error pushing element into queue")
		}
	}

	// The queue is full, the next pushes must evict EV0 and EV1
	if err := queue.Push(makeEvent(10)); err != ErrorOldestEvicted {
		t.Error("Error reporting eviction")
	}
	if err := queue.Push(makeEvent(11)); err != ErrorOldestEvicted {
		t.Error("Error reporting eviction")
	}

	if queue.Count() != maxSize {
		t.Error("Queue should never exceed its maximum size")
	}

	if len(evicted) != 2 || evicted[0].Name != "EV0" || evicted[1].Name != "EV1" {
		t.Error("The oldest events should be the evicted ones", evicted)
	}

	events := queue.PeekN(maxSize)
	if events[0].Name != "EV2" || events[len(events)-1].Name != "EV11" {
		t.Error("Eviction should drop from the front only")
	}
}

func TestMQEventsStorageFlushThresholdSignal(t *testing.T) {
	logger := logging.NewLogger(&logging.LoggerOptions{})
	isFull := make(chan bool, 1)
	queue := NewMQEventsStorage(100, 3, isFull, logger, nil)

	queue.Push(makeEvent(0))
	queue.Push(makeEvent(1))
	select {
	case <-isFull:
		t.Error("Signal sent before reaching the threshold")
	default:
	}

	queue.Push(makeEvent(2))
	select {
	case <-isFull:
	default:
		t.Error("Signal should have been sent when reaching the threshold")
	}
}

func TestMQEventsStorageRequeue(t *testing.T) {
	logger := logging.NewLogger(&logging.LoggerOptions{})
	isFull := make(chan bool, 1)
	queue := NewMQEventsStorage(10, 10, isFull, logger, nil)

	queue.Push(makeEvent(5))
	queue.Push(makeEvent(6))

	// Requeue a rejected subset, it must land at the head keeping its order
	queue.Requeue([]dtos.EventDTO{makeEvent(1), makeEvent(3)})

	events := queue.PeekN(10)
	expected := []string{"EV1", "EV3", "EV5", "EV6"}
	if len(events) != len(expected) {
		t.Error("Wrong queue length after requeue")
	}
	for i, name := range expected {
		if events[i].Name != name {
			t.Error("Requeue broke ordering, got", events[i].Name, "want", name)
		}
	}
}

func TestMQEventsStorageRemoveUpToSurvivesEviction(t *testing.T) {
	logger := logging.NewLogger(&logging.LoggerOptions{})
	isFull := make(chan bool, 1)
	queue := NewMQEventsStorage(3, 3, isFull, logger, nil)

	queue.Push(makeEvent(0))
	queue.Push(makeEvent(1))
	queue.Push(makeEvent(2))

	// Snapshot would be [EV0 EV1 EV2]. A new push evicts EV0 while in flight.
	queue.Push(makeEvent(3))

	// Removing the delivered snapshot must not touch EV3
	queue.RemoveUpTo(2)
	events := queue.PeekN(3)
	if len(events) != 1 || events[0].Name != "EV3" {
		t.Error("Events enqueued during the in-flight send were removed", events)
	}
}

func TestMQEventsStorageClear(t *testing.T) {
	logger := logging.NewLogger(&logging.LoggerOptions{})
	queue := NewMQEventsStorage(10, 10, make(chan bool, 1), logger, nil)

	queue.Push(makeEvent(0))
	queue.Push(makeEvent(1))

	if dropped := queue.Clear(); dropped != 2 {
		t.Error("Clear should report how many events were discarded")
	}
	if !queue.Empty() {
		t.Error("Queue should be empty after Clear")
	}
}
