package tasks

import (
	"fmt"
	"sync"
	"time"

	"github.com/splitio/go-toolkit/v5/logging"
)

// AsyncTask is a struct that wraps tasks that should run periodically and can be remotely stopped & started,
// as well as making it's status (running/stopped) available.
type AsyncTask struct {
	task       func(l logging.LoggerInterface) error
	name       string
	running    bool
	stopped    bool
	started    bool
	period     time.Duration
	onStop     func(l logging.LoggerInterface)
	logger     logging.LoggerInterface
	wakeup     chan struct{}
	stopSignal chan struct{}
	finished   chan struct{}
	mutex      sync.Mutex
}

// Start initiates the task. It wraps each execution in a closure guarded by a call to recover() in order
// to prevent the main application from crashing if something goes wrong while the client interacts with the backend.
func (t *AsyncTask) Start() {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.running || t.stopped {
		if t.logger != nil {
			t.logger.Warning(fmt.Sprintf("Task %s is already running or was stopped. Aborting new execution.", t.name))
		}
		return
	}
	t.running = true
	t.started = true

	go func() {
		defer close(t.finished)
		for {
			t.execute()

			timer := time.NewTimer(t.period)
			select {
			case <-t.stopSignal:
				timer.Stop()
				if t.onStop != nil {
					t.onStop(t.logger)
				}
				return
			case <-t.wakeup:
				timer.Stop()
			case <-timer.C:
			}
		}
	}()
}

func (t *AsyncTask) execute() {
	defer func() {
		if r := recover(); r != nil {
			if t.logger != nil {
				t.logger.Error(fmt.Sprintf("AsyncTask %s is panicking! Skipping this execution: %v", t.name, r))
			}
		}
	}()

	err := t.task(t.logger)
	if err != nil && t.logger != nil {
		t.logger.Error(err.Error())
	}
}

// Stop prevents future executions of the task. If blocking is set, it waits
// until the task loop has fully wound down, onStop included.
func (t *AsyncTask) Stop(blocking bool) {
	t.mutex.Lock()
	if t.running {
		t.running = false
		t.stopped = true
		close(t.stopSignal)
	}
	started := t.started
	t.mutex.Unlock()

	if blocking && started {
		<-t.finished
	}
}

// WakeUp interrupts the current wait and triggers an immediate execution of the task
func (t *AsyncTask) WakeUp() {
	// Non blocking select, a pending wakeup already covers this one
	select {
	case t.wakeup <- struct{}{}:
	default:
	}
}

// IsRunning returns true if the task is currently running
func (t *AsyncTask) IsRunning() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.running
}

// NewAsyncTask creates a new task and returns a pointer to it
func NewAsyncTask(
	name string,
	task func(l logging.LoggerInterface) error,
	period time.Duration,
	onStop func(l logging.LoggerInterface),
	logger logging.LoggerInterface,
) *AsyncTask {
	return &AsyncTask{
		name:       name,
		task:       task,
		period:     period,
		onStop:     onStop,
		logger:     logger,
		wakeup:     make(chan struct{}, 1),
		stopSignal: make(chan struct{}),
		finished:   make(chan struct{}),
	}
}
