// Package client contains implementations of the Dashgram client and the
// factory used to instantiate it.
package client

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dashgram/go-client/dashgram"
	"github.com/dashgram/go-client/dashgram/conf"
	"github.com/dashgram/go-client/dashgram/dtos"
	"github.com/dashgram/go-client/dashgram/service"
	"github.com/dashgram/go-client/dashgram/service/api"
	"github.com/dashgram/go-client/dashgram/storage"
	"github.com/dashgram/go-client/dashgram/storage/mutexqueue"
	"github.com/dashgram/go-client/dashgram/synchronizer"
	"github.com/dashgram/go-client/dashgram/tasks"
	"github.com/splitio/go-toolkit/v5/logging"
)

const (
	statusUninitialized = iota
	statusInitializing
	statusReady
	statusShuttingDown
)

type flushOperation struct {
	done chan struct{}
	err  error
}

// Factory is responsible for instantiating the client and owning its
// lifecycle: it wires the queue, the delivery path and the periodic flush
// task together, and tears everything down on Destroy.
type Factory struct {
	projectID    string
	cfg          *conf.Config
	metadata     dashgram.ClientMetadata
	logger       logging.LoggerInterface
	status       atomic.Value
	statusMutex  sync.Mutex
	trackLevel   int32
	sequence     int64
	eventStorage storage.EventStorage
	recorder     service.EventsRecorder
	eventSync    *synchronizer.EventSynchronizer
	task         *tasks.AsyncTask
	fullChan     chan bool
	shutdownChan chan struct{}
	flushMutex   sync.Mutex
	inflight     *flushOperation
}

// NewFactory instantiates a new Factory and starts the periodic flush task.
// It fails fast when the projectID is empty or the config is invalid; in that
// case no background state is left behind.
func NewFactory(projectID string, cfg *conf.Config) (*Factory, error) {
	if cfg == nil {
		cfg = conf.Default()
	}
	if err := conf.Normalize(projectID, cfg); err != nil {
		return nil, err
	}

	logger := setupLogger(cfg)

	f := &Factory{
		projectID: projectID,
		cfg:       cfg,
		logger:    logger,
		metadata: dashgram.ClientMetadata{
			SDKVersion:  "go-" + dashgram.Version,
			MachineIP:   cfg.IPAddress,
			MachineName: cfg.InstanceName,
		},
		trackLevel:   int32(cfg.TrackLevel),
		fullChan:     make(chan bool, 1),
		shutdownChan: make(chan struct{}),
	}
	f.status.Store(statusInitializing)

	f.eventStorage = mutexqueue.NewMQEventsStorage(
		cfg.Advanced.QueueSize,
		cfg.Advanced.BatchSize,
		f.fullChan,
		logger,
		func(evicted dtos.EventDTO) {
			f.reportError(fmt.Errorf("events queue is full, dropped oldest event %q (sequence %d)", evicted.Name, evicted.SequenceID))
		},
	)
	f.recorder = api.NewHTTPEventsRecorder(
		projectID,
		cfg.Advanced.EventsURL,
		cfg.Advanced.HTTPTimeout,
		&f.metadata,
		logger,
	)
	f.eventSync = synchronizer.NewEventSynchronizer(
		f.eventStorage,
		f.recorder,
		cfg.Advanced.BatchSize,
		cfg.Advanced.MaxRetries,
		cfg.Advanced.RetryBackoffBase,
		cfg.Advanced.RetryBackoffMax,
		logger,
		f.reportError,
	)
	f.task = tasks.NewRecordEventsTask(flusherFunc(f.performFlush), cfg.FlushInterval, logger)
	f.task.Start()
	go f.watchQueueThreshold()

	setFactory(projectID, logger)
	f.status.Store(statusReady)
	return f, nil
}

// flusherFunc adapts a plain function to the tasks.Flusher interface
type flusherFunc func() error

func (f flusherFunc) Flush() error { return f() }

// Client returns the Dashgram client instantiated by the factory
func (f *Factory) Client() *DashgramClient {
	return &DashgramClient{
		logger:    f.logger,
		events:    f.eventStorage,
		validator: inputValidation{logger: f.logger},
		factory:   f,
	}
}

// IsReady returns true if the factory is ready
func (f *Factory) IsReady() bool {
	return f.status.Load() == statusReady
}

// IsDestroyed returns true if the factory has been shut down
func (f *Factory) IsDestroyed() bool {
	status := f.status.Load()
	return status == statusShuttingDown || status == statusUninitialized
}

// watchQueueThreshold wakes the flush task as soon as the queue holds a full
// batch, so delivery does not wait for the next timer tick.
func (f *Factory) watchQueueThreshold() {
	for {
		select {
		case <-f.shutdownChan:
			return
		case <-f.fullChan:
			f.logger.Debug("Events queue reached the batch threshold, waking up the flush task")
			f.task.WakeUp()
		}
	}
}

// performFlush runs a full drain of the queue, coalescing concurrent callers:
// whoever finds a flush already in flight waits for it and shares its result
// instead of issuing a parallel duplicate delivery.
func (f *Factory) performFlush() error {
	f.flushMutex.Lock()
	if op := f.inflight; op != nil {
		f.flushMutex.Unlock()
		<-op.done
		return op.err
	}
	op := &flushOperation{done: make(chan struct{})}
	f.inflight = op
	f.flushMutex.Unlock()

	op.err = f.eventSync.FlushAll()

	f.flushMutex.Lock()
	f.inflight = nil
	f.flushMutex.Unlock()
	close(op.done)
	return op.err
}

// Flush forces a delivery attempt of everything queued and blocks until that
// attempt finishes, successfully or not.
func (f *Factory) Flush() error {
	if f.IsDestroyed() {
		return errors.New("Flush: the client has been destroyed")
	}
	return f.performFlush()
}

// TrackLevel returns the level currently applied to Track calls
func (f *Factory) TrackLevel() int {
	return int(atomic.LoadInt32(&f.trackLevel))
}

func (f *Factory) setTrackLevel(level int) {
	atomic.StoreInt32(&f.trackLevel, int32(level))
}

func (f *Factory) nextSequenceID() int64 {
	return atomic.AddInt64(&f.sequence, 1)
}

// reportError forwards an absorbed failure to the user-supplied OnError
// callback. A panicking callback must not take the client down with it.
func (f *Factory) reportError(err error) {
	if f.cfg.OnError == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error(fmt.Sprintf("OnError callback panicked: %v", r))
		}
	}()
	f.cfg.OnError(err)
}

// Destroy stops the flush task, performs one final best-effort flush bounded
// by ShutdownTimeout, and discards whatever remains queued. It is safe to call
// multiple times; only the first call has any effect.
func (f *Factory) Destroy() {
	f.statusMutex.Lock()
	if f.IsDestroyed() {
		f.statusMutex.Unlock()
		return
	}
	f.status.Store(statusShuttingDown)
	f.statusMutex.Unlock()

	removeInstanceFromTracker(f.projectID)
	f.task.Stop(false)

	flushDone := make(chan error, 1)
	go func() {
		flushDone <- f.performFlush()
	}()
	select {
	case err := <-flushDone:
		if err != nil {
			f.logger.Warning("Final flush finished with error: ", err.Error())
		}
	case <-time.After(f.cfg.Advanced.ShutdownTimeout):
		timeoutErr := fmt.Errorf("shutdown: final flush exceeded %s, abandoning delivery", f.cfg.Advanced.ShutdownTimeout)
		f.logger.Error(timeoutErr.Error())
		f.reportError(timeoutErr)
	}

	if dropped := f.eventStorage.Clear(); dropped > 0 {
		dropErr := fmt.Errorf("shutdown: %d undelivered events discarded", dropped)
		f.logger.Warning(dropErr.Error())
		f.reportError(dropErr)
	}

	close(f.shutdownChan)
	f.status.Store(statusUninitialized)
}

// setupLogger sets up the logger according to the parameters submitted by the user
func setupLogger(cfg *conf.Config) logging.LoggerInterface {
	if cfg.Logger != nil {
		// If a custom logger is supplied, use it.
		return cfg.Logger
	}
	if cfg.LoggerConfig.LogLevel == 0 {
		if cfg.Debug {
			cfg.LoggerConfig.LogLevel = logging.LevelDebug
		} else {
			cfg.LoggerConfig.LogLevel = logging.LevelError
		}
	}
	return logging.NewLogger(&cfg.LoggerConfig)
}
