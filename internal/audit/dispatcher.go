package audit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	ActionBookingCreated     = "booking_created"
	ActionBookingRescheduled = "booking_rescheduled"
	ActionBookingFailed      = "booking_failed"
	ActionIntegrityError     = "booking_integrity_error"
)

const (
	defaultQueueSize = 100
	recordTimeout    = 5 * time.Second
)

type Event struct {
	Action        string
	SessionID     string
	UserID        string
	BarberID      string
	ServiceID     string
	AppointmentID string
	Metadata      any
}

// Dispatcher records events on a background worker. Dispatch never
// blocks: when the queue is full the event is dropped. A nil Dispatcher
// discards everything.
type Dispatcher struct {
	sink   Sink
	logger *zap.Logger
	queue  chan Event

	once sync.Once
	done chan struct{}
}

func NewDispatcher(sink Sink, logger *zap.Logger, queueSize int) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	d := &Dispatcher{
		sink:   sink,
		logger: logger,
		queue:  make(chan Event, queueSize),
		done:   make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)

	for ev := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		if err := d.sink.Record(ctx, ev); err != nil {
			d.logger.Error("audit record failed",
				zap.String("action", ev.Action),
				zap.String("session_id", ev.SessionID),
				zap.Error(err),
			)
		}
		cancel()
	}
}

func (d *Dispatcher) Dispatch(ev Event) {
	if d == nil {
		return
	}

	select {
	case d.queue <- ev:
	default:
		// never hold up a booking for the trail
		d.logger.Warn("audit queue full, dropping event", zap.String("action", ev.Action))
	}
}

// Close stops accepting events and waits until the queue is drained.
// Dispatch must not be called after Close.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.once.Do(func() { close(d.queue) })
	<-d.done
}
