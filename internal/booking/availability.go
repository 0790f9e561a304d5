package booking

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/clock"
	"github.com/BruksfildServices01/barber-booking/internal/platform"
	"github.com/BruksfildServices01/barber-booking/internal/timeslot"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

const tickInterval = time.Minute

// availabilityKey is what the availability list depends on. A response is
// applied only while the wizard still points at the same key.
type availabilityKey struct {
	barberID string
	date     string
	duration int
}

type availability struct {
	key     availabilityKey
	times   []string
	loading bool
	// failed marks times as a stand-in for a failed fetch; the next
	// refresh for the same key fetches again.
	failed bool
}

// currentKeyLocked reports the key implied by the selection, false when
// barber, service or date is missing.
func (w *Wizard) currentKeyLocked() (availabilityKey, bool) {
	if w.barber == nil || w.service == nil || !w.hasDate {
		return availabilityKey{}, false
	}
	return availabilityKey{
		barberID: w.barber.ID,
		date:     timezone.DateString(w.date),
		duration: w.service.Duration,
	}, true
}

// refreshAvailability fetches the times for the current selection when
// its key differs from the one already loaded.
func (w *Wizard) refreshAvailability(ctx context.Context) {
	w.mu.Lock()
	key, ok := w.currentKeyLocked()
	switch {
	case !ok:
		w.avail = availability{}
		w.mu.Unlock()
		return
	case key == w.avail.key && (w.avail.loading || (w.avail.times != nil && !w.avail.failed)):
		w.mu.Unlock()
		return
	}
	w.avail = availability{key: key, loading: true}
	w.mu.Unlock()

	w.fetchAvailability(ctx, key)
}

func (w *Wizard) fetchAvailability(ctx context.Context, key availabilityKey) {
	times, err := w.deps.Availability.Availability(ctx, platform.AvailabilityQuery{
		BarberID:        key.barberID,
		Date:            key.date,
		ServiceDuration: key.duration,
	})

	w.mu.Lock()
	defer w.mu.Unlock()

	if cur, ok := w.currentKeyLocked(); !ok || cur != key || w.avail.key != key {
		if w.avail.key == key {
			w.avail = availability{}
		}
		w.deps.Metrics.StaleAvailability()
		w.logger.Debug("dropping stale availability",
			zap.String("barber_id", key.barberID),
			zap.String("date", key.date),
		)
		return
	}

	w.avail.loading = false
	if err != nil {
		w.logger.Warn("availability unavailable",
			zap.String("barber_id", key.barberID),
			zap.String("date", key.date),
			zap.Int("duration", key.duration),
			zap.Error(err),
		)
		w.avail.times = []string{}
		w.avail.failed = true
		w.notifyLocked(NoticeError, "We could not load available times. Please try again.")
	} else {
		if times == nil {
			times = []string{}
		}
		w.avail.times = times
	}

	w.now = w.deps.Clock.Now()
	w.refilterLocked()
	w.syncTickerLocked()
}

// visibleTimesLocked is the list offered to the user: filtered against
// now, then ordered by time of day.
func (w *Wizard) visibleTimesLocked() []string {
	if !w.hasDate || w.avail.times == nil {
		return []string{}
	}
	return timeslot.Sort(timeslot.Filter(w.avail.times, w.date, w.now))
}

// refilterLocked clears a selected time that is no longer offered.
func (w *Wizard) refilterLocked() {
	if w.slot == "" || w.avail.loading {
		return
	}
	if timeslot.Contains(w.visibleTimesLocked(), w.slot) {
		return
	}

	w.logger.Info("selected time no longer available", zap.String("time", w.slot))
	w.slot = ""
	w.notifyLocked(NoticeInfo, "The time you picked is no longer available. Please choose another one.")
}

// ======================================================
// MINUTE TICKER
// ======================================================

// tickScope is the ticker owned by the "on the date/time step with today
// selected" condition.
type tickScope struct {
	ticker clock.Ticker
	stop   chan struct{}
}

func (w *Wizard) tickerWantedLocked() bool {
	return !w.done && !w.closed &&
		w.step == StepDatetime &&
		w.hasDate &&
		timeslot.SameDay(w.date, w.now)
}

// syncTickerLocked starts or stops the ticker so that it runs exactly
// while tickerWantedLocked holds.
func (w *Wizard) syncTickerLocked() {
	wanted := w.tickerWantedLocked()
	switch {
	case wanted && w.tick == nil:
		w.startTickerLocked()
	case !wanted && w.tick != nil:
		w.stopTickerLocked()
	}
}

func (w *Wizard) startTickerLocked() {
	w.tickGen++
	scope := &tickScope{
		ticker: w.deps.Clock.NewTicker(tickInterval),
		stop:   make(chan struct{}),
	}
	w.tick = scope

	go w.runTicker(scope, w.tickGen)
}

// stopTickerLocked does not wait for the goroutine: it may be blocked on
// the lock we hold. The generation check in onTick discards its last tick.
func (w *Wizard) stopTickerLocked() {
	if w.tick == nil {
		return
	}
	w.tick.ticker.Stop()
	close(w.tick.stop)
	w.tick = nil
	w.tickGen++
}

func (w *Wizard) runTicker(scope *tickScope, gen uint64) {
	for {
		select {
		case <-scope.stop:
			return
		case <-scope.ticker.C():
			w.onTick(gen)
		}
	}
}

func (w *Wizard) onTick(gen uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.tick == nil || gen != w.tickGen {
		return
	}

	w.now = w.deps.Clock.Now()
	w.refilterLocked()
	w.syncTickerLocked()
}

// TickerActive reports whether the minute ticker is running.
func (w *Wizard) TickerActive() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tick != nil
}
