package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	"github.com/BruksfildServices01/barber-booking/internal/catalog"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/platform"
	"github.com/BruksfildServices01/barber-booking/internal/timeslot"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

// ScrollAnchor is the top of the date/time step.
const ScrollAnchor = "datetime-top"

// Wizard is one client's booking flow. Every method is safe for
// concurrent use; remote calls are made without holding the lock and
// their results are dropped when the selection changed meanwhile.
type Wizard struct {
	id      string
	deps    Deps
	session *Session
	link    LinkParams
	logger  *zap.Logger

	mu sync.Mutex

	step     Step
	gender   catalog.Gender
	services []catalog.Service
	barbers  []catalog.Barber
	service  *catalog.Service
	barber   *catalog.Barber

	date    time.Time
	hasDate bool
	slot    string

	payment        catalog.PaymentMethod
	paymentRef     string
	notes          string
	policyAccepted bool

	illustrations *platform.Settings
	avail         availability
	now           time.Time

	scrollTo   string
	submitting bool
	done       bool
	closed     bool
	blocked    string

	tick    *tickScope
	tickGen uint64
}

func NewWizard(id string, deps Deps, session *Session, link LinkParams) *Wizard {
	deps = deps.withDefaults()
	return &Wizard{
		id:      id,
		deps:    deps,
		session: session,
		link:    link,
		logger:  deps.Logger.With(zap.String("session_id", id)),
		step:    StepGender,
	}
}

func (w *Wizard) ID() string { return w.id }

// ======================================================
// START
// ======================================================

// Start puts the wizard in its initial step. A link with a barber starts
// on services; when the link also names a service the barber offers, the
// flow jumps straight to the date/time step.
func (w *Wizard) Start(ctx context.Context) error {
	w.mu.Lock()
	w.now = w.deps.Clock.Now()
	if w.link.BarberID != "" {
		w.step = StepServices
	} else {
		w.step = StepGender
	}
	w.mu.Unlock()

	w.deps.Metrics.SessionStarted()
	w.logger.Info("booking session started",
		zap.String("barber_id", w.link.BarberID),
		zap.String("service_id", w.link.ServiceID),
		zap.Bool("reschedule", w.link.Reschedule != ""),
	)

	if w.link.BarberID == "" {
		w.loadIllustrations(ctx)
		return nil
	}
	return w.resolveLink(ctx)
}

func (w *Wizard) resolveLink(ctx context.Context) error {
	barber, err := w.deps.Catalog.Barber(ctx, w.link.BarberID)
	if err != nil {
		if errors.Is(err, catalog.ErrBarberNotFound) {
			return w.block(ErrBarberNotFound)
		}
		return w.block(&httperr.UpstreamError{
			Code:    "barber_unavailable",
			Message: "We could not load this barber. Please try again.",
			Err:     err,
		})
	}

	gender, ok := barber.ServiceGender()
	if !ok {
		w.logger.Error("linked barber has no strict gender",
			zap.String("barber_id", barber.ID),
			zap.String("gender", string(barber.Gender)),
		)
		w.deps.Audit.Dispatch(audit.Event{
			Action:    audit.ActionIntegrityError,
			SessionID: w.id,
			UserID:    w.userID(),
			BarberID:  barber.ID,
			Metadata:  map[string]string{"gender": string(barber.Gender)},
		})
		return w.block(ErrAmbiguousGender)
	}

	services, err := w.deps.Catalog.Services(ctx, gender, barber)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.barber = barber
	w.gender = gender
	w.services = services
	if err != nil {
		w.notifyLocked(NoticeError, "We could not load services. Please try again.")
	}

	if w.link.ServiceID == "" {
		return nil
	}

	s, found := catalog.FindService(services, w.link.ServiceID)
	if !found {
		w.notifyLocked(NoticeError, userMessage(errServiceNotOffered))
		return nil
	}

	w.service = &s
	w.moveLocked(StepDatetime)
	w.syncTickerLocked()
	return nil
}

// block stops the flow at barber resolution.
func (w *Wizard) block(err error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var code string
	var ie *httperr.IntegrityError
	var ue *httperr.UpstreamError
	switch {
	case errors.As(err, &ie):
		code = ie.Code
	case errors.As(err, &ue):
		code = ue.Code
	default:
		code = "blocked"
	}

	w.blocked = code
	w.notifyLocked(NoticeError, userMessage(err))
	return err
}

// ======================================================
// FORWARD EVENTS
// ======================================================

func (w *Wizard) SelectGender(ctx context.Context, value string) error {
	err := w.apply(true, func() error {
		out, err := Resolve(w.step, EventSelectGender, w.guardsLocked())
		if err != nil {
			return err
		}
		g, ok := catalog.ParseClientGender(value)
		if !ok {
			return httperr.Validation("invalid_gender", "Please choose MALE or FEMALE.")
		}

		w.gender = g
		w.service = nil
		w.services = nil
		w.moveLocked(out.Step)
		return nil
	})
	if err != nil {
		return err
	}

	w.loadServices(ctx)
	return nil
}

func (w *Wizard) SelectService(ctx context.Context, serviceID string) error {
	var next Step
	err := w.apply(true, func() error {
		out, err := Resolve(w.step, EventSelectService, w.guardsLocked())
		if err != nil {
			return err
		}
		s, ok := catalog.FindService(w.services, serviceID)
		if !ok {
			return httperr.Validation("unknown_service", "Please select one of the listed services.")
		}

		w.service = &s
		w.slot = ""
		w.moveLocked(out.Step)
		next = out.Step
		return nil
	})
	if err != nil {
		return err
	}

	switch next {
	case StepBarbers:
		w.loadBarbers(ctx)
	case StepDatetime:
		w.refreshAvailability(ctx)
	}
	return nil
}

func (w *Wizard) SelectBarber(_ context.Context, barberID string) error {
	return w.apply(true, func() error {
		out, err := Resolve(w.step, EventSelectBarber, w.guardsLocked())
		if err != nil {
			return err
		}
		b, ok := catalog.FindBarber(catalog.BarbersForService(w.barbers, w.service), barberID)
		if !ok {
			return httperr.Validation("unknown_barber", "Please select one of the listed barbers.")
		}

		w.barber = &b
		w.slot = ""
		w.moveLocked(out.Step)
		return nil
	})
}

// Continue advances from the barber profile or the date/time step.
func (w *Wizard) Continue(ctx context.Context) error {
	var (
		from    Step
		service catalog.Service
		barber  catalog.Barber
	)
	err := w.apply(true, func() error {
		out, err := Resolve(w.step, EventContinue, w.guardsLocked())
		if err != nil {
			return err
		}
		from = w.step

		switch w.step {
		case StepBarberProfile:
			if w.service == nil {
				return errServiceRequired
			}
			if w.barber == nil {
				return errBarberRequired
			}
			service, barber = *w.service, *w.barber
		case StepDatetime:
			if !w.hasDate {
				return errDateRequired
			}
			if w.slot == "" {
				return errTimeRequired
			}
			w.moveLocked(out.Step)
		}
		return nil
	})
	if err != nil || from != StepBarberProfile {
		return err
	}

	resolved, rerr := w.deps.Catalog.EnsureSelectedServiceForBarber(ctx, service, barber)

	err = w.apply(true, func() error {
		if w.step != StepBarberProfile || w.barber == nil || w.barber.ID != barber.ID {
			return fmt.Errorf("%w: selection changed", ErrNoTransition)
		}
		if rerr != nil {
			return reconcileError(rerr)
		}

		w.service = &resolved
		w.moveLocked(StepDatetime)
		return nil
	})
	if err != nil {
		return err
	}

	w.refreshAvailability(ctx)
	return nil
}

func reconcileError(err error) error {
	if errors.Is(err, catalog.ErrServiceNotOffered) {
		return errServiceNotOffered
	}
	return &httperr.UpstreamError{
		Code:    "services_unavailable",
		Message: "We could not check this barber's services. Please try again.",
		Err:     err,
	}
}

// ======================================================
// BACK
// ======================================================

func (w *Wizard) Back(ctx context.Context) error {
	var (
		exitPath string
		next     Step
	)
	err := w.apply(false, func() error {
		out, err := Resolve(w.step, EventBack, w.guardsLocked())
		if err != nil {
			return err
		}

		if out.IsExit() {
			exitPath = w.deps.Routes.exit(out.Exit, w.link.BarberID)
			w.done = true
			return nil
		}

		if out.ClearService {
			w.service = nil
			w.slot = ""
		}
		if out.ClearBarber {
			w.barber = nil
			w.slot = ""
		}
		w.moveLocked(out.Step)
		next = out.Step
		return nil
	})
	if err != nil {
		return err
	}

	if exitPath != "" {
		w.logger.Info("booking flow left", zap.String("path", exitPath))
		w.deps.Navigator.Navigate(exitPath)
		return nil
	}

	switch next {
	case StepServices:
		w.mu.Lock()
		empty := len(w.services) == 0
		w.mu.Unlock()
		if empty {
			w.loadServices(ctx)
		}
	case StepBarbers:
		w.mu.Lock()
		empty := len(w.barbers) == 0
		w.mu.Unlock()
		if empty {
			w.loadBarbers(ctx)
		}
	case StepDatetime:
		w.refreshAvailability(ctx)
	}
	return nil
}

// ======================================================
// DATE / TIME / PAYMENT
// ======================================================

// SelectDate picks the booking day (YYYY-MM-DD in the booking location)
// and reloads the available times.
func (w *Wizard) SelectDate(ctx context.Context, value string) error {
	err := w.apply(true, func() error {
		if w.step != StepDatetime {
			return fmt.Errorf("%w: date on %s", ErrNoTransition, w.step)
		}
		date, err := timezone.ParseDate(value, w.deps.Clock.Location())
		if err != nil {
			return httperr.Validation("invalid_date", "Please enter the date as YYYY-MM-DD.")
		}
		if date.Before(timeslot.StartOfDay(w.now)) {
			return httperr.Validation("date_in_past", "Please pick today or a later date.")
		}

		w.date = date
		w.hasDate = true
		w.slot = ""
		return nil
	})
	if err != nil {
		return err
	}

	w.refreshAvailability(ctx)
	return nil
}

func (w *Wizard) SelectTime(value string) error {
	return w.apply(true, func() error {
		if w.step != StepDatetime {
			return fmt.Errorf("%w: time on %s", ErrNoTransition, w.step)
		}
		if !w.hasDate {
			return errDateRequired
		}
		if !timeslot.Contains(w.visibleTimesLocked(), value) {
			return httperr.Validation("time_unavailable", "That time is not available. Please pick another one.")
		}

		w.slot = value
		return nil
	})
}

func (w *Wizard) SetPayment(method, reference, notes string) error {
	return w.apply(true, func() error {
		if w.step != StepPayment {
			return fmt.Errorf("%w: payment on %s", ErrNoTransition, w.step)
		}
		if w.barber == nil {
			return errBarberRequired
		}

		m := catalog.PaymentMethod(strings.ToUpper(strings.TrimSpace(method)))
		if m == "" {
			return errPaymentRequired
		}
		if !w.barber.Accepts(m) {
			return httperr.Validation("payment_method_unavailable", "This barber does not accept that payment method.")
		}

		w.payment = m
		w.paymentRef = strings.TrimSpace(reference)
		w.notes = strings.TrimSpace(notes)
		return nil
	})
}

func (w *Wizard) AcceptPolicy(accepted bool) error {
	return w.apply(true, func() error {
		w.policyAccepted = accepted
		return nil
	})
}

// ======================================================
// LIFECYCLE
// ======================================================

// Done reports whether the flow ended, by submission or by leaving it.
func (w *Wizard) Done() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.done
}

// Close releases the minute ticker. Later events fail with ErrFinished.
func (w *Wizard) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	w.stopTickerLocked()
}

// ======================================================
// INTERNALS
// ======================================================

// apply runs fn under the lock with a fresh now, keeps the ticker in line
// with the resulting state and reports a failure to the user.
func (w *Wizard) apply(checkBlocked bool, fn func() error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	err := w.activeLocked(checkBlocked)
	if err == nil {
		w.now = w.deps.Clock.Now()
		err = fn()
		w.syncTickerLocked()
	}
	if err != nil {
		w.notifyLocked(NoticeError, userMessage(err))
	}
	return err
}

func (w *Wizard) activeLocked(checkBlocked bool) error {
	if w.done || w.closed {
		return ErrFinished
	}
	if checkBlocked && w.blocked != "" {
		return ErrBlocked
	}
	return nil
}

func (w *Wizard) guardsLocked() Guards {
	return Guards{
		BarberSelected: w.barber != nil,
		LinkedBarber:   w.link.BarberID != "",
		LinkedService:  w.link.ServiceID != "",
		Authenticated:  w.session != nil,
	}
}

func (w *Wizard) moveLocked(step Step) {
	if step == StepDatetime && w.step != StepDatetime {
		w.scrollTo = ScrollAnchor
	}
	w.step = step
}

func (w *Wizard) notifyLocked(kind NoticeKind, message string) {
	w.deps.Notifier.Notify(Notice{Kind: kind, Message: message})
}

func (w *Wizard) userID() string {
	if w.session == nil {
		return ""
	}
	return w.session.ID
}

func (w *Wizard) loadServices(ctx context.Context) {
	w.mu.Lock()
	gender := w.gender
	barber := cloneBarber(w.barber)
	w.mu.Unlock()

	services, err := w.deps.Catalog.Services(ctx, gender, barber)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.gender != gender || barberID(w.barber) != barberID(barber) {
		return
	}
	w.services = services
	if err != nil {
		w.notifyLocked(NoticeError, "We could not load services. Please try again.")
	}
}

func (w *Wizard) loadBarbers(ctx context.Context) {
	w.mu.Lock()
	gender := w.gender
	w.mu.Unlock()

	barbers, err := w.deps.Catalog.Barbers(ctx, gender)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.gender != gender {
		return
	}
	w.barbers = barbers
	if err != nil {
		w.notifyLocked(NoticeError, "We could not load barbers. Please try again.")
	}
}

func (w *Wizard) loadIllustrations(ctx context.Context) {
	if w.deps.Settings == nil {
		return
	}

	settings, err := w.deps.Settings.Settings(ctx)
	if err != nil {
		w.logger.Debug("settings unavailable", zap.Error(err))
		return
	}

	w.mu.Lock()
	w.illustrations = settings
	w.mu.Unlock()
}

func cloneBarber(b *catalog.Barber) *catalog.Barber {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}

func barberID(b *catalog.Barber) string {
	if b == nil {
		return ""
	}
	return b.ID
}
