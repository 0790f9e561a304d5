package booking

import (
	"context"

	"github.com/BruksfildServices01/barber-booking/internal/catalog"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

// Snapshot is the persistable part of a wizard. Catalog lists and
// availability are not kept; Restore reloads what the step shows.
type Snapshot struct {
	ID      string     `json:"id"`
	Session *Session   `json:"session,omitempty"`
	Link    LinkParams `json:"link"`

	Step    Step             `json:"step"`
	Gender  catalog.Gender   `json:"gender,omitempty"`
	Service *catalog.Service `json:"service,omitempty"`
	Barber  *catalog.Barber  `json:"barber,omitempty"`
	Date    string           `json:"date,omitempty"`
	Time    string           `json:"time,omitempty"`

	PaymentMethod    catalog.PaymentMethod `json:"paymentMethod,omitempty"`
	PaymentReference string                `json:"paymentReference,omitempty"`
	Notes            string                `json:"notes,omitempty"`
	PolicyAccepted   bool                  `json:"policyAccepted"`

	Blocked string `json:"blocked,omitempty"`
	Done    bool   `json:"done"`
}

func (w *Wizard) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := Snapshot{
		ID:               w.id,
		Session:          w.session,
		Link:             w.link,
		Step:             w.step,
		Gender:           w.gender,
		Service:          w.service,
		Barber:           w.barber,
		Time:             w.slot,
		PaymentMethod:    w.payment,
		PaymentReference: w.paymentRef,
		Notes:            w.notes,
		PolicyAccepted:   w.policyAccepted,
		Blocked:          w.blocked,
		Done:             w.done,
	}
	if w.hasDate {
		s.Date = timezone.DateString(w.date)
	}
	return s
}

// Restore rebuilds a wizard from a snapshot and reloads the data its step
// displays.
func Restore(ctx context.Context, deps Deps, s Snapshot) (*Wizard, error) {
	w := NewWizard(s.ID, deps, s.Session, s.Link)

	w.mu.Lock()
	w.now = w.deps.Clock.Now()
	w.step = s.Step
	w.gender = s.Gender
	w.service = s.Service
	w.barber = s.Barber
	w.slot = s.Time
	w.payment = s.PaymentMethod
	w.paymentRef = s.PaymentReference
	w.notes = s.Notes
	w.policyAccepted = s.PolicyAccepted
	w.blocked = s.Blocked
	w.done = s.Done
	if s.Date != "" {
		date, err := timezone.ParseDate(s.Date, w.deps.Clock.Location())
		if err != nil {
			w.mu.Unlock()
			return nil, err
		}
		w.date = date
		w.hasDate = true
	}
	if w.step == "" {
		w.step = StepGender
	}
	w.syncTickerLocked()
	step := w.step
	w.mu.Unlock()

	if s.Done {
		return w, nil
	}

	switch step {
	case StepGender:
		w.loadIllustrations(ctx)
	case StepServices:
		w.loadServices(ctx)
	case StepBarbers, StepBarberProfile:
		w.loadBarbers(ctx)
	case StepDatetime:
		w.refreshAvailability(ctx)
	}
	return w, nil
}
