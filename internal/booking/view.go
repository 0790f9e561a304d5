package booking

import (
	"github.com/BruksfildServices01/barber-booking/internal/catalog"
	"github.com/BruksfildServices01/barber-booking/internal/platform"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

// View is what the current step renders.
type View struct {
	Step   Step           `json:"step"`
	Gender catalog.Gender `json:"gender,omitempty"`

	Services []catalog.Service `json:"services"`
	Barbers  []catalog.Barber  `json:"barbers"`

	SelectedService *catalog.Service `json:"selectedService,omitempty"`
	SelectedBarber  *catalog.Barber  `json:"selectedBarber,omitempty"`

	Date                string   `json:"date,omitempty"`
	Time                string   `json:"time,omitempty"`
	AvailableTimes      []string `json:"availableTimes"`
	AvailabilityLoading bool     `json:"availabilityLoading"`

	PaymentMethods   []catalog.PaymentMethod `json:"paymentMethods"`
	PaymentMethod    catalog.PaymentMethod   `json:"paymentMethod,omitempty"`
	PaymentReference string                  `json:"paymentReference,omitempty"`
	Notes            string                  `json:"notes,omitempty"`
	PolicyAccepted   bool                    `json:"policyAccepted"`

	Reschedule bool   `json:"reschedule"`
	Submitting bool   `json:"submitting"`
	Done       bool   `json:"done"`
	Blocked    string `json:"blocked,omitempty"`

	// ScrollTo is set once, on the first view after entering datetime.
	ScrollTo string `json:"scrollTo,omitempty"`

	Illustrations *platform.Settings `json:"illustrations,omitempty"`
}

// View renders the wizard against the current time and consumes the
// pending scroll anchor. A day that rolled over since the last event is
// picked up here: passed slots drop out and the ticker starts when today
// became the selected date.
func (w *Wizard) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.done && !w.closed {
		w.now = w.deps.Clock.Now()
		w.refilterLocked()
		w.syncTickerLocked()
	}

	v := View{
		Step:                w.step,
		Gender:              w.gender,
		Services:            orEmpty(w.services),
		Barbers:             orEmpty(catalog.BarbersForService(w.barbers, w.service)),
		SelectedService:     w.service,
		SelectedBarber:      w.barber,
		Time:                w.slot,
		AvailableTimes:      w.visibleTimesLocked(),
		AvailabilityLoading: w.avail.loading,
		PaymentMethods:      []catalog.PaymentMethod{},
		PaymentMethod:       w.payment,
		PaymentReference:    w.paymentRef,
		Notes:               w.notes,
		PolicyAccepted:      w.policyAccepted,
		Reschedule:          w.link.Reschedule != "",
		Submitting:          w.submitting,
		Done:                w.done,
		Blocked:             w.blocked,
		ScrollTo:            w.scrollTo,
		Illustrations:       w.illustrations,
	}
	if w.hasDate {
		v.Date = timezone.DateString(w.date)
	}
	if w.barber != nil {
		v.PaymentMethods = w.barber.PaymentMethods()
	}

	w.scrollTo = ""
	return v
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
