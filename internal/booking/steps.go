package booking

import (
	"fmt"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
)

type Step string

const (
	StepGender        Step = "gender"
	StepServices      Step = "services"
	StepBarbers       Step = "barbers"
	StepBarberProfile Step = "barber-profile"
	StepDatetime      Step = "datetime"
	StepPayment       Step = "payment"
)

type Event string

const (
	EventSelectGender  Event = "select-gender"
	EventSelectService Event = "select-service"
	EventSelectBarber  Event = "select-barber"
	EventContinue      Event = "continue"
	EventBack          Event = "back"
)

// Exit is a destination outside the wizard.
type Exit string

const (
	ExitBarberPage Exit = "barber-page"
	ExitDashboard  Exit = "dashboard"
	ExitLanding    Exit = "landing"
)

var ErrNoTransition = httperr.ErrBusiness("invalid_step")

// Guards are the facts a transition may depend on.
type Guards struct {
	BarberSelected bool
	LinkedBarber   bool // barberId came with the link
	LinkedService  bool // serviceId came with the link
	Authenticated  bool
}

// Outcome is where an event leads: an internal step or an exit.
type Outcome struct {
	Step Step
	Exit Exit

	// ClearService and ClearBarber drop a selection on the way back.
	ClearService bool
	ClearBarber  bool
}

func (o Outcome) IsExit() bool {
	return o.Exit != ""
}

type transition struct {
	from  Step
	event Event
	when  func(Guards) bool
	to    Outcome
}

func always(Guards) bool { return true }

// Rows are evaluated in order; the first matching guard wins.
var transitions = []transition{
	// forward
	{StepGender, EventSelectGender, always, Outcome{Step: StepServices}},
	{StepServices, EventSelectService, func(g Guards) bool { return g.BarberSelected }, Outcome{Step: StepDatetime}},
	{StepServices, EventSelectService, always, Outcome{Step: StepBarbers}},
	{StepBarbers, EventSelectBarber, always, Outcome{Step: StepBarberProfile}},
	{StepBarberProfile, EventContinue, always, Outcome{Step: StepDatetime}},
	{StepDatetime, EventContinue, always, Outcome{Step: StepPayment}},

	// back
	{StepPayment, EventBack, always, Outcome{Step: StepDatetime}},
	{StepDatetime, EventBack, func(g Guards) bool { return g.LinkedBarber && g.LinkedService }, Outcome{Exit: ExitBarberPage}},
	{StepDatetime, EventBack, func(g Guards) bool { return g.LinkedBarber }, Outcome{Step: StepServices, ClearService: true}},
	{StepDatetime, EventBack, always, Outcome{Step: StepBarberProfile}},
	{StepBarberProfile, EventBack, always, Outcome{Step: StepBarbers, ClearBarber: true}},
	{StepBarbers, EventBack, always, Outcome{Step: StepServices}},
	{StepServices, EventBack, func(g Guards) bool { return g.LinkedBarber }, Outcome{Exit: ExitBarberPage}},
	{StepServices, EventBack, always, Outcome{Step: StepGender}},
	{StepGender, EventBack, func(g Guards) bool { return g.Authenticated }, Outcome{Exit: ExitDashboard}},
	{StepGender, EventBack, always, Outcome{Exit: ExitLanding}},
}

// Resolve looks up the destination of ev fired on step from.
func Resolve(from Step, ev Event, g Guards) (Outcome, error) {
	for _, t := range transitions {
		if t.from == from && t.event == ev && t.when(g) {
			return t.to, nil
		}
	}
	return Outcome{}, fmt.Errorf("%w: %s on %s", ErrNoTransition, ev, from)
}
