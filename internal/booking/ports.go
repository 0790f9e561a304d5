package booking

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	"github.com/BruksfildServices01/barber-booking/internal/catalog"
	"github.com/BruksfildServices01/barber-booking/internal/clock"
	"github.com/BruksfildServices01/barber-booking/internal/metrics"
	"github.com/BruksfildServices01/barber-booking/internal/platform"
)

// ======================================================
// PORTS
// ======================================================

// Catalog is satisfied by *catalog.Loader.
type Catalog interface {
	Services(ctx context.Context, gender catalog.Gender, barber *catalog.Barber) ([]catalog.Service, error)
	Barbers(ctx context.Context, gender catalog.Gender) ([]catalog.Barber, error)
	Barber(ctx context.Context, id string) (*catalog.Barber, error)
	EnsureSelectedServiceForBarber(ctx context.Context, selected catalog.Service, barber catalog.Barber) (catalog.Service, error)
}

type AvailabilityPort interface {
	Availability(ctx context.Context, q platform.AvailabilityQuery) ([]string, error)
}

type AppointmentPort interface {
	CreateAppointment(ctx context.Context, req platform.AppointmentRequest) (*platform.Appointment, error)
	RescheduleAppointment(ctx context.Context, appointmentID string, req platform.RescheduleRequest) (*platform.Appointment, error)
}

type SettingsPort interface {
	Settings(ctx context.Context) (*platform.Settings, error)
}

// Navigator moves the user to a page outside the wizard.
type Navigator interface {
	Navigate(path string)
}

// Notifier shows a message to the user. The wizard may call it while
// holding its own lock, so implementations must not call back into it.
type Notifier interface {
	Notify(n Notice)
}

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
	NoticeInfo    NoticeKind = "info"
)

type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// ======================================================
// CONTEXT
// ======================================================

// Session is the signed-in user, nil for anonymous bookings.
type Session struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// LinkParams are the query parameters a booking link may carry.
type LinkParams struct {
	BarberID   string `json:"barberId,omitempty"`
	ServiceID  string `json:"serviceId,omitempty"`
	Reschedule string `json:"reschedule,omitempty"`
}

// Routes are the pages the wizard navigates to. BarberProfile contains an
// {id} placeholder.
type Routes struct {
	BarberProfile string
	Dashboard     string
	Landing       string
	Profile       string
}

func DefaultRoutes() Routes {
	return Routes{
		BarberProfile: "/barbers/{id}",
		Dashboard:     "/dashboard",
		Landing:       "/",
		Profile:       "/profile",
	}
}

func (r Routes) BarberPage(barberID string) string {
	return strings.ReplaceAll(r.BarberProfile, "{id}", url.PathEscape(barberID))
}

func (r Routes) exit(e Exit, barberID string) string {
	switch e {
	case ExitBarberPage:
		return r.BarberPage(barberID)
	case ExitDashboard:
		return r.Dashboard
	default:
		return r.Landing
	}
}

// Deps are shared by every wizard except Navigator and Notifier, which
// belong to one session.
type Deps struct {
	Catalog      Catalog
	Availability AvailabilityPort
	Appointments AppointmentPort
	Settings     SettingsPort // optional

	Clock     clock.Clock
	Navigator Navigator
	Notifier  Notifier
	Routes    Routes

	Logger  *zap.Logger
	Metrics *metrics.Booking
	Audit   *audit.Dispatcher
}

type nopNotifier struct{}

func (nopNotifier) Notify(Notice) {}

type nopNavigator struct{}

func (nopNavigator) Navigate(string) {}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = clock.New(nil)
	}
	if d.Navigator == nil {
		d.Navigator = nopNavigator{}
	}
	if d.Notifier == nil {
		d.Notifier = nopNotifier{}
	}
	if d.Routes == (Routes{}) {
		d.Routes = DefaultRoutes()
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return d
}
