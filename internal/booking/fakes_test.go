package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/barber-booking/internal/catalog"
	"github.com/BruksfildServices01/barber-booking/internal/clock"
	"github.com/BruksfildServices01/barber-booking/internal/metrics"
	"github.com/BruksfildServices01/barber-booking/internal/platform"
)

// ======================================================
// CATALOG SOURCE
// ======================================================

type fakeSource struct {
	mu       sync.Mutex
	services []catalog.Service
	barbers  []catalog.Barber

	rosterQueries []catalog.Gender
}

func (f *fakeSource) ListServices(_ context.Context, q catalog.ServiceQuery) ([]catalog.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []catalog.Service{}
	for _, s := range f.services {
		if q.BarberID != "" && s.BarberID != q.BarberID {
			continue
		}
		if q.Gender != "" && s.Gender != q.Gender {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSource) ListBarbers(_ context.Context, gender catalog.Gender) ([]catalog.Barber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rosterQueries = append(f.rosterQueries, gender)

	out := []catalog.Barber{}
	for _, b := range f.barbers {
		if gender == "" || b.Gender == gender || b.Gender == catalog.GenderBoth {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeSource) BarberMedia(context.Context, string) ([]catalog.Media, error) {
	return []catalog.Media{}, nil
}

func (f *fakeSource) queries() []catalog.Gender {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]catalog.Gender(nil), f.rosterQueries...)
}

// ======================================================
// AVAILABILITY
// ======================================================

type fakeAvailability struct {
	mu      sync.Mutex
	times   map[string][]string // by date
	gates   map[string]chan struct{}
	started chan string
	queries []platform.AvailabilityQuery
	// failures is the number of upcoming calls that fail.
	failures int
}

func (f *fakeAvailability) Availability(ctx context.Context, q platform.AvailabilityQuery) ([]string, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	gate := f.gates[q.Date]
	times := append([]string(nil), f.times[q.Date]...)
	started := f.started
	fail := f.failures > 0
	if fail {
		f.failures--
	}
	f.mu.Unlock()

	if fail {
		return nil, errors.New("availability unavailable")
	}

	if started != nil {
		started <- q.Date
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return times, nil
}

func (f *fakeAvailability) calls() []platform.AvailabilityQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]platform.AvailabilityQuery(nil), f.queries...)
}

// ======================================================
// APPOINTMENTS
// ======================================================

type fakeAppointments struct {
	mu          sync.Mutex
	created     []platform.AppointmentRequest
	rescheduled map[string]platform.RescheduleRequest
	err         error
	gate        chan struct{}
	started     chan struct{}
}

func (f *fakeAppointments) CreateAppointment(_ context.Context, req platform.AppointmentRequest) (*platform.Appointment, error) {
	f.wait()

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, req)
	return &platform.Appointment{ID: "ap-1", BarberID: req.BarberID, ServiceID: req.ServiceID}, nil
}

func (f *fakeAppointments) RescheduleAppointment(_ context.Context, id string, req platform.RescheduleRequest) (*platform.Appointment, error) {
	f.wait()

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.rescheduled == nil {
		f.rescheduled = map[string]platform.RescheduleRequest{}
	}
	f.rescheduled[id] = req
	return &platform.Appointment{ID: id}, nil
}

func (f *fakeAppointments) wait() {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
}

func (f *fakeAppointments) requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created) + len(f.rescheduled)
}

type fakeSettings struct{}

func (fakeSettings) Settings(context.Context) (*platform.Settings, error) {
	return &platform.Settings{MaleImage: "https://cdn/male.png", FemaleImage: "https://cdn/female.png"}, nil
}

// ======================================================
// NAVIGATION / NOTICES
// ======================================================

type recorder struct {
	mu      sync.Mutex
	notices []Notice
	paths   []string
}

func (r *recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recorder) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *recorder) last() Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}
	}
	return r.notices[len(r.notices)-1]
}

func (r *recorder) navigated() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

// ======================================================
// FIXTURE
// ======================================================

var today = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

func service(id, barberID, name string, gender catalog.Gender, duration int, price float64) catalog.Service {
	return catalog.Service{ID: id, BarberID: barberID, Name: name, Gender: gender, Duration: duration, Price: price}
}

type fixture struct {
	src   *fakeSource
	avail *fakeAvailability
	appts *fakeAppointments
	clock *clock.Fake
	rec   *recorder
	reg   *prometheus.Registry
	deps  Deps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	src := &fakeSource{
		services: []catalog.Service{
			service("cut-A", "A", "Haircut", catalog.GenderMale, 30, 25),
			service("beard-A", "A", "Beard Trim", catalog.GenderMale, 15, 10),
			service("cut-B", "B", "haircut", catalog.GenderMale, 30, 25),
			service("color-F", "F", "Color", catalog.GenderFemale, 90, 80),
		},
		barbers: []catalog.Barber{
			{ID: "A", Gender: catalog.GenderMale, ZelleEmail: "a@shop.com", User: catalog.BarberUser{Name: "Alex"}},
			{ID: "B", Gender: catalog.GenderMale, CashappTag: "$bcuts", User: catalog.BarberUser{Name: "Ben"}},
			{ID: "F", Gender: catalog.GenderFemale, User: catalog.BarberUser{Name: "Fran"}},
			{ID: "X", Gender: catalog.GenderBoth, User: catalog.BarberUser{Name: "Sam"}},
		},
	}
	avail := &fakeAvailability{times: map[string][]string{
		"2026-03-10": {"9:00 AM", "10:30 AM", "11:00 AM"},
		"2026-03-11": {"2:00 PM", "9:00 AM", "walk-in"},
		"2026-03-12": {"1:00 PM"},
	}}
	appts := &fakeAppointments{}
	fc := clock.NewFake(today)
	rec := &recorder{}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	return &fixture{
		src:   src,
		avail: avail,
		appts: appts,
		clock: fc,
		rec:   rec,
		reg:   reg,
		deps: Deps{
			Catalog:      catalog.NewLoader(src, nil, m, 0),
			Availability: avail,
			Appointments: appts,
			Settings:     fakeSettings{},
			Clock:        fc,
			Navigator:    rec,
			Notifier:     rec,
			Routes:       DefaultRoutes(),
			Metrics:      m,
		},
	}
}

func (f *fixture) wizard(t *testing.T, session *Session, link LinkParams) *Wizard {
	t.Helper()
	w := NewWizard("sess-1", f.deps, session, link)
	t.Cleanup(w.Close)
	return w
}

func (f *fixture) counter(t *testing.T, name string) float64 {
	t.Helper()
	families, err := f.reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			var total float64
			for _, m := range mf.GetMetric() {
				total += m.GetCounter().GetValue()
			}
			return total
		}
	}
	return 0
}
