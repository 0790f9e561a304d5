package drafts

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/barber-booking/internal/booking"
	"github.com/BruksfildServices01/barber-booking/internal/catalog"
	"github.com/BruksfildServices01/barber-booking/internal/clock"
	"github.com/BruksfildServices01/barber-booking/internal/platform"
)

// ======================================================
// FAKES
// ======================================================

type stubSource struct{}

func (stubSource) ListServices(_ context.Context, q catalog.ServiceQuery) ([]catalog.Service, error) {
	all := []catalog.Service{
		{ID: "cut-A", BarberID: "A", Name: "Haircut", Gender: catalog.GenderMale, Duration: 30, Price: 25},
	}
	out := []catalog.Service{}
	for _, s := range all {
		if q.BarberID == "" || q.BarberID == s.BarberID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (stubSource) ListBarbers(context.Context, catalog.Gender) ([]catalog.Barber, error) {
	return []catalog.Barber{
		{ID: "A", Gender: catalog.GenderMale},
		{ID: "X", Gender: catalog.GenderBoth},
	}, nil
}

func (stubSource) BarberMedia(context.Context, string) ([]catalog.Media, error) {
	return nil, nil
}

type stubPlatform struct{}

func (stubPlatform) Availability(context.Context, platform.AvailabilityQuery) ([]string, error) {
	return []string{"9:00 AM", "2:00 PM"}, nil
}

func (stubPlatform) CreateAppointment(context.Context, platform.AppointmentRequest) (*platform.Appointment, error) {
	return &platform.Appointment{ID: "ap-1"}, nil
}

func (stubPlatform) RescheduleAppointment(_ context.Context, id string, _ platform.RescheduleRequest) (*platform.Appointment, error) {
	return &platform.Appointment{ID: id}, nil
}

func newManager(t *testing.T, store Store) (*Manager, *clock.Fake) {
	t.Helper()
	fc := clock.NewFake(time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC))
	deps := booking.Deps{
		Catalog:      catalog.NewLoader(stubSource{}, nil, nil, 0),
		Availability: stubPlatform{},
		Appointments: stubPlatform{},
		Clock:        fc,
	}
	m := NewManager(deps, store, Options{DraftTTL: time.Hour, IdleTimeout: 10 * time.Minute}, nil)
	t.Cleanup(m.Close)
	return m, fc
}

// ======================================================
// STORES
// ======================================================

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	snap := booking.Snapshot{
		ID:     "s1",
		Step:   booking.StepDatetime,
		Link:   booking.LinkParams{BarberID: "A"},
		Barber: &catalog.Barber{ID: "A", Gender: catalog.GenderMale},
		Date:   "2026-03-11",
	}
	require.NoError(t, store.Save(ctx, snap, time.Minute))
	assert.True(t, mr.Exists("booking:draft:s1"))

	got, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	mr.FastForward(2 * time.Minute)
	_, err = store.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, snap, time.Minute))
	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	require.NoError(t, mr.Set("booking:draft:bad", "{"))

	_, err := store.Load(context.Background(), "bad")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, booking.Snapshot{ID: "s1"}, time.Minute))
	_, err := store.Load(ctx, "s1")
	require.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = store.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

// ======================================================
// MANAGER
// ======================================================

func TestManager_CreateAndDo(t *testing.T) {
	store := NewMemoryStore()
	m, _ := newManager(t, store)
	ctx := context.Background()

	res, err := m.Create(ctx, nil, booking.LinkParams{BarberID: "A", ServiceID: "cut-A"})
	require.NoError(t, err)
	require.NotEmpty(t, res.SessionID)
	assert.Equal(t, booking.StepDatetime, res.View.Step)
	assert.Equal(t, booking.ScrollAnchor, res.View.ScrollTo)
	assert.Empty(t, res.Notices)

	saved, err := store.Load(ctx, res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, booking.StepDatetime, saved.Step)

	res, err = m.Do(ctx, res.SessionID, func(w *booking.Wizard) error {
		return w.SelectTime("9:00 AM")
	})
	require.Error(t, err)
	require.Len(t, res.Notices, 1)
	assert.Equal(t, booking.NoticeError, res.Notices[0].Kind)

	// notices are delivered once
	res, err = m.View(ctx, res.SessionID)
	require.NoError(t, err)
	assert.Empty(t, res.Notices)
}

func TestManager_UnknownSession(t *testing.T) {
	m, _ := newManager(t, NewMemoryStore())

	_, err := m.Do(context.Background(), "missing", func(*booking.Wizard) error { return nil })

	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_FailedStartIsNotKept(t *testing.T) {
	m, _ := newManager(t, NewMemoryStore())

	_, err := m.Create(context.Background(), nil, booking.LinkParams{BarberID: "X"})

	assert.ErrorIs(t, err, booking.ErrAmbiguousGender)
	assert.Equal(t, 0, m.Len())
}

func TestManager_EvictedSessionIsRestored(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	m, fc := newManager(t, store)
	ctx := context.Background()

	res, err := m.Create(ctx, nil, booking.LinkParams{BarberID: "A", ServiceID: "cut-A"})
	require.NoError(t, err)
	id := res.SessionID

	_, err = m.Do(ctx, id, func(w *booking.Wizard) error { return w.SelectDate(ctx, "2026-03-11") })
	require.NoError(t, err)
	_, err = m.Do(ctx, id, func(w *booking.Wizard) error { return w.SelectTime("2:00 PM") })
	require.NoError(t, err)

	fc.Advance(11 * time.Minute)
	assert.Equal(t, 1, m.evictIdle())
	assert.Equal(t, 0, m.Len())

	res, err = m.View(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, booking.StepDatetime, res.View.Step)
	assert.Equal(t, "2026-03-11", res.View.Date)
	assert.Equal(t, "2:00 PM", res.View.Time)
	assert.Equal(t, []string{"9:00 AM", "2:00 PM"}, res.View.AvailableTimes)
}

func TestManager_ViewDeliversRolloverNotice(t *testing.T) {
	m, fc := newManager(t, NewMemoryStore())
	ctx := context.Background()

	res, err := m.Create(ctx, nil, booking.LinkParams{BarberID: "A", ServiceID: "cut-A"})
	require.NoError(t, err)
	id := res.SessionID

	_, err = m.Do(ctx, id, func(w *booking.Wizard) error { return w.SelectDate(ctx, "2026-03-11") })
	require.NoError(t, err)
	_, err = m.Do(ctx, id, func(w *booking.Wizard) error { return w.SelectTime("9:00 AM") })
	require.NoError(t, err)

	fc.Set(time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC))

	res, err = m.View(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, res.View.Time)
	assert.Equal(t, []string{"2:00 PM"}, res.View.AvailableTimes)
	require.Len(t, res.Notices, 1)
	assert.Equal(t, booking.NoticeInfo, res.Notices[0].Kind)
}

func TestManager_FinishedSessionIsDropped(t *testing.T) {
	store := NewMemoryStore()
	m, _ := newManager(t, store)
	ctx := context.Background()

	res, err := m.Create(ctx, nil, booking.LinkParams{BarberID: "A", ServiceID: "cut-A"})
	require.NoError(t, err)
	id := res.SessionID

	res, err = m.Do(ctx, id, func(w *booking.Wizard) error { return w.Back(ctx) })
	require.NoError(t, err)
	assert.Equal(t, "/barbers/A", res.Redirect)
	assert.True(t, res.View.Done)

	assert.Equal(t, 0, m.Len())
	_, err = store.Load(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.View(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_DeleteAndJanitor(t *testing.T) {
	m, fc := newManager(t, NewMemoryStore())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	res, err := m.Create(ctx, nil, booking.LinkParams{})
	require.NoError(t, err)
	_, err = m.Create(ctx, nil, booking.LinkParams{})
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx, res.SessionID))
	assert.Equal(t, 1, m.Len())

	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		fc.Advance(time.Minute)
		return m.Len() == 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
