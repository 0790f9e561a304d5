package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BruksfildServices01/barber-booking/internal/metrics"
)

var (
	ErrBarberNotFound    = errors.New("barber not found")
	ErrServiceNotOffered = errors.New("barber does not offer the selected service")
)

const defaultMediaConcurrency = 4

type ServiceQuery struct {
	Gender   Gender
	BarberID string
}

// Source is the remote catalog. The platform API client implements it.
type Source interface {
	ListServices(ctx context.Context, q ServiceQuery) ([]Service, error)
	ListBarbers(ctx context.Context, gender Gender) ([]Barber, error)
	BarberMedia(ctx context.Context, barberID string) ([]Media, error)
}

type Loader struct {
	source           Source
	logger           *zap.Logger
	metrics          *metrics.Booking
	mediaConcurrency int
}

func NewLoader(
	source Source,
	logger *zap.Logger,
	m *metrics.Booking,
	mediaConcurrency int,
) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if mediaConcurrency <= 0 {
		mediaConcurrency = defaultMediaConcurrency
	}
	return &Loader{
		source:           source,
		logger:           logger,
		metrics:          m,
		mediaConcurrency: mediaConcurrency,
	}
}

// Services loads the service list for the current filters. Without a
// barber the same service offered by several barbers collapses into one
// row; with a barber the barber's own list is returned as is.
func (l *Loader) Services(
	ctx context.Context,
	gender Gender,
	barber *Barber,
) ([]Service, error) {

	q := ServiceQuery{Gender: EffectiveGender(gender, barber)}
	if barber != nil {
		q.BarberID = barber.ID
	}

	services, err := l.source.ListServices(ctx, q)
	if err != nil {
		l.logger.Warn("service list unavailable",
			zap.String("gender", string(q.Gender)),
			zap.String("barber_id", q.BarberID),
			zap.Error(err),
		)
		l.metrics.CatalogFailure("services")
		return []Service{}, fmt.Errorf("load services: %w", err)
	}

	if barber != nil {
		return services, nil
	}
	return DedupeServices(services), nil
}

// Barbers loads the roster and attaches every barber's media. A failing
// media fetch leaves that barber with no media.
func (l *Loader) Barbers(ctx context.Context, gender Gender) ([]Barber, error) {
	barbers, err := l.source.ListBarbers(ctx, gender)
	if err != nil {
		l.logger.Warn("barber roster unavailable",
			zap.String("gender", string(gender)),
			zap.Error(err),
		)
		l.metrics.CatalogFailure("barbers")
		return []Barber{}, fmt.Errorf("load barbers: %w", err)
	}

	var g errgroup.Group
	g.SetLimit(l.mediaConcurrency)

	for i := range barbers {
		g.Go(func() error {
			barbers[i].Media = l.media(ctx, barbers[i].ID)
			return nil
		})
	}
	_ = g.Wait()

	return barbers, nil
}

// Barber resolves a single barber from the roster, with media.
func (l *Loader) Barber(ctx context.Context, id string) (*Barber, error) {
	barbers, err := l.source.ListBarbers(ctx, "")
	if err != nil {
		l.metrics.CatalogFailure("barbers")
		return nil, fmt.Errorf("load barbers: %w", err)
	}

	b, ok := FindBarber(barbers, id)
	if !ok {
		return nil, ErrBarberNotFound
	}

	b.Media = l.media(ctx, b.ID)
	return &b, nil
}

// EnsureSelectedServiceForBarber maps the selected service onto the row
// that belongs to barber. The selection may have come from a deduplicated
// list, in which case its id points at another barber's row.
func (l *Loader) EnsureSelectedServiceForBarber(
	ctx context.Context,
	selected Service,
	barber Barber,
) (Service, error) {

	if selected.BarberID != "" && selected.BarberID == barber.ID {
		return selected, nil
	}

	services, err := l.source.ListServices(ctx, ServiceQuery{BarberID: barber.ID})
	if err != nil {
		l.metrics.CatalogFailure("services")
		return Service{}, fmt.Errorf("load barber services: %w", err)
	}

	if s, ok := FindService(services, selected.ID); ok {
		return s, nil
	}
	if s, ok := FindServiceByKey(services, selected.Key()); ok {
		return s, nil
	}

	return Service{}, ErrServiceNotOffered
}

func (l *Loader) media(ctx context.Context, barberID string) []Media {
	media, err := l.source.BarberMedia(ctx, barberID)
	if err != nil {
		l.logger.Warn("barber media unavailable",
			zap.String("barber_id", barberID),
			zap.Error(err),
		)
		l.metrics.MediaFailure()
		return []Media{}
	}
	if media == nil {
		return []Media{}
	}
	return media
}
