package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu sync.Mutex

	services    map[string][]Service // keyed by barber id, "" for all
	servicesErr error
	barbers     []Barber
	barbersErr  error
	media       map[string][]Media
	mediaErr    map[string]error

	serviceQueries []ServiceQuery
	barberGenders  []Gender
}

func (f *fakeSource) ListServices(_ context.Context, q ServiceQuery) ([]Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.serviceQueries = append(f.serviceQueries, q)
	if f.servicesErr != nil {
		return nil, f.servicesErr
	}
	return append([]Service(nil), f.services[q.BarberID]...), nil
}

func (f *fakeSource) ListBarbers(_ context.Context, gender Gender) ([]Barber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.barberGenders = append(f.barberGenders, gender)
	if f.barbersErr != nil {
		return nil, f.barbersErr
	}
	return append([]Barber(nil), f.barbers...), nil
}

func (f *fakeSource) BarberMedia(_ context.Context, barberID string) ([]Media, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mediaErr[barberID]; err != nil {
		return nil, err
	}
	return f.media[barberID], nil
}

func haircut(id, barberID string) Service {
	return Service{ID: id, Name: "Haircut", Duration: 30, Price: 25, Gender: GenderMale, BarberID: barberID}
}

func TestDedupeServices_SameLogicalService(t *testing.T) {
	in := []Service{haircut("s1", "A"), haircut("s2", "B")}

	got := DedupeServices(in)

	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].ID)
}

func TestDedupeServices_KeyParts(t *testing.T) {
	base := haircut("s1", "A")

	spaced := haircut("s2", "B")
	spaced.Name = "  HAIRCUT "

	cheaper := haircut("s3", "C")
	cheaper.Price = 20

	longer := haircut("s4", "D")
	longer.Duration = 45

	female := haircut("s5", "E")
	female.Gender = GenderFemale

	got := DedupeServices([]Service{base, spaced, cheaper, longer, female})

	ids := make([]string, 0, len(got))
	for _, s := range got {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"s1", "s3", "s4", "s5"}, ids)
}

func TestEffectiveGender(t *testing.T) {
	male := &Barber{ID: "b1", Gender: GenderMale}
	both := &Barber{ID: "b2", Gender: GenderBoth}
	unset := &Barber{ID: "b3"}

	assert.Equal(t, GenderMale, EffectiveGender(GenderFemale, male))
	assert.Equal(t, GenderFemale, EffectiveGender(GenderFemale, both))
	assert.Equal(t, GenderFemale, EffectiveGender(GenderFemale, unset))
	assert.Equal(t, GenderFemale, EffectiveGender(GenderFemale, nil))
}

func TestBarbersForService(t *testing.T) {
	roster := []Barber{
		{ID: "m", Gender: GenderMale},
		{ID: "f", Gender: GenderFemale},
		{ID: "b", Gender: GenderBoth},
		{ID: "n"},
	}

	ids := func(bs []Barber) []string {
		out := []string{}
		for _, b := range bs {
			out = append(out, b.ID)
		}
		return out
	}

	assert.Equal(t, []string{"f", "b"}, ids(BarbersForService(roster, &Service{Gender: GenderFemale})))
	assert.Equal(t, []string{"m", "b"}, ids(BarbersForService(roster, &Service{Gender: GenderMale})))
	assert.Equal(t, []string{"m", "f", "b", "n"}, ids(BarbersForService(roster, &Service{Gender: GenderUnisex})))
	assert.Equal(t, []string{"m", "f", "b", "n"}, ids(BarbersForService(roster, &Service{})))
	assert.Equal(t, []string{"m", "f", "b", "n"}, ids(BarbersForService(roster, nil)))
}

func TestBarber_PaymentMethods(t *testing.T) {
	assert.Equal(t, []PaymentMethod{PaymentCash}, Barber{}.PaymentMethods())

	b := Barber{ZellePhone: "555", CashappTag: "$cuts"}
	assert.Equal(t, []PaymentMethod{PaymentCash, PaymentZelle, PaymentCashApp}, b.PaymentMethods())
	assert.True(t, b.Accepts(PaymentCashApp))
	assert.False(t, Barber{}.Accepts(PaymentZelle))
}

func TestParseClientGender(t *testing.T) {
	g, ok := ParseClientGender(" male ")
	assert.True(t, ok)
	assert.Equal(t, GenderMale, g)

	_, ok = ParseClientGender("BOTH")
	assert.False(t, ok)
}

func TestLoader_ServicesDedupesWithoutBarber(t *testing.T) {
	src := &fakeSource{services: map[string][]Service{
		"": {haircut("s1", "A"), haircut("s2", "B")},
	}}
	l := NewLoader(src, nil, nil, 0)

	got, err := l.Services(context.Background(), GenderMale, nil)

	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, []ServiceQuery{{Gender: GenderMale}}, src.serviceQueries)
}

func TestLoader_ServicesBarberOverridesGenderAndSkipsDedupe(t *testing.T) {
	dup := haircut("s2", "A")
	src := &fakeSource{services: map[string][]Service{
		"A": {haircut("s1", "A"), dup},
	}}
	l := NewLoader(src, nil, nil, 0)

	got, err := l.Services(context.Background(), GenderFemale, &Barber{ID: "A", Gender: GenderMale})

	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, []ServiceQuery{{Gender: GenderMale, BarberID: "A"}}, src.serviceQueries)
}

func TestLoader_ServicesFailureDegradesToEmpty(t *testing.T) {
	src := &fakeSource{servicesErr: errors.New("502")}
	l := NewLoader(src, nil, nil, 0)

	got, err := l.Services(context.Background(), GenderMale, nil)

	require.Error(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLoader_BarbersMediaPartialFailure(t *testing.T) {
	src := &fakeSource{
		barbers: []Barber{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		media: map[string][]Media{
			"a": {{ID: "m1", URL: "https://cdn/a.jpg"}},
			"c": {{ID: "m3", URL: "https://cdn/c.jpg"}},
		},
		mediaErr: map[string]error{"b": errors.New("boom")},
	}
	l := NewLoader(src, nil, nil, 2)

	got, err := l.Barbers(context.Background(), GenderMale)

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Len(t, got[0].Media, 1)
	assert.NotNil(t, got[1].Media)
	assert.Empty(t, got[1].Media)
	assert.Len(t, got[2].Media, 1)
	assert.Equal(t, []Gender{GenderMale}, src.barberGenders)
}

func TestLoader_BarbersRosterFailure(t *testing.T) {
	l := NewLoader(&fakeSource{barbersErr: errors.New("down")}, nil, nil, 0)

	got, err := l.Barbers(context.Background(), "")

	require.Error(t, err)
	assert.Empty(t, got)
}

func TestLoader_Barber(t *testing.T) {
	src := &fakeSource{
		barbers: []Barber{{ID: "a", Gender: GenderMale}, {ID: "b"}},
		media:   map[string][]Media{"a": {{ID: "m1"}}},
	}
	l := NewLoader(src, nil, nil, 0)

	b, err := l.Barber(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "a", b.ID)
	assert.Len(t, b.Media, 1)

	_, err = l.Barber(context.Background(), "zzz")
	assert.ErrorIs(t, err, ErrBarberNotFound)
}

func TestLoader_EnsureSelectedServiceForBarber(t *testing.T) {
	src := &fakeSource{services: map[string][]Service{
		"B": {
			{ID: "b-beard", Name: "Beard", Duration: 15, Price: 10, Gender: GenderMale, BarberID: "B"},
			haircut("b-cut", "B"),
		},
	}}
	l := NewLoader(src, nil, nil, 0)
	ctx := context.Background()

	t.Run("already owned", func(t *testing.T) {
		got, err := l.EnsureSelectedServiceForBarber(ctx, haircut("a-cut", "A"), Barber{ID: "A"})
		require.NoError(t, err)
		assert.Equal(t, "a-cut", got.ID)
	})

	t.Run("resolved by key", func(t *testing.T) {
		got, err := l.EnsureSelectedServiceForBarber(ctx, haircut("a-cut", "A"), Barber{ID: "B"})
		require.NoError(t, err)
		assert.Equal(t, "b-cut", got.ID)
		assert.Equal(t, "B", got.BarberID)
	})

	t.Run("not offered", func(t *testing.T) {
		color := Service{ID: "a-color", Name: "Color", Duration: 90, Price: 80, Gender: GenderFemale, BarberID: "A"}
		_, err := l.EnsureSelectedServiceForBarber(ctx, color, Barber{ID: "B"})
		assert.ErrorIs(t, err, ErrServiceNotOffered)
	})
}
