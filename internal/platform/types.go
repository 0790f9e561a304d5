package platform

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/BruksfildServices01/barber-booking/internal/catalog"
)

// AvailabilityQuery is the triple the availability endpoint is keyed by.
type AvailabilityQuery struct {
	BarberID        string
	Date            string // YYYY-MM-DD
	ServiceDuration int
}

type AppointmentRequest struct {
	BarberID         string                `json:"barberId"`
	ServiceID        string                `json:"serviceId"`
	Date             string                `json:"date"`
	Time             string                `json:"time"`
	PaymentMethod    catalog.PaymentMethod `json:"paymentMethod"`
	PaymentReference string                `json:"paymentReference,omitempty"`
	Notes            string                `json:"notes"`
}

type RescheduleRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type Appointment struct {
	ID            string                `json:"id"`
	BarberID      string                `json:"barberId,omitempty"`
	ServiceID     string                `json:"serviceId,omitempty"`
	Date          string                `json:"date,omitempty"`
	Time          string                `json:"time,omitempty"`
	Status        string                `json:"status,omitempty"`
	PaymentMethod catalog.PaymentMethod `json:"paymentMethod,omitempty"`
}

type Settings struct {
	MaleImage   string `json:"maleImage,omitempty"`
	FemaleImage string `json:"femaleImage,omitempty"`
}

// ======================================================
// Response envelopes
// ======================================================
//
// The platform answers list endpoints either with a bare array or with an
// object wrapping it. Each envelope accepts both so callers only ever see
// the slice.

type serviceList []catalog.Service

func (l *serviceList) UnmarshalJSON(b []byte) error {
	items, err := decodeList[catalog.Service](b, "services")
	if err != nil {
		return fmt.Errorf("services: %w", err)
	}
	*l = items
	return nil
}

type barberList []catalog.Barber

func (l *barberList) UnmarshalJSON(b []byte) error {
	items, err := decodeList[catalog.Barber](b, "barbers")
	if err != nil {
		return fmt.Errorf("barbers: %w", err)
	}
	*l = items
	return nil
}

type mediaList []catalog.Media

func (l *mediaList) UnmarshalJSON(b []byte) error {
	items, err := decodeList[catalog.Media](b, "media")
	if err != nil {
		return fmt.Errorf("media: %w", err)
	}
	*l = items
	return nil
}

type availabilityEnvelope struct {
	AvailableTimes []string `json:"availableTimes"`
}

type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// decodeList reads either a JSON array or an object holding the array
// under key. Missing or null lists decode to an empty slice.
func decodeList[T any](b []byte, key string) ([]T, error) {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}

	raw := json.RawMessage(trimmed)
	if trimmed[0] != '[' {
		var wrapped map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, err
		}
		var ok bool
		if raw, ok = wrapped[key]; !ok {
			return []T{}, nil
		}
	}

	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}
