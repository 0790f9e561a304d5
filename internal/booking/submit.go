package booking

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	"github.com/BruksfildServices01/barber-booking/internal/catalog"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/platform"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

const (
	kindCreate     = "create"
	kindReschedule = "reschedule"
)

// draft is the part of the wizard state a submission needs.
type draft struct {
	service    catalog.Service
	barber     catalog.Barber
	date       string
	time       string
	payment    catalog.PaymentMethod
	paymentRef string
	notes      string
}

// Confirm submits the booking. Nothing is sent unless the draft is
// complete and the cancellation policy was accepted. On failure the draft
// is kept so the user can retry.
func (w *Wizard) Confirm(ctx context.Context) error {
	var d draft
	err := w.apply(true, func() error {
		if w.submitting {
			return ErrSubmitting
		}
		if w.step != StepPayment {
			return fmt.Errorf("%w: confirm on %s", ErrNoTransition, w.step)
		}
		if err := w.validateDraftLocked(); err != nil {
			return err
		}

		w.submitting = true
		d = draft{
			service:    *w.service,
			barber:     *w.barber,
			date:       timezone.DateString(w.date),
			time:       w.slot,
			payment:    w.payment,
			paymentRef: w.paymentRef,
			notes:      w.notes,
		}
		return nil
	})
	if err != nil {
		return err
	}

	defer func() {
		w.mu.Lock()
		w.submitting = false
		w.mu.Unlock()
	}()

	kind := kindCreate
	if w.link.Reschedule != "" {
		kind = kindReschedule
	}

	service, err := w.deps.Catalog.EnsureSelectedServiceForBarber(ctx, d.service, d.barber)
	if err != nil {
		return w.submissionFailed(kind, d, reconcileError(err))
	}
	d.service = service

	appointmentID, err := w.submit(ctx, kind, d)
	if err != nil {
		return w.submissionFailed(kind, d, upstreamError(kind, err))
	}

	w.mu.Lock()
	w.service = &service
	w.done = true
	w.stopTickerLocked()
	w.notifyLocked(NoticeSuccess, successMessage(kind))
	w.mu.Unlock()

	action := audit.ActionBookingCreated
	if kind == kindReschedule {
		action = audit.ActionBookingRescheduled
	}
	w.deps.Audit.Dispatch(audit.Event{
		Action:        action,
		SessionID:     w.id,
		UserID:        w.userID(),
		BarberID:      d.barber.ID,
		ServiceID:     d.service.ID,
		AppointmentID: appointmentID,
		Metadata: map[string]string{
			"date":           d.date,
			"time":           d.time,
			"payment_method": string(d.payment),
		},
	})
	w.deps.Metrics.Submission(kind, "success")
	w.logger.Info("booking submitted",
		zap.String("kind", kind),
		zap.String("appointment_id", appointmentID),
		zap.String("barber_id", d.barber.ID),
		zap.String("service_id", d.service.ID),
	)

	w.deps.Navigator.Navigate(w.deps.Routes.Profile)
	return nil
}

func (w *Wizard) validateDraftLocked() error {
	switch {
	case w.service == nil:
		return errServiceRequired
	case w.barber == nil:
		return errBarberRequired
	case !w.hasDate:
		return errDateRequired
	case w.slot == "":
		return errTimeRequired
	case w.payment == "":
		return errPaymentRequired
	case !w.policyAccepted:
		return errPolicyRequired
	}
	return nil
}

func (w *Wizard) submit(ctx context.Context, kind string, d draft) (string, error) {
	var (
		ap  *platform.Appointment
		err error
	)

	if kind == kindReschedule {
		ap, err = w.deps.Appointments.RescheduleAppointment(ctx, w.link.Reschedule, platform.RescheduleRequest{
			Date: d.date,
			Time: d.time,
		})
	} else {
		ap, err = w.deps.Appointments.CreateAppointment(ctx, platform.AppointmentRequest{
			BarberID:         d.barber.ID,
			ServiceID:        d.service.ID,
			Date:             d.date,
			Time:             d.time,
			PaymentMethod:    d.payment,
			PaymentReference: d.paymentRef,
			Notes:            d.notes,
		})
	}
	if err != nil {
		return "", err
	}

	if ap != nil && ap.ID != "" {
		return ap.ID, nil
	}
	return w.link.Reschedule, nil
}

func (w *Wizard) submissionFailed(kind string, d draft, err error) error {
	w.logger.Warn("booking submission failed",
		zap.String("kind", kind),
		zap.String("barber_id", d.barber.ID),
		zap.String("service_id", d.service.ID),
		zap.Error(err),
	)

	w.deps.Audit.Dispatch(audit.Event{
		Action:        audit.ActionBookingFailed,
		SessionID:     w.id,
		UserID:        w.userID(),
		BarberID:      d.barber.ID,
		ServiceID:     d.service.ID,
		AppointmentID: w.link.Reschedule,
		Metadata: map[string]string{
			"kind":    kind,
			"message": userMessage(err),
		},
	})
	w.deps.Metrics.Submission(kind, "failure")

	w.mu.Lock()
	w.notifyLocked(NoticeError, userMessage(err))
	w.mu.Unlock()
	return err
}

// upstreamError carries the platform's own message when it sent one.
func upstreamError(kind string, err error) error {
	ue := &httperr.UpstreamError{
		Code:    "booking_failed",
		Message: failureMessage(kind),
		Err:     err,
	}

	var apiErr *platform.APIError
	if errors.As(err, &apiErr) {
		ue.Status = apiErr.Status
		if apiErr.Message != "" {
			ue.Message = apiErr.Message
		}
	}
	return ue
}

func successMessage(kind string) string {
	if kind == kindReschedule {
		return "Appointment rescheduled successfully!"
	}
	return "Appointment booked successfully!"
}

func failureMessage(kind string) string {
	if kind == kindReschedule {
		return "Failed to reschedule appointment. Please try again."
	}
	return "Failed to book appointment. Please try again."
}
