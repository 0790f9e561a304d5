package booking

import (
	"errors"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
)

var (
	ErrAmbiguousGender = httperr.Integrity(
		"ambiguous_barber_gender",
		"This barber's profile is incomplete, so we cannot tell which services to show. Please contact the shop.",
	)
	ErrBarberNotFound = httperr.Integrity(
		"barber_not_found",
		"We could not find the barber from this link.",
	)

	ErrSubmitting = httperr.ErrBusiness("submission_in_progress")
	ErrFinished   = httperr.ErrBusiness("session_finished")
	ErrBlocked    = httperr.ErrBusiness("flow_blocked")
)

var (
	errServiceNotOffered = httperr.Validation(
		"service_not_offered",
		"The selected barber does not offer this service. Please choose another barber or service.",
	)
	errServiceRequired = httperr.Validation("service_required", "Please select a service.")
	errBarberRequired  = httperr.Validation("barber_required", "Please select a barber.")
	errDateRequired    = httperr.Validation("date_required", "Please select a date.")
	errTimeRequired    = httperr.Validation("time_required", "Please select a time.")
	errPaymentRequired = httperr.Validation("payment_method_required", "Please select a payment method.")
	errPolicyRequired  = httperr.Validation("policy_not_accepted", "Please accept the cancellation policy.")
)

const genericMessage = "Something went wrong. Please try again."

// userMessage is the text shown for err.
func userMessage(err error) string {
	var (
		ve *httperr.ValidationError
		ie *httperr.IntegrityError
		ue *httperr.UpstreamError
	)

	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.As(err, &ie):
		return ie.Message
	case errors.As(err, &ue) && ue.Message != "":
		return ue.Message
	case errors.Is(err, ErrSubmitting):
		return "Your booking is already being submitted."
	case errors.Is(err, ErrFinished):
		return "This booking session has ended."
	case errors.Is(err, ErrBlocked):
		return "This booking cannot continue. Please start again from the barber's page."
	case errors.Is(err, ErrNoTransition):
		return "That action is not available on this step."
	}
	return genericMessage
}
