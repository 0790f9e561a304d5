package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/booking"
	"github.com/BruksfildServices01/barber-booking/internal/drafts"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/httpresp"
	"github.com/BruksfildServices01/barber-booking/internal/middleware"
)

// ======================================================
// HANDLER
// ======================================================

// Sessions is the booking session registry the handler drives.
type Sessions interface {
	Create(ctx context.Context, session *booking.Session, link booking.LinkParams) (*drafts.Result, error)
	Do(ctx context.Context, id string, fn func(w *booking.Wizard) error) (*drafts.Result, error)
	View(ctx context.Context, id string) (*drafts.Result, error)
	Delete(ctx context.Context, id string) error
}

type BookingHandler struct {
	sessions Sessions
	logger   *zap.Logger
}

func NewBookingHandler(sessions Sessions, logger *zap.Logger) *BookingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingHandler{
		sessions: sessions,
		logger:   logger.Named("booking_handler"),
	}
}

// ======================================================
// REQUESTS
// ======================================================

type SelectGenderRequest struct {
	Gender string `json:"gender" binding:"required"`
}

type SelectServiceRequest struct {
	ServiceID string `json:"service_id" binding:"required"`
}

type SelectBarberRequest struct {
	BarberID string `json:"barber_id" binding:"required"`
}

type SelectDateRequest struct {
	Date string `json:"date" binding:"required"` // YYYY-MM-DD
}

type SelectTimeRequest struct {
	Time string `json:"time" binding:"required"`
}

type PaymentRequest struct {
	Method         string `json:"method"`
	Reference      string `json:"reference"`
	Notes          string `json:"notes"`
	PolicyAccepted bool   `json:"policy_accepted"`
}

// failure is an error body that still carries the session so the client
// can render the step it is on.
type failure struct {
	httperr.HTTPError
	*drafts.Result
}

// ======================================================
// SESSIONS
// ======================================================

func (h *BookingHandler) Create(c *gin.Context) {
	link := booking.LinkParams{
		BarberID:   c.Query("barberId"),
		ServiceID:  c.Query("serviceId"),
		Reschedule: c.Query("reschedule"),
	}

	res, err := h.sessions.Create(c.Request.Context(), middleware.SessionFrom(c), link)
	if err != nil {
		h.logger.Info("booking session not started",
			zap.String("barber_id", link.BarberID),
			zap.Error(err),
		)
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, res)
}

func (h *BookingHandler) Get(c *gin.Context) {
	res, err := h.sessions.View(c.Request.Context(), c.Param("id"))
	h.reply(c, res, err)
}

func (h *BookingHandler) Delete(c *gin.Context) {
	if err := h.sessions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.logger.Error("booking session delete failed", zap.String("session_id", c.Param("id")), zap.Error(err))
		httperr.Internal(c, "session_delete_failed", "Could not discard the booking.")
		return
	}
	httpresp.NoContent(c)
}

// ======================================================
// STEPS
// ======================================================

func (h *BookingHandler) SelectGender(c *gin.Context) {
	var req SelectGenderRequest
	if !bind(c, &req) {
		return
	}
	h.do(c, func(ctx context.Context, w *booking.Wizard) error {
		return w.SelectGender(ctx, req.Gender)
	})
}

func (h *BookingHandler) SelectService(c *gin.Context) {
	var req SelectServiceRequest
	if !bind(c, &req) {
		return
	}
	h.do(c, func(ctx context.Context, w *booking.Wizard) error {
		return w.SelectService(ctx, req.ServiceID)
	})
}

func (h *BookingHandler) SelectBarber(c *gin.Context) {
	var req SelectBarberRequest
	if !bind(c, &req) {
		return
	}
	h.do(c, func(ctx context.Context, w *booking.Wizard) error {
		return w.SelectBarber(ctx, req.BarberID)
	})
}

func (h *BookingHandler) Continue(c *gin.Context) {
	h.do(c, func(ctx context.Context, w *booking.Wizard) error {
		return w.Continue(ctx)
	})
}

func (h *BookingHandler) Back(c *gin.Context) {
	h.do(c, func(ctx context.Context, w *booking.Wizard) error {
		return w.Back(ctx)
	})
}

func (h *BookingHandler) SelectDate(c *gin.Context) {
	var req SelectDateRequest
	if !bind(c, &req) {
		return
	}
	h.do(c, func(ctx context.Context, w *booking.Wizard) error {
		return w.SelectDate(ctx, req.Date)
	})
}

func (h *BookingHandler) SelectTime(c *gin.Context) {
	var req SelectTimeRequest
	if !bind(c, &req) {
		return
	}
	h.do(c, func(_ context.Context, w *booking.Wizard) error {
		return w.SelectTime(req.Time)
	})
}

func (h *BookingHandler) SetPayment(c *gin.Context) {
	var req PaymentRequest
	if !bind(c, &req) {
		return
	}
	h.do(c, func(_ context.Context, w *booking.Wizard) error {
		if err := w.AcceptPolicy(req.PolicyAccepted); err != nil {
			return err
		}
		if req.Method == "" {
			return nil
		}
		return w.SetPayment(req.Method, req.Reference, req.Notes)
	})
}

func (h *BookingHandler) Confirm(c *gin.Context) {
	h.do(c, func(ctx context.Context, w *booking.Wizard) error {
		return w.Confirm(ctx)
	})
}

// ======================================================
// HELPERS
// ======================================================

func (h *BookingHandler) do(c *gin.Context, fn func(ctx context.Context, w *booking.Wizard) error) {
	ctx := c.Request.Context()
	res, err := h.sessions.Do(ctx, c.Param("id"), func(w *booking.Wizard) error {
		return fn(ctx, w)
	})
	h.reply(c, res, err)
}

func (h *BookingHandler) reply(c *gin.Context, res *drafts.Result, err error) {
	switch {
	case err == nil:
		httpresp.OK(c, res)
	case httperr.IsBusiness(err, "session_not_found"):
		httperr.NotFound(c, "session_not_found", "This booking has expired. Please start again.")
	case res == nil:
		h.logger.Error("booking session unavailable", zap.String("session_id", c.Param("id")), zap.Error(err))
		httperr.Respond(c, err)
	default:
		status, body := httperr.Classify(err)
		c.JSON(status, failure{HTTPError: body, Result: res})
	}
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return false
	}
	return true
}
