package audit

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// Sink persists audit events.
type Sink interface {
	Record(ctx context.Context, ev Event) error
}

// Logger writes events to the booking_audits table.
type Logger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Record(ctx context.Context, ev Event) error {
	row := models.BookingAudit{
		SessionID:     ev.SessionID,
		UserID:        ev.UserID,
		Action:        ev.Action,
		BarberID:      ev.BarberID,
		ServiceID:     ev.ServiceID,
		AppointmentID: ev.AppointmentID,
		Metadata:      encodeMetadata(ev.Metadata),
	}

	return l.db.WithContext(ctx).Create(&row).Error
}

// ZapSink emits events as log lines. Used when no database is configured.
type ZapSink struct {
	logger *zap.Logger
}

func NewZapSink(logger *zap.Logger) *ZapSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapSink{logger: logger.Named("audit")}
}

func (s *ZapSink) Record(_ context.Context, ev Event) error {
	s.logger.Info(ev.Action,
		zap.String("session_id", ev.SessionID),
		zap.String("user_id", ev.UserID),
		zap.String("barber_id", ev.BarberID),
		zap.String("service_id", ev.ServiceID),
		zap.String("appointment_id", ev.AppointmentID),
		zap.String("metadata", encodeMetadata(ev.Metadata)),
	)
	return nil
}

func encodeMetadata(metadata any) string {
	if metadata == nil {
		return ""
	}
	b, err := json.Marshal(metadata)
	if err != nil {
		return ""
	}
	return string(b)
}
