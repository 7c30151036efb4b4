package service

import (
	"context"
	"time"

	"github.com/jhasumit/busline/internal/domain"
	"github.com/jhasumit/busline/internal/repo/postgres"
	"github.com/jhasumit/busline/pkg/events"
	"github.com/jhasumit/busline/pkg/logger"
)

// PaymentService records payment attempts against bookings. A successful
// payment confirms its booking in the same transaction; repeated success
// outcomes are idempotent on booking status. A failed or pending outcome
// leaves the booking pending, and the seats it holds stay committed
// until an explicit cancellation.
type PaymentService interface {
	RecordPayment(ctx context.Context, req *domain.RecordPaymentRequest) (*domain.Payment, domain.BookingStatus, error)
}

type paymentService struct {
	payments postgres.PaymentRepository
	eventBus events.Publisher
}

func NewPaymentService(payments postgres.PaymentRepository, eventBus events.Publisher) PaymentService {
	return &paymentService{payments: payments, eventBus: eventBus}
}

func (s *paymentService) RecordPayment(ctx context.Context, req *domain.RecordPaymentRequest) (*domain.Payment, domain.BookingStatus, error) {
	if err := req.Validate(); err != nil {
		return nil, "", err
	}
	outcome, _ := domain.ParsePaymentStatus(req.Status)

	payment, status, err := s.payments.Record(ctx, req.BookingID, req.Amount, req.Method, outcome)
	if err != nil {
		return nil, "", err
	}

	if err := s.eventBus.Publish(ctx, events.PaymentRecorded, events.PaymentRecordedEvent{
		PaymentID:  payment.ID,
		BookingID:  payment.BookingID,
		Amount:     payment.Amount,
		Method:     payment.Method,
		Status:     string(payment.Status),
		RecordedAt: payment.CreatedAt,
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish payment recorded event", "error", err, "payment_id", payment.ID)
	}

	if outcome == domain.PaymentSuccess {
		switch status {
		case domain.BookingConfirmed:
			if err := s.eventBus.Publish(ctx, events.BookingConfirmed, events.BookingConfirmedEvent{
				BookingID:   payment.BookingID,
				PaymentID:   payment.ID,
				ConfirmedAt: time.Now(),
			}); err != nil {
				logger.ErrorContext(ctx, "Failed to publish booking confirmed event", "error", err, "booking_id", payment.BookingID)
			}
		case domain.BookingCancelled:
			// The payment row is kept for the audit trail, but a
			// cancelled booking never comes back.
			return payment, status, domain.E(domain.CodeConflict, "booking is cancelled; payment needs manual reconciliation")
		}
	}

	return payment, status, nil
}
