package service_test

import (
	"context"
	"testing"

	"github.com/jhasumit/busline/internal/domain"
	"github.com/jhasumit/busline/internal/service"
)

func paymentReq(bookingID int64, status string) *domain.RecordPaymentRequest {
	return &domain.RecordPaymentRequest{
		BookingID: bookingID,
		Amount:    45000,
		Method:    "card",
		Status:    status,
	}
}

func TestRecordPaymentValidation(t *testing.T) {
	svc := service.NewPaymentService(newMockPaymentRepo(), &mockPublisher{})

	cases := []*domain.RecordPaymentRequest{
		{BookingID: 0, Amount: 100, Method: "card", Status: "success"},
		{BookingID: 1, Amount: 0, Method: "card", Status: "success"},
		{BookingID: 1, Amount: 100, Method: "", Status: "success"},
		{BookingID: 1, Amount: 100, Method: "card", Status: "refunded"},
	}
	for i, req := range cases {
		_, _, err := svc.RecordPayment(context.Background(), req)
		if domain.CodeOf(err) != domain.CodeInvalidInput {
			t.Fatalf("case %d: expected invalid_input, got %v", i, err)
		}
	}
}

func TestRecordPaymentUnknownBooking(t *testing.T) {
	svc := service.NewPaymentService(newMockPaymentRepo(), &mockPublisher{})

	_, _, err := svc.RecordPayment(context.Background(), paymentReq(42, "success"))
	if domain.CodeOf(err) != domain.CodeNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestRecordPaymentConfirmsBooking(t *testing.T) {
	payments := newMockPaymentRepo()
	payments.addBooking(1, domain.BookingPending)
	svc := service.NewPaymentService(payments, &mockPublisher{})

	payment, status, err := svc.RecordPayment(context.Background(), paymentReq(1, "success"))
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if payment.Status != domain.PaymentSuccess {
		t.Fatalf("expected success payment, got %s", payment.Status)
	}
	if status != domain.BookingConfirmed {
		t.Fatalf("expected confirmed booking, got %s", status)
	}
}

func TestRecordPaymentSuccessIsIdempotent(t *testing.T) {
	payments := newMockPaymentRepo()
	payments.addBooking(1, domain.BookingPending)
	svc := service.NewPaymentService(payments, &mockPublisher{})
	ctx := context.Background()

	if _, _, err := svc.RecordPayment(ctx, paymentReq(1, "success")); err != nil {
		t.Fatal(err)
	}
	// Replayed confirmation: booking stays confirmed, no error.
	_, status, err := svc.RecordPayment(ctx, paymentReq(1, "success"))
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if status != domain.BookingConfirmed {
		t.Fatalf("expected confirmed booking after replay, got %s", status)
	}

	// Both attempts show up in the audit trail.
	rows, err := payments.ListByBooking(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 payment rows, got %d", len(rows))
	}
}

func TestRecordPaymentFailureLeavesPending(t *testing.T) {
	payments := newMockPaymentRepo()
	payments.addBooking(1, domain.BookingPending)
	svc := service.NewPaymentService(payments, &mockPublisher{})
	ctx := context.Background()

	_, status, err := svc.RecordPayment(ctx, paymentReq(1, "failed"))
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if status != domain.BookingPending {
		t.Fatalf("failed payment must not touch booking status, got %s", status)
	}

	// A later success still confirms.
	_, status, err = svc.RecordPayment(ctx, paymentReq(1, "success"))
	if err != nil {
		t.Fatal(err)
	}
	if status != domain.BookingConfirmed {
		t.Fatalf("expected confirmed after retry, got %s", status)
	}
}

func TestRecordPaymentOnCancelledBooking(t *testing.T) {
	payments := newMockPaymentRepo()
	payments.addBooking(1, domain.BookingCancelled)
	svc := service.NewPaymentService(payments, &mockPublisher{})
	ctx := context.Background()

	payment, status, err := svc.RecordPayment(ctx, paymentReq(1, "success"))
	if domain.CodeOf(err) != domain.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if payment == nil {
		t.Fatal("payment row must still be recorded for reconciliation")
	}
	if status != domain.BookingCancelled {
		t.Fatalf("cancelled booking must stay cancelled, got %s", status)
	}

	rows, _ := payments.ListByBooking(ctx, 1)
	if len(rows) != 1 {
		t.Fatalf("expected 1 payment row, got %d", len(rows))
	}
}
