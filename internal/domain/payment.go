package domain

import "time"

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch PaymentStatus(s) {
	case PaymentPending, PaymentSuccess, PaymentFailed:
		return PaymentStatus(s), true
	default:
		return "", false
	}
}

// Payment is one attempt against a booking. Retries after failure create
// additional rows; a booking can accumulate several payments.
type Payment struct {
	ID        int64         `json:"id"`
	BookingID int64         `json:"booking_id"`
	Amount    int64         `json:"amount"` // minor units
	Method    string        `json:"payment_method"`
	Status    PaymentStatus `json:"payment_status"`
	CreatedAt time.Time     `json:"created_at"`
}

type RecordPaymentRequest struct {
	BookingID int64  `json:"booking_id"`
	Amount    int64  `json:"amount"`
	Method    string `json:"payment_method"`
	Status    string `json:"payment_status"`
}

func (r *RecordPaymentRequest) Validate() error {
	if r.BookingID <= 0 {
		return E(CodeInvalidInput, "booking_id is required")
	}
	if r.Amount <= 0 {
		return E(CodeInvalidInput, "amount must be positive")
	}
	if r.Method == "" {
		return E(CodeInvalidInput, "payment_method is required")
	}
	if _, ok := ParsePaymentStatus(r.Status); !ok {
		return E(CodeInvalidInput, "payment_status must be pending, success, or failed")
	}
	return nil
}
