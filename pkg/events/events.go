package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/jhasumit/busline/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// Event subjects
const (
	CustomerSignedUp = "customer.signed_up"
	CustomerVerified = "customer.verified"

	BookingCreated   = "booking.created"
	BookingConfirmed = "booking.confirmed"

	PaymentRecorded = "payment.recorded"

	NotifySend = "notify.send"
)

// Event payloads
type CustomerSignedUpEvent struct {
	CustomerID int64     `json:"customer_id"`
	Email      string    `json:"email"`
	SignedUpAt time.Time `json:"signed_up_at"`
}

type CustomerVerifiedEvent struct {
	CustomerID int64     `json:"customer_id"`
	Email      string    `json:"email"`
	VerifiedAt time.Time `json:"verified_at"`
}

type BookingCreatedEvent struct {
	BookingID   int64     `json:"booking_id"`
	CustomerID  int64     `json:"customer_id"`
	RouteID     int64     `json:"route_id"`
	SeatsBooked int       `json:"seats_booked"`
	CreatedAt   time.Time `json:"created_at"`
}

type BookingConfirmedEvent struct {
	BookingID   int64     `json:"booking_id"`
	PaymentID   int64     `json:"payment_id"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

type PaymentRecordedEvent struct {
	PaymentID  int64     `json:"payment_id"`
	BookingID  int64     `json:"booking_id"`
	Amount     int64     `json:"amount"`
	Method     string    `json:"method"`
	Status     string    `json:"status"`
	RecordedAt time.Time `json:"recorded_at"`
}

type NotificationEvent struct {
	Type      string                 `json:"type"`
	Recipient string                 `json:"recipient"`
	Subject   string                 `json:"subject"`
	Data      map[string]interface{} `json:"data"`
}
