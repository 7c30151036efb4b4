package domain

import "time"

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionLoggedOut SessionStatus = "logged_out"
)

// Session is an opaque bearer token bound to one customer. A customer may
// hold any number of concurrent sessions. Expiry is enforced lazily: an
// expired-but-active row is flipped to logged_out on first resolve.
type Session struct {
	ID         int64         `json:"id"`
	CustomerID int64         `json:"customer_id"`
	Token      string        `json:"token"`
	Status     SessionStatus `json:"status"`
	ValidTill  time.Time     `json:"valid_till"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ValidTill.After(now)
}
