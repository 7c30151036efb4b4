package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/jhasumit/busline/internal/domain"
	"github.com/jhasumit/busline/internal/repo/postgres"
	"github.com/jhasumit/busline/pkg/logger"
)

// sessionTokenBytes gives 128 bits of entropy per token.
const sessionTokenBytes = 16

type SessionService interface {
	Create(ctx context.Context, customerID int64) (*domain.Session, error)
	// Resolve returns the customer owning an active, unexpired session.
	// An expired-but-active session is flipped to logged_out before the
	// unauthenticated error is returned (lazy expiry).
	Resolve(ctx context.Context, token string) (int64, error)
	Logout(ctx context.Context, token string) error
}

type sessionService struct {
	sessions postgres.SessionRepository
	ttl      time.Duration
}

func NewSessionService(sessions postgres.SessionRepository, ttl time.Duration) SessionService {
	return &sessionService{sessions: sessions, ttl: ttl}
}

func (s *sessionService) Create(ctx context.Context, customerID int64) (*domain.Session, error) {
	token, err := newSessionToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	session, err := s.sessions.Create(ctx, customerID, token, time.Now().Add(s.ttl))
	if err != nil {
		return nil, domain.Wrap(domain.CodeStorageFailure, "failed to create session", err)
	}
	return session, nil
}

func (s *sessionService) Resolve(ctx context.Context, token string) (int64, error) {
	if len(token) != sessionTokenBytes*2 {
		return 0, domain.E(domain.CodeUnauthenticated, "invalid session token")
	}

	session, err := s.sessions.FindByToken(ctx, token)
	if err != nil {
		return 0, domain.Wrap(domain.CodeStorageFailure, "failed to look up session", err)
	}
	if session == nil {
		return 0, domain.E(domain.CodeUnauthenticated, "invalid session token")
	}
	if session.Status != domain.SessionActive {
		return 0, domain.E(domain.CodeUnauthenticated, "session is logged out")
	}
	if session.Expired(time.Now()) {
		if _, err := s.sessions.MarkLoggedOut(ctx, session.ID); err != nil {
			logger.ErrorContext(ctx, "Failed to expire session", "error", err, "session_id", session.ID)
		}
		return 0, domain.E(domain.CodeUnauthenticated, "session expired")
	}
	return session.CustomerID, nil
}

func (s *sessionService) Logout(ctx context.Context, token string) error {
	session, err := s.sessions.FindByToken(ctx, token)
	if err != nil {
		return domain.Wrap(domain.CodeStorageFailure, "failed to look up session", err)
	}
	if session == nil || session.Status != domain.SessionActive {
		return domain.E(domain.CodeUnauthenticated, "invalid session token")
	}
	if _, err := s.sessions.MarkLoggedOut(ctx, session.ID); err != nil {
		return domain.Wrap(domain.CodeStorageFailure, "failed to log out session", err)
	}
	return nil
}

func newSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
