package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhasumit/busline/internal/domain"
	"github.com/jhasumit/busline/internal/platform/mailer"
	"github.com/jhasumit/busline/internal/repo/postgres"
	"github.com/jhasumit/busline/internal/repo/redisstore"
	"github.com/jhasumit/busline/pkg/config"
	"github.com/jhasumit/busline/pkg/events"
	"github.com/jhasumit/busline/pkg/logger"
)

type AuthService interface {
	// Signup creates an unverified customer and sends an OTP. Signing up
	// again with an unverified email resends a fresh OTP instead of
	// failing; a verified email is a conflict.
	Signup(ctx context.Context, req *domain.SignupRequest) error
	// Verify consumes the OTP, marks the customer verified, and opens a
	// session.
	Verify(ctx context.Context, req *domain.VerifyRequest) (*domain.Customer, *domain.Session, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.Customer, *domain.Session, error)
}

type authService struct {
	customers postgres.CustomerRepository
	sessions  SessionService
	otp       redisstore.OTPStore
	mailer    mailer.Service
	eventBus  events.Publisher
	config    *config.Config
}

func NewAuthService(
	customers postgres.CustomerRepository,
	sessions SessionService,
	otp redisstore.OTPStore,
	mailer mailer.Service,
	eventBus events.Publisher,
	config *config.Config,
) AuthService {
	return &authService{
		customers: customers,
		sessions:  sessions,
		otp:       otp,
		mailer:    mailer,
		eventBus:  eventBus,
		config:    config,
	}
}

func (s *authService) Signup(ctx context.Context, req *domain.SignupRequest) error {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return err
	}

	existing, err := s.customers.FindByEmail(ctx, req.Email)
	if err != nil {
		return domain.Wrap(domain.CodeStorageFailure, "failed to check existing customer", err)
	}
	if existing != nil {
		if existing.EmailVerified == domain.Verified {
			return domain.E(domain.CodeConflict, "email already taken")
		}
		// Unfinished signup: resend the code rather than erroring.
		return s.sendOTP(ctx, existing.Email, existing.FirstName)
	}

	passwordHash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	customer, err := s.customers.Create(ctx, req, passwordHash)
	if err != nil {
		return err
	}

	if err := s.eventBus.Publish(ctx, events.CustomerSignedUp, events.CustomerSignedUpEvent{
		CustomerID: customer.ID,
		Email:      customer.Email,
		SignedUpAt: customer.CreatedAt,
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish signup event", "error", err, "customer_id", customer.ID)
	}

	return s.sendOTP(ctx, customer.Email, customer.FirstName)
}

func (s *authService) Verify(ctx context.Context, req *domain.VerifyRequest) (*domain.Customer, *domain.Session, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	customer, err := s.customers.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, nil, domain.Wrap(domain.CodeStorageFailure, "failed to find customer", err)
	}
	if customer == nil {
		return nil, nil, domain.E(domain.CodeNotFound, "no customer with that email found")
	}

	if err := s.checkOTP(ctx, req.Email, req.OTP); err != nil {
		return nil, nil, err
	}

	if customer.EmailVerified != domain.Verified {
		if err := s.customers.MarkVerified(ctx, customer.ID); err != nil {
			return nil, nil, domain.Wrap(domain.CodeStorageFailure, "failed to mark customer verified", err)
		}
		customer.EmailVerified = domain.Verified

		if err := s.eventBus.Publish(ctx, events.CustomerVerified, events.CustomerVerifiedEvent{
			CustomerID: customer.ID,
			Email:      customer.Email,
			VerifiedAt: time.Now(),
		}); err != nil {
			logger.ErrorContext(ctx, "Failed to publish verified event", "error", err, "customer_id", customer.ID)
		}
	}

	session, err := s.sessions.Create(ctx, customer.ID)
	if err != nil {
		return nil, nil, err
	}
	return customer, session, nil
}

func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.Customer, *domain.Session, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	customer, err := s.customers.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, nil, domain.Wrap(domain.CodeStorageFailure, "failed to find customer", err)
	}
	if customer == nil {
		return nil, nil, domain.E(domain.CodeNotFound, "no customer with that email found")
	}

	if customer.EmailVerified != domain.Verified {
		return nil, nil, domain.E(domain.CodeUnauthenticated, "email not verified")
	}

	valid, err := argon2id.ComparePasswordAndHash(req.Password, customer.PasswordHash)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, nil, domain.E(domain.CodeUnauthenticated, "incorrect password")
	}

	session, err := s.sessions.Create(ctx, customer.ID)
	if err != nil {
		return nil, nil, err
	}
	return customer, session, nil
}

func (s *authService) sendOTP(ctx context.Context, email, name string) error {
	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}

	codeHash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash otp: %w", err)
	}

	if err := s.otp.Put(ctx, email, string(codeHash), s.config.Auth.OTPTTL); err != nil {
		return domain.Wrap(domain.CodeStorageFailure, "failed to store otp", err)
	}

	if err := s.mailer.SendOTPEmail(email, name, code); err != nil {
		// The code is stored; delivery failures shouldn't fail signup.
		logger.ErrorContext(ctx, "Failed to send OTP email", "error", err, "email", email)
	}
	return nil
}

func (s *authService) checkOTP(ctx context.Context, email, code string) error {
	badCode := domain.E(domain.CodeInvalidInput, "otp is incorrect or has expired")

	hash, found, err := s.otp.Get(ctx, email)
	if err != nil {
		return domain.Wrap(domain.CodeStorageFailure, "failed to load otp", err)
	}
	if !found {
		return badCode
	}

	attempts, err := s.otp.IncrementAttempts(ctx, email, s.config.Auth.OTPTTL)
	if err != nil {
		return domain.Wrap(domain.CodeStorageFailure, "failed to count otp attempts", err)
	}
	if attempts > int64(s.config.Auth.OTPMaxAttempts) {
		return badCode
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) != nil {
		return badCode
	}

	if err := s.otp.Consume(ctx, email); err != nil {
		logger.ErrorContext(ctx, "Failed to consume otp", "error", err, "email", email)
	}
	return nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
