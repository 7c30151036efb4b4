package service_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhasumit/busline/internal/domain"
)

// ---------- Event bus ----------

type mockPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (m *mockPublisher) Publish(_ context.Context, subject string, _ interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subjects = append(m.subjects, subject)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

// ---------- Sessions ----------

type mockSessionRepo struct {
	mu       sync.Mutex
	nextID   int64
	sessions map[string]*domain.Session
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (m *mockSessionRepo) Create(_ context.Context, customerID int64, token string, validTill time.Time) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	s := &domain.Session{
		ID:         m.nextID,
		CustomerID: customerID,
		Token:      token,
		Status:     domain.SessionActive,
		ValidTill:  validTill,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	m.sessions[token] = s
	return s, nil
}

func (m *mockSessionRepo) FindByToken(_ context.Context, token string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *mockSessionRepo) MarkLoggedOut(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.ID == id && s.Status == domain.SessionActive {
			s.Status = domain.SessionLoggedOut
			return true, nil
		}
	}
	return false, nil
}

// ---------- Customers ----------

type mockCustomerRepo struct {
	mu        sync.Mutex
	nextID    int64
	customers map[string]*domain.Customer
}

func newMockCustomerRepo() *mockCustomerRepo {
	return &mockCustomerRepo{customers: make(map[string]*domain.Customer)}
}

func (m *mockCustomerRepo) Create(_ context.Context, req *domain.SignupRequest, passwordHash string) (*domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.customers[req.Email]; exists {
		return nil, domain.E(domain.CodeConflict, "email already taken")
	}
	m.nextID++
	c := &domain.Customer{
		ID:            m.nextID,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		PasswordHash:  passwordHash,
		EmailVerified: domain.Unverified,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	m.customers[req.Email] = c
	return c, nil
}

func (m *mockCustomerRepo) FindByEmail(_ context.Context, email string) (*domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[email]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *mockCustomerRepo) FindByID(_ context.Context, id int64) (*domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.customers {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockCustomerRepo) MarkVerified(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.customers {
		if c.ID == id {
			c.EmailVerified = domain.Verified
			return nil
		}
	}
	return nil
}

// ---------- OTP store ----------

type mockOTPStore struct {
	mu       sync.Mutex
	codes    map[string]string
	attempts map[string]int64
}

func newMockOTPStore() *mockOTPStore {
	return &mockOTPStore{
		codes:    make(map[string]string),
		attempts: make(map[string]int64),
	}
}

func (m *mockOTPStore) Put(_ context.Context, email, codeHash string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[email] = codeHash
	delete(m.attempts, email)
	return nil
}

func (m *mockOTPStore) Get(_ context.Context, email string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	hash, ok := m.codes[email]
	return hash, ok, nil
}

func (m *mockOTPStore) Consume(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.codes, email)
	delete(m.attempts, email)
	return nil
}

func (m *mockOTPStore) IncrementAttempts(_ context.Context, email string, _ time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts[email]++
	return m.attempts[email], nil
}

// ---------- Mailer ----------

type mockMailer struct {
	mu       sync.Mutex
	lastTo   string
	lastCode string
	sent     int
	sendErr  error
}

func (m *mockMailer) SendOTPEmail(toEmail, _, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastTo = toEmail
	m.lastCode = code
	m.sent++
	return m.sendErr
}

// ---------- Catalog ----------

type mockCatalogRepo struct {
	routes map[int64]*domain.Route
}

func newMockCatalogRepo() *mockCatalogRepo {
	return &mockCatalogRepo{routes: make(map[int64]*domain.Route)}
}

func (m *mockCatalogRepo) addRoute(id int64, capacity int) {
	m.routes[id] = &domain.Route{
		ID:    id,
		BusID: id,
		Bus:   &domain.Bus{ID: id, Name: "Test Bus", BusNo: "TB-1", Capacity: capacity},
	}
}

func (m *mockCatalogRepo) FindCities(context.Context, string) ([]domain.CityListing, error) {
	return nil, nil
}

func (m *mockCatalogRepo) ListBuses(context.Context) ([]domain.Bus, error) { return nil, nil }

func (m *mockCatalogRepo) GetBus(context.Context, int64) (*domain.Bus, error) { return nil, nil }

func (m *mockCatalogRepo) GetRoute(_ context.Context, id int64) (*domain.Route, error) {
	rt, ok := m.routes[id]
	if !ok {
		return nil, nil
	}
	return rt, nil
}

func (m *mockCatalogRepo) ListRoutes(context.Context, *int64) ([]domain.Route, error) {
	return nil, nil
}

// ---------- Bookings ----------

// mockBookingRepo mirrors the storage contract: the capacity check and
// insert run under one lock, serialized for all callers.
type mockBookingRepo struct {
	mu         sync.Mutex
	capacities map[int64]int
	nextID     int64
	bookings   map[int64]*domain.Booking
}

func newMockBookingRepo() *mockBookingRepo {
	return &mockBookingRepo{
		capacities: make(map[int64]int),
		bookings:   make(map[int64]*domain.Booking),
	}
}

func (m *mockBookingRepo) addRoute(routeID int64, capacity int) {
	m.capacities[routeID] = capacity
}

func (m *mockBookingRepo) CreateReserved(_ context.Context, customerID, routeID int64, seats int) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	capacity, ok := m.capacities[routeID]
	if !ok {
		return nil, domain.E(domain.CodeNotFound, "route not found")
	}

	committed := 0
	for _, b := range m.bookings {
		if b.RouteID == routeID && b.Status.CountsAgainstCapacity() {
			committed += b.SeatsBooked
		}
	}
	if committed+seats > capacity {
		return nil, domain.E(domain.CodeCapacityExceeded, "not enough seats available")
	}

	m.nextID++
	b := &domain.Booking{
		ID:          m.nextID,
		CustomerID:  customerID,
		RouteID:     routeID,
		SeatsBooked: seats,
		Status:      domain.BookingPending,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	m.bookings[b.ID] = b
	return b, nil
}

func (m *mockBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (m *mockBookingRepo) ListByCustomer(_ context.Context, customerID int64) ([]domain.BookingSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var summaries []domain.BookingSummary
	for _, b := range m.bookings {
		if b.CustomerID != customerID {
			continue
		}
		summaries = append(summaries, domain.BookingSummary{
			ID:          b.ID,
			RouteID:     b.RouteID,
			SeatsBooked: b.SeatsBooked,
			Status:      b.Status,
			BookedAt:    b.CreatedAt,
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID > summaries[j].ID })
	return summaries, nil
}

func (m *mockBookingRepo) CommittedSeats(_ context.Context, routeID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	committed := 0
	for _, b := range m.bookings {
		if b.RouteID == routeID && b.Status.CountsAgainstCapacity() {
			committed += b.SeatsBooked
		}
	}
	return committed, nil
}

func (m *mockBookingRepo) setStatus(id int64, status domain.BookingStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.bookings[id]; ok {
		b.Status = status
	}
}

// ---------- Payments ----------

type mockPaymentRepo struct {
	mu       sync.Mutex
	nextID   int64
	statuses map[int64]domain.BookingStatus
	payments []domain.Payment
}

func newMockPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{statuses: make(map[int64]domain.BookingStatus)}
}

func (m *mockPaymentRepo) addBooking(id int64, status domain.BookingStatus) {
	m.statuses[id] = status
}

func (m *mockPaymentRepo) Record(_ context.Context, bookingID, amount int64, method string, outcome domain.PaymentStatus) (*domain.Payment, domain.BookingStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	status, ok := m.statuses[bookingID]
	if !ok {
		return nil, "", domain.E(domain.CodeNotFound, "booking not found")
	}

	m.nextID++
	p := domain.Payment{
		ID:        m.nextID,
		BookingID: bookingID,
		Amount:    amount,
		Method:    method,
		Status:    outcome,
		CreatedAt: time.Now(),
	}
	m.payments = append(m.payments, p)

	if outcome == domain.PaymentSuccess && status == domain.BookingPending {
		status = domain.BookingConfirmed
		m.statuses[bookingID] = status
	}
	return &p, status, nil
}

func (m *mockPaymentRepo) ListByBooking(_ context.Context, bookingID int64) ([]domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var payments []domain.Payment
	for _, p := range m.payments {
		if p.BookingID == bookingID {
			payments = append(payments, p)
		}
	}
	return payments, nil
}
