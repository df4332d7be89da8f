package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"bistrobook/internal/domain"
	"bistrobook/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// stubTxRunner runs the unit of work without a real database transaction.
type stubTxRunner struct {
	beginErr error
}

func (s stubTxRunner) WithinTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	if s.beginErr != nil {
		return s.beginErr
	}
	return fn(nil)
}

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) UpsertGuest(ctx context.Context, q repository.Querier, c *domain.Customer) (int64, error) {
	args := m.Called(ctx, q, c)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) ByUserID(ctx context.Context, q repository.Querier, userID int64) (*domain.Customer, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

type MockTableRepository struct {
	mock.Mock
}

func (m *MockTableRepository) List(ctx context.Context, locale string) ([]domain.Table, error) {
	args := m.Called(ctx, locale)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Table), args.Error(1)
}

func (m *MockTableRepository) ByID(ctx context.Context, id int64) (*domain.Table, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Table), args.Error(1)
}

func (m *MockTableRepository) Create(ctx context.Context, t *domain.Table, locale string) error {
	return m.Called(ctx, t, locale).Error(0)
}

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) SlotTaken(ctx context.Context, q repository.Querier, tableID int64, at time.Time) (bool, error) {
	args := m.Called(ctx, q, tableID, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) Create(ctx context.Context, q repository.Querier, b *domain.Booking) error {
	args := m.Called(ctx, q, b)
	if args.Error(0) == nil {
		b.ID = 1
		b.Status = domain.StatusPending
	}
	return args.Error(0)
}

func (m *MockBookingRepository) ByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.Status) (*domain.Booking, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) CompletePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, deadline)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) AcquireSlotLock(ctx context.Context, tableID int64, at time.Time, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, tableID, at, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) ReleaseSlotLock(ctx context.Context, tableID int64, at time.Time) error {
	args := m.Called(ctx, tableID, at)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func validInput() PlaceBookingInput {
	return PlaceBookingInput{
		TableID:     5,
		FirstName:   "Anders",
		LastName:    "Svensson",
		Email:       "anders@example.com",
		Phone:       "0701234567",
		BookingTime: time.Date(2025, 8, 20, 18, 0, 0, 0, time.UTC),
		Guests:      2,
	}
}

func TestBookingService_PlaceBooking_Success(t *testing.T) {
	customers := &MockCustomerRepository{}
	tables := &MockTableRepository{}
	bookings := &MockBookingRepository{}
	cache := &MockCache{}
	producer := &MockProducer{}

	service := NewBookingService(
		stubTxRunner{}, customers, tables, bookings, producer, testLogger(),
		"booking-events", 3*time.Hour,
		WithNotificationsTopic("notifications"),
		WithSlotLockCache(cache, 10*time.Second),
	)

	ctx := context.Background()
	input := validInput()

	tables.On("ByID", ctx, int64(5)).Return(&domain.Table{ID: 5, TableNumber: 5, Seats: 4}, nil).Once()
	cache.On("AcquireSlotLock", ctx, int64(5), input.BookingTime, 10*time.Second).Return(true, nil).Once()
	customers.On("UpsertGuest", ctx, mock.Anything, mock.AnythingOfType("*domain.Customer")).Return(int64(42), nil).Once()
	bookings.On("SlotTaken", ctx, mock.Anything, int64(5), input.BookingTime).Return(false, nil).Once()
	bookings.On("Create", ctx, mock.Anything, mock.AnythingOfType("*domain.Booking")).Return(nil).Once()
	producer.On("Publish", ctx, "booking-events", mock.Anything, mock.Anything).Return(nil).Once()
	producer.On("Publish", ctx, "notifications", mock.Anything, mock.Anything).Return(nil).Once()

	created, err := service.PlaceBooking(ctx, input)

	assert.NoError(t, err)
	assert.NotNil(t, created)
	assert.Equal(t, domain.StatusPending, created.Status)
	assert.Equal(t, int64(42), created.CustomerID)
	assert.Equal(t, int64(5), created.TableID)
	assert.Equal(t, 2, created.Guests)

	customers.AssertExpectations(t)
	tables.AssertExpectations(t)
	bookings.AssertExpectations(t)
	cache.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestBookingService_PlaceBooking_ValidationErrors(t *testing.T) {
	service := NewBookingService(stubTxRunner{}, nil, nil, nil, nil, testLogger(), "", time.Hour)
	ctx := context.Background()

	testCases := []struct {
		name   string
		mutate func(*PlaceBookingInput)
	}{
		{name: "missing table", mutate: func(in *PlaceBookingInput) { in.TableID = 0 }},
		{name: "missing first name", mutate: func(in *PlaceBookingInput) { in.FirstName = "" }},
		{name: "missing last name", mutate: func(in *PlaceBookingInput) { in.LastName = "" }},
		{name: "missing email", mutate: func(in *PlaceBookingInput) { in.Email = "" }},
		{name: "missing phone", mutate: func(in *PlaceBookingInput) { in.Phone = "" }},
		{name: "zero booking time", mutate: func(in *PlaceBookingInput) { in.BookingTime = time.Time{} }},
		{name: "zero guests", mutate: func(in *PlaceBookingInput) { in.Guests = 0 }},
		{name: "negative guests", mutate: func(in *PlaceBookingInput) { in.Guests = -1 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)
			created, err := service.PlaceBooking(ctx, input)
			assert.Nil(t, created)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestBookingService_PlaceBooking_UnknownTable(t *testing.T) {
	tables := &MockTableRepository{}
	bookings := &MockBookingRepository{}
	service := NewBookingService(stubTxRunner{}, nil, tables, bookings, nil, testLogger(), "", time.Hour)

	ctx := context.Background()
	input := validInput()
	tables.On("ByID", ctx, int64(5)).Return(nil, domain.NotFoundf("table not found")).Once()

	created, err := service.PlaceBooking(ctx, input)

	assert.Nil(t, created)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingService_PlaceBooking_SlotAlreadyLocked(t *testing.T) {
	tables := &MockTableRepository{}
	cache := &MockCache{}
	service := NewBookingService(
		stubTxRunner{}, nil, tables, nil, nil, testLogger(), "", time.Hour,
		WithSlotLockCache(cache, 10*time.Second),
	)

	ctx := context.Background()
	input := validInput()
	tables.On("ByID", ctx, int64(5)).Return(&domain.Table{ID: 5}, nil).Once()
	cache.On("AcquireSlotLock", ctx, int64(5), input.BookingTime, 10*time.Second).Return(false, nil).Once()

	created, err := service.PlaceBooking(ctx, input)

	assert.Nil(t, created)
	assert.ErrorIs(t, err, domain.ErrConflict)
	cache.AssertExpectations(t)
}

func TestBookingService_PlaceBooking_SlotTaken(t *testing.T) {
	customers := &MockCustomerRepository{}
	tables := &MockTableRepository{}
	bookings := &MockBookingRepository{}
	cache := &MockCache{}

	service := NewBookingService(
		stubTxRunner{}, customers, tables, bookings, nil, testLogger(), "", time.Hour,
		WithSlotLockCache(cache, 10*time.Second),
	)

	ctx := context.Background()
	input := validInput()

	tables.On("ByID", ctx, int64(5)).Return(&domain.Table{ID: 5}, nil).Once()
	cache.On("AcquireSlotLock", ctx, int64(5), input.BookingTime, 10*time.Second).Return(true, nil).Once()
	customers.On("UpsertGuest", ctx, mock.Anything, mock.Anything).Return(int64(42), nil).Once()
	bookings.On("SlotTaken", ctx, mock.Anything, int64(5), input.BookingTime).Return(true, nil).Once()
	cache.On("ReleaseSlotLock", ctx, int64(5), input.BookingTime).Return(nil).Once()

	created, err := service.PlaceBooking(ctx, input)

	assert.Nil(t, created)
	assert.ErrorIs(t, err, domain.ErrConflict)
	// The insert never ran; the whole unit rolled back.
	bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	cache.AssertExpectations(t)
}

func TestBookingService_PlaceBooking_ConstraintConflictOnInsert(t *testing.T) {
	// Two requests can both pass the pre-check; the unique index decides.
	customers := &MockCustomerRepository{}
	tables := &MockTableRepository{}
	bookings := &MockBookingRepository{}

	service := NewBookingService(stubTxRunner{}, customers, tables, bookings, nil, testLogger(), "", time.Hour)

	ctx := context.Background()
	input := validInput()

	tables.On("ByID", ctx, int64(5)).Return(&domain.Table{ID: 5}, nil).Once()
	customers.On("UpsertGuest", ctx, mock.Anything, mock.Anything).Return(int64(42), nil).Once()
	bookings.On("SlotTaken", ctx, mock.Anything, int64(5), input.BookingTime).Return(false, nil).Once()
	bookings.On("Create", ctx, mock.Anything, mock.Anything).
		Return(domain.Conflictf("table 5 is already booked at 2025-08-20T18:00:00Z")).Once()

	created, err := service.PlaceBooking(ctx, input)

	assert.Nil(t, created)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestBookingService_PlaceBooking_UpsertFailureReleasesLock(t *testing.T) {
	customers := &MockCustomerRepository{}
	tables := &MockTableRepository{}
	bookings := &MockBookingRepository{}
	cache := &MockCache{}

	service := NewBookingService(
		stubTxRunner{}, customers, tables, bookings, nil, testLogger(), "", time.Hour,
		WithSlotLockCache(cache, 10*time.Second),
	)

	ctx := context.Background()
	input := validInput()
	boom := errors.New("connection reset")

	tables.On("ByID", ctx, int64(5)).Return(&domain.Table{ID: 5}, nil).Once()
	cache.On("AcquireSlotLock", ctx, int64(5), input.BookingTime, 10*time.Second).Return(true, nil).Once()
	customers.On("UpsertGuest", ctx, mock.Anything, mock.Anything).Return(int64(0), boom).Once()
	cache.On("ReleaseSlotLock", ctx, int64(5), input.BookingTime).Return(nil).Once()

	created, err := service.PlaceBooking(ctx, input)

	assert.Nil(t, created)
	assert.ErrorIs(t, err, boom)
	cache.AssertExpectations(t)
}

func TestBookingService_Get(t *testing.T) {
	bookings := &MockBookingRepository{}
	service := NewBookingService(stubTxRunner{}, nil, nil, bookings, nil, testLogger(), "", time.Hour)

	ctx := context.Background()
	bookings.On("ByID", ctx, int64(7)).Return(&domain.Booking{ID: 7, TableID: 5}, nil).Once()

	got, err := service.Get(ctx, 7)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)

	bookings.On("ByID", ctx, int64(8)).Return(nil, domain.NotFoundf("booking not found")).Once()
	_, err = service.Get(ctx, 8)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookingService_UpdateStatus(t *testing.T) {
	bookings := &MockBookingRepository{}
	service := NewBookingService(stubTxRunner{}, nil, nil, bookings, nil, testLogger(), "", time.Hour)

	ctx := context.Background()
	updated := &domain.Booking{ID: 7, Status: domain.StatusConfirmed}
	bookings.On("UpdateStatus", ctx, int64(7), domain.StatusConfirmed).Return(updated, nil).Once()

	got, err := service.UpdateStatus(ctx, 7, "confirmed")
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, got.Status)

	_, err = service.UpdateStatus(ctx, 7, "sideways")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBookingService_CompletePastBookings(t *testing.T) {
	bookings := &MockBookingRepository{}
	producer := &MockProducer{}
	service := NewBookingService(stubTxRunner{}, nil, nil, bookings, producer, testLogger(), "booking-events", 3*time.Hour)

	ctx := context.Background()
	completed := []domain.Booking{
		{ID: 1, TableID: 2, Status: domain.StatusCompleted},
		{ID: 2, TableID: 3, Status: domain.StatusCompleted},
	}
	bookings.On("CompletePendingBefore", ctx, mock.AnythingOfType("time.Time")).Return(completed, nil).Once()
	producer.On("Publish", ctx, "booking-events", mock.Anything, mock.Anything).Return(nil).Times(2)

	got, err := service.CompletePastBookings(ctx)
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	producer.AssertExpectations(t)
}
