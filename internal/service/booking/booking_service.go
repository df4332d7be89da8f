package booking

import (
	"context"
	"time"

	"bistrobook/internal/domain"
	"bistrobook/internal/kafka"
	"bistrobook/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
)

type BookingUseCase interface {
	PlaceBooking(ctx context.Context, input PlaceBookingInput) (*domain.Booking, error)
	Get(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*domain.Booking, error)
	CompletePastBookings(ctx context.Context) ([]domain.Booking, error)
}

// Cache serializes concurrent attempts on the same slot. It is optional;
// correctness comes from the storage constraint.
type Cache interface {
	AcquireSlotLock(ctx context.Context, tableID int64, at time.Time, ttl time.Duration) (bool, error)
	ReleaseSlotLock(ctx context.Context, tableID int64, at time.Time) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	tx                 repository.TxRunner
	customers          repository.CustomerRepository
	tables             repository.TableRepository
	bookings           repository.BookingRepository
	cache              Cache
	producer           Producer
	log                *logrus.Logger
	bookingTopic       string
	notificationsTopic string
	slotLockTTL        time.Duration
	completionGrace    time.Duration
}

type PlaceBookingInput struct {
	TableID     int64     `json:"table_id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	BookingTime time.Time `json:"booking_time"`
	Guests      int       `json:"guests"`
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithSlotLockCache(cache Cache, ttl time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = cache
		s.slotLockTTL = ttl
	}
}

func NewBookingService(
	tx repository.TxRunner,
	customers repository.CustomerRepository,
	tables repository.TableRepository,
	bookings repository.BookingRepository,
	producer Producer,
	log *logrus.Logger,
	bookingTopic string,
	completionGrace time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		tx:              tx,
		customers:       customers,
		tables:          tables,
		bookings:        bookings,
		producer:        producer,
		log:             log,
		bookingTopic:    bookingTopic,
		completionGrace: completionGrace,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// PlaceBooking resolves the guest customer, checks the slot and inserts the
// booking, all inside one transaction. Either every write commits or none
// does.
func (s *BookingService) PlaceBooking(ctx context.Context, input PlaceBookingInput) (*domain.Booking, error) {
	if err := validatePlaceBooking(input); err != nil {
		return nil, err
	}
	// An unknown table is a NotFound, not a foreign-key blowup later.
	if _, err := s.tables.ByID(ctx, input.TableID); err != nil {
		return nil, err
	}

	locked := false
	if s.cache != nil {
		ok, err := s.cache.AcquireSlotLock(ctx, input.TableID, input.BookingTime, s.slotLockTTL)
		if err != nil {
			s.log.WithError(err).Warn("slot lock unavailable, falling through to database check")
		} else if !ok {
			return nil, domain.Conflictf("table %d is already being booked at %s", input.TableID, input.BookingTime.Format(time.RFC3339))
		} else {
			locked = true
		}
	}

	booking := &domain.Booking{
		TableID:     input.TableID,
		BookingTime: input.BookingTime,
		Guests:      input.Guests,
	}

	err := s.tx.WithinTx(ctx, func(tx pgx.Tx) error {
		customerID, err := s.customers.UpsertGuest(ctx, tx, &domain.Customer{
			FirstName: input.FirstName,
			LastName:  input.LastName,
			Email:     input.Email,
			Phone:     input.Phone,
		})
		if err != nil {
			return err
		}
		booking.CustomerID = customerID

		taken, err := s.bookings.SlotTaken(ctx, tx, input.TableID, input.BookingTime)
		if err != nil {
			return err
		}
		if taken {
			return domain.Conflictf("table %d is already booked at %s", input.TableID, input.BookingTime.Format(time.RFC3339))
		}

		return s.bookings.Create(ctx, tx, booking)
	})
	if err != nil {
		if locked {
			_ = s.cache.ReleaseSlotLock(ctx, input.TableID, input.BookingTime)
		}
		return nil, err
	}

	s.publish(ctx, "booking_created", booking, input.Email)
	return booking, nil
}

func (s *BookingService) Get(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.bookings.ByID(ctx, id)
}

func (s *BookingService) UpdateStatus(ctx context.Context, id int64, status string) (*domain.Booking, error) {
	parsed, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	updated, err := s.bookings.UpdateStatus(ctx, id, parsed)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "booking_status_changed", updated, "")
	return updated, nil
}

// CompletePastBookings marks pending bookings whose time has passed the
// completion grace as completed. Called periodically by the worker.
func (s *BookingService) CompletePastBookings(ctx context.Context) ([]domain.Booking, error) {
	deadline := time.Now().Add(-s.completionGrace)
	completed, err := s.bookings.CompletePendingBefore(ctx, deadline)
	if err != nil {
		return nil, err
	}
	for i := range completed {
		s.publish(ctx, "booking_completed", &completed[i], "")
	}
	return completed, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, b *domain.Booking, email string) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		EventID:     uuid.NewString(),
		Type:        eventType,
		BookingID:   b.ID,
		TableID:     b.TableID,
		CustomerID:  b.CustomerID,
		Email:       email,
		BookingTime: b.BookingTime,
		Guests:      b.Guests,
		Status:      string(b.Status),
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, event.EventID, event); err != nil {
		s.log.WithError(err).WithField("type", eventType).Warn("failed to publish booking event")
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, event.EventID, event); err != nil {
			s.log.WithError(err).WithField("type", eventType).Warn("failed to publish notification")
		}
	}
}

func validatePlaceBooking(input PlaceBookingInput) error {
	switch {
	case input.TableID <= 0:
		return domain.Validationf("table_id is required")
	case input.FirstName == "":
		return domain.Validationf("first_name is required")
	case input.LastName == "":
		return domain.Validationf("last_name is required")
	case input.Email == "":
		return domain.Validationf("email is required")
	case input.Phone == "":
		return domain.Validationf("phone is required")
	case input.BookingTime.IsZero():
		return domain.Validationf("booking_time is required")
	case input.Guests <= 0:
		return domain.Validationf("guests must be positive")
	}
	return nil
}

var _ BookingUseCase = (*BookingService)(nil)
