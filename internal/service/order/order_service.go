package order

import (
	"context"
	"errors"

	"bistrobook/internal/domain"
	"bistrobook/internal/kafka"
	"bistrobook/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type OrderUseCase interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*PlacedOrder, error)
	Get(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*domain.Order, error)
	Delete(ctx context.Context, id int64) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type OrderService struct {
	tx                 repository.TxRunner
	customers          repository.CustomerRepository
	bookings           repository.BookingRepository
	menu               repository.MenuRepository
	orders             repository.OrderRepository
	producer           Producer
	log                *logrus.Logger
	orderTopic         string
	notificationsTopic string
}

type OrderItemInput struct {
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int   `json:"quantity"`
}

type PlaceOrderInput struct {
	// UserID is the authenticated caller, or nil for guests. When set, the
	// guest contact fields are ignored.
	UserID    *int64
	FirstName string
	LastName  string
	Email     string
	Phone     string
	BookingID *int64
	Items     []OrderItemInput
}

type PlacedOrder struct {
	Order domain.Order
	Total decimal.Decimal
}

type OrderServiceOption func(*OrderService)

func WithNotificationsTopic(topic string) OrderServiceOption {
	return func(s *OrderService) {
		s.notificationsTopic = topic
	}
}

func NewOrderService(
	tx repository.TxRunner,
	customers repository.CustomerRepository,
	bookings repository.BookingRepository,
	menu repository.MenuRepository,
	orders repository.OrderRepository,
	producer Producer,
	log *logrus.Logger,
	orderTopic string,
	opts ...OrderServiceOption,
) *OrderService {
	service := &OrderService{
		tx:         tx,
		customers:  customers,
		bookings:   bookings,
		menu:       menu,
		orders:     orders,
		producer:   producer,
		log:        log,
		orderTopic: orderTopic,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// PlaceOrder resolves the customer, looks up authoritative prices, and writes
// the order header plus its lines with price snapshots, all inside one
// transaction. A failure at any step leaves nothing behind, the customer
// upsert included.
func (s *OrderService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*PlacedOrder, error) {
	if err := validatePlaceOrder(input); err != nil {
		return nil, err
	}

	if input.BookingID != nil {
		if _, err := s.bookings.ByID(ctx, *input.BookingID); err != nil {
			return nil, err
		}
	}

	order := &domain.Order{BookingID: input.BookingID}
	var customerEmail string
	err := s.tx.WithinTx(ctx, func(tx pgx.Tx) error {
		customerID, email, err := s.resolveCustomer(ctx, tx, input)
		if err != nil {
			return err
		}
		order.CustomerID = customerID
		customerEmail = email

		ids := make([]int64, len(input.Items))
		for i, item := range input.Items {
			ids[i] = item.MenuItemID
		}
		prices, err := s.menu.PricesByIDs(ctx, tx, ids)
		if err != nil {
			return err
		}

		if err := s.orders.CreateHeader(ctx, tx, order); err != nil {
			return err
		}

		lines := make([]domain.OrderLine, len(input.Items))
		for i, item := range input.Items {
			lines[i] = domain.OrderLine{
				OrderID:      order.ID,
				MenuItemID:   item.MenuItemID,
				Quantity:     item.Quantity,
				PriceAtOrder: prices[item.MenuItemID],
			}
		}
		if err := s.orders.InsertLines(ctx, tx, lines); err != nil {
			return err
		}
		order.Lines = lines
		return nil
	})
	if err != nil {
		return nil, err
	}

	placed := &PlacedOrder{Order: *order, Total: order.Total()}
	s.publish(ctx, "order_created", placed, customerEmail)
	return placed, nil
}

// resolveCustomer returns the customer id and email the order belongs to:
// the linked profile for authenticated callers, an upserted guest otherwise.
func (s *OrderService) resolveCustomer(ctx context.Context, tx pgx.Tx, input PlaceOrderInput) (int64, string, error) {
	if input.UserID != nil {
		customer, err := s.customers.ByUserID(ctx, tx, *input.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// A signed-in user without a customer row is a setup bug,
				// not a user error.
				return 0, "", domain.Preconditionf("authenticated user has no associated customer profile")
			}
			return 0, "", err
		}
		return customer.ID, customer.Email, nil
	}
	id, err := s.customers.UpsertGuest(ctx, tx, &domain.Customer{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
	})
	return id, input.Email, err
}

func (s *OrderService) Get(ctx context.Context, id int64) (*domain.Order, error) {
	return s.orders.ByID(ctx, id)
}

func (s *OrderService) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, error) {
	return s.orders.List(ctx, filter)
}

func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status string) (*domain.Order, error) {
	parsed, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	return s.orders.UpdateStatus(ctx, id, parsed)
}

func (s *OrderService) Delete(ctx context.Context, id int64) error {
	return s.orders.Delete(ctx, id)
}

func (s *OrderService) publish(ctx context.Context, eventType string, placed *PlacedOrder, email string) {
	if s.producer == nil || s.orderTopic == "" {
		return
	}
	event := kafka.OrderEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		OrderID:    placed.Order.ID,
		CustomerID: placed.Order.CustomerID,
		Email:      email,
		Total:      placed.Total.StringFixed(2),
		Status:     string(placed.Order.Status),
	}
	if err := s.producer.Publish(ctx, s.orderTopic, event.EventID, event); err != nil {
		s.log.WithError(err).WithField("type", eventType).Warn("failed to publish order event")
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, event.EventID, event); err != nil {
			s.log.WithError(err).WithField("type", eventType).Warn("failed to publish notification")
		}
	}
}

func validatePlaceOrder(input PlaceOrderInput) error {
	if len(input.Items) == 0 {
		return domain.Validationf("at least one item is required")
	}
	for _, item := range input.Items {
		if item.MenuItemID <= 0 {
			return domain.Validationf("menu_item_id must be positive")
		}
		if item.Quantity <= 0 {
			return domain.Validationf("quantity must be positive")
		}
	}
	if input.UserID == nil {
		if input.FirstName == "" || input.LastName == "" || input.Email == "" || input.Phone == "" {
			return domain.Validationf("first_name, last_name, email and phone are required for guests")
		}
	}
	return nil
}

var _ OrderUseCase = (*OrderService)(nil)
