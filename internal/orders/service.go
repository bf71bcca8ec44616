package orders

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"slices"
	"time"

	"github.com/brewhub/brewhub/internal/domain"
	"github.com/brewhub/brewhub/internal/notify"
	"github.com/brewhub/brewhub/internal/validate"
)

var ErrOrderNotFound = errors.New("order not found")

// paidOrderETA is the completion estimate assigned when a paid
// order enters the received state.
const paidOrderETA = 15 * time.Minute

// ProductReader resolves product names for line-item denormalization.
type ProductReader interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

// CartClearer empties the buyer's cart after checkout.
type CartClearer interface {
	Clear(ctx context.Context, userID string) error
}

// UserStore is the slice of the user profile the checkout touches:
// the silent phone sync.
type UserStore interface {
	UpdatePhone(ctx context.Context, userID, phone string) error
}

// Service owns checkout and the order status machine.
type Service struct {
	repo       Repository
	catalog    ProductReader
	cart       CartClearer
	users      UserStore
	dispatcher *notify.Dispatcher
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(repo Repository, catalog ProductReader, cart CartClearer, users UserStore, dispatcher *notify.Dispatcher, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		catalog:    catalog,
		cart:       cart,
		users:      users,
		dispatcher: dispatcher,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

type ItemInput struct {
	ProductID      string                 `json:"product_id"`
	Quantity       int                    `json:"quantity"`
	Price          int64                  `json:"price"`
	SelectedAddOns []domain.SelectedAddOn `json:"selected_addons"`
}

type CreateInput struct {
	Items         []ItemInput `json:"items"`
	TotalPrice    int64       `json:"total_price"`
	CustomerName  string      `json:"customer_name"`
	CustomerEmail string      `json:"customer_email"`
	CustomerPhone string      `json:"customer_phone"`
	PaymentStatus string      `json:"payment_status"`
}

// Create runs checkout: validate, generate the order number,
// denormalize product names, compute the entry status and ETA from
// the payment status, persist, sync the customer phone to the
// profile, publish the confirmation event, and clear the cart.
// Everything after the persist is best-effort.
func (s *Service) Create(ctx context.Context, user *domain.User, in CreateInput) (*domain.Order, error) {
	if errs := validateCreate(in); errs.Any() {
		return nil, errs
	}

	// The client total is trusted and stored as given; a mismatch
	// against the recomputed total is logged as possible tampering.
	var computed int64
	for _, item := range in.Items {
		unit := item.Price
		for _, addon := range item.SelectedAddOns {
			unit += addon.Price
		}
		computed += unit * int64(item.Quantity)
	}
	if computed != in.TotalPrice {
		s.logger.Warn("client total differs from recomputed total",
			"user_id", user.ID, "client_total", in.TotalPrice, "computed_total", computed)
	}

	items := make([]domain.OrderItem, len(in.Items))
	for i, item := range in.Items {
		name := "Unknown Product"
		product, err := s.catalog.GetByID(ctx, item.ProductID)
		if err != nil {
			s.logger.Error("failed to resolve product name", "error", err, "product_id", item.ProductID)
		} else if product != nil {
			name = product.Name
		}
		items[i] = domain.OrderItem{
			ProductID:      item.ProductID,
			ProductName:    name,
			Quantity:       item.Quantity,
			Price:          item.Price,
			SelectedAddOns: item.SelectedAddOns,
		}
	}

	now := s.now()
	status := domain.OrderStatusPending
	var eta *time.Time
	if domain.PaymentStatus(in.PaymentStatus) == domain.PaymentStatusPaid {
		status = domain.OrderStatusReceived
		t := now.Add(paidOrderETA)
		eta = &t
	}

	order := &domain.Order{
		UserID:                  user.ID,
		OrderNumber:             generateOrderNumber(),
		Items:                   items,
		TotalPrice:              in.TotalPrice,
		Status:                  status,
		PaymentStatus:           domain.PaymentStatus(in.PaymentStatus),
		CustomerName:            in.CustomerName,
		CustomerEmail:           in.CustomerEmail,
		CustomerPhone:           in.CustomerPhone,
		EstimatedCompletionTime: eta,
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}

	if in.CustomerPhone != user.Phone {
		if err := s.users.UpdatePhone(ctx, user.ID, in.CustomerPhone); err != nil {
			s.logger.Error("failed to sync customer phone", "error", err, "user_id", user.ID)
		}
	}

	s.dispatcher.OrderCreated(ctx, domain.OrderCreatedEvent{
		OrderID:                 order.ID,
		OrderNumber:             order.OrderNumber,
		CustomerName:            order.CustomerName,
		CustomerEmail:           order.CustomerEmail,
		Items:                   order.Items,
		TotalPrice:              order.TotalPrice,
		Status:                  order.Status,
		EstimatedCompletionTime: order.EstimatedCompletionTime,
		Timestamp:               now,
	})

	if err := s.cart.Clear(ctx, user.ID); err != nil {
		s.logger.Error("failed to clear cart after checkout", "error", err, "user_id", user.ID)
	}

	s.logger.Info("order created", "order_id", order.ID, "order_number", order.OrderNumber,
		"user_id", user.ID, "status", order.Status)

	return order, nil
}

// Get returns the order when it belongs to the user.
func (s *Service) Get(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.repo.ListAll(ctx)
}

type UpdateInput struct {
	Status        *string
	PaymentStatus *string
	SetETA        bool
	ETA           *time.Time
}

// Update applies an admin order update. A status write equal to the
// current status is a no-op and triggers no side effects; an
// effective change publishes the status event best-effort after the
// write. Invalid transitions are not blocked beyond the settable
// status set.
func (s *Service) Update(ctx context.Context, orderID string, in UpdateInput) (*domain.Order, error) {
	if errs := validateUpdate(in); errs.Any() {
		return nil, errs
	}

	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	previous := order.Status
	statusChanged := false

	if in.Status != nil && domain.OrderStatus(*in.Status) != order.Status {
		order.Status = domain.OrderStatus(*in.Status)
		statusChanged = true
	}
	if in.PaymentStatus != nil {
		order.PaymentStatus = domain.PaymentStatus(*in.PaymentStatus)
	}
	if in.SetETA {
		order.EstimatedCompletionTime = in.ETA
	}

	if err := s.repo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	if statusChanged {
		s.dispatcher.OrderStatusChanged(ctx, domain.OrderStatusChangedEvent{
			OrderID:                 order.ID,
			OrderNumber:             order.OrderNumber,
			CustomerName:            order.CustomerName,
			CustomerEmail:           order.CustomerEmail,
			PreviousStatus:          previous,
			Status:                  order.Status,
			EstimatedCompletionTime: order.EstimatedCompletionTime,
			Timestamp:               s.now(),
		})
		s.logger.Info("order status updated", "order_id", order.ID,
			"previous_status", previous, "status", order.Status)
	}

	return order, nil
}

func validateCreate(in CreateInput) validate.FieldErrors {
	errs := validate.FieldErrors{}

	if len(in.Items) == 0 {
		errs.Add("items", "The items field is required.")
	}
	for _, item := range in.Items {
		if item.ProductID == "" {
			errs.Add("items", "Each item requires a product id.")
			break
		}
		if item.Quantity < 1 {
			errs.Add("items", "Each item quantity must be at least 1.")
			break
		}
	}
	if in.TotalPrice < 0 {
		errs.Add("total_price", "The total price must not be negative.")
	}
	if in.CustomerName == "" {
		errs.Add("customer_name", "The customer name field is required.")
	} else if len(in.CustomerName) > 255 {
		errs.Add("customer_name", "The customer name may not be greater than 255 characters.")
	}
	if !validate.Email(in.CustomerEmail) {
		errs.Add("customer_email", "The customer email must be a valid email address.")
	}
	if !validate.Phone(in.CustomerPhone) {
		errs.Add("customer_phone", "The customer phone must contain at least 10 digits.")
	}
	if !slices.Contains(domain.PaymentStatuses, domain.PaymentStatus(in.PaymentStatus)) {
		errs.Add("payment_status", "The payment status must be pending, paid, or failed.")
	}

	return errs
}

func validateUpdate(in UpdateInput) validate.FieldErrors {
	errs := validate.FieldErrors{}

	if in.Status != nil && !slices.Contains(domain.SettableStatuses, domain.OrderStatus(*in.Status)) {
		errs.Add("status", "The selected status is invalid.")
	}
	if in.PaymentStatus != nil && !slices.Contains(domain.PaymentStatuses, domain.PaymentStatus(*in.PaymentStatus)) {
		errs.Add("payment_status", "The selected payment status is invalid.")
	}

	return errs
}

const orderNumberAlphabet = "0123456789ABCDEF"

// generateOrderNumber builds a display identifier: BH prefix, 13
// random hex characters, 3 decimal digits. Not a security token;
// collisions are astronomically unlikely, and the unique index on
// order_number backstops them.
func generateOrderNumber() string {
	buf := make([]byte, 0, 18)
	buf = append(buf, 'B', 'H')
	for range 13 {
		buf = append(buf, orderNumberAlphabet[randInt(16)])
	}
	for range 3 {
		buf = append(buf, byte('0'+randInt(10)))
	}
	return string(buf)
}

func randInt(n int64) int64 {
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		// crypto/rand only fails when the platform source is broken.
		panic(err)
	}
	return v.Int64()
}
