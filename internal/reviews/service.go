package reviews

import (
	"context"
	"errors"
	"fmt"

	"github.com/brewhub/brewhub/internal/domain"
	"github.com/brewhub/brewhub/internal/validate"
)

// Each eligibility precondition fails distinctly so the client can
// explain exactly why a review was refused.
var (
	ErrOrderNotFound     = errors.New("order not found or does not belong to you")
	ErrOrderNotCompleted = errors.New("order is not completed")
	ErrLineItemNotFound  = errors.New("order item not found")
	ErrProductMismatch   = errors.New("product does not match the order item")
	ErrAlreadyReviewed   = errors.New("order item already reviewed")
	ErrProductNotFound   = errors.New("product not found")
)

const maxCommentLength = 500

// OrderReader loads orders for ownership and status checks.
type OrderReader interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
}

// ProductReader verifies that a reviewed product exists.
type ProductReader interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type Service struct {
	repo     Repository
	orders   OrderReader
	products ProductReader
}

func NewService(repo Repository, orders OrderReader, products ProductReader) *Service {
	return &Service{
		repo:     repo,
		orders:   orders,
		products: products,
	}
}

type CreateInput struct {
	OrderID        string `json:"order_id"`
	OrderItemIndex int    `json:"order_item_index"`
	ProductID      string `json:"product_id"`
	Rating         int    `json:"rating"`
	Comment        string `json:"comment"`
}

// Create checks the eligibility preconditions in order, each with
// its own failure mode, then persists the review with the
// reviewer's display name snapshotted.
func (s *Service) Create(ctx context.Context, user *domain.User, in CreateInput) (*domain.Review, error) {
	if errs := validateCreate(in); errs.Any() {
		return nil, errs
	}

	order, err := s.orders.GetByID(ctx, in.OrderID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if order == nil || order.UserID != user.ID {
		return nil, ErrOrderNotFound
	}

	if order.Status != domain.OrderStatusCompleted {
		return nil, ErrOrderNotCompleted
	}

	if in.OrderItemIndex < 0 || in.OrderItemIndex >= len(order.Items) {
		return nil, ErrLineItemNotFound
	}

	if order.Items[in.OrderItemIndex].ProductID != in.ProductID {
		return nil, ErrProductMismatch
	}

	existing, err := s.repo.GetByOrderLine(ctx, user.ID, in.OrderID, in.OrderItemIndex)
	if err != nil {
		return nil, fmt.Errorf("check existing review: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyReviewed
	}

	review := &domain.Review{
		UserID:         user.ID,
		ProductID:      in.ProductID,
		OrderID:        in.OrderID,
		OrderItemIndex: in.OrderItemIndex,
		Rating:         in.Rating,
		Comment:        in.Comment,
		UserName:       user.Name,
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("persist review: %w", err)
	}

	return review, nil
}

// ItemStatus gates the client's "write review" buttons: one entry
// per order line with the existing review, if any.
type ItemStatus struct {
	OrderItemIndex int            `json:"order_item_index"`
	ProductID      string         `json:"product_id"`
	ProductName    string         `json:"product_name"`
	Reviewed       bool           `json:"reviewed"`
	Review         *domain.Review `json:"review"`
}

type OrderReviewStatus struct {
	OrderID   string       `json:"order_id"`
	CanReview bool         `json:"can_review"`
	Items     []ItemStatus `json:"items"`
}

// StatusForOrder reports, for each line of the user's order, whether
// a review already exists.
func (s *Service) StatusForOrder(ctx context.Context, user *domain.User, orderID string) (*OrderReviewStatus, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if order == nil || order.UserID != user.ID {
		return nil, ErrOrderNotFound
	}

	existing, err := s.repo.ListByUserAndOrder(ctx, user.ID, orderID)
	if err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}

	byIndex := make(map[int]*domain.Review, len(existing))
	for i := range existing {
		byIndex[existing[i].OrderItemIndex] = &existing[i]
	}

	status := &OrderReviewStatus{
		OrderID:   orderID,
		CanReview: order.Status == domain.OrderStatusCompleted,
		Items:     make([]ItemStatus, len(order.Items)),
	}
	for i, item := range order.Items {
		review := byIndex[i]
		status.Items[i] = ItemStatus{
			OrderItemIndex: i,
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Reviewed:       review != nil,
			Review:         review,
		}
	}

	return status, nil
}

type Pagination struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

type ProductReviewPage struct {
	ProductID     string          `json:"product_id"`
	AverageRating *float64        `json:"average_rating"`
	TotalReviews  int             `json:"total_reviews"`
	Reviews       []domain.Review `json:"reviews"`
	Pagination    Pagination      `json:"pagination"`
}

const (
	defaultPerPage = 20
	maxPerPage     = 50
)

// ForProduct returns a page of a product's reviews, newest first,
// with the aggregate rating.
func (s *Service) ForProduct(ctx context.Context, productID string, page, perPage int) (*ProductReviewPage, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	average, total, err := s.repo.ProductStats(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load review stats: %w", err)
	}

	items, err := s.repo.ListByProduct(ctx, productID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}

	lastPage := (total + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}

	return &ProductReviewPage{
		ProductID:     productID,
		AverageRating: average,
		TotalReviews:  total,
		Reviews:       items,
		Pagination: Pagination{
			CurrentPage: page,
			LastPage:    lastPage,
			PerPage:     perPage,
			Total:       total,
		},
	}, nil
}

func validateCreate(in CreateInput) validate.FieldErrors {
	errs := validate.FieldErrors{}

	if in.OrderID == "" {
		errs.Add("order_id", "The order id field is required.")
	}
	if in.OrderItemIndex < 0 {
		errs.Add("order_item_index", "The order item index must be at least 0.")
	}
	if in.ProductID == "" {
		errs.Add("product_id", "The product id field is required.")
	}
	if in.Rating < 1 || in.Rating > 5 {
		errs.Add("rating", "The rating must be between 1 and 5.")
	}
	if len(in.Comment) > maxCommentLength {
		errs.Add("comment", "The comment may not be greater than 500 characters.")
	}

	return errs
}
