package reviews

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brewhub/brewhub/internal/domain"
	"github.com/brewhub/brewhub/internal/validate"
)

type fakeRepo struct {
	reviews []domain.Review
	stats   struct {
		average *float64
		total   int
	}
}

func (r *fakeRepo) Create(_ context.Context, review *domain.Review) error {
	review.ID = "review-1"
	r.reviews = append(r.reviews, *review)
	return nil
}

func (r *fakeRepo) GetByOrderLine(_ context.Context, userID, orderID string, index int) (*domain.Review, error) {
	for i := range r.reviews {
		rv := &r.reviews[i]
		if rv.UserID == userID && rv.OrderID == orderID && rv.OrderItemIndex == index {
			return rv, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) ListByUserAndOrder(_ context.Context, userID, orderID string) ([]domain.Review, error) {
	var out []domain.Review
	for _, rv := range r.reviews {
		if rv.UserID == userID && rv.OrderID == orderID {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]domain.Review, error) {
	var matched []domain.Review
	for _, rv := range r.reviews {
		if rv.ProductID == productID {
			matched = append(matched, rv)
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *fakeRepo) ProductStats(_ context.Context, _ string) (*float64, int, error) {
	return r.stats.average, r.stats.total, nil
}

type fakeOrders struct {
	orders map[string]*domain.Order
}

func (o *fakeOrders) GetByID(_ context.Context, id string) (*domain.Order, error) {
	return o.orders[id], nil
}

type fakeProducts struct {
	products map[string]*domain.Product
}

func (p *fakeProducts) GetByID(_ context.Context, id string) (*domain.Product, error) {
	return p.products[id], nil
}

func completedOrder() *domain.Order {
	return &domain.Order{
		ID:     "o1",
		UserID: "u1",
		Status: domain.OrderStatusCompleted,
		Items: []domain.OrderItem{
			{ProductID: "latte", ProductName: "Latte", Quantity: 1, Price: 400},
			{ProductID: "mocha", ProductName: "Mocha", Quantity: 2, Price: 549},
		},
	}
}

func testService(order *domain.Order) (*Service, *fakeRepo) {
	repo := &fakeRepo{}
	orders := &fakeOrders{orders: map[string]*domain.Order{}}
	if order != nil {
		orders.orders[order.ID] = order
	}
	products := &fakeProducts{products: map[string]*domain.Product{
		"latte": {ID: "latte", Name: "Latte", Available: true},
	}}
	return NewService(repo, orders, products), repo
}

func reviewer() *domain.User {
	return &domain.User{ID: "u1", Name: "Ada"}
}

func validReview() CreateInput {
	return CreateInput{
		OrderID:        "o1",
		OrderItemIndex: 0,
		ProductID:      "latte",
		Rating:         5,
		Comment:        "Perfect crema.",
	}
}

func TestServiceCreate(t *testing.T) {
	t.Run("persists with the reviewer name snapshotted", func(t *testing.T) {
		svc, repo := testService(completedOrder())

		review, err := svc.Create(context.Background(), reviewer(), validReview())
		require.NoError(t, err)

		assert.Equal(t, "Ada", review.UserName)
		assert.Equal(t, 5, review.Rating)
		assert.Len(t, repo.reviews, 1)
	})

	t.Run("unknown order", func(t *testing.T) {
		svc, _ := testService(nil)

		_, err := svc.Create(context.Background(), reviewer(), validReview())
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("someone else's order looks like not found", func(t *testing.T) {
		order := completedOrder()
		order.UserID = "u2"
		svc, _ := testService(order)

		_, err := svc.Create(context.Background(), reviewer(), validReview())
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("order not completed", func(t *testing.T) {
		order := completedOrder()
		order.Status = domain.OrderStatusReadyForPickup
		svc, _ := testService(order)

		_, err := svc.Create(context.Background(), reviewer(), validReview())
		assert.ErrorIs(t, err, ErrOrderNotCompleted)
	})

	t.Run("line index out of range", func(t *testing.T) {
		svc, _ := testService(completedOrder())
		in := validReview()
		in.OrderItemIndex = 7

		_, err := svc.Create(context.Background(), reviewer(), in)
		assert.ErrorIs(t, err, ErrLineItemNotFound)
	})

	t.Run("product does not match the line", func(t *testing.T) {
		svc, _ := testService(completedOrder())
		in := validReview()
		in.ProductID = "mocha" // index 0 is the latte

		_, err := svc.Create(context.Background(), reviewer(), in)
		assert.ErrorIs(t, err, ErrProductMismatch)
	})

	t.Run("duplicate review of the same line", func(t *testing.T) {
		svc, _ := testService(completedOrder())

		_, err := svc.Create(context.Background(), reviewer(), validReview())
		require.NoError(t, err)

		_, err = svc.Create(context.Background(), reviewer(), validReview())
		assert.ErrorIs(t, err, ErrAlreadyReviewed)
	})

	t.Run("each line of an order can be reviewed", func(t *testing.T) {
		svc, repo := testService(completedOrder())

		_, err := svc.Create(context.Background(), reviewer(), validReview())
		require.NoError(t, err)

		in := validReview()
		in.OrderItemIndex = 1
		in.ProductID = "mocha"
		_, err = svc.Create(context.Background(), reviewer(), in)
		require.NoError(t, err)
		assert.Len(t, repo.reviews, 2)
	})

	t.Run("rejects invalid fields before touching the order", func(t *testing.T) {
		svc, _ := testService(nil)
		in := validReview()
		in.Rating = 6

		_, err := svc.Create(context.Background(), reviewer(), in)

		var fieldErrs validate.FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Contains(t, fieldErrs, "rating")
	})
}

func TestStatusForOrder(t *testing.T) {
	t.Run("flags reviewed lines", func(t *testing.T) {
		svc, _ := testService(completedOrder())

		_, err := svc.Create(context.Background(), reviewer(), validReview())
		require.NoError(t, err)

		status, err := svc.StatusForOrder(context.Background(), reviewer(), "o1")
		require.NoError(t, err)

		assert.True(t, status.CanReview)
		require.Len(t, status.Items, 2)
		assert.True(t, status.Items[0].Reviewed)
		require.NotNil(t, status.Items[0].Review)
		assert.False(t, status.Items[1].Reviewed)
		assert.Nil(t, status.Items[1].Review)
	})

	t.Run("incomplete order cannot be reviewed yet", func(t *testing.T) {
		order := completedOrder()
		order.Status = domain.OrderStatusPreparing
		svc, _ := testService(order)

		status, err := svc.StatusForOrder(context.Background(), reviewer(), "o1")
		require.NoError(t, err)
		assert.False(t, status.CanReview)
	})

	t.Run("unknown order", func(t *testing.T) {
		svc, _ := testService(nil)

		_, err := svc.StatusForOrder(context.Background(), reviewer(), "o1")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestForProduct(t *testing.T) {
	t.Run("unknown product", func(t *testing.T) {
		svc, _ := testService(nil)

		_, err := svc.ForProduct(context.Background(), "gone", 1, 20)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("clamps paging parameters", func(t *testing.T) {
		svc, repo := testService(nil)
		repo.stats.total = 3

		page, err := svc.ForProduct(context.Background(), "latte", 0, 999)
		require.NoError(t, err)

		assert.Equal(t, 1, page.Pagination.CurrentPage)
		assert.Equal(t, maxPerPage, page.Pagination.PerPage)
		assert.Equal(t, 1, page.Pagination.LastPage)
	})

	t.Run("computes last page from the total", func(t *testing.T) {
		svc, repo := testService(nil)
		avg := 4.5
		repo.stats.average = &avg
		repo.stats.total = 45

		page, err := svc.ForProduct(context.Background(), "latte", 2, 20)
		require.NoError(t, err)

		assert.Equal(t, 3, page.Pagination.LastPage)
		assert.Equal(t, 45, page.TotalReviews)
		require.NotNil(t, page.AverageRating)
		assert.Equal(t, 4.5, *page.AverageRating)
	})

	t.Run("empty history still reports one page", func(t *testing.T) {
		svc, _ := testService(nil)

		page, err := svc.ForProduct(context.Background(), "latte", 1, 0)
		require.NoError(t, err)

		assert.Equal(t, defaultPerPage, page.Pagination.PerPage)
		assert.Equal(t, 1, page.Pagination.LastPage)
		assert.Nil(t, page.AverageRating)
	})
}
