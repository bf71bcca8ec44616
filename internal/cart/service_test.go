package cart

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brewhub/brewhub/internal/domain"
)

type fakeRepo struct {
	carts map[string]*domain.Cart // keyed by user id
	saves int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{carts: map[string]*domain.Cart{}}
}

func (r *fakeRepo) GetByUser(_ context.Context, userID string) (*domain.Cart, error) {
	cart, ok := r.carts[userID]
	if !ok {
		return nil, nil
	}
	copied := *cart
	copied.Items = append([]domain.CartItem{}, cart.Items...)
	return &copied, nil
}

func (r *fakeRepo) Create(_ context.Context, userID string) (*domain.Cart, error) {
	cart := &domain.Cart{ID: "cart-" + userID, UserID: userID, Items: []domain.CartItem{}}
	r.carts[userID] = cart
	return cart, nil
}

func (r *fakeRepo) SaveItems(_ context.Context, cartID string, items []domain.CartItem) error {
	r.saves++
	for _, cart := range r.carts {
		if cart.ID == cartID {
			cart.Items = append([]domain.CartItem{}, items...)
			return nil
		}
	}
	return nil
}

type fakeCatalog struct {
	products map[string]*domain.Product
}

func (c *fakeCatalog) GetByID(_ context.Context, id string) (*domain.Product, error) {
	return c.products[id], nil
}

func testService(products ...*domain.Product) (*Service, *fakeRepo, *fakeCatalog) {
	repo := newFakeRepo()
	catalog := &fakeCatalog{products: map[string]*domain.Product{}}
	for _, p := range products {
		catalog.products[p.ID] = p
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, catalog, logger), repo, catalog
}

func latte() *domain.Product {
	return &domain.Product{
		ID:        "latte",
		Name:      "Latte",
		Price:     400,
		Available: true,
		AddOns: []domain.AddOn{
			{Name: "Extra Shot", Price: 75, Available: true},
			{Name: "Soy Milk", Price: 50, Available: false},
		},
	}
}

func TestServiceView(t *testing.T) {
	t.Run("creates empty cart on first access", func(t *testing.T) {
		svc, repo, _ := testService(latte())

		view, err := svc.View(context.Background(), "u1")
		require.NoError(t, err)
		assert.Empty(t, view.Items)
		assert.Zero(t, view.Total)
		assert.Empty(t, view.RemovedItems)
		assert.NotNil(t, repo.carts["u1"])
	})

	t.Run("drops unavailable products and persists the reduced cart", func(t *testing.T) {
		product := latte()
		svc, repo, catalog := testService(product)

		_, err := svc.Add(context.Background(), "u1", "latte", 1, []string{"Extra Shot"})
		require.NoError(t, err)

		view, err := svc.View(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(475), view.Total)

		catalog.products["latte"].Available = false

		view, err = svc.View(context.Background(), "u1")
		require.NoError(t, err)
		assert.Empty(t, view.Items)
		assert.Zero(t, view.Total)
		assert.Equal(t, []string{"Latte"}, view.RemovedItems)
		assert.Empty(t, repo.carts["u1"].Items, "reduced cart should be persisted")

		// Reconciling an already-reconciled cart is a no-op.
		view, err = svc.View(context.Background(), "u1")
		require.NoError(t, err)
		assert.Empty(t, view.RemovedItems)
	})

	t.Run("reports deleted products by id", func(t *testing.T) {
		svc, _, catalog := testService(latte())

		_, err := svc.Add(context.Background(), "u1", "latte", 1, nil)
		require.NoError(t, err)

		delete(catalog.products, "latte")

		view, err := svc.View(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, []string{"latte"}, view.RemovedItems)
	})

	t.Run("total honors the add-time price snapshot", func(t *testing.T) {
		svc, _, catalog := testService(latte())

		_, err := svc.Add(context.Background(), "u1", "latte", 2, nil)
		require.NoError(t, err)

		catalog.products["latte"].Price = 999

		view, err := svc.View(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(800), view.Total)
	})
}

func TestServiceAdd(t *testing.T) {
	t.Run("computes total with add-ons per quantity", func(t *testing.T) {
		svc, _, _ := testService(latte())

		view, err := svc.Add(context.Background(), "u1", "latte", 2, []string{"Extra Shot"})
		require.NoError(t, err)

		// 2 × ($4.00 + $0.75)
		assert.Equal(t, int64(950), view.Total)
		require.Len(t, view.Items, 1)
		assert.Equal(t, 2, view.Items[0].Quantity)
	})

	t.Run("identical product and addon set merges quantity", func(t *testing.T) {
		svc, repo, _ := testService(latte())

		_, err := svc.Add(context.Background(), "u1", "latte", 1, []string{"Extra Shot"})
		require.NoError(t, err)
		view, err := svc.Add(context.Background(), "u1", "latte", 2, []string{"Extra Shot"})
		require.NoError(t, err)

		require.Len(t, view.Items, 1)
		assert.Equal(t, 3, view.Items[0].Quantity)
		assert.Len(t, repo.carts["u1"].Items, 1)
	})

	t.Run("different addon set creates a separate line", func(t *testing.T) {
		svc, _, _ := testService(latte())

		_, err := svc.Add(context.Background(), "u1", "latte", 1, []string{"Extra Shot"})
		require.NoError(t, err)
		view, err := svc.Add(context.Background(), "u1", "latte", 1, nil)
		require.NoError(t, err)

		assert.Len(t, view.Items, 2)
	})

	t.Run("rejects unavailable product", func(t *testing.T) {
		product := latte()
		product.Available = false
		svc, _, _ := testService(product)

		_, err := svc.Add(context.Background(), "u1", "latte", 1, nil)
		assert.ErrorIs(t, err, ErrProductUnavailable)
	})

	t.Run("rejects unknown product", func(t *testing.T) {
		svc, _, _ := testService()

		_, err := svc.Add(context.Background(), "u1", "missing", 1, nil)
		assert.ErrorIs(t, err, ErrProductUnavailable)
	})

	t.Run("rejects unavailable addon", func(t *testing.T) {
		svc, _, _ := testService(latte())

		_, err := svc.Add(context.Background(), "u1", "latte", 1, []string{"Soy Milk"})
		assert.ErrorIs(t, err, ErrAddOnUnavailable)
	})

	t.Run("snapshots addon price from the catalog", func(t *testing.T) {
		svc, repo, _ := testService(latte())

		_, err := svc.Add(context.Background(), "u1", "latte", 1, []string{"Extra Shot"})
		require.NoError(t, err)

		items := repo.carts["u1"].Items
		require.Len(t, items, 1)
		require.Len(t, items[0].SelectedAddOns, 1)
		assert.Equal(t, int64(75), items[0].SelectedAddOns[0].Price)
	})
}

func TestServiceUpdateQuantity(t *testing.T) {
	t.Run("fails without a cart", func(t *testing.T) {
		svc, _, _ := testService(latte())

		_, err := svc.UpdateQuantity(context.Background(), "u1", "latte", 2)
		assert.ErrorIs(t, err, ErrCartNotFound)
	})

	t.Run("updates the first line matching the product id", func(t *testing.T) {
		svc, repo, _ := testService(latte())

		_, err := svc.Add(context.Background(), "u1", "latte", 1, []string{"Extra Shot"})
		require.NoError(t, err)
		_, err = svc.Add(context.Background(), "u1", "latte", 1, nil)
		require.NoError(t, err)

		_, err = svc.UpdateQuantity(context.Background(), "u1", "latte", 5)
		require.NoError(t, err)

		items := repo.carts["u1"].Items
		require.Len(t, items, 2)
		assert.Equal(t, 5, items[0].Quantity)
		assert.Equal(t, 1, items[1].Quantity)
	})
}

func TestServiceRemove(t *testing.T) {
	t.Run("removes every line for the product regardless of addons", func(t *testing.T) {
		svc, _, _ := testService(latte())

		_, err := svc.Add(context.Background(), "u1", "latte", 1, []string{"Extra Shot"})
		require.NoError(t, err)
		_, err = svc.Add(context.Background(), "u1", "latte", 1, nil)
		require.NoError(t, err)

		view, err := svc.Remove(context.Background(), "u1", "latte")
		require.NoError(t, err)
		assert.Empty(t, view.Items)
	})

	t.Run("is idempotent", func(t *testing.T) {
		svc, _, _ := testService(latte())

		_, err := svc.Add(context.Background(), "u1", "latte", 1, nil)
		require.NoError(t, err)

		_, err = svc.Remove(context.Background(), "u1", "latte")
		require.NoError(t, err)
		view, err := svc.Remove(context.Background(), "u1", "latte")
		require.NoError(t, err)
		assert.Empty(t, view.Items)
	})

	t.Run("without a cart is not an error", func(t *testing.T) {
		svc, _, _ := testService(latte())

		view, err := svc.Remove(context.Background(), "u1", "latte")
		require.NoError(t, err)
		assert.Empty(t, view.Items)
	})

	t.Run("remove then re-add restores the same total", func(t *testing.T) {
		svc, _, _ := testService(latte())

		first, err := svc.Add(context.Background(), "u1", "latte", 2, []string{"Extra Shot"})
		require.NoError(t, err)

		_, err = svc.Remove(context.Background(), "u1", "latte")
		require.NoError(t, err)

		again, err := svc.Add(context.Background(), "u1", "latte", 2, []string{"Extra Shot"})
		require.NoError(t, err)
		assert.Equal(t, first.Total, again.Total)
	})
}

func TestServiceClear(t *testing.T) {
	t.Run("empties the cart", func(t *testing.T) {
		svc, repo, _ := testService(latte())

		_, err := svc.Add(context.Background(), "u1", "latte", 3, nil)
		require.NoError(t, err)

		require.NoError(t, svc.Clear(context.Background(), "u1"))
		assert.Empty(t, repo.carts["u1"].Items)
	})

	t.Run("is a no-op without a cart", func(t *testing.T) {
		svc, repo, _ := testService(latte())

		require.NoError(t, svc.Clear(context.Background(), "u1"))
		assert.Zero(t, repo.saves)
	})
}

func TestMatchKey(t *testing.T) {
	a := []domain.SelectedAddOn{{Name: "Extra Shot", Price: 75}, {Name: "Oat Milk", Price: 50}}
	b := []domain.SelectedAddOn{{Name: "Oat Milk", Price: 50}, {Name: "Extra Shot", Price: 75}}

	assert.Equal(t, matchKey("p1", a), matchKey("p1", b), "addon order must not matter")
	assert.NotEqual(t, matchKey("p1", a), matchKey("p1", nil))
	assert.NotEqual(t, matchKey("p1", a), matchKey("p2", a))
}
