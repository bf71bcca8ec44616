package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/brewhub/brewhub/internal/domain"
)

var (
	ErrProductUnavailable = errors.New("product not available")
	ErrAddOnUnavailable   = errors.New("add-on not available")
	ErrCartNotFound       = errors.New("cart not found")
)

// ProductReader is the slice of the catalog the cart needs.
type ProductReader interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

// ViewItem is a surviving cart line joined with live product details
// for display. Price fields stay the add-time snapshots.
type ViewItem struct {
	ProductID      string                 `json:"product_id"`
	Quantity       int                    `json:"quantity"`
	Price          int64                  `json:"price"`
	SelectedAddOns []domain.SelectedAddOn `json:"selected_addons,omitempty"`
	Product        *domain.Product        `json:"product"`
}

// View is the reconciled cart presented to the client. RemovedItems
// carries display names of lines dropped during reconciliation so
// the client can notify the user.
type View struct {
	Items        []ViewItem `json:"items"`
	Total        int64      `json:"total"`
	RemovedItems []string   `json:"removed_items"`
}

// Service applies the cart rules: reconciliation against the live
// catalog on every read, snapshot pricing, and quantity merging for
// identical (product, add-on set) lines.
type Service struct {
	repo    Repository
	catalog ProductReader
	logger  *slog.Logger
}

func NewService(repo Repository, catalog ProductReader, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
		logger:  logger,
	}
}

// View loads the user's cart, creating an empty one on first access,
// and reconciles it: lines whose product is gone or unavailable are
// dropped and the reduced cart is persisted immediately. The heal is
// best-effort; a failed write still returns the reconciled view.
func (s *Service) View(ctx context.Context, userID string) (*View, error) {
	cart, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart == nil {
		cart, err = s.repo.Create(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("create cart: %w", err)
		}
	}

	view := &View{Items: []ViewItem{}, RemovedItems: []string{}}
	kept := make([]domain.CartItem, 0, len(cart.Items))

	for _, item := range cart.Items {
		product, err := s.catalog.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("resolve product %s: %w", item.ProductID, err)
		}

		if product == nil || !product.Available {
			name := item.ProductID
			if product != nil {
				name = product.Name
			}
			view.RemovedItems = append(view.RemovedItems, name)
			continue
		}

		kept = append(kept, item)
		view.Items = append(view.Items, ViewItem{
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			Price:          item.Price,
			SelectedAddOns: item.SelectedAddOns,
			Product:        product,
		})
		view.Total += item.Subtotal()
	}

	if len(kept) != len(cart.Items) {
		if err := s.repo.SaveItems(ctx, cart.ID, kept); err != nil {
			s.logger.Error("failed to persist reconciled cart", "error", err, "cart_id", cart.ID)
		}
	}

	return view, nil
}

// Add puts a product in the cart. An existing line with the same
// product and add-on set absorbs the quantity; otherwise a new line
// snapshots the product's current price and the catalog prices of
// the selected add-ons.
func (s *Service) Add(ctx context.Context, userID, productID string, quantity int, addonNames []string) (*View, error) {
	product, err := s.catalog.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("resolve product %s: %w", productID, err)
	}
	if product == nil || !product.Available {
		return nil, ErrProductUnavailable
	}

	selected, err := resolveAddOns(product, addonNames)
	if err != nil {
		return nil, err
	}

	cart, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart == nil {
		cart, err = s.repo.Create(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("create cart: %w", err)
		}
	}

	key := matchKey(productID, selected)
	merged := false
	for i := range cart.Items {
		if matchKey(cart.Items[i].ProductID, cart.Items[i].SelectedAddOns) == key {
			cart.Items[i].Quantity += quantity
			merged = true
			break
		}
	}

	if !merged {
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID:      productID,
			Quantity:       quantity,
			Price:          product.Price,
			SelectedAddOns: selected,
		})
	}

	if err := s.repo.SaveItems(ctx, cart.ID, cart.Items); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	return s.View(ctx, userID)
}

// UpdateQuantity sets the quantity of the first line matching the
// product id. When add-on variants of the same product coexist the
// target is ambiguous and the first line wins; updates are not keyed
// by add-on set.
func (s *Service) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) (*View, error) {
	cart, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}

	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity = quantity
			break
		}
	}

	if err := s.repo.SaveItems(ctx, cart.ID, cart.Items); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	return s.View(ctx, userID)
}

// Remove drops every line for the product id regardless of add-on
// selection. Removing an absent product is not an error.
func (s *Service) Remove(ctx context.Context, userID, productID string) (*View, error) {
	cart, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart == nil {
		return s.View(ctx, userID)
	}

	kept := make([]domain.CartItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}

	if len(kept) != len(cart.Items) {
		if err := s.repo.SaveItems(ctx, cart.ID, kept); err != nil {
			return nil, fmt.Errorf("save cart: %w", err)
		}
	}

	return s.View(ctx, userID)
}

// Clear empties the cart. A missing cart is a no-op.
func (s *Service) Clear(ctx context.Context, userID string) error {
	cart, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}
	if cart == nil {
		return nil
	}

	if err := s.repo.SaveItems(ctx, cart.ID, nil); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	return nil
}

// resolveAddOns maps requested add-on names to catalog snapshots.
// Prices come from the catalog, never from the client.
func resolveAddOns(product *domain.Product, names []string) ([]domain.SelectedAddOn, error) {
	if len(names) == 0 {
		return nil, nil
	}

	selected := make([]domain.SelectedAddOn, 0, len(names))
	for _, name := range names {
		found := false
		for _, addon := range product.AddOns {
			if addon.Name == name {
				if !addon.Available {
					return nil, fmt.Errorf("%w: %s", ErrAddOnUnavailable, name)
				}
				selected = append(selected, domain.SelectedAddOn{Name: addon.Name, Price: addon.Price})
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrAddOnUnavailable, name)
		}
	}

	return selected, nil
}

// matchKey identifies a line within a cart: the product id plus the
// normalized add-on set. Lines with equal keys merge on add.
func matchKey(productID string, addons []domain.SelectedAddOn) string {
	if len(addons) == 0 {
		return productID
	}

	names := make([]string, len(addons))
	for i, a := range addons {
		names[i] = fmt.Sprintf("%s@%d", a.Name, a.Price)
	}
	sort.Strings(names)

	return productID + "|" + strings.Join(names, ",")
}
