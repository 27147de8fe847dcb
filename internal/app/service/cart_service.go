package service

import (
	"context"
	"errors"
	"strconv"

	"gorm.io/gorm"

	"github.com/clockert/fram-backend/internal/app/model"
	"github.com/clockert/fram-backend/internal/app/repository"
	"github.com/clockert/fram-backend/internal/cart"
	"github.com/clockert/fram-backend/pkg/logger"
)

var ErrCartItemNotFound = errors.New("cart item not found")

type CartService interface {
	GetCart(ctx context.Context, sessionID string) cart.ViewData
	AddToCart(ctx context.Context, sessionID string, productID uint, quantity int) error
	UpdateQuantity(ctx context.Context, sessionID string, productID uint, quantity int) error
	RemoveFromCart(ctx context.Context, sessionID string, productID uint)
	ClearCart(ctx context.Context, sessionID string)
}

type cartService struct {
	carts       *cart.Manager
	productRepo repository.ProductRepository
}

func NewCartService(carts *cart.Manager, productRepo repository.ProductRepository) CartService {
	return &cartService{
		carts:       carts,
		productRepo: productRepo,
	}
}

func (s *cartService) GetCart(ctx context.Context, sessionID string) cart.ViewData {
	store := s.carts.Store(ctx, sessionID)
	return cart.NewView(store).Render()
}

func (s *cartService) AddToCart(ctx context.Context, sessionID string, productID uint, quantity int) error {
	logger.Info("Adding item to cart", map[string]interface{}{
		"session_id": sessionID,
		"product_id": productID,
		"quantity":   quantity,
	})

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot add to cart: product not found", map[string]interface{}{
				"session_id": sessionID,
				"product_id": productID,
			})
			return ErrProductNotFound
		}
		return err
	}

	store := s.carts.Store(ctx, sessionID)
	return store.Add(ctx, model.CartProduct{
		ID:           lineID(product.ID),
		Name:         product.Name,
		DisplayPrice: product.Price,
		Image:        product.Image,
	}, quantity)
}

func (s *cartService) UpdateQuantity(ctx context.Context, sessionID string, productID uint, quantity int) error {
	store := s.carts.Store(ctx, sessionID)

	id := lineID(productID)
	if !hasLine(store, id) {
		logger.Warn("Cart line not found for quantity update", map[string]interface{}{
			"session_id": sessionID,
			"product_id": productID,
		})
		return ErrCartItemNotFound
	}

	store.SetQuantity(ctx, id, quantity)
	return nil
}

// RemoveFromCart deletes the whole line. Removing an absent line is
// deliberately silent.
func (s *cartService) RemoveFromCart(ctx context.Context, sessionID string, productID uint) {
	store := s.carts.Store(ctx, sessionID)
	store.Remove(ctx, lineID(productID))
}

func (s *cartService) ClearCart(ctx context.Context, sessionID string) {
	logger.Info("Clearing cart", map[string]interface{}{
		"session_id": sessionID,
	})
	store := s.carts.Store(ctx, sessionID)
	store.Clear(ctx)
}

func lineID(productID uint) model.ProductID {
	return model.ProductID(strconv.FormatUint(uint64(productID), 10))
}

func hasLine(store *cart.Store, id model.ProductID) bool {
	for _, line := range store.Items() {
		if line.ProductID == id {
			return true
		}
	}
	return false
}
