// internal/services/cart_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/kon/onlineshop/internal/models"
)

// CartService mediates all cart mutations. The acting user is always an
// explicit parameter; there is no ambient current-user state.
type CartService struct {
	db *gorm.DB
}

type CartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type CartItemView struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	BasePrice   decimal.Decimal `json:"base_price"`
}

// CartView reports the cart's lines plus derived totals. TotalItems is
// the number of distinct lines, not the sum of quantities; clients
// display it that way.
type CartView struct {
	Items       []CartItemView  `json:"items"`
	TotalItems  int             `json:"total_items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// GetCart returns the user's cart, creating an empty one on first
// access.
func (s *CartService) GetCart(userID uuid.UUID) (*CartView, error) {
	cart, err := s.getOrCreateCart(s.db, userID)
	if err != nil {
		return nil, err
	}
	return mapToCartView(cart), nil
}

// AddItem adds quantity to the product's line, creating the line if
// needed. When a line already exists the combined quantity is what must
// clear stock validation, so repeated small adds cannot slip past a
// check a single large add would fail.
func (s *CartService) AddItem(userID uuid.UUID, req *CartItemRequest) (*CartView, error) {
	var view *CartView
	err := s.db.Transaction(func(tx *gorm.DB) error {
		cart, err := s.getOrCreateCart(tx, userID)
		if err != nil {
			return err
		}
		product, err := s.getProduct(tx, req.ProductID)
		if err != nil {
			return err
		}
		if err := s.addToCart(tx, cart, product, req.Quantity); err != nil {
			return err
		}
		if err := s.touch(tx, cart); err != nil {
			return err
		}
		view, err = s.reload(tx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// UpdateItem sets (not adds) the quantity of an existing line.
func (s *CartService) UpdateItem(userID uuid.UUID, req *CartItemRequest) (*CartView, error) {
	var view *CartView
	err := s.db.Transaction(func(tx *gorm.DB) error {
		cart, err := s.getOrCreateCart(tx, userID)
		if err != nil {
			return err
		}
		item := findItem(cart, req.ProductID)
		if item == nil {
			return &CartItemNotFoundError{ProductID: req.ProductID}
		}
		if err := validateStock(&item.Product, req.Quantity); err != nil {
			return err
		}
		item.Quantity = req.Quantity
		if err := tx.Omit("Product").Save(item).Error; err != nil {
			return fmt.Errorf("failed to update cart item: %w", err)
		}
		if err := s.touch(tx, cart); err != nil {
			return err
		}
		view, err = s.reload(tx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *CartService) RemoveItem(userID uuid.UUID, productID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		cart, err := s.getOrCreateCart(tx, userID)
		if err != nil {
			return err
		}
		item := findItem(cart, productID)
		if item == nil {
			return &CartItemNotFoundError{ProductID: productID}
		}
		if err := tx.Unscoped().Delete(item).Error; err != nil {
			return fmt.Errorf("failed to remove cart item: %w", err)
		}
		return s.touch(tx, cart)
	})
}

// MergeCarts applies each line of a guest cart to the target user's cart
// through the regular add path. Merging is best effort: a line that no
// longer clears stock validation or references a deleted product is
// logged and skipped, never fatal for the rest.
func (s *CartService) MergeCarts(guestCart *CartView, userID uuid.UUID) (*CartView, error) {
	var view *CartView
	err := s.db.Transaction(func(tx *gorm.DB) error {
		cart, err := s.getOrCreateCart(tx, userID)
		if err != nil {
			return err
		}

		for _, line := range guestCart.Items {
			product, err := s.getProduct(tx, line.ProductID)
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"product_id": line.ProductID,
					"user_id":    userID,
				}).Warn("skipping cart-merge line: product not found")
				continue
			}
			if err := s.addToCart(tx, cart, product, line.Quantity); err != nil {
				logrus.WithFields(logrus.Fields{
					"product":  product.Name,
					"user_id":  userID,
					"quantity": line.Quantity,
				}).Warn("skipping cart-merge line: stock validation failed")
				continue
			}
		}

		if err := s.touch(tx, cart); err != nil {
			return err
		}
		view, err = s.reload(tx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *CartService) getOrCreateCart(tx *gorm.DB, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := tx.Preload("Items").Preload("Items.Product").
		Where("user_id = ?", userID).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("database error: %w", err)
	}

	cart = models.Cart{UserID: userID}
	if err := tx.Create(&cart).Error; err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return &cart, nil
}

func (s *CartService) getProduct(tx *gorm.DB, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := tx.First(&product, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewNotFoundError("product", id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

// addToCart creates or tops up the product's line; the combined quantity
// is validated, not just the delta.
func (s *CartService) addToCart(tx *gorm.DB, cart *models.Cart, product *models.Product, quantity int) error {
	if quantity <= 0 {
		return NewBadRequestError("quantity must be positive")
	}

	if item := findItem(cart, product.ID); item != nil {
		newQuantity := item.Quantity + quantity
		if err := validateStock(product, newQuantity); err != nil {
			return err
		}
		item.Quantity = newQuantity
		if err := tx.Omit("Product").Save(item).Error; err != nil {
			return fmt.Errorf("failed to update cart item: %w", err)
		}
		return nil
	}

	if err := validateStock(product, quantity); err != nil {
		return err
	}
	item := models.CartItem{
		CartID:    cart.ID,
		ProductID: product.ID,
		Quantity:  quantity,
		Product:   *product,
	}
	if err := tx.Omit("Product").Create(&item).Error; err != nil {
		return fmt.Errorf("failed to create cart item: %w", err)
	}
	cart.Items = append(cart.Items, item)
	return nil
}

func (s *CartService) touch(tx *gorm.DB, cart *models.Cart) error {
	if err := tx.Model(cart).Update("updated_at", tx.NowFunc()).Error; err != nil {
		return fmt.Errorf("failed to touch cart: %w", err)
	}
	return nil
}

func (s *CartService) reload(tx *gorm.DB, cartID uuid.UUID) (*CartView, error) {
	var cart models.Cart
	if err := tx.Preload("Items").Preload("Items.Product").
		First(&cart, "id = ?", cartID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload cart: %w", err)
	}
	return mapToCartView(&cart), nil
}

func findItem(cart *models.Cart, productID uuid.UUID) *models.CartItem {
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			return &cart.Items[i]
		}
	}
	return nil
}

// validateStock guards every quantity a cart line can end up with, for
// both the add and the set path.
func validateStock(product *models.Product, quantity int) error {
	if quantity <= 0 {
		return NewBadRequestError("quantity must be positive")
	}
	if product.StockQuantity < quantity {
		return &InsufficientStockError{
			ProductName: product.Name,
			Available:   product.StockQuantity,
		}
	}
	return nil
}

func mapToCartView(cart *models.Cart) *CartView {
	view := &CartView{
		Items:       make([]CartItemView, 0, len(cart.Items)),
		TotalItems:  len(cart.Items),
		TotalAmount: decimal.Zero,
	}
	for _, item := range cart.Items {
		price := item.Product.EffectivePrice()
		view.Items = append(view.Items, CartItemView{
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			Quantity:    item.Quantity,
			Price:       price,
			BasePrice:   item.Product.BasePrice,
		})
		view.TotalAmount = view.TotalAmount.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return view
}
