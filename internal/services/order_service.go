// internal/services/order_service.go
package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/kon/onlineshop/internal/models"
	"github.com/kon/onlineshop/internal/utils"
)

// Notifier delivers the order confirmation after a successful checkout.
// A delivery failure is reported, never retried as part of the checkout
// call, and never unwinds the committed order.
type Notifier interface {
	SendOrderConfirmation(order *models.Order, email string) error
}

// OrderService converts cart contents into immutable orders. Stock
// re-validation and decrement run inside one transaction per checkout;
// the decrement is guarded by the current stock count so two concurrent
// checkouts cannot both clear validation against the same stale value.
type OrderService struct {
	db       *gorm.DB
	notifier Notifier
}

type OrderItemView struct {
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Quantity     int             `json:"quantity"`
	PriceAtOrder decimal.Decimal `json:"price_at_order"`
}

type OrderView struct {
	OrderID     uuid.UUID       `json:"order_id"`
	UserID      uuid.UUID       `json:"user_id"`
	Items       []OrderItemView `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

func NewOrderService(db *gorm.DB, notifier Notifier) *OrderService {
	return &OrderService{db: db, notifier: notifier}
}

// Checkout turns the user's cart into an order: re-validate stock for
// every line, snapshot the effective price per line, decrement stock,
// persist the order and clear the cart as one atomic unit. Any line
// failing stock validation aborts the whole checkout; partial orders are
// never created.
func (s *OrderService) Checkout(userID uuid.UUID) (*OrderView, error) {
	var order models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		err := tx.Preload("Items").Preload("Items.Product").
			Where("user_id = ?", userID).First(&cart).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrEmptyCart
			}
			return fmt.Errorf("database error: %w", err)
		}
		if len(cart.Items) == 0 {
			return ErrEmptyCart
		}

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(cart.Items))

		for _, line := range cart.Items {
			// Guarded decrement: validation and decrement are one
			// statement, so a concurrent checkout that drained the
			// stock in the meantime flips RowsAffected to zero.
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock_quantity >= ?", line.ProductID, line.Quantity).
				UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", line.Quantity))
			if res.Error != nil {
				return fmt.Errorf("failed to decrement stock: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				var current models.Product
				if err := tx.First(&current, "id = ?", line.ProductID).Error; err != nil {
					return &InsufficientStockError{ProductName: line.Product.Name, Available: 0}
				}
				return &InsufficientStockError{
					ProductName: current.Name,
					Available:   current.StockQuantity,
				}
			}

			price := line.Product.EffectivePrice()
			items = append(items, models.OrderItem{
				ProductID:    line.ProductID,
				Quantity:     line.Quantity,
				PriceAtOrder: price,
				Product:      line.Product,
			})
			total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}

		order = models.Order{
			UserID:      userID,
			TotalAmount: total,
			Items:       items,
		}
		if err := tx.Omit("Items.Product").Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		if err := tx.Unscoped().Where("cart_id = ?", cart.ID).
			Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		if err := tx.Model(&cart).Update("updated_at", tx.NowFunc()).Error; err != nil {
			return fmt.Errorf("failed to touch cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyConfirmation(&order, userID)

	return mapToOrderView(&order), nil
}

// GetUserOrders pages through the user's order history, newest first.
func (s *OrderService) GetUserOrders(userID uuid.UUID, params utils.PaginationParams) ([]*OrderView, int64, error) {
	query := s.db.Model(&models.Order{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []models.Order
	err := utils.ApplyPagination(query.Order("created_at DESC"), params).
		Preload("Items").Preload("Items.Product").
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	views := make([]*OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, mapToOrderView(&orders[i]))
	}
	return views, total, nil
}

// GetOrder returns one order; only its owner can read it.
func (s *OrderService) GetOrder(userID, orderID uuid.UUID) (*OrderView, error) {
	var order models.Order
	err := s.db.Preload("Items").Preload("Items.Product").
		First(&order, "id = ?", orderID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewNotFoundError("order", orderID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if order.UserID != userID {
		return nil, NewNotFoundError("order", orderID)
	}
	return mapToOrderView(&order), nil
}

func (s *OrderService) notifyConfirmation(order *models.Order, userID uuid.UUID) {
	if s.notifier == nil {
		return
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		logrus.WithError(err).WithField("order_id", order.ID).
			Error("cannot load user for order confirmation")
		return
	}

	if err := s.notifier.SendOrderConfirmation(order, user.Email); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"order_id": order.ID,
			"email":    user.Email,
		}).Error("failed to send order confirmation")
	}
}

func mapToOrderView(order *models.Order) *OrderView {
	view := &OrderView{
		OrderID:     order.ID,
		UserID:      order.UserID,
		Items:       make([]OrderItemView, 0, len(order.Items)),
		TotalAmount: order.TotalAmount,
		CreatedAt:   order.CreatedAt,
	}
	for _, item := range order.Items {
		view.Items = append(view.Items, OrderItemView{
			ProductID:    item.ProductID,
			ProductName:  item.Product.Name,
			Quantity:     item.Quantity,
			PriceAtOrder: item.PriceAtOrder,
		})
	}
	return view
}
