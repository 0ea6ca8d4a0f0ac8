// internal/services/order_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/kon/onlineshop/internal/models"
	"github.com/kon/onlineshop/internal/utils"
)

// fakeNotifier records confirmation deliveries instead of sending mail.
type fakeNotifier struct {
	orders []*models.Order
	emails []string
	err    error
}

func (f *fakeNotifier) SendOrderConfirmation(order *models.Order, email string) error {
	f.orders = append(f.orders, order)
	f.emails = append(f.emails, email)
	return f.err
}

type OrderServiceTestSuite struct {
	suite.Suite
	db          *gorm.DB
	service     *OrderService
	cartService *CartService
	notifier    *fakeNotifier

	user     *models.User
	category *models.Category
	mouse    *models.Product // 100.00, stock 5
	monitor  *models.Product // 500.00 discounted to 450.00, stock 10
}

func (s *OrderServiceTestSuite) SetupTest() {
	s.db = setupTestDB(s.T())
	s.notifier = &fakeNotifier{}
	s.service = NewOrderService(s.db, s.notifier)
	s.cartService = NewCartService(s.db)

	s.user = createTestUser(s.T(), s.db, "buyer@example.com")
	s.category = createTestCategory(s.T(), s.db, "Electronics", nil)
	s.mouse = createTestProduct(s.T(), s.db, "Mouse", "100.00", "0", 5, s.category)
	s.monitor = createTestProduct(s.T(), s.db, "Monitor", "500.00", "450.00", 10, s.category)
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}

func (s *OrderServiceTestSuite) addToCart(productID uuid.UUID, quantity int) {
	_, err := s.cartService.AddItem(s.user.ID, &CartItemRequest{ProductID: productID, Quantity: quantity})
	s.Require().NoError(err)
}

func (s *OrderServiceTestSuite) stockOf(productID uuid.UUID) int {
	var product models.Product
	s.Require().NoError(s.db.First(&product, "id = ?", productID).Error)
	return product.StockQuantity
}

func (s *OrderServiceTestSuite) TestCheckoutSnapshotsEffectivePrices() {
	s.addToCart(s.mouse.ID, 2)
	s.addToCart(s.monitor.ID, 1)

	view, err := s.service.Checkout(s.user.ID)
	s.Require().NoError(err)
	s.Require().Len(view.Items, 2)

	// 2 x 100.00 plus 1 x 450.00; the discount price is what gets
	// frozen into the order line.
	s.True(view.TotalAmount.Equal(decimal.NewFromInt(650)), view.TotalAmount.String())

	byProduct := make(map[uuid.UUID]OrderItemView)
	for _, item := range view.Items {
		byProduct[item.ProductID] = item
	}
	s.True(byProduct[s.mouse.ID].PriceAtOrder.Equal(decimal.NewFromInt(100)))
	s.True(byProduct[s.monitor.ID].PriceAtOrder.Equal(decimal.NewFromInt(450)))
}

func (s *OrderServiceTestSuite) TestCheckoutDecrementsStockAndClearsCart() {
	s.addToCart(s.mouse.ID, 3)

	_, err := s.service.Checkout(s.user.ID)
	s.Require().NoError(err)

	s.Equal(2, s.stockOf(s.mouse.ID))

	// The cart row survives empty; only its lines are gone.
	view, err := s.cartService.GetCart(s.user.ID)
	s.Require().NoError(err)
	s.Empty(view.Items)

	var carts int64
	s.db.Model(&models.Cart{}).Where("user_id = ?", s.user.ID).Count(&carts)
	s.EqualValues(1, carts)
}

func (s *OrderServiceTestSuite) TestCheckoutEmptyCart() {
	_, err := s.service.Checkout(s.user.ID)
	s.Require().ErrorIs(err, ErrEmptyCart)

	// An existing but empty cart behaves the same as no cart.
	_, err = s.cartService.GetCart(s.user.ID)
	s.Require().NoError(err)
	_, err = s.service.Checkout(s.user.ID)
	s.Require().ErrorIs(err, ErrEmptyCart)
}

func (s *OrderServiceTestSuite) TestCheckoutInsufficientStockRollsBack() {
	s.addToCart(s.mouse.ID, 2)
	s.addToCart(s.monitor.ID, 1)

	// Stock drains between adding to cart and checking out.
	s.Require().NoError(s.db.Model(&models.Product{}).
		Where("id = ?", s.monitor.ID).
		UpdateColumn("stock_quantity", 0).Error)

	_, err := s.service.Checkout(s.user.ID)
	var stockErr *InsufficientStockError
	s.Require().ErrorAs(err, &stockErr)
	s.Equal("Monitor", stockErr.ProductName)
	s.Equal(0, stockErr.Available)

	// No partial decrement, no order, cart intact.
	s.Equal(5, s.stockOf(s.mouse.ID))
	var orders int64
	s.db.Model(&models.Order{}).Count(&orders)
	s.EqualValues(0, orders)

	view, err := s.cartService.GetCart(s.user.ID)
	s.Require().NoError(err)
	s.Len(view.Items, 2)
	s.Empty(s.notifier.emails)
}

func (s *OrderServiceTestSuite) TestOrderImmuneToLaterPriceChange() {
	s.addToCart(s.mouse.ID, 1)
	view, err := s.service.Checkout(s.user.ID)
	s.Require().NoError(err)

	s.Require().NoError(s.db.Model(&models.Product{}).
		Where("id = ?", s.mouse.ID).
		UpdateColumn("base_price", "999.00").Error)

	reread, err := s.service.GetOrder(s.user.ID, view.OrderID)
	s.Require().NoError(err)
	s.Require().Len(reread.Items, 1)
	s.True(reread.Items[0].PriceAtOrder.Equal(decimal.NewFromInt(100)))
	s.True(reread.TotalAmount.Equal(decimal.NewFromInt(100)))
}

func (s *OrderServiceTestSuite) TestGetOrderOwnerOnly() {
	s.addToCart(s.mouse.ID, 1)
	view, err := s.service.Checkout(s.user.ID)
	s.Require().NoError(err)

	other := createTestUser(s.T(), s.db, "other@example.com")
	_, err = s.service.GetOrder(other.ID, view.OrderID)
	s.Require().Error(err)
	s.IsType(&NotFoundError{}, err)

	_, err = s.service.GetOrder(s.user.ID, uuid.New())
	s.Require().Error(err)
	s.IsType(&NotFoundError{}, err)
}

func (s *OrderServiceTestSuite) TestGetUserOrdersNewestFirst() {
	s.addToCart(s.mouse.ID, 1)
	first, err := s.service.Checkout(s.user.ID)
	s.Require().NoError(err)

	s.addToCart(s.monitor.ID, 1)
	second, err := s.service.Checkout(s.user.ID)
	s.Require().NoError(err)

	orders, total, err := s.service.GetUserOrders(s.user.ID, utils.PaginationParams{Page: 1, Limit: 20})
	s.Require().NoError(err)
	s.EqualValues(2, total)
	s.Require().Len(orders, 2)

	returned := []uuid.UUID{orders[0].OrderID, orders[1].OrderID}
	s.ElementsMatch([]uuid.UUID{first.OrderID, second.OrderID}, returned)

	page, total, err := s.service.GetUserOrders(s.user.ID, utils.PaginationParams{Page: 2, Limit: 1})
	s.Require().NoError(err)
	s.EqualValues(2, total)
	s.Len(page, 1)
}

func (s *OrderServiceTestSuite) TestCheckoutSendsConfirmation() {
	s.addToCart(s.mouse.ID, 1)
	view, err := s.service.Checkout(s.user.ID)
	s.Require().NoError(err)

	s.Require().Len(s.notifier.emails, 1)
	s.Equal("buyer@example.com", s.notifier.emails[0])
	s.Equal(view.OrderID, s.notifier.orders[0].ID)
}
