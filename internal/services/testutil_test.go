// internal/services/testutil_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kon/onlineshop/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A second connection would see its own empty in-memory database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Attribute{},
		&models.ProductAttributeValue{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
		&models.ReviewPhoto{},
	))

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Role:      models.UserRoleCustomer,
	}
	require.NoError(t, user.SetPassword("Password1"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestCategory(t *testing.T, db *gorm.DB, name string, parentID *uuid.UUID) *models.Category {
	t.Helper()

	category := &models.Category{Name: name, ParentID: parentID}
	require.NoError(t, db.Create(category).Error)
	return category
}

func createTestProduct(t *testing.T, db *gorm.DB, name string, basePrice, discountPrice string, stock int, categories ...*models.Category) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:          name,
		BasePrice:     decimal.RequireFromString(basePrice),
		DiscountPrice: decimal.RequireFromString(discountPrice),
		StockQuantity: stock,
	}
	for _, c := range categories {
		product.Categories = append(product.Categories, *c)
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func createTestAttribute(t *testing.T, db *gorm.DB, name string, attrType models.AttributeType) *models.Attribute {
	t.Helper()

	attribute := &models.Attribute{Name: name, Type: attrType}
	require.NoError(t, db.Create(attribute).Error)
	return attribute
}

func setAttributeValue(t *testing.T, db *gorm.DB, productID, attributeID uuid.UUID, value string) {
	t.Helper()

	require.NoError(t, db.Create(&models.ProductAttributeValue{
		ProductID:   productID,
		AttributeID: attributeID,
		Value:       value,
	}).Error)
}

func createTestReview(t *testing.T, db *gorm.DB, userID, productID uuid.UUID, rating int) {
	t.Helper()

	require.NoError(t, db.Create(&models.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    rating,
	}).Error)
}
