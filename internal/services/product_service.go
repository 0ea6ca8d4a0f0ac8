// internal/services/product_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kon/onlineshop/internal/models"
	"github.com/kon/onlineshop/internal/utils"
)

type ProductService struct {
	db               *gorm.DB
	categoryService  *CategoryService
	attributeService *AttributeService
}

type CreateProductRequest struct {
	Name          string          `json:"name" validate:"required,min=1,max=255"`
	Description   string          `json:"description"`
	ImageURL      string          `json:"image_url" validate:"omitempty,max=512"`
	BasePrice     decimal.Decimal `json:"base_price"`
	DiscountPrice decimal.Decimal `json:"discount_price"`
	StockQuantity int             `json:"stock_quantity" validate:"min=0"`
	CategoryIDs   []uuid.UUID     `json:"category_ids,omitempty"`
}

type UpdateProductRequest struct {
	Name          string           `json:"name" validate:"required,min=1,max=255"`
	Description   string           `json:"description"`
	ImageURL      string           `json:"image_url" validate:"omitempty,max=512"`
	BasePrice     decimal.Decimal  `json:"base_price"`
	DiscountPrice *decimal.Decimal `json:"discount_price,omitempty"`
	StockQuantity int              `json:"stock_quantity" validate:"min=0"`
}

type AttributeValueInput struct {
	AttributeID uuid.UUID `json:"attribute_id" validate:"required"`
	Value       string    `json:"value" validate:"required"`
}

func NewProductService(db *gorm.DB, categoryService *CategoryService, attributeService *AttributeService) *ProductService {
	return &ProductService{
		db:               db,
		categoryService:  categoryService,
		attributeService: attributeService,
	}
}

// GetAllProducts lists every product sorted by the requested field; no
// filtering is applied.
func (s *ProductService) GetAllProducts(sortBy, sortOrder string) ([]models.Product, error) {
	query := utils.ApplyProductSort(s.db.Model(&models.Product{}), sortBy, sortOrder)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, nil
}

// GetProductDetails loads a product with its categories and attribute
// values.
func (s *ProductService) GetProductDetails(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := s.db.Preload("Categories").Preload("AttributeValues").Preload("AttributeValues.Attribute").
		First(&product, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewNotFoundError("product", id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

func (s *ProductService) CreateProduct(req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, NewBadRequestError("validation failed: %v", err)
	}
	if err := validatePrices(req.BasePrice, req.DiscountPrice); err != nil {
		return nil, err
	}

	categories, err := s.loadCategories(req.CategoryIDs)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:          req.Name,
		Description:   req.Description,
		ImageURL:      req.ImageURL,
		BasePrice:     req.BasePrice,
		DiscountPrice: req.DiscountPrice,
		StockQuantity: req.StockQuantity,
		Categories:    categories,
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return s.GetProductDetails(product.ID)
}

func (s *ProductService) UpdateProduct(id uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, NewBadRequestError("validation failed: %v", err)
	}

	product, err := s.getProduct(s.db, id)
	if err != nil {
		return nil, err
	}

	discount := product.DiscountPrice
	if req.DiscountPrice != nil {
		discount = *req.DiscountPrice
	}
	if err := validatePrices(req.BasePrice, discount); err != nil {
		return nil, err
	}

	product.Name = req.Name
	product.Description = req.Description
	product.ImageURL = req.ImageURL
	product.BasePrice = req.BasePrice
	product.DiscountPrice = discount
	product.StockQuantity = req.StockQuantity

	if err := s.db.Save(product).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return s.GetProductDetails(id)
}

func (s *ProductService) DeleteProduct(id uuid.UUID) error {
	product, err := s.getProduct(s.db, id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM product_categories WHERE product_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to detach categories: %w", err)
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductAttributeValue{}).Error; err != nil {
			return fmt.Errorf("failed to delete attribute values: %w", err)
		}
		if err := tx.Delete(product).Error; err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return nil
	})
}

// UpdateProductCategories replaces the product's category membership
// wholesale.
func (s *ProductService) UpdateProductCategories(productID uuid.UUID, categoryIDs []uuid.UUID) error {
	product, err := s.getProduct(s.db, productID)
	if err != nil {
		return err
	}

	categories, err := s.loadCategories(categoryIDs)
	if err != nil {
		return err
	}

	if err := s.db.Model(product).Association("Categories").Replace(categories); err != nil {
		return fmt.Errorf("failed to replace product categories: %w", err)
	}
	return nil
}

func (s *ProductService) GetProductCategories(productID uuid.UUID) ([]models.Category, error) {
	product, err := s.GetProductDetails(productID)
	if err != nil {
		return nil, err
	}
	return product.Categories, nil
}

// UpdateProductAttributes atomically replaces the product's full
// attribute-value set. Every value is validated against its attribute's
// type before anything is written; old values are discarded, not merged.
func (s *ProductService) UpdateProductAttributes(productID uuid.UUID, values []AttributeValueInput) error {
	if _, err := s.getProduct(s.db, productID); err != nil {
		return err
	}

	newValues := make([]models.ProductAttributeValue, 0, len(values))
	for _, input := range values {
		attribute, err := s.attributeService.GetAttribute(input.AttributeID)
		if err != nil {
			return err
		}
		normalized, err := s.attributeService.ValidateValue(attribute, input.Value)
		if err != nil {
			return err
		}
		newValues = append(newValues, models.ProductAttributeValue{
			ProductID:   productID,
			AttributeID: attribute.ID,
			Value:       normalized,
		})
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("product_id = ?", productID).
			Delete(&models.ProductAttributeValue{}).Error; err != nil {
			return fmt.Errorf("failed to clear attribute values: %w", err)
		}
		if len(newValues) == 0 {
			return nil
		}
		if err := tx.Create(&newValues).Error; err != nil {
			return fmt.Errorf("failed to store attribute values: %w", err)
		}
		return nil
	})
}

func (s *ProductService) getProduct(tx *gorm.DB, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := tx.First(&product, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewNotFoundError("product", id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

func (s *ProductService) loadCategories(ids []uuid.UUID) ([]models.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var categories []models.Category
	if err := s.db.Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	return categories, nil
}

func validatePrices(basePrice, discountPrice decimal.Decimal) error {
	if basePrice.IsNegative() {
		return NewBadRequestError("base price must not be negative")
	}
	if discountPrice.IsNegative() {
		return NewBadRequestError("discount price must not be negative")
	}
	return nil
}
