// internal/models/product.go
package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	Name          string          `json:"name" gorm:"size:255;not null"`
	Description   string          `json:"description" gorm:"type:text"`
	ImageURL      string          `json:"image_url" gorm:"size:512"`
	BasePrice     decimal.Decimal `json:"base_price" gorm:"type:decimal(10,2);not null"`
	DiscountPrice decimal.Decimal `json:"discount_price" gorm:"type:decimal(10,2)"`
	StockQuantity int             `json:"stock_quantity" gorm:"not null;default:0"`

	// Relationships
	Categories      []Category              `json:"categories,omitempty" gorm:"many2many:product_categories"`
	AttributeValues []ProductAttributeValue `json:"attribute_values,omitempty" gorm:"foreignKey:ProductID"`
}

// EffectivePrice is the sale price: the discount price when one is set
// and positive, the base price otherwise.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice.IsPositive() {
		return p.DiscountPrice
	}
	return p.BasePrice
}

type Attribute struct {
	BaseModel
	Name string        `json:"name" gorm:"size:255;not null;uniqueIndex"`
	Type AttributeType `json:"type" gorm:"type:varchar(20);not null"`
	Unit string        `json:"unit,omitempty" gorm:"size:50"`
}

// ProductAttributeValue carries one string-encoded value per (product,
// attribute) pair; the lexical form is validated against the attribute
// type before it is written.
type ProductAttributeValue struct {
	BaseModel
	ProductID   uuid.UUID `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_product_attribute"`
	AttributeID uuid.UUID `json:"attribute_id" gorm:"type:uuid;not null;uniqueIndex:idx_product_attribute"`
	Value       string    `json:"value" gorm:"size:255;not null"`

	Attribute Attribute `json:"attribute,omitempty" gorm:"foreignKey:AttributeID"`
}
