// internal/models/category.go
package models

import (
	"github.com/google/uuid"
)

// Category forms a tree through ParentID. Children are loaded on demand;
// the back-reference stays a plain id to keep ownership one-directional.
type Category struct {
	BaseModel
	Name     string     `json:"name" gorm:"size:255;not null"`
	ParentID *uuid.UUID `json:"parent_id,omitempty" gorm:"type:uuid;index"`

	Children []Category `json:"children,omitempty" gorm:"foreignKey:ParentID"`
	Products []Product  `json:"products,omitempty" gorm:"many2many:product_categories"`
}
