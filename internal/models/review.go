// internal/models/review.go
package models

import (
	"github.com/google/uuid"
)

type Review struct {
	BaseModel
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_user_product_review"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_user_product_review"`
	Rating    int       `json:"rating" gorm:"not null"`
	Comment   string    `json:"comment" gorm:"type:text"`

	User   User          `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Photos []ReviewPhoto `json:"photos,omitempty" gorm:"foreignKey:ReviewID"`
}

type ReviewPhoto struct {
	BaseModel
	ReviewID uuid.UUID `json:"review_id" gorm:"type:uuid;not null;index"`
	ImageURL string    `json:"image_url" gorm:"size:512;not null"`
}
