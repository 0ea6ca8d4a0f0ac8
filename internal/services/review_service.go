// internal/services/review_service.go
package services

import (
	"fmt"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/kon/onlineshop/internal/models"
	"github.com/kon/onlineshop/internal/utils"
)

type ReviewService struct {
	db             *gorm.DB
	storageService *StorageService
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=4000"`
}

// ProductRating is the aggregate the catalog's minRating filter and the
// product page consume. A product with no reviews rates 0.0.
type ProductRating struct {
	ProductID     uuid.UUID `json:"product_id"`
	AverageRating float64   `json:"average_rating"`
	ReviewCount   int64     `json:"review_count"`
}

func NewReviewService(db *gorm.DB, storageService *StorageService) *ReviewService {
	return &ReviewService{db: db, storageService: storageService}
}

func (s *ReviewService) AddReview(userID, productID uuid.UUID, req *CreateReviewRequest, photos []*multipart.FileHeader) (*models.Review, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, NewBadRequestError("validation failed: %v", err)
	}

	var product models.Product
	if err := s.db.First(&product, "id = ?", productID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewNotFoundError("product", productID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var existing models.Review
	err := s.db.Where("user_id = ? AND product_id = ?", userID, productID).First(&existing).Error
	if err == nil {
		return nil, NewConflictError("user %s already reviewed product %s", userID, productID)
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("database error: %w", err)
	}

	review := &models.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	for _, photo := range photos {
		url, err := s.storageService.StorePhoto(photo, fmt.Sprintf("reviews/%s", productID))
		if err != nil {
			return nil, fmt.Errorf("failed to store review photo: %w", err)
		}
		review.Photos = append(review.Photos, models.ReviewPhoto{ImageURL: url})
	}

	if err := s.db.Create(review).Error; err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	return review, nil
}

func (s *ReviewService) GetReviewsForProduct(productID uuid.UUID, ratingFilter *int, params utils.PaginationParams) ([]models.Review, int64, error) {
	var exists int64
	if err := s.db.Model(&models.Product{}).Where("id = ?", productID).Count(&exists).Error; err != nil {
		return nil, 0, fmt.Errorf("database error: %w", err)
	}
	if exists == 0 {
		return nil, 0, NewNotFoundError("product", productID)
	}

	query := s.db.Model(&models.Review{}).Where("product_id = ?", productID)
	if ratingFilter != nil {
		query = query.Where("rating = ?", *ratingFilter)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	var reviews []models.Review
	err := utils.ApplyPagination(query.Order("created_at DESC"), params).
		Preload("Photos").Preload("User").
		Find(&reviews).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch reviews: %w", err)
	}
	return reviews, total, nil
}

// GetProductRating aggregates the product's reviews into an average and
// a count.
func (s *ReviewService) GetProductRating(productID uuid.UUID) (*ProductRating, error) {
	var exists int64
	if err := s.db.Model(&models.Product{}).Where("id = ?", productID).Count(&exists).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if exists == 0 {
		return nil, NewNotFoundError("product", productID)
	}

	rating := &ProductRating{ProductID: productID}
	err := s.db.Model(&models.Review{}).
		Where("product_id = ?", productID).
		Select("COALESCE(AVG(rating), 0) AS average_rating, COUNT(*) AS review_count").
		Row().Scan(&rating.AverageRating, &rating.ReviewCount)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate rating: %w", err)
	}
	return rating, nil
}

func (s *ReviewService) DeleteReview(reviewID uuid.UUID) error {
	var review models.Review
	if err := s.db.Preload("Photos").First(&review, "id = ?", reviewID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return NewNotFoundError("review", reviewID)
		}
		return fmt.Errorf("database error: %w", err)
	}

	for _, photo := range review.Photos {
		if err := s.storageService.DeletePhoto(photo.ImageURL); err != nil {
			logrus.WithError(err).WithField("url", photo.ImageURL).
				Warn("failed to delete review photo")
		}
	}

	// Hard delete: a soft-deleted row would keep holding the
	// one-review-per-user index and block the user from ever
	// reviewing the product again.
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("review_id = ?", reviewID).Delete(&models.ReviewPhoto{}).Error; err != nil {
			return fmt.Errorf("failed to delete review photos: %w", err)
		}
		if err := tx.Unscoped().Delete(&review).Error; err != nil {
			return fmt.Errorf("failed to delete review: %w", err)
		}
		return nil
	})
}
