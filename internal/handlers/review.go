// internal/handlers/review.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kon/onlineshop/internal/services"
	"github.com/kon/onlineshop/internal/utils"
)

type ReviewHandler struct {
	reviewService *services.ReviewService
}

func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// POST /products/:id/reviews
//
// Multipart form: rating, comment, plus optional photo files under the
// "photos" field.
func (h *ReviewHandler) AddReview(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	rating, err := strconv.Atoi(c.PostForm("rating"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid rating", nil)
		return
	}

	req := &services.CreateReviewRequest{
		Rating:  rating,
		Comment: c.PostForm("comment"),
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, "Invalid multipart form", err.Error())
		return
	}

	review, err := h.reviewService.AddReview(userID, productID, req, form.File["photos"])
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.CreatedResponse(c, review)
}

// GET /products/:id/reviews
func (h *ReviewHandler) GetReviews(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var ratingFilter *int
	if ratingStr := c.Query("rating"); ratingStr != "" {
		rating, err := strconv.Atoi(ratingStr)
		if err != nil || rating < 1 || rating > 5 {
			utils.BadRequestResponse(c, "Invalid rating filter", nil)
			return
		}
		ratingFilter = &rating
	}

	params := utils.GetPaginationParams(c)
	reviews, total, err := h.reviewService.GetReviewsForProduct(productID, ratingFilter, params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	result := utils.CreatePaginationResult(reviews, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /products/:id/rating
func (h *ReviewHandler) GetRating(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	rating, err := h.reviewService.GetProductRating(productID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, rating)
}

// DELETE /admin/reviews/:id
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	reviewID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.reviewService.DeleteReview(reviewID); err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"deleted": reviewID})
}
