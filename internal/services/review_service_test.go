// internal/services/review_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/kon/onlineshop/internal/models"
	"github.com/kon/onlineshop/internal/utils"
)

type ReviewServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *ReviewService

	product *models.Product
}

func (s *ReviewServiceTestSuite) SetupTest() {
	s.db = setupTestDB(s.T())
	// Photo-less reviews never reach the storage layer.
	s.service = NewReviewService(s.db, nil)

	category := createTestCategory(s.T(), s.db, "Electronics", nil)
	s.product = createTestProduct(s.T(), s.db, "Mouse", "100.00", "0", 5, category)
}

func TestReviewServiceSuite(t *testing.T) {
	suite.Run(t, new(ReviewServiceTestSuite))
}

func (s *ReviewServiceTestSuite) TestAddReview() {
	user := createTestUser(s.T(), s.db, "reviewer@example.com")
	review, err := s.service.AddReview(user.ID, s.product.ID, &CreateReviewRequest{
		Rating:  4,
		Comment: "Solid, a bit loud.",
	}, nil)
	s.Require().NoError(err)
	s.Equal(4, review.Rating)
	s.NotEqual(uuid.Nil, review.ID)
}

func (s *ReviewServiceTestSuite) TestAddReviewRejectsBadRating() {
	user := createTestUser(s.T(), s.db, "reviewer@example.com")
	_, err := s.service.AddReview(user.ID, s.product.ID, &CreateReviewRequest{Rating: 6}, nil)
	s.Require().Error(err)
	s.IsType(&BadRequestError{}, err)
}

func (s *ReviewServiceTestSuite) TestOneReviewPerUserAndProduct() {
	user := createTestUser(s.T(), s.db, "reviewer@example.com")
	_, err := s.service.AddReview(user.ID, s.product.ID, &CreateReviewRequest{Rating: 5}, nil)
	s.Require().NoError(err)

	_, err = s.service.AddReview(user.ID, s.product.ID, &CreateReviewRequest{Rating: 1}, nil)
	s.Require().Error(err)
	s.IsType(&ConflictError{}, err)
}

func (s *ReviewServiceTestSuite) TestAddReviewUnknownProduct() {
	user := createTestUser(s.T(), s.db, "reviewer@example.com")
	_, err := s.service.AddReview(user.ID, uuid.New(), &CreateReviewRequest{Rating: 3}, nil)
	s.Require().Error(err)
	s.IsType(&NotFoundError{}, err)
}

func (s *ReviewServiceTestSuite) TestGetProductRating() {
	rating, err := s.service.GetProductRating(s.product.ID)
	s.Require().NoError(err)
	s.Zero(rating.AverageRating)
	s.Zero(rating.ReviewCount)

	alice := createTestUser(s.T(), s.db, "alice@example.com")
	bob := createTestUser(s.T(), s.db, "bob@example.com")
	createTestReview(s.T(), s.db, alice.ID, s.product.ID, 5)
	createTestReview(s.T(), s.db, bob.ID, s.product.ID, 4)

	rating, err = s.service.GetProductRating(s.product.ID)
	s.Require().NoError(err)
	s.InDelta(4.5, rating.AverageRating, 0.001)
	s.EqualValues(2, rating.ReviewCount)
}

func (s *ReviewServiceTestSuite) TestGetReviewsFilteredByRating() {
	alice := createTestUser(s.T(), s.db, "alice@example.com")
	bob := createTestUser(s.T(), s.db, "bob@example.com")
	createTestReview(s.T(), s.db, alice.ID, s.product.ID, 5)
	createTestReview(s.T(), s.db, bob.ID, s.product.ID, 2)

	reviews, total, err := s.service.GetReviewsForProduct(s.product.ID, nil, utils.PaginationParams{Page: 1, Limit: 20})
	s.Require().NoError(err)
	s.EqualValues(2, total)
	s.Len(reviews, 2)

	five := 5
	reviews, total, err = s.service.GetReviewsForProduct(s.product.ID, &five, utils.PaginationParams{Page: 1, Limit: 20})
	s.Require().NoError(err)
	s.EqualValues(1, total)
	s.Require().Len(reviews, 1)
	s.Equal(5, reviews[0].Rating)
}

func (s *ReviewServiceTestSuite) TestDeleteReview() {
	user := createTestUser(s.T(), s.db, "reviewer@example.com")
	review, err := s.service.AddReview(user.ID, s.product.ID, &CreateReviewRequest{Rating: 3}, nil)
	s.Require().NoError(err)

	s.Require().NoError(s.service.DeleteReview(review.ID))

	_, total, err := s.service.GetReviewsForProduct(s.product.ID, nil, utils.PaginationParams{Page: 1, Limit: 20})
	s.Require().NoError(err)
	s.EqualValues(0, total)

	err = s.service.DeleteReview(review.ID)
	s.Require().Error(err)
	s.IsType(&NotFoundError{}, err)
}

func (s *ReviewServiceTestSuite) TestUserCanReviewAgainAfterDeletion() {
	user := createTestUser(s.T(), s.db, "reviewer@example.com")
	review, err := s.service.AddReview(user.ID, s.product.ID, &CreateReviewRequest{Rating: 1}, nil)
	s.Require().NoError(err)

	s.Require().NoError(s.service.DeleteReview(review.ID))

	replacement, err := s.service.AddReview(user.ID, s.product.ID, &CreateReviewRequest{
		Rating:  4,
		Comment: "Much better after the firmware update.",
	}, nil)
	s.Require().NoError(err)
	s.NotEqual(review.ID, replacement.ID)

	rating, err := s.service.GetProductRating(s.product.ID)
	s.Require().NoError(err)
	s.InDelta(4.0, rating.AverageRating, 0.001)
	s.EqualValues(1, rating.ReviewCount)
}
