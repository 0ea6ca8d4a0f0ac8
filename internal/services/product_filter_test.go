// internal/services/product_filter_test.go
package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/kon/onlineshop/internal/models"
	"github.com/kon/onlineshop/internal/utils"
)

type ProductFilterTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *ProductService

	electronics *models.Category
	laptops     *models.Category

	cheap     *models.Product // 100.00, rated 5
	mid       *models.Product // 500.00 discounted to 450.00, rated 3
	pricey    *models.Product // 2000.00, no reviews
	colorAttr *models.Attribute
	ramAttr   *models.Attribute
}

func (s *ProductFilterTestSuite) SetupTest() {
	s.db = setupTestDB(s.T())
	categoryService := NewCategoryService(s.db)
	attributeService := NewAttributeService(s.db)
	s.service = NewProductService(s.db, categoryService, attributeService)

	s.electronics = createTestCategory(s.T(), s.db, "Electronics", nil)
	s.laptops = createTestCategory(s.T(), s.db, "Laptops", &s.electronics.ID)

	s.cheap = createTestProduct(s.T(), s.db, "Mouse", "100.00", "0", 50, s.electronics)
	s.mid = createTestProduct(s.T(), s.db, "Monitor", "500.00", "450.00", 20, s.electronics)
	s.pricey = createTestProduct(s.T(), s.db, "ThinkPad", "2000.00", "0", 5, s.laptops)

	user := createTestUser(s.T(), s.db, "reviewer@example.com")
	createTestReview(s.T(), s.db, user.ID, s.cheap.ID, 5)
	createTestReview(s.T(), s.db, user.ID, s.mid.ID, 3)

	s.colorAttr = createTestAttribute(s.T(), s.db, "Color", models.AttributeTypeString)
	s.ramAttr = createTestAttribute(s.T(), s.db, "RAM", models.AttributeTypeNumber)
	setAttributeValue(s.T(), s.db, s.cheap.ID, s.colorAttr.ID, "black")
	setAttributeValue(s.T(), s.db, s.pricey.ID, s.colorAttr.ID, "Black")
	setAttributeValue(s.T(), s.db, s.pricey.ID, s.ramAttr.ID, "32")
}

func TestProductFilterSuite(t *testing.T) {
	suite.Run(t, new(ProductFilterTestSuite))
}

func (s *ProductFilterTestSuite) search(filters map[string]string) ([]models.Product, int64) {
	products, total, err := s.service.SearchProducts(s.electronics.ID, filters, utils.PaginationParams{
		Page: 1, Limit: 20, Sort: "name", Order: "asc",
	})
	s.Require().NoError(err)
	return products, total
}

func (s *ProductFilterTestSuite) productNames(products []models.Product) []string {
	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name)
	}
	return names
}

func (s *ProductFilterTestSuite) TestNoFiltersReturnsSubtree() {
	products, total := s.search(nil)
	s.EqualValues(3, total)
	s.ElementsMatch([]string{"Mouse", "Monitor", "ThinkPad"}, s.productNames(products))
}

func (s *ProductFilterTestSuite) TestPriceBounds() {
	products, total := s.search(map[string]string{"minPrice": "200", "maxPrice": "1000"})
	s.EqualValues(1, total)
	s.Equal([]string{"Monitor"}, s.productNames(products))
}

func (s *ProductFilterTestSuite) TestMinRatingExcludesUnreviewed() {
	// ThinkPad has no reviews and counts as rating 0.
	products, _ := s.search(map[string]string{"minRating": "4"})
	s.Equal([]string{"Mouse"}, s.productNames(products))
}

func (s *ProductFilterTestSuite) TestMalformedFilterIsDropped() {
	// A malformed bound drops only its own predicate, not the search.
	products, total := s.search(map[string]string{"minPrice": "cheap"})
	s.EqualValues(3, total)
	s.Len(products, 3)
}

func (s *ProductFilterTestSuite) TestStringAttributeCaseInsensitive() {
	products, _ := s.search(map[string]string{
		fmt.Sprintf("attr_%s", s.colorAttr.ID): "BLACK",
	})
	s.ElementsMatch([]string{"Mouse", "ThinkPad"}, s.productNames(products))
}

func (s *ProductFilterTestSuite) TestNumberAttributeExact() {
	products, _ := s.search(map[string]string{
		fmt.Sprintf("attr_%s", s.ramAttr.ID): "32",
	})
	s.Equal([]string{"ThinkPad"}, s.productNames(products))
}

func (s *ProductFilterTestSuite) TestNumberAttributeRange() {
	products, _ := s.search(map[string]string{
		fmt.Sprintf("attr_%s", s.ramAttr.ID): "16:64",
	})
	s.Equal([]string{"ThinkPad"}, s.productNames(products))

	products, _ = s.search(map[string]string{
		fmt.Sprintf("attr_%s", s.ramAttr.ID): "64:",
	})
	s.Empty(products)
}

func (s *ProductFilterTestSuite) TestUnknownAttributeYieldsEmptyPage() {
	products, total := s.search(map[string]string{
		fmt.Sprintf("attr_%s", uuid.New()): "whatever",
	})
	s.EqualValues(0, total)
	s.Empty(products)
}

func (s *ProductFilterTestSuite) TestMalformedAttributeValueDropsPredicate() {
	products, _ := s.search(map[string]string{
		fmt.Sprintf("attr_%s", s.ramAttr.ID): "lots",
	})
	s.Len(products, 3)
}

func (s *ProductFilterTestSuite) TestUnknownCategory() {
	_, _, err := s.service.SearchProducts(uuid.New(), nil, utils.PaginationParams{Page: 1, Limit: 20})
	s.Require().Error(err)
	s.IsType(&NotFoundError{}, err)
}

func (s *ProductFilterTestSuite) TestCombinedFilters() {
	colorKey := fmt.Sprintf("attr_%s", s.colorAttr.ID)
	products, _ := s.search(map[string]string{
		"minPrice":  "50",
		"minRating": "4",
		colorKey:    "black",
	})
	s.Equal([]string{"Mouse"}, s.productNames(products))
}

func (s *ProductFilterTestSuite) TestPagination() {
	products, total, err := s.service.SearchProducts(s.electronics.ID, nil, utils.PaginationParams{
		Page: 2, Limit: 2, Sort: "name", Order: "asc",
	})
	s.Require().NoError(err)
	s.EqualValues(3, total)
	s.Len(products, 1)
}
