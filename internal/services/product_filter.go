// internal/services/product_filter.go
package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/kon/onlineshop/internal/models"
	"github.com/kon/onlineshop/internal/utils"
)

// Filter keys understood by SearchProducts. Anything else that does not
// carry the attribute prefix is ignored.
const (
	filterMinPrice   = "minPrice"
	filterMaxPrice   = "maxPrice"
	filterMinRating  = "minRating"
	attrFilterPrefix = "attr_"
)

// productScope is one independent, composable predicate over the product
// query. All scopes of a search are ANDed.
type productScope func(*gorm.DB) *gorm.DB

// SearchProducts returns one page of the products that belong to the
// category subtree and satisfy every recognized filter, plus the total
// match count across all pages.
//
// Filters degrade gracefully: a malformed value drops only its own
// predicate. The one exception is a well-formed attribute filter whose
// attribute id does not exist; the catalog cannot supply that property,
// so the whole search resolves to an empty page.
func (s *ProductService) SearchProducts(categoryID uuid.UUID, filters map[string]string, params utils.PaginationParams) ([]models.Product, int64, error) {
	ids, err := s.categoryService.DescendantIDs(categoryID)
	if err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return nil, 0, NewNotFoundError("category", categoryID)
	}

	scopes, empty, err := s.buildFilterScopes(filters)
	if err != nil {
		return nil, 0, err
	}
	if empty {
		return []models.Product{}, 0, nil
	}

	query := s.db.Model(&models.Product{}).
		Where("products.id IN (SELECT product_id FROM product_categories WHERE category_id IN ?)", ids)
	for _, scope := range scopes {
		query = scope(query)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query = utils.ApplyProductSort(query, params.Sort, params.Order)
	query = utils.ApplyPagination(query, params)

	var products []models.Product
	if err := query.Preload("Categories").Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

// buildFilterScopes turns the raw filter map into predicate scopes. The
// returned empty flag marks the unresolvable-attribute case.
func (s *ProductService) buildFilterScopes(filters map[string]string) ([]productScope, bool, error) {
	var scopes []productScope

	for key, value := range filters {
		switch {
		case key == filterMinPrice:
			if bound, ok := parsePriceBound(key, value); ok {
				scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
					return db.Where("base_price >= ?", bound)
				})
			}
		case key == filterMaxPrice:
			if bound, ok := parsePriceBound(key, value); ok {
				scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
					return db.Where("base_price <= ?", bound)
				})
			}
		case key == filterMinRating:
			minRating, err := strconv.ParseFloat(value, 64)
			if err != nil {
				logrus.WithField("value", value).Warn("dropping malformed minRating filter")
				continue
			}
			// Products without reviews count as rating 0.
			scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
				return db.Where(
					"(SELECT COALESCE(AVG(rating), 0) FROM reviews WHERE reviews.product_id = products.id AND reviews.deleted_at IS NULL) >= ?",
					minRating,
				)
			})
		case strings.HasPrefix(key, attrFilterPrefix):
			attributeID, err := uuid.Parse(strings.TrimPrefix(key, attrFilterPrefix))
			if err != nil {
				logrus.WithField("key", key).Warn("dropping attribute filter with malformed id")
				continue
			}

			attribute, err := s.attributeService.GetAttribute(attributeID)
			if err != nil {
				if _, ok := err.(*NotFoundError); ok {
					// The client asked for a property the catalog cannot
					// supply; nothing can match.
					return nil, true, nil
				}
				return nil, false, err
			}

			scope, ok := attributeScope(attribute, value)
			if !ok {
				continue
			}
			scopes = append(scopes, scope)
		}
	}

	return scopes, false, nil
}

// attributeScope builds the predicate for one typed attribute filter.
// A value that does not fit the attribute's type drops the predicate.
func attributeScope(attribute *models.Attribute, value string) (productScope, bool) {
	if strings.TrimSpace(value) == "" {
		return nil, false
	}

	const subquery = "products.id IN (SELECT product_id FROM product_attribute_values WHERE attribute_id = ? AND deleted_at IS NULL AND %s)"

	switch attribute.Type {
	case models.AttributeTypeString:
		condition := fmt.Sprintf(subquery, "LOWER(value) = ?")
		lowered := strings.ToLower(value)
		return func(db *gorm.DB) *gorm.DB {
			return db.Where(condition, attribute.ID, lowered)
		}, true

	case models.AttributeTypeNumber:
		return numberAttributeScope(attribute, value)

	case models.AttributeTypeBoolean:
		parsed, err := strconv.ParseBool(strings.ToLower(value))
		if err != nil {
			logrus.WithFields(logrus.Fields{"attribute": attribute.Name, "value": value}).
				Warn("dropping malformed boolean attribute filter")
			return nil, false
		}
		condition := fmt.Sprintf(subquery, "LOWER(value) = ?")
		return func(db *gorm.DB) *gorm.DB {
			return db.Where(condition, attribute.ID, strconv.FormatBool(parsed))
		}, true
	}

	return nil, false
}

// numberAttributeScope accepts either an exact numeric value or a
// "min:max" range where either side may be blank.
func numberAttributeScope(attribute *models.Attribute, value string) (productScope, bool) {
	const subquery = "products.id IN (SELECT product_id FROM product_attribute_values WHERE attribute_id = ? AND deleted_at IS NULL AND %s)"

	if !strings.Contains(value, ":") {
		exact, err := decimal.NewFromString(value)
		if err != nil {
			logrus.WithFields(logrus.Fields{"attribute": attribute.Name, "value": value}).
				Warn("dropping malformed numeric attribute filter")
			return nil, false
		}
		condition := fmt.Sprintf(subquery, "CAST(value AS DECIMAL) = ?")
		bound := exact.InexactFloat64()
		return func(db *gorm.DB) *gorm.DB {
			return db.Where(condition, attribute.ID, bound)
		}, true
	}

	parts := strings.SplitN(value, ":", 2)
	var conditions []string
	var bounds []float64

	for i, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		parsed, err := decimal.NewFromString(part)
		if err != nil {
			logrus.WithFields(logrus.Fields{"attribute": attribute.Name, "value": value}).
				Warn("dropping malformed numeric range filter")
			return nil, false
		}
		if i == 0 {
			conditions = append(conditions, "CAST(value AS DECIMAL) >= ?")
		} else {
			conditions = append(conditions, "CAST(value AS DECIMAL) <= ?")
		}
		bounds = append(bounds, parsed.InexactFloat64())
	}

	if len(conditions) == 0 {
		// ":" with both sides blank constrains nothing.
		return nil, false
	}

	condition := fmt.Sprintf(subquery, strings.Join(conditions, " AND "))
	return func(db *gorm.DB) *gorm.DB {
		args := make([]interface{}, 0, len(bounds)+1)
		args = append(args, attribute.ID)
		for _, b := range bounds {
			args = append(args, b)
		}
		return db.Where(condition, args...)
	}, true
}

func parsePriceBound(key, value string) (float64, bool) {
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		logrus.WithFields(logrus.Fields{"filter": key, "value": value}).
			Warn("dropping malformed price filter")
		return 0, false
	}
	return parsed.InexactFloat64(), true
}
