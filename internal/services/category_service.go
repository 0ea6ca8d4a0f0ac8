// internal/services/category_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kon/onlineshop/internal/models"
	"github.com/kon/onlineshop/internal/utils"
)

type CategoryService struct {
	db *gorm.DB
}

type CreateCategoryRequest struct {
	Name     string     `json:"name" validate:"required,min=1,max=255"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

type UpdateCategoryRequest struct {
	Name     string     `json:"name" validate:"required,min=1,max=255"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

// CategoryTreeNode is one category with its recursively nested children.
type CategoryTreeNode struct {
	ID       uuid.UUID           `json:"id"`
	Name     string              `json:"name"`
	ParentID *uuid.UUID          `json:"parent_id,omitempty"`
	Children []*CategoryTreeNode `json:"children,omitempty"`
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

func (s *CategoryService) CreateCategory(req *CreateCategoryRequest) (*models.Category, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, NewBadRequestError("validation failed: %v", err)
	}

	if req.ParentID != nil {
		if _, err := s.getCategory(s.db, *req.ParentID); err != nil {
			return nil, err
		}
	}

	category := &models.Category{
		Name:     req.Name,
		ParentID: req.ParentID,
	}

	if err := s.db.Create(category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return category, nil
}

func (s *CategoryService) UpdateCategory(id uuid.UUID, req *UpdateCategoryRequest) (*models.Category, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, NewBadRequestError("validation failed: %v", err)
	}

	category, err := s.getCategory(s.db, id)
	if err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		if _, err := s.getCategory(s.db, *req.ParentID); err != nil {
			return nil, err
		}

		// Re-parenting under the category's own subtree would break the
		// tree invariant.
		subtree, err := s.DescendantIDs(id)
		if err != nil {
			return nil, err
		}
		for _, subID := range subtree {
			if subID == *req.ParentID {
				return nil, NewBadRequestError("category %s cannot be moved under its own descendant %s", id, *req.ParentID)
			}
		}
	}

	category.Name = req.Name
	category.ParentID = req.ParentID

	if err := s.db.Save(category).Error; err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return category, nil
}

// DeleteCategory cascades: the whole subtree rooted at id is removed and
// products are detached from every removed category.
func (s *CategoryService) DeleteCategory(id uuid.UUID) error {
	if _, err := s.getCategory(s.db, id); err != nil {
		return err
	}

	ids, err := s.DescendantIDs(id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM product_categories WHERE category_id IN ?", ids).Error; err != nil {
			return fmt.Errorf("failed to detach products: %w", err)
		}
		if err := tx.Where("id IN ?", ids).Delete(&models.Category{}).Error; err != nil {
			return fmt.Errorf("failed to delete category subtree: %w", err)
		}
		return nil
	})
}

// GetFullCategoryTree returns every root category with its nested
// children, assembled from a single query.
func (s *CategoryService) GetFullCategoryTree() ([]*CategoryTreeNode, error) {
	var categories []models.Category
	if err := s.db.Order("created_at, name").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	nodes := make(map[uuid.UUID]*CategoryTreeNode, len(categories))
	for _, c := range categories {
		nodes[c.ID] = &CategoryTreeNode{ID: c.ID, Name: c.Name, ParentID: c.ParentID}
	}

	var roots []*CategoryTreeNode
	for _, c := range categories {
		node := nodes[c.ID]
		if c.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[*c.ParentID]; ok {
			parent.Children = append(parent.Children, node)
		} else {
			// Orphaned by a concurrent delete; surface it as a root
			// rather than dropping it.
			roots = append(roots, node)
		}
	}

	return roots, nil
}

// GetCategorySubtree returns the tree rooted at the given category.
func (s *CategoryService) GetCategorySubtree(id uuid.UUID) (*CategoryTreeNode, error) {
	if _, err := s.getCategory(s.db, id); err != nil {
		return nil, err
	}

	roots, err := s.GetFullCategoryTree()
	if err != nil {
		return nil, err
	}

	var find func(nodes []*CategoryTreeNode) *CategoryTreeNode
	find = func(nodes []*CategoryTreeNode) *CategoryTreeNode {
		for _, n := range nodes {
			if n.ID == id {
				return n
			}
			if found := find(n.Children); found != nil {
				return found
			}
		}
		return nil
	}

	if node := find(roots); node != nil {
		return node, nil
	}
	return nil, NewNotFoundError("category", id)
}

// DescendantIDs resolves a category to the transitive closure of its
// descendant ids, the category itself included. A leaf resolves to just
// its own id; an unknown id resolves to an empty set.
func (s *CategoryService) DescendantIDs(id uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.Raw(`
		WITH RECURSIVE category_tree AS (
			SELECT id FROM categories WHERE id = ? AND deleted_at IS NULL
			UNION ALL
			SELECT c.id FROM categories c
			JOIN category_tree ct ON c.parent_id = ct.id
			WHERE c.deleted_at IS NULL
		)
		SELECT id FROM category_tree`, id).Scan(&ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve category subtree: %w", err)
	}
	return ids, nil
}

// GetProductsInCategory lists the products of a category and all of its
// subcategories, sorted.
func (s *CategoryService) GetProductsInCategory(id uuid.UUID, sortBy, sortOrder string) ([]models.Product, error) {
	ids, err := s.DescendantIDs(id)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, NewNotFoundError("category", id)
	}

	query := s.db.Model(&models.Product{}).
		Where("products.id IN (SELECT product_id FROM product_categories WHERE category_id IN ?)", ids).
		Preload("Categories")
	query = utils.ApplyProductSort(query, sortBy, sortOrder)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch category products: %w", err)
	}
	return products, nil
}

func (s *CategoryService) getCategory(tx *gorm.DB, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := tx.First(&category, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewNotFoundError("category", id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &category, nil
}
