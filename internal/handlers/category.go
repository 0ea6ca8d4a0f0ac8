// internal/handlers/category.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kon/onlineshop/internal/services"
	"github.com/kon/onlineshop/internal/utils"
)

type CategoryHandler struct {
	categoryService *services.CategoryService
	productService  *services.ProductService
}

func NewCategoryHandler(categoryService *services.CategoryService, productService *services.ProductService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		productService:  productService,
	}
}

// GET /categories/tree
func (h *CategoryHandler) GetTree(c *gin.Context) {
	tree, err := h.categoryService.GetFullCategoryTree()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, tree)
}

// GET /categories/:id
func (h *CategoryHandler) GetSubtree(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	subtree, err := h.categoryService.GetCategorySubtree(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, subtree)
}

// GET /categories/:id/products
//
// Lists every product reachable from the category or any of its
// descendants, sorted by the requested field.
func (h *CategoryHandler) GetProducts(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	sortBy := c.DefaultQuery("sortBy", "name")
	sortOrder := c.DefaultQuery("sortOrder", "asc")

	products, err := h.categoryService.GetProductsInCategory(id, sortBy, sortOrder)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, products)
}

// GET /categories/:id/products/filter
//
// Same product set as GetProducts, narrowed by dynamic filter criteria
// (minPrice, maxPrice, minRating, attr_<id>) and paginated.
func (h *CategoryHandler) FilterProducts(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)

	filters := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		switch key {
		case "page", "limit", "sortBy", "sortOrder":
			continue
		}
		if len(values) > 0 {
			filters[key] = values[0]
		}
	}

	products, total, err := h.productService.SearchProducts(id, filters, params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	result := utils.CreatePaginationResult(products, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /admin/categories
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req services.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	category, err := h.categoryService.CreateCategory(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.CreatedResponse(c, category)
}

// PUT /admin/categories/:id
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	category, err := h.categoryService.UpdateCategory(id, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, category)
}

// DELETE /admin/categories/:id
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.categoryService.DeleteCategory(id); err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"deleted": id})
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name+" parameter", nil)
		return uuid.Nil, false
	}
	return id, true
}
