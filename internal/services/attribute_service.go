// internal/services/attribute_service.go
package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kon/onlineshop/internal/models"
	"github.com/kon/onlineshop/internal/utils"
)

type AttributeService struct {
	db *gorm.DB
}

type CreateAttributeRequest struct {
	Name string               `json:"name" validate:"required,min=1,max=255"`
	Type models.AttributeType `json:"type" validate:"required"`
	Unit string               `json:"unit,omitempty" validate:"max=50"`
}

type UpdateAttributeRequest struct {
	Name string               `json:"name" validate:"required,min=1,max=255"`
	Type models.AttributeType `json:"type" validate:"required"`
	Unit string               `json:"unit,omitempty" validate:"max=50"`
}

func NewAttributeService(db *gorm.DB) *AttributeService {
	return &AttributeService{db: db}
}

func (s *AttributeService) CreateAttribute(req *CreateAttributeRequest) (*models.Attribute, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, NewBadRequestError("validation failed: %v", err)
	}
	if !req.Type.Valid() {
		return nil, NewBadRequestError("unknown attribute type %q", req.Type)
	}

	if err := s.checkNameConflict(req.Name, uuid.Nil); err != nil {
		return nil, err
	}

	attribute := &models.Attribute{
		Name: req.Name,
		Type: req.Type,
		Unit: req.Unit,
	}

	if err := s.db.Create(attribute).Error; err != nil {
		return nil, fmt.Errorf("failed to create attribute: %w", err)
	}

	return attribute, nil
}

func (s *AttributeService) GetAttribute(id uuid.UUID) (*models.Attribute, error) {
	var attribute models.Attribute
	if err := s.db.First(&attribute, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewNotFoundError("attribute", id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &attribute, nil
}

func (s *AttributeService) GetAllAttributes() ([]models.Attribute, error) {
	var attributes []models.Attribute
	if err := s.db.Order("name").Find(&attributes).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch attributes: %w", err)
	}
	return attributes, nil
}

func (s *AttributeService) UpdateAttribute(id uuid.UUID, req *UpdateAttributeRequest) (*models.Attribute, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, NewBadRequestError("validation failed: %v", err)
	}
	if !req.Type.Valid() {
		return nil, NewBadRequestError("unknown attribute type %q", req.Type)
	}

	attribute, err := s.GetAttribute(id)
	if err != nil {
		return nil, err
	}

	if err := s.checkNameConflict(req.Name, id); err != nil {
		return nil, err
	}

	attribute.Name = req.Name
	attribute.Type = req.Type
	attribute.Unit = req.Unit

	if err := s.db.Save(attribute).Error; err != nil {
		return nil, fmt.Errorf("failed to update attribute: %w", err)
	}

	return attribute, nil
}

// DeleteAttribute refuses to remove an attribute that products still
// carry values for. This is a safety gate, not a cascade.
func (s *AttributeService) DeleteAttribute(id uuid.UUID) error {
	if _, err := s.GetAttribute(id); err != nil {
		return err
	}

	var usageCount int64
	if err := s.db.Model(&models.ProductAttributeValue{}).
		Where("attribute_id = ?", id).
		Count(&usageCount).Error; err != nil {
		return fmt.Errorf("failed to check attribute usage: %w", err)
	}

	if usageCount > 0 {
		return NewConflictError("attribute %s is in use by %d products and cannot be deleted", id, usageCount)
	}

	// Hard delete: a soft-deleted row would keep holding the unique
	// name and block recreating the attribute.
	if err := s.db.Unscoped().Delete(&models.Attribute{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete attribute: %w", err)
	}
	return nil
}

// ValidateValue checks the lexical form of a raw value against the
// attribute's declared type. Boolean values are normalized to lowercase.
func (s *AttributeService) ValidateValue(attribute *models.Attribute, rawValue string) (string, error) {
	switch attribute.Type {
	case models.AttributeTypeString:
		return rawValue, nil
	case models.AttributeTypeNumber:
		if _, err := decimal.NewFromString(rawValue); err != nil {
			return "", NewBadRequestError("value %q is not a valid number for attribute %q", rawValue, attribute.Name)
		}
		return rawValue, nil
	case models.AttributeTypeBoolean:
		lowered := strings.ToLower(rawValue)
		if lowered != "true" && lowered != "false" {
			return "", NewBadRequestError("value %q is not a valid boolean for attribute %q", rawValue, attribute.Name)
		}
		return lowered, nil
	}
	return "", NewBadRequestError("unknown attribute type %q", attribute.Type)
}

func (s *AttributeService) checkNameConflict(name string, selfID uuid.UUID) error {
	var existing models.Attribute
	err := s.db.Where("LOWER(name) = ?", strings.ToLower(name)).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if existing.ID != selfID {
		return NewConflictError("attribute with name %q already exists", name)
	}
	return nil
}
