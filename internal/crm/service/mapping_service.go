package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/alims/leadcrm/internal/crm/entity"
	"github.com/alims/leadcrm/internal/crm/repository"
)

// MappingService owns column mappings and resolves which one an import uses
type MappingService struct {
	mappings *repository.MappingRepository
	catalog  *CatalogService
}

func NewMappingService(mappings *repository.MappingRepository, catalog *CatalogService) *MappingService {
	return &MappingService{mappings: mappings, catalog: catalog}
}

type MappingFieldRequest struct {
	CSVColumn    string `json:"csv_column" binding:"required,max=255"`
	FieldType    string `json:"field_type"`
	FieldName    string `json:"field_name" binding:"required,max=64"`
	IsRequired   bool   `json:"is_required"`
	DefaultValue string `json:"default_value"`
	SortOrder    int    `json:"sort_order"`
}

type CreateMappingRequest struct {
	Name        string                `json:"name" binding:"required,max=128"`
	Description string                `json:"description"`
	IsDefault   bool                  `json:"is_default"`
	Fields      []MappingFieldRequest `json:"fields" binding:"required,min=1,dive"`
}

type UpdateMappingRequest struct {
	Name        *string               `json:"name"`
	Description *string               `json:"description"`
	Fields      []MappingFieldRequest `json:"fields"`
}

func (s *MappingService) Create(ctx context.Context, ownerID string, req *CreateMappingRequest) (*entity.ColumnMapping, error) {
	fields, err := s.buildFields(ctx, req.Fields)
	if err != nil {
		return nil, err
	}

	mapping := &entity.ColumnMapping{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		IsDefault:   req.IsDefault,
		CreatedBy:   ownerID,
		Fields:      fields,
	}
	if err := s.mappings.Create(ctx, mapping); err != nil {
		return nil, err
	}
	return mapping, nil
}

func (s *MappingService) Get(ctx context.Context, id string) (*entity.ColumnMapping, error) {
	return s.mappings.FindByID(ctx, id)
}

func (s *MappingService) List(ctx context.Context, ownerID string) ([]entity.ColumnMapping, error) {
	return s.mappings.FindAll(ctx, ownerID)
}

// Update edits mapping metadata. When Fields is present the whole field set
// is replaced in one transaction.
func (s *MappingService) Update(ctx context.Context, id, ownerID string, req *UpdateMappingRequest) (*entity.ColumnMapping, error) {
	mapping, err := s.mappings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mapping.CreatedBy != ownerID {
		return nil, ErrPermissionDenied
	}

	if req.Name != nil {
		mapping.Name = *req.Name
	}
	if req.Description != nil {
		mapping.Description = *req.Description
	}
	if err := s.mappings.Update(ctx, mapping); err != nil {
		return nil, err
	}

	if req.Fields != nil {
		fields, err := s.buildFields(ctx, req.Fields)
		if err != nil {
			return nil, err
		}
		if err := s.mappings.ReplaceFields(ctx, id, fields); err != nil {
			return nil, err
		}
	}

	return s.mappings.FindByID(ctx, id)
}

func (s *MappingService) SetDefault(ctx context.Context, id, ownerID string) error {
	return s.mappings.SetDefault(ctx, id, ownerID)
}

func (s *MappingService) Delete(ctx context.Context, id, ownerID string) error {
	mapping, err := s.mappings.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if mapping.CreatedBy != ownerID {
		return ErrPermissionDenied
	}
	return s.mappings.Delete(ctx, id)
}

// Resolve picks the mapping an import run uses: the explicit one when given,
// otherwise the owner's default, otherwise the built-in legacy layout.
// A resolved mapping with zero fields is an error.
func (s *MappingService) Resolve(ctx context.Context, ownerID string, mappingID *string) ([]entity.MappingField, *string, error) {
	if mappingID != nil && *mappingID != "" {
		mapping, err := s.mappings.FindByID(ctx, *mappingID)
		if err != nil {
			return nil, nil, err
		}
		if mapping.CreatedBy != ownerID {
			return nil, nil, ErrPermissionDenied
		}
		if len(mapping.Fields) == 0 {
			return nil, nil, ErrMissingMapping
		}
		return mapping.Fields, &mapping.ID, nil
	}

	mapping, err := s.mappings.FindDefault(ctx, ownerID)
	if err == nil {
		if len(mapping.Fields) == 0 {
			return nil, nil, ErrMissingMapping
		}
		return mapping.Fields, &mapping.ID, nil
	}
	if err != repository.ErrNotFound {
		return nil, nil, err
	}

	return legacyMappingFields(), nil, nil
}

// legacyMappingFields the built-in layout used before configurable mappings
// existed. Files with these exact headers import with no setup.
func legacyMappingFields() []entity.MappingField {
	return []entity.MappingField{
		{CSVColumn: "name", FieldType: entity.MappingFieldBase, FieldName: "name", IsRequired: true, SortOrder: 0},
		{CSVColumn: "phone_number", FieldType: entity.MappingFieldBase, FieldName: "phone_number", IsRequired: true, SortOrder: 1},
		{CSVColumn: "email", FieldType: entity.MappingFieldBase, FieldName: "email", SortOrder: 2},
		{CSVColumn: "address", FieldType: entity.MappingFieldBase, FieldName: "address", SortOrder: 3},
		{CSVColumn: "notes", FieldType: entity.MappingFieldBase, FieldName: "notes", SortOrder: 4},
	}
}

// buildFields validates requested bindings against the field catalog
func (s *MappingService) buildFields(ctx context.Context, reqs []MappingFieldRequest) ([]entity.MappingField, error) {
	customFields, err := s.catalog.ActiveFieldsByName(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(reqs))
	fields := make([]entity.MappingField, 0, len(reqs))
	for i, req := range reqs {
		column := strings.TrimSpace(req.CSVColumn)
		if column == "" {
			return nil, fmt.Errorf("field %d: csv_column is empty", i)
		}
		if seen[column] {
			return nil, fmt.Errorf("column %q is mapped twice", column)
		}
		seen[column] = true

		fieldType := req.FieldType
		if fieldType == "" {
			fieldType = entity.MappingFieldBase
		}
		name := strings.ToLower(strings.TrimSpace(req.FieldName))

		switch fieldType {
		case entity.MappingFieldBase:
			if !IsBaseField(name) {
				return nil, fmt.Errorf("unknown base field %q", name)
			}
		case entity.MappingFieldCustom:
			if _, ok := customFields[name]; !ok {
				return nil, fmt.Errorf("unknown or inactive custom field %q", name)
			}
		default:
			return nil, fmt.Errorf("invalid field type %q", fieldType)
		}

		sortOrder := req.SortOrder
		if sortOrder == 0 {
			sortOrder = i
		}
		fields = append(fields, entity.MappingField{
			ID:           uuid.New().String(),
			CSVColumn:    column,
			FieldType:    fieldType,
			FieldName:    name,
			IsRequired:   req.IsRequired,
			DefaultValue: req.DefaultValue,
			SortOrder:    sortOrder,
		})
	}
	return fields, nil
}
