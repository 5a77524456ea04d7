package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alims/leadcrm/internal/crm/entity"
	"github.com/alims/leadcrm/internal/crm/repository"
)

// BaseField one built-in customer attribute usable as a mapping target
type BaseField struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

// BaseFields the fixed customer attributes spreadsheets can map onto.
// name and phone_number are the only hard requirements of an import.
var BaseFields = []BaseField{
	{Name: "name", Label: "Name", Required: true},
	{Name: "phone_number", Label: "Phone Number", Required: true},
	{Name: "email", Label: "Email"},
	{Name: "address", Label: "Address"},
	{Name: "area", Label: "Area"},
	{Name: "date", Label: "Date"},
	{Name: "remark", Label: "Remark"},
	{Name: "notes", Label: "Notes"},
}

// IsBaseField reports whether name is a built-in mapping target
func IsBaseField(name string) bool {
	for _, f := range BaseFields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// CatalogService owns the field catalog, built-in attributes plus
// user-defined custom fields.
type CatalogService struct {
	fields *repository.FieldRepository
}

func NewCatalogService(fields *repository.FieldRepository) *CatalogService {
	return &CatalogService{fields: fields}
}

type CreateFieldRequest struct {
	Name         string `json:"name" binding:"required,max=64"`
	Label        string `json:"label" binding:"required,max=128"`
	FieldType    string `json:"field_type"`
	Required     bool   `json:"required"`
	DefaultValue string `json:"default_value"`
	Options      string `json:"options"`
}

type UpdateFieldRequest struct {
	Label        *string `json:"label"`
	Required     *bool   `json:"required"`
	DefaultValue *string `json:"default_value"`
	Options      *string `json:"options"`
	Active       *bool   `json:"active"`
}

func (s *CatalogService) CreateField(ctx context.Context, creatorID string, req *CreateFieldRequest) (*entity.CustomerField, error) {
	if req.FieldType == "" {
		req.FieldType = entity.FieldTypeText
	}
	if !entity.IsValidFieldType(req.FieldType) {
		return nil, ErrInvalidFieldType
	}
	name := strings.ToLower(strings.TrimSpace(req.Name))
	if IsBaseField(name) {
		return nil, fmt.Errorf("field name %q collides with a built-in attribute", name)
	}

	field := &entity.CustomerField{
		ID:           uuid.New().String(),
		Name:         name,
		Label:        req.Label,
		FieldType:    req.FieldType,
		Required:     req.Required,
		DefaultValue: req.DefaultValue,
		Options:      req.Options,
		Active:       true,
		CreatedBy:    creatorID,
	}
	if err := s.fields.Create(ctx, field); err != nil {
		return nil, err
	}
	return field, nil
}

func (s *CatalogService) GetField(ctx context.Context, id string) (*entity.CustomerField, error) {
	return s.fields.FindByID(ctx, id)
}

func (s *CatalogService) ListFields(ctx context.Context, activeOnly bool) ([]entity.CustomerField, error) {
	return s.fields.FindAll(ctx, activeOnly)
}

func (s *CatalogService) UpdateField(ctx context.Context, id string, req *UpdateFieldRequest) (*entity.CustomerField, error) {
	field, err := s.fields.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Label != nil {
		field.Label = *req.Label
	}
	if req.Required != nil {
		field.Required = *req.Required
	}
	if req.DefaultValue != nil {
		field.DefaultValue = *req.DefaultValue
	}
	if req.Options != nil {
		field.Options = *req.Options
	}
	if req.Active != nil {
		field.Active = *req.Active
	}

	if err := s.fields.Update(ctx, field); err != nil {
		return nil, err
	}
	return field, nil
}

func (s *CatalogService) DeactivateField(ctx context.Context, id string) error {
	return s.fields.Deactivate(ctx, id)
}

// ActiveFieldsByName active custom fields keyed by name, the import
// pipeline's validation lookup
func (s *CatalogService) ActiveFieldsByName(ctx context.Context) (map[string]*entity.CustomerField, error) {
	fields, err := s.fields.FindAll(ctx, true)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*entity.CustomerField, len(fields))
	for i := range fields {
		byName[fields[i].Name] = &fields[i]
	}
	return byName, nil
}

// ValidateValue coerces a raw cell value to the field's type. The returned
// value is what gets stored in the customer's custom data.
func ValidateValue(field *entity.CustomerField, raw string) (interface{}, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if field.Required {
			return nil, fmt.Errorf("field %s is required", field.Name)
		}
		return nil, nil
	}

	switch field.FieldType {
	case entity.FieldTypeNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("field %s: %q is not a number", field.Name, raw)
		}
		return n, nil
	case entity.FieldTypeEmail:
		if !strings.Contains(raw, "@") || strings.Contains(raw, " ") {
			return nil, fmt.Errorf("field %s: %q is not a valid email", field.Name, raw)
		}
		return raw, nil
	case entity.FieldTypePhone:
		cleaned := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' || r == '+' {
				return r
			}
			return -1
		}, raw)
		if len(cleaned) < 5 {
			return nil, fmt.Errorf("field %s: %q is not a valid phone number", field.Name, raw)
		}
		return cleaned, nil
	case entity.FieldTypeDate:
		t, err := ParseFlexibleDate(raw)
		if err != nil {
			return nil, fmt.Errorf("field %s: %q is not a valid date", field.Name, raw)
		}
		return t.Format("2006-01-02"), nil
	case entity.FieldTypeBoolean:
		switch strings.ToLower(raw) {
		case "true", "yes", "1", "y":
			return true, nil
		case "false", "no", "0", "n":
			return false, nil
		}
		return nil, fmt.Errorf("field %s: %q is not a boolean", field.Name, raw)
	case entity.FieldTypeSelect:
		for _, opt := range field.OptionList() {
			if strings.EqualFold(opt, raw) {
				return opt, nil
			}
		}
		return nil, fmt.Errorf("field %s: %q is not one of the allowed options", field.Name, raw)
	default:
		return raw, nil
	}
}

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"2006/01/02",
	"02-01-2006",
	"Jan 2, 2006",
	time.RFC3339,
}

// ParseFlexibleDate tries the date layouts spreadsheets commonly use
func ParseFlexibleDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}
