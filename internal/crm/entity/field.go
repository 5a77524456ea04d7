package entity

import (
	"strings"
	"time"
)

// Custom field types
const (
	FieldTypeText    = "text"
	FieldTypeNumber  = "number"
	FieldTypeEmail   = "email"
	FieldTypePhone   = "phone"
	FieldTypeDate    = "date"
	FieldTypeBoolean = "boolean"
	FieldTypeSelect  = "select"
)

var FieldTypes = []string{
	FieldTypeText,
	FieldTypeNumber,
	FieldTypeEmail,
	FieldTypePhone,
	FieldTypeDate,
	FieldTypeBoolean,
	FieldTypeSelect,
}

func IsValidFieldType(t string) bool {
	for _, ft := range FieldTypes {
		if ft == t {
			return true
		}
	}
	return false
}

// CustomerField user-defined dynamic field. Values live in Customer.CustomData
// keyed by Name; deactivating hides the field from mapping UIs without
// touching historical data.
type CustomerField struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	Name         string    `json:"name" gorm:"size:64;not null;uniqueIndex"`
	Label        string    `json:"label" gorm:"size:128;not null"`
	FieldType    string    `json:"field_type" gorm:"size:16;not null;default:text"`
	Required     bool      `json:"required" gorm:"not null;default:false"`
	DefaultValue string    `json:"default_value" gorm:"size:255"`
	Options      string    `json:"options" gorm:"size:1000"` // comma list, select only
	Active       bool      `json:"active" gorm:"not null;default:true;index"`
	CreatedBy    string    `json:"created_by" gorm:"size:36"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (CustomerField) TableName() string {
	return "customer_fields"
}

// OptionList parsed select options
func (f *CustomerField) OptionList() []string {
	if f.Options == "" {
		return nil
	}
	parts := strings.Split(f.Options, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
