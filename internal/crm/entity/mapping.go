package entity

import (
	"time"
)

// Mapping field targets
const (
	MappingFieldBase   = "base"
	MappingFieldCustom = "custom"
)

// ColumnMapping named, reusable spreadsheet-column-to-field configuration.
// At most one mapping per owner carries IsDefault.
type ColumnMapping struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Name        string    `json:"name" gorm:"size:128;not null"`
	Description string    `json:"description" gorm:"type:text"`
	IsDefault   bool      `json:"is_default" gorm:"not null;default:false;index"`
	CreatedBy   string    `json:"created_by" gorm:"size:36;not null;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Fields []MappingField `json:"fields,omitempty" gorm:"foreignKey:MappingID"`
}

func (ColumnMapping) TableName() string {
	return "column_mappings"
}

// MappingField one spreadsheet column bound to a base attribute or a
// CustomerField name. (mapping_id, csv_column) is unique.
type MappingField struct {
	ID           string `json:"id" gorm:"primaryKey;size:36"`
	MappingID    string `json:"mapping_id" gorm:"size:36;not null;uniqueIndex:uq_mapping_column"`
	CSVColumn    string `json:"csv_column" gorm:"size:255;not null;uniqueIndex:uq_mapping_column"`
	FieldType    string `json:"field_type" gorm:"size:16;not null;default:base"`
	FieldName    string `json:"field_name" gorm:"size:64;not null"`
	IsRequired   bool   `json:"is_required" gorm:"not null;default:false"`
	DefaultValue string `json:"default_value" gorm:"size:255"`
	SortOrder    int    `json:"sort_order" gorm:"not null;default:0"`
}

func (MappingField) TableName() string {
	return "mapping_fields"
}

// FileImport audit record of one import run. Created with zero counters at
// run start, finalized at run end, deleted if the run fails before finishing.
type FileImport struct {
	ID                string    `json:"id" gorm:"primaryKey;size:36"`
	FileName          string    `json:"file_name" gorm:"size:255;not null"`
	StorageKey        string    `json:"storage_key" gorm:"size:512"`
	MappingID         *string   `json:"mapping_id" gorm:"size:36;index"`
	ImportedBy        string    `json:"imported_by" gorm:"size:36;not null;index"`
	ImportedAt        time.Time `json:"imported_at" gorm:"index"`
	TotalRecords      int       `json:"total_records" gorm:"not null;default:0"`
	SuccessfulRecords int       `json:"successful_records" gorm:"not null;default:0"`
	FailedRecords     int       `json:"failed_records" gorm:"not null;default:0"`

	Mapping  *ColumnMapping `json:"mapping,omitempty" gorm:"foreignKey:MappingID"`
	Importer *User          `json:"importer,omitempty" gorm:"foreignKey:ImportedBy"`
}

func (FileImport) TableName() string {
	return "file_imports"
}
