package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alims/leadcrm/internal/config"
	"github.com/alims/leadcrm/internal/crm/entity"
	"github.com/alims/leadcrm/internal/crm/repository"
)

// maxRowErrors caps the per-row failure detail kept in a result
const maxRowErrors = 50

// ImportService runs the spreadsheet-to-customer pipeline
type ImportService struct {
	customers *repository.CustomerRepository
	imports   *repository.FileImportRepository
	mapping   *MappingService
	catalog   *CatalogService
	storage   *StorageService
	cfg       config.ImportConfig
	logger    *zap.Logger
}

func NewImportService(
	customers *repository.CustomerRepository,
	imports *repository.FileImportRepository,
	mapping *MappingService,
	catalog *CatalogService,
	storage *StorageService,
	cfg config.ImportConfig,
	logger *zap.Logger,
) *ImportService {
	return &ImportService{
		customers: customers,
		imports:   imports,
		mapping:   mapping,
		catalog:   catalog,
		storage:   storage,
		cfg:       cfg,
		logger:    logger,
	}
}

// RowError why one data row was rejected. Row numbers are 1-based counting
// the header, matching what the user sees in a spreadsheet editor.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportResult outcome of one run
type ImportResult struct {
	ImportID   string     `json:"import_id"`
	Total      int        `json:"total"`
	Successful int        `json:"successful"`
	Failed     int        `json:"failed"`
	RowErrors  []RowError `json:"row_errors,omitempty"`
}

// Run imports one uploaded file. Row failures are collected, not fatal; the
// run itself fails only on malformed files, unusable mappings, or storage
// errors, in which case the audit record is removed.
func (s *ImportService) Run(ctx context.Context, ownerID, fileName string, data []byte, mappingID *string) (*ImportResult, error) {
	if s.cfg.MaxFileBytes > 0 && int64(len(data)) > s.cfg.MaxFileBytes {
		return nil, fmt.Errorf("file exceeds the %d byte limit", s.cfg.MaxFileBytes)
	}

	table, err := ParseTabular(fileName, data, s.cfg.MaxRows)
	if err != nil {
		return nil, err
	}

	fields, resolvedMappingID, err := s.mapping.Resolve(ctx, ownerID, mappingID)
	if err != nil {
		return nil, err
	}

	headerIdx := table.HeaderIndex()
	if err := checkRequiredColumns(fields, headerIdx); err != nil {
		return nil, err
	}

	customFields, err := s.catalog.ActiveFieldsByName(ctx)
	if err != nil {
		return nil, err
	}

	record := &entity.FileImport{
		ID:         uuid.New().String(),
		FileName:   fileName,
		MappingID:  resolvedMappingID,
		ImportedBy: ownerID,
		ImportedAt: time.Now(),
	}
	if err := s.imports.Create(ctx, record); err != nil {
		return nil, err
	}

	result := &ImportResult{ImportID: record.ID, Total: len(table.Rows)}
	for i, row := range table.Rows {
		rowNum := i + 2
		if err := s.importRow(ctx, ownerID, fields, customFields, headerIdx, row); err != nil {
			result.Failed++
			if len(result.RowErrors) < maxRowErrors {
				result.RowErrors = append(result.RowErrors, RowError{Row: rowNum, Reason: err.Error()})
			}
			continue
		}
		result.Successful++
	}

	if s.storage != nil {
		key := fmt.Sprintf("imports/%s/%s%s", record.ID, record.ID, strings.ToLower(filepath.Ext(fileName)))
		if _, err := s.storage.Upload(ctx, key, data, contentTypeFor(fileName)); err != nil {
			// customers already written stay; only the audit record is rolled back
			if delErr := s.imports.Delete(ctx, record.ID); delErr != nil {
				s.logger.Error("Failed to remove import record after upload failure",
					zap.String("import_id", record.ID), zap.Error(delErr))
			}
			return nil, fmt.Errorf("failed to store import file: %w", err)
		}
		if err := s.imports.SetStorageKey(ctx, record.ID, key); err != nil {
			return nil, err
		}
	}

	if err := s.imports.Finalize(ctx, record.ID, result.Total, result.Successful, result.Failed); err != nil {
		return nil, err
	}

	s.logger.Info("Import finished",
		zap.String("import_id", record.ID),
		zap.String("file", fileName),
		zap.Int("total", result.Total),
		zap.Int("successful", result.Successful),
		zap.Int("failed", result.Failed))
	return result, nil
}

// checkRequiredColumns fails fast before any row is written. A required
// binding is satisfied by a present column or a configured default.
func checkRequiredColumns(fields []entity.MappingField, headerIdx map[string]int) error {
	for _, f := range fields {
		if !f.IsRequired {
			continue
		}
		if _, ok := headerIdx[strings.TrimSpace(f.CSVColumn)]; ok {
			continue
		}
		if f.DefaultValue != "" {
			continue
		}
		return fmt.Errorf("%w: %s", ErrMissingRequiredColumn, f.CSVColumn)
	}
	return nil
}

func (s *ImportService) importRow(
	ctx context.Context,
	ownerID string,
	fields []entity.MappingField,
	customFields map[string]*entity.CustomerField,
	headerIdx map[string]int,
	row []string,
) error {
	customer := &entity.Customer{
		ID:         uuid.New().String(),
		CustomData: entity.JSONB{},
	}

	for _, f := range fields {
		value := ""
		if idx, ok := headerIdx[strings.TrimSpace(f.CSVColumn)]; ok {
			value = strings.TrimSpace(row[idx])
		}
		if value == "" {
			value = f.DefaultValue
		}
		if value == "" {
			if f.IsRequired {
				return fmt.Errorf("required column %s is empty", f.CSVColumn)
			}
			continue
		}

		switch f.FieldType {
		case entity.MappingFieldBase:
			if err := setBaseField(customer, f.FieldName, value); err != nil {
				return err
			}
		case entity.MappingFieldCustom:
			field, ok := customFields[f.FieldName]
			if !ok {
				return fmt.Errorf("custom field %s no longer exists", f.FieldName)
			}
			coerced, err := ValidateValue(field, value)
			if err != nil {
				return err
			}
			if coerced != nil {
				customer.CustomData[field.Name] = coerced
			}
		}
	}

	if customer.Name == "" {
		return fmt.Errorf("name is empty")
	}
	if customer.PhoneNumber == "" {
		return fmt.Errorf("phone_number is empty")
	}
	if len(customer.CustomData) == 0 {
		customer.CustomData = nil
	}

	_, err := s.customers.UpsertByPhone(ctx, customer)
	return err
}

func setBaseField(customer *entity.Customer, name, value string) error {
	switch name {
	case "name":
		customer.Name = value
	case "phone_number":
		customer.PhoneNumber = normalizePhone(value)
	case "email":
		customer.Email = value
	case "address":
		customer.Address = value
	case "area":
		customer.Area = value
	case "date":
		t, err := ParseFlexibleDate(value)
		if err != nil {
			return err
		}
		customer.Date = &t
	case "remark":
		customer.Remark = value
	case "notes":
		customer.Notes = value
	default:
		return fmt.Errorf("unknown base field %s", name)
	}
	return nil
}

// normalizePhone strips separators so the same number always hits the same
// unique index entry
func normalizePhone(raw string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == '+' {
			return r
		}
		return -1
	}, raw)
}

func contentTypeFor(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return "text/csv"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// Get one import audit record
func (s *ImportService) Get(ctx context.Context, id string) (*entity.FileImport, error) {
	return s.imports.FindByID(ctx, id)
}

// List import history, optionally scoped to one importer
func (s *ImportService) List(ctx context.Context, importedBy string, offset, limit int) ([]entity.FileImport, int64, error) {
	return s.imports.FindAll(ctx, importedBy, offset, limit)
}

// FileURL presigned download link for the stored raw file
func (s *ImportService) FileURL(ctx context.Context, id string) (string, error) {
	record, err := s.imports.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if record.StorageKey == "" || s.storage == nil {
		return "", repository.ErrNotFound
	}
	return s.storage.PresignedURL(ctx, record.StorageKey, 15*time.Minute)
}
