package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/alims/leadcrm/internal/crm/entity"
)

type FileImportRepository struct {
	db *gorm.DB
}

func NewFileImportRepository(db *gorm.DB) *FileImportRepository {
	return &FileImportRepository{db: db}
}

func (r *FileImportRepository) Create(ctx context.Context, record *entity.FileImport) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *FileImportRepository) FindByID(ctx context.Context, id string) (*entity.FileImport, error) {
	var record entity.FileImport
	err := r.db.WithContext(ctx).
		Preload("Mapping").
		Preload("Importer").
		First(&record, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &record, nil
}

func (r *FileImportRepository) FindAll(ctx context.Context, importedBy string, offset, limit int) ([]entity.FileImport, int64, error) {
	var records []entity.FileImport
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.FileImport{})
	if importedBy != "" {
		query = query.Where("imported_by = ?", importedBy)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Mapping").Preload("Importer").
		Order("imported_at DESC").
		Offset(offset).Limit(limit).
		Find(&records).Error
	return records, total, err
}

// Finalize writes the run counters once a run completes
func (r *FileImportRepository) Finalize(ctx context.Context, id string, total, successful, failed int) error {
	return r.db.WithContext(ctx).Model(&entity.FileImport{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_records":      total,
			"successful_records": successful,
			"failed_records":     failed,
		}).Error
}

// SetStorageKey records where the raw file landed in object storage
func (r *FileImportRepository) SetStorageKey(ctx context.Context, id, key string) error {
	return r.db.WithContext(ctx).Model(&entity.FileImport{}).
		Where("id = ?", id).
		Update("storage_key", key).Error
}

// Delete removes the audit record, used when a run aborts before finishing
func (r *FileImportRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.FileImport{}, "id = ?", id).Error
}
