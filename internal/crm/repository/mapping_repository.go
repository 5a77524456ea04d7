package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/alims/leadcrm/internal/crm/entity"
)

type MappingRepository struct {
	db *gorm.DB
}

func NewMappingRepository(db *gorm.DB) *MappingRepository {
	return &MappingRepository{db: db}
}

// Create stores the mapping and its fields. When IsDefault is set, the
// owner's previous default is cleared in the same transaction.
func (r *MappingRepository) Create(ctx context.Context, mapping *entity.ColumnMapping) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if mapping.IsDefault {
			if err := clearDefault(tx, mapping.CreatedBy); err != nil {
				return err
			}
		}
		return tx.Create(mapping).Error
	})
}

func (r *MappingRepository) FindByID(ctx context.Context, id string) (*entity.ColumnMapping, error) {
	var mapping entity.ColumnMapping
	err := r.db.WithContext(ctx).
		Preload("Fields", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		First(&mapping, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &mapping, nil
}

func (r *MappingRepository) FindAll(ctx context.Context, ownerID string) ([]entity.ColumnMapping, error) {
	var mappings []entity.ColumnMapping
	query := r.db.WithContext(ctx).Preload("Fields", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	})
	if ownerID != "" {
		query = query.Where("created_by = ?", ownerID)
	}
	err := query.Order("created_at DESC").Find(&mappings).Error
	return mappings, err
}

// FindDefault the owner's default mapping, ErrNotFound when none is set
func (r *MappingRepository) FindDefault(ctx context.Context, ownerID string) (*entity.ColumnMapping, error) {
	var mapping entity.ColumnMapping
	err := r.db.WithContext(ctx).
		Preload("Fields", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		First(&mapping, "created_by = ? AND is_default = ?", ownerID, true).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &mapping, nil
}

func (r *MappingRepository) Update(ctx context.Context, mapping *entity.ColumnMapping) error {
	return r.db.WithContext(ctx).Omit("Fields").Save(mapping).Error
}

// ReplaceFields swaps the mapping's field set atomically, delete then recreate
func (r *MappingRepository) ReplaceFields(ctx context.Context, mappingID string, fields []entity.MappingField) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("mapping_id = ?", mappingID).
			Delete(&entity.MappingField{}).Error; err != nil {
			return err
		}
		if len(fields) == 0 {
			return nil
		}
		for i := range fields {
			fields[i].MappingID = mappingID
		}
		return tx.Create(&fields).Error
	})
}

// SetDefault marks one mapping as the owner's default, clearing any other
func (r *MappingRepository) SetDefault(ctx context.Context, mappingID, ownerID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := clearDefault(tx, ownerID); err != nil {
			return err
		}
		result := tx.Model(&entity.ColumnMapping{}).
			Where("id = ? AND created_by = ?", mappingID, ownerID).
			Update("is_default", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *MappingRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("mapping_id = ?", id).
			Delete(&entity.MappingField{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&entity.ColumnMapping{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func clearDefault(tx *gorm.DB, ownerID string) error {
	return tx.Model(&entity.ColumnMapping{}).
		Where("created_by = ? AND is_default = ?", ownerID, true).
		Update("is_default", false).Error
}
