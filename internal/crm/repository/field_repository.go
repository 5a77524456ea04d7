package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/alims/leadcrm/internal/crm/entity"
)

type FieldRepository struct {
	db *gorm.DB
}

func NewFieldRepository(db *gorm.DB) *FieldRepository {
	return &FieldRepository{db: db}
}

func (r *FieldRepository) Create(ctx context.Context, field *entity.CustomerField) error {
	return r.db.WithContext(ctx).Create(field).Error
}

func (r *FieldRepository) FindByID(ctx context.Context, id string) (*entity.CustomerField, error) {
	var field entity.CustomerField
	if err := r.db.WithContext(ctx).First(&field, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &field, nil
}

func (r *FieldRepository) FindByName(ctx context.Context, name string) (*entity.CustomerField, error) {
	var field entity.CustomerField
	if err := r.db.WithContext(ctx).First(&field, "name = ?", name).Error; err != nil {
		return nil, translateError(err)
	}
	return &field, nil
}

// FindAll custom fields, active ones only when activeOnly is set
func (r *FieldRepository) FindAll(ctx context.Context, activeOnly bool) ([]entity.CustomerField, error) {
	var fields []entity.CustomerField
	query := r.db.WithContext(ctx)
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	err := query.Order("created_at ASC").Find(&fields).Error
	return fields, err
}

func (r *FieldRepository) Update(ctx context.Context, field *entity.CustomerField) error {
	return r.db.WithContext(ctx).Save(field).Error
}

// Deactivate soft-hides a field, customer data keyed by it stays intact
func (r *FieldRepository) Deactivate(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Model(&entity.CustomerField{}).
		Where("id = ?", id).
		Update("active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
