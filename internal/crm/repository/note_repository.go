package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/alims/leadcrm/internal/crm/entity"
)

type NoteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) Create(ctx context.Context, note *entity.CustomerNote) error {
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *NoteRepository) FindByID(ctx context.Context, id string) (*entity.CustomerNote, error) {
	var note entity.CustomerNote
	if err := r.db.WithContext(ctx).Preload("Author").First(&note, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &note, nil
}

// FindByCustomer notes for one customer, pinned first then newest first
func (r *NoteRepository) FindByCustomer(ctx context.Context, customerID, category string) ([]entity.CustomerNote, error) {
	var notes []entity.CustomerNote
	query := r.db.WithContext(ctx).
		Preload("Author").
		Where("customer_id = ?", customerID)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	err := query.Order("is_pinned DESC, created_at DESC").Find(&notes).Error
	return notes, err
}

func (r *NoteRepository) Update(ctx context.Context, note *entity.CustomerNote) error {
	return r.db.WithContext(ctx).Save(note).Error
}

func (r *NoteRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&entity.CustomerNote{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
