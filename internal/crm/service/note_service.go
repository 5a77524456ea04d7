package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/alims/leadcrm/internal/crm/entity"
	"github.com/alims/leadcrm/internal/crm/repository"
)

// NoteService free-form notes attached to customers
type NoteService struct {
	notes     *repository.NoteRepository
	customers *repository.CustomerRepository
}

func NewNoteService(notes *repository.NoteRepository, customers *repository.CustomerRepository) *NoteService {
	return &NoteService{notes: notes, customers: customers}
}

type CreateNoteRequest struct {
	Category string `json:"category"`
	Content  string `json:"content" binding:"required"`
	IsPinned bool   `json:"is_pinned"`
}

type UpdateNoteRequest struct {
	Category *string `json:"category"`
	Content  *string `json:"content"`
	IsPinned *bool   `json:"is_pinned"`
}

func (s *NoteService) Create(ctx context.Context, actor Actor, customerID string, req *CreateNoteRequest) (*entity.CustomerNote, error) {
	if err := s.checkCustomerAccess(ctx, actor, customerID); err != nil {
		return nil, err
	}

	category := req.Category
	if category == "" {
		category = entity.NoteCategoryGeneral
	}
	if !validNoteCategory(category) {
		return nil, ErrInvalidCategory
	}

	note := &entity.CustomerNote{
		ID:         uuid.New().String(),
		CustomerID: customerID,
		Category:   category,
		Content:    req.Content,
		CreatedBy:  actor.ID,
		IsPinned:   req.IsPinned,
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *NoteService) List(ctx context.Context, actor Actor, customerID, category string) ([]entity.CustomerNote, error) {
	if err := s.checkCustomerAccess(ctx, actor, customerID); err != nil {
		return nil, err
	}
	if category != "" && !validNoteCategory(category) {
		return nil, ErrInvalidCategory
	}
	return s.notes.FindByCustomer(ctx, customerID, category)
}

// Update edits a note. Only the author or a manager may touch it.
func (s *NoteService) Update(ctx context.Context, actor Actor, noteID string, req *UpdateNoteRequest) (*entity.CustomerNote, error) {
	note, err := s.notes.FindByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if !actor.IsManager() && note.CreatedBy != actor.ID {
		return nil, ErrPermissionDenied
	}

	if req.Category != nil {
		if !validNoteCategory(*req.Category) {
			return nil, ErrInvalidCategory
		}
		note.Category = *req.Category
	}
	if req.Content != nil {
		note.Content = *req.Content
	}
	if req.IsPinned != nil {
		note.IsPinned = *req.IsPinned
	}

	if err := s.notes.Update(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *NoteService) Delete(ctx context.Context, actor Actor, noteID string) error {
	note, err := s.notes.FindByID(ctx, noteID)
	if err != nil {
		return err
	}
	if !actor.IsManager() && note.CreatedBy != actor.ID {
		return ErrPermissionDenied
	}
	return s.notes.Delete(ctx, noteID)
}

func (s *NoteService) checkCustomerAccess(ctx context.Context, actor Actor, customerID string) error {
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return err
	}
	if actor.IsManager() {
		return nil
	}
	if customer.AssignedTo != nil && *customer.AssignedTo == actor.ID {
		return nil
	}
	return ErrPermissionDenied
}

func validNoteCategory(category string) bool {
	for _, c := range entity.NoteCategories {
		if c == category {
			return true
		}
	}
	return false
}
