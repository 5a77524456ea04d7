package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// Repositories bundle of all data access objects
type Repositories struct {
	User       *UserRepository
	Customer   *CustomerRepository
	Field      *FieldRepository
	Mapping    *MappingRepository
	FileImport *FileImportRepository
	Note       *NoteRepository
	Task       *TaskRepository
}

// NewRepositories wires every repository onto one gorm handle
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:       NewUserRepository(db),
		Customer:   NewCustomerRepository(db),
		Field:      NewFieldRepository(db),
		Mapping:    NewMappingRepository(db),
		FileImport: NewFileImportRepository(db),
		Note:       NewNoteRepository(db),
		Task:       NewTaskRepository(db),
	}
}

func translateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
