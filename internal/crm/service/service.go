package service

import (
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/alims/leadcrm/internal/config"
	"github.com/alims/leadcrm/internal/crm/repository"
)

// Sentinel errors surfaced to handlers
var (
	ErrUnsupportedFormat     = errors.New("unsupported file format")
	ErrMissingMapping        = errors.New("mapping has no fields configured")
	ErrMissingRequiredColumn = errors.New("required column missing from file")
	ErrInvalidStatus         = errors.New("invalid customer status")
	ErrInvalidCategory       = errors.New("invalid note category")
	ErrInvalidFieldType      = errors.New("invalid field type")
	ErrPermissionDenied      = errors.New("permission denied")
	ErrNoUnassignedCustomers = errors.New("no unassigned customers available")
	ErrNotCounsellor         = errors.New("assignee is not an active counsellor")
	ErrUsernameTaken         = errors.New("username already taken")
	ErrEmailTaken            = errors.New("email already registered")
	ErrInvalidCredentials    = errors.New("invalid username or password")
	ErrPhoneTaken            = errors.New("phone number already registered")
)

// Services bundle handed to the handler layer
type Services struct {
	Auth      *AuthService
	Customer  *CustomerService
	Catalog   *CatalogService
	Mapping   *MappingService
	Import    *ImportService
	Note      *NoteService
	Task      *TaskService
	Dashboard *DashboardService
	Storage   *StorageService
}

// NewServices wires all services. redisClient and storage may be nil;
// dependent features degrade instead of failing startup.
func NewServices(repos *repository.Repositories, cfg *config.Config, redisClient *redis.Client, storage *StorageService, logger *zap.Logger) *Services {
	catalog := NewCatalogService(repos.Field)
	mapping := NewMappingService(repos.Mapping, catalog)
	return &Services{
		Auth:      NewAuthService(repos.User, cfg.JWT),
		Customer:  NewCustomerService(repos.Customer, repos.User),
		Catalog:   catalog,
		Mapping:   mapping,
		Import:    NewImportService(repos.Customer, repos.FileImport, mapping, catalog, storage, cfg.Import, logger),
		Note:      NewNoteService(repos.Note, repos.Customer),
		Task:      NewTaskService(repos.Task, repos.Customer),
		Dashboard: NewDashboardService(repos.Customer, repos.Task, repos.User, redisClient, logger),
		Storage:   storage,
	}
}
