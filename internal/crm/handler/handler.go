package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/alims/leadcrm/internal/crm/repository"
	"github.com/alims/leadcrm/internal/crm/service"
)

// Response the uniform envelope every endpoint returns
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PagedData list payload with paging info
type PagedData struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// Handlers bundle registered onto the router
type Handlers struct {
	Auth      *AuthHandler
	Customer  *CustomerHandler
	Field     *FieldHandler
	Mapping   *MappingHandler
	Import    *ImportHandler
	Note      *NoteHandler
	Task      *TaskHandler
	Dashboard *DashboardHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Auth:      NewAuthHandler(services.Auth),
		Customer:  NewCustomerHandler(services.Customer),
		Field:     NewFieldHandler(services.Catalog),
		Mapping:   NewMappingHandler(services.Mapping),
		Import:    NewImportHandler(services.Import),
		Note:      NewNoteHandler(services.Note),
		Task:      NewTaskHandler(services.Task),
		Dashboard: NewDashboardHandler(services.Dashboard),
	}
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: 0, Message: "created", Data: data})
}

func Paged(c *gin.Context, items interface{}, total int64, page, pageSize int) {
	Success(c, PagedData{Items: items, Total: total, Page: page, PageSize: pageSize})
}

func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{Code: 40000, Message: message})
}

func NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, Response{Code: 40400, Message: message})
}

func Forbidden(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, Response{Code: 40300, Message: message})
}

func Conflict(c *gin.Context, message string) {
	c.JSON(http.StatusConflict, Response{Code: 40900, Message: message})
}

func InternalError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, Response{Code: 50000, Message: err.Error()})
}

var badRequestErrors = []error{
	service.ErrUnsupportedFormat,
	service.ErrMissingMapping,
	service.ErrMissingRequiredColumn,
	service.ErrInvalidStatus,
	service.ErrInvalidCategory,
	service.ErrInvalidFieldType,
	service.ErrNoUnassignedCustomers,
	service.ErrNotCounsellor,
	service.ErrInvalidCredentials,
}

// HandleError maps service errors onto HTTP statuses
func HandleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, "record not found")
	case errors.Is(err, service.ErrPermissionDenied):
		Forbidden(c, err.Error())
	case errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrPhoneTaken):
		Conflict(c, err.Error())
	default:
		for _, target := range badRequestErrors {
			if errors.Is(err, target) {
				BadRequest(c, err.Error())
				return
			}
		}
		InternalError(c, err)
	}
}

// GetActor the authenticated user set by the JWT middleware
func GetActor(c *gin.Context) service.Actor {
	return service.Actor{
		ID:   c.GetString("user_id"),
		Role: c.GetString("user_role"),
	}
}

// GetPagination page/page_size query params, clamped
func GetPagination(c *gin.Context) (page, pageSize, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize, (page - 1) * pageSize
}
