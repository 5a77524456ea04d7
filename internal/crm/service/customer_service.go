package service

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/alims/leadcrm/internal/crm/entity"
	"github.com/alims/leadcrm/internal/crm/repository"
)

// Actor the authenticated user a request runs as
type Actor struct {
	ID   string
	Role string
}

func (a Actor) IsManager() bool {
	return a.Role == entity.RoleManager
}

// CustomerService lead records, pipeline transitions and assignment
type CustomerService struct {
	customers *repository.CustomerRepository
	users     *repository.UserRepository
}

func NewCustomerService(customers *repository.CustomerRepository, users *repository.UserRepository) *CustomerService {
	return &CustomerService{customers: customers, users: users}
}

type CreateCustomerRequest struct {
	Name        string       `json:"name" binding:"required,max=255"`
	PhoneNumber string       `json:"phone_number" binding:"required,max=20"`
	Email       string       `json:"email" binding:"omitempty,email"`
	Address     string       `json:"address"`
	Area        string       `json:"area"`
	Date        *string      `json:"date"`
	Status      *string      `json:"status"`
	AssignedTo  *string      `json:"assigned_to"`
	Remark      string       `json:"remark"`
	Notes       string       `json:"notes"`
	CustomData  entity.JSONB `json:"custom_data"`
}

type UpdateCustomerRequest struct {
	Name       *string      `json:"name"`
	Email      *string      `json:"email"`
	Address    *string      `json:"address"`
	Area       *string      `json:"area"`
	Date       *string      `json:"date"`
	Remark     *string      `json:"remark"`
	Notes      *string      `json:"notes"`
	CustomData entity.JSONB `json:"custom_data"`
}

func (s *CustomerService) Create(ctx context.Context, req *CreateCustomerRequest) (*entity.Customer, error) {
	if req.Status != nil && !entity.IsValidStatus(*req.Status) {
		return nil, ErrInvalidStatus
	}

	phone := normalizePhone(req.PhoneNumber)
	if _, err := s.customers.FindByPhone(ctx, phone); err == nil {
		return nil, ErrPhoneTaken
	} else if err != repository.ErrNotFound {
		return nil, err
	}

	customer := &entity.Customer{
		ID:          uuid.New().String(),
		Name:        req.Name,
		PhoneNumber: phone,
		Email:       req.Email,
		Address:     req.Address,
		Area:        req.Area,
		Status:      req.Status,
		AssignedTo:  req.AssignedTo,
		Remark:      req.Remark,
		Notes:       req.Notes,
		CustomData:  req.CustomData,
	}
	if req.Date != nil && *req.Date != "" {
		t, err := ParseFlexibleDate(*req.Date)
		if err != nil {
			return nil, err
		}
		customer.Date = &t
	}

	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// Get fetches one customer. Counsellors only see their own assignments.
func (s *CustomerService) Get(ctx context.Context, actor Actor, id string) (*entity.Customer, error) {
	customer, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// List customers visible to the actor. A counsellor's listing is always
// scoped to their own assignments regardless of requested filters.
func (s *CustomerService) List(ctx context.Context, actor Actor, filter repository.CustomerFilter, offset, limit int) ([]entity.Customer, int64, error) {
	if !actor.IsManager() {
		filter.AssignedTo = actor.ID
		filter.Unassigned = false
	}
	return s.customers.FindAll(ctx, filter, offset, limit)
}

func (s *CustomerService) Update(ctx context.Context, actor Actor, id string, req *UpdateCustomerRequest) (*entity.Customer, error) {
	customer, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, customer); err != nil {
		return nil, err
	}

	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Email != nil {
		customer.Email = *req.Email
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}
	if req.Area != nil {
		customer.Area = *req.Area
	}
	if req.Date != nil {
		if *req.Date == "" {
			customer.Date = nil
		} else {
			t, err := ParseFlexibleDate(*req.Date)
			if err != nil {
				return nil, err
			}
			customer.Date = &t
		}
	}
	if req.Remark != nil {
		customer.Remark = *req.Remark
	}
	if req.Notes != nil {
		customer.Notes = *req.Notes
	}
	if req.CustomData != nil {
		if customer.CustomData == nil {
			customer.CustomData = entity.JSONB{}
		}
		for k, v := range req.CustomData {
			customer.CustomData[k] = v
		}
	}

	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *CustomerService) Delete(ctx context.Context, actor Actor, id string) error {
	if !actor.IsManager() {
		return ErrPermissionDenied
	}
	return s.customers.Delete(ctx, id)
}

// ChangeStatus moves a customer through the pipeline and records the
// transition. Managers can move anyone, counsellors only their own leads.
func (s *CustomerService) ChangeStatus(ctx context.Context, actor Actor, customerID, newStatus, notes string) (*entity.CustomerStatusHistory, error) {
	if !entity.IsValidStatus(newStatus) {
		return nil, ErrInvalidStatus
	}
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, customer); err != nil {
		return nil, err
	}
	return s.customers.ChangeStatus(ctx, customerID, newStatus, actor.ID, notes)
}

func (s *CustomerService) History(ctx context.Context, actor Actor, customerID string) ([]entity.CustomerStatusHistory, error) {
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, customer); err != nil {
		return nil, err
	}
	return s.customers.ListHistory(ctx, customerID)
}

// Assign sets or clears one customer's counsellor, manager only
func (s *CustomerService) Assign(ctx context.Context, actor Actor, customerID string, counsellorID *string) error {
	if !actor.IsManager() {
		return ErrPermissionDenied
	}
	if counsellorID != nil {
		if err := s.checkCounsellor(ctx, *counsellorID); err != nil {
			return err
		}
	}
	return s.customers.Assign(ctx, customerID, counsellorID)
}

// BulkAssign points a set of customers at one counsellor, manager only.
// Unknown ids are skipped; the returned count is rows actually updated.
func (s *CustomerService) BulkAssign(ctx context.Context, actor Actor, customerIDs []string, counsellorID string) (int64, error) {
	if !actor.IsManager() {
		return 0, ErrPermissionDenied
	}
	if err := s.checkCounsellor(ctx, counsellorID); err != nil {
		return 0, err
	}
	return s.customers.AssignMany(ctx, customerIDs, counsellorID)
}

// RandomAssign samples count unassigned customers without replacement and
// assigns them to the counsellor. count is clamped to the pool size; an
// empty pool is an error.
func (s *CustomerService) RandomAssign(ctx context.Context, actor Actor, counsellorID string, count int) (int64, error) {
	if !actor.IsManager() {
		return 0, ErrPermissionDenied
	}
	if count <= 0 {
		return 0, fmt.Errorf("count must be positive")
	}
	if err := s.checkCounsellor(ctx, counsellorID); err != nil {
		return 0, err
	}

	pool, err := s.customers.FindUnassignedIDs(ctx)
	if err != nil {
		return 0, err
	}
	if len(pool) == 0 {
		return 0, ErrNoUnassignedCustomers
	}
	if count > len(pool) {
		count = len(pool)
	}

	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	return s.customers.AssignMany(ctx, pool[:count], counsellorID)
}

// ListUnassigned the assignment pool, manager only
func (s *CustomerService) ListUnassigned(ctx context.Context, actor Actor, offset, limit int) ([]entity.Customer, int64, error) {
	if !actor.IsManager() {
		return nil, 0, ErrPermissionDenied
	}
	return s.customers.FindAll(ctx, repository.CustomerFilter{Unassigned: true}, offset, limit)
}

var exportHeaders = []string{"Name", "Phone Number", "Email", "Address", "Area", "Date", "Status", "Assigned To", "Remark", "Notes", "Created At"}

// ExportXLSX writes the actor's visible customers to a workbook
func (s *CustomerService) ExportXLSX(ctx context.Context, actor Actor, filter repository.CustomerFilter) ([]byte, error) {
	if !actor.IsManager() {
		filter.AssignedTo = actor.ID
		filter.Unassigned = false
	}
	customers, _, err := s.customers.FindAll(ctx, filter, 0, 0)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for col, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for i, c := range customers {
		row := i + 2
		values := []interface{}{
			c.Name, c.PhoneNumber, c.Email, c.Address, c.Area,
			formatDate(c.Date), derefOr(c.Status, ""), assigneeName(&c),
			c.Remark, c.Notes, c.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *CustomerService) authorize(actor Actor, customer *entity.Customer) error {
	if actor.IsManager() {
		return nil
	}
	if customer.AssignedTo != nil && *customer.AssignedTo == actor.ID {
		return nil
	}
	return ErrPermissionDenied
}

func (s *CustomerService) checkCounsellor(ctx context.Context, counsellorID string) error {
	user, err := s.users.FindByID(ctx, counsellorID)
	if err != nil {
		if err == repository.ErrNotFound {
			return ErrNotCounsellor
		}
		return err
	}
	if !user.IsCounsellor() || user.Status != "active" {
		return ErrNotCounsellor
	}
	return nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func assigneeName(c *entity.Customer) string {
	if c.Assignee != nil {
		return c.Assignee.Name
	}
	return ""
}
