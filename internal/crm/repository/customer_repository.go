package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/alims/leadcrm/internal/crm/entity"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// CustomerFilter list filters, zero values mean "not filtered"
type CustomerFilter struct {
	Status     string
	AssignedTo string
	Area       string
	Unassigned bool
	Search     string
}

func (r *CustomerRepository) FindAll(ctx context.Context, filter CustomerFilter, offset, limit int) ([]entity.Customer, int64, error) {
	var customers []entity.Customer
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Customer{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.AssignedTo != "" {
		query = query.Where("assigned_to = ?", filter.AssignedTo)
	}
	if filter.Area != "" {
		query = query.Where("area = ?", filter.Area)
	}
	if filter.Unassigned {
		query = query.Where("assigned_to IS NULL")
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR phone_number LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Preload("Assignee").Order("created_at DESC")
	if limit > 0 {
		query = query.Offset(offset).Limit(limit)
	}
	err := query.Find(&customers).Error
	return customers, total, err
}

func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*entity.Customer, error) {
	var customer entity.Customer
	if err := r.db.WithContext(ctx).Preload("Assignee").First(&customer, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &customer, nil
}

func (r *CustomerRepository) FindByPhone(ctx context.Context, phone string) (*entity.Customer, error) {
	var customer entity.Customer
	if err := r.db.WithContext(ctx).First(&customer, "phone_number = ?", phone).Error; err != nil {
		return nil, translateError(err)
	}
	return &customer, nil
}

func (r *CustomerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *CustomerRepository) Update(ctx context.Context, customer *entity.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&entity.Customer{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertByPhone creates the customer, or merges non-empty incoming values into
// the existing row sharing the phone number. The row lock serializes
// concurrent imports of the same phone. Returns true when a row was created.
func (r *CustomerRepository) UpsertByPhone(ctx context.Context, incoming *entity.Customer) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing entity.Customer
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&existing, "phone_number = ?", incoming.PhoneNumber).Error
		if err == gorm.ErrRecordNotFound {
			created = true
			return tx.Create(incoming).Error
		}
		if err != nil {
			return err
		}

		mergeCustomer(&existing, incoming)
		incoming.ID = existing.ID
		return tx.Save(&existing).Error
	})
	return created, err
}

// mergeCustomer copies non-empty incoming values over the existing record.
// Empty cells never erase data captured by earlier imports.
func mergeCustomer(existing, incoming *entity.Customer) {
	if incoming.Name != "" {
		existing.Name = incoming.Name
	}
	if incoming.Email != "" {
		existing.Email = incoming.Email
	}
	if incoming.Address != "" {
		existing.Address = incoming.Address
	}
	if incoming.Area != "" {
		existing.Area = incoming.Area
	}
	if incoming.Date != nil {
		existing.Date = incoming.Date
	}
	if incoming.Remark != "" {
		existing.Remark = incoming.Remark
	}
	if incoming.Notes != "" {
		existing.Notes = incoming.Notes
	}
	if len(incoming.CustomData) > 0 {
		if existing.CustomData == nil {
			existing.CustomData = entity.JSONB{}
		}
		for k, v := range incoming.CustomData {
			existing.CustomData[k] = v
		}
	}
}

// ChangeStatus updates the customer status and appends a history row in one
// transaction. The history row records the pre-update status.
func (r *CustomerRepository) ChangeStatus(ctx context.Context, customerID, newStatus, changedBy, notes string) (*entity.CustomerStatusHistory, error) {
	var history *entity.CustomerStatusHistory
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer entity.Customer
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&customer, "id = ?", customerID).Error; err != nil {
			return translateError(err)
		}

		previous := customer.Status
		customer.Status = &newStatus
		if err := tx.Save(&customer).Error; err != nil {
			return err
		}

		history = &entity.CustomerStatusHistory{
			ID:             uuid.New().String(),
			CustomerID:     customerID,
			PreviousStatus: previous,
			NewStatus:      newStatus,
			ChangedBy:      changedBy,
			ChangedAt:      time.Now(),
			Notes:          notes,
		}
		return tx.Create(history).Error
	})
	if err != nil {
		return nil, err
	}
	return history, nil
}

// ListHistory status transitions for a customer, newest first
func (r *CustomerRepository) ListHistory(ctx context.Context, customerID string) ([]entity.CustomerStatusHistory, error) {
	var entries []entity.CustomerStatusHistory
	err := r.db.WithContext(ctx).
		Preload("Actor").
		Where("customer_id = ?", customerID).
		Order("changed_at DESC").
		Find(&entries).Error
	return entries, err
}

// AssignMany points the given customers at one counsellor. Returns the number
// of rows actually updated.
func (r *CustomerRepository) AssignMany(ctx context.Context, customerIDs []string, counsellorID string) (int64, error) {
	if len(customerIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Model(&entity.Customer{}).
		Where("id IN ?", customerIDs).
		Update("assigned_to", counsellorID)
	return result.RowsAffected, result.Error
}

// Assign sets or clears the assignee of one customer
func (r *CustomerRepository) Assign(ctx context.Context, customerID string, counsellorID *string) error {
	result := r.db.WithContext(ctx).Model(&entity.Customer{}).
		Where("id = ?", customerID).
		Update("assigned_to", counsellorID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindUnassignedIDs ids of customers without an assignee
func (r *CustomerRepository) FindUnassignedIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&entity.Customer{}).
		Where("assigned_to IS NULL").
		Pluck("id", &ids).Error
	return ids, err
}

// StatusCount one dashboard bucket
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// CountByStatus per-status totals, optionally scoped to one counsellor
func (r *CustomerRepository) CountByStatus(ctx context.Context, assignedTo string) ([]StatusCount, error) {
	var counts []StatusCount
	query := r.db.WithContext(ctx).Model(&entity.Customer{}).
		Select("status, count(*) as count").
		Where("status IS NOT NULL")
	if assignedTo != "" {
		query = query.Where("assigned_to = ?", assignedTo)
	}
	err := query.Group("status").Find(&counts).Error
	return counts, err
}

// CounsellorCount customers per counsellor
type CounsellorCount struct {
	CounsellorID string `json:"counsellor_id"`
	Count        int64  `json:"count"`
}

func (r *CustomerRepository) CountByCounsellor(ctx context.Context) ([]CounsellorCount, error) {
	var counts []CounsellorCount
	err := r.db.WithContext(ctx).Model(&entity.Customer{}).
		Select("assigned_to as counsellor_id, count(*) as count").
		Where("assigned_to IS NOT NULL").
		Group("assigned_to").
		Find(&counts).Error
	return counts, err
}

// Count totals scoped the same way FindAll is
func (r *CustomerRepository) Count(ctx context.Context, filter CustomerFilter) (int64, error) {
	var total int64
	query := r.db.WithContext(ctx).Model(&entity.Customer{})
	if filter.AssignedTo != "" {
		query = query.Where("assigned_to = ?", filter.AssignedTo)
	}
	if filter.Unassigned {
		query = query.Where("assigned_to IS NULL")
	}
	err := query.Count(&total).Error
	return total, err
}

// CountCreatedSince customers created after the cutoff
func (r *CustomerRepository) CountCreatedSince(ctx context.Context, since time.Time, assignedTo string) (int64, error) {
	var total int64
	query := r.db.WithContext(ctx).Model(&entity.Customer{}).
		Where("created_at >= ?", since)
	if assignedTo != "" {
		query = query.Where("assigned_to = ?", assignedTo)
	}
	err := query.Count(&total).Error
	return total, err
}
