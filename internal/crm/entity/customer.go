package entity

import (
	"time"
)

// Pipeline statuses. Transitions between any two statuses are permitted;
// validation only checks membership.
const (
	StatusInvalid         = "INVALID"
	StatusValid           = "VALID"
	StatusCallNotAttended = "CALL_NOT_ATTENDED"
	StatusPlanPresented   = "PLAN_PRESENTED"
	StatusInterested      = "INTERESTED"
	StatusNotInterested   = "NOT_INTERESTED"
	StatusFollowUp        = "FOLLOW_UP"
	StatusShortlisted     = "SHORTLISTED"
	StatusCampusVisit     = "CAMPUS_VISIT"
	StatusRegistration    = "REGISTRATION"
	StatusAdmission       = "ADMISSION"
)

// CustomerStatuses pipeline order, used for dashboards and validation
var CustomerStatuses = []string{
	StatusInvalid,
	StatusValid,
	StatusCallNotAttended,
	StatusPlanPresented,
	StatusInterested,
	StatusNotInterested,
	StatusFollowUp,
	StatusShortlisted,
	StatusCampusVisit,
	StatusRegistration,
	StatusAdmission,
}

// StatusLabels display labels keyed by status value
var StatusLabels = map[string]string{
	StatusInvalid:         "Invalid",
	StatusValid:           "Valid",
	StatusCallNotAttended: "Call Not Attended",
	StatusPlanPresented:   "Plan Presented",
	StatusInterested:      "Interested",
	StatusNotInterested:   "Not Interested",
	StatusFollowUp:        "Follow Up",
	StatusShortlisted:     "Shortlisted",
	StatusCampusVisit:     "Campus Visit",
	StatusRegistration:    "Registration",
	StatusAdmission:       "Admission",
}

func IsValidStatus(status string) bool {
	_, ok := StatusLabels[status]
	return ok
}

// Customer lead record. phone_number is the natural key for imports;
// the unique index makes concurrent upserts fail instead of duplicating rows.
type Customer struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	Name        string     `json:"name" gorm:"size:255;index"`
	PhoneNumber string     `json:"phone_number" gorm:"size:20;not null;uniqueIndex"`
	Email       string     `json:"email" gorm:"size:128"`
	Address     string     `json:"address" gorm:"size:500"`
	Area        string     `json:"area" gorm:"size:255;index"`
	Date        *time.Time `json:"date" gorm:"type:date;index"`
	Status      *string    `json:"status" gorm:"size:20;index"`
	AssignedTo  *string    `json:"assigned_to" gorm:"size:36;index"`
	Remark      string     `json:"remark" gorm:"type:text"`
	Notes       string     `json:"notes" gorm:"type:text"`
	CustomData  JSONB      `json:"custom_data,omitempty" gorm:"type:jsonb"`
	CreatedAt   time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Assignee *User `json:"assignee,omitempty" gorm:"foreignKey:AssignedTo"`
}

func (Customer) TableName() string {
	return "customers"
}

// CustomerStatusHistory append-only audit trail of status transitions.
// PreviousStatus is nil only for a customer's first transition.
type CustomerStatusHistory struct {
	ID             string    `json:"id" gorm:"primaryKey;size:36"`
	CustomerID     string    `json:"customer_id" gorm:"size:36;not null;index"`
	PreviousStatus *string   `json:"previous_status" gorm:"size:20"`
	NewStatus      string    `json:"new_status" gorm:"size:20;not null;index"`
	ChangedBy      string    `json:"changed_by" gorm:"size:36;not null;index"`
	ChangedAt      time.Time `json:"changed_at" gorm:"index"`
	Notes          string    `json:"notes" gorm:"type:text"`

	Customer *Customer `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Actor    *User     `json:"actor,omitempty" gorm:"foreignKey:ChangedBy"`
}

func (CustomerStatusHistory) TableName() string {
	return "customer_status_histories"
}

// Note categories
const (
	NoteCategoryGeneral     = "GENERAL"
	NoteCategoryCall        = "CALL"
	NoteCategoryMeeting     = "MEETING"
	NoteCategoryFollowUp    = "FOLLOW_UP"
	NoteCategoryCampusVisit = "CAMPUS_VISIT"
	NoteCategoryDocument    = "DOCUMENT"
	NoteCategoryPayment     = "PAYMENT"
	NoteCategoryOther       = "OTHER"
)

var NoteCategories = []string{
	NoteCategoryGeneral,
	NoteCategoryCall,
	NoteCategoryMeeting,
	NoteCategoryFollowUp,
	NoteCategoryCampusVisit,
	NoteCategoryDocument,
	NoteCategoryPayment,
	NoteCategoryOther,
}

// CustomerNote free-form note attached to a customer, pinned notes first
type CustomerNote struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	CustomerID string    `json:"customer_id" gorm:"size:36;not null;index"`
	Category   string    `json:"category" gorm:"size:20;not null;default:GENERAL;index"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	CreatedBy  string    `json:"created_by" gorm:"size:36;not null;index"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
	IsPinned   bool      `json:"is_pinned" gorm:"not null;default:false"`

	Author *User `json:"author,omitempty" gorm:"foreignKey:CreatedBy"`
}

func (CustomerNote) TableName() string {
	return "customer_notes"
}
