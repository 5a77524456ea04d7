package entity

import (
	"time"
)

// Roles
const (
	RoleManager    = "manager"
	RoleCounsellor = "counsellor"
)

// User account entity. Role gates every permission check in the services.
type User struct {
	ID           string     `json:"id" gorm:"primaryKey;size:36"`
	Username     string     `json:"username" gorm:"size:64;not null;uniqueIndex"`
	Name         string     `json:"name" gorm:"size:128"`
	Email        string     `json:"email" gorm:"size:128;uniqueIndex"`
	PasswordHash string     `json:"-" gorm:"size:128;not null"`
	Role         string     `json:"role" gorm:"size:16;not null;default:counsellor;index"`
	Status       string     `json:"status" gorm:"size:16;not null;default:active"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsManager() bool {
	return u.Role == RoleManager
}

func (u *User) IsCounsellor() bool {
	return u.Role == RoleCounsellor
}
