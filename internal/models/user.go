package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin       UserRole = "admin"
	RoleInterviewer UserRole = "interviewer"
	RoleCandidate   UserRole = "candidate"
)

// ParseUserRole accepts only the three known roles.
func ParseUserRole(s string) (UserRole, error) {
	switch r := UserRole(s); r {
	case RoleAdmin, RoleInterviewer, RoleCandidate:
		return r, nil
	}
	return "", fmt.Errorf("unknown user role %q", s)
}

func (r UserRole) IsStaff() bool {
	return r == RoleAdmin || r == RoleInterviewer
}

// User mirrors the identity provider's account. The service reads users, it never owns them.
type User struct {
	ID       string   `json:"id" gorm:"primaryKey;size:255"`
	FullName string   `json:"full_name" gorm:"not null;size:100"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Role     UserRole `json:"role" gorm:"size:20;not null;index"`

	IsActive    bool       `json:"is_active" gorm:"default:true"`
	LastLoginAt *time.Time `json:"last_login_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
