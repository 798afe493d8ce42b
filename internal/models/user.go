package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleCandidate  UserRole = "candidate"
	RoleManager    UserRole = "manager"
	RoleHRAdmin    UserRole = "hr_admin"
	RoleSuperAdmin UserRole = "super_admin"
)

// User is an employee or candidate. The record of truth lives in the
// Casdoor directory; this is the projection the assessment core works with.
type User struct {
	ID         string   `json:"id" gorm:"primaryKey;size:255"`
	FullName   string   `json:"full_name" gorm:"not null;size:100"`
	Email      string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Role       UserRole `json:"role" gorm:"-"`
	Department string   `json:"department" gorm:"size:100"`
	Position   string   `json:"position" gorm:"size:100"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
