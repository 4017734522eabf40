package model

import (
	"time"

	"github.com/google/uuid"
)

// Roles.
const (
	RoleAdmin       = "admin"
	RoleAccountant  = "accountant"
	RoleStorekeeper = "storekeeper"
)

// User is a back-office account. Role gates procurement, treasury and
// history maintenance routes.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	FullName     string    `gorm:"not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"type:varchar(20);not null"`
	Active       bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
