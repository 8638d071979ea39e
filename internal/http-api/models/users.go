package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"reviewhub/internal/http-api/access"
)

type User struct {
	ID        string      `gorm:"primaryKey;type:uuid" json:"id"`
	Username  string      `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email     string      `gorm:"uniqueIndex;size:254;not null" json:"email"`
	FirstName string      `gorm:"size:150" json:"first_name"`
	LastName  string      `gorm:"size:150" json:"last_name"`
	Bio       string      `gorm:"type:text" json:"bio"`
	Role      access.Role `gorm:"default:'user';not null" json:"role"`
	Superuser bool        `gorm:"default:false;not null" json:"-"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	// If the ID is not already set, generate a new one.
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	return
}

// Actor converts the stored account into the caller identity used by
// access checks.
func (user *User) Actor() access.Actor {
	return access.Actor{
		ID:            user.ID,
		Role:          user.Role,
		Superuser:     user.Superuser,
		Authenticated: true,
	}
}

func (User) TableName() string {
	return "users"
}
