package model

import (
	"time"

	"blog/internal/password"
)

// User is a registered blog author.
type User struct {
	ID           uint          `json:"id" gorm:"primaryKey"`
	Username     string        `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email        string        `json:"email" gorm:"uniqueIndex;size:100;not null"`
	PasswordHash password.Hash `json:"-" gorm:"type:varchar(255);not null"` // Never expose in JSON
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`

	// Relations
	Posts []Post `json:"-" gorm:"foreignKey:UserID"`
}
