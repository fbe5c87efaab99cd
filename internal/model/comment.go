package model

import "time"

// Comment is a reply left by a user on a post. Comments are never edited,
// so only the creation time is tracked.
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"not null;index"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Post *Post `json:"-" gorm:"foreignKey:PostID"`
	User *User `json:"-" gorm:"foreignKey:UserID"`
}
