package model

import (
	"time"

	"github.com/google/uuid"
)

// User mirrors the auth provider's subject. The row is upserted on first
// sign-in, with the auth subject as primary key.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex" json:"email"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) TableName() string {
	return "users"
}
