package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// StudentProfile holds the free-form profile attributes (gpa, major,
// education_level, interests, ...) as jsonb plus a lazily computed
// embedding over them. The embedding stays nil until the first match
// request and is cleared again whenever profile_data is edited.
type StudentProfile struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID        `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	ProfileData datatypes.JSON   `gorm:"type:jsonb" json:"profile_data"`
	Embedding   *pgvector.Vector `gorm:"type:vector(1536)" json:"embedding,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func (p *StudentProfile) TableName() string {
	return "student_profiles"
}
