package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Application status values.
const (
	ApplicationPending  = "Pending"
	ApplicationApproved = "Approved"
	ApplicationRejected = "Rejected"
)

type ApplicationDocument struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Application links a user to a scholarship. The (user_id, scholarship_id)
// pair is unique; duplicates are rejected at creation time.
type Application struct {
	ID            uuid.UUID                                `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID        uuid.UUID                                `gorm:"type:uuid;uniqueIndex:idx_applications_user_scholarship" json:"user_id"`
	ScholarshipID uuid.UUID                                `gorm:"type:uuid;uniqueIndex:idx_applications_user_scholarship" json:"scholarship_id"`
	Status        string                                   `gorm:"type:varchar(50);default:'Pending'" json:"status"`
	SubmittedAt   time.Time                                `json:"submitted_at"`
	Documents     datatypes.JSONSlice[ApplicationDocument] `gorm:"type:jsonb" json:"documents"`
	Scholarship   *Scholarship                             `gorm:"foreignKey:ScholarshipID" json:"scholarship,omitempty"`
	CreatedAt     time.Time                                `json:"created_at"`
	UpdatedAt     time.Time                                `json:"updated_at"`
}

func (a *Application) TableName() string {
	return "applications"
}
