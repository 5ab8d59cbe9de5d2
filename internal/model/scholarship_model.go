package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// Scholarship status values.
const (
	StatusAvailable   = "Available"
	StatusLimited     = "Limited"
	StatusNew         = "New"
	StatusClosingSoon = "Closing Soon"
)

// EligibilityCriteria is the structured rule set attached to a scholarship.
// Empty sets mean "no restriction". The matcher only evaluates
// gpa_requirement, education_level and major_restrictions; the categorical
// fields serve the filter endpoint.
type EligibilityCriteria struct {
	GPARequirement    string   `json:"gpa_requirement,omitempty"`
	EducationLevel    []string `json:"education_level,omitempty"`
	MajorRestrictions []string `json:"major_restrictions,omitempty"`
	Caste             []string `json:"caste,omitempty"`
	Religion          []string `json:"religion,omitempty"`
	Type              []string `json:"type,omitempty"`
	InstitutionType   []string `json:"institutionType,omitempty"`
	State             string   `json:"state,omitempty"`
	OtherRequirements []string `json:"other_requirements,omitempty"`
}

// Scholarship carries a precomputed embedding over title+description.
// The embedding must be regenerated whenever either field changes.
type Scholarship struct {
	ID                  uuid.UUID                               `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title               string                                  `json:"title"`
	Description         string                                  `gorm:"type:text" json:"description"`
	Amount              float64                                 `json:"amount"`
	Deadline            time.Time                               `json:"deadline"`
	Category            string                                  `json:"category"`
	Status              string                                  `gorm:"type:varchar(50);default:'New'" json:"status"`
	EligibilityCriteria datatypes.JSONType[EligibilityCriteria] `gorm:"type:jsonb" json:"eligibility_criteria"`
	Requirements        datatypes.JSONSlice[string]             `gorm:"type:jsonb" json:"requirements"`
	VectorEmbedding     *pgvector.Vector                        `gorm:"type:vector(1536)" json:"vector_embedding,omitempty"`
	CreatedAt           time.Time                               `json:"created_at"`
	UpdatedAt           time.Time                               `json:"updated_at"`
}

func (s *Scholarship) TableName() string {
	return "scholarships"
}

// ScholarshipFilter is the structured filter accepted by the filter
// endpoint. Set filters use jsonb containment against
// eligibility_criteria; nil/empty fields are skipped.
type ScholarshipFilter struct {
	Caste           []string   `json:"caste"`
	Type            []string   `json:"type"`
	Religion        []string   `json:"religion"`
	InstitutionType []string   `json:"institutionType"`
	EducationLevel  []string   `json:"education_level"`
	State           string     `json:"state"`
	MinAmount       *float64   `json:"min_amount"`
	MaxAmount       *float64   `json:"max_amount"`
	Deadline        *time.Time `json:"deadline"`
	Status          []string   `json:"status"`
}
