package repository

import (
	"errors"
	"fmt"

	"github.com/devanshmehta/scholarmatch/internal/apperror"
	"github.com/devanshmehta/scholarmatch/internal/model"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type StudentProfileRepository struct {
	db *gorm.DB
}

func NewStudentProfileRepository(db *gorm.DB) *StudentProfileRepository {
	return &StudentProfileRepository{db}
}

func (r *StudentProfileRepository) FindByUserID(userID string) (*model.StudentProfile, error) {
	var profile model.StudentProfile
	err := r.db.First(&profile, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("student profile for user %s: %w", userID, apperror.ErrNotFound)
	}
	return &profile, err
}

func (r *StudentProfileRepository) Create(profile *model.StudentProfile) error {
	return r.db.Create(profile).Error
}

func (r *StudentProfileRepository) Update(profile *model.StudentProfile) error {
	return r.db.Save(profile).Error
}

// SaveEmbedding writes only the cached embedding column. There is no
// locking around the check-compute-persist sequence; concurrent requests
// for the same profile may both compute, last write wins.
func (r *StudentProfileRepository) SaveEmbedding(id uuid.UUID, embedding pgvector.Vector) error {
	return r.db.Model(&model.StudentProfile{}).
		Where("id = ?", id).
		Update("embedding", embedding).Error
}
