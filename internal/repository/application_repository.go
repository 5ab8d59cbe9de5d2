package repository

import (
	"errors"
	"fmt"

	"github.com/devanshmehta/scholarmatch/internal/apperror"
	"github.com/devanshmehta/scholarmatch/internal/model"
	"gorm.io/gorm"
)

type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db}
}

func (r *ApplicationRepository) GetAllByUser(userID string) ([]model.Application, error) {
	var applications []model.Application
	err := r.db.Preload("Scholarship").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&applications).Error
	return applications, err
}

func (r *ApplicationRepository) FindByID(id string) (*model.Application, error) {
	var application model.Application
	err := r.db.Preload("Scholarship").First(&application, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("application %s: %w", id, apperror.ErrNotFound)
	}
	return &application, err
}

func (r *ApplicationRepository) Exists(userID, scholarshipID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Application{}).
		Where("user_id = ? AND scholarship_id = ?", userID, scholarshipID).
		Count(&count).Error
	return count > 0, err
}

func (r *ApplicationRepository) Create(application *model.Application) error {
	return r.db.Create(application).Error
}

func (r *ApplicationRepository) Update(application *model.Application) error {
	return r.db.Save(application).Error
}

func (r *ApplicationRepository) Delete(id string) error {
	result := r.db.Delete(&model.Application{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("application %s: %w", id, apperror.ErrNotFound)
	}
	return nil
}
