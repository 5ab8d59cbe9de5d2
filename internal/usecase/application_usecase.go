package usecase

import (
	"fmt"
	"slices"
	"time"

	"github.com/devanshmehta/scholarmatch/internal/apperror"
	"github.com/devanshmehta/scholarmatch/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type applicationRepository interface {
	GetAllByUser(userID string) ([]model.Application, error)
	FindByID(id string) (*model.Application, error)
	Exists(userID, scholarshipID string) (bool, error)
	Create(application *model.Application) error
	Update(application *model.Application) error
	Delete(id string) error
}

type ApplicationUsecase struct {
	repo   applicationRepository
	logger *zap.Logger
}

func NewApplicationUsecase(repo applicationRepository, logger *zap.Logger) *ApplicationUsecase {
	return &ApplicationUsecase{repo: repo, logger: logger}
}

func (uc *ApplicationUsecase) ListByUser(userID string) ([]model.Application, error) {
	return uc.repo.GetAllByUser(userID)
}

func (uc *ApplicationUsecase) Get(id, userID string) (*model.Application, error) {
	application, err := uc.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if application.UserID.String() != userID {
		return nil, fmt.Errorf("application %s: %w", id, apperror.ErrNotFound)
	}
	return application, nil
}

// Create rejects a second application for the same scholarship. This is
// the only place duplicates are prevented; the matcher deliberately does
// no dedup.
func (uc *ApplicationUsecase) Create(userID, scholarshipID string) (*model.Application, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	sid, err := uuid.Parse(scholarshipID)
	if err != nil {
		return nil, fmt.Errorf("invalid scholarship id: %w", err)
	}

	exists, err := uc.repo.Exists(userID, scholarshipID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("scholarship %s: %w", scholarshipID, apperror.ErrAlreadyApplied)
	}

	application := &model.Application{
		UserID:        uid,
		ScholarshipID: sid,
		Status:        model.ApplicationPending,
		SubmittedAt:   time.Now(),
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := uc.repo.Create(application); err != nil {
		return nil, err
	}
	return application, nil
}

func (uc *ApplicationUsecase) UpdateStatus(id, userID, status string) (*model.Application, error) {
	valid := []string{model.ApplicationPending, model.ApplicationApproved, model.ApplicationRejected}
	if !slices.Contains(valid, status) {
		return nil, fmt.Errorf("invalid application status %q", status)
	}

	application, err := uc.Get(id, userID)
	if err != nil {
		return nil, err
	}
	application.Status = status
	application.UpdatedAt = time.Now()
	if err := uc.repo.Update(application); err != nil {
		return nil, err
	}
	return application, nil
}

func (uc *ApplicationUsecase) Withdraw(id, userID string) error {
	if _, err := uc.Get(id, userID); err != nil {
		return err
	}
	return uc.repo.Delete(id)
}

func (uc *ApplicationUsecase) AttachDocument(id, userID string, document model.ApplicationDocument) (*model.Application, error) {
	application, err := uc.Get(id, userID)
	if err != nil {
		return nil, err
	}
	application.Documents = append(application.Documents, document)
	application.UpdatedAt = time.Now()
	if err := uc.repo.Update(application); err != nil {
		return nil, err
	}
	return application, nil
}
