package usecase

import (
	"testing"

	"github.com/devanshmehta/scholarmatch/internal/apperror"
	"github.com/devanshmehta/scholarmatch/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubApplicationRepo struct {
	application *model.Application
	exists      bool
	created     *model.Application
	updated     *model.Application
	deleted     []string
}

func (s *stubApplicationRepo) GetAllByUser(userID string) ([]model.Application, error) {
	if s.application == nil {
		return nil, nil
	}
	return []model.Application{*s.application}, nil
}

func (s *stubApplicationRepo) FindByID(id string) (*model.Application, error) {
	if s.application == nil {
		return nil, apperror.ErrNotFound
	}
	return s.application, nil
}

func (s *stubApplicationRepo) Exists(userID, scholarshipID string) (bool, error) {
	return s.exists, nil
}

func (s *stubApplicationRepo) Create(application *model.Application) error {
	s.created = application
	return nil
}

func (s *stubApplicationRepo) Update(application *model.Application) error {
	s.updated = application
	return nil
}

func (s *stubApplicationRepo) Delete(id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func TestCreateApplication(t *testing.T) {
	repo := &stubApplicationRepo{}
	uc := NewApplicationUsecase(repo, zap.NewNop())

	application, err := uc.Create(uuid.NewString(), uuid.NewString())

	require.NoError(t, err)
	require.NotNil(t, repo.created)
	assert.Equal(t, model.ApplicationPending, application.Status)
	assert.False(t, application.SubmittedAt.IsZero())
}

func TestCreateApplicationDuplicate(t *testing.T) {
	repo := &stubApplicationRepo{exists: true}
	uc := NewApplicationUsecase(repo, zap.NewNop())

	_, err := uc.Create(uuid.NewString(), uuid.NewString())

	require.ErrorIs(t, err, apperror.ErrAlreadyApplied)
	assert.Nil(t, repo.created)
}

func TestCreateApplicationInvalidScholarshipID(t *testing.T) {
	uc := NewApplicationUsecase(&stubApplicationRepo{}, zap.NewNop())

	_, err := uc.Create(uuid.NewString(), "not-a-uuid")

	require.Error(t, err)
}

func TestGetApplicationOwnership(t *testing.T) {
	owner := uuid.New()
	repo := &stubApplicationRepo{application: &model.Application{ID: uuid.New(), UserID: owner}}
	uc := NewApplicationUsecase(repo, zap.NewNop())

	_, err := uc.Get(repo.application.ID.String(), owner.String())
	require.NoError(t, err)

	// Someone else's application looks like it does not exist.
	_, err = uc.Get(repo.application.ID.String(), uuid.NewString())
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	owner := uuid.New()
	repo := &stubApplicationRepo{application: &model.Application{ID: uuid.New(), UserID: owner}}
	uc := NewApplicationUsecase(repo, zap.NewNop())

	_, err := uc.UpdateStatus(repo.application.ID.String(), owner.String(), "archived")

	require.Error(t, err)
	assert.Nil(t, repo.updated)
}

func TestWithdraw(t *testing.T) {
	owner := uuid.New()
	repo := &stubApplicationRepo{application: &model.Application{ID: uuid.New(), UserID: owner}}
	uc := NewApplicationUsecase(repo, zap.NewNop())

	require.NoError(t, uc.Withdraw(repo.application.ID.String(), owner.String()))
	assert.Equal(t, []string{repo.application.ID.String()}, repo.deleted)
}
