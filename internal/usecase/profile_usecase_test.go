package usecase

import (
	"fmt"
	"testing"

	"github.com/devanshmehta/scholarmatch/internal/apperror"
	"github.com/devanshmehta/scholarmatch/internal/model"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type stubProfileStore struct {
	profile *model.StudentProfile
	created *model.StudentProfile
	updated *model.StudentProfile
}

func (s *stubProfileStore) FindByUserID(userID string) (*model.StudentProfile, error) {
	if s.profile == nil {
		return nil, fmt.Errorf("student profile for user %s: %w", userID, apperror.ErrNotFound)
	}
	return s.profile, nil
}

func (s *stubProfileStore) Create(profile *model.StudentProfile) error {
	s.created = profile
	return nil
}

func (s *stubProfileStore) Update(profile *model.StudentProfile) error {
	s.updated = profile
	return nil
}

type stubUserRepo struct {
	user     *model.User
	updated  *model.User
	upserted *model.User
}

func (s *stubUserRepo) FindByID(id string) (*model.User, error) {
	if s.user == nil {
		return nil, fmt.Errorf("user %s: %w", id, apperror.ErrNotFound)
	}
	return s.user, nil
}

func (s *stubUserRepo) Update(user *model.User) error {
	s.updated = user
	return nil
}

func (s *stubUserRepo) Upsert(user *model.User) error {
	s.upserted = user
	return nil
}

func TestUpsertProfileClearsEmbeddingOnEdit(t *testing.T) {
	embedding := pgvector.NewVector(make([]float32, 1536))
	store := &stubProfileStore{profile: &model.StudentProfile{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		ProfileData: datatypes.JSON(`{"gpa":"3.2"}`),
		Embedding:   &embedding,
	}}
	uc := NewProfileUsecase(store, &stubUserRepo{}, zap.NewNop())

	profile, err := uc.UpsertProfile(store.profile.UserID.String(), []byte(`{"gpa":"3.8"}`))

	require.NoError(t, err)
	require.NotNil(t, store.updated)
	assert.Nil(t, profile.Embedding, "editing profile_data must invalidate the cached embedding")
	assert.Equal(t, `{"gpa":"3.8"}`, string(profile.ProfileData))
}

func TestUpsertProfileCreatesWhenMissing(t *testing.T) {
	store := &stubProfileStore{}
	uc := NewProfileUsecase(store, &stubUserRepo{}, zap.NewNop())

	userID := uuid.New()
	profile, err := uc.UpsertProfile(userID.String(), []byte(`{"major":"Physics"}`))

	require.NoError(t, err)
	require.NotNil(t, store.created)
	assert.Equal(t, userID, profile.UserID)
	assert.Nil(t, profile.Embedding)
}

func TestUpsertProfileRejectsNonObject(t *testing.T) {
	uc := NewProfileUsecase(&stubProfileStore{}, &stubUserRepo{}, zap.NewNop())

	_, err := uc.UpsertProfile(uuid.NewString(), []byte(`[1,2,3]`))

	require.Error(t, err)
}

func TestUpdateAvatar(t *testing.T) {
	owner := uuid.New()
	users := &stubUserRepo{user: &model.User{ID: owner, Email: "s@example.com"}}
	uc := NewProfileUsecase(&stubProfileStore{}, users, zap.NewNop())

	user, err := uc.UpdateAvatar(owner.String(), "/uploads/avatars/"+owner.String()+"/me.png")

	require.NoError(t, err)
	require.NotNil(t, users.updated)
	assert.Equal(t, "/uploads/avatars/"+owner.String()+"/me.png", user.AvatarURL)
}

func TestUpdateAvatarUnknownUser(t *testing.T) {
	uc := NewProfileUsecase(&stubProfileStore{}, &stubUserRepo{}, zap.NewNop())

	_, err := uc.UpdateAvatar(uuid.NewString(), "/uploads/avatars/x/me.png")

	require.ErrorIs(t, err, apperror.ErrNotFound)
}
