package usecase

import (
	"errors"
	"fmt"
	"time"

	"github.com/devanshmehta/scholarmatch/internal/apperror"
	"github.com/devanshmehta/scholarmatch/internal/dto"
	"github.com/devanshmehta/scholarmatch/internal/model"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type profileRepository interface {
	FindByUserID(userID string) (*model.StudentProfile, error)
	Create(profile *model.StudentProfile) error
	Update(profile *model.StudentProfile) error
}

type userRepository interface {
	FindByID(id string) (*model.User, error)
	Update(user *model.User) error
	Upsert(user *model.User) error
}

type ProfileUsecase struct {
	profileRepo profileRepository
	userRepo    userRepository
	logger      *zap.Logger
}

func NewProfileUsecase(profileRepo profileRepository, userRepo userRepository, logger *zap.Logger) *ProfileUsecase {
	return &ProfileUsecase{profileRepo: profileRepo, userRepo: userRepo, logger: logger}
}

func (uc *ProfileUsecase) GetProfile(userID string) (*model.StudentProfile, error) {
	return uc.profileRepo.FindByUserID(userID)
}

// UpsertProfile writes profile_data and clears the cached embedding, so
// the next match request recomputes it from the edited attributes.
func (uc *ProfileUsecase) UpsertProfile(userID string, profileData []byte) (*model.StudentProfile, error) {
	if !gjson.ValidBytes(profileData) || !gjson.ParseBytes(profileData).IsObject() {
		return nil, fmt.Errorf("profile_data must be a JSON object")
	}

	profile, err := uc.profileRepo.FindByUserID(userID)
	switch {
	case err == nil:
		profile.ProfileData = datatypes.JSON(profileData)
		profile.Embedding = nil
		profile.UpdatedAt = time.Now()
		if err := uc.profileRepo.Update(profile); err != nil {
			return nil, err
		}
		return profile, nil
	case errors.Is(err, apperror.ErrNotFound):
		uid, parseErr := uuid.Parse(userID)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid user id: %w", parseErr)
		}
		profile = &model.StudentProfile{
			UserID:      uid,
			ProfileData: datatypes.JSON(profileData),
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		if err := uc.profileRepo.Create(profile); err != nil {
			return nil, err
		}
		return profile, nil
	default:
		return nil, err
	}
}

func (uc *ProfileUsecase) GetUser(userID string) (*model.User, error) {
	return uc.userRepo.FindByID(userID)
}

func (uc *ProfileUsecase) UpsertUser(userID string, req dto.UserUpsertRequest) (*model.User, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	user := &model.User{
		ID:        uid,
		Email:     req.Email,
		FullName:  req.FullName,
		AvatarURL: req.AvatarURL,
		CreatedAt: time.Now(),
	}
	if err := uc.userRepo.Upsert(user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateAvatar records the stored avatar's public URL on the user row.
func (uc *ProfileUsecase) UpdateAvatar(userID, avatarURL string) (*model.User, error) {
	user, err := uc.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	user.AvatarURL = avatarURL
	if err := uc.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
