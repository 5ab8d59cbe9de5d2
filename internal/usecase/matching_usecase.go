package usecase

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/devanshmehta/scholarmatch/internal/dto"
	"github.com/devanshmehta/scholarmatch/internal/model"
	"github.com/devanshmehta/scholarmatch/internal/repository"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	matchThreshold    = 0.7
	defaultMatchLimit = 10
	// Over-fetch to compensate for candidates rejected on eligibility.
	overFetchFactor = 2
)

// Match reason strings, surfaced verbatim in the UI.
const (
	reasonGPANotMet       = "GPA requirement not met"
	reasonEducationNotMet = "Education level requirement not met"
	reasonMajorNotMet     = "Major requirement not met"
	reasonGPAMet          = "Meets GPA requirement"
	reasonEducationMet    = "Matches education level"
	reasonMajorMet        = "Matches major requirements"
)

type matchProfileRepository interface {
	FindByUserID(userID string) (*model.StudentProfile, error)
	SaveEmbedding(id uuid.UUID, embedding pgvector.Vector) error
}

type matchScholarshipRepository interface {
	GetAll() ([]model.Scholarship, error)
	MatchByEmbedding(embedding pgvector.Vector, threshold float64, limit int) ([]repository.ScholarshipMatch, error)
}

type embedder interface {
	Embed(ctx context.Context, text string) ([]float32, bool, error)
}

// MatchingUsecase ranks scholarships for a student: lazy profile
// embedding, similarity search above the threshold, then an eligibility
// re-rank over the candidates.
type MatchingUsecase struct {
	profileRepo     matchProfileRepository
	scholarshipRepo matchScholarshipRepository
	embeddings      embedder
	logger          *zap.Logger
}

func NewMatchingUsecase(profileRepo matchProfileRepository, scholarshipRepo matchScholarshipRepository, embeddings embedder, logger *zap.Logger) *MatchingUsecase {
	return &MatchingUsecase{
		profileRepo:     profileRepo,
		scholarshipRepo: scholarshipRepo,
		embeddings:      embeddings,
		logger:          logger,
	}
}

// FindMatches returns up to limit eligible scholarships ordered by
// descending similarity. Fewer than limit results is not an error.
func (uc *MatchingUsecase) FindMatches(ctx context.Context, userID string, limit int) ([]dto.MatchResult, error) {
	if limit <= 0 {
		limit = defaultMatchLimit
	}

	profile, err := uc.profileRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}

	// The whole catalog is loaded per request. Fine at current catalog
	// sizes; constraining this to the candidate id set is the known
	// scaling lever.
	scholarships, err := uc.scholarshipRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("load scholarships: %w", err)
	}

	if profile.Embedding == nil {
		values, usedFallback, err := uc.embeddings.Embed(ctx, profileText(string(profile.ProfileData)))
		if err != nil {
			return nil, fmt.Errorf("profile embedding: %w", err)
		}
		if usedFallback {
			uc.logger.Warn("profile embedded with fallback vector, match quality degraded",
				zap.String("user_id", userID))
		}
		embedding := pgvector.NewVector(values)
		if err := uc.profileRepo.SaveEmbedding(profile.ID, embedding); err != nil {
			return nil, fmt.Errorf("persist profile embedding: %w", err)
		}
		profile.Embedding = &embedding
	}

	candidates, err := uc.scholarshipRepo.MatchByEmbedding(*profile.Embedding, matchThreshold, limit*overFetchFactor)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	byID := make(map[uuid.UUID]*model.Scholarship, len(scholarships))
	for i := range scholarships {
		byID[scholarships[i].ID] = &scholarships[i]
	}

	matches := make([]dto.MatchResult, 0, limit)
	for _, candidate := range candidates {
		scholarship, ok := byID[candidate.ID]
		if !ok {
			// The index can briefly reference a row deleted from the
			// store; tolerated, candidate skipped.
			continue
		}

		eligible, reasons := profileEligibility(profile, scholarship)
		if !eligible {
			continue
		}

		matches = append(matches, dto.MatchResult{
			Scholarship: *scholarship,
			Similarity:  candidate.Similarity,
			MatchReason: reasons,
		})
		if len(matches) >= limit {
			break
		}
	}

	return matches, nil
}

// profileEligibility evaluates the hard checks in fixed order (first
// failure wins and is the only reason returned), then collects the
// affirmative reasons for eligible candidates. Unset restrictions count
// as satisfied.
func profileEligibility(profile *model.StudentProfile, scholarship *model.Scholarship) (bool, []string) {
	criteria := scholarship.EligibilityCriteria.Data()
	data := string(profile.ProfileData)
	gpa := parseGPA(gjson.Get(data, "gpa").String())
	educationLevel := gjson.Get(data, "education_level").String()
	major := gjson.Get(data, "major").String()

	if criteria.GPARequirement != "" && gpa < parseGPA(criteria.GPARequirement) {
		return false, []string{reasonGPANotMet}
	}
	if len(criteria.EducationLevel) > 0 && !slices.Contains(criteria.EducationLevel, educationLevel) {
		return false, []string{reasonEducationNotMet}
	}
	if len(criteria.MajorRestrictions) > 0 && !slices.Contains(criteria.MajorRestrictions, major) {
		return false, []string{reasonMajorNotMet}
	}

	reasons := make([]string, 0, 3)
	// A malformed GPA slips past the rejection above (NaN compares false
	// both ways) yet earns no affirmative reason. Kept as-is pending a
	// product decision; see the tests.
	if criteria.GPARequirement == "" || gpa >= parseGPA(criteria.GPARequirement) {
		reasons = append(reasons, reasonGPAMet)
	}
	if len(criteria.EducationLevel) == 0 || slices.Contains(criteria.EducationLevel, educationLevel) {
		reasons = append(reasons, reasonEducationMet)
	}
	if len(criteria.MajorRestrictions) == 0 || slices.Contains(criteria.MajorRestrictions, major) {
		reasons = append(reasons, reasonMajorMet)
	}

	return true, reasons
}

func parseGPA(raw string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return math.NaN()
	}
	return value
}

// profileText flattens profile_data into the text that gets embedded.
// Field order is fixed so repeated syntheses of the same profile are
// identical.
func profileText(data string) string {
	var b strings.Builder
	for _, field := range []struct {
		label string
		path  string
	}{
		{"Major", "major"},
		{"Education level", "education_level"},
		{"GPA", "gpa"},
		{"Institution", "institution"},
		{"Interests", "interests"},
		{"Skills", "skills"},
		{"Achievements", "achievements.#.title"},
	} {
		value := gjson.Get(data, field.path)
		if !value.Exists() {
			continue
		}
		text := value.String()
		if value.IsArray() {
			parts := make([]string, 0, len(value.Array()))
			for _, v := range value.Array() {
				parts = append(parts, v.String())
			}
			text = strings.Join(parts, ", ")
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		fmt.Fprintf(&b, "%s: %s. ", field.label, text)
	}
	return strings.TrimSpace(b.String())
}
