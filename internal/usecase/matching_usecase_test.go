package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/devanshmehta/scholarmatch/internal/apperror"
	"github.com/devanshmehta/scholarmatch/internal/model"
	"github.com/devanshmehta/scholarmatch/internal/repository"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type stubProfileRepo struct {
	profile    *model.StudentProfile
	findErr    error
	saveCalls  int
	savedValue *pgvector.Vector
}

func (s *stubProfileRepo) FindByUserID(userID string) (*model.StudentProfile, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.profile, nil
}

func (s *stubProfileRepo) SaveEmbedding(id uuid.UUID, embedding pgvector.Vector) error {
	s.saveCalls++
	s.savedValue = &embedding
	return nil
}

type stubScholarshipRepo struct {
	scholarships  []model.Scholarship
	matches       []repository.ScholarshipMatch
	matchCalls    int
	lastThreshold float64
	lastLimit     int
}

func (s *stubScholarshipRepo) GetAll() ([]model.Scholarship, error) {
	return s.scholarships, nil
}

func (s *stubScholarshipRepo) MatchByEmbedding(embedding pgvector.Vector, threshold float64, limit int) ([]repository.ScholarshipMatch, error) {
	s.matchCalls++
	s.lastThreshold = threshold
	s.lastLimit = limit
	return s.matches, nil
}

type stubEmbedder struct {
	calls        int
	values       []float32
	usedFallback bool
	err          error
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, bool, error) {
	s.calls++
	if s.err != nil {
		return nil, false, s.err
	}
	return s.values, s.usedFallback, nil
}

func testProfile(data string, withEmbedding bool) *model.StudentProfile {
	profile := &model.StudentProfile{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		ProfileData: datatypes.JSON(data),
	}
	if withEmbedding {
		embedding := pgvector.NewVector(make([]float32, 1536))
		profile.Embedding = &embedding
	}
	return profile
}

func testScholarship(title string, criteria model.EligibilityCriteria) model.Scholarship {
	return model.Scholarship{
		ID:                  uuid.New(),
		Title:               title,
		Description:         "A test scholarship",
		Status:              model.StatusAvailable,
		EligibilityCriteria: datatypes.NewJSONType(criteria),
	}
}

func newTestUsecase(profiles *stubProfileRepo, scholarships *stubScholarshipRepo, embedder *stubEmbedder) *MatchingUsecase {
	return NewMatchingUsecase(profiles, scholarships, embedder, zap.NewNop())
}

func TestFindMatchesProfileNotFound(t *testing.T) {
	profiles := &stubProfileRepo{findErr: fmt.Errorf("student profile: %w", apperror.ErrNotFound)}
	scholarships := &stubScholarshipRepo{}
	uc := newTestUsecase(profiles, scholarships, &stubEmbedder{})

	_, err := uc.FindMatches(context.Background(), uuid.NewString(), 10)

	require.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Zero(t, scholarships.matchCalls, "similarity index must not be queried without a profile")
}

func TestFindMatchesComputesEmbeddingOnce(t *testing.T) {
	profiles := &stubProfileRepo{profile: testProfile(`{"gpa":"3.8","major":"Physics","education_level":"undergraduate"}`, false)}
	scholarships := &stubScholarshipRepo{}
	embedder := &stubEmbedder{values: make([]float32, 1536)}
	uc := newTestUsecase(profiles, scholarships, embedder)

	_, err := uc.FindMatches(context.Background(), uuid.NewString(), 10)

	require.NoError(t, err)
	assert.Equal(t, 1, embedder.calls)
	assert.Equal(t, 1, profiles.saveCalls, "computed embedding must be persisted")
	require.NotNil(t, profiles.savedValue)
	assert.Len(t, profiles.savedValue.Slice(), 1536)
}

func TestFindMatchesUsesCachedEmbedding(t *testing.T) {
	profiles := &stubProfileRepo{profile: testProfile(`{"gpa":"3.8"}`, true)}
	embedder := &stubEmbedder{}
	uc := newTestUsecase(profiles, &stubScholarshipRepo{}, embedder)

	_, err := uc.FindMatches(context.Background(), uuid.NewString(), 10)

	require.NoError(t, err)
	assert.Zero(t, embedder.calls, "cached embedding must not be recomputed")
	assert.Zero(t, profiles.saveCalls)
}

func TestFindMatchesGPARejection(t *testing.T) {
	restricted := testScholarship("STEM Excellence", model.EligibilityCriteria{GPARequirement: "3.5"})
	profiles := &stubProfileRepo{profile: testProfile(`{"gpa":"3.2","major":"Physics","education_level":"undergraduate"}`, true)}
	scholarships := &stubScholarshipRepo{
		scholarships: []model.Scholarship{restricted},
		matches:      []repository.ScholarshipMatch{{ID: restricted.ID, Similarity: 0.92}},
	}
	uc := newTestUsecase(profiles, scholarships, &stubEmbedder{})

	matches, err := uc.FindMatches(context.Background(), uuid.NewString(), 10)

	require.NoError(t, err)
	assert.Empty(t, matches)

	eligible, reasons := profileEligibility(profiles.profile, &restricted)
	assert.False(t, eligible)
	assert.Equal(t, []string{"GPA requirement not met"}, reasons)
}

func TestProfileEligibilityShortCircuitOrder(t *testing.T) {
	scholarship := testScholarship("Ordered", model.EligibilityCriteria{
		GPARequirement:    "3.9",
		EducationLevel:    []string{"graduate"},
		MajorRestrictions: []string{"Law"},
	})
	profile := testProfile(`{"gpa":"2.0","major":"Physics","education_level":"undergraduate"}`, true)

	eligible, reasons := profileEligibility(profile, &scholarship)

	require.False(t, eligible)
	assert.Equal(t, []string{"GPA requirement not met"}, reasons, "first failing check wins")
}

func TestProfileEligibilityEducationRejection(t *testing.T) {
	scholarship := testScholarship("Grad Only", model.EligibilityCriteria{
		EducationLevel: []string{"graduate", "doctorate"},
	})
	profile := testProfile(`{"gpa":"3.9","major":"Physics","education_level":"undergraduate"}`, true)

	eligible, reasons := profileEligibility(profile, &scholarship)

	require.False(t, eligible)
	assert.Equal(t, []string{"Education level requirement not met"}, reasons)
}

func TestProfileEligibilityEmptyRestrictions(t *testing.T) {
	scholarship := testScholarship("Open", model.EligibilityCriteria{})
	profile := testProfile(`{"gpa":"2.1","major":"Anything","education_level":"high_school"}`, true)

	eligible, reasons := profileEligibility(profile, &scholarship)

	require.True(t, eligible)
	assert.Contains(t, reasons, "Meets GPA requirement")
	assert.Contains(t, reasons, "Matches education level")
	assert.Contains(t, reasons, "Matches major requirements")
}

func TestProfileEligibilityMalformedGPA(t *testing.T) {
	// NaN comparisons are false both ways: a malformed GPA passes the
	// hard rejection yet earns no affirmative reason.
	scholarship := testScholarship("GPA Gate", model.EligibilityCriteria{GPARequirement: "3.0"})
	profile := testProfile(`{"gpa":"N/A","major":"Physics","education_level":"undergraduate"}`, true)

	eligible, reasons := profileEligibility(profile, &scholarship)

	require.True(t, eligible)
	assert.NotContains(t, reasons, "Meets GPA requirement")
	assert.Equal(t, []string{"Matches education level", "Matches major requirements"}, reasons)
}

func TestFindMatchesLimitAndOrdering(t *testing.T) {
	profiles := &stubProfileRepo{profile: testProfile(`{"gpa":"3.9","major":"Physics","education_level":"undergraduate"}`, true)}

	var universe []model.Scholarship
	var hits []repository.ScholarshipMatch
	for i := 0; i < 8; i++ {
		s := testScholarship(fmt.Sprintf("Scholarship %d", i), model.EligibilityCriteria{})
		universe = append(universe, s)
		hits = append(hits, repository.ScholarshipMatch{ID: s.ID, Similarity: 0.95 - float64(i)*0.02})
	}
	scholarships := &stubScholarshipRepo{scholarships: universe, matches: hits}
	uc := newTestUsecase(profiles, scholarships, &stubEmbedder{})

	matches, err := uc.FindMatches(context.Background(), uuid.NewString(), 5)

	require.NoError(t, err)
	require.Len(t, matches, 5)
	assert.Equal(t, 0.7, scholarships.lastThreshold)
	assert.Equal(t, 10, scholarships.lastLimit, "over-fetch is 2x the requested limit")
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Similarity, matches[i].Similarity)
	}
	assert.Equal(t, "Scholarship 4", matches[4].Scholarship.Title, "evaluation stops at the limit")
}

func TestFindMatchesSkipsMissingScholarship(t *testing.T) {
	known := testScholarship("Known", model.EligibilityCriteria{})
	profiles := &stubProfileRepo{profile: testProfile(`{"gpa":"3.9"}`, true)}
	scholarships := &stubScholarshipRepo{
		scholarships: []model.Scholarship{known},
		matches: []repository.ScholarshipMatch{
			{ID: uuid.New(), Similarity: 0.99}, // stale index entry
			{ID: known.ID, Similarity: 0.8},
		},
	}
	uc := newTestUsecase(profiles, scholarships, &stubEmbedder{})

	matches, err := uc.FindMatches(context.Background(), uuid.NewString(), 10)

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Known", matches[0].Scholarship.Title)
}

func TestFindMatchesMixedEligibility(t *testing.T) {
	open := testScholarship("Open", model.EligibilityCriteria{})
	gated := testScholarship("Gated", model.EligibilityCriteria{GPARequirement: "3.9"})
	profiles := &stubProfileRepo{profile: testProfile(`{"gpa":"3.0","major":"CS","education_level":"undergraduate"}`, true)}
	scholarships := &stubScholarshipRepo{
		scholarships: []model.Scholarship{open, gated},
		matches: []repository.ScholarshipMatch{
			{ID: gated.ID, Similarity: 0.9},
			{ID: open.ID, Similarity: 0.85},
		},
	}
	uc := newTestUsecase(profiles, scholarships, &stubEmbedder{})

	matches, err := uc.FindMatches(context.Background(), uuid.NewString(), 10)

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Open", matches[0].Scholarship.Title)
	assert.Equal(t, 0.85, matches[0].Similarity)
}

func TestProfileText(t *testing.T) {
	data := `{"major":"Physics","education_level":"undergraduate","gpa":"3.8","interests":["space","robotics"]}`

	text := profileText(data)
	assert.Equal(t, "Major: Physics. Education level: undergraduate. GPA: 3.8. Interests: space, robotics.", text)

	// Same input, same synthesized text.
	assert.Equal(t, text, profileText(data))
}
