package repository

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/devanshmehta/scholarmatch/internal/apperror"
	"github.com/devanshmehta/scholarmatch/internal/model"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// ScholarshipMatch is one similarity-index hit: just the row id and its
// cosine similarity. The caller resolves the full record separately.
type ScholarshipMatch struct {
	ID         uuid.UUID `json:"id"`
	Similarity float64   `json:"similarity"`
}

// ScholarshipWithSimilarity is a full record annotated with the
// similarity of a semantic search query.
type ScholarshipWithSimilarity struct {
	model.Scholarship
	Similarity float64 `json:"similarity"`
}

type ScholarshipRepository struct {
	db *gorm.DB
}

func NewScholarshipRepository(db *gorm.DB) *ScholarshipRepository {
	return &ScholarshipRepository{db}
}

func (r *ScholarshipRepository) GetAll() ([]model.Scholarship, error) {
	var scholarships []model.Scholarship
	err := r.db.Order("created_at desc").Find(&scholarships).Error
	return scholarships, err
}

func (r *ScholarshipRepository) GetPage(page, pageSize int) ([]model.Scholarship, int64, error) {
	var total int64
	if err := r.db.Model(&model.Scholarship{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var scholarships []model.Scholarship
	err := r.db.Order("created_at desc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&scholarships).Error
	return scholarships, total, err
}

func (r *ScholarshipRepository) FindByID(id string) (*model.Scholarship, error) {
	var scholarship model.Scholarship
	err := r.db.First(&scholarship, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("scholarship %s: %w", id, apperror.ErrNotFound)
	}
	return &scholarship, err
}

func (r *ScholarshipRepository) Create(scholarship *model.Scholarship) error {
	return r.db.Create(scholarship).Error
}

func (r *ScholarshipRepository) Update(scholarship *model.Scholarship) error {
	return r.db.Save(scholarship).Error
}

func (r *ScholarshipRepository) Delete(id string) error {
	result := r.db.Delete(&model.Scholarship{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("scholarship %s: %w", id, apperror.ErrNotFound)
	}
	return nil
}

// SaveEmbedding writes only the vector column, used by the backfill job.
func (r *ScholarshipRepository) SaveEmbedding(id uuid.UUID, embedding pgvector.Vector) error {
	return r.db.Model(&model.Scholarship{}).
		Where("id = ?", id).
		Update("vector_embedding", embedding).Error
}

// MatchByEmbedding returns ids above the cosine similarity threshold,
// best first. pgvector's <=> is cosine distance, so similarity is
// 1 - distance.
func (r *ScholarshipRepository) MatchByEmbedding(embedding pgvector.Vector, threshold float64, limit int) ([]ScholarshipMatch, error) {
	var matches []ScholarshipMatch
	err := r.db.Raw(`
        SELECT id, 1 - (vector_embedding <=> ?) AS similarity
        FROM scholarships
        WHERE vector_embedding IS NOT NULL
          AND 1 - (vector_embedding <=> ?) > ?
        ORDER BY similarity DESC
        LIMIT ?
    `, embedding, embedding, threshold, limit).Scan(&matches).Error
	return matches, err
}

// SearchByEmbedding is the semantic-search variant returning full rows.
func (r *ScholarshipRepository) SearchByEmbedding(embedding pgvector.Vector, threshold float64, limit int) ([]ScholarshipWithSimilarity, error) {
	var results []ScholarshipWithSimilarity
	err := r.db.Raw(`
        SELECT *, 1 - (vector_embedding <=> ?) AS similarity
        FROM scholarships
        WHERE vector_embedding IS NOT NULL
          AND 1 - (vector_embedding <=> ?) > ?
        ORDER BY similarity DESC
        LIMIT ?
    `, embedding, embedding, threshold, limit).Scan(&results).Error
	return results, err
}

// Filter applies the structured filter. Set filters use jsonb containment
// (the stored criteria array must be contained by the requested set),
// matching the behavior of the original filter UI queries.
func (r *ScholarshipRepository) Filter(filter model.ScholarshipFilter) ([]model.Scholarship, error) {
	query := r.db.Model(&model.Scholarship{})

	for _, f := range []struct {
		key    string
		values []string
	}{
		{"caste", filter.Caste},
		{"type", filter.Type},
		{"religion", filter.Religion},
		{"institutionType", filter.InstitutionType},
		{"education_level", filter.EducationLevel},
	} {
		if len(f.values) == 0 {
			continue
		}
		encoded, err := json.Marshal(f.values)
		if err != nil {
			return nil, err
		}
		query = query.Where(
			fmt.Sprintf("coalesce(eligibility_criteria->'%s', '[]'::jsonb) <@ ?::jsonb", f.key),
			string(encoded),
		)
	}
	if filter.State != "" && filter.State != "All States" {
		query = query.Where("eligibility_criteria->>'state' = ?", filter.State)
	}
	if filter.MinAmount != nil {
		query = query.Where("amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("amount <= ?", *filter.MaxAmount)
	}
	if filter.Deadline != nil {
		query = query.Where("deadline <= ?", *filter.Deadline)
	}
	if len(filter.Status) > 0 {
		query = query.Where("status IN ?", filter.Status)
	}

	var scholarships []model.Scholarship
	err := query.Order("created_at desc").Find(&scholarships).Error
	return scholarships, err
}
