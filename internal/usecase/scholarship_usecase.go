package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/devanshmehta/scholarmatch/internal/dto"
	"github.com/devanshmehta/scholarmatch/internal/model"
	"github.com/devanshmehta/scholarmatch/internal/repository"
	"github.com/devanshmehta/scholarmatch/internal/response"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const (
	searchThreshold = 0.7
	searchLimit     = 10
	backfillWorkers = 4
)

type scholarshipRepository interface {
	GetAll() ([]model.Scholarship, error)
	GetPage(page, pageSize int) ([]model.Scholarship, int64, error)
	FindByID(id string) (*model.Scholarship, error)
	Create(scholarship *model.Scholarship) error
	Update(scholarship *model.Scholarship) error
	Delete(id string) error
	Filter(filter model.ScholarshipFilter) ([]model.Scholarship, error)
	SearchByEmbedding(embedding pgvector.Vector, threshold float64, limit int) ([]repository.ScholarshipWithSimilarity, error)
	SaveEmbedding(id uuid.UUID, embedding pgvector.Vector) error
}

type ScholarshipUsecase struct {
	repo       scholarshipRepository
	embeddings embedder
	logger     *zap.Logger
}

func NewScholarshipUsecase(repo scholarshipRepository, embeddings embedder, logger *zap.Logger) *ScholarshipUsecase {
	return &ScholarshipUsecase{repo: repo, embeddings: embeddings, logger: logger}
}

func (uc *ScholarshipUsecase) List(page, pageSize int) ([]model.Scholarship, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	scholarships, total, err := uc.repo.GetPage(page, pageSize)
	if err != nil {
		return nil, nil, err
	}

	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)
	from := (page-1)*pageSize + 1
	if len(scholarships) == 0 {
		from = 0
	}
	pagination := &response.Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		TotalItems: total,
		HasMore:    int64(page) < totalPages,
		From:       from,
		To:         (page-1)*pageSize + len(scholarships),
	}
	return scholarships, pagination, nil
}

func (uc *ScholarshipUsecase) Get(id string) (*model.Scholarship, error) {
	return uc.repo.FindByID(id)
}

// Create embeds title+description before inserting. An embedding failure
// is logged and the row stored without a vector (the backfill endpoint
// repairs it); the original system tolerated null embeddings the same
// way.
func (uc *ScholarshipUsecase) Create(ctx context.Context, scholarship *model.Scholarship) error {
	if scholarship.Status == "" {
		scholarship.Status = model.StatusNew
	}
	scholarship.CreatedAt = time.Now()
	scholarship.UpdatedAt = time.Now()

	uc.embedInto(ctx, scholarship)

	return uc.repo.Create(scholarship)
}

func (uc *ScholarshipUsecase) Update(ctx context.Context, id string, req dto.ScholarshipUpdateRequest) (*model.Scholarship, error) {
	scholarship, err := uc.repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	embeddedTextChanged := false
	if req.Title != nil && *req.Title != scholarship.Title {
		scholarship.Title = *req.Title
		embeddedTextChanged = true
	}
	if req.Description != nil && *req.Description != scholarship.Description {
		scholarship.Description = *req.Description
		embeddedTextChanged = true
	}
	if req.Amount != nil {
		scholarship.Amount = *req.Amount
	}
	if req.Deadline != nil {
		scholarship.Deadline = *req.Deadline
	}
	if req.Category != nil {
		scholarship.Category = *req.Category
	}
	if req.Status != nil {
		scholarship.Status = *req.Status
	}
	if req.EligibilityCriteria != nil {
		scholarship.EligibilityCriteria = datatypes.NewJSONType(*req.EligibilityCriteria)
	}
	if req.Requirements != nil {
		scholarship.Requirements = datatypes.NewJSONSlice(*req.Requirements)
	}
	scholarship.UpdatedAt = time.Now()

	if embeddedTextChanged {
		uc.embedInto(ctx, scholarship)
	}

	if err := uc.repo.Update(scholarship); err != nil {
		return nil, err
	}
	return scholarship, nil
}

func (uc *ScholarshipUsecase) Delete(id string) error {
	return uc.repo.Delete(id)
}

func (uc *ScholarshipUsecase) Filter(filter model.ScholarshipFilter) ([]model.Scholarship, error) {
	return uc.repo.Filter(filter)
}

// Search runs a semantic query over the catalog.
func (uc *ScholarshipUsecase) Search(ctx context.Context, query string) ([]repository.ScholarshipWithSimilarity, error) {
	values, usedFallback, err := uc.embeddings.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}
	if usedFallback {
		uc.logger.Warn("search query embedded with fallback vector", zap.String("query", query))
	}
	return uc.repo.SearchByEmbedding(pgvector.NewVector(values), searchThreshold, searchLimit)
}

// BackfillEmbeddings regenerates every scholarship embedding on a worker
// pool. Rows touch disjoint ids, so no coordination beyond the WaitGroup
// is needed.
func (uc *ScholarshipUsecase) BackfillEmbeddings(ctx context.Context) (int, int, error) {
	scholarships, err := uc.repo.GetAll()
	if err != nil {
		return 0, 0, err
	}

	pool, err := ants.NewPool(backfillWorkers)
	if err != nil {
		return 0, 0, err
	}
	defer pool.Release()

	var wg sync.WaitGroup
	var updated, failed int64
	for i := range scholarships {
		scholarship := &scholarships[i]
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			values, usedFallback, err := uc.embeddings.Embed(ctx, embeddingText(scholarship))
			if err != nil {
				atomic.AddInt64(&failed, 1)
				uc.logger.Warn("backfill embedding failed",
					zap.String("scholarship_id", scholarship.ID.String()), zap.Error(err))
				return
			}
			if usedFallback {
				uc.logger.Warn("backfilled with fallback vector",
					zap.String("scholarship_id", scholarship.ID.String()))
			}
			if err := uc.repo.SaveEmbedding(scholarship.ID, pgvector.NewVector(values)); err != nil {
				atomic.AddInt64(&failed, 1)
				uc.logger.Warn("backfill save failed",
					zap.String("scholarship_id", scholarship.ID.String()), zap.Error(err))
				return
			}
			atomic.AddInt64(&updated, 1)
		})
		if submitErr != nil {
			wg.Done()
			atomic.AddInt64(&failed, 1)
		}
	}
	wg.Wait()

	uc.logger.Info("embedding backfill finished",
		zap.Int64("updated", updated), zap.Int64("failed", failed))
	return int(updated), int(failed), nil
}

func (uc *ScholarshipUsecase) embedInto(ctx context.Context, scholarship *model.Scholarship) {
	values, usedFallback, err := uc.embeddings.Embed(ctx, embeddingText(scholarship))
	if err != nil {
		uc.logger.Warn("scholarship embedding failed, storing without vector",
			zap.String("title", scholarship.Title), zap.Error(err))
		scholarship.VectorEmbedding = nil
		return
	}
	if usedFallback {
		uc.logger.Warn("scholarship embedded with fallback vector",
			zap.String("title", scholarship.Title))
	}
	embedding := pgvector.NewVector(values)
	scholarship.VectorEmbedding = &embedding
}

func embeddingText(scholarship *model.Scholarship) string {
	return scholarship.Title + " " + scholarship.Description
}
