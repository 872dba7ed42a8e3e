package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/riskledger/backend/internal/domain/bulk"
	"github.com/riskledger/backend/internal/domain/shared"
	"github.com/riskledger/backend/internal/infrastructure/persistence/models"
)

// GormImportRunRepository implements bulk.ImportRunRepository using GORM
type GormImportRunRepository struct {
	db *gorm.DB
}

// NewGormImportRunRepository creates a new GormImportRunRepository
func NewGormImportRunRepository(db *gorm.DB) *GormImportRunRepository {
	return &GormImportRunRepository{db: db}
}

// Save inserts a new import run
func (r *GormImportRunRepository) Save(ctx context.Context, run *bulk.ImportRun) error {
	model := models.ImportRunModelFromDomain(run)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update persists changes to an existing import run
func (r *GormImportRunRepository) Update(ctx context.Context, run *bulk.ImportRun) error {
	model := models.ImportRunModelFromDomain(run)
	result := r.db.WithContext(ctx).
		Model(&models.ImportRunModel{}).
		Where("id = ? AND owner_id = ?", model.ID, model.OwnerID).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID loads one import run for an owner
func (r *GormImportRunRepository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*bulk.ImportRun, error) {
	var model models.ImportRunModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForOwner lists import runs for an owner, newest first
func (r *GormImportRunRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (shared.Paginated[*bulk.ImportRun], error) {
	base := r.db.WithContext(ctx).
		Model(&models.ImportRunModel{}).
		Where("owner_id = ?", ownerID)

	if source, ok := filter.Filters["source"].(string); ok && source != "" {
		base = base.Where("source = ?", source)
	}
	if status, ok := filter.Filters["status"].(string); ok && status != "" {
		base = base.Where("status = ?", status)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return shared.Paginated[*bulk.ImportRun]{}, err
	}

	var runModels []models.ImportRunModel
	if err := base.
		Order("created_at desc").
		Limit(filter.Limit()).
		Offset(filter.Offset()).
		Find(&runModels).Error; err != nil {
		return shared.Paginated[*bulk.ImportRun]{}, err
	}

	runs := make([]*bulk.ImportRun, len(runModels))
	for i := range runModels {
		runs[i] = runModels[i].ToDomain()
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	return shared.NewPaginated(runs, total, page, filter.Limit()), nil
}
