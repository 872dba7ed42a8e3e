package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/riskledger/backend/internal/domain/dispute"
	"github.com/riskledger/backend/internal/domain/shared"
	"github.com/riskledger/backend/internal/infrastructure/persistence/models"
)

// GormDisputeRecordRepository implements dispute.RecordRepository using GORM
type GormDisputeRecordRepository struct {
	db *gorm.DB
}

// NewGormDisputeRecordRepository creates a new GormDisputeRecordRepository
func NewGormDisputeRecordRepository(db *gorm.DB) *GormDisputeRecordRepository {
	return &GormDisputeRecordRepository{db: db}
}

// FindByOrderNos loads existing records for a batch of order numbers
func (r *GormDisputeRecordRepository) FindByOrderNos(ctx context.Context, ownerID uuid.UUID, orderNos []string) (map[string]*dispute.DisputeRecord, error) {
	result := make(map[string]*dispute.DisputeRecord, len(orderNos))
	if len(orderNos) == 0 {
		return result, nil
	}

	var recordModels []models.DisputeRecordModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND order_no IN ?", ownerID, orderNos).
		Find(&recordModels).Error; err != nil {
		return nil, err
	}

	for i := range recordModels {
		record := recordModels[i].ToDomain()
		result[record.OrderNo] = record
	}
	return result, nil
}

// FindByOrderNo loads a single record for an owner
func (r *GormDisputeRecordRepository) FindByOrderNo(ctx context.Context, ownerID uuid.UUID, orderNo string) (*dispute.DisputeRecord, error) {
	var model models.DisputeRecordModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND order_no = ?", ownerID, orderNo).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForOwner lists records for an owner with pagination.
// Filters: "category" matches the snapshot category, "quarantined" (bool)
// narrows to or excludes the INVALID bucket, "dispute_state" matches the
// persisted state label.
func (r *GormDisputeRecordRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (shared.Paginated[*dispute.DisputeRecord], error) {
	base := r.db.WithContext(ctx).
		Model(&models.DisputeRecordModel{}).
		Where("owner_id = ?", ownerID)
	base = applyRecordFilters(base, filter)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return shared.Paginated[*dispute.DisputeRecord]{}, err
	}

	var recordModels []models.DisputeRecordModel
	query := base.
		Order(recordOrderClause(filter)).
		Limit(filter.Limit()).
		Offset(filter.Offset())
	if err := query.Find(&recordModels).Error; err != nil {
		return shared.Paginated[*dispute.DisputeRecord]{}, err
	}

	records := make([]*dispute.DisputeRecord, len(recordModels))
	for i := range recordModels {
		records[i] = recordModels[i].ToDomain()
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	return shared.NewPaginated(records, total, page, filter.Limit()), nil
}

// CountForOwner counts all records for an owner
func (r *GormDisputeRecordRepository) CountForOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.DisputeRecordModel{}).
		Where("owner_id = ?", ownerID).
		Count(&total).Error
	return total, err
}

// UpsertBatch writes a batch of records in one statement, inserting new order
// numbers and replacing existing rows on the (owner_id, order_no) key. The
// whole batch lands or none of it does.
func (r *GormDisputeRecordRepository) UpsertBatch(ctx context.Context, records []*dispute.DisputeRecord) error {
	if len(records) == 0 {
		return nil
	}

	recordModels := make([]models.DisputeRecordModel, len(records))
	for i, record := range records {
		recordModels[i] = *models.DisputeRecordModelFromDomain(record)
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "owner_id"}, {Name: "order_no"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"dispute_state", "risk_label", "sources", "snapshot",
			"last_imported_at", "version", "updated_at",
		}),
	}).Create(&recordModels).Error
}

// PurgeForOwner deletes every record for an owner
func (r *GormDisputeRecordRepository) PurgeForOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Delete(&models.DisputeRecordModel{})
	return result.RowsAffected, result.Error
}

func applyRecordFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if category, ok := filter.Filters["category"].(string); ok && category != "" {
		query = query.Where("snapshot->>'category' = ?", category)
	}
	if quarantined, ok := filter.Filters["quarantined"].(bool); ok {
		if quarantined {
			query = query.Where("snapshot->>'category' = ?", dispute.CategoryInvalid.String())
		} else {
			query = query.Where("snapshot->>'category' <> ?", dispute.CategoryInvalid.String())
		}
	}
	if state, ok := filter.Filters["dispute_state"].(string); ok && state != "" {
		query = query.Where("dispute_state = ?", state)
	}
	return query
}

// recordOrderClause whitelists sortable columns to keep ORDER BY injection-safe
func recordOrderClause(filter shared.Filter) string {
	column := "last_imported_at"
	switch filter.OrderBy {
	case "order_no", "created_at", "updated_at", "last_imported_at", "dispute_state":
		column = filter.OrderBy
	}
	dir := "desc"
	if filter.OrderDir == "asc" {
		dir = "asc"
	}
	return column + " " + dir
}
