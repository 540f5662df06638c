package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ffcsa/reports/internal/domain/report"
	"github.com/ffcsa/reports/internal/infrastructure/persistence/models"
)

// GormRunRepository implements report.RunRepository using GORM
type GormRunRepository struct {
	db *gorm.DB
}

// NewGormRunRepository creates a new GormRunRepository
func NewGormRunRepository(db *gorm.DB) *GormRunRepository {
	return &GormRunRepository{db: db}
}

// Create inserts a new run record
func (r *GormRunRepository) Create(ctx context.Context, run *report.Run) error {
	var model models.RunModel
	if err := model.FromDomain(run); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

// Update saves the run's current state
func (r *GormRunRepository) Update(ctx context.Context, run *report.Run) error {
	var model models.RunModel
	if err := model.FromDomain(run); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&models.RunModel{}).
		Where("id = ?", run.ID).
		Select("Trigger", "FulfillmentDate", "Kinds", "Status", "Error", "Artifacts", "StartedAt", "FinishedAt").
		Updates(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return report.ErrRunNotFound
	}
	return nil
}

// FindByID finds a run by ID
func (r *GormRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*report.Run, error) {
	var model models.RunModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, report.ErrRunNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindRecent returns the most recently started runs, newest first
func (r *GormRunRepository) FindRecent(ctx context.Context, limit int) ([]report.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	var runModels []models.RunModel
	if err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&runModels).Error; err != nil {
		return nil, err
	}
	return toDomainRuns(runModels)
}

// FindByDate returns runs for one fulfillment date, newest first
func (r *GormRunRepository) FindByDate(ctx context.Context, fulfillmentDate time.Time) ([]report.Run, error) {
	dayStart := time.Date(fulfillmentDate.Year(), fulfillmentDate.Month(), fulfillmentDate.Day(), 0, 0, 0, 0, fulfillmentDate.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var runModels []models.RunModel
	if err := r.db.WithContext(ctx).
		Where("fulfillment_date >= ? AND fulfillment_date < ?", dayStart, dayEnd).
		Order("started_at DESC").
		Find(&runModels).Error; err != nil {
		return nil, err
	}
	return toDomainRuns(runModels)
}

func toDomainRuns(runModels []models.RunModel) ([]report.Run, error) {
	runs := make([]report.Run, len(runModels))
	for i, model := range runModels {
		run, err := model.ToDomain()
		if err != nil {
			return nil, err
		}
		runs[i] = *run
	}
	return runs, nil
}

// Ensure GormRunRepository implements report.RunRepository
var _ report.RunRepository = (*GormRunRepository)(nil)
