package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"surveylens/internal/model"
)

type AnalysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

func (r *AnalysisRepository) Create(analysis *model.Analysis) error {
	if err := r.db.Create(analysis).Error; err != nil {
		return fmt.Errorf("create analysis failed: %w", err)
	}
	return nil
}

func (r *AnalysisRepository) GetByID(id string) (*model.Analysis, error) {
	var analysis model.Analysis
	if err := r.db.Where("id = ?", id).First(&analysis).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query analysis failed: %w", err)
	}
	return &analysis, nil
}

func (r *AnalysisRepository) ListByUserID(userID uint) ([]model.Analysis, error) {
	var analyses []model.Analysis
	if err := r.db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&analyses).Error; err != nil {
		return nil, fmt.Errorf("list analyses failed: %w", err)
	}
	return analyses, nil
}

// Save writes the full record back. Concurrent updates to the same
// analysis are last-writer-wins; there is no version check.
func (r *AnalysisRepository) Save(analysis *model.Analysis) error {
	if err := r.db.Save(analysis).Error; err != nil {
		return fmt.Errorf("save analysis failed: %w", err)
	}
	return nil
}

func (r *AnalysisRepository) DeleteByID(id string) error {
	if err := r.db.Where("id = ?", id).Delete(&model.Analysis{}).Error; err != nil {
		return fmt.Errorf("delete analysis failed: %w", err)
	}
	return nil
}
