package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"surveylens/internal/model"
)

type UploadRepository struct {
	db *gorm.DB
}

func NewUploadRepository(db *gorm.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

func (r *UploadRepository) Create(upload *model.CSVUpload) error {
	if err := r.db.Create(upload).Error; err != nil {
		return fmt.Errorf("create csv upload failed: %w", err)
	}
	return nil
}

// GetByID fetches without an owner filter; the ownership decision lives in
// the service layer where it can be tested on its own.
func (r *UploadRepository) GetByID(id string) (*model.CSVUpload, error) {
	var upload model.CSVUpload
	if err := r.db.Where("id = ?", id).First(&upload).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query csv upload failed: %w", err)
	}
	return &upload, nil
}

func (r *UploadRepository) ListByUserID(userID uint) ([]model.CSVUpload, error) {
	var uploads []model.CSVUpload
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&uploads).Error; err != nil {
		return nil, fmt.Errorf("list csv uploads failed: %w", err)
	}
	return uploads, nil
}

func (r *UploadRepository) DeleteByID(id string) error {
	if err := r.db.Where("id = ?", id).Delete(&model.CSVUpload{}).Error; err != nil {
		return fmt.Errorf("delete csv upload failed: %w", err)
	}
	return nil
}
