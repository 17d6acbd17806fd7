package database

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cockroach-creatives/studio-backend/models"
)

type EnquiryRepo struct {
	db *gorm.DB
}

func NewEnquiryRepo(db *gorm.DB) *EnquiryRepo {
	return &EnquiryRepo{db}
}

// Add inserts a new enquiry into the database
func (r *EnquiryRepo) Add(enquiry *models.Enquiry) error {
	return r.db.Create(enquiry).Error
}

// FindPage returns one page of enquiries, newest first, plus the total count.
func (r *EnquiryRepo) FindPage(page, limit int) ([]*models.Enquiry, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	var total int64
	if err := r.db.Model(&models.Enquiry{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var enquiries []*models.Enquiry
	err := r.db.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&enquiries).Error
	if err != nil {
		return nil, 0, err
	}
	return enquiries, total, nil
}

// Delete removes an enquiry by id, reporting how many rows matched.
func (r *EnquiryRepo) Delete(id uuid.UUID) (int64, error) {
	res := r.db.Delete(&models.Enquiry{}, "id = ?", id)
	return res.RowsAffected, res.Error
}
