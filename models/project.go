package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Project categories form a closed set; anything else is rejected on
// create/update.
const (
	CategoryDesign   = "design"
	CategoryWebsite  = "website"
	CategoryBranding = "branding"
	CategoryOther    = "other"
)

// Project represents a portfolio case study shown on the public site and
// managed through the admin panel. Images holds Cloudinary delivery URLs;
// CloudinaryIDs holds the public IDs believed to correspond to a subset of
// them and may be incomplete for legacy records.
type Project struct {
	ID            uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	Title         string                      `json:"title" gorm:"type:text;not null"`
	Description   string                      `json:"description" gorm:"type:text;not null;default:''"`
	Link          string                      `json:"link" gorm:"type:text;not null;default:''"`
	Category      string                      `json:"category" gorm:"type:text;index;not null;default:'other'"`
	SubCategory   string                      `json:"subCategory" gorm:"type:text;index;not null;default:''"`
	Tags          datatypes.JSONSlice[string] `json:"tags"`
	Images        datatypes.JSONSlice[string] `json:"images"`
	CoverImage    string                      `json:"coverImage" gorm:"type:text;not null;default:''"`
	CloudinaryIDs datatypes.JSONSlice[string] `json:"cloudinaryIds" gorm:"column:cloudinary_ids"`
	Featured      bool                        `json:"featured" gorm:"not null;default:false"`
	Order         int                         `json:"order" gorm:"column:display_order;not null;default:0"`
	CreatedAt     time.Time                   `json:"createdAt"`
	UpdatedAt     time.Time                   `json:"updatedAt"`
}

// IsValidCategory reports whether c is one of the allowed project categories.
func IsValidCategory(c string) bool {
	switch c {
	case CategoryDesign, CategoryWebsite, CategoryBranding, CategoryOther:
		return true
	}
	return false
}

// EffectiveCover returns the cover image, falling back to the first attached
// image when no cover is set.
func (p *Project) EffectiveCover() string {
	if p.CoverImage != "" {
		return p.CoverImage
	}
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}

// EnsureArrays replaces nil array fields with empty slices. A nil JSONSlice
// serializes to the jsonb scalar null, not to [], and downstream queries that
// unnest images expect an array. Call before persisting a record.
func (p *Project) EnsureArrays() {
	if p.Tags == nil {
		p.Tags = datatypes.JSONSlice[string]{}
	}
	if p.Images == nil {
		p.Images = datatypes.JSONSlice[string]{}
	}
	if p.CloudinaryIDs == nil {
		p.CloudinaryIDs = datatypes.JSONSlice[string]{}
	}
}
