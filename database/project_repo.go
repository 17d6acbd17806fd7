package database

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/cockroach-creatives/studio-backend/models"
)

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

// PublicFilter narrows the public project listing. Zero values mean "no
// filter"; a Category of "all" is treated the same as empty.
type PublicFilter struct {
	Query       string
	Category    string
	SubCategory string
	Page        int
	Limit       int
}

// Normalize clamps pagination to the allowed range: page >= 1, limit between
// 1 and 100 with a default of 48.
func (f *PublicFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 48
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
}

// FindAll returns all projects, newest and highest-ordered first.
func (r *ProjectRepo) FindAll() ([]*models.Project, error) {
	var projects []*models.Project
	err := r.db.Order("display_order DESC, created_at DESC").Find(&projects).Error
	return projects, err
}

// FindByID returns a project by its ID, or (nil, nil) when no row exists.
func (r *ProjectRepo) FindByID(id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.First(&project, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// FindPublic returns one page of projects matching the public site filters,
// plus the total match count.
func (r *ProjectRepo) FindPublic(filter PublicFilter) ([]*models.Project, int64, error) {
	q := r.db.Model(&models.Project{})

	if filter.Category != "" && !strings.EqualFold(filter.Category, "all") {
		q = q.Where("LOWER(category) = LOWER(?)", strings.TrimSpace(filter.Category))
	}
	if filter.SubCategory != "" {
		q = q.Where("LOWER(sub_category) = LOWER(?)", strings.TrimSpace(filter.SubCategory))
	}
	if query := strings.TrimSpace(filter.Query); query != "" {
		pattern := "%" + escapeLike(query) + "%"
		q = q.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	filter.Normalize()

	var projects []*models.Project
	err := q.Order("display_order DESC, created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&projects).Error
	if err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// Add inserts a new project into the database
func (r *ProjectRepo) Add(project *models.Project) error {
	return r.db.Create(project).Error
}

// Update updates an existing project in the database
func (r *ProjectRepo) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

// Delete removes a project from the database by id
func (r *ProjectRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Project{}, "id = ?", id).Error
}

// UpdateImageSet writes a project's images, cloudinary_ids and cover_image in
// one UPDATE statement. Attach and detach both route through here so a crash
// can never land between an array change and the matching cover repair.
func (r *ProjectRepo) UpdateImageSet(id uuid.UUID, images, cloudinaryIDs []string, coverImage string) error {
	return r.db.Model(&models.Project{}).Where("id = ?", id).Updates(map[string]interface{}{
		"images":         datatypes.NewJSONSlice(images),
		"cloudinary_ids": datatypes.NewJSONSlice(cloudinaryIDs),
		"cover_image":    coverImage,
	}).Error
}

// SweepImageReferences removes, across every project, any images entry that
// contains publicID as a substring. One bulk statement; rows whose arrays
// contain no match are untouched. Returns the number of projects modified.
//
// Legacy rows can hold the jsonb scalar null instead of an array, and
// jsonb_array_elements_text errors on scalars; the CASE guard keeps such rows
// out without failing the whole statement.
func (r *ProjectRepo) SweepImageReferences(publicID string) (int64, error) {
	res := r.db.Exec(`
		UPDATE projects
		SET images = COALESCE((
			SELECT jsonb_agg(elem)
			FROM jsonb_array_elements_text(images) AS elem
			WHERE position(? in elem) = 0
		), '[]'::jsonb)
		WHERE EXISTS (
			SELECT 1
			FROM jsonb_array_elements_text(
				CASE WHEN jsonb_typeof(images) = 'array' THEN images ELSE '[]'::jsonb END
			) AS elem
			WHERE position(? in elem) > 0
		)`, publicID, publicID)
	return res.RowsAffected, res.Error
}

// escapeLike escapes the LIKE/ILIKE metacharacters in user-supplied search
// input so it matches literally.
func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
