package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/cockroach-creatives/studio-backend/errs"
	"github.com/cockroach-creatives/studio-backend/models"
)

// ProjectStore is the slice of the project repository the sync logic needs.
type ProjectStore interface {
	FindByID(id uuid.UUID) (*models.Project, error)
	UpdateImageSet(id uuid.UUID, images, cloudinaryIDs []string, coverImage string) error
	SweepImageReferences(publicID string) (int64, error)
}

// MediaStore deletes remote media objects by public ID and returns the
// service's outcome tag.
type MediaStore interface {
	Destroy(ctx context.Context, publicID string) (string, error)
}

// ImageSync keeps a project's images/coverImage/cloudinaryIds fields
// consistent with the remotely hosted media. The project record is the source
// of truth for what is attached: local writes are single atomic updates and
// always win, remote deletion is best effort with per-item failure isolation.
type ImageSync struct {
	projects ProjectStore
	media    MediaStore
	logger   zerolog.Logger
}

func NewImageSync(projects ProjectStore, media MediaStore) *ImageSync {
	logger := log.With().Str("serviceName", "imageSync").Logger()
	return &ImageSync{
		projects: projects,
		media:    media,
		logger:   logger,
	}
}

// ImageRemoval is the per-URL outcome of a detach batch.
type ImageRemoval struct {
	URL      string  `json:"url"`
	PublicID *string `json:"public_id"`
	Success  bool    `json:"success"`
	Error    string  `json:"error,omitempty"`
}

// DetachResult reports a detach operation. RemovedFromProject counts entries
// actually removed from the record; Cloudinary carries the remote outcomes
// and is empty when remote deletion was not requested.
type DetachResult struct {
	Success            bool           `json:"success"`
	RemovedFromProject int            `json:"removedFromProject"`
	Cloudinary         []ImageRemoval `json:"cloudinary"`
}

// AttachImages merges the given URLs into the project's images and the given
// public IDs into its cloudinaryIds, both deduplicated with first-appearance
// order preserved. If the project has no cover afterwards, the first image
// becomes the cover. The merge lands as one write; no partial mutation is
// visible on failure.
func (s *ImageSync) AttachImages(id uuid.UUID, urls, publicIDs []string) (*models.Project, error) {
	if len(urls) == 0 && len(publicIDs) == 0 {
		return nil, errs.NewBadRequestError("images or public_ids array required")
	}

	project, err := s.projects.FindByID(id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "project", err)
	}
	if project == nil {
		return nil, errs.NewNotFound("project")
	}

	images := mergeUnique(project.Images, urls)
	cloudinaryIDs := mergeUnique(project.CloudinaryIDs, publicIDs)
	cover := project.CoverImage
	if cover == "" && len(images) > 0 {
		cover = images[0]
	}

	if err := s.projects.UpdateImageSet(id, images, cloudinaryIDs, cover); err != nil {
		return nil, errs.NewDatabaseError("attach images to", "project", err)
	}

	project.Images = images
	project.CloudinaryIDs = cloudinaryIDs
	project.CoverImage = cover
	return project, nil
}

// DetachImages removes the given URLs from the project (exact string match)
// and, when deleteRemote is set, best-effort deletes the underlying media
// objects. Local removal and cover repair land in one write before any remote
// call; a failed remote deletion never rolls the local detach back.
func (s *ImageSync) DetachImages(ctx context.Context, id uuid.UUID, urls []string, deleteRemote bool) (*DetachResult, error) {
	if len(urls) == 0 {
		return nil, errs.NewBadRequestError("no images provided")
	}

	project, err := s.projects.FindByID(id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "project", err)
	}
	if project == nil {
		return nil, errs.NewNotFound("project")
	}

	removeSet := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		removeSet[u] = struct{}{}
	}

	remaining := make([]string, 0, len(project.Images))
	for _, img := range project.Images {
		if _, gone := removeSet[img]; !gone {
			remaining = append(remaining, img)
		}
	}
	removed := len(project.Images) - len(remaining)

	cover := project.CoverImage
	if _, gone := removeSet[cover]; gone && cover != "" {
		cover = ""
		if len(remaining) > 0 {
			cover = remaining[0]
		}
	}

	if err := s.projects.UpdateImageSet(id, remaining, project.CloudinaryIDs, cover); err != nil {
		return nil, errs.NewDatabaseError("detach images from", "project", err)
	}

	result := &DetachResult{
		Success:            true,
		RemovedFromProject: removed,
		Cloudinary:         []ImageRemoval{},
	}
	if !deleteRemote {
		return result, nil
	}

	// Remote deletions are independent per URL: a failed item is recorded
	// and the rest of the batch continues.
	removals := make([]ImageRemoval, len(urls))
	var g errgroup.Group
	for i, u := range urls {
		g.Go(func() error {
			publicID, ok := ResolvePublicID(project.CloudinaryIDs, u)
			if !ok {
				removals[i] = ImageRemoval{URL: u, Error: errs.ErrUnresolvableReference.Error()}
				return nil
			}
			outcome, err := s.media.Destroy(ctx, publicID)
			if err != nil {
				removals[i] = ImageRemoval{URL: u, PublicID: &publicID, Error: err.Error()}
				return nil
			}
			if !DestroySucceeded(outcome) {
				removals[i] = ImageRemoval{URL: u, PublicID: &publicID, Error: fmt.Sprintf("delete failed: %s", outcome)}
				return nil
			}
			removals[i] = ImageRemoval{URL: u, PublicID: &publicID, Success: true}
			return nil
		})
	}
	g.Wait()
	result.Cloudinary = removals

	s.pruneCloudinaryIDs(id, project.CloudinaryIDs, remaining, cover, removals)
	return result, nil
}

// pruneCloudinaryIDs drops successfully deleted public IDs from the companion
// list. Best effort: a failure here is logged and does not affect the result,
// since cloudinaryIds is only a resolution fast path.
func (s *ImageSync) pruneCloudinaryIDs(id uuid.UUID, cloudinaryIDs, images []string, cover string, removals []ImageRemoval) {
	if len(cloudinaryIDs) == 0 {
		return
	}
	deleted := make(map[string]struct{}, len(removals))
	for _, r := range removals {
		if r.Success && r.PublicID != nil {
			deleted[*r.PublicID] = struct{}{}
		}
	}
	if len(deleted) == 0 {
		return
	}

	kept := make([]string, 0, len(cloudinaryIDs))
	for _, cid := range cloudinaryIDs {
		if _, gone := deleted[cid]; !gone {
			kept = append(kept, cid)
		}
	}
	if len(kept) == len(cloudinaryIDs) {
		return
	}

	if err := s.projects.UpdateImageSet(id, images, kept, cover); err != nil {
		s.logger.Warn().Err(err).Str("projectId", id.String()).Msg("Failed to prune cloudinary ids after remote delete")
	}
}

// SweepReferences removes dangling references to an already-deleted media
// object from every project. Failures are logged and swallowed: the remote
// deletion has already happened and must not be reported as failed.
func (s *ImageSync) SweepReferences(publicID string) {
	if publicID == "" {
		return
	}
	affected, err := s.projects.SweepImageReferences(publicID)
	if err != nil {
		s.logger.Error().Err(err).Str("publicId", publicID).Msg("Orphan sweep failed")
		return
	}
	if affected > 0 {
		s.logger.Info().Str("publicId", publicID).Int64("projects", affected).Msg("Removed dangling image references")
	}
}

// DestroySucceeded reports whether a Cloudinary destroy outcome means the
// object is gone. "not_found"/"not found" counts: the goal state is reached.
func DestroySucceeded(outcome string) bool {
	switch outcome {
	case "ok", "deleted", "not_found", "not found":
		return true
	}
	return false
}

// mergeUnique unions add into existing, keeping first-appearance order and
// dropping duplicates and empty strings from the added values.
func mergeUnique(existing, add []string) []string {
	out := make([]string, 0, len(existing)+len(add))
	seen := make(map[string]struct{}, len(existing)+len(add))
	for _, v := range existing {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	for _, v := range add {
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
