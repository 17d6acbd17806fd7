package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/cockroach-creatives/studio-backend/errs"
	"github.com/cockroach-creatives/studio-backend/models"
)

type stubProjectStore struct {
	project *models.Project
	findErr error

	updateCalls   int
	updateErr     error
	lastImages    []string
	lastIDs       []string
	lastCover     string
	sweptPublicID string
	sweepAffected int64
	sweepErr      error
	sweepCalls    int
}

func (s *stubProjectStore) FindByID(_ uuid.UUID) (*models.Project, error) {
	return s.project, s.findErr
}

func (s *stubProjectStore) UpdateImageSet(_ uuid.UUID, images, cloudinaryIDs []string, coverImage string) error {
	s.updateCalls++
	if s.updateErr != nil {
		return s.updateErr
	}
	s.lastImages = images
	s.lastIDs = cloudinaryIDs
	s.lastCover = coverImage
	return nil
}

func (s *stubProjectStore) SweepImageReferences(publicID string) (int64, error) {
	s.sweepCalls++
	s.sweptPublicID = publicID
	return s.sweepAffected, s.sweepErr
}

type stubMediaStore struct {
	outcomes map[string]string
	errs     map[string]error
	calls    int
}

func (s *stubMediaStore) Destroy(_ context.Context, publicID string) (string, error) {
	s.calls++
	if err, ok := s.errs[publicID]; ok {
		return "", err
	}
	if outcome, ok := s.outcomes[publicID]; ok {
		return outcome, nil
	}
	return "ok", nil
}

func projectFixture(images ...string) *models.Project {
	return &models.Project{
		ID:     uuid.New(),
		Title:  "Brand refresh",
		Images: images,
	}
}

func TestAttachImagesSetsCoverOnEmptyProject(t *testing.T) {
	store := &stubProjectStore{project: projectFixture()}
	svc := NewImageSync(store, &stubMediaStore{})

	updated, err := svc.AttachImages(store.project.ID, []string{"https://cdn/a.jpg", "https://cdn/b.jpg"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.CoverImage != "https://cdn/a.jpg" {
		t.Errorf("cover = %q, want first attached image", updated.CoverImage)
	}
	if len(store.lastImages) != 2 {
		t.Errorf("images = %v", store.lastImages)
	}
}

func TestAttachImagesIsIdempotent(t *testing.T) {
	project := projectFixture("https://cdn/a.jpg")
	project.CoverImage = "https://cdn/a.jpg"
	store := &stubProjectStore{project: project}
	svc := NewImageSync(store, &stubMediaStore{})

	updated, err := svc.AttachImages(project.ID, []string{"https://cdn/a.jpg"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(updated.Images) != 1 {
		t.Errorf("images = %v, want single occurrence", updated.Images)
	}
	if updated.CoverImage != "https://cdn/a.jpg" {
		t.Errorf("cover changed to %q", updated.CoverImage)
	}
}

func TestAttachImagesMergesPublicIDs(t *testing.T) {
	project := projectFixture()
	project.CloudinaryIDs = []string{"folder/a"}
	store := &stubProjectStore{project: project}
	svc := NewImageSync(store, &stubMediaStore{})

	_, err := svc.AttachImages(project.ID, nil, []string{"folder/a", "folder/b", ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.lastIDs) != 2 || store.lastIDs[0] != "folder/a" || store.lastIDs[1] != "folder/b" {
		t.Errorf("cloudinary ids = %v", store.lastIDs)
	}
}

func TestAttachImagesValidation(t *testing.T) {
	store := &stubProjectStore{project: projectFixture()}
	svc := NewImageSync(store, &stubMediaStore{})

	if _, err := svc.AttachImages(uuid.New(), nil, nil); err == nil {
		t.Fatal("expected validation error for empty input")
	}
	if store.updateCalls != 0 {
		t.Error("validation failure must not write")
	}
}

func TestAttachImagesProjectNotFound(t *testing.T) {
	store := &stubProjectStore{project: nil}
	svc := NewImageSync(store, &stubMediaStore{})

	_, err := svc.AttachImages(uuid.New(), []string{"https://cdn/a.jpg"}, nil)
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	if store.updateCalls != 0 {
		t.Error("not-found must not write")
	}
}

func TestDetachImagesRepairsCover(t *testing.T) {
	project := projectFixture("https://cdn/a.jpg", "https://cdn/b.jpg")
	project.CoverImage = "https://cdn/a.jpg"
	store := &stubProjectStore{project: project}
	svc := NewImageSync(store, &stubMediaStore{})

	_, err := svc.DetachImages(context.Background(), project.ID, []string{"https://cdn/a.jpg"}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.lastCover != "https://cdn/b.jpg" {
		t.Errorf("cover = %q, want first remaining image", store.lastCover)
	}
	if len(store.lastImages) != 1 || store.lastImages[0] != "https://cdn/b.jpg" {
		t.Errorf("images = %v", store.lastImages)
	}
}

func TestDetachImagesClearsCoverWhenNoneRemain(t *testing.T) {
	project := projectFixture("https://cdn/a.jpg")
	project.CoverImage = "https://cdn/a.jpg"
	store := &stubProjectStore{project: project}
	svc := NewImageSync(store, &stubMediaStore{})

	_, err := svc.DetachImages(context.Background(), project.ID, []string{"https://cdn/a.jpg"}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.lastCover != "" {
		t.Errorf("cover = %q, want empty", store.lastCover)
	}
}

func TestDetachImagesWithoutRemoteDelete(t *testing.T) {
	project := projectFixture("https://cdn/a.jpg")
	store := &stubProjectStore{project: project}
	media := &stubMediaStore{}
	svc := NewImageSync(store, media)

	result, err := svc.DetachImages(context.Background(), project.ID, []string{"https://cdn/a.jpg"}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if media.calls != 0 {
		t.Error("remote delete must not be called when disabled")
	}
	if len(result.Cloudinary) != 0 {
		t.Errorf("cloudinary = %v, want empty", result.Cloudinary)
	}
	if result.RemovedFromProject != 1 {
		t.Errorf("removedFromProject = %d", result.RemovedFromProject)
	}
	if !result.Success {
		t.Error("local removal succeeded, result must report success")
	}
}

func TestDetachImagesPartialRemoteFailure(t *testing.T) {
	urls := []string{
		"https://res.cloudinary.com/demo/image/upload/v1/folder/one.jpg",
		"https://res.cloudinary.com/demo/image/upload/v1/folder/two.jpg",
		"https://res.cloudinary.com/demo/image/upload/v1/folder/three.jpg",
	}
	project := projectFixture(urls...)
	store := &stubProjectStore{project: project}
	media := &stubMediaStore{
		errs: map[string]error{"folder/two": errors.New("connection reset")},
	}
	svc := NewImageSync(store, media)

	result, err := svc.DetachImages(context.Background(), project.ID, urls, true)
	if err != nil {
		t.Fatalf("remote failure must not fail the batch: %v", err)
	}

	// Local removal is unconditional.
	if len(store.lastImages) != 0 {
		t.Errorf("images = %v, want all removed locally", store.lastImages)
	}
	if result.RemovedFromProject != 3 {
		t.Errorf("removedFromProject = %d, want 3", result.RemovedFromProject)
	}

	if len(result.Cloudinary) != 3 {
		t.Fatalf("cloudinary entries = %d, want 3", len(result.Cloudinary))
	}
	for i, want := range []bool{true, false, true} {
		got := result.Cloudinary[i]
		if got.Success != want {
			t.Errorf("item %d success = %v, want %v (%+v)", i, got.Success, want, got)
		}
	}
	if result.Cloudinary[1].Error == "" {
		t.Error("failed item must carry the error payload")
	}
}

func TestDetachImagesUnresolvableURL(t *testing.T) {
	badURL := "https://exa mple.com/upload/x.jpg"
	project := projectFixture(badURL)
	store := &stubProjectStore{project: project}
	media := &stubMediaStore{}
	svc := NewImageSync(store, media)

	result, err := svc.DetachImages(context.Background(), project.ID, []string{badURL}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	item := result.Cloudinary[0]
	if item.Success || item.Error != errs.ErrUnresolvableReference.Error() {
		t.Errorf("item = %+v", item)
	}
	if media.calls != 0 {
		t.Error("unresolvable item must not reach the media service")
	}
}

func TestDetachImagesTreatsNotFoundAsSuccess(t *testing.T) {
	project := projectFixture("https://res.cloudinary.com/demo/image/upload/folder/gone.jpg")
	store := &stubProjectStore{project: project}
	media := &stubMediaStore{outcomes: map[string]string{"folder/gone": "not_found"}}
	svc := NewImageSync(store, media)

	result, err := svc.DetachImages(context.Background(), project.ID, project.Images, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Cloudinary[0].Success {
		t.Errorf("not_found should count as success: %+v", result.Cloudinary[0])
	}
}

func TestDetachImagesPrunesCloudinaryIDs(t *testing.T) {
	url := "https://res.cloudinary.com/demo/image/upload/v1/folder/keep-me.jpg"
	project := projectFixture(url)
	project.CloudinaryIDs = []string{"folder/keep-me", "folder/other"}
	store := &stubProjectStore{project: project}
	svc := NewImageSync(store, &stubMediaStore{})

	_, err := svc.DetachImages(context.Background(), project.ID, []string{url}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.updateCalls != 2 {
		t.Fatalf("updateCalls = %d, want detach write + prune write", store.updateCalls)
	}
	if len(store.lastIDs) != 1 || store.lastIDs[0] != "folder/other" {
		t.Errorf("cloudinary ids = %v, want deleted id pruned", store.lastIDs)
	}
}

func TestDetachImagesValidationAndNotFound(t *testing.T) {
	store := &stubProjectStore{project: projectFixture("https://cdn/a.jpg")}
	svc := NewImageSync(store, &stubMediaStore{})

	if _, err := svc.DetachImages(context.Background(), uuid.New(), nil, true); err == nil {
		t.Fatal("expected validation error for empty url set")
	}

	store.project = nil
	_, err := svc.DetachImages(context.Background(), uuid.New(), []string{"https://cdn/a.jpg"}, true)
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	if store.updateCalls != 0 {
		t.Error("detach on missing project must not write")
	}
}

func TestSweepReferences(t *testing.T) {
	store := &stubProjectStore{sweepAffected: 2}
	svc := NewImageSync(store, &stubMediaStore{})

	svc.SweepReferences("folder/deleted")
	if store.sweptPublicID != "folder/deleted" {
		t.Errorf("swept id = %q", store.sweptPublicID)
	}

	// Sweep errors are swallowed, and empty ids never hit the store.
	store.sweepErr = errors.New("db down")
	svc.SweepReferences("folder/deleted")

	calls := store.sweepCalls
	svc.SweepReferences("")
	if store.sweepCalls != calls {
		t.Error("empty public id must not trigger a sweep")
	}
}
