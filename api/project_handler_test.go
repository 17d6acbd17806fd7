package api

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/cockroach-creatives/studio-backend/errs"
	"github.com/cockroach-creatives/studio-backend/models"
)

func storedProject() *models.Project {
	return &models.Project{
		ID:            uuid.New(),
		Title:         "Brand refresh",
		Description:   "Full identity package",
		Category:      models.CategoryBranding,
		SubCategory:   "identity",
		Tags:          []string{"logo", "print"},
		Images:        []string{"https://res.example/a.jpg", "https://res.example/b.jpg"},
		CoverImage:    "https://res.example/a.jpg",
		CloudinaryIDs: []string{"folder/a", "folder/b"},
		Featured:      true,
		Order:         7,
	}
}

func strPtr(s string) *string { return &s }

func TestApplyProjectUpdateTitleOnlyKeepsOtherFields(t *testing.T) {
	project := storedProject()
	want := storedProject()

	if err := applyProjectUpdate(project, updateProjectRequest{Title: strPtr("Brand refresh v2")}); err != nil {
		t.Fatalf("applyProjectUpdate: %v", err)
	}

	if project.Title != "Brand refresh v2" {
		t.Errorf("title = %q", project.Title)
	}
	if len(project.Images) != 2 || project.Images[0] != want.Images[0] || project.Images[1] != want.Images[1] {
		t.Errorf("images changed: %v", project.Images)
	}
	if project.CoverImage != want.CoverImage {
		t.Errorf("coverImage changed: %q", project.CoverImage)
	}
	if len(project.CloudinaryIDs) != 2 {
		t.Errorf("cloudinaryIds changed: %v", project.CloudinaryIDs)
	}
	if len(project.Tags) != 2 {
		t.Errorf("tags changed: %v", project.Tags)
	}
	if project.Featured != want.Featured || project.Order != want.Order {
		t.Errorf("featured/order changed: %v %d", project.Featured, project.Order)
	}
	if project.Description != want.Description || project.SubCategory != want.SubCategory {
		t.Errorf("description/subCategory changed")
	}
}

func TestApplyProjectUpdateReplacesSuppliedFields(t *testing.T) {
	project := storedProject()
	images := []string{"https://res.example/c.jpg"}
	featured := false

	err := applyProjectUpdate(project, updateProjectRequest{
		Images:     &images,
		CoverImage: strPtr(""),
		Featured:   &featured,
	})
	if err != nil {
		t.Fatalf("applyProjectUpdate: %v", err)
	}

	if len(project.Images) != 1 || project.Images[0] != "https://res.example/c.jpg" {
		t.Errorf("images = %v", project.Images)
	}
	if project.CoverImage != "https://res.example/c.jpg" {
		t.Errorf("cover not repaired to first image: %q", project.CoverImage)
	}
	if project.Featured {
		t.Error("featured not cleared")
	}
}

func TestApplyProjectUpdateValidatesMergedRecord(t *testing.T) {
	project := storedProject()
	if err := applyProjectUpdate(project, updateProjectRequest{Title: strPtr("")}); err == nil {
		t.Fatal("expected error for blank title")
	} else if !errors.Is(err, errs.ErrMissingRequiredField) {
		t.Errorf("unexpected error: %v", err)
	}

	project = storedProject()
	if err := applyProjectUpdate(project, updateProjectRequest{Category: strPtr("sculpture")}); err == nil {
		t.Fatal("expected error for unknown category")
	} else if !errors.Is(err, errs.ErrInvalidField) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestApplyProjectUpdateEmptyImagesPersistAsArrays(t *testing.T) {
	project := storedProject()
	none := []string{}

	err := applyProjectUpdate(project, updateProjectRequest{
		Images:        &none,
		CloudinaryIDs: &none,
		CoverImage:    strPtr(""),
	})
	if err != nil {
		t.Fatalf("applyProjectUpdate: %v", err)
	}

	if project.Images == nil || project.CloudinaryIDs == nil {
		t.Error("array fields must stay non-nil")
	}
	if project.CoverImage != "" {
		t.Errorf("coverImage = %q, want empty", project.CoverImage)
	}
}
