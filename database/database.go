package database

import (
	"gorm.io/gorm"

	"github.com/cockroach-creatives/studio-backend/models"
)

type Database struct {
	projectRepo *ProjectRepo
	enquiryRepo *EnquiryRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		projectRepo: NewProjectRepo(db),
		enquiryRepo: NewEnquiryRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

func (d Database) EnquiryRepo() *EnquiryRepo {
	return d.enquiryRepo
}

// Migrate creates or updates the schema for every entity the service owns.
func (d Database) Migrate() error {
	return d.projectRepo.db.AutoMigrate(&models.Project{}, &models.Enquiry{})
}
