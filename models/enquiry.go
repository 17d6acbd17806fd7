package models

import (
	"time"

	"github.com/google/uuid"
)

// Enquiry is a contact-form submission. Immutable once created, except for
// deletion by an admin.
type Enquiry struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	Name      string    `json:"name" gorm:"type:text;not null;default:''"`
	Email     string    `json:"email" gorm:"type:text;not null;default:''"`
	Phone     string    `json:"phone" gorm:"type:text;not null;default:''"`
	Message   string    `json:"message" gorm:"type:text;not null;default:''"`
	CreatedAt time.Time `json:"createdAt"`
}
