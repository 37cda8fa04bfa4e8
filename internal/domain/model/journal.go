package model

import (
	"time"
)

// Journal is a teacher-authored entry addressed to a set of students.
// Visibility to a student requires an assignment row, is_published and
// published_at <= now; the owning teacher always sees their own rows.
type Journal struct {
	ID             string     `json:"id"`
	Description    string     `json:"description"`
	AttachmentType *string    `json:"attachment_type"`
	AttachmentPath *string    `json:"attachment_path"`
	PublishedAt    *time.Time `json:"published_at"`
	CreatedByID    string     `json:"created_by"`
	IsPublished    bool       `json:"is_published"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Attachment is the stored-file reference recorded verbatim on the
// journal row. The declared mime type is not validated.
type Attachment struct {
	Type string
	Path string
}
