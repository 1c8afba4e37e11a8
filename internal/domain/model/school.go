package model

import "time"

type Class struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Level     int       `json:"level"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Subject struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	ClassIDs  []string  `json:"class_ids,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubjectClass binds one subject to one class. InUse means a teacher is
// actively assigned; exams may only reference in-use subject-classes.
type SubjectClass struct {
	ID        string    `json:"id"`
	SubjectID string    `json:"subject_id"`
	ClassID   string    `json:"class_id"`
	InUse     bool      `json:"in_use"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Subject *Subject `json:"subject,omitempty"` // populated view
	Class   *Class   `json:"class,omitempty"`   // populated view
}

// SubjectClassFilter is a typed query filter: only non-nil fields narrow the
// listing. Replaces filtering maps keyed on possibly-zero values.
type SubjectClassFilter struct {
	SubjectID *string
	ClassID   *string
	InUse     *bool
}
