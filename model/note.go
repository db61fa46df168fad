package model

import "time"

type NoteType string

const (
	NoteTypeTodo      NoteType = "TODO"
	NoteTypeText      NoteType = "TEXT"
	NoteTypeReminder  NoteType = "REMINDER"
	NoteTypeImage     NoteType = "IMAGE"
	NoteTypeBookmark  NoteType = "BOOKMARK"
	NoteTypeChecklist NoteType = "CHECKLIST"
)

// NoteTypes is the closed set of note variants. Anything outside it is
// rejected by validation.
var NoteTypes = []NoteType{
	NoteTypeTodo,
	NoteTypeText,
	NoteTypeReminder,
	NoteTypeImage,
	NoteTypeBookmark,
	NoteTypeChecklist,
}

func (t NoteType) Valid() bool {
	for _, known := range NoteTypes {
		if t == known {
			return true
		}
	}
	return false
}

type ChecklistItem struct {
	ID   string `bson:"id" json:"id" validate:"required"`
	Text string `bson:"text" json:"text"`
	Done bool   `bson:"done" json:"done"`
}

// Note is the single persisted shape for all six variants, discriminated by
// Type. Variant-specific fields are pointers (or a slice for CHECKLIST) so
// that absent means absent in the stored document; the struct-level
// validation in validate.go enforces which fields each variant carries.
type Note struct {
	UID       string     `bson:"_id,omitempty" json:"uid"`
	AuthorUID string     `bson:"author_uid" json:"author_uid" validate:"required"`
	Type      NoteType   `bson:"type" json:"type" validate:"required"`
	Title     string     `bson:"title" json:"title" validate:"required"`
	Content   *string    `bson:"content" json:"content"`
	TagUIDs   []string   `bson:"tag_uids" json:"tag_uids"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time `bson:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `bson:"deleted_at" json:"deleted_at"`

	// TODO variant
	Done        *bool      `bson:"done,omitempty" json:"done,omitempty"`
	DueDate     *time.Time `bson:"due_date,omitempty" json:"due_date,omitempty"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`

	// REMINDER variant
	ReminderAt *time.Time `bson:"reminder_at,omitempty" json:"reminder_at,omitempty"`

	// IMAGE variant
	ImageURL *string `bson:"image_url,omitempty" json:"image_url,omitempty"`

	// BOOKMARK variant
	URL *string `bson:"url,omitempty" json:"url,omitempty"`

	// CHECKLIST variant
	Items []ChecklistItem `bson:"items,omitempty" json:"items,omitempty"`
}

// HasTag reports whether the note currently references the tag.
func (n *Note) HasTag(tagUID string) bool {
	for _, uid := range n.TagUIDs {
		if uid == tagUID {
			return true
		}
	}
	return false
}

// ItemIndex returns the position of the checklist item with the given id,
// or -1 when no such item exists.
func (n *Note) ItemIndex(itemID string) int {
	for i, item := range n.Items {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}

// CreateNotePayload is the store-facing creation input. UID and the
// lifecycle timestamps are assigned by the store.
type CreateNotePayload struct {
	AuthorUID string
	Type      NoteType
	Title     string
	Content   *string
	TagUIDs   []string

	Done       *bool
	DueDate    *time.Time
	ReminderAt *time.Time
	ImageURL   *string
	URL        *string
	Items      []ChecklistItem
}

// UpdateNotePayload carries a partial update. Nil fields are left untouched;
// TagUIDs nil means "tag set unchanged" while an empty non-nil slice clears
// every association. Done/CompletedAt and checklist items have dedicated
// mutators and are deliberately absent here.
type UpdateNotePayload struct {
	Title      *string
	Content    *string
	TagUIDs    []string
	DueDate    *time.Time
	ReminderAt *time.Time
	ImageURL   *string
	URL        *string
}

// HasTagUpdate reports whether the payload replaces the tag set.
func (p *UpdateNotePayload) HasTagUpdate() bool {
	return p.TagUIDs != nil
}
