package dto

import (
	"time"

	"notero/model"
)

type ChecklistItemRequest struct {
	ID   string `json:"id" binding:"required"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

func (r ChecklistItemRequest) ToModel() model.ChecklistItem {
	return model.ChecklistItem{ID: r.ID, Text: r.Text, Done: r.Done}
}

// CreateNoteRequest is the wire shape for note creation; the variant fields
// are all optional here and checked against the declared type by the schema
// validation downstream.
type CreateNoteRequest struct {
	Type    string   `json:"type" binding:"required"`
	Title   string   `json:"title" binding:"required"`
	Content *string  `json:"content"`
	TagUIDs []string `json:"tag_uids"`

	Done       *bool                  `json:"done"`
	DueDate    *time.Time             `json:"due_date"`
	ReminderAt *time.Time             `json:"reminder_at"`
	ImageURL   *string                `json:"image_url"`
	URL        *string                `json:"url"`
	Items      []ChecklistItemRequest `json:"items"`
}

func (r *CreateNoteRequest) ToPayload(authorUID string) *model.CreateNotePayload {
	payload := &model.CreateNotePayload{
		AuthorUID:  authorUID,
		Type:       model.NoteType(r.Type),
		Title:      r.Title,
		Content:    r.Content,
		TagUIDs:    r.TagUIDs,
		Done:       r.Done,
		DueDate:    r.DueDate,
		ReminderAt: r.ReminderAt,
		ImageURL:   r.ImageURL,
		URL:        r.URL,
	}
	if r.Items != nil {
		payload.Items = make([]model.ChecklistItem, len(r.Items))
		for i, item := range r.Items {
			payload.Items[i] = item.ToModel()
		}
	}
	return payload
}

// UpdateNoteRequest carries a partial update; absent fields stay untouched.
type UpdateNoteRequest struct {
	Title      *string    `json:"title"`
	Content    *string    `json:"content"`
	TagUIDs    []string   `json:"tag_uids"`
	DueDate    *time.Time `json:"due_date"`
	ReminderAt *time.Time `json:"reminder_at"`
	ImageURL   *string    `json:"image_url"`
	URL        *string    `json:"url"`
}

func (r *UpdateNoteRequest) ToPayload() *model.UpdateNotePayload {
	return &model.UpdateNotePayload{
		Title:      r.Title,
		Content:    r.Content,
		TagUIDs:    r.TagUIDs,
		DueDate:    r.DueDate,
		ReminderAt: r.ReminderAt,
		ImageURL:   r.ImageURL,
		URL:        r.URL,
	}
}
