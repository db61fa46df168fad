package model

import (
	"strings"
	"testing"
	"time"

	"notero/utils"
)

func strPtr(s string) *string        { return &s }
func boolPtr(b bool) *bool           { return &b }
func timePtr(t time.Time) *time.Time { return &t }

func validBaseNote(noteType NoteType) Note {
	return Note{
		UID:       "note-1",
		AuthorUID: "user-1",
		Type:      noteType,
		Title:     "A title",
		TagUIDs:   []string{},
		CreatedAt: time.Now(),
	}
}

func TestNoteValidatePerVariant(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		mutate    func(*Note)
		wantField string // empty means the note must be valid
	}{
		{
			name: "valid TEXT note",
			mutate: func(n *Note) {
				n.Type = NoteTypeText
			},
		},
		{
			name: "valid TODO not done",
			mutate: func(n *Note) {
				n.Type = NoteTypeTodo
				n.Done = boolPtr(false)
			},
		},
		{
			name: "valid TODO done with completedAt",
			mutate: func(n *Note) {
				n.Type = NoteTypeTodo
				n.Done = boolPtr(true)
				n.CompletedAt = timePtr(now)
			},
		},
		{
			name: "TODO missing done flag",
			mutate: func(n *Note) {
				n.Type = NoteTypeTodo
			},
			wantField: "done",
		},
		{
			name: "TODO done without completedAt",
			mutate: func(n *Note) {
				n.Type = NoteTypeTodo
				n.Done = boolPtr(true)
			},
			wantField: "completed_at",
		},
		{
			name: "TODO not done with completedAt",
			mutate: func(n *Note) {
				n.Type = NoteTypeTodo
				n.Done = boolPtr(false)
				n.CompletedAt = timePtr(now)
			},
			wantField: "completed_at",
		},
		{
			name: "REMINDER missing reminderAt",
			mutate: func(n *Note) {
				n.Type = NoteTypeReminder
			},
			wantField: "reminder_at",
		},
		{
			name: "valid REMINDER",
			mutate: func(n *Note) {
				n.Type = NoteTypeReminder
				n.ReminderAt = timePtr(now)
			},
		},
		{
			name: "IMAGE missing imageUrl",
			mutate: func(n *Note) {
				n.Type = NoteTypeImage
			},
			wantField: "image_url",
		},
		{
			name: "valid IMAGE",
			mutate: func(n *Note) {
				n.Type = NoteTypeImage
				n.ImageURL = strPtr("https://example.com/x.png")
			},
		},
		{
			name: "BOOKMARK missing url",
			mutate: func(n *Note) {
				n.Type = NoteTypeBookmark
			},
			wantField: "url",
		},
		{
			name: "valid CHECKLIST with empty items",
			mutate: func(n *Note) {
				n.Type = NoteTypeChecklist
			},
		},
		{
			name: "CHECKLIST with duplicate item ids",
			mutate: func(n *Note) {
				n.Type = NoteTypeChecklist
				n.Items = []ChecklistItem{
					{ID: "a", Text: "one"},
					{ID: "a", Text: "two"},
				}
			},
			wantField: "items",
		},
		{
			name: "unknown note type",
			mutate: func(n *Note) {
				n.Type = NoteType("SKETCH")
			},
			wantField: "type",
		},
		{
			name: "missing title",
			mutate: func(n *Note) {
				n.Type = NoteTypeText
				n.Title = ""
			},
			wantField: "title",
		},
		{
			name: "missing author",
			mutate: func(n *Note) {
				n.Type = NoteTypeText
				n.AuthorUID = ""
			},
			wantField: "author_uid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			note := validBaseNote(NoteTypeText)
			tt.mutate(&note)

			err := note.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected valid note, got %v", err)
				}
				return
			}

			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !utils.IsValidation(err) {
				t.Fatalf("expected ValidationError, got %T: %v", err, err)
			}
			if !strings.Contains(err.Error(), tt.wantField) {
				t.Errorf("error %q does not mention field %q", err.Error(), tt.wantField)
			}
		})
	}
}

func TestNoteValidateWithUID(t *testing.T) {
	note := validBaseNote(NoteTypeText)
	note.UID = ""

	err := note.ValidateWithUID()
	if err == nil {
		t.Fatal("expected validation error for missing uid")
	}
	if !utils.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if !strings.Contains(err.Error(), "uid") {
		t.Errorf("error %q does not mention uid", err.Error())
	}

	note.UID = "note-1"
	if err := note.ValidateWithUID(); err != nil {
		t.Fatalf("expected valid note with uid, got %v", err)
	}
}

func TestTagValidate(t *testing.T) {
	tag := Tag{
		UID:               "tag-1",
		UserUID:           "user-1",
		Content:           "Work",
		NormalizedContent: "work",
		BelongsTo:         []string{},
	}
	if err := tag.ValidateWithUID(); err != nil {
		t.Fatalf("expected valid tag, got %v", err)
	}

	tag.NormalizedContent = ""
	err := tag.Validate()
	if err == nil {
		t.Fatal("expected validation error for missing normalized content")
	}
	if !utils.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %T", err)
	}

	tag.NormalizedContent = "work"
	tag.UID = ""
	if err := tag.ValidateWithUID(); err == nil {
		t.Fatal("expected validation error for missing uid")
	}
}
