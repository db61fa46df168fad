package model

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"notero/utils"
)

// validate runs the structural checks for every document crossing the store
// boundary. The variant constraints live in a struct-level validation so a
// Note read back from storage is checked as a whole, the same way the field
// tags are.
var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	validate.RegisterStructValidation(noteStructLevel, Note{})
}

// noteStructLevel enforces the per-variant shape of a Note. The switch is
// exhaustive over the closed variant set; the default case rejects unknown
// discriminators outright.
func noteStructLevel(sl validator.StructLevel) {
	note := sl.Current().Interface().(Note)

	switch note.Type {
	case NoteTypeTodo:
		if note.Done == nil {
			sl.ReportError(note.Done, "done", "Done", "required_for_todo", "")
			return
		}
		if *note.Done && note.CompletedAt == nil {
			sl.ReportError(note.CompletedAt, "completed_at", "CompletedAt", "required_when_done", "")
		}
		if !*note.Done && note.CompletedAt != nil {
			sl.ReportError(note.CompletedAt, "completed_at", "CompletedAt", "forbidden_when_not_done", "")
		}
	case NoteTypeText:
		// no extra fields
	case NoteTypeReminder:
		if note.ReminderAt == nil {
			sl.ReportError(note.ReminderAt, "reminder_at", "ReminderAt", "required_for_reminder", "")
		}
	case NoteTypeImage:
		if note.ImageURL == nil || *note.ImageURL == "" {
			sl.ReportError(note.ImageURL, "image_url", "ImageURL", "required_for_image", "")
		}
	case NoteTypeBookmark:
		if note.URL == nil || *note.URL == "" {
			sl.ReportError(note.URL, "url", "URL", "required_for_bookmark", "")
		}
	case NoteTypeChecklist:
		seen := make(map[string]struct{}, len(note.Items))
		for _, item := range note.Items {
			if _, dup := seen[item.ID]; dup {
				sl.ReportError(note.Items, "items", "Items", "duplicate_item_id", item.ID)
				break
			}
			seen[item.ID] = struct{}{}
		}
	default:
		sl.ReportError(note.Type, "type", "Type", "unknown_note_type", "")
	}
}

var validationMessages = map[string]string{
	"required":                "is required",
	"email":                   "must be a valid email address",
	"min":                     "is too short",
	"max":                     "is too long",
	"required_for_todo":       "is required for TODO notes",
	"required_when_done":      "must be set when done is true",
	"forbidden_when_not_done": "must be null when done is false",
	"required_for_reminder":   "is required for REMINDER notes",
	"required_for_image":      "is required for IMAGE notes",
	"required_for_bookmark":   "is required for BOOKMARK notes",
	"duplicate_item_id":       "contains a duplicate item id",
	"unknown_note_type":       "is not a known note type",
}

// wrapValidatorError reclassifies validator failures as the store-boundary
// ValidationError, preserving field paths.
func wrapValidatorError(err error) error {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	violations := make([]utils.FieldViolation, 0, len(verrs))
	for _, fe := range verrs {
		msg, known := validationMessages[fe.Tag()]
		if !known {
			msg = fmt.Sprintf("failed %q validation", fe.Tag())
		}
		if fe.Tag() == "duplicate_item_id" && fe.Param() != "" {
			msg = fmt.Sprintf("contains duplicate item id %q", fe.Param())
		}
		// Strip the leading struct name from the namespace.
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		violations = append(violations, utils.FieldViolation{Field: field, Message: msg})
	}
	return utils.NewFieldValidationError(violations...)
}

// Validate checks a note about to be written.
func (n *Note) Validate() error {
	return wrapValidatorError(validate.Struct(*n))
}

// ValidateWithUID additionally requires the document to carry its own
// identity, used for notes fetched by reference.
func (n *Note) ValidateWithUID() error {
	if n.UID == "" {
		return utils.NewFieldValidationError(utils.FieldViolation{Field: "uid", Message: "is required"})
	}
	return n.Validate()
}

func (t *Tag) Validate() error {
	return wrapValidatorError(validate.Struct(*t))
}

func (t *Tag) ValidateWithUID() error {
	if t.UID == "" {
		return utils.NewFieldValidationError(utils.FieldViolation{Field: "uid", Message: "is required"})
	}
	return t.Validate()
}

func (u *User) Validate() error {
	return wrapValidatorError(validate.Struct(*u))
}
