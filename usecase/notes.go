package usecase

import (
	"context"
	"strings"

	"notero/model"
	"notero/repository"
	"notero/utils"
)

const (
	maxTitleLength   = 200
	maxContentLength = 50000
)

// NotesService fronts the note store with input validation; everything
// transactional lives in the repository.
type NotesService struct {
	NotesRepo *repository.NotesRepo
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", utils.NewFieldValidationError(utils.FieldViolation{Field: "title", Message: "is required"})
	}
	if len(title) > maxTitleLength {
		return "", utils.NewFieldValidationError(utils.FieldViolation{Field: "title", Message: "exceeds maximum length"})
	}
	return title, nil
}

func validateContent(content *string) error {
	if content != nil && len(*content) > maxContentLength {
		return utils.NewFieldValidationError(utils.FieldViolation{Field: "content", Message: "exceeds maximum length"})
	}
	return nil
}

func (svc *NotesService) CreateNote(ctx context.Context, payload *model.CreateNotePayload) (*model.Note, error) {
	title, err := validateTitle(payload.Title)
	if err != nil {
		return nil, err
	}
	payload.Title = title

	if err := validateContent(payload.Content); err != nil {
		return nil, err
	}
	if !payload.Type.Valid() {
		return nil, utils.NewFieldValidationError(utils.FieldViolation{Field: "type", Message: "is not a known note type"})
	}

	return svc.NotesRepo.CreateNote(ctx, payload)
}

func (svc *NotesService) GetNote(ctx context.Context, uid string) (*model.Note, error) {
	return svc.NotesRepo.GetNote(ctx, uid)
}

// GetUserNotes lists an author's live notes; soft-deleted notes never reach
// callers.
func (svc *NotesService) GetUserNotes(ctx context.Context, authorUID string) ([]*model.Note, error) {
	return svc.NotesRepo.GetUserNotes(ctx, authorUID)
}

func (svc *NotesService) UpdateNote(ctx context.Context, uid string, payload *model.UpdateNotePayload) (*model.Note, error) {
	if payload.Title != nil {
		title, err := validateTitle(*payload.Title)
		if err != nil {
			return nil, err
		}
		payload.Title = &title
	}
	if err := validateContent(payload.Content); err != nil {
		return nil, err
	}

	return svc.NotesRepo.UpdateNote(ctx, uid, payload)
}

func (svc *NotesService) DeleteNote(ctx context.Context, uid string) (*model.Note, error) {
	return svc.NotesRepo.DeleteNote(ctx, uid)
}

func (svc *NotesService) RemoveTagFromNote(ctx context.Context, noteUID, tagUID string) (*model.Note, error) {
	return svc.NotesRepo.RemoveTagFromNote(ctx, noteUID, tagUID)
}

func (svc *NotesService) MarkTodoAsDone(ctx context.Context, uid string) (*model.Note, error) {
	return svc.NotesRepo.MarkTodoAsDone(ctx, uid)
}

func (svc *NotesService) MarkTodoAsNotDone(ctx context.Context, uid string) (*model.Note, error) {
	return svc.NotesRepo.MarkTodoAsNotDone(ctx, uid)
}

func (svc *NotesService) ToggleChecklistItem(ctx context.Context, noteUID, itemID string) (*model.Note, error) {
	return svc.NotesRepo.ToggleChecklistItem(ctx, noteUID, itemID)
}

func (svc *NotesService) AddChecklistItem(ctx context.Context, noteUID string, item model.ChecklistItem) (*model.Note, error) {
	if strings.TrimSpace(item.ID) == "" {
		return nil, utils.NewFieldValidationError(utils.FieldViolation{Field: "items.id", Message: "is required"})
	}
	return svc.NotesRepo.AddChecklistItem(ctx, noteUID, item)
}

func (svc *NotesService) RemoveChecklistItem(ctx context.Context, noteUID, itemID string) (*model.Note, error) {
	return svc.NotesRepo.RemoveChecklistItem(ctx, noteUID, itemID)
}
