package repository

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"notero/model"
	"notero/utils"
)

const (
	NotesCollection = "notes"
	TagsCollection  = "tags"
)

// NotesRepo owns the notes collection. Every operation that touches both a
// note and its tags runs inside one Mongo transaction so tag_uids and
// belongs_to never observably diverge; the driver retries transient
// transaction conflicts internally.
type NotesRepo struct {
	client *mongo.Client
	notes  *mongo.Collection
	tags   *mongo.Collection
	cache  TagCache
}

func GetNotesRepo(client *mongo.Client, cache TagCache) *NotesRepo {
	db := client.Database(os.Getenv("MONGO_DB"))
	return &NotesRepo{
		client: client,
		notes:  db.Collection(NotesCollection),
		tags:   db.Collection(TagsCollection),
		cache:  cache,
	}
}

func (r *NotesRepo) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) (interface{}, error)) (interface{}, error) {
	session, err := r.client.StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)

	return session.WithTransaction(ctx, fn)
}

// decodeNote validates a document fetched by reference: it must conform to
// its variant schema and carry its own identity.
func decodeNote(res *mongo.SingleResult) (*model.Note, error) {
	var note model.Note
	if err := res.Decode(&note); err != nil {
		return nil, err
	}
	if err := note.ValidateWithUID(); err != nil {
		return nil, err
	}
	return &note, nil
}

// resolveExistingTags filters the supplied tag uids down to those that
// reference a tag document existing right now, preserving order and
// dropping duplicates. Unknown uids are silently discarded, not an error.
func (r *NotesRepo) resolveExistingTags(sc mongo.SessionContext, tagUIDs []string) ([]string, error) {
	existing := make([]string, 0, len(tagUIDs))
	seen := make(map[string]struct{}, len(tagUIDs))
	for _, tagUID := range tagUIDs {
		if _, dup := seen[tagUID]; dup {
			continue
		}
		seen[tagUID] = struct{}{}

		err := r.tags.FindOne(sc, bson.M{"_id": tagUID}).Err()
		if err == mongo.ErrNoDocuments {
			continue
		}
		if err != nil {
			return nil, err
		}
		existing = append(existing, tagUID)
	}
	return existing, nil
}

// GetNote fetches a single note. A missing note is a nil result, not an
// error.
func (r *NotesRepo) GetNote(ctx context.Context, uid string) (*model.Note, error) {
	timer := utils.TrackDBOperation("find", NotesCollection)
	defer timer.ObserveDuration()

	res := r.notes.FindOne(ctx, bson.M{"_id": uid})
	if res.Err() == mongo.ErrNoDocuments {
		return nil, nil
	}
	if res.Err() != nil {
		return nil, res.Err()
	}
	return decodeNote(res)
}

// GetUserNotes retrieves all non-deleted notes for an author, newest first.
func (r *NotesRepo) GetUserNotes(ctx context.Context, authorUID string) ([]*model.Note, error) {
	timer := utils.TrackDBOperation("find", NotesCollection)
	defer timer.ObserveDuration()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.notes.Find(ctx,
		bson.M{"author_uid": authorUID, "deleted_at": nil}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notes []*model.Note
	if err = cursor.All(ctx, &notes); err != nil {
		return nil, err
	}
	for _, note := range notes {
		if err := note.ValidateWithUID(); err != nil {
			return nil, err
		}
	}
	return notes, nil
}

// CreateNote persists a new note and, atomically with it, adds the note's
// uid to the belongs_to set of every referenced tag that exists. Supplied
// tag uids that do not resolve to a tag are dropped from the note.
func (r *NotesRepo) CreateNote(ctx context.Context, payload *model.CreateNotePayload) (*model.Note, error) {
	timer := utils.TrackDBOperation("insert", NotesCollection)
	defer timer.ObserveDuration()

	result, err := r.withTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		existingTagUIDs, err := r.resolveExistingTags(sc, payload.TagUIDs)
		if err != nil {
			return nil, err
		}

		note := &model.Note{
			UID:        uuid.NewString(),
			AuthorUID:  payload.AuthorUID,
			Type:       payload.Type,
			Title:      payload.Title,
			Content:    payload.Content,
			TagUIDs:    existingTagUIDs,
			CreatedAt:  time.Now().UTC(),
			UpdatedAt:  nil,
			DeletedAt:  nil,
			Done:       payload.Done,
			DueDate:    payload.DueDate,
			ReminderAt: payload.ReminderAt,
			ImageURL:   payload.ImageURL,
			URL:        payload.URL,
			Items:      payload.Items,
		}
		if note.Type == model.NoteTypeChecklist && note.Items == nil {
			note.Items = []model.ChecklistItem{}
		}
		if note.Type == model.NoteTypeTodo && note.Done == nil {
			done := false
			note.Done = &done
		}
		if err := note.Validate(); err != nil {
			return nil, err
		}

		for _, tagUID := range existingTagUIDs {
			_, err := r.tags.UpdateOne(sc,
				bson.M{"_id": tagUID},
				bson.M{"$addToSet": bson.M{"belongs_to": note.UID}})
			if err != nil {
				return nil, err
			}
		}

		if _, err := r.notes.InsertOne(sc, note); err != nil {
			return nil, err
		}
		return note, nil
	})
	if err != nil {
		utils.TrackError("database", "note_creation_failed")
		return nil, err
	}

	note := result.(*model.Note)
	invalidateCachedTags(ctx, r.cache, note.TagUIDs...)

	utils.TrackNoteOperation("create")
	return note, nil
}

// UpdateNote applies a partial update. When the payload replaces the tag
// set, tags gaining the association get the note uid added to belongs_to and
// tags losing it get the uid pulled, all in the same transaction as the note
// write.
func (r *NotesRepo) UpdateNote(ctx context.Context, uid string, payload *model.UpdateNotePayload) (*model.Note, error) {
	timer := utils.TrackDBOperation("update", NotesCollection)
	defer timer.ObserveDuration()

	var touchedTags []string
	result, err := r.withTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		touchedTags = nil

		res := r.notes.FindOne(sc, bson.M{"_id": uid})
		if res.Err() == mongo.ErrNoDocuments {
			return nil, utils.NewNotFoundError("note", uid)
		}
		if res.Err() != nil {
			return nil, res.Err()
		}
		note, err := decodeNote(res)
		if err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		set := bson.M{"updated_at": now}
		note.UpdatedAt = &now

		if payload.Title != nil {
			note.Title = *payload.Title
			set["title"] = note.Title
		}
		if payload.Content != nil {
			note.Content = payload.Content
			set["content"] = note.Content
		}
		if payload.DueDate != nil {
			note.DueDate = payload.DueDate
			set["due_date"] = note.DueDate
		}
		if payload.ReminderAt != nil {
			note.ReminderAt = payload.ReminderAt
			set["reminder_at"] = note.ReminderAt
		}
		if payload.ImageURL != nil {
			note.ImageURL = payload.ImageURL
			set["image_url"] = note.ImageURL
		}
		if payload.URL != nil {
			note.URL = payload.URL
			set["url"] = note.URL
		}

		if payload.HasTagUpdate() {
			newTagUIDs, err := r.resolveExistingTags(sc, payload.TagUIDs)
			if err != nil {
				return nil, err
			}

			inNew := make(map[string]struct{}, len(newTagUIDs))
			for _, tagUID := range newTagUIDs {
				inNew[tagUID] = struct{}{}
				_, err := r.tags.UpdateOne(sc,
					bson.M{"_id": tagUID},
					bson.M{"$addToSet": bson.M{"belongs_to": uid}})
				if err != nil {
					return nil, err
				}
				touchedTags = append(touchedTags, tagUID)
			}
			for _, tagUID := range note.TagUIDs {
				if _, kept := inNew[tagUID]; kept {
					continue
				}
				_, err := r.tags.UpdateOne(sc,
					bson.M{"_id": tagUID},
					bson.M{"$pull": bson.M{"belongs_to": uid}})
				if err != nil {
					return nil, err
				}
				touchedTags = append(touchedTags, tagUID)
			}

			note.TagUIDs = newTagUIDs
			set["tag_uids"] = newTagUIDs
		}

		if err := note.Validate(); err != nil {
			return nil, err
		}

		if _, err := r.notes.UpdateOne(sc, bson.M{"_id": uid}, bson.M{"$set": set}); err != nil {
			return nil, err
		}
		return note, nil
	})
	if err != nil {
		utils.TrackError("database", "note_update_failed")
		return nil, err
	}

	invalidateCachedTags(ctx, r.cache, touchedTags...)

	utils.TrackNoteOperation("update")
	return result.(*model.Note), nil
}

// DeleteNote soft-deletes: it stamps deleted_at and leaves the document in
// place. Tag belongs_to sets are not touched; listing queries exclude
// deleted notes.
func (r *NotesRepo) DeleteNote(ctx context.Context, uid string) (*model.Note, error) {
	timer := utils.TrackDBOperation("update", NotesCollection)
	defer timer.ObserveDuration()

	now := time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	res := r.notes.FindOneAndUpdate(ctx,
		bson.M{"_id": uid},
		bson.M{"$set": bson.M{"deleted_at": now}},
		opts)
	if res.Err() == mongo.ErrNoDocuments {
		return nil, utils.NewNotFoundError("note", uid)
	}
	if res.Err() != nil {
		utils.TrackError("database", "note_delete_failed")
		return nil, res.Err()
	}

	utils.TrackNoteOperation("delete")
	return decodeNote(res)
}

// RemoveTagFromNote atomically drops the association from both sides. Either
// side already missing is tolerated; a missing note yields nil (the tag side
// is still cleaned up).
func (r *NotesRepo) RemoveTagFromNote(ctx context.Context, noteUID, tagUID string) (*model.Note, error) {
	timer := utils.TrackDBOperation("update", NotesCollection)
	defer timer.ObserveDuration()

	result, err := r.withTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res := r.notes.FindOne(sc, bson.M{"_id": noteUID})
		noteExists := res.Err() == nil
		if res.Err() != nil && res.Err() != mongo.ErrNoDocuments {
			return nil, res.Err()
		}

		var note *model.Note
		if noteExists {
			var err error
			note, err = decodeNote(res)
			if err != nil {
				return nil, err
			}
			_, err = r.notes.UpdateOne(sc,
				bson.M{"_id": noteUID},
				bson.M{"$pull": bson.M{"tag_uids": tagUID}})
			if err != nil {
				return nil, err
			}
		}

		_, err := r.tags.UpdateOne(sc,
			bson.M{"_id": tagUID},
			bson.M{"$pull": bson.M{"belongs_to": noteUID}})
		if err != nil {
			return nil, err
		}

		if note == nil {
			return (*model.Note)(nil), nil
		}
		remaining := make([]string, 0, len(note.TagUIDs))
		for _, uid := range note.TagUIDs {
			if uid != tagUID {
				remaining = append(remaining, uid)
			}
		}
		note.TagUIDs = remaining
		return note, nil
	})
	if err != nil {
		utils.TrackError("database", "remove_tag_failed")
		return nil, err
	}

	invalidateCachedTags(ctx, r.cache, tagUID)

	utils.TrackNoteOperation("remove_tag")
	return result.(*model.Note), nil
}

// loadTypedNote is the shared read-validate step of the typed mutators: the
// note must exist, conform to its schema, and be of the expected variant.
func (r *NotesRepo) loadTypedNote(sc mongo.SessionContext, uid string, want model.NoteType) (*model.Note, error) {
	res := r.notes.FindOne(sc, bson.M{"_id": uid})
	if res.Err() == mongo.ErrNoDocuments {
		return nil, utils.NewNotFoundError("note", uid)
	}
	if res.Err() != nil {
		return nil, res.Err()
	}
	note, err := decodeNote(res)
	if err != nil {
		return nil, err
	}
	if note.Type != want {
		return nil, utils.NewValidationError("note must be of the " + string(want) + " type")
	}
	return note, nil
}

// MarkTodoAsDone transitions a TODO note to done. Marking a note that is
// already done is a validation failure, not a no-op; completedAt is set in
// the same write so it is non-null exactly when done is true.
func (r *NotesRepo) MarkTodoAsDone(ctx context.Context, uid string) (*model.Note, error) {
	timer := utils.TrackDBOperation("update", NotesCollection)
	defer timer.ObserveDuration()

	result, err := r.withTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		note, err := r.loadTypedNote(sc, uid, model.NoteTypeTodo)
		if err != nil {
			return nil, err
		}
		if note.Done != nil && *note.Done {
			return nil, utils.NewValidationError("note is already done")
		}

		done := true
		now := time.Now().UTC()
		note.Done = &done
		note.CompletedAt = &now

		_, err = r.notes.UpdateOne(sc,
			bson.M{"_id": uid},
			bson.M{"$set": bson.M{"done": true, "completed_at": now}})
		if err != nil {
			return nil, err
		}
		return note, nil
	})
	if err != nil {
		return nil, err
	}

	utils.TrackNoteOperation("todo_done")
	return result.(*model.Note), nil
}

// MarkTodoAsNotDone is the symmetric transition; it requires the note to
// currently be done and clears completedAt.
func (r *NotesRepo) MarkTodoAsNotDone(ctx context.Context, uid string) (*model.Note, error) {
	timer := utils.TrackDBOperation("update", NotesCollection)
	defer timer.ObserveDuration()

	result, err := r.withTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		note, err := r.loadTypedNote(sc, uid, model.NoteTypeTodo)
		if err != nil {
			return nil, err
		}
		if note.Done == nil || !*note.Done {
			return nil, utils.NewValidationError("note is already not done")
		}

		done := false
		note.Done = &done
		note.CompletedAt = nil

		_, err = r.notes.UpdateOne(sc,
			bson.M{"_id": uid},
			bson.M{"$set": bson.M{"done": false, "completed_at": nil}})
		if err != nil {
			return nil, err
		}
		return note, nil
	})
	if err != nil {
		return nil, err
	}

	utils.TrackNoteOperation("todo_not_done")
	return result.(*model.Note), nil
}

// ToggleChecklistItem flips the done flag of exactly one item, identified by
// id, and persists the full items sequence.
func (r *NotesRepo) ToggleChecklistItem(ctx context.Context, noteUID, itemID string) (*model.Note, error) {
	timer := utils.TrackDBOperation("update", NotesCollection)
	defer timer.ObserveDuration()

	result, err := r.withTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		note, err := r.loadTypedNote(sc, noteUID, model.NoteTypeChecklist)
		if err != nil {
			return nil, err
		}

		idx := note.ItemIndex(itemID)
		if idx < 0 {
			return nil, utils.NewValidationError("item with id " + itemID + " not found")
		}
		note.Items[idx].Done = !note.Items[idx].Done

		return note, r.persistItems(sc, note)
	})
	if err != nil {
		return nil, err
	}

	utils.TrackNoteOperation("checklist_toggle")
	return result.(*model.Note), nil
}

// AddChecklistItem appends an item; a duplicate id is a validation failure.
func (r *NotesRepo) AddChecklistItem(ctx context.Context, noteUID string, item model.ChecklistItem) (*model.Note, error) {
	timer := utils.TrackDBOperation("update", NotesCollection)
	defer timer.ObserveDuration()

	result, err := r.withTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		note, err := r.loadTypedNote(sc, noteUID, model.NoteTypeChecklist)
		if err != nil {
			return nil, err
		}

		if note.ItemIndex(item.ID) >= 0 {
			return nil, utils.NewValidationError("item with id " + item.ID + " already exists")
		}
		note.Items = append(note.Items, item)

		return note, r.persistItems(sc, note)
	})
	if err != nil {
		return nil, err
	}

	utils.TrackNoteOperation("checklist_add")
	return result.(*model.Note), nil
}

// RemoveChecklistItem filters out the item with the given id; an absent id
// is a validation failure.
func (r *NotesRepo) RemoveChecklistItem(ctx context.Context, noteUID, itemID string) (*model.Note, error) {
	timer := utils.TrackDBOperation("update", NotesCollection)
	defer timer.ObserveDuration()

	result, err := r.withTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		note, err := r.loadTypedNote(sc, noteUID, model.NoteTypeChecklist)
		if err != nil {
			return nil, err
		}

		idx := note.ItemIndex(itemID)
		if idx < 0 {
			return nil, utils.NewValidationError("item with id " + itemID + " not found")
		}
		note.Items = append(note.Items[:idx], note.Items[idx+1:]...)

		return note, r.persistItems(sc, note)
	})
	if err != nil {
		return nil, err
	}

	utils.TrackNoteOperation("checklist_remove")
	return result.(*model.Note), nil
}

func (r *NotesRepo) persistItems(sc mongo.SessionContext, note *model.Note) error {
	now := time.Now().UTC()
	note.UpdatedAt = &now
	_, err := r.notes.UpdateOne(sc,
		bson.M{"_id": note.UID},
		bson.M{"$set": bson.M{"items": note.Items, "updated_at": now}})
	return err
}
