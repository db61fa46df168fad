package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"notero/model"
	"notero/utils"
)

// These tests exercise the real transaction machinery and need a MongoDB
// deployment that supports transactions (replica set or mongos). They skip
// when NOTERO_TEST_MONGO_URI is unset.
func setupRepos(t *testing.T) (*Repositories, func()) {
	t.Helper()
	return setupReposWithCache(t, nil)
}

func setupReposWithCache(t *testing.T, cache TagCache) (*Repositories, func()) {
	t.Helper()

	uri := os.Getenv("NOTERO_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("NOTERO_TEST_MONGO_URI not set; skipping store integration tests")
	}

	dbName := "notero_test_" + uuid.NewString()[:8]
	os.Setenv("MONGO_DB", dbName)

	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}

	if err := SetupIndexes(client.Database(dbName)); err != nil {
		t.Fatalf("failed to set up indexes: %v", err)
	}

	repos := NewRepositories(client, cache)
	cleanup := func() {
		if err := client.Database(dbName).Drop(context.Background()); err != nil {
			t.Errorf("failed to drop test database: %v", err)
		}
		if err := client.Disconnect(context.Background()); err != nil {
			t.Errorf("failed to disconnect: %v", err)
		}
	}
	return repos, cleanup
}

func createTextNote(t *testing.T, repos *Repositories, author string, tagUIDs []string) *model.Note {
	t.Helper()
	note, err := repos.Notes.CreateNote(context.Background(), &model.CreateNotePayload{
		AuthorUID: author,
		Type:      model.NoteTypeText,
		Title:     "a note",
		TagUIDs:   tagUIDs,
	})
	if err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}
	return note
}

func TestCreateNoteDropsUnknownTags(t *testing.T) {
	repos, cleanup := setupRepos(t)
	defer cleanup()
	ctx := context.Background()

	tag, err := repos.Tags.CreateTag(ctx, &model.CreateTagPayload{
		UserUID: "u1",
		Content: "Work",
	})
	if err != nil {
		t.Fatalf("CreateTag failed: %v", err)
	}

	note, err := repos.Notes.CreateNote(ctx, &model.CreateNotePayload{
		AuthorUID: "u1",
		Type:      model.NoteTypeTodo,
		Title:     "Buy milk",
		TagUIDs:   []string{tag.UID, "nonexistent"},
	})
	if err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	if len(note.TagUIDs) != 1 || note.TagUIDs[0] != tag.UID {
		t.Errorf("expected only the existing tag to survive, got %v", note.TagUIDs)
	}

	stored, err := repos.Tags.GetTag(ctx, tag.UID)
	if err != nil {
		t.Fatalf("GetTag failed: %v", err)
	}
	found := false
	for _, uid := range stored.BelongsTo {
		if uid == note.UID {
			found = true
		}
	}
	if !found {
		t.Errorf("tag belongs_to %v does not include the new note %s", stored.BelongsTo, note.UID)
	}
}

func TestUpdateNoteSyncsBelongsTo(t *testing.T) {
	repos, cleanup := setupRepos(t)
	defer cleanup()
	ctx := context.Background()

	tagA, _ := repos.Tags.CreateTag(ctx, &model.CreateTagPayload{UserUID: "u1", Content: "alpha"})
	tagB, _ := repos.Tags.CreateTag(ctx, &model.CreateTagPayload{UserUID: "u1", Content: "beta"})

	note := createTextNote(t, repos, "u1", []string{tagA.UID})

	// Swap tagA for tagB.
	updated, err := repos.Notes.UpdateNote(ctx, note.UID, &model.UpdateNotePayload{
		TagUIDs: []string{tagB.UID},
	})
	if err != nil {
		t.Fatalf("UpdateNote failed: %v", err)
	}
	if len(updated.TagUIDs) != 1 || updated.TagUIDs[0] != tagB.UID {
		t.Errorf("expected tag set to be replaced, got %v", updated.TagUIDs)
	}
	if updated.UpdatedAt == nil {
		t.Error("expected updated_at to be stamped")
	}

	checkBelongsTo(t, repos, tagA.UID, note.UID, false)
	checkBelongsTo(t, repos, tagB.UID, note.UID, true)
}

func checkBelongsTo(t *testing.T, repos *Repositories, tagUID, noteUID string, want bool) {
	t.Helper()
	tag, err := repos.Tags.GetTag(context.Background(), tagUID)
	if err != nil {
		t.Fatalf("GetTag failed: %v", err)
	}
	got := false
	for _, uid := range tag.BelongsTo {
		if uid == noteUID {
			got = true
		}
	}
	if got != want {
		t.Errorf("tag %s belongs_to contains %s = %v, want %v", tagUID, noteUID, got, want)
	}
}

func TestUpdateNoteMissing(t *testing.T) {
	repos, cleanup := setupRepos(t)
	defer cleanup()

	_, err := repos.Notes.UpdateNote(context.Background(), "missing", &model.UpdateNotePayload{})
	if !utils.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestDeleteNoteIsSoft(t *testing.T) {
	repos, cleanup := setupRepos(t)
	defer cleanup()
	ctx := context.Background()

	note := createTextNote(t, repos, "u1", nil)

	deleted, err := repos.Notes.DeleteNote(ctx, note.UID)
	if err != nil {
		t.Fatalf("DeleteNote failed: %v", err)
	}
	if deleted.DeletedAt == nil {
		t.Error("expected deleted_at to be set")
	}

	// The document survives; direct get still finds it.
	direct, err := repos.Notes.GetNote(ctx, note.UID)
	if err != nil {
		t.Fatalf("GetNote failed: %v", err)
	}
	if direct == nil {
		t.Fatal("soft-deleted note must still exist")
	}

	// User-facing listing excludes it.
	listed, err := repos.Notes.GetUserNotes(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUserNotes failed: %v", err)
	}
	for _, n := range listed {
		if n.UID == note.UID {
			t.Error("soft-deleted note leaked into user listing")
		}
	}

	if _, err := repos.Notes.DeleteNote(ctx, "missing"); !utils.IsNotFound(err) {
		t.Errorf("expected NotFoundError for missing note, got %v", err)
	}
}

func TestGetUserNotesRejectsMalformedDocument(t *testing.T) {
	repos, cleanup := setupRepos(t)
	defer cleanup()
	ctx := context.Background()

	// A TODO without its done flag, bypassing the store.
	if _, err := repos.Notes.notes.InsertOne(ctx, bson.M{
		"_id":        "bad-note",
		"author_uid": "mal-u",
		"type":       "TODO",
		"title":      "Buy milk",
		"created_at": time.Now().UTC(),
	}); err != nil {
		t.Fatalf("raw insert failed: %v", err)
	}

	if _, err := repos.Notes.GetUserNotes(ctx, "mal-u"); !utils.IsValidation(err) {
		t.Fatalf("expected ValidationError for malformed stored note, got %v", err)
	}
}

func TestRemoveTagFromNote(t *testing.T) {
	repos, cleanup := setupRepos(t)
	defer cleanup()
	ctx := context.Background()

	tag, _ := repos.Tags.CreateTag(ctx, &model.CreateTagPayload{UserUID: "u1", Content: "alpha"})
	note := createTextNote(t, repos, "u1", []string{tag.UID})

	got, err := repos.Notes.RemoveTagFromNote(ctx, note.UID, tag.UID)
	if err != nil {
		t.Fatalf("RemoveTagFromNote failed: %v", err)
	}
	if got == nil || len(got.TagUIDs) != 0 {
		t.Errorf("expected tag removed from note, got %+v", got)
	}
	checkBelongsTo(t, repos, tag.UID, note.UID, false)

	// Idempotent on the already-absent side.
	if _, err := repos.Notes.RemoveTagFromNote(ctx, note.UID, tag.UID); err != nil {
		t.Errorf("expected re-removal to succeed, got %v", err)
	}

	// Missing note yields nil, not an error.
	got, err = repos.Notes.RemoveTagFromNote(ctx, "missing", tag.UID)
	if err != nil {
		t.Fatalf("RemoveTagFromNote on missing note failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil note, got %+v", got)
	}
}

func TestTodoTransitions(t *testing.T) {
	repos, cleanup := setupRepos(t)
	defer cleanup()
	ctx := context.Background()

	todo, err := repos.Notes.CreateNote(ctx, &model.CreateNotePayload{
		AuthorUID: "u1",
		Type:      model.NoteTypeTodo,
		Title:     "Buy milk",
	})
	if err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	done, err := repos.Notes.MarkTodoAsDone(ctx, todo.UID)
	if err != nil {
		t.Fatalf("MarkTodoAsDone failed: %v", err)
	}
	if done.Done == nil || !*done.Done || done.CompletedAt == nil {
		t.Errorf("expected done with completed_at, got %+v", done)
	}

	if _, err := repos.Notes.MarkTodoAsDone(ctx, todo.UID); !utils.IsValidation(err) {
		t.Errorf("expected ValidationError for double done, got %v", err)
	}

	undone, err := repos.Notes.MarkTodoAsNotDone(ctx, todo.UID)
	if err != nil {
		t.Fatalf("MarkTodoAsNotDone failed: %v", err)
	}
	if undone.Done == nil || *undone.Done || undone.CompletedAt != nil {
		t.Errorf("expected not-done with nil completed_at, got %+v", undone)
	}

	if _, err := repos.Notes.MarkTodoAsNotDone(ctx, todo.UID); !utils.IsValidation(err) {
		t.Errorf("expected ValidationError for double undone, got %v", err)
	}

	// Variant guard: a TEXT note cannot transition.
	text := createTextNote(t, repos, "u1", nil)
	if _, err := repos.Notes.MarkTodoAsDone(ctx, text.UID); !utils.IsValidation(err) {
		t.Errorf("expected ValidationError for wrong variant, got %v", err)
	}

	if _, err := repos.Notes.MarkTodoAsDone(ctx, "missing"); !utils.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestChecklistItemLifecycle(t *testing.T) {
	repos, cleanup := setupRepos(t)
	defer cleanup()
	ctx := context.Background()

	checklist, err := repos.Notes.CreateNote(ctx, &model.CreateNotePayload{
		AuthorUID: "u1",
		Type:      model.NoteTypeChecklist,
		Title:     "Groceries",
	})
	if err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	note, err := repos.Notes.AddChecklistItem(ctx, checklist.UID, model.ChecklistItem{ID: "a", Text: "milk"})
	if err != nil {
		t.Fatalf("AddChecklistItem failed: %v", err)
	}
	if len(note.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(note.Items))
	}

	if _, err := repos.Notes.AddChecklistItem(ctx, checklist.UID, model.ChecklistItem{ID: "a", Text: "again"}); !utils.IsValidation(err) {
		t.Errorf("expected ValidationError for duplicate id, got %v", err)
	}

	note, err = repos.Notes.AddChecklistItem(ctx, checklist.UID, model.ChecklistItem{ID: "b", Text: "bread"})
	if err != nil {
		t.Fatalf("AddChecklistItem failed: %v", err)
	}

	note, err = repos.Notes.ToggleChecklistItem(ctx, checklist.UID, "a")
	if err != nil {
		t.Fatalf("ToggleChecklistItem failed: %v", err)
	}
	if idx := note.ItemIndex("a"); !note.Items[idx].Done {
		t.Error("expected item a toggled to done")
	}
	if idx := note.ItemIndex("b"); note.Items[idx].Done {
		t.Error("toggle must not touch other items")
	}

	if _, err := repos.Notes.ToggleChecklistItem(ctx, checklist.UID, "zzz"); !utils.IsValidation(err) {
		t.Errorf("expected ValidationError for missing item, got %v", err)
	}

	note, err = repos.Notes.RemoveChecklistItem(ctx, checklist.UID, "a")
	if err != nil {
		t.Fatalf("RemoveChecklistItem failed: %v", err)
	}
	if note.ItemIndex("a") >= 0 {
		t.Error("expected item a removed")
	}

	if _, err := repos.Notes.RemoveChecklistItem(ctx, checklist.UID, "a"); !utils.IsValidation(err) {
		t.Errorf("expected ValidationError for re-removal, got %v", err)
	}
}
