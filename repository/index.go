package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SetupIndexes creates the indexes the stores rely on. The unique
// (user_uid, normalized_content) tag index is load-bearing: it backs the
// at-most-one-tag-per-normalized-name invariant under concurrent creates.
func SetupIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	notesCollection := db.Collection(NotesCollection)
	tagsCollection := db.Collection(TagsCollection)
	usersCollection := db.Collection(UsersCollection)

	noteIndexes := []mongo.IndexModel{
		// Listing index: a user's live notes, newest first
		{
			Keys: bson.D{
				{Key: "author_uid", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().
				SetName("author_notes_date"),
		},
		// Soft-delete visibility filter
		{
			Keys: bson.D{
				{Key: "author_uid", Value: 1},
				{Key: "deleted_at", Value: 1},
			},
			Options: options.Index().
				SetName("author_live_notes"),
		},
		// Multikey index over tag references
		{
			Keys: bson.D{{Key: "tag_uids", Value: 1}},
			Options: options.Index().
				SetName("note_tag_refs"),
		},
	}

	tagIndexes := []mongo.IndexModel{
		// Uniqueness of normalized content per user
		{
			Keys: bson.D{
				{Key: "user_uid", Value: 1},
				{Key: "normalized_content", Value: 1},
			},
			Options: options.Index().
				SetName("user_normalized_content").
				SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_uid", Value: 1}},
			Options: options.Index().
				SetName("user_tags"),
		},
	}

	userIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().
				SetName("user_email").
				SetUnique(true),
		},
	}

	if _, err := notesCollection.Indexes().CreateMany(ctx, noteIndexes); err != nil {
		return fmt.Errorf("failed to create notes indexes: %w", err)
	}
	if _, err := tagsCollection.Indexes().CreateMany(ctx, tagIndexes); err != nil {
		return fmt.Errorf("failed to create tags indexes: %w", err)
	}
	if _, err := usersCollection.Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("failed to create users indexes: %w", err)
	}

	log.Println("Successfully created all indexes")
	return nil
}
