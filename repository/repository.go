package repository

import (
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// Kind names an entity family served by the repository layer.
type Kind string

const (
	KindNotes Kind = "Notes"
	KindTags  Kind = "Tags"
)

// Repositories holds the shared store instances for one database handle.
// Callers construct one of these at startup instead of reaching for
// package-level singletons, so tests can run isolated instances side by
// side.
type Repositories struct {
	Notes *NotesRepo
	Tags  *TagsRepo
	Users *UsersRepo
}

// NewRepositories wires every store to the same client, so all of them
// share the transaction machinery of one deployment.
func NewRepositories(client *mongo.Client, tagCache TagCache) *Repositories {
	return &Repositories{
		Notes: GetNotesRepo(client, tagCache),
		Tags:  GetTagsRepo(client, tagCache),
		Users: GetUsersRepo(client),
	}
}

// Get returns the shared store for an entity kind. An unknown kind is a
// programming error, not a recoverable condition, and panics.
func (r *Repositories) Get(kind Kind) interface{} {
	switch kind {
	case KindNotes:
		return r.Notes
	case KindTags:
		return r.Tags
	default:
		panic(fmt.Sprintf("unknown repository kind %q", kind))
	}
}
