package model

// Tag is a user-scoped label. NormalizedContent is the de-duplication key
// (see utils.NormalizeTagContent); BelongsTo is the back-reference set of
// note uids currently pointing at this tag.
type Tag struct {
	UID               string   `bson:"_id,omitempty" json:"uid"`
	UserUID           string   `bson:"user_uid" json:"user_uid" validate:"required"`
	Content           string   `bson:"content" json:"content" validate:"required"`
	NormalizedContent string   `bson:"normalized_content" json:"normalized_content" validate:"required"`
	BelongsTo         []string `bson:"belongs_to" json:"belongs_to"`
}

// CreateTagPayload is the store-facing creation input; NormalizedContent is
// derived by the store, never supplied by callers.
type CreateTagPayload struct {
	UserUID   string
	Content   string
	BelongsTo []string
}
