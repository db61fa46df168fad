package repository

import (
	"context"
	"log"
	"os"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/singleflight"

	"notero/model"
	"notero/utils"
)

// TagCache is the optional short-TTL cache in front of tag reads; the redis
// implementation lives in services. A nil cache degrades to coalescing only.
type TagCache interface {
	GetTag(ctx context.Context, uid string) (*model.Tag, error)
	SetTag(ctx context.Context, tag *model.Tag) error
	InvalidateTag(ctx context.Context, uid string) error
}

// invalidateCachedTags drops cached entries after a committed write touching
// the given tags. A failure only means the stale entry lives out its TTL.
func invalidateCachedTags(ctx context.Context, cache TagCache, uids ...string) {
	if cache == nil {
		return
	}
	for _, uid := range uids {
		if err := cache.InvalidateTag(ctx, uid); err != nil {
			log.Printf("tag cache invalidation failed for %s: %v", uid, err)
		}
	}
}

// TagsRepo owns the tags collection. Reads for the same uid are coalesced so
// a burst of callers resolving one tag produces a single lookup; creates are
// transactional lookup-or-merge on the normalized content.
type TagsRepo struct {
	client *mongo.Client
	tags   *mongo.Collection
	cache  TagCache
	flight singleflight.Group
}

func GetTagsRepo(client *mongo.Client, cache TagCache) *TagsRepo {
	db := client.Database(os.Getenv("MONGO_DB"))
	return &TagsRepo{
		client: client,
		tags:   db.Collection(TagsCollection),
		cache:  cache,
	}
}

func (r *TagsRepo) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) (interface{}, error)) (interface{}, error) {
	session, err := r.client.StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)

	return session.WithTransaction(ctx, fn)
}

func decodeTag(res *mongo.SingleResult) (*model.Tag, error) {
	var tag model.Tag
	if err := res.Decode(&tag); err != nil {
		return nil, err
	}
	if err := tag.ValidateWithUID(); err != nil {
		return nil, err
	}
	return &tag, nil
}

// GetTag fetches a tag by uid; missing is a nil result. Concurrent identical
// requests share one underlying read, and resolved tags sit in the TTL cache
// for a few seconds to absorb read storms. Cache failures only cost the
// shortcut, never the read.
func (r *TagsRepo) GetTag(ctx context.Context, uid string) (*model.Tag, error) {
	result, err, _ := r.flight.Do(uid, func() (interface{}, error) {
		if r.cache != nil {
			cached, err := r.cache.GetTag(ctx, uid)
			if err != nil {
				log.Printf("tag cache read failed for %s: %v", uid, err)
			} else if cached != nil {
				utils.TrackTagCache("hit")
				return cached, nil
			}
			utils.TrackTagCache("miss")
		}

		timer := utils.TrackDBOperation("find", TagsCollection)
		defer timer.ObserveDuration()

		res := r.tags.FindOne(ctx, bson.M{"_id": uid})
		if res.Err() == mongo.ErrNoDocuments {
			return (*model.Tag)(nil), nil
		}
		if res.Err() != nil {
			return nil, res.Err()
		}
		tag, err := decodeTag(res)
		if err != nil {
			return nil, err
		}

		if r.cache != nil {
			if err := r.cache.SetTag(ctx, tag); err != nil {
				log.Printf("tag cache write failed for %s: %v", uid, err)
			}
		}
		return tag, nil
	})
	if err != nil {
		utils.TrackError("database", "tag_fetch_failed")
		return nil, err
	}

	utils.TrackTagOperation("get")
	return result.(*model.Tag), nil
}

// GetUserTags retrieves all tags owned by a user.
func (r *TagsRepo) GetUserTags(ctx context.Context, userUID string) ([]*model.Tag, error) {
	timer := utils.TrackDBOperation("find", TagsCollection)
	defer timer.ObserveDuration()

	cursor, err := r.tags.Find(ctx, bson.M{"user_uid": userUID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tags []*model.Tag
	if err = cursor.All(ctx, &tags); err != nil {
		return nil, err
	}
	for _, tag := range tags {
		if err := tag.ValidateWithUID(); err != nil {
			return nil, err
		}
	}
	return tags, nil
}

// CreateTag creates a tag or merges into the existing one carrying the same
// normalized content for this user. The lookup and the write share one
// transaction, and the unique (user_uid, normalized_content) index backs the
// invariant; if a concurrent create still wins the race, the duplicate-key
// failure is resolved by re-running the body, which then finds and merges.
func (r *TagsRepo) CreateTag(ctx context.Context, payload *model.CreateTagPayload) (*model.Tag, error) {
	timer := utils.TrackDBOperation("insert", TagsCollection)
	defer timer.ObserveDuration()

	normalized := utils.NormalizeTagContent(payload.Content)

	tag, err := r.createOrMerge(ctx, payload, normalized)
	if mongo.IsDuplicateKeyError(err) {
		// Lost the race against a concurrent create for the same
		// normalized content; the second pass finds the winner.
		tag, err = r.createOrMerge(ctx, payload, normalized)
	}
	if err != nil {
		utils.TrackError("database", "tag_creation_failed")
		return nil, err
	}

	invalidateCachedTags(ctx, r.cache, tag.UID)
	return tag, nil
}

func (r *TagsRepo) createOrMerge(ctx context.Context, payload *model.CreateTagPayload, normalized string) (*model.Tag, error) {
	result, err := r.withTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res := r.tags.FindOne(sc, bson.M{
			"user_uid":           payload.UserUID,
			"normalized_content": normalized,
		})
		if res.Err() == nil {
			existing, err := decodeTag(res)
			if err != nil {
				return nil, err
			}
			if len(payload.BelongsTo) > 0 {
				_, err := r.tags.UpdateOne(sc,
					bson.M{"_id": existing.UID},
					bson.M{"$addToSet": bson.M{"belongs_to": bson.M{"$each": payload.BelongsTo}}})
				if err != nil {
					return nil, err
				}
				existing.BelongsTo = uniqueUnion(existing.BelongsTo, payload.BelongsTo)
			}
			utils.TrackTagOperation("merge")
			return existing, nil
		}
		if res.Err() != mongo.ErrNoDocuments {
			return nil, res.Err()
		}

		tag := &model.Tag{
			UID:               uuid.NewString(),
			UserUID:           payload.UserUID,
			Content:           payload.Content,
			NormalizedContent: normalized,
			BelongsTo:         uniqueUnion(nil, payload.BelongsTo),
		}
		if err := tag.Validate(); err != nil {
			return nil, err
		}

		if _, err := r.tags.InsertOne(sc, tag); err != nil {
			return nil, err
		}
		utils.TrackTagOperation("create")
		return tag, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*model.Tag), nil
}

// uniqueUnion returns base followed by the elements of extra not already
// present, preserving first-seen order.
func uniqueUnion(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]struct{}, len(base)+len(extra))
	for _, lists := range [][]string{base, extra} {
		for _, v := range lists {
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
