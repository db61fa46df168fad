package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"notero/model"
	"notero/repository"
	"notero/utils"
)

const (
	minSuggestionQueryLength = 3
	maxSuggestions           = 10
	maxSuggestionDistance    = 3
	maxTagContentLength      = 50
)

// TagSuggestion is a ranked match for an autocomplete query.
type TagSuggestion struct {
	*model.Tag
	Distance int `json:"distance"`
}

// TagsService fronts the tag store and carries the suggestion ranking with
// its memoization cache. The cache has no eviction; it grows with the
// distinct (query, tag set) pairs a user actually types.
type TagsService struct {
	TagsRepo *repository.TagsRepo

	mu       sync.RWMutex
	memoized map[string][]TagSuggestion
}

func NewTagsService(repo *repository.TagsRepo) *TagsService {
	return &TagsService{
		TagsRepo: repo,
		memoized: make(map[string][]TagSuggestion),
	}
}

func (svc *TagsService) CreateTag(ctx context.Context, payload *model.CreateTagPayload) (*model.Tag, error) {
	content := strings.TrimSpace(payload.Content)
	if content == "" {
		return nil, utils.NewFieldValidationError(utils.FieldViolation{Field: "content", Message: "is required"})
	}
	if len(content) > maxTagContentLength {
		return nil, utils.NewFieldValidationError(utils.FieldViolation{Field: "content", Message: "exceeds maximum length"})
	}
	payload.Content = content

	return svc.TagsRepo.CreateTag(ctx, payload)
}

func (svc *TagsService) GetTag(ctx context.Context, uid string) (*model.Tag, error) {
	return svc.TagsRepo.GetTag(ctx, uid)
}

func (svc *TagsService) GetUserTags(ctx context.Context, userUID string) ([]*model.Tag, error) {
	return svc.TagsRepo.GetUserTags(ctx, userUID)
}

// SuggestTags returns the user's best-matching tags for an autocomplete
// query, memoized per (query, ordered tag uid list) so repeated lookups with
// an unchanged tag set cost nothing.
func (svc *TagsService) SuggestTags(ctx context.Context, userUID, query string) ([]TagSuggestion, error) {
	if utf8.RuneCountInString(query) < minSuggestionQueryLength {
		return []TagSuggestion{}, nil
	}

	tags, err := svc.TagsRepo.GetUserTags(ctx, userUID)
	if err != nil {
		return nil, err
	}

	sorted := make([]*model.Tag, len(tags))
	copy(sorted, tags)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].NormalizedContent < sorted[j].NormalizedContent
	})

	key := suggestionKey(query, sorted)

	svc.mu.RLock()
	cached, hit := svc.memoized[key]
	svc.mu.RUnlock()
	if hit {
		return cached, nil
	}

	ranked := RankTags(sorted, query)

	svc.mu.Lock()
	svc.memoized[key] = ranked
	svc.mu.Unlock()

	return ranked, nil
}

func suggestionKey(query string, sorted []*model.Tag) string {
	uids := make([]string, len(sorted))
	for i, tag := range sorted {
		uids[i] = tag.UID
	}
	return query + "-" + strings.Join(uids, "|")
}

// RankTags filters candidates by normalized-substring containment or an edit
// distance below maxSuggestionDistance, then orders them by ascending
// distance. The sort is stable, so equal distances keep the incoming
// (normalized content) order. At most maxSuggestions results are returned.
func RankTags(tags []*model.Tag, query string) []TagSuggestion {
	normalizedQuery := utils.NormalizeTagContent(query)

	matches := make([]TagSuggestion, 0, len(tags))
	for _, tag := range tags {
		distance := utils.LevenshteinDistance(query, tag.Content)
		containsSubstring := strings.Contains(tag.NormalizedContent, normalizedQuery)
		if containsSubstring || distance < maxSuggestionDistance {
			matches = append(matches, TagSuggestion{Tag: tag, Distance: distance})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}
	return matches
}
