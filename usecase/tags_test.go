package usecase

import (
	"testing"

	"notero/model"
	"notero/utils"
)

func tag(uid, content string) *model.Tag {
	return &model.Tag{
		UID:               uid,
		UserUID:           "user-1",
		Content:           content,
		NormalizedContent: utils.NormalizeTagContent(content),
	}
}

func TestRankTagsSubstringMatch(t *testing.T) {
	tags := []*model.Tag{
		tag("t1", "Side Projects"),
		tag("t2", "Groceries"),
	}

	got := RankTags(tags, "projects")
	if len(got) != 1 || got[0].UID != "t1" {
		t.Fatalf("expected only t1 to match by substring, got %+v", got)
	}
}

func TestRankTagsDistanceMatch(t *testing.T) {
	tags := []*model.Tag{
		tag("t1", "work"),
		tag("t2", "holiday"),
	}

	// "wort" is not a substring of either, but one edit away from "work".
	got := RankTags(tags, "wort")
	if len(got) != 1 || got[0].UID != "t1" {
		t.Fatalf("expected only t1 to match by distance, got %+v", got)
	}
	if got[0].Distance != 1 {
		t.Errorf("expected distance 1, got %d", got[0].Distance)
	}
}

func TestRankTagsOrderedByDistance(t *testing.T) {
	tags := []*model.Tag{
		tag("t1", "worked"),
		tag("t2", "work"),
		tag("t3", "worldwide work notes"),
	}

	got := RankTags(tags, "work")
	if len(got) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(got))
	}
	if got[0].UID != "t2" {
		t.Errorf("expected exact match first, got %s", got[0].UID)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Distance > got[i].Distance {
			t.Errorf("results not sorted by ascending distance: %+v", got)
		}
	}
}

func TestRankTagsCap(t *testing.T) {
	tags := make([]*model.Tag, 0, 15)
	for i := 0; i < 15; i++ {
		tags = append(tags, tag(string(rune('a'+i)), "project notes"))
	}

	got := RankTags(tags, "project")
	if len(got) != 10 {
		t.Errorf("expected results capped at 10, got %d", len(got))
	}
}

func TestRankTagsNoMatches(t *testing.T) {
	tags := []*model.Tag{
		tag("t1", "groceries"),
		tag("t2", "holiday"),
	}

	if got := RankTags(tags, "quarterly-report"); len(got) != 0 {
		t.Errorf("expected no matches, got %+v", got)
	}
}

func TestSuggestTagsShortQuery(t *testing.T) {
	// Queries under three characters never reach the store; a service with
	// no repository wired proves it.
	svc := NewTagsService(nil)

	// "né" is three bytes but two characters; the guard counts runes.
	for _, query := range []string{"ab", "né", "日本"} {
		got, err := svc.SuggestTags(nil, "user-1", query)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", query, err)
		}
		if len(got) != 0 {
			t.Errorf("expected empty result for short query %q, got %+v", query, got)
		}
	}
}

func TestCreateTagRequiresContent(t *testing.T) {
	svc := NewTagsService(nil)

	_, err := svc.CreateTag(nil, &model.CreateTagPayload{UserUID: "user-1", Content: "   "})
	if err == nil {
		t.Fatal("expected validation error for blank content")
	}
	if !utils.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
}
