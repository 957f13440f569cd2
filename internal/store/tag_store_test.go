package store_test

import (
	"testing"

	"github.com/ffmirror/ffmirror-go/internal/store"
	"github.com/ffmirror/ffmirror-go/internal/testutil"
)

func TestGetOrCreateTag(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)

	tx := mustBegin(t, db)
	first, err := s.GetOrCreateTag(tx, "Harry Potter")
	if err != nil {
		t.Fatalf("GetOrCreateTag (create) failed: %v", err)
	}
	if first.Name != "harry potter" {
		t.Errorf("Expected normalized name 'harry potter', got %q", first.Name)
	}

	// Same name, different case and padding: must return the same row.
	second, err := s.GetOrCreateTag(tx, "  HARRY POTTER ")
	if err != nil {
		t.Fatalf("GetOrCreateTag (get) failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("Expected existing tag id %d, got %d", first.ID, second.ID)
	}

	if _, err := s.GetOrCreateTag(tx, "   "); err == nil {
		t.Error("Expected error for blank tag name")
	}
	mustCommit(t, tx)
}

func TestAttachTagAndCounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)

	tx := mustBegin(t, db)
	st1, _ := s.CreateStory(tx, "ffnet", "100")
	st2, _ := s.CreateStory(tx, "ffnet", "200")
	naruto, _ := s.GetOrCreateTag(tx, "naruto")
	bleach, _ := s.GetOrCreateTag(tx, "bleach")

	// Attaching twice is a no-op, not a duplicate.
	for i := 0; i < 2; i++ {
		if err := s.AttachTag(tx, st1.ID, naruto.ID); err != nil {
			t.Fatalf("AttachTag failed: %v", err)
		}
	}
	s.AttachTag(tx, st1.ID, bleach.ID)
	s.AttachTag(tx, st2.ID, naruto.ID)
	mustCommit(t, tx)

	tags, err := s.TagsForStory(st1.ID)
	if err != nil {
		t.Fatalf("TagsForStory failed: %v", err)
	}
	if len(tags) != 2 || tags[0].Name != "bleach" || tags[1].Name != "naruto" {
		t.Errorf("Unexpected tags for story: %+v", tags)
	}

	counts, err := s.ListTagsWithCounts()
	if err != nil {
		t.Fatalf("ListTagsWithCounts failed: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("Expected 2 tags, got %d", len(counts))
	}
	// Ordered by name: bleach then naruto.
	if counts[0].StoryCount != 1 || counts[1].StoryCount != 2 {
		t.Errorf("Unexpected story counts: %d, %d", counts[0].StoryCount, counts[1].StoryCount)
	}
}
