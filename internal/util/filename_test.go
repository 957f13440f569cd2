package util

import "testing"

func TestMakeFilename(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"A Story Title", "a_story_title"},
		{"What If...?", "what_if..."},
		{"Hello, World!", "hello_world"},
		{"already_safe-name.1", "already_safe-name.1"},
		{"", ""},
	}
	for _, tc := range testCases {
		if got := MakeFilename(tc.in); got != tc.want {
			t.Errorf("MakeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStoryDir(t *testing.T) {
	if got := StoryDir("ffnet", "12345"); got != "ffnet-12345" {
		t.Errorf("Expected 'ffnet-12345', got %q", got)
	}
}

func TestAuthorDir(t *testing.T) {
	if got := AuthorDir("Some Author", "ffnet", "99"); got != "some_author-ffnet-99" {
		t.Errorf("Expected 'some_author-ffnet-99', got %q", got)
	}
}

func TestChapterFileName(t *testing.T) {
	testCases := []struct {
		num  int
		want string
	}{
		{0, "0000.html"},
		{1, "0001.html"},
		{11, "0011.html"},
		{9999, "9999.html"},
		{10000, "10000.html"}, // no truncation past four digits
	}
	for _, tc := range testCases {
		if got := ChapterFileName(tc.num); got != tc.want {
			t.Errorf("ChapterFileName(%d) = %q, want %q", tc.num, got, tc.want)
		}
	}
}
