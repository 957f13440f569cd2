package util

import (
	"fmt"
	"regexp"
	"strings"
)

var unsafeChars = regexp.MustCompile(`[^a-z0-9_.-]`)

// MakeFilename converts a display string into a safe, lowercase
// filename fragment: spaces become underscores and anything outside
// [a-z0-9_.-] is dropped.
func MakeFilename(title string) string {
	title = strings.ToLower(strings.ReplaceAll(title, " ", "_"))
	return unsafeChars.ReplaceAllString(title, "")
}

// StoryDir returns the mirror-relative directory name for a story's
// chapter files. It depends only on the archive key and the site-local
// story id, so a title change never orphans previously written files.
func StoryDir(archive, siteID string) string {
	return fmt.Sprintf("%s-%s", MakeFilename(archive), MakeFilename(siteID))
}

// AuthorDir returns the historical directory name for an author,
// "{name}-{archive}-{id}". Only used for display purposes; story
// content lives under StoryDir.
func AuthorDir(name, archive, siteID string) string {
	return fmt.Sprintf("%s-%s-%s", MakeFilename(name), archive, siteID)
}

// ChapterFileName returns the zero-padded content file name for a
// chapter index, e.g. 0000.html for the first chapter. The fixed width
// keeps a directory listing sorted in chapter order.
func ChapterFileName(num int) string {
	return fmt.Sprintf("%04d.html", num)
}
