package corpus

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseRef parses "<book> <chapter>:<verse>", e.g. "john 3:16" or "1 samuel 3:10".
// Spaces inside the book name are dropped so display-style names map onto slugs.
func ParseRef(s string) (VerseRef, error) {
	s = strings.TrimSpace(s)
	idx := strings.LastIndex(s, " ")
	if idx <= 0 {
		return VerseRef{}, fmt.Errorf("%w: %q", ErrInvalidRef, s)
	}

	bookPart := strings.ReplaceAll(strings.ToLower(s[:idx]), " ", "")
	book, ok := BookByID(bookPart)
	if !ok {
		return VerseRef{}, fmt.Errorf("%w: unknown book %q", ErrInvalidRef, s[:idx])
	}

	chapterStr, verseStr, found := strings.Cut(s[idx+1:], ":")
	if !found {
		return VerseRef{}, fmt.Errorf("%w: %q", ErrInvalidRef, s)
	}
	chapter, err := strconv.Atoi(chapterStr)
	if err != nil || chapter < 1 {
		return VerseRef{}, fmt.Errorf("%w: chapter %q", ErrInvalidRef, chapterStr)
	}
	verse, err := strconv.Atoi(verseStr)
	if err != nil || verse < 1 {
		return VerseRef{}, fmt.Errorf("%w: verse %q", ErrInvalidRef, verseStr)
	}

	return VerseRef{Book: book.ID, Chapter: chapter, Verse: verse}, nil
}
