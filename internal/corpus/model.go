package corpus

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("verse not found")
	ErrEmptyCorpus     = errors.New("corpus is empty")
	ErrMalformedCorpus = errors.New("corpus is malformed")
	ErrInvalidRef      = errors.New("invalid verse reference")
)

type VerseRef struct {
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
	Verse   int    `json:"verse"`
}

func (r VerseRef) String() string {
	return fmt.Sprintf("%s %d:%d", r.Book, r.Chapter, r.Verse)
}

type Verse struct {
	ID   int64    `json:"id"`
	Ref  VerseRef `json:"ref"`
	Text string   `json:"text"`
}

// ChapterRef addresses a whole chapter, used by chapter navigation.
type ChapterRef struct {
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
}
