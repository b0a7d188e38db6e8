package corpus

import (
	"fmt"
	"sort"
	"strings"
)

// Corpus is the immutable, canonically ordered verse collection. It is built once at startup
// and is safe for concurrent use.
type Corpus struct {
	verses    []Verse
	ordinalID map[int64]int
	ordinalOf map[VerseRef]int
	chapters  map[ChapterRef][2]int // ordinal range [first, last]
}

// Load validates the verses and assigns ordinals 0..N-1 by (book position, chapter, verse).
func Load(verses []Verse) (*Corpus, error) {
	if len(verses) == 0 {
		return nil, ErrEmptyCorpus
	}

	sorted := make([]Verse, len(verses))
	positions := make(map[int64]int, len(verses))
	for i, v := range verses {
		book, ok := BookByID(v.Ref.Book)
		if !ok {
			return nil, fmt.Errorf("%w: verse %d has unknown book %q", ErrMalformedCorpus, v.ID, v.Ref.Book)
		}
		if v.Ref.Chapter < 1 || v.Ref.Chapter > book.Chapters {
			return nil, fmt.Errorf("%w: verse %d has chapter %d outside 1..%d", ErrMalformedCorpus, v.ID, v.Ref.Chapter, book.Chapters)
		}
		if v.Ref.Verse < 1 {
			return nil, fmt.Errorf("%w: verse %d has verse number %d", ErrMalformedCorpus, v.ID, v.Ref.Verse)
		}
		v.Ref.Book = book.ID
		sorted[i] = v
		positions[v.ID] = book.Position
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		pa, pb := positions[a.ID], positions[b.ID]
		if pa != pb {
			return pa < pb
		}
		if a.Ref.Chapter != b.Ref.Chapter {
			return a.Ref.Chapter < b.Ref.Chapter
		}
		return a.Ref.Verse < b.Ref.Verse
	})

	c := &Corpus{
		verses:    sorted,
		ordinalID: make(map[int64]int, len(sorted)),
		ordinalOf: make(map[VerseRef]int, len(sorted)),
		chapters:  make(map[ChapterRef][2]int),
	}
	for n, v := range sorted {
		if _, dup := c.ordinalID[v.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate verse id %d", ErrMalformedCorpus, v.ID)
		}
		if _, dup := c.ordinalOf[v.Ref]; dup {
			return nil, fmt.Errorf("%w: duplicate reference %s", ErrMalformedCorpus, v.Ref)
		}
		c.ordinalID[v.ID] = n
		c.ordinalOf[v.Ref] = n

		key := ChapterRef{Book: v.Ref.Book, Chapter: v.Ref.Chapter}
		if r, ok := c.chapters[key]; ok {
			c.chapters[key] = [2]int{r[0], n}
		} else {
			c.chapters[key] = [2]int{n, n}
		}
	}

	return c, nil
}

func (c *Corpus) Len() int {
	return len(c.verses)
}

func (c *Corpus) First() Verse {
	return c.verses[0]
}

func (c *Corpus) Last() Verse {
	return c.verses[len(c.verses)-1]
}

// OrdinalOf returns the zero-based canonical position of a verse id.
func (c *Corpus) OrdinalOf(verseID int64) (int, error) {
	n, ok := c.ordinalID[verseID]
	if !ok {
		return 0, fmt.Errorf("%w: id %d", ErrNotFound, verseID)
	}
	return n, nil
}

func (c *Corpus) VerseAtOrdinal(n int) (Verse, error) {
	if n < 0 || n >= len(c.verses) {
		return Verse{}, fmt.Errorf("%w: ordinal %d", ErrNotFound, n)
	}
	return c.verses[n], nil
}

func (c *Corpus) ByID(verseID int64) (Verse, error) {
	n, err := c.OrdinalOf(verseID)
	if err != nil {
		return Verse{}, err
	}
	return c.verses[n], nil
}

func (c *Corpus) Lookup(ref VerseRef) (Verse, error) {
	n, err := c.ordinalOfRef(ref)
	if err != nil {
		return Verse{}, err
	}
	return c.verses[n], nil
}

// Next returns the reference after ref, wrapping from the last verse to the first.
func (c *Corpus) Next(ref VerseRef) (VerseRef, error) {
	n, err := c.ordinalOfRef(ref)
	if err != nil {
		return VerseRef{}, err
	}
	return c.verses[(n+1)%len(c.verses)].Ref, nil
}

// Previous returns the reference before ref, wrapping from the first verse to the last.
func (c *Corpus) Previous(ref VerseRef) (VerseRef, error) {
	n, err := c.ordinalOfRef(ref)
	if err != nil {
		return VerseRef{}, err
	}
	size := len(c.verses)
	return c.verses[(n-1+size)%size].Ref, nil
}

// Chapter returns the verses of one chapter in order.
func (c *Corpus) Chapter(book string, chapter int) ([]Verse, error) {
	r, ok := c.chapters[ChapterRef{Book: strings.ToLower(book), Chapter: chapter}]
	if !ok {
		return nil, fmt.Errorf("%w: chapter %s %d", ErrNotFound, book, chapter)
	}
	out := make([]Verse, r[1]-r[0]+1)
	copy(out, c.verses[r[0]:r[1]+1])
	return out, nil
}

// NextChapter follows canonical book order across book boundaries and wraps at the end.
func (c *Corpus) NextChapter(book string, chapter int) (ChapterRef, error) {
	r, ok := c.chapters[ChapterRef{Book: strings.ToLower(book), Chapter: chapter}]
	if !ok {
		return ChapterRef{}, fmt.Errorf("%w: chapter %s %d", ErrNotFound, book, chapter)
	}
	v := c.verses[(r[1]+1)%len(c.verses)]
	return ChapterRef{Book: v.Ref.Book, Chapter: v.Ref.Chapter}, nil
}

func (c *Corpus) PreviousChapter(book string, chapter int) (ChapterRef, error) {
	r, ok := c.chapters[ChapterRef{Book: strings.ToLower(book), Chapter: chapter}]
	if !ok {
		return ChapterRef{}, fmt.Errorf("%w: chapter %s %d", ErrNotFound, book, chapter)
	}
	size := len(c.verses)
	v := c.verses[(r[0]-1+size)%size]
	return ChapterRef{Book: v.Ref.Book, Chapter: v.Ref.Chapter}, nil
}

// Scan walks the corpus in ordinal order and returns the first verse for which keep reports
// true. ok is false when no verse matched.
func (c *Corpus) Scan(keep func(Verse) bool) (Verse, bool) {
	for _, v := range c.verses {
		if keep(v) {
			return v, true
		}
	}
	return Verse{}, false
}

func (c *Corpus) ordinalOfRef(ref VerseRef) (int, error) {
	ref.Book = strings.ToLower(strings.TrimSpace(ref.Book))
	n, ok := c.ordinalOf[ref]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return n, nil
}
