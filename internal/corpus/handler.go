package corpus

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taiwoajasa245/reading-engine-api/pkg/response"
)

type VerseView struct {
	Verse    Verse    `json:"verse"`
	Ordinal  int      `json:"ordinal"`
	Previous VerseRef `json:"previous"`
	Next     VerseRef `json:"next"`
}

type ChapterView struct {
	Book     Book       `json:"book"`
	Chapter  int        `json:"chapter"`
	Verses   []Verse    `json:"verses"`
	Previous ChapterRef `json:"previous"`
	Next     ChapterRef `json:"next"`
}

type Handler struct {
	corpus *Corpus
}

func NewHandler(c *Corpus) Handler {
	return Handler{corpus: c}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(w, http.StatusNotFound, "Verse not found", err.Error())
	case errors.Is(err, ErrInvalidRef):
		response.Error(w, http.StatusBadRequest, "Invalid reference", err.Error())
	default:
		response.Error(w, http.StatusInternalServerError, "Failed to read corpus", "internal error")
	}
}

func positiveParam(r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	return n, err == nil && n > 0
}

// View resolves ref and its neighbours in canonical order.
func (c *Corpus) View(ref VerseRef) (*VerseView, error) {
	v, err := c.Lookup(ref)
	if err != nil {
		return nil, err
	}
	ordinal, err := c.OrdinalOf(v.ID)
	if err != nil {
		return nil, err
	}
	prev, err := c.Previous(v.Ref)
	if err != nil {
		return nil, err
	}
	next, err := c.Next(v.Ref)
	if err != nil {
		return nil, err
	}
	return &VerseView{Verse: v, Ordinal: ordinal, Previous: prev, Next: next}, nil
}

func (h *Handler) GetVerseHandler(w http.ResponseWriter, r *http.Request) {
	chapter, ok := positiveParam(r, "chapter")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid chapter", "chapter must be a positive integer")
		return
	}
	verse, ok := positiveParam(r, "verse")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid verse", "verse must be a positive integer")
		return
	}

	view, err := h.corpus.View(VerseRef{Book: chi.URLParam(r, "book"), Chapter: chapter, Verse: verse})
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, view, "successfully")
}

// LookupHandler resolves a free-form reference such as "john 3:16" or "1 samuel 3:10".
func (h *Handler) LookupHandler(w http.ResponseWriter, r *http.Request) {
	ref, err := ParseRef(r.URL.Query().Get("ref"))
	if err != nil {
		writeError(w, err)
		return
	}

	view, err := h.corpus.View(ref)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, view, "successfully")
}

func (h *Handler) GetChapterHandler(w http.ResponseWriter, r *http.Request) {
	book, ok := BookByID(chi.URLParam(r, "book"))
	if !ok {
		response.Error(w, http.StatusNotFound, "Book not found", chi.URLParam(r, "book"))
		return
	}
	chapter, ok := positiveParam(r, "chapter")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid chapter", "chapter must be a positive integer")
		return
	}

	verses, err := h.corpus.Chapter(book.ID, chapter)
	if err != nil {
		writeError(w, err)
		return
	}
	prev, err := h.corpus.PreviousChapter(book.ID, chapter)
	if err != nil {
		writeError(w, err)
		return
	}
	next, err := h.corpus.NextChapter(book.ID, chapter)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, ChapterView{
		Book:     book,
		Chapter:  chapter,
		Verses:   verses,
		Previous: prev,
		Next:     next,
	}, "successfully")
}
