package corpus

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/taiwoajasa245/reading-engine-api/internal/database"
)

// Repository reads the static verse reference data written by the bulk importer.
type Repository interface {
	ListVerses(ctx context.Context) ([]Verse, error)
	CountBooks(ctx context.Context) (int, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(dbService database.Service) Repository {
	return &repository{db: dbService.DB()}
}

func (r *repository) ListVerses(ctx context.Context) ([]Verse, error) {
	query := `
		SELECT v.id, v.book_id, v.chapter_number, v.verse_number, v.text
		FROM verses v
		JOIN books b ON b.id = v.book_id
		ORDER BY b.position, v.chapter_number, v.verse_number
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query verses: %w", err)
	}
	defer rows.Close()

	var verses []Verse
	for rows.Next() {
		var v Verse
		if err := rows.Scan(&v.ID, &v.Ref.Book, &v.Ref.Chapter, &v.Ref.Verse, &v.Text); err != nil {
			return nil, fmt.Errorf("failed to scan verse: %w", err)
		}
		verses = append(verses, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read verses: %w", err)
	}

	return verses, nil
}

func (r *repository) CountBooks(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return n, nil
}

// LoadFromRepository builds the corpus from storage. Any error here is fatal at startup:
// the engine must not serve from an empty or malformed corpus.
func LoadFromRepository(ctx context.Context, repo Repository) (*Corpus, error) {
	books, err := repo.CountBooks(ctx)
	if err != nil {
		return nil, err
	}
	if books != len(Books) {
		return nil, fmt.Errorf("%w: books table has %d rows, want %d", ErrMalformedCorpus, books, len(Books))
	}

	verses, err := repo.ListVerses(ctx)
	if err != nil {
		return nil, err
	}
	return Load(verses)
}
