package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taiwoajasa245/reading-engine-api/internal/database"
	"github.com/taiwoajasa245/reading-engine-api/internal/engagement"
)

// Queries are the ledger and profile operations. They run either directly on the pool or
// inside a transaction opened by ProgressRepo.InTx.
type Queries interface {
	EnsureProfile(ctx context.Context, userID uuid.UUID, at time.Time) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error)
	SetTimezone(ctx context.Context, userID uuid.UUID, tz string, at time.Time) error
	CreditRead(ctx context.Context, userID uuid.UUID, points int64, streak int, at time.Time) (engagement.Summary, error)
	AddPoints(ctx context.Context, userID uuid.UUID, points int64, at time.Time) (engagement.Summary, error)
	SaveSummary(ctx context.Context, summary engagement.Summary) error

	InsertRead(ctx context.Context, userID uuid.UUID, verseID int64, at time.Time) (bool, error)
	ReadVerseIDs(ctx context.Context, userID uuid.UUID) (map[int64]struct{}, error)
	ListReads(ctx context.Context, userID uuid.UUID, since time.Time) ([]engagement.ReadingEvent, error)

	InsertReflection(ctx context.Context, ev engagement.ReflectionEvent) (int64, error)
	ListReflections(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]engagement.ReflectionEvent, error)

	InsertAward(ctx context.Context, award engagement.MissionAward) (bool, error)
	ListAwards(ctx context.Context, userID uuid.UUID) ([]engagement.MissionAward, error)
}

// ProgressRepo is the persisted ledger. InTx commits when fn returns nil and rolls back
// otherwise, so a failed write leaves every table unchanged.
type ProgressRepo interface {
	Queries
	InTx(ctx context.Context, fn func(q Queries) error) error
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	q querier
}

type repository struct {
	queries
	db *sql.DB
}

func NewProgressRepo(dbService database.Service) ProgressRepo {
	db := dbService.DB()
	return &repository{queries: queries{q: db}, db: db}
}

func (r *repository) InTx(ctx context.Context, fn func(q Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	if err := fn(&queries{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return classify(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

// classify maps driver errors onto the engine taxonomy.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case database.IsTransient(err):
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	default:
		return err
	}
}

func (r *queries) EnsureProfile(ctx context.Context, userID uuid.UUID, at time.Time) error {
	query := `
		INSERT INTO profiles (id, points, verses_read, streak_days, created_at, updated_at)
		VALUES ($1, 0, 0, 0, $2, $2)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := r.q.ExecContext(ctx, query, userID, at.UTC()); err != nil {
		return classify(fmt.Errorf("failed to create profile: %w", err))
	}
	return nil
}

func (r *queries) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	query := `
		SELECT points, verses_read, streak_days, timezone, updated_at
		FROM profiles
		WHERE id = $1
	`

	p := Profile{Summary: engagement.Summary{UserID: userID}}
	var tz sql.NullString
	err := r.q.QueryRowContext(ctx, query, userID).Scan(
		&p.Summary.Points,
		&p.Summary.VersesRead,
		&p.Summary.StreakDays,
		&tz,
		&p.Summary.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, classify(fmt.Errorf("failed to fetch profile: %w", err))
	}
	if tz.Valid {
		p.Timezone = tz.String
	}
	return &p, nil
}

func (r *queries) SetTimezone(ctx context.Context, userID uuid.UUID, tz string, at time.Time) error {
	query := `UPDATE profiles SET timezone = $2, updated_at = $3 WHERE id = $1`
	res, err := r.q.ExecContext(ctx, query, userID, tz, at.UTC())
	if err != nil {
		return classify(fmt.Errorf("failed to set timezone: %w", err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *queries) CreditRead(ctx context.Context, userID uuid.UUID, points int64, streak int, at time.Time) (engagement.Summary, error) {
	query := `
		UPDATE profiles
		SET points = points + $2, verses_read = verses_read + 1, streak_days = $3, updated_at = $4
		WHERE id = $1
	`
	return r.updateSummary(ctx, userID, query, userID, points, streak, at.UTC())
}

func (r *queries) AddPoints(ctx context.Context, userID uuid.UUID, points int64, at time.Time) (engagement.Summary, error) {
	query := `UPDATE profiles SET points = points + $2, updated_at = $3 WHERE id = $1`
	return r.updateSummary(ctx, userID, query, userID, points, at.UTC())
}

func (r *queries) updateSummary(ctx context.Context, userID uuid.UUID, query string, args ...any) (engagement.Summary, error) {
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return engagement.Summary{}, classify(fmt.Errorf("failed to update profile: %w", err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return engagement.Summary{}, ErrNotFound
	}

	p, err := r.GetProfile(ctx, userID)
	if err != nil {
		return engagement.Summary{}, err
	}
	return p.Summary, nil
}

func (r *queries) SaveSummary(ctx context.Context, s engagement.Summary) error {
	query := `
		UPDATE profiles
		SET points = $2, verses_read = $3, streak_days = $4, updated_at = $5
		WHERE id = $1
	`
	res, err := r.q.ExecContext(ctx, query, s.UserID, s.Points, s.VersesRead, s.StreakDays, s.UpdatedAt.UTC())
	if err != nil {
		return classify(fmt.Errorf("failed to save summary: %w", err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertRead relies on the (user_id, verse_id) unique constraint: it reports false when the
// pair already exists instead of checking first.
func (r *queries) InsertRead(ctx context.Context, userID uuid.UUID, verseID int64, at time.Time) (bool, error) {
	query := `
		INSERT INTO user_verse_progress (user_id, verse_id, read_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, verse_id) DO NOTHING
	`
	res, err := r.q.ExecContext(ctx, query, userID, verseID, at.UTC())
	if err != nil {
		return false, classify(fmt.Errorf("failed to record read: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, classify(fmt.Errorf("failed to record read: %w", err))
	}
	return n == 1, nil
}

func (r *queries) ReadVerseIDs(ctx context.Context, userID uuid.UUID) (map[int64]struct{}, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT verse_id FROM user_verse_progress WHERE user_id = $1`, userID)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to query read verses: %w", err))
	}
	defer rows.Close()

	read := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, classify(fmt.Errorf("failed to scan read verse: %w", err))
		}
		read[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return read, nil
}

// ListReads returns reads at or after since, oldest first. A zero since returns everything.
func (r *queries) ListReads(ctx context.Context, userID uuid.UUID, since time.Time) ([]engagement.ReadingEvent, error) {
	query := `
		SELECT verse_id, read_at
		FROM user_verse_progress
		WHERE user_id = $1 AND read_at >= $2
		ORDER BY read_at, verse_id
	`

	rows, err := r.q.QueryContext(ctx, query, userID, since.UTC())
	if err != nil {
		return nil, classify(fmt.Errorf("failed to query reads: %w", err))
	}
	defer rows.Close()

	var reads []engagement.ReadingEvent
	for rows.Next() {
		ev := engagement.ReadingEvent{UserID: userID}
		if err := rows.Scan(&ev.VerseID, &ev.ReadAt); err != nil {
			return nil, classify(fmt.Errorf("failed to scan read: %w", err))
		}
		reads = append(reads, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return reads, nil
}

func (r *queries) InsertReflection(ctx context.Context, ev engagement.ReflectionEvent) (int64, error) {
	query := `
		INSERT INTO user_reflections (user_id, verse_id, reflection_text, shared, shared_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var sharedAt sql.NullTime
	if ev.SharedAt != nil {
		sharedAt = sql.NullTime{Time: ev.SharedAt.UTC(), Valid: true}
	}

	var id int64
	err := r.q.QueryRowContext(ctx, query, ev.UserID, ev.VerseID, ev.Text, ev.Shared, sharedAt, ev.CreatedAt.UTC()).Scan(&id)
	if err != nil {
		return 0, classify(fmt.Errorf("failed to save reflection: %w", err))
	}
	return id, nil
}

// ListReflections returns reflections created at or after since, newest first. limit <= 0
// means no limit.
func (r *queries) ListReflections(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]engagement.ReflectionEvent, error) {
	query := `
		SELECT id, verse_id, reflection_text, shared, shared_at, created_at
		FROM user_reflections
		WHERE user_id = $1 AND created_at >= $2
		ORDER BY created_at DESC, id DESC
	`
	args := []any{userID, since.UTC()}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to query reflections: %w", err))
	}
	defer rows.Close()

	var reflections []engagement.ReflectionEvent
	for rows.Next() {
		ev := engagement.ReflectionEvent{UserID: userID}
		var sharedAt sql.NullTime
		if err := rows.Scan(&ev.ID, &ev.VerseID, &ev.Text, &ev.Shared, &sharedAt, &ev.CreatedAt); err != nil {
			return nil, classify(fmt.Errorf("failed to scan reflection: %w", err))
		}
		if sharedAt.Valid {
			t := sharedAt.Time
			ev.SharedAt = &t
		}
		reflections = append(reflections, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return reflections, nil
}

// InsertAward is keyed by (user_id, mission_id, award_date); a repeat claim reports false.
func (r *queries) InsertAward(ctx context.Context, a engagement.MissionAward) (bool, error) {
	query := `
		INSERT INTO mission_awards (user_id, mission_id, award_date, points, awarded_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, mission_id, award_date) DO NOTHING
	`
	res, err := r.q.ExecContext(ctx, query, a.UserID, a.MissionID, a.Date, a.Points, a.AwardedAt.UTC())
	if err != nil {
		return false, classify(fmt.Errorf("failed to record mission award: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, classify(fmt.Errorf("failed to record mission award: %w", err))
	}
	return n == 1, nil
}

func (r *queries) ListAwards(ctx context.Context, userID uuid.UUID) ([]engagement.MissionAward, error) {
	query := `
		SELECT mission_id, award_date, points, awarded_at
		FROM mission_awards
		WHERE user_id = $1
		ORDER BY awarded_at
	`
	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to query mission awards: %w", err))
	}
	defer rows.Close()

	var awards []engagement.MissionAward
	for rows.Next() {
		a := engagement.MissionAward{UserID: userID}
		if err := rows.Scan(&a.MissionID, &a.Date, &a.Points, &a.AwardedAt); err != nil {
			return nil, classify(fmt.Errorf("failed to scan mission award: %w", err))
		}
		awards = append(awards, a)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return awards, nil
}
