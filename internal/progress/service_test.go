package progress

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/taiwoajasa245/reading-engine-api/internal/corpus"
	"github.com/taiwoajasa245/reading-engine-api/internal/database"
	"github.com/taiwoajasa245/reading-engine-api/internal/database/dbtest"
	"github.com/taiwoajasa245/reading-engine-api/internal/engagement"
	"github.com/taiwoajasa245/reading-engine-api/pkg/logger"
)

const (
	verseA int64 = 1
	verseB int64 = 2
	verseC int64 = 3
)

var threeVerses = []corpus.Verse{
	{ID: verseA, Ref: corpus.VerseRef{Book: "genesis", Chapter: 1, Verse: 1}, Text: "No princípio"},
	{ID: verseB, Ref: corpus.VerseRef{Book: "genesis", Chapter: 1, Verse: 2}, Text: "A terra era sem forma"},
	{ID: verseC, Ref: corpus.VerseRef{Book: "genesis", Chapter: 1, Verse: 3}, Text: "Haja luz"},
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	db    database.Service
	repo  ProgressRepo
	svc   *ProgressService
	clock *clock
}

func newFixture(t *testing.T, db database.Service, opts ...Option) *fixture {
	t.Helper()

	c := dbtest.Corpus(t, db, threeVerses)
	clk := &clock{t: time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)}
	repo := NewProgressRepo(db)

	opts = append([]Option{
		WithClock(clk.Now),
		WithDefaultLocation(time.UTC),
		WithRetryMaxElapsed(time.Second),
	}, opts...)

	return &fixture{
		db:    db,
		repo:  repo,
		svc:   NewProgressService(repo, c, logger.Nop(), opts...),
		clock: clk,
	}
}

func newSQLiteFixture(t *testing.T, opts ...Option) *fixture {
	return newFixture(t, dbtest.SQLite(t), opts...)
}

func (f *fixture) markRead(t *testing.T, user uuid.UUID, verseID int64) *ReadResult {
	t.Helper()
	res, err := f.svc.MarkRead(context.Background(), user, verseID)
	require.NoError(t, err)
	return res
}

func (f *fixture) nextUnread(t *testing.T, user uuid.UUID) *NextVerse {
	t.Helper()
	next, err := f.svc.NextUnread(context.Background(), user)
	require.NoError(t, err)
	return next
}

func runReadingScenario(t *testing.T, f *fixture) {
	user := uuid.New()

	assert.Equal(t, verseA, f.nextUnread(t, user).Verse.ID)

	assert.True(t, f.markRead(t, user, verseA).Credited)
	assert.True(t, f.markRead(t, user, verseC).Credited)

	next := f.nextUnread(t, user)
	assert.Equal(t, verseB, next.Verse.ID)
	assert.Equal(t, 1, next.Ordinal)
	assert.False(t, next.Restarted)

	res := f.markRead(t, user, verseB)
	assert.True(t, res.Credited)
	assert.Equal(t, int64(3), res.Summary.VersesRead)
	assert.Equal(t, int64(30), res.Summary.Points)
	assert.Equal(t, 1, res.Summary.StreakDays)

	next = f.nextUnread(t, user)
	assert.Equal(t, verseA, next.Verse.ID)
	assert.True(t, next.Restarted)

	res = f.markRead(t, user, verseA)
	assert.False(t, res.Credited)
	assert.Equal(t, int64(3), res.Summary.VersesRead)
	assert.Equal(t, int64(30), res.Summary.Points)
}

func TestReadingScenario(t *testing.T) {
	runReadingScenario(t, newSQLiteFixture(t))
}

func TestReadingScenarioPostgres(t *testing.T) {
	runReadingScenario(t, newFixture(t, dbtest.Postgres(t)))
}

func TestNextUnreadReturnsTheOnlyUnreadVerse(t *testing.T) {
	f := newSQLiteFixture(t)
	user := uuid.New()

	f.markRead(t, user, verseA)
	f.markRead(t, user, verseB)

	assert.Equal(t, verseC, f.nextUnread(t, user).Verse.ID)
}

func TestMarkReadCreditsOnce(t *testing.T) {
	f := newSQLiteFixture(t)
	user := uuid.New()

	first := f.markRead(t, user, verseB)
	second := f.markRead(t, user, verseB)

	assert.True(t, first.Credited)
	assert.False(t, second.Credited)
	assert.Equal(t, first.Summary.Points, second.Summary.Points)
	assert.Equal(t, int64(1), second.Summary.VersesRead)
}

func TestMarkReadConcurrentCallsCreditOnce(t *testing.T) {
	f := newSQLiteFixture(t)
	user := uuid.New()

	var (
		mu       sync.Mutex
		credited int
	)
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			res, err := f.svc.MarkRead(ctx, user, verseA)
			if err != nil {
				return err
			}
			if res.Credited {
				mu.Lock()
				credited++
				mu.Unlock()
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, 1, credited)

	p, err := f.svc.GetSummary(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.Summary.VersesRead)
	assert.Equal(t, int64(engagement.ReadVersePoints), p.Summary.Points)
}

func TestMarkReadUnknownVerse(t *testing.T) {
	f := newSQLiteFixture(t)

	_, err := f.svc.MarkRead(context.Background(), uuid.New(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStreakAcrossDays(t *testing.T) {
	f := newSQLiteFixture(t)
	user := uuid.New()

	assert.Equal(t, 1, f.markRead(t, user, verseA).Summary.StreakDays)

	f.clock.Advance(24 * time.Hour)
	assert.Equal(t, 2, f.markRead(t, user, verseB).Summary.StreakDays)

	f.clock.Advance(48 * time.Hour)
	assert.Equal(t, 1, f.markRead(t, user, verseC).Summary.StreakDays)
}

func TestShareReflection(t *testing.T) {
	f := newSQLiteFixture(t)
	user := uuid.New()
	ctx := context.Background()

	f.markRead(t, user, verseA)

	res, err := f.svc.ShareReflection(ctx, user, verseA, "  Deus é fiel  ")
	require.NoError(t, err)
	assert.Equal(t, "Deus é fiel", res.Reflection.Text)
	assert.True(t, res.Reflection.Shared)
	assert.NotNil(t, res.Reflection.SharedAt)
	assert.NotZero(t, res.Reflection.ID)
	assert.Equal(t, int64(engagement.ReadVersePoints+engagement.ShareReflectionPoints), res.Summary.Points)

	// Reflections are not deduplicated.
	res, err = f.svc.ShareReflection(ctx, user, verseA, "Deus é fiel")
	require.NoError(t, err)
	assert.Equal(t, int64(engagement.ReadVersePoints+2*engagement.ShareReflectionPoints), res.Summary.Points)
	assert.Equal(t, int64(1), res.Summary.VersesRead)
}

func TestShareReflectionRejectsBadInput(t *testing.T) {
	f := newSQLiteFixture(t)
	user := uuid.New()
	ctx := context.Background()

	_, err := f.svc.ShareReflection(ctx, user, verseA, "   \n\t ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.ShareReflection(ctx, user, verseA, strings.Repeat("ã", MaxReflectionLength+1))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.ShareReflection(ctx, user, 999, "text")
	assert.ErrorIs(t, err, ErrNotFound)

	// Nothing was written.
	p, err := f.svc.GetSummary(ctx, user)
	require.NoError(t, err)
	assert.Zero(t, p.Summary.Points)
}

func TestListReflections(t *testing.T) {
	f := newSQLiteFixture(t)
	user := uuid.New()
	ctx := context.Background()

	empty, err := f.svc.ListReflections(ctx, user, 0)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, text := range []string{"first", "second", "third"} {
		_, err := f.svc.ShareReflection(ctx, user, verseA, text)
		require.NoError(t, err)
		f.clock.Advance(time.Minute)
	}

	all, err := f.svc.ListReflections(ctx, user, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Text)
	assert.Equal(t, "first", all[2].Text)

	limited, err := f.svc.ListReflections(ctx, user, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	other, err := f.svc.ListReflections(ctx, uuid.New(), 0)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestGetSummaryCreatesProfile(t *testing.T) {
	f := newSQLiteFixture(t)
	user := uuid.New()

	p, err := f.svc.GetSummary(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, user, p.Summary.UserID)
	assert.Zero(t, p.Summary.Points)
	assert.Zero(t, p.Summary.VersesRead)
	assert.Empty(t, p.Timezone)
}

func missionByID(t *testing.T, missions []MissionStatus, id string) MissionStatus {
	t.Helper()
	for _, m := range missions {
		if m.Mission.ID == id {
			return m
		}
	}
	require.FailNow(t, "mission missing", id)
	return MissionStatus{}
}

func TestMissionsAreScopedToToday(t *testing.T) {
	f := newSQLiteFixture(t)
	user := uuid.New()
	ctx := context.Background()

	f.markRead(t, user, verseA)
	f.markRead(t, user, verseB)
	f.clock.Advance(24 * time.Hour)
	f.markRead(t, user, verseC)

	missions, err := f.svc.Missions(ctx, user)
	require.NoError(t, err)

	read := missionByID(t, missions, "read_2_verses")
	assert.Equal(t, 1, read.Current)
	assert.False(t, read.Completed)
	assert.True(t, missionByID(t, missions, "morning_reading").Completed)
	assert.False(t, missionByID(t, missions, "share_interpretation").Completed)
}

func TestClaimMission(t *testing.T) {
	f := newSQLiteFixture(t)
	user := uuid.New()
	ctx := context.Background()

	_, err := f.svc.ClaimMission(ctx, user, "read_2_verses")
	assert.ErrorIs(t, err, ErrInvalidInput)

	f.markRead(t, user, verseA)
	f.markRead(t, user, verseB)

	res, err := f.svc.ClaimMission(ctx, user, "read_2_verses")
	require.NoError(t, err)
	assert.True(t, res.Credited)
	assert.Equal(t, int64(20+20), res.Summary.Points)

	again, err := f.svc.ClaimMission(ctx, user, "read_2_verses")
	require.NoError(t, err)
	assert.False(t, again.Credited)
	assert.Equal(t, res.Summary.Points, again.Summary.Points)

	missions, err := f.svc.Missions(ctx, user)
	require.NoError(t, err)
	assert.True(t, missionByID(t, missions, "read_2_verses").Claimed)
	assert.False(t, missionByID(t, missions, "morning_reading").Claimed)

	_, err = f.svc.ClaimMission(ctx, user, "visit_light")
	assert.ErrorIs(t, err, ErrNotFound)

	// A new local day resets both progress and claims.
	f.clock.Advance(24 * time.Hour)
	missions, err = f.svc.Missions(ctx, user)
	require.NoError(t, err)
	assert.False(t, missionByID(t, missions, "read_2_verses").Claimed)
	assert.Zero(t, missionByID(t, missions, "read_2_verses").Current)
}

func TestRebuildSummaryRepairsDrift(t *testing.T) {
	f := newSQLiteFixture(t)
	user := uuid.New()
	ctx := context.Background()

	f.markRead(t, user, verseA)
	f.markRead(t, user, verseB)
	_, err := f.svc.ShareReflection(ctx, user, verseA, "amém")
	require.NoError(t, err)
	_, err = f.svc.ClaimMission(ctx, user, "read_2_verses")
	require.NoError(t, err)

	clean, err := f.svc.RebuildSummary(ctx, user)
	require.NoError(t, err)
	assert.False(t, clean.Drifted)
	assert.Equal(t, int64(2*10+5+20), clean.After.Points)

	_, err = f.db.DB().Exec(`UPDATE profiles SET points = 999, verses_read = 7 WHERE id = $1`, user)
	require.NoError(t, err)

	repaired, err := f.svc.RebuildSummary(ctx, user)
	require.NoError(t, err)
	assert.True(t, repaired.Drifted)
	assert.Equal(t, int64(999), repaired.Before.Points)
	assert.Equal(t, int64(45), repaired.After.Points)
	assert.Equal(t, int64(2), repaired.After.VersesRead)

	p, err := f.svc.GetSummary(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(45), p.Summary.Points)

	_, err = f.svc.RebuildSummary(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDashboard(t *testing.T) {
	f := newSQLiteFixture(t)
	user := uuid.New()
	ctx := context.Background()

	// 07:00 UTC counts as an early read for the morning badge.
	f.clock.Advance(-8 * time.Hour)
	f.markRead(t, user, verseA)
	f.clock.Advance(24 * time.Hour)
	f.markRead(t, user, verseB)
	_, err := f.svc.ShareReflection(ctx, user, verseB, "luz")
	require.NoError(t, err)

	d, err := f.svc.Dashboard(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(25), d.Summary.Points)
	assert.Equal(t, 2, d.CurrentStreak)
	assert.Equal(t, 2, d.LongestStreak)
	assert.Equal(t, 1, d.SharedReflections)
	assert.Equal(t, "seed", d.Level.Current.ID)
	assert.Equal(t, "UTC", d.Timezone)
	assert.Equal(t, "2024-03-11", d.Today)
	require.Len(t, d.Badges, 1)
	assert.Equal(t, "morning_star", d.Badges[0].ID)
	assert.True(t, missionByID(t, d.Missions, "share_interpretation").Completed)
}

func TestSetTimezone(t *testing.T) {
	f := newSQLiteFixture(t)
	user := uuid.New()
	ctx := context.Background()

	_, err := f.svc.SetTimezone(ctx, user, "Mars/Olympus")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.svc.SetTimezone(ctx, user, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	// 02:00 UTC on the 11th is still the 10th in São Paulo.
	f.clock.Advance(11 * time.Hour)
	p, err := f.svc.SetTimezone(ctx, user, "America/Sao_Paulo")
	require.NoError(t, err)
	assert.Equal(t, "America/Sao_Paulo", p.Timezone)

	d, err := f.svc.Dashboard(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "America/Sao_Paulo", d.Timezone)
	assert.Equal(t, "2024-03-10", d.Today)
}

func TestLocalDayBoundsFollowUserTimezone(t *testing.T) {
	f := newSQLiteFixture(t)
	user := uuid.New()
	ctx := context.Background()

	_, err := f.svc.SetTimezone(ctx, user, "America/Sao_Paulo")
	require.NoError(t, err)

	// 15:00 UTC and 02:00 UTC the next morning are both March 10th in São Paulo.
	assert.Equal(t, 1, f.markRead(t, user, verseA).Summary.StreakDays)
	f.clock.Advance(11 * time.Hour)
	assert.Equal(t, 1, f.markRead(t, user, verseB).Summary.StreakDays)

	missions, err := f.svc.Missions(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 2, missionByID(t, missions, "read_2_verses").Current)

	claim, err := f.svc.ClaimMission(ctx, user, "read_2_verses")
	require.NoError(t, err)
	assert.True(t, claim.Credited)
	assert.Equal(t, int64(40), claim.Summary.Points)

	awards, err := f.repo.ListAwards(ctx, user)
	require.NoError(t, err)
	require.Len(t, awards, 1)
	assert.Equal(t, "2024-03-10", awards[0].Date)

	// 04:00 UTC is 01:00 on the 11th locally: the previous reads fall before midnight.
	f.clock.Advance(2 * time.Hour)
	missions, err = f.svc.Missions(ctx, user)
	require.NoError(t, err)
	read := missionByID(t, missions, "read_2_verses")
	assert.Zero(t, read.Current)
	assert.False(t, read.Claimed)
	assert.False(t, missionByID(t, missions, "morning_reading").Completed)

	res := f.markRead(t, user, verseC)
	assert.Equal(t, 2, res.Summary.StreakDays)

	_, err = f.svc.ClaimMission(ctx, user, "read_2_verses")
	assert.ErrorIs(t, err, ErrInvalidInput)

	d, err := f.svc.Dashboard(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-11", d.Today)
	assert.Equal(t, 2, d.CurrentStreak)
	assert.Equal(t, 1, missionByID(t, d.Missions, "read_2_verses").Current)
}

var errWrite = errors.New("write failed")

// failingRepo runs real transactions but fails the selected profile update inside them.
type failingRepo struct {
	ProgressRepo
	failCredit bool
	failPoints bool
}

func (r *failingRepo) InTx(ctx context.Context, fn func(q Queries) error) error {
	return r.ProgressRepo.InTx(ctx, func(q Queries) error {
		return fn(&failingQueries{Queries: q, repo: r})
	})
}

type failingQueries struct {
	Queries
	repo *failingRepo
}

func (q *failingQueries) CreditRead(ctx context.Context, userID uuid.UUID, points int64, streak int, at time.Time) (engagement.Summary, error) {
	if q.repo.failCredit {
		return engagement.Summary{}, errWrite
	}
	return q.Queries.CreditRead(ctx, userID, points, streak, at)
}

func (q *failingQueries) AddPoints(ctx context.Context, userID uuid.UUID, points int64, at time.Time) (engagement.Summary, error) {
	if q.repo.failPoints {
		return engagement.Summary{}, errWrite
	}
	return q.Queries.AddPoints(ctx, userID, points, at)
}

func TestMarkReadRollsBackWhenCreditFails(t *testing.T) {
	f := newSQLiteFixture(t)
	user := uuid.New()
	ctx := context.Background()

	broken := NewProgressService(&failingRepo{ProgressRepo: f.repo, failCredit: true}, f.svc.corpus, logger.Nop(), WithClock(f.clock.Now))

	_, err := broken.MarkRead(ctx, user, verseA)
	assert.ErrorIs(t, err, errWrite)

	read, err := f.repo.ReadVerseIDs(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, read)
	_, err = f.repo.GetProfile(ctx, user)
	assert.ErrorIs(t, err, ErrNotFound)

	res := f.markRead(t, user, verseA)
	assert.True(t, res.Credited)
	assert.Equal(t, int64(10), res.Summary.Points)
	assert.Equal(t, int64(1), res.Summary.VersesRead)
}

func TestShareReflectionRollsBackWhenPointsFail(t *testing.T) {
	f := newSQLiteFixture(t)
	user := uuid.New()
	ctx := context.Background()

	broken := NewProgressService(&failingRepo{ProgressRepo: f.repo, failPoints: true}, f.svc.corpus, logger.Nop(), WithClock(f.clock.Now))

	_, err := broken.ShareReflection(ctx, user, verseA, "graça")
	assert.ErrorIs(t, err, errWrite)

	var rows int
	require.NoError(t, f.db.DB().QueryRow(`SELECT COUNT(*) FROM user_reflections WHERE user_id = $1`, user).Scan(&rows))
	assert.Zero(t, rows)

	p, err := f.svc.GetSummary(ctx, user)
	require.NoError(t, err)
	assert.Zero(t, p.Summary.Points)

	res, err := f.svc.ShareReflection(ctx, user, verseA, "graça")
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.Summary.Points)
}

// flakyRepo fails the first reads with a transient error.
type flakyRepo struct {
	ProgressRepo
	mu       sync.Mutex
	failures int
	calls    int
}

func (r *flakyRepo) ReadVerseIDs(ctx context.Context, userID uuid.UUID) (map[int64]struct{}, error) {
	r.mu.Lock()
	r.calls++
	fail := r.calls <= r.failures
	r.mu.Unlock()
	if fail {
		return nil, ErrStorageUnavailable
	}
	return r.ProgressRepo.ReadVerseIDs(ctx, userID)
}

func TestNextUnreadRetriesTransientFailures(t *testing.T) {
	db := dbtest.SQLite(t)
	c := dbtest.Corpus(t, db, threeVerses)
	repo := &flakyRepo{ProgressRepo: NewProgressRepo(db), failures: 2}
	svc := NewProgressService(repo, c, logger.Nop(), WithRetryMaxElapsed(5*time.Second))

	next, err := svc.NextUnread(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, verseA, next.Verse.ID)
	assert.Equal(t, 3, repo.calls)
}

func TestNextUnreadGivesUpOnPersistentFailure(t *testing.T) {
	db := dbtest.SQLite(t)
	c := dbtest.Corpus(t, db, threeVerses)
	repo := &flakyRepo{ProgressRepo: NewProgressRepo(db), failures: 1 << 20}
	svc := NewProgressService(repo, c, logger.Nop(), WithRetryMaxElapsed(200*time.Millisecond))

	_, err := svc.NextUnread(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}
