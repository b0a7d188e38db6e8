package progress

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/taiwoajasa245/reading-engine-api/internal/corpus"
	"github.com/taiwoajasa245/reading-engine-api/internal/engagement"
	"github.com/taiwoajasa245/reading-engine-api/internal/growth"
	"github.com/taiwoajasa245/reading-engine-api/internal/mission"
	"github.com/taiwoajasa245/reading-engine-api/pkg/logger"
	"github.com/taiwoajasa245/reading-engine-api/pkg/retry"
)

const (
	DefaultReflectionLimit = 20
	MaxReflectionLimit     = 100

	morningHour = 8
)

type ProgressService struct {
	repo       ProgressRepo
	corpus     *corpus.Corpus
	log        logger.Logger
	now        func() time.Time
	defaultLoc *time.Location
	catalog    []mission.Definition
	retry      retry.Policy
}

type Option func(*ProgressService)

func WithClock(now func() time.Time) Option {
	return func(s *ProgressService) { s.now = now }
}

// WithDefaultLocation sets the zone used for users who have not configured one.
func WithDefaultLocation(loc *time.Location) Option {
	return func(s *ProgressService) {
		if loc != nil {
			s.defaultLoc = loc
		}
	}
}

func WithCatalog(catalog []mission.Definition) Option {
	return func(s *ProgressService) { s.catalog = catalog }
}

func WithRetryMaxElapsed(d time.Duration) Option {
	return func(s *ProgressService) { s.retry.MaxElapsed = d }
}

func NewProgressService(repo ProgressRepo, c *corpus.Corpus, log logger.Logger, opts ...Option) *ProgressService {
	s := &ProgressService{
		repo:       repo,
		corpus:     c,
		log:        log,
		now:        time.Now,
		defaultLoc: time.UTC,
		catalog:    mission.DailyCatalog,
		retry: retry.Policy{
			Retryable: func(err error) bool { return errors.Is(err, ErrStorageUnavailable) },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ProgressService) location(tz string) *time.Location {
	return engagement.ResolveLocation(tz, s.defaultLoc)
}

func (s *ProgressService) verse(verseID int64) (corpus.Verse, error) {
	v, err := s.corpus.ByID(verseID)
	if err != nil {
		return corpus.Verse{}, fmt.Errorf("%w: verse %d", ErrNotFound, verseID)
	}
	return v, nil
}

// profile returns the user's cached row, creating an empty one on first contact.
func (s *ProgressService) profile(ctx context.Context, q Queries, userID uuid.UUID, now time.Time) (*Profile, error) {
	if err := q.EnsureProfile(ctx, userID, now); err != nil {
		return nil, err
	}
	return q.GetProfile(ctx, userID)
}

// NextUnread returns the first verse in canonical order the user has not read. Once every
// verse is read it wraps to the first verse and marks the result as restarted.
func (s *ProgressService) NextUnread(ctx context.Context, userID uuid.UUID) (*NextVerse, error) {
	read, err := retry.Value(ctx, s.retry, func() (map[int64]struct{}, error) {
		return s.repo.ReadVerseIDs(ctx, userID)
	})
	if err != nil {
		return nil, err
	}

	v, found := s.corpus.Scan(func(v corpus.Verse) bool {
		_, done := read[v.ID]
		return !done
	})
	if !found {
		return &NextVerse{Verse: s.corpus.First(), Ordinal: 0, Restarted: true}, nil
	}

	ordinal, err := s.corpus.OrdinalOf(v.ID)
	if err != nil {
		return nil, err
	}
	return &NextVerse{Verse: v, Ordinal: ordinal}, nil
}

// MarkRead credits a verse at most once per user. The ledger row, the point award and the
// recomputed streak land in one transaction; a repeat call returns the unchanged summary.
func (s *ProgressService) MarkRead(ctx context.Context, userID uuid.UUID, verseID int64) (*ReadResult, error) {
	if _, err := s.verse(verseID); err != nil {
		return nil, err
	}

	now := s.now()
	var summary engagement.Summary
	err := s.retry.Do(ctx, func() error {
		return s.repo.InTx(ctx, func(q Queries) error {
			p, err := s.profile(ctx, q, userID, now)
			if err != nil {
				return err
			}

			inserted, err := q.InsertRead(ctx, userID, verseID, now)
			if err != nil {
				return err
			}
			if !inserted {
				return ErrConflictIgnored
			}

			reads, err := q.ListReads(ctx, userID, time.Time{})
			if err != nil {
				return err
			}
			streak := engagement.CurrentStreak(reads, now, s.location(p.Timezone))

			summary, err = q.CreditRead(ctx, userID, engagement.ReadVersePoints, streak, now)
			return err
		})
	})

	switch {
	case err == nil:
		s.log.Infof("verse %d credited to user %s (points=%d streak=%d)", verseID, userID, summary.Points, summary.StreakDays)
		return &ReadResult{Credited: true, Summary: summary}, nil
	case errors.Is(err, ErrConflictIgnored):
		s.log.Debugf("verse %d already read by user %s", verseID, userID)
		current, err := s.currentSummary(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &ReadResult{Credited: false, Summary: current}, nil
	default:
		s.log.Errorf("failed to mark verse %d read for user %s: %v", verseID, userID, err)
		return nil, err
	}
}

func (s *ProgressService) currentSummary(ctx context.Context, userID uuid.UUID) (engagement.Summary, error) {
	p, err := retry.Value(ctx, s.retry, func() (*Profile, error) {
		return s.repo.GetProfile(ctx, userID)
	})
	if errors.Is(err, ErrNotFound) {
		return engagement.Summary{UserID: userID}, nil
	}
	if err != nil {
		return engagement.Summary{}, err
	}
	return p.Summary, nil
}

// ShareReflection appends a shared reflection and awards its bonus. Reflections are not
// deduplicated, so this is not retried.
func (s *ProgressService) ShareReflection(ctx context.Context, userID uuid.UUID, verseID int64, text string) (*ReflectionResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: reflection text is empty", ErrInvalidInput)
	}
	if utf8.RuneCountInString(text) > MaxReflectionLength {
		return nil, fmt.Errorf("%w: reflection text exceeds %d characters", ErrInvalidInput, MaxReflectionLength)
	}
	if _, err := s.verse(verseID); err != nil {
		return nil, err
	}

	now := s.now()
	ev := engagement.ReflectionEvent{
		UserID:    userID,
		VerseID:   verseID,
		Text:      text,
		Shared:    true,
		SharedAt:  &now,
		CreatedAt: now,
	}

	var summary engagement.Summary
	err := s.repo.InTx(ctx, func(q Queries) error {
		if err := q.EnsureProfile(ctx, userID, now); err != nil {
			return err
		}
		id, err := q.InsertReflection(ctx, ev)
		if err != nil {
			return err
		}
		ev.ID = id

		summary, err = q.AddPoints(ctx, userID, engagement.ShareReflectionPoints, now)
		return err
	})
	if err != nil {
		s.log.Errorf("failed to share reflection on verse %d for user %s: %v", verseID, userID, err)
		return nil, err
	}

	return &ReflectionResult{Reflection: ev, Summary: summary}, nil
}

// ListReflections returns the user's most recent reflections, newest first.
func (s *ProgressService) ListReflections(ctx context.Context, userID uuid.UUID, limit int) ([]engagement.ReflectionEvent, error) {
	switch {
	case limit <= 0:
		limit = DefaultReflectionLimit
	case limit > MaxReflectionLimit:
		limit = MaxReflectionLimit
	}

	reflections, err := retry.Value(ctx, s.retry, func() ([]engagement.ReflectionEvent, error) {
		return s.repo.ListReflections(ctx, userID, time.Time{}, limit)
	})
	if err != nil {
		return nil, err
	}
	if reflections == nil {
		reflections = []engagement.ReflectionEvent{}
	}
	return reflections, nil
}

func (s *ProgressService) GetSummary(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	now := s.now()
	return retry.Value(ctx, s.retry, func() (*Profile, error) {
		return s.profile(ctx, s.repo, userID, now)
	})
}

func (s *ProgressService) loadLedger(ctx context.Context, userID uuid.UUID, since time.Time) (engagement.Ledger, error) {
	var ledger engagement.Ledger
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ledger.Reads, err = s.repo.ListReads(gctx, userID, since)
		return err
	})
	g.Go(func() error {
		var err error
		ledger.Reflections, err = s.repo.ListReflections(gctx, userID, since, 0)
		return err
	})
	g.Go(func() error {
		var err error
		ledger.Awards, err = s.repo.ListAwards(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return engagement.Ledger{}, err
	}
	return ledger, nil
}

func (s *ProgressService) missionStatus(ledger engagement.Ledger, now time.Time, loc *time.Location) []MissionStatus {
	today := engagement.DayOf(now, loc).String()
	claimed := make(map[string]bool)
	for _, a := range ledger.Awards {
		if a.Date == today {
			claimed[a.MissionID] = true
		}
	}

	progress := mission.Today(s.catalog, ledger.Reads, ledger.Reflections, now, loc)
	out := make([]MissionStatus, 0, len(progress))
	for _, p := range progress {
		out = append(out, MissionStatus{Progress: p, Claimed: claimed[p.Mission.ID]})
	}
	return out
}

// Dashboard assembles everything the progress screen renders from a single now.
func (s *ProgressService) Dashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	now := s.now()
	return retry.Value(ctx, s.retry, func() (*Dashboard, error) {
		p, err := s.profile(ctx, s.repo, userID, now)
		if err != nil {
			return nil, err
		}
		loc := s.location(p.Timezone)

		ledger, err := s.loadLedger(ctx, userID, time.Time{})
		if err != nil {
			return nil, err
		}

		current := engagement.CurrentStreak(ledger.Reads, now, loc)
		shared := engagement.SharedCount(ledger.Reflections)

		return &Dashboard{
			Summary:           p.Summary,
			CurrentStreak:     current,
			LongestStreak:     engagement.LongestStreak(ledger.Reads, loc),
			SharedReflections: shared,
			Level:             growth.ProgressFor(p.Summary.Points),
			Badges: growth.EarnedBadges(growth.Stats{
				StreakDays:        current,
				VersesRead:        p.Summary.VersesRead,
				SharedReflections: shared,
				ReadBeforeEight:   engagement.ReadBeforeHour(ledger.Reads, morningHour, loc),
			}),
			Missions: s.missionStatus(ledger, now, loc),
			Timezone: loc.String(),
			Today:    engagement.DayOf(now, loc).String(),
		}, nil
	})
}

// Missions evaluates today's catalog against today's events only.
func (s *ProgressService) Missions(ctx context.Context, userID uuid.UUID) ([]MissionStatus, error) {
	now := s.now()
	return retry.Value(ctx, s.retry, func() ([]MissionStatus, error) {
		p, err := s.profile(ctx, s.repo, userID, now)
		if err != nil {
			return nil, err
		}
		loc := s.location(p.Timezone)
		start, _ := engagement.DayWindow(engagement.DayOf(now, loc), loc)

		ledger, err := s.loadLedger(ctx, userID, start)
		if err != nil {
			return nil, err
		}
		return s.missionStatus(ledger, now, loc), nil
	})
}

// ClaimMission awards a completed mission's points once per user, mission and local day.
func (s *ProgressService) ClaimMission(ctx context.Context, userID uuid.UUID, missionID string) (*ClaimResult, error) {
	def, ok := mission.Find(s.catalog, missionID)
	if !ok {
		return nil, fmt.Errorf("%w: mission %q", ErrNotFound, missionID)
	}

	now := s.now()
	var summary engagement.Summary
	err := s.retry.Do(ctx, func() error {
		return s.repo.InTx(ctx, func(q Queries) error {
			p, err := s.profile(ctx, q, userID, now)
			if err != nil {
				return err
			}
			loc := s.location(p.Timezone)
			day := engagement.DayOf(now, loc)
			start, _ := engagement.DayWindow(day, loc)

			reads, err := q.ListReads(ctx, userID, start)
			if err != nil {
				return err
			}
			reflections, err := q.ListReflections(ctx, userID, start, 0)
			if err != nil {
				return err
			}

			progress := mission.Today([]mission.Definition{def}, reads, reflections, now, loc)
			if !progress[0].Completed {
				return fmt.Errorf("%w: mission %q not completed (%d/%d)", ErrInvalidInput, def.ID, progress[0].Current, def.Requirement.Count)
			}

			inserted, err := q.InsertAward(ctx, engagement.MissionAward{
				UserID:    userID,
				MissionID: def.ID,
				Date:      day.String(),
				Points:    def.Points,
				AwardedAt: now,
			})
			if err != nil {
				return err
			}
			if !inserted {
				return ErrConflictIgnored
			}

			summary, err = q.AddPoints(ctx, userID, int64(def.Points), now)
			return err
		})
	})

	switch {
	case err == nil:
		s.log.Infof("mission %s awarded to user %s (+%d)", def.ID, userID, def.Points)
		return &ClaimResult{Credited: true, Mission: def, Summary: summary}, nil
	case errors.Is(err, ErrConflictIgnored):
		current, err := s.currentSummary(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &ClaimResult{Credited: false, Mission: def, Summary: current}, nil
	default:
		return nil, err
	}
}

// RebuildSummary recomputes the cached summary from the ledgers and overwrites the profile.
func (s *ProgressService) RebuildSummary(ctx context.Context, userID uuid.UUID) (*RebuildResult, error) {
	now := s.now()
	var result RebuildResult
	err := s.retry.Do(ctx, func() error {
		return s.repo.InTx(ctx, func(q Queries) error {
			p, err := q.GetProfile(ctx, userID)
			if err != nil {
				return err
			}

			var ledger engagement.Ledger
			if ledger.Reads, err = q.ListReads(ctx, userID, time.Time{}); err != nil {
				return err
			}
			if ledger.Reflections, err = q.ListReflections(ctx, userID, time.Time{}, 0); err != nil {
				return err
			}
			if ledger.Awards, err = q.ListAwards(ctx, userID); err != nil {
				return err
			}

			rebuilt := engagement.Summarize(userID, ledger, now, s.location(p.Timezone))
			if err := q.SaveSummary(ctx, rebuilt); err != nil {
				return err
			}

			result = RebuildResult{Before: p.Summary, After: rebuilt, Drifted: engagement.Drifted(p.Summary, rebuilt)}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if result.Drifted {
		s.log.Warnf("summary for user %s drifted: points %d -> %d, verses %d -> %d, streak %d -> %d",
			userID, result.Before.Points, result.After.Points,
			result.Before.VersesRead, result.After.VersesRead,
			result.Before.StreakDays, result.After.StreakDays)
	}
	return &result, nil
}

// SetTimezone stores the user's IANA zone used for day windows.
func (s *ProgressService) SetTimezone(ctx context.Context, userID uuid.UUID, tz string) (*Profile, error) {
	tz = strings.TrimSpace(tz)
	if _, err := time.LoadLocation(tz); err != nil || tz == "" {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidInput, tz)
	}

	now := s.now()
	var p *Profile
	err := s.retry.Do(ctx, func() error {
		return s.repo.InTx(ctx, func(q Queries) error {
			if err := q.EnsureProfile(ctx, userID, now); err != nil {
				return err
			}
			if err := q.SetTimezone(ctx, userID, tz, now); err != nil {
				return err
			}
			var err error
			p, err = q.GetProfile(ctx, userID)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}
