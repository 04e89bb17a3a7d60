package rule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Store owns the active rule set. Readers get an immutable Snapshot from an
// atomic pointer and never block on a reload; loads, saves and invalidation
// are serialized by mu so concurrent callers never observe a partial set.
type Store struct {
	repo    OverrideRepository
	bundled []byte
	log     zerolog.Logger
	now     func() time.Time

	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
	version atomic.Uint64
}

// NewStore creates a store reading overrides from repo and falling back
// to the bundled document. repo may be nil when no override storage exists.
func NewStore(repo OverrideRepository, bundled []byte, log zerolog.Logger) *Store {
	return &Store{
		repo:    repo,
		bundled: bundled,
		log:     log.With().Str("component", "rule_store").Logger(),
		now:     time.Now,
	}
}

// Rules returns the cached snapshot, loading it on first use or after
// Invalidate. It never returns nil; an unusable document yields an empty set.
func (s *Store) Rules(ctx context.Context) *Snapshot {
	if snap := s.current.Load(); snap != nil {
		return snap
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another caller may have loaded while we waited.
	if snap := s.current.Load(); snap != nil {
		return snap
	}

	snap, cache := s.load(ctx)
	if cache {
		s.current.Store(snap)
	}
	return snap
}

// SaveNewRules persists raw as the override document and, once the write
// succeeds, makes it the active rule set. The returned snapshot is built
// from exactly the bytes written. When the write fails the cached set is
// left untouched.
func (s *Store) SaveNewRules(ctx context.Context, raw []byte) (*Snapshot, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyDocument
	}
	if s.repo == nil {
		return nil, errors.New("no override storage configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Save(ctx, raw); err != nil {
		return nil, fmt.Errorf("save rule document: %w", err)
	}

	snap := s.build(raw, SourceOverride)
	s.current.Store(snap)

	s.log.Info().
		Uint64("version", snap.Version).
		Int("rules", len(snap.Rules)).
		Int("skipped", len(snap.Skipped)).
		Msg("Rule document updated")

	return snap, nil
}

// Invalidate drops the cached set so the next Rules call reloads.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Store(nil)
}

// Validate parses raw without touching the cache.
func Validate(raw []byte) (*ParseResult, error) {
	if len(raw) == 0 {
		return &ParseResult{}, ErrEmptyDocument
	}
	return ParseDocument(raw)
}

// load reads the override, then the bundled document. The bool reports
// whether the result may be cached; a failed override read is retried on
// the next call instead of pinning the bundled rules.
func (s *Store) load(ctx context.Context) (*Snapshot, bool) {
	if s.repo == nil {
		return s.build(s.bundled, SourceBundled), true
	}

	raw, found, err := s.repo.Load(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to read rule override, using bundled rules")
		return s.build(s.bundled, SourceBundled), false
	}
	if !found || len(raw) == 0 {
		return s.build(s.bundled, SourceBundled), true
	}
	return s.build(raw, SourceOverride), true
}

func (s *Store) build(raw []byte, source Source) *Snapshot {
	snap := &Snapshot{
		Version:  s.version.Add(1),
		Source:   source,
		LoadedAt: s.now(),
	}

	result, err := ParseDocument(raw)
	if err != nil {
		snap.LoadErr = err
		snap.Rules = []*ParsingRule{}
		s.log.Error().Err(err).Str("source", string(source)).Msg("Rule document unusable, rule set is empty")
		return snap
	}

	snap.Rules = result.Rules
	snap.Skipped = result.Skipped
	snap.Inactive = result.Inactive

	for _, skipped := range result.Skipped {
		s.log.Warn().
			Int("index", skipped.Index).
			Str("rule", skipped.Name).
			Err(skipped.Err).
			Msg("Skipping rule entry")
	}
	for _, r := range result.Rules {
		if r.Strategy.DateFormat != "" && r.Strategy.DateLayout == "" {
			s.log.Warn().
				Str("rule", r.Name).
				Str("date_format", r.Strategy.DateFormat).
				Msg("Unsupported date format, matches will use the current time")
		}
	}

	s.log.Debug().
		Str("source", string(source)).
		Int("rules", len(snap.Rules)).
		Int("inactive", snap.Inactive).
		Msg("Rule set loaded")

	return snap
}
