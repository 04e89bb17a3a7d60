package scheduler

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"smsledger/internal/domain/rule"
)

var ErrNoUsableRules = errors.New("remote rule document has no usable rules")

// RemoteRules fetches the published rule document.
type RemoteRules interface {
	Fetch(ctx context.Context) ([]byte, error)
	Location() string
}

// RuleSaver is the rule update entrypoint.
type RuleSaver interface {
	SaveNewRules(ctx context.Context, raw []byte) (*rule.Snapshot, error)
}

// SyncResult describes one sync run.
type SyncResult struct {
	Changed bool
	Version uint64
	Rules   int
	Skipped int
}

// RuleSync periodically pulls the remote rule document and saves it as the
// override when its content changed.
type RuleSync struct {
	remote RemoteRules
	saver  RuleSaver
	cron   *cron.Cron
	log    zerolog.Logger

	mu       sync.Mutex
	lastHash [sha256.Size]byte
	synced   bool
}

func NewRuleSync(remote RemoteRules, saver RuleSaver, log zerolog.Logger) *RuleSync {
	return &RuleSync{
		remote: remote,
		saver:  saver,
		cron:   cron.New(),
		log:    log.With().Str("component", "rule_sync").Str("remote", remote.Location()).Logger(),
	}
}

// Start schedules RunOnce on a standard five-field cron spec and runs it
// once immediately in the background.
func (s *RuleSync) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.runScheduled); err != nil {
		return fmt.Errorf("invalid rule sync schedule %q: %w", schedule, err)
	}
	s.cron.Start()
	go s.runScheduled()

	s.log.Info().Str("schedule", schedule).Msg("Rule sync started")
	return nil
}

// Stop waits for a running sync to finish.
func (s *RuleSync) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("Rule sync stopped")
}

func (s *RuleSync) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := s.RunOnce(ctx); err != nil {
		s.log.Error().Err(err).Msg("Rule sync failed")
	}
}

// RunOnce fetches the remote document and saves it when it differs from the
// last one applied. Documents that cannot be parsed or that yield no active
// rules are rejected so a bad publish never wipes the working set.
func (s *RuleSync) RunOnce(ctx context.Context) (SyncResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.remote.Fetch(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("fetch remote rules: %w", err)
	}

	hash := sha256.Sum256(raw)
	if s.synced && hash == s.lastHash {
		return SyncResult{}, nil
	}

	parsed, err := rule.Validate(raw)
	if err != nil {
		return SyncResult{}, err
	}
	if len(parsed.Rules) == 0 {
		return SyncResult{}, ErrNoUsableRules
	}

	snap, err := s.saver.SaveNewRules(ctx, raw)
	if err != nil {
		return SyncResult{}, err
	}

	s.lastHash = hash
	s.synced = true

	s.log.Info().Uint64("version", snap.Version).Int("rules", len(snap.Rules)).Msg("Remote rules applied")
	return SyncResult{Changed: true, Version: snap.Version, Rules: len(snap.Rules), Skipped: len(snap.Skipped)}, nil
}
