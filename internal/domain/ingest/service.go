// Package ingest turns inbound messages into pending transactions.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"smsledger/internal/domain/rule"
	"smsledger/internal/domain/transaction"
)

var (
	ingestMeter     = otel.Meter("smsledger/ingest")
	messageTotal, _ = ingestMeter.Int64Counter("ingest.messages.total", metric.WithDescription("Inbound messages by outcome"))
)

// Matcher is the rule-matching engine.
type Matcher interface {
	Match(ctx context.Context, sender, message string) (*rule.Match, bool)
}

// Classifier is the heuristic fallback.
type Classifier interface {
	Classify(message string) (*transaction.Record, bool)
}

// Notifier delivers the outbound effects of a new pending record.
type Notifier interface {
	NotifyTransaction(ctx context.Context, rec *transaction.Record) error
	SignalNewData(ctx context.Context) error
}

// Service runs one message through filtering, matching, persistence and
// notification.
type Service struct {
	matcher  Matcher
	fallback Classifier
	pending  transaction.PendingRepository
	notifier Notifier
	cfg      Config
	log      zerolog.Logger
}

// NewService creates an ingest service. fallback and notifier may be nil,
// and pending may be nil when only Classify is used.
func NewService(matcher Matcher, fallback Classifier, pending transaction.PendingRepository, notifier Notifier, cfg Config, log zerolog.Logger) *Service {
	if cfg.MinMessageLength <= 0 {
		cfg.MinMessageLength = DefaultMinMessageLength
	}
	return &Service{
		matcher:  matcher,
		fallback: fallback,
		pending:  pending,
		notifier: notifier,
		cfg:      cfg,
		log:      log.With().Str("component", "ingest").Logger(),
	}
}

// Process parses msg and, on a match, appends the record to the pending list
// and notifies devices. Only storage failures are returned; a notification
// failure never undoes a stored record.
func (s *Service) Process(ctx context.Context, msg InboundMessage) (Outcome, error) {
	out, err := s.Classify(ctx, msg)
	if err != nil {
		return Outcome{}, err
	}
	if !out.Matched() {
		s.count(ctx, string(out.Skipped))
		if out.Skipped == SkipNoMatch {
			s.log.Debug().Str("sender", msg.Sender).Msg("No transaction found in message")
		}
		return out, nil
	}

	if err := s.pending.Append(ctx, out.Record); err != nil {
		s.count(ctx, "error")
		return Outcome{}, fmt.Errorf("append pending transaction: %w", err)
	}

	s.count(ctx, string(out.Path))
	s.log.Info().
		Str("id", out.Record.ID).
		Str("path", string(out.Path)).
		Str("rule", out.RuleName).
		Str("type", out.Record.Type).
		Float64("amount", out.Record.Amount).
		Msg("Pending transaction recorded")

	s.notify(ctx, out.Record)

	return out, nil
}

// Classify runs the pre-filter, the rule engine and the fallback without
// storing or notifying anything.
func (s *Service) Classify(ctx context.Context, msg InboundMessage) (Outcome, error) {
	if strings.TrimSpace(msg.Body) == "" {
		return Outcome{}, ErrEmptyMessage
	}
	if s.filtered(msg.Body) {
		return Outcome{Skipped: SkipFiltered}, nil
	}
	if out, ok := s.parse(ctx, msg); ok {
		return out, nil
	}
	return Outcome{Skipped: SkipNoMatch}, nil
}

// filtered drops one-time passwords and bodies too short to be a transaction.
func (s *Service) filtered(body string) bool {
	if strings.Contains(strings.ToUpper(body), "OTP") {
		return true
	}
	return utf8.RuneCountInString(body) < s.cfg.MinMessageLength
}

func (s *Service) parse(ctx context.Context, msg InboundMessage) (Outcome, bool) {
	if m, ok := s.matcher.Match(ctx, msg.Sender, msg.Body); ok {
		return Outcome{Record: m.Record, Path: PathRule, RuleName: m.RuleName}, true
	}

	if !s.cfg.LegacyFallback || s.fallback == nil {
		return Outcome{}, false
	}
	if rec, ok := s.fallback.Classify(msg.Body); ok {
		return Outcome{Record: rec, Path: PathLegacy}, true
	}
	return Outcome{}, false
}

func (s *Service) notify(ctx context.Context, rec *transaction.Record) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyTransaction(ctx, rec); err != nil {
		s.log.Error().Err(err).Str("id", rec.ID).Msg("Failed to send transaction notification")
	}
	if err := s.notifier.SignalNewData(ctx); err != nil {
		s.log.Error().Err(err).Msg("Failed to send new-data signal")
	}
}

func (s *Service) count(ctx context.Context, outcome string) {
	messageTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
