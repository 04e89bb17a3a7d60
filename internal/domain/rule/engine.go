package rule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"smsledger/internal/domain/category"
	"smsledger/internal/domain/transaction"
)

var (
	ruleMeter      = otel.Meter("smsledger/rules")
	matchTotal, _  = ruleMeter.Int64Counter("rules.match.total", metric.WithDescription("Rule evaluations by result"))
	ruleFailure, _ = ruleMeter.Int64Counter("rules.evaluation.failed", metric.WithDescription("Rules that panicked or failed to build a record"))
)

// DefaultLocation is used to read message dates when none is configured.
const DefaultLocation = "Asia/Kolkata"

// Match is a successful rule evaluation.
type Match struct {
	Record   *transaction.Record
	RuleName string
}

// Engine evaluates messages against the active rule set in order. The first
// rule that matches and yields a positive amount wins.
type Engine struct {
	rules   RuleSource
	builder *transaction.Builder
	loc     *time.Location
	log     zerolog.Logger
}

// NewEngine creates an engine. A nil loc reads dates in DefaultLocation,
// or UTC when that zone is unavailable.
func NewEngine(rules RuleSource, builder *transaction.Builder, loc *time.Location, log zerolog.Logger) *Engine {
	if loc == nil {
		var err error
		if loc, err = time.LoadLocation(DefaultLocation); err != nil {
			loc = time.UTC
		}
	}
	return &Engine{
		rules:   rules,
		builder: builder,
		loc:     loc,
		log:     log.With().Str("component", "rule_engine").Logger(),
	}
}

// Match returns the record produced by the first applicable rule. An empty
// sender skips sender filtering. The bool is false when no rule applies.
func (e *Engine) Match(ctx context.Context, sender, message string) (*Match, bool) {
	snap := e.rules.Rules(ctx)
	if snap == nil || len(snap.Rules) == 0 {
		matchTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "no_rules")))
		return nil, false
	}

	for _, r := range snap.Rules {
		if ctx.Err() != nil {
			break
		}
		rec, err := e.apply(r, sender, message)
		if err != nil {
			ruleFailure.Add(ctx, 1, metric.WithAttributes(attribute.String("rule", r.Name)))
			e.log.Warn().Err(err).Str("rule", r.Name).Msg("Rule evaluation failed")
			continue
		}
		if rec == nil {
			continue
		}

		matchTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "matched")))
		e.log.Debug().Str("rule", r.Name).Str("id", rec.ID).Msg("Rule matched")
		return &Match{Record: rec, RuleName: r.Name}, true
	}

	matchTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "no_match")))
	return nil, false
}

// apply evaluates one rule. A nil record with nil error means the rule does
// not apply. A panic inside a rule is turned into an error so that the
// remaining rules still run.
func (e *Engine) apply(r *ParsingRule, sender, message string) (rec *transaction.Record, err error) {
	defer func() {
		if p := recover(); p != nil {
			rec, err = nil, fmt.Errorf("panic: %v", p)
		}
	}()

	if sender != "" && !r.Sender.MatchString(sender) {
		return nil, nil
	}

	groups := r.Message.FindStringSubmatch(message)
	if groups == nil {
		return nil, nil
	}
	group := func(name string) string {
		if name == "" {
			return ""
		}
		idx := r.Message.SubexpIndex(name)
		if idx < 0 || idx >= len(groups) {
			return ""
		}
		return groups[idx]
	}

	amount, ok := transaction.ParsePositiveAmount(group(r.Strategy.AmountGroup))
	if !ok {
		return nil, nil
	}

	txType := r.Static(DataType)
	if txType == "" {
		txType = transaction.TypeExpense
	}

	f := transaction.Fields{
		Type:          txType,
		Amount:        amount,
		PaymentMethod: r.Static(DataPaymentMethod),
		BankName:      optional(r.Static(DataBankName)),
		AccountNumber: optional(strings.TrimSpace(group(r.Strategy.AccountGroup))),
		Payee:         optional(strings.TrimSpace(group(r.Strategy.PayeeGroup))),
	}

	if raw := group(r.Strategy.BalanceGroup); raw != "" {
		if balance, ok := transaction.ParseAmount(raw); ok {
			f.Balance = &balance
		}
	}

	if raw := group(r.Strategy.DateGroup); raw != "" {
		if at, ok := e.parseDate(r.Strategy, raw); ok {
			f.OccurredAt = &at
		}
	}

	if c := r.Static(DataCategory); c != "" {
		f.Category = &c
	} else {
		text := message
		if f.Payee != nil {
			text = *f.Payee
		}
		f.Category = category.ClassifyOrOthers(strings.ToLower(text), txType)
	}

	return e.builder.Build(f)
}

// parseDate reads a captured date. Failures fall back to the processing
// time, which the builder applies when OccurredAt is nil.
func (e *Engine) parseDate(s ExtractionStrategy, raw string) (time.Time, bool) {
	if s.DateLayout == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(s.DateLayout, strings.TrimSpace(raw), e.loc)
	if err != nil {
		return time.Time{}, false
	}
	if !s.DateHasYear {
		now := e.builder.Now().In(e.loc)
		t = time.Date(now.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), e.loc)
	}
	return t, true
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
