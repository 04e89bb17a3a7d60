package ingest

import (
	"errors"
	"time"

	"smsledger/internal/domain/transaction"
)

// DefaultMinMessageLength is the shortest body worth parsing.
const DefaultMinMessageLength = 20

var ErrEmptyMessage = errors.New("message body is required")

// InboundMessage is one SMS or bank notification as delivered to the service.
type InboundMessage struct {
	Sender     string    `json:"sender"`
	Body       string    `json:"message"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// Path names the engine that produced a record.
type Path string

const (
	PathRule   Path = "rule"
	PathLegacy Path = "legacy"
)

// SkipReason explains why no record was produced.
type SkipReason string

const (
	SkipFiltered SkipReason = "filtered"
	SkipNoMatch  SkipReason = "no_match"
)

// Outcome is the result of processing one message. Exactly one of Record
// and Skipped is set.
type Outcome struct {
	Record   *transaction.Record `json:"record,omitempty"`
	Path     Path                `json:"path,omitempty"`
	RuleName string              `json:"ruleName,omitempty"`
	Skipped  SkipReason          `json:"skipped,omitempty"`
}

// Matched reports whether a record was produced.
func (o Outcome) Matched() bool {
	return o.Record != nil
}

// Config controls the inbound pipeline.
type Config struct {
	// LegacyFallback runs the heuristic classifier when no rule matches.
	LegacyFallback bool
	// MinMessageLength filters out bodies shorter than this many characters.
	MinMessageLength int
}
