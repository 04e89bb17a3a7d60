package rule

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Recognised staticData keys
const (
	DataType          = "type"
	DataBankName      = "bankName"
	DataPaymentMethod = "paymentMethod"
	DataCategory      = "category"
)

// DefaultAmountGroup is used when a rule does not name its amount group.
const DefaultAmountGroup = "amount"

// DocumentName is the file name / storage key of the rule document.
const DocumentName = "sms_patterns.json"

var (
	// ErrDocumentLoad means the whole document was unusable; the rule set is empty.
	ErrDocumentLoad = errors.New("rule document could not be loaded")
	// ErrRuleEntry means one entry was dropped; the rest of the document loaded.
	ErrRuleEntry = errors.New("invalid rule entry")
	// ErrEmptyDocument is returned when an update carries no content.
	ErrEmptyDocument = errors.New("rule document is empty")
)

// ParsingRule is one recognition unit. It is plain data: two compiled
// patterns, the attributes a match implies and the names of the groups to read.
type ParsingRule struct {
	Name       string
	Sender     *regexp.Regexp
	Message    *regexp.Regexp
	StaticData map[string]string
	Strategy   ExtractionStrategy
}

// Static returns the staticData value for key, or "" when absent.
func (r *ParsingRule) Static(key string) string {
	return r.StaticData[key]
}

// ExtractionStrategy names the capture groups a rule reads. Empty names are unused.
type ExtractionStrategy struct {
	AmountGroup  string
	AccountGroup string
	PayeeGroup   string
	BalanceGroup string
	DateGroup    string
	// DateFormat is the descriptor as written in the document.
	DateFormat string
	// DateLayout is DateFormat translated to a Go layout; empty when untranslatable.
	DateLayout string
	// DateHasYear is false when the descriptor has no year field.
	DateHasYear bool
}

// Source tells where a snapshot's document came from.
type Source string

const (
	SourceOverride Source = "override"
	SourceBundled  Source = "bundled"
)

// Snapshot is an immutable, fully loaded rule set. A new load always
// produces a new Snapshot; existing ones are never modified.
type Snapshot struct {
	Version  uint64
	Source   Source
	LoadedAt time.Time
	Rules    []*ParsingRule
	Skipped  []*EntryError
	Inactive int
	// LoadErr is set when the document itself could not be parsed.
	LoadErr error
}

// RuleNames lists the active rule names in evaluation order.
func (s *Snapshot) RuleNames() []string {
	names := make([]string, len(s.Rules))
	for i, r := range s.Rules {
		names[i] = r.Name
	}
	return names
}

// EntryError describes one rule entry that was dropped during load.
type EntryError struct {
	Index int
	Name  string
	Err   error
}

func (e *EntryError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("rule %d (%s): %v", e.Index, e.Name, e.Err)
	}
	return fmt.Sprintf("rule %d: %v", e.Index, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

// Is makes every EntryError match ErrRuleEntry.
func (e *EntryError) Is(target error) bool { return target == ErrRuleEntry }
