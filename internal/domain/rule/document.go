package rule

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"smsledger/internal/domain/transaction"
)

// ParseResult is the outcome of parsing one rule document.
type ParseResult struct {
	Rules    []*ParsingRule
	Skipped  []*EntryError
	Inactive int
}

type documentJSON struct {
	Rules *[]json.RawMessage `json:"rules"`
}

type entryJSON struct {
	RuleName           *string                    `json:"ruleName"`
	Active             *bool                      `json:"active"`
	SenderPattern      *string                    `json:"senderPattern"`
	MessagePattern     *string                    `json:"messagePattern"`
	Data               map[string]json.RawMessage `json:"data"`
	ExtractionStrategy map[string]json.RawMessage `json:"extractionStrategy"`
}

// ParseDocument decodes a rule document. A document that is not valid JSON
// or has no rules array returns an error wrapping ErrDocumentLoad. Broken
// entries are reported in ParseResult.Skipped and never stop the others
// from loading. Inactive entries are counted and dropped.
func ParseDocument(raw []byte) (*ParseResult, error) {
	var doc documentJSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		return &ParseResult{}, fmt.Errorf("%w: %v", ErrDocumentLoad, err)
	}
	if doc.Rules == nil {
		return &ParseResult{}, fmt.Errorf("%w: missing rules array", ErrDocumentLoad)
	}

	result := &ParseResult{Rules: make([]*ParsingRule, 0, len(*doc.Rules))}
	for i, rawEntry := range *doc.Rules {
		r, active, err := parseEntry(i, rawEntry)
		if err != nil {
			result.Skipped = append(result.Skipped, err)
			continue
		}
		if !active {
			result.Inactive++
			continue
		}
		result.Rules = append(result.Rules, r)
	}

	return result, nil
}

func parseEntry(index int, raw json.RawMessage) (*ParsingRule, bool, *EntryError) {
	var e entryJSON
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, false, &EntryError{Index: index, Err: fmt.Errorf("malformed entry: %w", err)}
	}

	name := fmt.Sprintf("rule_%d", index)
	if e.RuleName != nil && strings.TrimSpace(*e.RuleName) != "" {
		name = strings.TrimSpace(*e.RuleName)
	}
	fail := func(err error) (*ParsingRule, bool, *EntryError) {
		return nil, false, &EntryError{Index: index, Name: name, Err: err}
	}

	// Inactive entries are dropped before validation.
	if e.Active != nil && !*e.Active {
		return nil, false, nil
	}

	if e.SenderPattern == nil {
		return fail(errors.New("senderPattern is required"))
	}
	if e.MessagePattern == nil || *e.MessagePattern == "" {
		return fail(errors.New("messagePattern is required"))
	}

	sender, err := regexp.Compile(*e.SenderPattern)
	if err != nil {
		return fail(fmt.Errorf("invalid senderPattern: %w", err))
	}
	message, err := regexp.Compile(*e.MessagePattern)
	if err != nil {
		return fail(fmt.Errorf("invalid messagePattern: %w", err))
	}

	static, err := decodeStaticData(e.Data)
	if err != nil {
		return fail(err)
	}
	if t, ok := static[DataType]; ok && !transaction.IsValidType(t) {
		return fail(fmt.Errorf("data.type %q must be income or expense", t))
	}

	strategy, err := decodeStrategy(e.ExtractionStrategy)
	if err != nil {
		return fail(err)
	}
	if message.SubexpIndex(strategy.AmountGroup) < 0 {
		return fail(fmt.Errorf("messagePattern has no %q group", strategy.AmountGroup))
	}

	return &ParsingRule{
		Name:       name,
		Sender:     sender,
		Message:    message,
		StaticData: static,
		Strategy:   strategy,
	}, true, nil
}

func decodeStaticData(data map[string]json.RawMessage) (map[string]string, error) {
	static := make(map[string]string, len(data))
	for key, raw := range data {
		v, present, err := nullableString(raw)
		if err != nil {
			return nil, fmt.Errorf("data.%s: %w", key, err)
		}
		if present {
			static[key] = v
		}
	}
	return static, nil
}

func decodeStrategy(fields map[string]json.RawMessage) (ExtractionStrategy, error) {
	s := ExtractionStrategy{AmountGroup: DefaultAmountGroup}

	targets := []struct {
		key string
		dst *string
	}{
		{"amountGroup", &s.AmountGroup},
		{"accountGroup", &s.AccountGroup},
		{"payeeGroup", &s.PayeeGroup},
		{"balanceGroup", &s.BalanceGroup},
		{"dateGroup", &s.DateGroup},
		{"dateFormat", &s.DateFormat},
	}
	for _, t := range targets {
		raw, ok := fields[t.key]
		if !ok {
			continue
		}
		v, present, err := nullableString(raw)
		if err != nil {
			return s, fmt.Errorf("extractionStrategy.%s: %w", t.key, err)
		}
		if present {
			*t.dst = v
		}
	}

	if s.DateFormat != "" {
		if layout, hasYear, err := TranslateDateFormat(s.DateFormat); err == nil {
			s.DateLayout = layout
			s.DateHasYear = hasYear
		}
	}

	return s, nil
}

// nullableString decodes a JSON string where null, "" and "null" all mean absent.
func nullableString(raw json.RawMessage) (string, bool, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", false, nil
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false, errors.New("must be a string")
	}
	if v == "" || v == "null" {
		return "", false, nil
	}
	return v, true, nil
}
