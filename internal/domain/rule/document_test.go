package rule

import (
	"errors"
	"testing"
)

func TestParseDocument_DocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"invalid json", `{"rules": [`},
		{"missing rules array", `{"patterns": []}`},
		{"rules not an array", `{"rules": {"a": 1}}`},
		{"null rules", `{"rules": null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseDocument([]byte(tt.raw))
			if !errors.Is(err, ErrDocumentLoad) {
				t.Fatalf("expected ErrDocumentLoad, got %v", err)
			}
			if len(result.Rules) != 0 {
				t.Errorf("expected no rules, got %d", len(result.Rules))
			}
		})
	}
}

func TestParseDocument_EntryIsolation(t *testing.T) {
	raw := `{"rules": [
		{"ruleName": "good_one", "senderPattern": "BANK", "messagePattern": "Rs (?P<amount>\\d+)"},
		{"ruleName": "lookbehind", "senderPattern": "BANK", "messagePattern": "(?<=Rs )(?P<amount>\\d+)"},
		{"ruleName": "no_amount", "senderPattern": "BANK", "messagePattern": "Rs (?P<value>\\d+)"},
		{"ruleName": "bad_type", "senderPattern": "BANK", "messagePattern": "Rs (?P<amount>\\d+)", "data": {"type": "transfer"}},
		{"ruleName": "no_sender", "messagePattern": "Rs (?P<amount>\\d+)"},
		"not an object",
		{"ruleName": "good_two", "senderPattern": "", "messagePattern": "INR (?<amount>\\d+)"}
	]}`

	result, err := ParseDocument([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(result.Rules))
	}
	if result.Rules[0].Name != "good_one" || result.Rules[1].Name != "good_two" {
		t.Errorf("unexpected rule order: %s, %s", result.Rules[0].Name, result.Rules[1].Name)
	}

	if len(result.Skipped) != 5 {
		t.Fatalf("expected 5 skipped entries, got %d", len(result.Skipped))
	}
	for _, s := range result.Skipped {
		if !errors.Is(s, ErrRuleEntry) {
			t.Errorf("skipped entry %d should match ErrRuleEntry", s.Index)
		}
	}
	if result.Skipped[0].Index != 1 || result.Skipped[0].Name != "lookbehind" {
		t.Errorf("unexpected first skipped entry: %v", result.Skipped[0])
	}
}

func TestParseDocument_InactiveEntries(t *testing.T) {
	raw := `{"rules": [
		{"ruleName": "off", "active": false, "senderPattern": "(", "messagePattern": "broken"},
		{"ruleName": "on", "active": true, "senderPattern": "X", "messagePattern": "(?P<amount>\\d+)"},
		{"ruleName": "default_on", "senderPattern": "X", "messagePattern": "(?P<amount>\\d+)"}
	]}`

	result, err := ParseDocument([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Inactive != 1 {
		t.Errorf("expected 1 inactive entry, got %d", result.Inactive)
	}
	if len(result.Skipped) != 0 {
		t.Errorf("inactive entries must not be validated, got %d skipped", len(result.Skipped))
	}
	if len(result.Rules) != 2 {
		t.Errorf("expected 2 active rules, got %d", len(result.Rules))
	}
}

func TestParseDocument_Defaults(t *testing.T) {
	raw := `{"rules": [
		{"senderPattern": "X", "messagePattern": "(?P<amount>\\d+)"},
		{"ruleName": "nulls", "senderPattern": "X", "messagePattern": "(?P<amt>\\d+)",
		 "data": {"type": null, "bankName": "null", "category": ""},
		 "extractionStrategy": {"amountGroup": "amt", "payeeGroup": "null", "dateGroup": null, "dateFormat": ""}}
	]}`

	result, err := ParseDocument([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Rules) != 2 {
		t.Fatalf("expected 2 rules, got %d (skipped %v)", len(result.Rules), result.Skipped)
	}

	first := result.Rules[0]
	if first.Name != "rule_0" {
		t.Errorf("expected default name rule_0, got %q", first.Name)
	}
	if first.Strategy.AmountGroup != DefaultAmountGroup {
		t.Errorf("expected default amount group, got %q", first.Strategy.AmountGroup)
	}

	second := result.Rules[1]
	if len(second.StaticData) != 0 {
		t.Errorf("null-like data values should be dropped, got %v", second.StaticData)
	}
	if second.Strategy.AmountGroup != "amt" {
		t.Errorf("expected amount group amt, got %q", second.Strategy.AmountGroup)
	}
	if second.Strategy.PayeeGroup != "" || second.Strategy.DateGroup != "" || second.Strategy.DateFormat != "" {
		t.Errorf("null-like strategy values should be empty, got %+v", second.Strategy)
	}
}

func TestParseDocument_DateFormatTranslated(t *testing.T) {
	raw := `{"rules": [
		{"ruleName": "ok", "senderPattern": "X", "messagePattern": "(?P<amount>\\d+) (?P<d>\\S+)",
		 "extractionStrategy": {"dateGroup": "d", "dateFormat": "dd-MMM-yy"}},
		{"ruleName": "unsupported", "senderPattern": "X", "messagePattern": "(?P<amount>\\d+) (?P<d>\\S+)",
		 "extractionStrategy": {"dateGroup": "d", "dateFormat": "dd/MM/yyyy'T'HH.SSS"}}
	]}`

	result, err := ParseDocument([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Rules) != 2 {
		t.Fatalf("an untranslatable date format must not drop the rule, got %d rules", len(result.Rules))
	}
	if got := result.Rules[0].Strategy.DateLayout; got != "2-Jan-06" {
		t.Errorf("expected layout 2-Jan-06, got %q", got)
	}
	if got := result.Rules[1].Strategy.DateLayout; got != "" {
		t.Errorf("expected empty layout, got %q", got)
	}
}

func TestBundledDocument(t *testing.T) {
	result, err := ParseDocument(BundledDocument())
	if err != nil {
		t.Fatalf("bundled document failed to parse: %v", err)
	}
	if len(result.Skipped) != 0 {
		t.Errorf("bundled document has invalid entries: %v", result.Skipped)
	}
	if result.Inactive != 1 {
		t.Errorf("expected 1 inactive bundled rule, got %d", result.Inactive)
	}
	if len(result.Rules) == 0 {
		t.Fatal("bundled document has no active rules")
	}
	for _, r := range result.Rules {
		if r.Strategy.DateFormat != "" && r.Strategy.DateLayout == "" {
			t.Errorf("rule %s has untranslatable date format %q", r.Name, r.Strategy.DateFormat)
		}
	}
}
