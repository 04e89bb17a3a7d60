package gcs

import (
	"errors"
	"testing"
)

func TestParseURI(t *testing.T) {
	tests := []struct {
		name       string
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{"simple", "gs://rules/sms_patterns.json", "rules", "sms_patterns.json", false},
		{"nested object", "gs://cfg-bucket/prod/sms/rules.json", "cfg-bucket", "prod/sms/rules.json", false},
		{"wrong scheme", "s3://rules/sms.json", "", "", true},
		{"no object", "gs://rules", "", "", true},
		{"trailing slash only", "gs://rules/", "", "", true},
		{"empty bucket", "gs:///rules.json", "", "", true},
		{"empty", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, object, err := ParseURI(tt.uri)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidURI) {
					t.Fatalf("expected ErrInvalidURI, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if bucket != tt.wantBucket || object != tt.wantObject {
				t.Errorf("got (%q, %q), want (%q, %q)", bucket, object, tt.wantBucket, tt.wantObject)
			}
		})
	}
}

func TestNewRuleSource(t *testing.T) {
	src, err := NewRuleSource("gs://rules/prod/sms.json", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.Location() != "gs://rules/prod/sms.json" {
		t.Errorf("Location() = %q", src.Location())
	}
	if len(src.opts) != 0 {
		t.Errorf("expected no client options without credentials file")
	}

	src, err = NewRuleSource("gs://rules/sms.json", "/etc/creds.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(src.opts) != 1 {
		t.Errorf("expected credentials option")
	}

	if _, err := NewRuleSource("rules.json", ""); err == nil {
		t.Error("expected error for non-gs URI")
	}
}
