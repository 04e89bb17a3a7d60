package rule

import _ "embed"

// bundledDocument is the rule document shipped with the binary. It is used
// whenever no override has been saved.
//
//go:embed sms_patterns.json
var bundledDocument []byte

// BundledDocument returns a copy of the built-in rule document.
func BundledDocument() []byte {
	out := make([]byte, len(bundledDocument))
	copy(out, bundledDocument)
	return out
}
