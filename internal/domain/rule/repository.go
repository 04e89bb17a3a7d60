package rule

import "context"

// OverrideRepository persists the user-supplied rule document.
// Load reports found=false when no override has been saved yet.
type OverrideRepository interface {
	Load(ctx context.Context) (raw []byte, found bool, err error)
	Save(ctx context.Context, raw []byte) error
}

// RuleSource hands out the current rule snapshot.
type RuleSource interface {
	Rules(ctx context.Context) *Snapshot
}
