package probe

import (
	"context"

	"github.com/hamed0406/backlinkmonitor/internal/domain"
)

// Checker classifies a single backlink target.
//
// Implementations never return an error: every failure mode maps onto a
// domain.Status, so the result always carries exactly one valid status.
type Checker interface {
	Check(ctx context.Context, t domain.Target) domain.CheckResult
}

// CheckerFunc adapts a plain function to Checker.
type CheckerFunc func(ctx context.Context, t domain.Target) domain.CheckResult

func (f CheckerFunc) Check(ctx context.Context, t domain.Target) domain.CheckResult {
	return f(ctx, t)
}
