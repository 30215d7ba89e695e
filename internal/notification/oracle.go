package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/certwatch/certwatch-api/internal/expiry"
	"github.com/certwatch/certwatch-api/internal/models"
	"github.com/certwatch/certwatch-api/internal/repository"
)

// MilestoneKey is the suppression unit in the audit log: scheme plus bucket,
// e.g. "SCHEME_A:3-months" or "SCHEME_B:overdue".
func MilestoneKey(scheme models.Scheme, bucket expiry.Bucket) string {
	return fmt.Sprintf("%s:%s", scheme, bucket)
}

// Oracle decides whether a notification is still owed for a given
// certification, recipient and milestone. Two regimes:
//
//   - reminder: one-shot. Once a sent row exists for the tuple it stays
//     suppressed forever, even if the record re-enters the bucket later.
//   - overdue: once per local calendar day, indefinitely, until the
//     validity window moves into the future or the record is removed.
//
// Failed rows never suppress, so a transient gateway failure is retried on
// the next run.
type Oracle struct {
	audit repository.AuditRepository
	loc   *time.Location
}

func NewOracle(audit repository.AuditRepository, loc *time.Location) *Oracle {
	return &Oracle{audit: audit, loc: loc}
}

func (o *Oracle) IsOwed(ctx context.Context, certificationID, recipientEmail, milestoneKey string, kind models.NotificationKind, today time.Time) (bool, error) {
	if kind == models.KindOverdue {
		last, err := o.audit.LatestSentAt(ctx, certificationID, recipientEmail, milestoneKey)
		if err != nil {
			return false, err
		}
		if last == nil {
			return true, nil
		}
		return beforeDay(last.In(o.loc), today.In(o.loc)), nil
	}

	sent, err := o.audit.HasSent(ctx, certificationID, recipientEmail, milestoneKey)
	if err != nil {
		return false, err
	}
	return !sent, nil
}

// beforeDay reports whether a falls on an earlier calendar day than b.
func beforeDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}
