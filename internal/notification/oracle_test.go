package notification

import (
	"context"
	"testing"
	"time"

	"github.com/certwatch/certwatch-api/internal/expiry"
	"github.com/certwatch/certwatch-api/internal/models"
	"github.com/certwatch/certwatch-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMilestoneKey(t *testing.T) {
	assert.Equal(t, "SCHEME_A:3-months", MilestoneKey(models.SchemeA, expiry.BucketThreeMonths))
	assert.Equal(t, "SCHEME_B:overdue", MilestoneKey(models.SchemeB, expiry.BucketOverdue))
}

func insertRow(t *testing.T, audit *fakeAuditRepo, key string, kind models.NotificationKind, sentAt time.Time, outcome models.NotificationOutcome) {
	t.Helper()
	_, err := audit.Insert(context.Background(), repository.InsertAuditParams{
		CertificationID: "c1",
		RecipientEmail:  "ops@example.com",
		Kind:            kind,
		MilestoneKey:    key,
		SentAt:          sentAt,
		Outcome:         outcome,
	})
	require.NoError(t, err)
}

func TestIsOwedReminderOneShot(t *testing.T) {
	audit := &fakeAuditRepo{}
	oracle := NewOracle(audit, time.UTC)
	ctx := context.Background()
	today := date(2026, time.March, 15)

	owed, err := oracle.IsOwed(ctx, "c1", "ops@example.com", "SCHEME_A:month", models.KindReminder, today)
	require.NoError(t, err)
	assert.True(t, owed)

	insertRow(t, audit, "SCHEME_A:month", models.KindReminder, today, models.OutcomeSent)

	// Suppressed from then on, even months later.
	owed, err = oracle.IsOwed(ctx, "c1", "ops@example.com", "SCHEME_A:month", models.KindReminder, today.AddDate(0, 3, 0))
	require.NoError(t, err)
	assert.False(t, owed)

	// A different milestone of the same certification is independent.
	owed, err = oracle.IsOwed(ctx, "c1", "ops@example.com", "SCHEME_A:week", models.KindReminder, today)
	require.NoError(t, err)
	assert.True(t, owed)

	// So is a different recipient.
	owed, err = oracle.IsOwed(ctx, "c1", "other@example.com", "SCHEME_A:month", models.KindReminder, today)
	require.NoError(t, err)
	assert.True(t, owed)
}

func TestIsOwedOverdueOncePerDay(t *testing.T) {
	audit := &fakeAuditRepo{}
	oracle := NewOracle(audit, time.UTC)
	ctx := context.Background()
	today := date(2026, time.March, 15)

	owed, err := oracle.IsOwed(ctx, "c1", "ops@example.com", "SCHEME_A:overdue", models.KindOverdue, today)
	require.NoError(t, err)
	assert.True(t, owed)

	insertRow(t, audit, "SCHEME_A:overdue", models.KindOverdue, today.Add(9*time.Hour), models.OutcomeSent)

	// Later the same day: suppressed.
	owed, err = oracle.IsOwed(ctx, "c1", "ops@example.com", "SCHEME_A:overdue", models.KindOverdue, today.Add(14*time.Hour))
	require.NoError(t, err)
	assert.False(t, owed)

	// Next day: owed again.
	owed, err = oracle.IsOwed(ctx, "c1", "ops@example.com", "SCHEME_A:overdue", models.KindOverdue, today.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.True(t, owed)
}

func TestIsOwedFailedRowsDoNotSuppress(t *testing.T) {
	audit := &fakeAuditRepo{}
	oracle := NewOracle(audit, time.UTC)
	ctx := context.Background()
	today := date(2026, time.March, 15)

	insertRow(t, audit, "SCHEME_A:month", models.KindReminder, today, models.OutcomeFailed)
	insertRow(t, audit, "SCHEME_A:overdue", models.KindOverdue, today, models.OutcomeFailed)

	owed, err := oracle.IsOwed(ctx, "c1", "ops@example.com", "SCHEME_A:month", models.KindReminder, today)
	require.NoError(t, err)
	assert.True(t, owed)

	owed, err = oracle.IsOwed(ctx, "c1", "ops@example.com", "SCHEME_A:overdue", models.KindOverdue, today)
	require.NoError(t, err)
	assert.True(t, owed)
}

func TestIsOwedOverdueUsesConfiguredLocation(t *testing.T) {
	audit := &fakeAuditRepo{}
	kolkata := time.FixedZone("IST", 5*3600+1800)
	oracle := NewOracle(audit, kolkata)
	ctx := context.Background()

	// Sent at 20:00 UTC = 01:30 next day IST. A check at 21:00 UTC the same
	// UTC day is already "tomorrow" locally, so nothing further is owed
	// until the local day after.
	sentAt := time.Date(2026, time.March, 15, 20, 0, 0, 0, time.UTC)
	insertRow(t, audit, "SCHEME_A:overdue", models.KindOverdue, sentAt, models.OutcomeSent)

	owed, err := oracle.IsOwed(ctx, "c1", "ops@example.com", "SCHEME_A:overdue", models.KindOverdue, sentAt.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, owed)

	owed, err = oracle.IsOwed(ctx, "c1", "ops@example.com", "SCHEME_A:overdue", models.KindOverdue, sentAt.Add(24*time.Hour))
	require.NoError(t, err)
	assert.True(t, owed)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
