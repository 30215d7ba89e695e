package models

import "time"

type NotificationKind string

const (
	KindReminder NotificationKind = "reminder"
	KindOverdue  NotificationKind = "overdue"
)

type NotificationOutcome string

const (
	OutcomeSent   NotificationOutcome = "sent"
	OutcomeFailed NotificationOutcome = "failed"
)

// NotificationAuditRecord is one row per attempted delivery. The table is
// append-only and is the single source of truth for milestone suppression:
// only rows with OutcomeSent count toward it.
type NotificationAuditRecord struct {
	ID              string              `json:"id"`
	CertificationID string              `json:"certification_id"`
	RecipientEmail  string              `json:"recipient_email"`
	Kind            NotificationKind    `json:"kind"`
	MilestoneKey    string              `json:"milestone_key"`
	SentAt          time.Time           `json:"sent_at"`
	Outcome         NotificationOutcome `json:"outcome"`
	ErrorDetail     *string             `json:"error_detail,omitempty"`
}
