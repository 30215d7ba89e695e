package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/certwatch/certwatch-api/internal/models"
	"github.com/google/uuid"
)

// maxErrorDetailLen bounds the error text stored on a failed attempt.
const maxErrorDetailLen = 500

type AuditRepository interface {
	Insert(ctx context.Context, params InsertAuditParams) (models.NotificationAuditRecord, error)
	HasSent(ctx context.Context, certificationID, recipientEmail, milestoneKey string) (bool, error)
	LatestSentAt(ctx context.Context, certificationID, recipientEmail, milestoneKey string) (*time.Time, error)
	ListByCertification(ctx context.Context, certificationID string, limit int) ([]models.NotificationAuditRecord, error)
}

type auditRepository struct {
	db *sql.DB
}

type InsertAuditParams struct {
	CertificationID string
	RecipientEmail  string
	Kind            models.NotificationKind
	MilestoneKey    string
	SentAt          time.Time
	Outcome         models.NotificationOutcome
	ErrorDetail     string
}

func NewAuditRepository(db *sql.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Insert(ctx context.Context, params InsertAuditParams) (models.NotificationAuditRecord, error) {
	const query = `
		INSERT INTO notification_log (id, certification_id, recipient_email, kind, milestone_key, sent_at, outcome, error_detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, certification_id, recipient_email, kind, milestone_key, sent_at, outcome, error_detail
	`

	var detail interface{}
	if params.ErrorDetail != "" {
		detail = truncate(params.ErrorDetail, maxErrorDetailLen)
	}

	row := r.db.QueryRowContext(ctx, query,
		uuid.NewString(),
		params.CertificationID,
		params.RecipientEmail,
		params.Kind,
		params.MilestoneKey,
		params.SentAt,
		params.Outcome,
		detail,
	)
	return scanAuditRecord(row)
}

func (r *auditRepository) HasSent(ctx context.Context, certificationID, recipientEmail, milestoneKey string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM notification_log
			WHERE certification_id = $1 AND recipient_email = $2 AND milestone_key = $3 AND outcome = 'sent'
		)
	`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, certificationID, recipientEmail, milestoneKey).Scan(&exists)
	return exists, err
}

func (r *auditRepository) LatestSentAt(ctx context.Context, certificationID, recipientEmail, milestoneKey string) (*time.Time, error) {
	const query = `
		SELECT sent_at FROM notification_log
		WHERE certification_id = $1 AND recipient_email = $2 AND milestone_key = $3 AND outcome = 'sent'
		ORDER BY sent_at DESC
		LIMIT 1
	`
	var sentAt time.Time
	err := r.db.QueryRowContext(ctx, query, certificationID, recipientEmail, milestoneKey).Scan(&sentAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sentAt, nil
}

func (r *auditRepository) ListByCertification(ctx context.Context, certificationID string, limit int) ([]models.NotificationAuditRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	const query = `
		SELECT id, certification_id, recipient_email, kind, milestone_key, sent_at, outcome, error_detail
		FROM notification_log
		WHERE certification_id = $1
		ORDER BY sent_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, certificationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.NotificationAuditRecord
	for rows.Next() {
		rec, err := scanAuditRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func scanAuditRecord(scanner interface {
	Scan(dest ...interface{}) error
}) (models.NotificationAuditRecord, error) {
	var (
		rec    models.NotificationAuditRecord
		detail sql.NullString
	)
	if err := scanner.Scan(
		&rec.ID,
		&rec.CertificationID,
		&rec.RecipientEmail,
		&rec.Kind,
		&rec.MilestoneKey,
		&rec.SentAt,
		&rec.Outcome,
		&detail,
	); err != nil {
		return models.NotificationAuditRecord{}, err
	}
	if detail.Valid {
		val := detail.String
		rec.ErrorDetail = &val
	}
	return rec, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
