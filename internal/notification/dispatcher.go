package notification

import (
	"context"
	"time"

	"github.com/certwatch/certwatch-api/internal/expiry"
	"github.com/certwatch/certwatch-api/internal/models"
	"github.com/certwatch/certwatch-api/internal/repository"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Result is the aggregate outcome of one dispatcher run. Sent counts
// certifications that had a batch delivered, not individual messages;
// per-recipient detail lives only in the audit log.
type Result struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
}

// Dispatcher orchestrates one notification pass: classify every per-scheme
// certification view, ask the oracle which recipients are still owed the
// milestone, deliver one batch email per certification and record every
// attempt in the audit log. Safe to call repeatedly: satisfied milestones
// cost only read queries.
type Dispatcher struct {
	certs      repository.CertificationRepository
	recipients repository.RecipientRepository
	audit      repository.AuditRepository
	oracle     *Oracle
	composer   *Composer
	mailer     Mailer
	cc         []string
	loc        *time.Location
	logger     zerolog.Logger
	now        func() time.Time
}

func NewDispatcher(
	certs repository.CertificationRepository,
	recipients repository.RecipientRepository,
	audit repository.AuditRepository,
	oracle *Oracle,
	composer *Composer,
	mailer Mailer,
	cc []string,
	loc *time.Location,
	logger zerolog.Logger,
) *Dispatcher {
	return &Dispatcher{
		certs:      certs,
		recipients: recipients,
		audit:      audit,
		oracle:     oracle,
		composer:   composer,
		mailer:     mailer,
		cc:         cc,
		loc:        loc,
		logger:     logger.With().Str("component", "dispatcher").Logger(),
		now:        time.Now,
	}
}

// Run executes one pass as of the given time. Gateway failures are recorded
// and the loop continues; audit-log write failures abort the run, because a
// delivery whose outcome cannot be recorded must not be treated as sent.
// The counters accumulated so far are returned alongside the error.
func (d *Dispatcher) Run(ctx context.Context, now time.Time) (Result, error) {
	var res Result

	active, err := d.recipients.ListActive(ctx)
	if err != nil {
		return res, errors.Wrap(err, "list active recipients")
	}
	if len(active) == 0 {
		d.logger.Warn().Msg("no active recipients configured; nothing to do")
		return res, nil
	}

	certs, err := d.certs.List(ctx)
	if err != nil {
		return res, errors.Wrap(err, "list certifications")
	}

	today := now.In(d.loc)
	for _, cert := range certs {
		for _, view := range cert.SchemeViews() {
			sent, err := d.processView(ctx, view, active, today)
			if err != nil {
				return res, err
			}
			if sent {
				res.Sent++
			} else {
				res.Skipped++
			}
		}
	}

	d.logger.Info().Int("sent", res.Sent).Int("skipped", res.Skipped).Msg("notification run complete")
	return res, nil
}

func (d *Dispatcher) processView(ctx context.Context, view models.SchemeCertification, active []models.Recipient, today time.Time) (bool, error) {
	if !view.Record.Populated() {
		return false, nil
	}

	bucket := expiry.Classify(view.Record.ValidTo, today)
	if !bucket.Notifiable() {
		return false, nil
	}

	kind := models.KindReminder
	if bucket == expiry.BucketOverdue {
		kind = models.KindOverdue
	}
	key := MilestoneKey(view.Scheme, bucket)

	var owed []models.Recipient
	for _, rec := range active {
		ok, err := d.oracle.IsOwed(ctx, view.CertificationID, rec.Email, key, kind, today)
		if err != nil {
			return false, errors.Wrapf(err, "consult audit log for %s", key)
		}
		if ok {
			owed = append(owed, rec)
		}
	}
	if len(owed) == 0 {
		return false, nil
	}

	msg := d.composer.Compose(view, bucket)
	to := make([]string, 0, len(owed))
	for _, rec := range owed {
		to = append(to, rec.Email)
	}

	// One timestamp per certification batch, shared by all its audit rows.
	attemptedAt := d.now().In(d.loc)

	sendErr := d.mailer.Send(to, msg.Subject, msg.HTMLBody, d.cc)
	outcome := models.OutcomeSent
	detail := ""
	if sendErr != nil {
		outcome = models.OutcomeFailed
		detail = sendErr.Error()
		d.logger.Warn().Err(sendErr).
			Str("certification_id", view.CertificationID).
			Str("milestone", key).
			Strs("recipients", to).
			Msg("delivery failed; recorded for retry")
	}

	for _, rec := range owed {
		_, err := d.audit.Insert(ctx, repository.InsertAuditParams{
			CertificationID: view.CertificationID,
			RecipientEmail:  rec.Email,
			Kind:            kind,
			MilestoneKey:    key,
			SentAt:          attemptedAt,
			Outcome:         outcome,
			ErrorDetail:     detail,
		})
		if err != nil {
			return false, errors.Wrapf(err, "write audit record for %s/%s", view.CertificationID, rec.Email)
		}
	}

	if sendErr != nil {
		return false, nil
	}

	d.logger.Info().
		Str("certification_id", view.CertificationID).
		Str("milestone", key).
		Int("recipients", len(owed)).
		Msg("notification sent")
	return true, nil
}
