package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/certwatch/certwatch-api/internal/models"
	"github.com/google/uuid"
)

type CertificationRepository interface {
	Create(ctx context.Context, cert models.Certification) (models.Certification, error)
	Get(ctx context.Context, id string) (models.Certification, error)
	List(ctx context.Context) ([]models.Certification, error)
	Update(ctx context.Context, cert models.Certification) (models.Certification, error)
	Delete(ctx context.Context, id string) error
	SetAttachment(ctx context.Context, id, name, mimeType string, data []byte) error
	GetAttachment(ctx context.Context, id string) (Attachment, error)
	DeleteAttachment(ctx context.Context, id string) error
	ReplaceAll(ctx context.Context, certs []models.Certification) error
}

// Attachment is the stored file of a certification, fetched separately from
// the row so list queries never drag the bytes along.
type Attachment struct {
	Name     string
	MimeType string
	Data     []byte
}

type certificationRepository struct {
	db *sql.DB
}

func NewCertificationRepository(db *sql.DB) CertificationRepository {
	return &certificationRepository{db: db}
}

// certColumns is every column except the attachment payload.
const certColumns = `id, group_number, plant_name, address, scheme,
		a_registration_number, a_status, a_valid_from, a_valid_to,
		b_registration_number, b_status, b_valid_from, b_valid_to,
		model_list, standard_ref, renewal_status, alarm_note, action_note,
		attachment_name, created_at, updated_at`

func (r *certificationRepository) Create(ctx context.Context, cert models.Certification) (models.Certification, error) {
	query := `
		INSERT INTO certifications (id, group_number, plant_name, address, scheme,
			a_registration_number, a_status, a_valid_from, a_valid_to,
			b_registration_number, b_status, b_valid_from, b_valid_to,
			model_list, standard_ref, renewal_status, alarm_note, action_note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING ` + certColumns
	row := r.db.QueryRowContext(ctx, query, certArgs(uuid.NewString(), cert)...)
	return scanCertification(row)
}

func (r *certificationRepository) Get(ctx context.Context, id string) (models.Certification, error) {
	query := `SELECT ` + certColumns + ` FROM certifications WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)
	return scanCertification(row)
}

func (r *certificationRepository) List(ctx context.Context) ([]models.Certification, error) {
	query := `SELECT ` + certColumns + ` FROM certifications ORDER BY group_number, plant_name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var certs []models.Certification
	for rows.Next() {
		cert, err := scanCertification(rows)
		if err != nil {
			return nil, err
		}
		certs = append(certs, cert)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return certs, nil
}

func (r *certificationRepository) Update(ctx context.Context, cert models.Certification) (models.Certification, error) {
	query := `
		UPDATE certifications
		SET group_number = $2, plant_name = $3, address = $4, scheme = $5,
			a_registration_number = $6, a_status = $7, a_valid_from = $8, a_valid_to = $9,
			b_registration_number = $10, b_status = $11, b_valid_from = $12, b_valid_to = $13,
			model_list = $14, standard_ref = $15, renewal_status = $16, alarm_note = $17, action_note = $18,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + certColumns
	row := r.db.QueryRowContext(ctx, query, certArgs(cert.ID, cert)...)
	return scanCertification(row)
}

func (r *certificationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM certifications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *certificationRepository) SetAttachment(ctx context.Context, id, name, mimeType string, data []byte) error {
	const query = `
		UPDATE certifications
		SET attachment_name = $2, attachment_type = $3, attachment = $4, updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, name, mimeType, data)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *certificationRepository) GetAttachment(ctx context.Context, id string) (Attachment, error) {
	const query = `
		SELECT attachment_name, attachment_type, attachment
		FROM certifications
		WHERE id = $1 AND attachment IS NOT NULL
	`
	var att Attachment
	err := r.db.QueryRowContext(ctx, query, id).Scan(&att.Name, &att.MimeType, &att.Data)
	return att, err
}

func (r *certificationRepository) DeleteAttachment(ctx context.Context, id string) error {
	const query = `
		UPDATE certifications
		SET attachment_name = NULL, attachment_type = NULL, attachment = NULL, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// ReplaceAll performs the destructive reseed: clear the register and insert
// the imported rows in a single transaction. Any failure rolls the whole
// operation back, leaving the prior data intact. Audit rows go with their
// certifications via the FK cascade.
func (r *certificationRepository) ReplaceAll(ctx context.Context, certs []models.Certification) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reseed transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM certifications`); err != nil {
		return fmt.Errorf("clear certifications: %w", err)
	}

	query := `
		INSERT INTO certifications (id, group_number, plant_name, address, scheme,
			a_registration_number, a_status, a_valid_from, a_valid_to,
			b_registration_number, b_status, b_valid_from, b_valid_to,
			model_list, standard_ref, renewal_status, alarm_note, action_note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare reseed insert: %w", err)
	}
	defer stmt.Close()

	for i, cert := range certs {
		if _, err := stmt.ExecContext(ctx, certArgs(uuid.NewString(), cert)...); err != nil {
			return fmt.Errorf("insert imported row %d: %w", i+1, err)
		}
	}

	return tx.Commit()
}

// certArgs flattens a certification into insert/update bind arguments, id first.
func certArgs(id string, cert models.Certification) []interface{} {
	return []interface{}{
		id,
		cert.GroupNumber,
		cert.PlantName,
		cert.Address,
		cert.Scheme,
		cert.SchemeA.RegistrationNumber,
		cert.SchemeA.Status,
		cert.SchemeA.ValidFrom,
		cert.SchemeA.ValidTo,
		cert.SchemeB.RegistrationNumber,
		cert.SchemeB.Status,
		cert.SchemeB.ValidFrom,
		cert.SchemeB.ValidTo,
		cert.ModelList,
		cert.StandardRef,
		cert.RenewalStatus,
		cert.AlarmNote,
		cert.ActionNote,
	}
}

func scanCertification(scanner interface {
	Scan(dest ...interface{}) error
}) (models.Certification, error) {
	var (
		cert           models.Certification
		aStatus        sql.NullString
		bStatus        sql.NullString
		aFrom, aTo     sql.NullTime
		bFrom, bTo     sql.NullTime
		attachmentName sql.NullString
	)
	if err := scanner.Scan(
		&cert.ID,
		&cert.GroupNumber,
		&cert.PlantName,
		&cert.Address,
		&cert.Scheme,
		&cert.SchemeA.RegistrationNumber,
		&aStatus,
		&aFrom,
		&aTo,
		&cert.SchemeB.RegistrationNumber,
		&bStatus,
		&bFrom,
		&bTo,
		&cert.ModelList,
		&cert.StandardRef,
		&cert.RenewalStatus,
		&cert.AlarmNote,
		&cert.ActionNote,
		&attachmentName,
		&cert.CreatedAt,
		&cert.UpdatedAt,
	); err != nil {
		return models.Certification{}, err
	}

	if aStatus.Valid {
		cert.SchemeA.Status = models.CertStatus(aStatus.String)
	}
	if bStatus.Valid {
		cert.SchemeB.Status = models.CertStatus(bStatus.String)
	}
	cert.SchemeA.ValidFrom = nullableTime(aFrom)
	cert.SchemeA.ValidTo = nullableTime(aTo)
	cert.SchemeB.ValidFrom = nullableTime(bFrom)
	cert.SchemeB.ValidTo = nullableTime(bTo)
	if attachmentName.Valid {
		val := attachmentName.String
		cert.AttachmentName = &val
	}
	return cert, nil
}

func nullableTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	val := t.Time
	return &val
}
