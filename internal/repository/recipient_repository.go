package repository

import (
	"context"
	"database/sql"

	"github.com/certwatch/certwatch-api/internal/models"
	"github.com/google/uuid"
)

type RecipientRepository interface {
	Create(ctx context.Context, name, email, role string, active bool) (models.Recipient, error)
	Get(ctx context.Context, id string) (models.Recipient, error)
	List(ctx context.Context) ([]models.Recipient, error)
	ListActive(ctx context.Context) ([]models.Recipient, error)
	Update(ctx context.Context, rec models.Recipient) (models.Recipient, error)
	Delete(ctx context.Context, id string) error
}

type recipientRepository struct {
	db *sql.DB
}

func NewRecipientRepository(db *sql.DB) RecipientRepository {
	return &recipientRepository{db: db}
}

const recipientColumns = `id, name, email, role, active, created_at, updated_at`

func (r *recipientRepository) Create(ctx context.Context, name, email, role string, active bool) (models.Recipient, error) {
	query := `
		INSERT INTO recipients (id, name, email, role, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + recipientColumns
	row := r.db.QueryRowContext(ctx, query, uuid.NewString(), name, email, role, active)
	return scanRecipient(row)
}

func (r *recipientRepository) Get(ctx context.Context, id string) (models.Recipient, error) {
	query := `SELECT ` + recipientColumns + ` FROM recipients WHERE id = $1`
	return scanRecipient(r.db.QueryRowContext(ctx, query, id))
}

func (r *recipientRepository) List(ctx context.Context) ([]models.Recipient, error) {
	query := `SELECT ` + recipientColumns + ` FROM recipients ORDER BY name`
	return r.queryRecipients(ctx, query)
}

func (r *recipientRepository) ListActive(ctx context.Context) ([]models.Recipient, error) {
	query := `SELECT ` + recipientColumns + ` FROM recipients WHERE active = TRUE ORDER BY name`
	return r.queryRecipients(ctx, query)
}

func (r *recipientRepository) Update(ctx context.Context, rec models.Recipient) (models.Recipient, error) {
	query := `
		UPDATE recipients
		SET name = $2, email = $3, role = $4, active = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + recipientColumns
	row := r.db.QueryRowContext(ctx, query, rec.ID, rec.Name, rec.Email, rec.Role, rec.Active)
	return scanRecipient(row)
}

func (r *recipientRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recipients WHERE id = $1`, id)
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

func (r *recipientRepository) queryRecipients(ctx context.Context, query string) ([]models.Recipient, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipients []models.Recipient
	for rows.Next() {
		rec, err := scanRecipient(rows)
		if err != nil {
			return nil, err
		}
		recipients = append(recipients, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return recipients, nil
}

func scanRecipient(scanner interface {
	Scan(dest ...interface{}) error
}) (models.Recipient, error) {
	var rec models.Recipient
	err := scanner.Scan(&rec.ID, &rec.Name, &rec.Email, &rec.Role, &rec.Active, &rec.CreatedAt, &rec.UpdatedAt)
	return rec, err
}
