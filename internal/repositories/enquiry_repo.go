package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kalindhi/kalindhi-api/internal/database"
	"github.com/kalindhi/kalindhi-api/internal/models"
)

const enquiryColumns = `id, name, email, message, is_read, is_archived, created_at`

type EnquiryRepository struct {
	pool *pgxpool.Pool
}

func NewEnquiryRepository(db *database.DB) *EnquiryRepository {
	return &EnquiryRepository{pool: db.Pool}
}

func scanEnquiryRow(scanner rowScanner) (*models.Enquiry, error) {
	var e models.Enquiry
	if err := scanner.Scan(&e.ID, &e.Name, &e.Email, &e.Message, &e.IsRead, &e.IsArchived, &e.CreatedAt); err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &e, nil
}

func (r *EnquiryRepository) Create(ctx context.Context, name, email, message string) (*models.Enquiry, error) {
	query := `
		INSERT INTO enquiries (id, name, email, message)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + enquiryColumns

	return scanEnquiryRow(r.pool.QueryRow(ctx, query, uuid.New().String(), name, email, message))
}

func (r *EnquiryRepository) List(ctx context.Context) ([]*models.Enquiry, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+enquiryColumns+` FROM enquiries ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query enquiries: %w", err)
	}
	defer rows.Close()

	enquiries := make([]*models.Enquiry, 0)
	for rows.Next() {
		e, err := scanEnquiryRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan enquiry: %w", err)
		}
		enquiries = append(enquiries, e)
	}

	return enquiries, rows.Err()
}

func (r *EnquiryRepository) SetRead(ctx context.Context, id string, read bool) error {
	return r.execOne(ctx, `UPDATE enquiries SET is_read = $1 WHERE id = $2`, read, id)
}

func (r *EnquiryRepository) SetArchived(ctx context.Context, id string, archived bool) error {
	return r.execOne(ctx, `UPDATE enquiries SET is_archived = $1 WHERE id = $2`, archived, id)
}

func (r *EnquiryRepository) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, `DELETE FROM enquiries WHERE id = $1`, id)
}

// execOne runs a statement that must touch exactly one row
func (r *EnquiryRepository) execOne(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
