package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kalindhi/kalindhi-api/internal/database"
	"github.com/kalindhi/kalindhi-api/internal/models"
)

const adminColumns = `id, name, email, phone, password_hash, is_approved, created_at`

// AdminRepository handles admin account data access
type AdminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(db *database.DB) *AdminRepository {
	return &AdminRepository{pool: db.Pool}
}

func scanAdminRow(scanner rowScanner) (*models.Admin, error) {
	var admin models.Admin

	err := scanner.Scan(
		&admin.ID, &admin.Name, &admin.Email, &admin.Phone,
		&admin.PasswordHash, &admin.IsApproved, &admin.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &admin, nil
}

func (r *AdminRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	return scanAdminRow(r.pool.QueryRow(ctx, `SELECT `+adminColumns+` FROM admins WHERE id = $1`, id))
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return scanAdminRow(r.pool.QueryRow(ctx, `SELECT `+adminColumns+` FROM admins WHERE email = $1`, email))
}

func (r *AdminRepository) List(ctx context.Context) ([]*models.Admin, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+adminColumns+` FROM admins ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query admins: %w", err)
	}
	defer rows.Close()

	admins := make([]*models.Admin, 0)
	for rows.Next() {
		admin, err := scanAdminRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan admin: %w", err)
		}
		admins = append(admins, admin)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating admin rows: %w", err)
	}

	return admins, nil
}

func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) (*models.Admin, error) {
	admin.ID = uuid.New().String()
	admin.CreatedAt = time.Now()

	query := `
		INSERT INTO admins (id, name, email, phone, password_hash, is_approved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + adminColumns

	return scanAdminRow(r.pool.QueryRow(ctx, query,
		admin.ID, admin.Name, admin.Email, admin.Phone,
		admin.PasswordHash, admin.IsApproved, admin.CreatedAt,
	))
}

// SetApproved flips the approval flag
func (r *AdminRepository) SetApproved(ctx context.Context, id string, approved bool) (*models.Admin, error) {
	query := `UPDATE admins SET is_approved = $1 WHERE id = $2 RETURNING ` + adminColumns
	return scanAdminRow(r.pool.QueryRow(ctx, query, approved, id))
}

func (r *AdminRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM admins WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
