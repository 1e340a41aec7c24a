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

// OTPRepository is the OTP ledger. Issuance is DeleteByEmail followed by
// Insert as two separate statements; callers rely on that ordering to keep at
// most one live code per email.
type OTPRepository struct {
	pool *pgxpool.Pool
}

func NewOTPRepository(db *database.DB) *OTPRepository {
	return &OTPRepository{pool: db.Pool}
}

func scanOTPRow(scanner rowScanner) (*models.OTPEntry, error) {
	var entry models.OTPEntry

	if err := scanner.Scan(&entry.ID, &entry.Email, &entry.Code, &entry.ExpiresAt, &entry.CreatedAt); err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &entry, nil
}

// DeleteByEmail removes every code issued to email
func (r *OTPRepository) DeleteByEmail(ctx context.Context, email string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM otp_codes WHERE email = $1`, email); err != nil {
		return fmt.Errorf("failed to delete otp codes: %w", err)
	}
	return nil
}

func (r *OTPRepository) Insert(ctx context.Context, email, code string, expiresAt time.Time) (*models.OTPEntry, error) {
	query := `
		INSERT INTO otp_codes (id, email, code, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, code, expires_at, created_at
	`

	entry, err := scanOTPRow(r.pool.QueryRow(ctx, query, uuid.New().String(), email, code, expiresAt))
	if err != nil {
		return nil, fmt.Errorf("failed to insert otp code: %w", err)
	}

	return entry, nil
}

// FindValid returns the live code matching email and code. A wrong code and
// an expired code both yield models.ErrNotFound.
func (r *OTPRepository) FindValid(ctx context.Context, email, code string) (*models.OTPEntry, error) {
	query := `
		SELECT id, email, code, expires_at, created_at
		FROM otp_codes
		WHERE email = $1 AND code = $2 AND expires_at > NOW()
		LIMIT 1
	`

	return scanOTPRow(r.pool.QueryRow(ctx, query, email, code))
}
