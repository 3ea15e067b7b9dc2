package credential

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pinguard/internal/pin/models"
	"pinguard/pkg/platform/sentinel"
	"pinguard/pkg/platform/tx"
)

// PostgresStore persists vendor credentials in vendor_pin_credentials.
// A zero ExpiresAt is stored as NULL and means "never expires".
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, cred *models.VendorCredential) error {
	query := `
		INSERT INTO vendor_pin_credentials (vendor_id, hashed_pin, salt, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (vendor_id) DO UPDATE SET
			hashed_pin = EXCLUDED.hashed_pin,
			salt = EXCLUDED.salt,
			expires_at = EXCLUDED.expires_at,
			created_at = EXCLUDED.created_at
	`
	var expiresAt sql.NullTime
	if !cred.Cred.ExpiresAt.IsZero() {
		expiresAt = sql.NullTime{Time: cred.Cred.ExpiresAt, Valid: true}
	}
	_, err := tx.Or(ctx, s.db).ExecContext(ctx, query, cred.VendorID, cred.Cred.HashedPin, cred.Cred.Salt, expiresAt, cred.CreatedAt)
	if err != nil {
		return fmt.Errorf("save vendor credential: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByVendor(ctx context.Context, vendorID int64) (*models.VendorCredential, error) {
	query := `
		SELECT vendor_id, hashed_pin, salt, expires_at, created_at
		FROM vendor_pin_credentials
		WHERE vendor_id = $1
	`
	var (
		cred      models.VendorCredential
		expiresAt sql.NullTime
	)
	err := tx.Or(ctx, s.db).QueryRowContext(ctx, query, vendorID).Scan(
		&cred.VendorID, &cred.Cred.HashedPin, &cred.Cred.Salt, &expiresAt, &cred.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find vendor credential: %w", err)
	}
	if expiresAt.Valid {
		cred.Cred.ExpiresAt = expiresAt.Time
	}
	return &cred, nil
}
