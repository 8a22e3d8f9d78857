package repository

import (
	"context"
	"errors"
	"fmt"

	"tam_website/internal/model"

	"github.com/jackc/pgx/v5"
)

// OtpRepository stores at most one OTP code per phone number
type OtpRepository interface {
	FindByPhone(ctx context.Context, phone string) (*model.OtpCode, error)
	Create(ctx context.Context, otp *model.OtpCode) error
	Refresh(ctx context.Context, otp *model.OtpCode) error
	DeleteByPhone(ctx context.Context, phone string) error
}

type otpRepository struct {
	db DB
}

func NewOtpRepository(db DB) OtpRepository {
	return &otpRepository{db: db}
}

func (r *otpRepository) FindByPhone(ctx context.Context, phone string) (*model.OtpCode, error) {
	otp := &model.OtpCode{}
	sql := `SELECT id, phone_number, code_hash, created_at FROM otp_codes WHERE phone_number = $1`
	err := r.db.QueryRow(ctx, sql, phone).Scan(&otp.ID, &otp.PhoneNumber, &otp.CodeHash, &otp.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find otp code: %w", err)
	}
	return otp, nil
}

func (r *otpRepository) Create(ctx context.Context, otp *model.OtpCode) error {
	sql := `INSERT INTO otp_codes (phone_number, code_hash) VALUES ($1, $2) RETURNING id, created_at`
	if err := r.db.QueryRow(ctx, sql, otp.PhoneNumber, otp.CodeHash).Scan(&otp.ID, &otp.CreatedAt); err != nil {
		return fmt.Errorf("failed to create otp code: %w", err)
	}
	return nil
}

// Refresh stores a new code hash and restarts the validity window.
func (r *otpRepository) Refresh(ctx context.Context, otp *model.OtpCode) error {
	sql := `UPDATE otp_codes SET code_hash = $1, created_at = NOW() WHERE id = $2 RETURNING created_at`
	if err := r.db.QueryRow(ctx, sql, otp.CodeHash, otp.ID).Scan(&otp.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to refresh otp code: %w", err)
	}
	return nil
}

func (r *otpRepository) DeleteByPhone(ctx context.Context, phone string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM otp_codes WHERE phone_number = $1`, phone); err != nil {
		return fmt.Errorf("failed to delete otp code: %w", err)
	}
	return nil
}
