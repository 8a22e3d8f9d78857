package service

import (
	"context"
	"log/slog"
)

// Sender delivers OTP codes to a phone number.
type Sender interface {
	SendOTP(ctx context.Context, phone, code string) error
}

// LogSender writes the code to the log instead of sending an SMS.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) SendOTP(ctx context.Context, phone, code string) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "otp code issued", slog.String("phone_number", phone), slog.String("code", code))
	return nil
}
