package model

import "time"

// OtpCode is the hashed one-time code issued to a phone number
type OtpCode struct {
	ID          int       `json:"id"`
	PhoneNumber string    `json:"phone_number"`
	CodeHash    string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExpiresAt returns the instant the code stops being valid.
func (o *OtpCode) ExpiresAt(ttl time.Duration) time.Time {
	return o.CreatedAt.Add(ttl)
}

// Remaining is the time left before expiry, never negative.
func (o *OtpCode) Remaining(now time.Time, ttl time.Duration) time.Duration {
	d := o.ExpiresAt(ttl).Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// IsExpired reports whether the code is no longer valid at now.
func (o *OtpCode) IsExpired(now time.Time, ttl time.Duration) bool {
	return !now.Before(o.ExpiresAt(ttl))
}

type SendOTPRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
}

type VerifyOTPRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	Code        string `json:"code" binding:"required,len=5,numeric"`
}

// OTPSendResult is returned after an OTP send request.
type OTPSendResult struct {
	Message    string `json:"message"`
	ExpireTime int    `json:"expire_time"`
}

type RegisterRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Password1   string `json:"password1" binding:"required"`
}

type LoginRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Password1   string `json:"password1" binding:"required"`
}

type ResetPasswordRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Password1   string `json:"password1" binding:"required"`
}

type AdminChangePasswordRequest struct {
	NewPassword    string `json:"new_password" binding:"required"`
	RepeatPassword string `json:"repeat_password" binding:"required"`
}

type DeactivateRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// TokenPair is issued on login.
type TokenPair struct {
	Access      string `json:"access"`
	Refresh     string `json:"refresh"`
	PhoneNumber string `json:"phone_number"`
}
