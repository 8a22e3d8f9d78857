package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUserAlreadyExists    = errors.New("User with this phone number already exists!")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidCredentials   = errors.New("invalid username or password!")
	ErrInvalidToken         = errors.New("token is invalid or expired")
	ErrPhoneRegistered      = errors.New("This phone number is already registered, please log in!")
	ErrPhoneNotRegistered   = errors.New("User with this phone number doesn't exist!")
	ErrOTPNotSent           = errors.New("We haven't sent any code for your phone number!")
	ErrOTPExpired           = errors.New("OTP code has expired!")
	ErrOTPInvalid           = errors.New("Invalid OTP code!")
	ErrRegistrationNotFound = errors.New("Registration information has expired, please register again!")
	ErrResetNotVerified     = errors.New("Your phone number is not verified for password reset!")

	ErrArticleNotFound  = errors.New("article not found")
	ErrTeamNotFound     = errors.New("team not found")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrForbidden        = errors.New("forbidden: user does not have permission for this action")

	ErrInvalidFileFormat = errors.New("invalid file format. only .jpg, .jpeg, .png, .webp, .gif are allowed")
	ErrFileSizeExceeded  = errors.New("file size exceeds limit")
)

// ValidationError is a field level input error, answered with 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// RateLimitError is returned when a phone number asked for too many OTP codes.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

const (
	msgRequired          = "This field is required."
	msgPasswordsMismatch = "passwords must be the same!"
	msgPasswordTooShort  = "This password is too short. It must contain at least 8 characters."
	msgWrongPassword     = "Your password is wrong!"
	msgInvalidPhone      = "شماره موبایل باید 11 رقم و فقط شامل اعداد باشد."
	msgPhoneTaken        = "این شماره موبایل قبلا ثبت شده است."

	minPasswordLength = 8
)
