package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"tam_website/internal/cache"
	"tam_website/internal/model"
	"tam_website/internal/repository"
	"tam_website/internal/utils"
)

const (
	msgOTPSent        = "OTP code has been sent to your phone number!"
	msgOTPAlreadySent = "OTP code has already been sent to your phone number!"
)

// AuthService provides authentication related services
type AuthService interface {
	SendOTP(ctx context.Context, phone string, resetPassword bool) (*model.OTPSendResult, error)
	VerifyOTP(ctx context.Context, phone, code string, resetPassword bool) (*model.User, error)
	Register(ctx context.Context, req model.RegisterRequest) error
	Login(ctx context.Context, phone, password string) (*model.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	ChangePassword(ctx context.Context, userID int, req model.ChangePasswordRequest) (*model.User, error)
	ResetPassword(ctx context.Context, req model.ResetPasswordRequest) error
	GetUser(ctx context.Context, userID int) (*model.User, error)
	UpdateProfile(ctx context.Context, userID int, req model.UpdateProfileRequest) (*model.User, error)
}

// AuthDeps groups the collaborators of the auth service.
type AuthDeps struct {
	Users             repository.UserRepository
	OTPs              repository.OtpRepository
	Registrations     *cache.RegistrationStore
	ResetTickets      *cache.ResetTickets
	Limiter           *cache.SendLimiter
	Sender            Sender
	JWT               *utils.JWTUtil
	OTPTTL            time.Duration
	InitialAdminPhone string
	Logger            *slog.Logger
}

type authService struct {
	AuthDeps
	now func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(deps AuthDeps) AuthService {
	if deps.OTPTTL <= 0 {
		deps.OTPTTL = 2 * time.Minute
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Sender == nil {
		deps.Sender = LogSender{Logger: deps.Logger}
	}
	return &authService{AuthDeps: deps, now: time.Now}
}

func (s *authService) expireSeconds(otp *model.OtpCode) int {
	return int(math.Ceil(otp.Remaining(s.now(), s.OTPTTL).Seconds()))
}

// SendOTP issues a code for registration, or for a password reset when resetPassword is set.
// A code that is still valid is not replaced.
func (s *authService) SendOTP(ctx context.Context, phone string, resetPassword bool) (*model.OTPSendResult, error) {
	if err := validatePhone("phone_number", phone); err != nil {
		return nil, err
	}

	user, err := s.Users.FindByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if resetPassword && user == nil {
		return nil, ErrPhoneNotRegistered
	}
	if !resetPassword && user != nil {
		return nil, ErrPhoneRegistered
	}

	allowed, retryAfter, err := s.Limiter.Allow(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("failed to check otp send limit: %w", err)
	}
	if !allowed {
		return nil, &RateLimitError{RetryAfter: retryAfter}
	}

	otp, err := s.OTPs.FindByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}

	if otp != nil && !otp.IsExpired(s.now(), s.OTPTTL) {
		return &model.OTPSendResult{Message: msgOTPAlreadySent, ExpireTime: s.expireSeconds(otp)}, nil
	}

	code, err := utils.GenerateOTPCode()
	if err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(code)
	if err != nil {
		return nil, fmt.Errorf("failed to hash otp code: %w", err)
	}

	message := msgOTPSent
	if otp == nil {
		otp = &model.OtpCode{PhoneNumber: phone, CodeHash: hash}
		if err := s.OTPs.Create(ctx, otp); err != nil {
			return nil, err
		}
	} else {
		otp.CodeHash = hash
		if err := s.OTPs.Refresh(ctx, otp); err != nil {
			return nil, err
		}
		message = msgOTPAlreadySent
	}

	if err := s.Sender.SendOTP(ctx, phone, code); err != nil {
		return nil, fmt.Errorf("failed to send otp code: %w", err)
	}
	return &model.OTPSendResult{Message: message, ExpireTime: s.expireSeconds(otp)}, nil
}

func (s *authService) checkOTP(ctx context.Context, phone, code string) error {
	otp, err := s.OTPs.FindByPhone(ctx, phone)
	if err != nil {
		return err
	}
	if otp == nil {
		return ErrOTPNotSent
	}
	if otp.IsExpired(s.now(), s.OTPTTL) {
		return ErrOTPExpired
	}
	if !utils.CheckPasswordHash(code, otp.CodeHash) {
		return ErrOTPInvalid
	}
	return nil
}

// VerifyOTP checks the code. In register mode it creates the pending user and returns it;
// in reset mode it issues a reset ticket and returns nil.
func (s *authService) VerifyOTP(ctx context.Context, phone, code string, resetPassword bool) (*model.User, error) {
	if err := s.checkOTP(ctx, phone, code); err != nil {
		return nil, err
	}

	if resetPassword {
		if err := s.ResetTickets.Issue(ctx, phone); err != nil {
			return nil, err
		}
		if err := s.OTPs.DeleteByPhone(ctx, phone); err != nil {
			return nil, err
		}
		return nil, nil
	}

	passwordHash, err := s.Registrations.Get(ctx, phone)
	if err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, ErrRegistrationNotFound
	}

	user := &model.User{
		PhoneNumber:  phone,
		PasswordHash: passwordHash,
		IsActive:     true,
	}
	if s.InitialAdminPhone != "" && phone == s.InitialAdminPhone {
		user.IsSuperuser = true
		user.IsStaff = true
		s.Logger.Info("registering initial admin", slog.String("phone_number", phone))
	}

	if err := s.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user in repository: %w", err)
	}

	if err := s.OTPs.DeleteByPhone(ctx, phone); err != nil {
		s.Logger.Warn("failed to delete used otp code", slog.String("phone_number", phone), slog.String("error", err.Error()))
	}
	if err := s.Registrations.Delete(ctx, phone); err != nil {
		s.Logger.Warn("failed to clear pending registration", slog.String("phone_number", phone), slog.String("error", err.Error()))
	}
	return user, nil
}

// Register validates the request and keeps it until the phone number is verified.
func (s *authService) Register(ctx context.Context, req model.RegisterRequest) error {
	if err := validatePhone("phone_number", req.PhoneNumber); err != nil {
		return err
	}
	if err := validatePasswords(req.Password, req.Password1); err != nil {
		return err
	}

	existingUser, err := s.Users.FindByPhone(ctx, req.PhoneNumber)
	if err != nil {
		return fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return ErrUserAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.Registrations.Save(ctx, req.PhoneNumber, hashedPassword)
}

// Login authenticates a user and returns an access and refresh token
func (s *authService) Login(ctx context.Context, phone, password string) (*model.TokenPair, error) {
	user, err := s.Users.FindByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("error finding user by phone: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	access, err := s.JWT.GenerateToken(user.ID, user.Roles())
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	refresh, err := s.JWT.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	if err := s.Users.UpdateLastLogin(ctx, user.ID, s.now()); err != nil {
		s.Logger.Warn("failed to update last login", slog.Int("user_id", user.ID), slog.String("error", err.Error()))
	}
	return &model.TokenPair{Access: access, Refresh: refresh, PhoneNumber: user.PhoneNumber}, nil
}

// Refresh issues a new access token with roles reloaded from the database.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.JWT.ValidateToken(refreshToken, utils.TokenTypeRefresh)
	if err != nil {
		return "", ErrInvalidToken
	}
	user, err := s.Users.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", err
	}
	if user == nil || !user.IsActive {
		return "", ErrInvalidToken
	}
	access, err := s.JWT.GenerateToken(user.ID, user.Roles())
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return access, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID int, req model.ChangePasswordRequest) (*model.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !utils.CheckPasswordHash(req.OldPassword, user.PasswordHash) {
		return nil, newValidationError("old_password", msgWrongPassword)
	}
	if err := validatePasswords(req.Password, req.Password1); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.Users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return nil, err
	}
	return user, nil
}

// ResetPassword sets a new password for a phone number that passed OTP verification.
func (s *authService) ResetPassword(ctx context.Context, req model.ResetPasswordRequest) error {
	if err := validatePasswords(req.Password, req.Password1); err != nil {
		return err
	}

	user, err := s.Users.FindByPhone(ctx, req.PhoneNumber)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrPhoneNotRegistered
	}

	ok, err := s.ResetTickets.Consume(ctx, req.PhoneNumber)
	if err != nil {
		return err
	}
	if !ok {
		return ErrResetNotVerified
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.Users.UpdatePassword(ctx, user.ID, hash)
}

func (s *authService) GetUser(ctx context.Context, userID int) (*model.User, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID int, req model.UpdateProfileRequest) (*model.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Profile == nil {
		user.Profile = &model.Profile{}
	}
	if req.FirstName != nil {
		user.Profile.FirstName = trimmed(req.FirstName)
	}
	if req.LastName != nil {
		user.Profile.LastName = trimmed(req.LastName)
	}
	if err := s.Users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
