package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"tam_website/internal/model"
	"tam_website/internal/repository"
	"tam_website/internal/utils"

	"github.com/google/uuid"
)

func validatePhone(field, phone string) error {
	if !utils.IsValidPhoneNumber(phone) {
		return newValidationError(field, msgInvalidPhone)
	}
	return nil
}

// validatePasswords checks the pair matches and the first one is long enough.
func validatePasswords(password, repeat string) error {
	if password != repeat {
		return newValidationError("password1", msgPasswordsMismatch)
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return newValidationError("password", msgPasswordTooShort)
	}
	return nil
}

type slugChecker func(ctx context.Context, slug string, excludeID int64) (bool, error)

const maxSlugAttempts = 100

// uniqueSlug slugifies source and appends -2, -3, ... until exists reports the slug free.
func uniqueSlug(ctx context.Context, source string, excludeID int64, exists slugChecker) (string, error) {
	base := utils.SlugOrUUID(source)
	candidate := base
	for i := 2; i <= maxSlugAttempts; i++ {
		taken, err := exists(ctx, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return base + "-" + uuid.NewString()[:8], nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func valueOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}

// duplicateNameError turns a unique violation that raced past applyNames into a field error.
// A slug clash is reported on name_en, which the slug is derived from.
func duplicateNameError(err error, taken map[string]string) error {
	var dup *repository.DuplicateTranslationError
	if errors.As(err, &dup) {
		return newValidationError("name_"+dup.Lang, taken[dup.Lang])
	}
	if errors.Is(err, repository.ErrDuplicate) {
		return newValidationError("name_"+model.LangEn, taken[model.LangEn])
	}
	return nil
}
