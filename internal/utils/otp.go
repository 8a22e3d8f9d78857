package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	otpMin = 10000
	otpMax = 99999
)

// GenerateOTPCode returns a random 5-digit code
func GenerateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp code: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+otpMin), nil
}
