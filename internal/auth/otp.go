package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"

	"github.com/kalindhi/kalindhi-api/internal/models"
)

// GenerateOTPCode returns a uniformly random six-digit code in
// [models.OTPCodeMin, models.OTPCodeMax], drawn from crypto/rand.
func GenerateOTPCode() (string, error) {
	span := big.NewInt(models.OTPCodeMax - models.OTPCodeMin + 1)

	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp code: %w", err)
	}

	return strconv.FormatInt(n.Int64()+models.OTPCodeMin, 10), nil
}
