package auth

import (
	"encoding/base64"
	"fmt"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
)

// TOTPEnrollment is what a user needs to add the account to an
// authenticator app.
type TOTPEnrollment struct {
	Secret string
	URL    string
	QRCode string // base64-encoded PNG
}

// GenerateTOTP creates a new TOTP key for the account.
func GenerateTOTP(issuer, email string) (*TOTPEnrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: email,
	})
	if err != nil {
		return nil, fmt.Errorf("totp generate: %w", err)
	}

	// Generate QR code as base64-encoded PNG.
	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("qr code: %w", err)
	}

	return &TOTPEnrollment{
		Secret: key.Secret(),
		URL:    key.URL(),
		QRCode: base64.StdEncoding.EncodeToString(qrPNG),
	}, nil
}

// ValidateTOTP checks a six-digit code against secret for the current period.
func ValidateTOTP(code, secret string) bool {
	return totp.Validate(code, secret)
}
