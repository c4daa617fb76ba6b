package util

import (
	"crypto/rand"
	"math/big"
	"strings"
	"unicode"
)

const maxUsernameLength = 30

func RandomDigits(digits int) (string, error) {
	if digits <= 0 {
		digits = 4
	}
	var builder strings.Builder
	builder.Grow(digits)
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		builder.WriteByte(byte('0' + n.Int64()))
	}
	return builder.String(), nil
}

// UsernameFromEmail derives a username candidate from the local part of an
// email address, keeping letters, digits, '_' and '.'.
func UsernameFromEmail(email string) string {
	local := email
	if at := strings.IndexByte(email, '@'); at >= 0 {
		local = email[:at]
	}
	var builder strings.Builder
	for _, r := range strings.ToLower(local) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.') {
			builder.WriteRune(r)
		}
	}
	name := builder.String()
	if len(name) > maxUsernameLength-5 {
		name = name[:maxUsernameLength-5]
	}
	if name == "" {
		name = "traveler"
	}
	return name
}
