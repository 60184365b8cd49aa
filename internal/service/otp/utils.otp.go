package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RandomCode returns a zero-padded numeric code of the given width.
func RandomCode(digits int) string {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil) // 10^digits
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("%0*d", digits, n.Int64())
}

// FormatPurpose turns "audio_upload" into "Audio Upload" for audit rows and
// user-facing messages.
func FormatPurpose(purpose string) string {
	p := strings.ReplaceAll(purpose, "_", " ")
	return cases.Title(language.English).String(p)
}
