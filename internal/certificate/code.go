package certificate

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// CodeLength is the number of characters in a verification code.
const CodeLength = 10

const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewCode returns a random uppercase base36 verification code.
func NewCode() (string, error) {
	var b strings.Builder
	b.Grow(CodeLength)
	max := big.NewInt(int64(len(codeAlphabet)))
	for range CodeLength {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate certificate code: %w", err)
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// ValidCode reports whether code has the shape produced by NewCode.
// Lowercase input is accepted.
func ValidCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for _, c := range strings.ToUpper(code) {
		if !strings.ContainsRune(codeAlphabet, c) {
			return false
		}
	}
	return true
}

// Registry returns the registro, livro and folha numbers printed on the
// back of the certificate. They are slices of the code.
func Registry(code string) (registro, livro, folha string) {
	registro, livro, folha = "0000", "00", "00"
	if len(code) >= 4 {
		registro = code[0:4]
	}
	if len(code) >= 6 {
		livro = code[4:6]
	}
	if len(code) >= 8 {
		folha = code[6:8]
	}
	return registro, livro, folha
}
