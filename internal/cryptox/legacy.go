package cryptox

import (
	"crypto/subtle"
	"strconv"
	"unicode/utf16"
)

// Legacy reproduces the 32-bit string hash older clients stored as the
// "password hash": h = 31*h + c over UTF-16 code units with int32
// wraparound, written in decimal. It offers no protection and exists only
// so registries written by those clients stay readable.
type Legacy struct{}

func (Legacy) Scheme() string { return SchemeLegacy }

func (Legacy) Hash(password string) (string, error) {
	return legacyHash(password), nil
}

func (Legacy) Verify(password, encoded string) (bool, error) {
	return subtle.ConstantTimeCompare([]byte(legacyHash(password)), []byte(encoded)) == 1, nil
}

func legacyHash(s string) string {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = 31*h + int32(c)
	}
	return strconv.FormatInt(int64(h), 10)
}
