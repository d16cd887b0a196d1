package id

import (
	"crypto/rand"
	"encoding/hex"
)

// BookIDBytes is the number of random bytes behind a book ID.
const BookIDBytes = 4

// BookIDLength is the length of an encoded book ID.
const BookIDLength = BookIDBytes * 2

// Hex returns n random bytes encoded as a lowercase hex string of length 2n.
func Hex(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Book generates a new book ID (8 hex characters).
func Book() string {
	return Hex(BookIDBytes)
}

// IsBookID reports whether s has the shape of a generated book ID.
// IDs loaded from older data files may not; they are still accepted everywhere.
func IsBookID(s string) bool {
	if len(s) != BookIDLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
