// Package identifier validates the 16-digit product identifier format.
package identifier

// Length is the exact number of digits in a product identifier.
const Length = 16

// Valid reports whether s is exactly 16 ASCII digits. It performs no
// normalization; trimming and digit-stripping are the caller's job.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
