// Package utils
package utils

import (
	"regexp"
)

var addressRe = regexp.MustCompile("^0x[0-9a-fA-F]{40}$")

// IsValidAddress reports whether v is a 0x-prefixed 20-byte hex address.
// Checksum casing is not enforced.
func IsValidAddress(v string) bool {
	return addressRe.MatchString(v)
}
