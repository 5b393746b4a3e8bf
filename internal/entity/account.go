package entity

import "strings"

// SameAccount compares two hex account identifiers ignoring checksum casing.
func SameAccount(a, b string) bool {
	return a != "" && strings.EqualFold(a, b)
}
