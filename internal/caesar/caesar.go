// SPDX-License-Identifier: MPL-2.0

// Package caesar implements the Caesar cipher over ASCII letters.
package caesar

import "strings"

// Alphabet is the number of letters rotated.
const Alphabet = 26

// Rotate shifts every ASCII letter of s by k positions, keeping its case.
// Other runes pass through unchanged. k may be negative or exceed 26.
func Rotate(s string, k int) string {
	k %= Alphabet
	if k < 0 {
		k += Alphabet
	}
	if k == 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return 'a' + (r-'a'+rune(k))%Alphabet
		case r >= 'A' && r <= 'Z':
			return 'A' + (r-'A'+rune(k))%Alphabet
		default:
			return r
		}
	}, s)
}

// All returns the 26 rotations of s, offset 0 first.
func All(s string) []string {
	out := make([]string, Alphabet)
	for k := range Alphabet {
		out[k] = Rotate(s, k)
	}
	return out
}
