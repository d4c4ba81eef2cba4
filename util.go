package main

import "strings"

// maxChannelLength is the RFC 2812 channel name length limit.
const maxChannelLength = 50

// maxTopicLength bounds topic length well under the 512 byte line limit.
const maxTopicLength = 300

// canonicalizeNick converts the given nick to its canonical representation
// used for uniqueness and lookup.
//
// Deviation from the reference implementation: nicknames there compare by
// raw lower-cased string. RFC 2812 requires case-insensitive comparison and
// this rewrite canonicalizes by upper-casing, matching the open question
// resolution in SPEC_FULL.md section 9. The caller is responsible for
// retaining the last-supplied display casing separately.
//
// Note: we don't check validity or strip whitespace here.
func canonicalizeNick(n string) string {
	return strings.ToUpper(n)
}

// canonicalizeChannel converts the given channel name to its canonical
// representation used for uniqueness and lookup.
func canonicalizeChannel(c string) string {
	return strings.ToUpper(c)
}

// isValidNick checks if a nickname is valid per a relaxed reading of RFC
// 2812's nickname grammar: letter-or-special first character, then letters,
// digits, specials, or '-'.
func isValidNick(maxLen int, n string) bool {
	if len(n) == 0 || len(n) > maxLen {
		return false
	}

	for i, char := range n {
		if isNickLetter(char) || isNickSpecial(char) {
			continue
		}

		if char >= '0' && char <= '9' {
			// No digits in the first position.
			if i == 0 {
				return false
			}
			continue
		}

		if char == '-' && i > 0 {
			continue
		}

		return false
	}

	return true
}

func isNickLetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// isNickSpecial covers the RFC 2812 "special" class used in nicknames:
// []\`_^{|}
func isNickSpecial(c rune) bool {
	switch c {
	case '[', ']', '\\', '`', '_', '^', '{', '|', '}':
		return true
	}
	return false
}

// isValidUser checks if a username (USER command) is valid. RFC 2812
// permits almost any non-space, non-NUL, non-CR/LF octet; we accept the
// practical subset actually seen on the wire.
func isValidUser(maxLen int, u string) bool {
	if len(u) == 0 || len(u) > maxLen {
		return false
	}

	for _, char := range u {
		if char == ' ' || char == '\x00' || char == '\r' || char == '\n' || char == '@' {
			return false
		}
	}

	return true
}

// isValidChannel checks a channel name for validity. Only '#' channels are
// supported (no '&', '+', '!' prefixes).
//
// You should canonicalize it before using this function.
func isValidChannel(c string) bool {
	if len(c) < 2 || len(c) > maxChannelLength {
		return false
	}

	if c[0] != '#' {
		return false
	}

	for _, char := range c[1:] {
		if char == ' ' || char == ',' || char == '\x07' || char == '\x00' ||
			char == '\r' || char == '\n' {
			return false
		}
	}

	return true
}
