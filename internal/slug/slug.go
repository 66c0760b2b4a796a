// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings.
package slug

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dgryski/go-farm"
)

// MaxLen is the longest slug Generate returns, in runes.
const MaxLen = 60

// Generate creates a URL-friendly slug from the given string. Letters and
// digits of any script are kept and lower-cased; runs of whitespace,
// hyphens and underscores become one hyphen; other punctuation is dropped.
// Example: "Hello, World! 2026" → "hello-world-2026"
func Generate(s string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_':
			pendingHyphen = true
		}
	}
	return truncate(b.String(), MaxLen)
}

// WithFallback is Generate, except that input with no letters or digits
// yields prefix plus a short fingerprint of s, so distinct inputs still
// get distinct, non-empty slugs.
func WithFallback(s, prefix string) string {
	if out := Generate(s); out != "" {
		return out
	}
	return fmt.Sprintf("%s-%08x", prefix, farm.Fingerprint32([]byte(s)))
}

// WithSuffix returns WithFallback(s, prefix) followed by a fingerprint of s,
// still within MaxLen. Inputs that slug alike ("C++" and "C#", "Tech" and
// "tech") get different suffixed slugs.
func WithSuffix(s, prefix string) string {
	base := truncate(WithFallback(s, prefix), MaxLen-9)
	return fmt.Sprintf("%s-%08x", base, farm.Fingerprint32([]byte(s)))
}

// truncate cuts s to max runes without leaving a trailing hyphen.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimRight(string(r[:max]), "-")
}
