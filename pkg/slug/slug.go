// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

// Package slug derives ASCII URL slugs from arbitrary Unicode display names.
//
// # Usage
//
// Slugs are the stable, human-readable identifiers for tags and tenants
// (e.g., "Photography" -> "photography"). The derivation is deterministic:
// the same name always produces the same slug, which is what makes the
// per-scope uniqueness constraint enforceable at the database level.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// nonAlphanumeric matches any sequence of characters outside [a-z0-9-].
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9-]+`)
	// multiHyphen collapses runs of hyphens into a single one.
	multiHyphen = regexp.MustCompile(`-{2,}`)
)

// From converts an arbitrary Unicode string into a URL-safe ASCII slug.
//
// # Pipeline
//
// 1. NFD normalization (decomposes accented characters: é → e + mark).
// 2. Strips combining marks.
// 3. Lowercases.
// 4. Maps every non-letter/digit rune to a hyphen.
// 5. Collapses hyphen runs and trims leading/trailing hyphens.
func From(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMark))
	result, _, _ := transform.String(t, s)

	result = strings.ToLower(result)

	result = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '-'
	}, result)

	result = nonAlphanumeric.ReplaceAllString(result, "-")
	result = multiHyphen.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	return result
}

// isMark reports whether r is a Unicode non-spacing mark (accents).
func isMark(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
