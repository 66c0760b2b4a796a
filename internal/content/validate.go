package content

import (
	"strings"
	"unicode/utf8"

	"blogql/internal/apperr"
)

// Validation limits for posts, comments and categories.
const (
	minTitleLen          = 3
	maxTitleLen          = 50
	minPostContentLen    = 10
	maxPostContentLen    = 5000
	minCommentContentLen = 3
	maxCommentContentLen = 2000
	maxCategoryNameLen   = 50
)

// checkLength trims v and checks its rune count against [min, max].
func checkLength(field, v string, min, max int) (string, error) {
	v = strings.TrimSpace(v)
	n := utf8.RuneCountInString(v)
	if n == 0 {
		return "", apperr.Validation("%s is required", field)
	}
	if n < min {
		return "", apperr.Validation("%s must be at least %d characters", field, min)
	}
	if n > max {
		return "", apperr.Validation("%s must be at most %d characters", field, max)
	}
	return v, nil
}

func validateTitle(v string) (string, error) {
	return checkLength("title", v, minTitleLen, maxTitleLen)
}

func validatePostContent(v string) (string, error) {
	return checkLength("content", v, minPostContentLen, maxPostContentLen)
}

func validateCommentContent(v string) (string, error) {
	return checkLength("content", v, minCommentContentLen, maxCommentContentLen)
}

func validateCategoryName(v string) (string, error) {
	return checkLength("name", v, 1, maxCategoryNameLen)
}
