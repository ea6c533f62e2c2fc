package util

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/gosimple/slug"
	"github.com/makkenzo/content-cms-api/internal/ierr"
)

// MaxSlugAttempts bounds the suffix search in AllocateSlug.
const MaxSlugAttempts = 1000

// SlugExistsFunc reports whether a slug is already in use anywhere in the system.
type SlugExistsFunc func(ctx context.Context, candidate string) (bool, error)

// NormalizeSlug lowercases, strips non-word characters, turns whitespace runs into single
// hyphens and collapses repeated hyphens.
func NormalizeSlug(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', r == '-':
			return r
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, s)
	return slug.Make(cleaned)
}

// AllocateSlug returns the normalized base when free, otherwise base-1, base-2, ... The search
// gives up with ierr.ErrSlugExhausted after MaxSlugAttempts lookups, the base included.
func AllocateSlug(ctx context.Context, desired string, exists SlugExistsFunc) (string, error) {
	base := NormalizeSlug(desired)
	if base == "" {
		return "", fmt.Errorf("%w: slug must contain at least one letter or digit", ierr.ErrValidation)
	}

	candidate := base
	for n := 1; ; n++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("checking slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		if n >= MaxSlugAttempts {
			return "", fmt.Errorf("%w: %q", ierr.ErrSlugExhausted, base)
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}
