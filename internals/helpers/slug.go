package helper

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

const DefaultSlugMaxLen = 120

var (
	reNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
	reHyphen   = regexp.MustCompile(`-+`)
)

// Slugify turns free text into [a-z0-9-], dropping diacritics (é → e).
// Empty results fall back to "item".
func Slugify(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultSlugMaxLen
	}
	s = strings.ToLower(strings.TrimSpace(s))

	var buf []rune
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		buf = append(buf, r)
	}
	s = string(buf)

	s = reNonAlnum.ReplaceAllString(s, "-")
	s = reHyphen.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if utf8.RuneCountInString(s) > maxLen {
		s = strings.Trim(string([]rune(s)[:maxLen]), "-")
	}
	if s == "" {
		s = "item"
	}
	return s
}

// SlugOptions describes where slug uniqueness is checked.
type SlugOptions struct {
	Table      string
	SlugColumn string
	// ExcludeID skips the record being updated.
	ExcludeID string
	MaxLen    int
}

// GenerateUniqueSlug tries base, then base-2, base-3, ... until no other
// row holds the candidate (case-insensitive).
func GenerateUniqueSlug(ctx context.Context, db *gorm.DB, opts SlugOptions, base string) (string, error) {
	if opts.Table == "" || opts.SlugColumn == "" {
		return "", errors.New("slug options: table/slug column required")
	}
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = DefaultSlugMaxLen
	}
	base = Slugify(base, maxLen)

	for i := 1; i < 10000; i++ {
		candidate := base
		if i > 1 {
			suf := fmt.Sprintf("-%d", i)
			if len(candidate)+len(suf) > maxLen {
				candidate = strings.Trim(candidate[:maxLen-len(suf)], "-")
			}
			candidate += suf
		}

		q := db.WithContext(ctx).Table(opts.Table).
			Where(fmt.Sprintf("LOWER(%s) = LOWER(?)", opts.SlugColumn), candidate)
		if opts.ExcludeID != "" {
			q = q.Where("id <> ?", opts.ExcludeID)
		}
		var cnt int64
		if err := q.Count(&cnt).Error; err != nil {
			return "", err
		}
		if cnt == 0 {
			return candidate, nil
		}
	}
	return "", errors.New("failed to generate unique slug after many attempts")
}
