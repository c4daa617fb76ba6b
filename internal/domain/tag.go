package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Tag struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	PostsCount int64     `db:"posts_count" json:"posts_count"`
	CreatedAt  time.Time `db:"created_at" json:"-"`
}

const MaxTagNameLength = 50

// NormalizeTagName strips '#' markers and surrounding whitespace and lowercases.
func NormalizeTagName(raw string) string {
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(raw, "#", "")))
}

// ParseTagInput extracts hashtags from free text such as "#bali #beach sunset".
// Only whitespace separated tokens starting with '#' count; duplicates are dropped
// so a post never carries the same tag twice.
func ParseTagInput(input string) []string {
	fields := strings.Fields(input)
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		if !strings.HasPrefix(field, "#") {
			continue
		}
		name := NormalizeTagName(field)
		if name == "" || len(name) > MaxTagNameLength {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// ParseTagList splits the comma separated ?tags= filter.
func ParseTagList(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		name := NormalizeTagName(part)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func FormatTag(name string) string {
	return "#" + name
}
