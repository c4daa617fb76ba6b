package domain

import "strings"

type SearchResult struct {
	Users        []PublicProfile `json:"users"`
	Destinations []Destination   `json:"destinations"`
	Posts        []Post          `json:"posts"`
	Tags         []Tag           `json:"tags"`
}

// StripTagMarkers removes every '#' so "#bali" finds the tag named "bali".
func StripTagMarkers(query string) string {
	return strings.TrimSpace(strings.ReplaceAll(query, "#", ""))
}
