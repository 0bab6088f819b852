package helper

import (
	"fmt"
	"strings"
	"unicode"
)

// Underscore converts camelCase or PascalCase to snake_case.
func Underscore(s string) string {
	runes := []rune(s)
	var sb strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])) {
				sb.WriteByte('_')
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// SortField is one parsed sortBy entry.
type SortField struct {
	Column string
	Desc   bool
}

var sortableFields = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"published_at": true,
	"title":        true,
	"name":         true,
	"type":         true,
	"key":          true,
	"email":        true,
}

// ParseSortBy reads "field" or "-field" entries, comma separated or
// repeated. A leading "-" sorts descending.
func ParseSortBy(values []string) ([]SortField, error) {
	var fields []SortField
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			desc := strings.HasPrefix(part, "-")
			column := Underscore(strings.TrimLeft(part, "-+"))
			if !sortableFields[column] {
				return nil, fmt.Errorf("cannot sort by %q", part)
			}
			fields = append(fields, SortField{Column: column, Desc: desc})
		}
	}
	return fields, nil
}
