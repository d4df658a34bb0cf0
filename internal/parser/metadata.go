package parser

import (
	"fmt"
	"strings"
	"time"
)

// dateLayouts are tried in order for date and modified values. Layouts without
// a zone are interpreted in the site time zone.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
}

// ProcessMetadata returns a copy of meta with keys lower-cased, date fields
// converted to time.Time and tags normalised to a string slice.
func ProcessMetadata(meta map[string]any, loc *time.Location) (map[string]any, error) {
	if loc == nil {
		loc = time.UTC
	}
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		key := strings.ToLower(k)
		switch key {
		case "date", "modified":
			t, err := toTime(v, loc)
			if err != nil {
				return nil, fmt.Errorf("parser: %s: %w", key, err)
			}
			out[key] = t
		case "tags":
			out[key] = toStrings(v)
		default:
			out[key] = v
		}
	}
	return out, nil
}

// ParseDate parses s using the accepted date layouts.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func toTime(v any, loc *time.Location) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		return ParseDate(t, loc)
	default:
		return time.Time{}, fmt.Errorf("unsupported date value %v", v)
	}
}

func toStrings(v any) []string {
	var raw []string
	switch t := v.(type) {
	case string:
		raw = strings.Split(t, ",")
	case []string:
		raw = t
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	}
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
