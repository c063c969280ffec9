package content

import (
	"sort"
	"strings"
	"time"
)

// PostRecord is one catalog entry. ID doubles as the lookup key and the
// content-file name; Date stays a string for display, ParsedDate is the
// sorting key.
type PostRecord struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Date    string   `json:"date"`
	Tags    []string `json:"tags,omitempty"`
	Excerpt string   `json:"excerpt,omitempty"`
	Image   string   `json:"image,omitempty"`
}

func (r *PostRecord) Normalize() {
	r.ID = strings.TrimSpace(r.ID)
	r.Title = strings.TrimSpace(r.Title)
	r.Date = strings.TrimSpace(r.Date)
	r.Excerpt = strings.TrimSpace(r.Excerpt)
	r.Image = strings.TrimSpace(r.Image)

	r.Tags = normalizeStrings(r.Tags)
}

func (r PostRecord) ParsedDate() time.Time {
	return ParseDate(r.Date)
}

func ParseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{
		time.RFC3339,
		time.DateOnly,
		"2006-01-02 15:04",
		time.DateTime,
	} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}

// SortByDateDesc orders records newest first. Records with unparseable dates
// sink to the end; catalog order is kept for ties.
func SortByDateDesc(records []PostRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ParsedDate().After(records[j].ParsedDate())
	})
}

func normalizeStrings(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		item = strings.ToLower(item)
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
