package events

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"ms-events/internal/models"
	"ms-events/internal/validation"
)

var (
	slugStrip    = strings.NewReplacer("'", "", "`", "")
	slugSeparate = regexp.MustCompile(`[^a-z0-9]+`)

	timePattern = regexp.MustCompile(`(?i)^(\d{1,2})(?::(\d{2}))?\s*(am|pm)?$`)
)

// dateLayouts are tried in order. Layouts without a zone are read as UTC.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"2006.01.02",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
	"Monday, January 2, 2006",
	"Mon, 02 Jan 2006",
	time.RFC1123,
	time.RFC1123Z,
	time.RFC850,
	time.ANSIC,
}

// Slugify lower-cases the title, drops apostrophes and backticks and joins
// the remaining alphanumeric runs with single hyphens.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugStrip.Replace(s)
	s = slugSeparate.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > models.MaxSlugLength {
		s = strings.TrimRight(s[:models.MaxSlugLength], "-")
	}
	return s
}

// NormalizeDate returns the UTC calendar date of s as YYYY-MM-DD.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", validation.Required("date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC().Format("2006-01-02"), nil
		}
	}
	return "", validation.Invalid("date")
}

// NormalizeTime accepts H, HH, H:mm or HH:mm with an optional am/pm suffix
// and returns 24-hour HH:mm.
func NormalizeTime(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", validation.Required("time")
	}

	m := timePattern.FindStringSubmatch(s)
	if m == nil {
		return "", validation.Invalid("time")
	}

	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}

	switch strings.ToLower(m[3]) {
	case "am":
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour == 12 {
			hour = 0
		}
		hour += 12
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", validation.Invalid("time")
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// Normalize validates in and returns the canonical event to persist.
// prev is the stored version when updating; its id, slug and timestamps
// carry over, and the slug is regenerated only if the title changed.
func Normalize(in models.EventInput, prev *models.Event) (models.Event, error) {
	var out models.Event

	required := []struct {
		field string
		src   string
		dst   *string
	}{
		{"title", in.Title, &out.Title},
		{"description", in.Description, &out.Description},
		{"overview", in.Overview, &out.Overview},
		{"image", in.Image, &out.Image},
		{"venue", in.Venue, &out.Venue},
		{"location", in.Location, &out.Location},
		{"mode", in.Mode, &out.Mode},
		{"audience", in.Audience, &out.Audience},
		{"organizer", in.Organizer, &out.Organizer},
	}
	for _, r := range required {
		v := strings.TrimSpace(r.src)
		if v == "" {
			return models.Event{}, validation.Required(r.field)
		}
		*r.dst = v
	}

	var err error
	if out.Date, err = NormalizeDate(in.Date); err != nil {
		return models.Event{}, err
	}
	if out.Time, err = NormalizeTime(in.Time); err != nil {
		return models.Event{}, err
	}
	if out.Agenda, err = normalizeList("agenda", in.Agenda, false); err != nil {
		return models.Event{}, err
	}
	if out.Tags, err = normalizeList("tags", in.Tags, true); err != nil {
		return models.Event{}, err
	}

	if prev != nil {
		out.ID = prev.ID
		out.CreatedAt = prev.CreatedAt
		out.UpdatedAt = prev.UpdatedAt
	}

	if prev == nil || prev.Slug == "" || prev.Title != out.Title {
		out.Slug = Slugify(out.Title)
		if out.Slug == "" {
			return models.Event{}, &validation.Error{Field: "title", Message: "must contain at least one letter or digit"}
		}
	} else {
		out.Slug = prev.Slug
	}

	return out, nil
}

func normalizeList(field string, items []string, dedupe bool) ([]string, error) {
	if len(items) == 0 {
		return nil, validation.Required(field)
	}

	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		v := strings.TrimSpace(item)
		if v == "" {
			return nil, &validation.Error{Field: field, Message: "must not contain empty items"}
		}
		if dedupe {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
		}
		out = append(out, v)
	}
	return out, nil
}
