package events

import (
	"regexp"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-events/internal/models"
	"ms-events/internal/validation"
)

func validInput() models.EventInput {
	return models.EventInput{
		Title:       "  Cloud Next '25  ",
		Description: "The cloud conference",
		Overview:    "Three days of talks",
		Image:       "/images/cloud-next.png",
		Venue:       "Moscone Center",
		Location:    "San Francisco, CA",
		Date:        "2025-04-09",
		Time:        "9am",
		Mode:        "offline",
		Audience:    "Cloud engineers",
		Agenda:      []string{" Keynote ", "Breakouts"},
		Organizer:   "Google Cloud",
		Tags:        []string{"cloud", "ai", "cloud"},
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Cloud Next '25", "cloud-next-25"},
		{"  React Conf 2025  ", "react-conf-2025"},
		{"Don`t Panic!!", "dont-panic"},
		{"---Hello---World---", "hello-world"},
		{"KubeCon + CloudNativeCon Europe", "kubecon-cloudnativecon-europe"},
		{"Café Meetup", "caf-meetup"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.title))
		})
	}
}

func TestSlugify_CapsLength(t *testing.T) {
	title := strings.Repeat("annual developer ", 30)

	slug := Slugify(title)
	assert.LessOrEqual(t, len(slug), models.MaxSlugLength)
	assert.False(t, strings.HasSuffix(slug, "-"))
	assert.True(t, strings.HasPrefix(slug, "annual-developer-annual"))
	assert.Equal(t, slug, Slugify(slug))
}

func TestSlugify_Properties(t *testing.T) {
	faker := gofakeit.New(42)
	shape := regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

	for i := 0; i < 200; i++ {
		title := faker.Sentence(faker.Number(1, 8))
		slug := Slugify(title)
		if slug == "" {
			continue
		}
		assert.Regexp(t, shape, slug, "title %q", title)
		assert.Equal(t, slug, Slugify(slug), "not idempotent for %q", title)
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-11-05", "2025-11-05"},
		{" 2025-11-05 ", "2025-11-05"},
		{"2025-11-05T23:30:00-05:00", "2025-11-06"},
		{"2025-11-05T01:00:00+09:00", "2025-11-04"},
		{"2025-11-05T10:00:00Z", "2025-11-05"},
		{"2025/11/05", "2025-11-05"},
		{"11/05/2025", "2025-11-05"},
		{"November 5, 2025", "2025-11-05"},
		{"Nov 5, 2025", "2025-11-05"},
		{"5 Nov 2025", "2025-11-05"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeDate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := NormalizeDate(got)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestNormalizeDate_Invalid(t *testing.T) {
	for _, in := range []string{"tomorrow", "2025-13-01", "2025-02-30", "05.11"} {
		_, err := NormalizeDate(in)
		require.Error(t, err, in)
		assert.EqualError(t, err, "date is invalid")
	}

	_, err := NormalizeDate("   ")
	assert.EqualError(t, err, "date is required")
}

func TestNormalizeDate_FakeDatesRoundTrip(t *testing.T) {
	faker := gofakeit.New(7)
	for i := 0; i < 100; i++ {
		d := faker.Date().UTC()
		want := d.Format("2006-01-02")

		got, err := NormalizeDate(d.Format("January 2, 2006"))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2pm", "14:00"},
		{"12am", "00:00"},
		{"12pm", "12:00"},
		{"9:05", "09:05"},
		{"9", "09:00"},
		{"09:30", "09:30"},
		{"23:59", "23:59"},
		{"0", "00:00"},
		{"10:15 PM", "22:15"},
		{"7 Am", "07:00"},
		{" 11:45pm ", "23:45"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeTime(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeTime_Invalid(t *testing.T) {
	for _, in := range []string{"25:00", "24:00", "12:60", "noon", "9:5", "123", "13pm", "9:05:00", "9.30"} {
		t.Run(in, func(t *testing.T) {
			_, err := NormalizeTime(in)
			assert.EqualError(t, err, "time is invalid")
		})
	}
}

func TestNormalize_Create(t *testing.T) {
	e, err := Normalize(validInput(), nil)
	require.NoError(t, err)

	assert.Equal(t, "Cloud Next '25", e.Title)
	assert.Equal(t, "cloud-next-25", e.Slug)
	assert.Equal(t, "2025-04-09", e.Date)
	assert.Equal(t, "09:00", e.Time)
	assert.Equal(t, []string{"Keynote", "Breakouts"}, e.Agenda)
	assert.Equal(t, []string{"cloud", "ai"}, e.Tags)
	assert.Empty(t, e.ID)
}

func TestNormalize_SingleTagSucceeds(t *testing.T) {
	in := validInput()
	in.Tags = []string{"a"}

	e, err := Normalize(in, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, e.Slug)
}

func TestNormalize_FieldErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.EventInput)
		field   string
		message string
	}{
		{"empty title", func(in *models.EventInput) { in.Title = "   " }, "title", "title is required"},
		{"empty venue", func(in *models.EventInput) { in.Venue = "" }, "venue", "venue is required"},
		{"empty organizer", func(in *models.EventInput) { in.Organizer = "\t" }, "organizer", "organizer is required"},
		{"bad date", func(in *models.EventInput) { in.Date = "someday" }, "date", "date is invalid"},
		{"bad time", func(in *models.EventInput) { in.Time = "25:00" }, "time", "time is invalid"},
		{"empty agenda", func(in *models.EventInput) { in.Agenda = []string{} }, "agenda", "agenda is required"},
		{"blank agenda item", func(in *models.EventInput) { in.Agenda = []string{"Intro", " "} }, "agenda", "agenda must not contain empty items"},
		{"nil tags", func(in *models.EventInput) { in.Tags = nil }, "tags", "tags is required"},
		{"symbol-only title", func(in *models.EventInput) { in.Title = "???" }, "title", "title must contain at least one letter or digit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			_, err := Normalize(in, nil)
			require.Error(t, err)
			ve, ok := validation.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.field, ve.Field)
			assert.EqualError(t, err, tt.message)
		})
	}
}

func TestNormalize_UpdateKeepsSlugWhenTitleUnchanged(t *testing.T) {
	prev, err := Normalize(validInput(), nil)
	require.NoError(t, err)
	prev.ID = "evt-1"
	prev.Slug = "custom-slug"

	in := validInput()
	in.Venue = "Mandalay Bay"
	next, err := Normalize(in, &prev)
	require.NoError(t, err)

	assert.Equal(t, "custom-slug", next.Slug)
	assert.Equal(t, "evt-1", next.ID)
	assert.Equal(t, "Mandalay Bay", next.Venue)
}

func TestNormalize_UpdateRegeneratesSlugWhenTitleChanges(t *testing.T) {
	prev, err := Normalize(validInput(), nil)
	require.NoError(t, err)

	in := validInput()
	in.Title = "Cloud Next 2026"
	next, err := Normalize(in, &prev)
	require.NoError(t, err)
	assert.Equal(t, "cloud-next-2026", next.Slug)
}

func TestNormalize_RegeneratesMissingSlug(t *testing.T) {
	prev, err := Normalize(validInput(), nil)
	require.NoError(t, err)
	prev.Slug = ""

	next, err := Normalize(validInput(), &prev)
	require.NoError(t, err)
	assert.Equal(t, "cloud-next-25", next.Slug)
}
