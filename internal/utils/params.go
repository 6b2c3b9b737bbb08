package utils

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"ms-events/internal/models"
)

// SlugParam returns the trimmed {slug} path parameter and whether it is 1 to 200 characters long.
func SlugParam(r *http.Request) (string, bool) {
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	n := utf8.RuneCountInString(slug)
	return slug, n >= 1 && n <= models.MaxSlugLength
}
