// Package pass renders booking passes as QR codes.
package pass

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"

	"ms-events/internal/models"
)

const defaultSize = 256

type Generator struct {
	BaseURL string
	Size    int
}

func NewGenerator(baseURL string) *Generator {
	return &Generator{BaseURL: strings.TrimRight(baseURL, "/"), Size: defaultSize}
}

// Link is the URL encoded in the pass: the event page tagged with the booking id.
func (g *Generator) Link(booking models.Booking, eventSlug string) string {
	return fmt.Sprintf("%s/events/%s?booking=%s", g.BaseURL, url.PathEscape(eventSlug), url.QueryEscape(booking.ID))
}

func (g *Generator) PNG(booking models.Booking, eventSlug string) ([]byte, error) {
	size := g.Size
	if size <= 0 {
		size = defaultSize
	}
	png, err := qrcode.Encode(g.Link(booking, eventSlug), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode pass for booking %s: %w", booking.ID, err)
	}
	return png, nil
}
