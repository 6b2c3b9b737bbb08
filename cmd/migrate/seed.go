package main

import (
	"context"
	"errors"
	"fmt"

	"ms-events/internal/events"
	"ms-events/internal/logger"
	"ms-events/internal/models"
	"ms-events/internal/store"
)

var sampleEvents = []models.EventInput{
	{
		Title:       "React Conf 2025",
		Description: "The official React conference with talks from the core team and the community.",
		Overview:    "Two days of talks on React, server components and the compiler.",
		Image:       "/images/event1.png",
		Venue:       "Henderson Convention Center",
		Location:    "Henderson, NV",
		Date:        "2025-10-07",
		Time:        "9:00am",
		Mode:        "hybrid",
		Audience:    "Frontend developers",
		Agenda:      []string{"Keynote", "React Compiler deep dive", "Community talks"},
		Organizer:   "Meta Open Source",
		Tags:        []string{"react", "javascript", "frontend"},
	},
	{
		Title:       "GopherCon EU",
		Description: "The European Go conference.",
		Overview:    "Workshops and talks about Go in production.",
		Image:       "/images/event2.png",
		Venue:       "Festsaal Kreuzberg",
		Location:    "Berlin, Germany",
		Date:        "June 16, 2025",
		Time:        "10am",
		Mode:        "offline",
		Audience:    "Go developers",
		Agenda:      []string{"Workshops", "Main conference", "Lightning talks"},
		Organizer:   "GopherCon EU",
		Tags:        []string{"go", "backend", "cloud"},
	},
	{
		Title:       "KubeCon + CloudNativeCon Europe",
		Description: "The flagship conference of the Cloud Native Computing Foundation.",
		Overview:    "Kubernetes, observability and platform engineering.",
		Image:       "/images/event3.png",
		Venue:       "ExCeL London",
		Location:    "London, UK",
		Date:        "2025-04-01",
		Time:        "08:30",
		Mode:        "offline",
		Audience:    "Platform engineers",
		Agenda:      []string{"Keynotes", "Maintainer track", "Solutions showcase"},
		Organizer:   "CNCF",
		Tags:        []string{"kubernetes", "cloud", "devops"},
	},
	{
		Title:       "JSWorld Meetup",
		Description: "An evening meetup for JavaScript developers.",
		Overview:    "Short talks followed by networking.",
		Image:       "/images/event4.png",
		Venue:       "Online",
		Location:    "Online",
		Date:        "2025-09-12",
		Time:        "6:30pm",
		Mode:        "online",
		Audience:    "JavaScript developers",
		Agenda:      []string{"Talks", "Networking"},
		Organizer:   "JSWorld",
		Tags:        []string{"javascript", "frontend"},
	},
}

func seedEvents(ctx context.Context, svc *events.EventService, log *logger.Logger) (created, skipped int) {
	for _, in := range sampleEvents {
		e, err := svc.CreateEvent(ctx, in)
		switch {
		case errors.Is(err, store.ErrSlugConflict):
			skipped++
		case err != nil:
			log.Error("SEED", fmt.Sprintf("Failed to seed %q: %v", in.Title, err))
		default:
			created++
			log.Info("SEED", fmt.Sprintf("Seeded %s", e.Slug))
		}
	}
	return created, skipped
}
