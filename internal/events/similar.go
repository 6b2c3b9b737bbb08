package events

import (
	"sort"

	"ms-events/internal/models"
)

// SimilarityStrategy picks events related to target out of candidates.
// candidates are in list order and may include target itself.
type SimilarityStrategy interface {
	Similar(target models.Event, candidates []models.Event) []models.Event
}

// SharedTags ranks events by how many tags they share with the target.
// Events sharing no tag are left out; ties keep list order. Limit <= 0 means no limit.
type SharedTags struct {
	Limit int
}

func (s SharedTags) Similar(target models.Event, candidates []models.Event) []models.Event {
	tags := make(map[string]struct{}, len(target.Tags))
	for _, t := range target.Tags {
		tags[t] = struct{}{}
	}

	type scored struct {
		event  models.Event
		shared int
	}
	var ranked []scored
	for _, c := range candidates {
		if c.ID == target.ID || c.Slug == target.Slug {
			continue
		}
		n := 0
		for _, t := range c.Tags {
			if _, ok := tags[t]; ok {
				n++
			}
		}
		if n > 0 {
			ranked = append(ranked, scored{event: c, shared: n})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].shared > ranked[j].shared
	})

	if s.Limit > 0 && len(ranked) > s.Limit {
		ranked = ranked[:s.Limit]
	}

	out := make([]models.Event, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.event)
	}
	return out
}
