package quiz

import "live-quiz-service/internal/domain"

// ItemView is the participant-facing rendering of an item: no answer keys, no answers.
type ItemView struct {
	Kind          Kind     `json:"kind"`
	Position      int      `json:"position"`
	Question      string   `json:"question,omitempty"`
	Options       []string `json:"options,omitempty"`
	Text          string   `json:"text,omitempty"`
	SecondaryText string   `json:"secondaryText,omitempty"`
	Blanks        int      `json:"blanks,omitempty"`
	Title         string   `json:"title,omitempty"`
	Subtitle      string   `json:"subtitle,omitempty"`
	MediaURL      string   `json:"mediaUrl,omitempty"`
	Caption       string   `json:"caption,omitempty"`
	Interactive   bool     `json:"interactive"`
}

type Projection struct {
	Key        Key                `json:"key"`
	Owner      domain.Participant `json:"owner"`
	Name       string             `json:"name"`
	Categories []string           `json:"categories"`
	Items      []ItemView         `json:"items"`
}

func View(item Item) ItemView {
	v := item.view()
	v.Interactive = item.Kind().Interactive()
	return v
}

func Project(q *Quiz) Projection {
	items := q.Items()
	p := Projection{
		Key:        q.Key(),
		Owner:      q.Owner(),
		Name:       q.Name(),
		Categories: q.Categories(),
		Items:      make([]ItemView, 0, len(items)),
	}
	for _, item := range items {
		p.Items = append(p.Items, View(item))
	}
	return p
}
