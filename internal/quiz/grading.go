package quiz

import (
	"strconv"
	"strings"

	"live-quiz-service/internal/domain"
)

// Grade is computed from the raw answers on every read; nothing here is stored.
type Grade struct {
	Kind         Kind           `json:"kind"`
	Position     int            `json:"position"`
	Participants int            `json:"participants"`
	Graded       bool           `json:"graded"`
	Correct      int            `json:"correct"`
	Frequencies  map[string]int `json:"frequencies,omitempty"`
}

// GradeItem tallies the item's current answers.
func GradeItem(item Item) (Grade, error) {
	a, ok := item.(Answerable)
	if !ok {
		return Grade{}, domain.Errorf(domain.KindUnsupportedOperation, "%s items do not accept answers", item.Kind())
	}
	g := a.grade(a.AllAnswers())
	g.Kind = item.Kind()
	g.Position = item.Position()
	return g, nil
}

func frequencies(tally map[string][]string, normalize func(string) string) map[string]int {
	freq := make(map[string]int)
	for _, tokens := range tally {
		for _, token := range tokens {
			if t := normalize(token); t != "" {
				freq[t]++
			}
		}
	}
	return freq
}

func (m *MultipleChoice) grade(tally map[string][]string) Grade {
	g := Grade{Participants: len(tally), Graded: true, Frequencies: frequencies(tally, strings.TrimSpace)}
	want := strings.TrimSpace(m.Answer)
	for _, tokens := range tally {
		if len(tokens) == 1 && strings.TrimSpace(tokens[0]) == want {
			g.Correct++
		}
	}
	return g
}

func (t *TrueFalse) grade(tally map[string][]string) Grade {
	g := Grade{Participants: len(tally), Graded: true, Frequencies: frequencies(tally, normalizeBool)}
	for _, tokens := range tally {
		if len(tokens) != 1 {
			continue
		}
		if v, err := strconv.ParseBool(strings.TrimSpace(tokens[0])); err == nil && v == t.Answer {
			g.Correct++
		}
	}
	return g
}

func (f *FillSpace) grade(tally map[string][]string) Grade {
	g := Grade{Participants: len(tally), Graded: true}
	for _, tokens := range tally {
		if len(tokens) != len(f.Answers) {
			continue
		}
		correct := true
		for i, token := range tokens {
			if !strings.EqualFold(strings.TrimSpace(token), strings.TrimSpace(f.Answers[i])) {
				correct = false
				break
			}
		}
		if correct {
			g.Correct++
		}
	}
	return g
}

func (p *Poll) grade(tally map[string][]string) Grade {
	return Grade{Participants: len(tally), Frequencies: frequencies(tally, strings.TrimSpace)}
}

func (w *WordCloud) grade(tally map[string][]string) Grade {
	return Grade{Participants: len(tally), Frequencies: frequencies(tally, normalizeWord)}
}

func (o *Open) grade(tally map[string][]string) Grade {
	return Grade{Participants: len(tally)}
}

func normalizeWord(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizeBool(s string) string {
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return ""
	}
	return strconv.FormatBool(v)
}
