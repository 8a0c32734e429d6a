package quiz

import (
	"sync"

	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/live"
)

// Kind is the discriminant stored with every serialized item.
type Kind string

const (
	KindMultipleChoice  Kind = "MULTIPLE_CHOICE"
	KindFillSpace       Kind = "FILL_SPACE"
	KindOpen            Kind = "OPEN"
	KindPoll            Kind = "POLL"
	KindTrueFalse       Kind = "TRUE_FALSE"
	KindWordCloud       Kind = "WORD_CLOUD"
	KindSlideText1      Kind = "SLIDE_TEXT_1"
	KindSlideText2      Kind = "SLIDE_TEXT_2"
	KindSlideTextMedia1 Kind = "SLIDE_TEXT_MEDIA_1"
	KindSlideTextMedia2 Kind = "SLIDE_TEXT_MEDIA_2"
	KindSlideTitle1     Kind = "SLIDE_TITLE_1"
	KindSlideTitle2     Kind = "SLIDE_TITLE_2"
)

// Kinds lists every item kind in declaration order.
var Kinds = []Kind{
	KindMultipleChoice, KindFillSpace, KindOpen, KindPoll, KindTrueFalse, KindWordCloud,
	KindSlideText1, KindSlideText2, KindSlideTextMedia1, KindSlideTextMedia2, KindSlideTitle1, KindSlideTitle2,
}

var factories = map[Kind]func() Item{
	KindMultipleChoice:  func() Item { return &MultipleChoice{} },
	KindFillSpace:       func() Item { return &FillSpace{} },
	KindOpen:            func() Item { return &Open{} },
	KindPoll:            func() Item { return &Poll{} },
	KindTrueFalse:       func() Item { return &TrueFalse{} },
	KindWordCloud:       func() Item { return &WordCloud{} },
	KindSlideText1:      func() Item { return &SlideText1{} },
	KindSlideText2:      func() Item { return &SlideText2{} },
	KindSlideTextMedia1: func() Item { return &SlideTextMedia1{} },
	KindSlideTextMedia2: func() Item { return &SlideTextMedia2{} },
	KindSlideTitle1:     func() Item { return &SlideTitle1{} },
	KindSlideTitle2:     func() Item { return &SlideTitle2{} },
}

// ParseKind resolves a serialized kind tag.
func ParseKind(raw string) (Kind, error) {
	k := Kind(raw)
	if _, ok := factories[k]; !ok {
		return "", domain.Errorf(domain.KindInvalidKind, "unknown item kind %q", raw)
	}
	return k, nil
}

// Interactive reports whether items of this kind accept live answers.
func (k Kind) Interactive() bool {
	switch k {
	case KindMultipleChoice, KindFillSpace, KindOpen, KindPoll, KindTrueFalse, KindWordCloud:
		return true
	}
	return false
}

// NewItem returns an empty item of the given kind.
func NewItem(kind Kind) (Item, error) {
	factory, ok := factories[kind]
	if !ok {
		return nil, domain.Errorf(domain.KindInvalidKind, "unknown item kind %q", kind)
	}
	return factory(), nil
}

// Item is one element of a quiz. The set of implementations is closed to this package.
type Item interface {
	Kind() Kind
	// Position is assigned by the Quiz the item is added to.
	Position() int

	setPosition(int)
	// place and release track whether a Quiz currently holds the item.
	place(int) bool
	release()
	content() any
	view() ItemView
}

// Answerable is implemented by interactive items.
type Answerable interface {
	Item
	// RecordAnswer replaces the participant's previous answer.
	RecordAnswer(p domain.Participant, tokens []string) error
	AllAnswers() map[string][]string

	answers() *live.AnswerSet
	grade(tally map[string][]string) Grade
}

type base struct {
	position int
	placed   bool
}

func (b *base) Position() int { return b.position }

func (b *base) setPosition(position int) { b.position = position }

// place claims the item for one aggregate position. It fails if another position already holds it.
func (b *base) place(position int) bool {
	if b.placed {
		return false
	}
	b.placed = true
	b.position = position
	return true
}

func (b *base) release() { b.placed = false }

type interactive struct {
	base
	once sync.Once
	set  *live.AnswerSet
}

func (i *interactive) answers() *live.AnswerSet {
	i.once.Do(func() {
		if i.set == nil {
			i.set = live.NewAnswerSet()
		}
	})
	return i.set
}

func (i *interactive) RecordAnswer(p domain.Participant, tokens []string) error {
	return i.answers().Submit(p, tokens)
}

func (i *interactive) AllAnswers() map[string][]string {
	return i.answers().Tally()
}
