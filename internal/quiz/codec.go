package quiz

import (
	"encoding/json"
	"fmt"

	"live-quiz-service/internal/domain"
)

// itemHeader is merged into every item object. Its keys must not collide with any content field:
// FILL_SPACE already uses "answers" for its answer key.
type itemHeader struct {
	Kind        Kind                `json:"kind"`
	Position    int                 `json:"position"`
	LiveAnswers map[string][]string `json:"liveAnswers,omitempty"`
}

// MarshalItem encodes item as a flat JSON object carrying its kind, position,
// kind-specific content and, for interactive items, the live answers.
func MarshalItem(item Item) ([]byte, error) {
	raw, err := json.Marshal(item.content())
	if err != nil {
		return nil, fmt.Errorf("marshal %s content: %w", item.Kind(), err)
	}
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("flatten %s content: %w", item.Kind(), err)
	}

	header := itemHeader{Kind: item.Kind(), Position: item.Position()}
	if a, ok := item.(Answerable); ok {
		if tally := a.AllAnswers(); len(tally) > 0 {
			header.LiveAnswers = tally
		}
	}
	headerRaw, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(headerRaw, &fields); err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

// UnmarshalItem reconstructs the exact variant named by the kind field, answers included.
func UnmarshalItem(data []byte) (Item, error) {
	return decodeItem(data, true)
}

// UnmarshalItemContent decodes an item as authored by a teacher: any answers in data are ignored.
func UnmarshalItemContent(data []byte) (Item, error) {
	return decodeItem(data, false)
}

func decodeItem(data []byte, withAnswers bool) (Item, error) {
	var header itemHeader
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, domain.Errorf(domain.KindInvalidPayload, "decode item: %v", err)
	}
	if header.Kind == "" {
		return nil, domain.Errorf(domain.KindInvalidKind, "item kind is missing")
	}
	item, err := NewItem(header.Kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, item.content()); err != nil {
		return nil, domain.Errorf(domain.KindInvalidPayload, "decode %s item: %v", header.Kind, err)
	}
	item.setPosition(header.Position)
	if withAnswers && len(header.LiveAnswers) > 0 {
		a, ok := item.(Answerable)
		if !ok {
			return nil, domain.Errorf(domain.KindUnsupportedOperation, "%s items do not accept answers", header.Kind)
		}
		for participant, tokens := range header.LiveAnswers {
			a.answers().Put(participant, tokens)
		}
	}
	return item, nil
}

type document struct {
	Key        Key                `json:"key"`
	Owner      domain.Participant `json:"owner"`
	Name       string             `json:"name"`
	Categories []string           `json:"categories"`
	Items      []json.RawMessage  `json:"items"`
}

func (q *Quiz) MarshalJSON() ([]byte, error) {
	q.mu.RLock()
	items := q.itemsLocked()
	q.mu.RUnlock()

	doc := document{
		Key:        q.key,
		Owner:      q.owner,
		Name:       q.name,
		Categories: q.Categories(),
		Items:      make([]json.RawMessage, 0, len(items)),
	}
	for _, item := range items {
		raw, err := MarshalItem(item)
		if err != nil {
			return nil, err
		}
		doc.Items = append(doc.Items, raw)
	}
	return json.Marshal(doc)
}

// Decode rebuilds a Quiz from its JSON document.
func Decode(data []byte) (*Quiz, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, domain.Errorf(domain.KindInvalidPayload, "decode quiz: %v", err)
	}
	b := NewBuilder().Key(doc.Key).Owner(doc.Owner).Name(doc.Name).Categories(doc.Categories...)
	for _, raw := range doc.Items {
		item, err := UnmarshalItem(raw)
		if err != nil {
			return nil, err
		}
		b.Item(item.Position(), item)
	}
	return b.Build()
}
