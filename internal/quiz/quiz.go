package quiz

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/validation"
)

// Key identifies a quiz. It is generated once and never changes.
type Key string

func NewKey() Key {
	return Key(uuid.NewString())
}

func (k Key) String() string { return string(k) }

// Quiz is the aggregate root. Structural changes to its items are serialized by mu,
// so a position check and the insert that follows it can never interleave with another writer.
type Quiz struct {
	key        Key
	owner      domain.Participant
	name       string
	categories []string

	mu    sync.RWMutex
	items map[int]Item
}

func (q *Quiz) Key() Key                  { return q.key }
func (q *Quiz) Owner() domain.Participant { return q.owner }
func (q *Quiz) Name() string              { return q.name }

func (q *Quiz) Categories() []string {
	out := make([]string, len(q.categories))
	copy(out, q.categories)
	return out
}

// AddItem inserts item at position, failing if the position is taken.
func (q *Quiz) AddItem(position int, item Item) error {
	if err := checkItem(position, item); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, taken := q.items[position]; taken {
		return domain.Errorf(domain.KindDuplicatePosition, "position %d is already occupied", position)
	}
	if !item.place(position) {
		return errAlreadyPlaced(item)
	}
	q.items[position] = item
	return nil
}

// UpdateItem replaces whatever occupies position, creating the entry when the position is free.
func (q *Quiz) UpdateItem(position int, item Item) error {
	if err := checkItem(position, item); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	current, ok := q.items[position]
	if ok && current == item {
		return nil
	}
	if !item.place(position) {
		return errAlreadyPlaced(item)
	}
	if ok {
		current.release()
	}
	q.items[position] = item
	return nil
}

// DeleteItem removes the item at position. Absent positions are ignored.
func (q *Quiz) DeleteItem(position int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if item, ok := q.items[position]; ok {
		item.release()
		delete(q.items, position)
	}
}

func (q *Quiz) Exists(position int) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	_, ok := q.items[position]
	return ok
}

func (q *Quiz) Item(position int) (Item, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	item, ok := q.items[position]
	return item, ok
}

// Items returns the items ordered by position.
func (q *Quiz) Items() []Item {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.itemsLocked()
}

func (q *Quiz) itemsLocked() []Item {
	out := make([]Item, 0, len(q.items))
	for _, item := range q.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position() < out[j].Position() })
	return out
}

func (q *Quiz) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.items)
}

// RecordAnswer submits a participant's answer to the interactive item at position.
// Only the item lookup takes the aggregate lock; the answer itself goes to the item's AnswerSet.
func (q *Quiz) RecordAnswer(position int, p domain.Participant, tokens []string) (Answerable, error) {
	item, ok := q.Item(position)
	if !ok {
		return nil, domain.Errorf(domain.KindNotFound, "no item at position %d", position)
	}
	a, ok := item.(Answerable)
	if !ok {
		return nil, domain.Errorf(domain.KindUnsupportedOperation, "%s items do not accept answers", item.Kind())
	}
	if err := a.RecordAnswer(p, tokens); err != nil {
		return nil, err
	}
	return a, nil
}

// RestoreAnswers writes tally into the live answers of the interactive item at position,
// replacing the entries of the participants it names.
func (q *Quiz) RestoreAnswers(position int, tally map[string][]string) error {
	item, ok := q.Item(position)
	if !ok {
		return domain.Errorf(domain.KindNotFound, "no item at position %d", position)
	}
	a, ok := item.(Answerable)
	if !ok {
		return domain.Errorf(domain.KindUnsupportedOperation, "%s items do not accept answers", item.Kind())
	}
	for participant, tokens := range tally {
		a.answers().Put(participant, tokens)
	}
	return nil
}

func errAlreadyPlaced(item Item) error {
	return domain.Errorf(domain.KindInvalidPayload, "%s item is already placed at position %d", item.Kind(), item.Position())
}

func checkItem(position int, item Item) error {
	if err := validation.ValidatePosition(&position); err != nil {
		return err
	}
	if item == nil {
		return domain.Errorf(domain.KindInvalidPayload, "item is required")
	}
	return nil
}

// Builder assembles a Quiz. Name, owner and categories are only ever replaced by
// building a new aggregate, never patched in place.
type Builder struct {
	key        Key
	owner      domain.Participant
	name       string
	categories []string
	items      map[int]Item
	err        error
}

func NewBuilder() *Builder {
	return &Builder{items: make(map[int]Item)}
}

// Rebuild starts a builder from an existing aggregate, carrying its key, header and items over.
func Rebuild(q *Quiz) *Builder {
	b := NewBuilder()
	b.key = q.key
	b.owner = q.owner
	b.name = q.name
	b.categories = q.Categories()
	q.mu.RLock()
	for position, item := range q.items {
		b.items[position] = item
	}
	q.mu.RUnlock()
	return b
}

func (b *Builder) Key(key Key) *Builder {
	b.key = key
	return b
}

func (b *Builder) Owner(owner domain.Participant) *Builder {
	b.owner = owner
	return b
}

func (b *Builder) Name(name string) *Builder {
	b.name = name
	return b
}

func (b *Builder) Categories(categories ...string) *Builder {
	b.categories = categories
	return b
}

// ClearItems drops every item collected so far.
func (b *Builder) ClearItems() *Builder {
	b.items = make(map[int]Item)
	return b
}

// Item places item at position; a second item for the same position fails Build.
func (b *Builder) Item(position int, item Item) *Builder {
	if b.err != nil {
		return b
	}
	if err := checkItem(position, item); err != nil {
		b.err = err
		return b
	}
	if _, taken := b.items[position]; taken {
		b.err = domain.Errorf(domain.KindDuplicatePosition, "position %d is already occupied", position)
		return b
	}
	if !item.place(position) {
		b.err = errAlreadyPlaced(item)
		return b
	}
	b.items[position] = item
	return b
}

func (b *Builder) Build() (*Quiz, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := validation.ValidateName(b.name); err != nil {
		return nil, err
	}
	key := b.key
	if key == "" {
		key = NewKey()
	}
	items := make(map[int]Item, len(b.items))
	for position, item := range b.items {
		items[position] = item
	}
	return &Quiz{
		key:        key,
		owner:      b.owner,
		name:       strings.TrimSpace(b.name),
		categories: normalizeCategories(b.categories),
		items:      items,
	}, nil
}

func normalizeCategories(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
