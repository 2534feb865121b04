// Package quiz holds the multiple-choice quiz derived from an answer:
// items decoded from the backend payload and the per-item selection and
// grading state.
package quiz

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// ErrIndexOutOfRange is returned when an item index is outside the quiz.
	ErrIndexOutOfRange = errors.New("quiz item index out of range")

	// ErrNoSelection is returned when checking an item with nothing selected.
	ErrNoSelection = errors.New("no option selected")
)

// Item is one multiple-choice question. AnswerKey holds the correct
// option letter ("A".."D") and travels as "answer" on the wire.
type Item struct {
	Question  string   `json:"question"`
	Options   []string `json:"options"`
	AnswerKey string   `json:"answer"`
}

// State tracks selections and checks for a fixed list of items. All
// slices always have the same length as items.
type State struct {
	items      []Item
	selections []string
	selected   []bool
	checked    []bool
	correct    []bool
}

// New returns a fresh state with every selection absent and every item
// unchecked.
func New(items []Item) *State {
	n := len(items)
	return &State{
		items:      cloneItems(items),
		selections: make([]string, n),
		selected:   make([]bool, n),
		checked:    make([]bool, n),
		correct:    make([]bool, n),
	}
}

// Empty returns a state with no items.
func Empty() *State {
	return New(nil)
}

// Len returns the number of items.
func (s *State) Len() int {
	return len(s.items)
}

// Items returns a copy of the quiz items.
func (s *State) Items() []Item {
	return cloneItems(s.items)
}

// Select records option as the selection for item i. Selecting an
// already checked item is allowed but does not change its grade.
func (s *State) Select(i int, option string) error {
	if i < 0 || i >= len(s.items) {
		return ErrIndexOutOfRange
	}
	s.selections[i] = option
	s.selected[i] = true
	return nil
}

// Selection returns the selected option for item i, if any.
func (s *State) Selection(i int) (string, bool) {
	if i < 0 || i >= len(s.items) {
		return "", false
	}
	return s.selections[i], s.selected[i]
}

// Check marks item i as checked and records whether the current
// selection is correct. Checking twice is a no-op.
func (s *State) Check(i int) error {
	if i < 0 || i >= len(s.items) {
		return ErrIndexOutOfRange
	}
	if s.checked[i] {
		return nil
	}
	if !s.selected[i] {
		return ErrNoSelection
	}
	s.checked[i] = true
	s.correct[i] = Grade(s.selections[i], s.items[i].AnswerKey)
	return nil
}

// Checked reports whether item i has been checked.
func (s *State) Checked(i int) bool {
	if i < 0 || i >= len(s.items) {
		return false
	}
	return s.checked[i]
}

// Correct reports whether item i was graded correct when checked.
func (s *State) Correct(i int) bool {
	if i < 0 || i >= len(s.items) {
		return false
	}
	return s.checked[i] && s.correct[i]
}

// Score counts checked items graded correct.
func (s *State) Score() int {
	n := 0
	for i := range s.items {
		if s.checked[i] && s.correct[i] {
			n++
		}
	}
	return n
}

// Complete reports whether the quiz has items and all of them are checked.
func (s *State) Complete() bool {
	if len(s.items) == 0 {
		return false
	}
	for _, c := range s.checked {
		if !c {
			return false
		}
	}
	return true
}

// Presentable reports whether there is anything to show.
func (s *State) Presentable() bool {
	return len(s.items) > 0
}

// Grade compares the leading letter of selection with key. Both sides
// are trimmed and upper-cased; an option like "b) Paris" matches "B".
func Grade(selection, key string) bool {
	sel := strings.TrimSpace(selection)
	if sel == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(sel)
	return string(unicode.ToUpper(r)) == strings.ToUpper(strings.TrimSpace(key))
}

// Letter returns the option letter for index i ("A" for 0).
func Letter(i int) string {
	if i < 0 || i >= 26 {
		return "?"
	}
	return string(rune('A' + i))
}

func cloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = Item{
			Question:  it.Question,
			Options:   append([]string(nil), it.Options...),
			AnswerKey: it.AnswerKey,
		}
	}
	return out
}
