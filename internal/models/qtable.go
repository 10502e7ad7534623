// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package models

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Action is a tracked outcome of a flashcard attempt.
type Action string

const (
	ActionCorrect   Action = "correct"
	ActionIncorrect Action = "incorrect"
)

// CanonicalActions lists every action a Q-table entry carries.
var CanonicalActions = []Action{ActionCorrect, ActionIncorrect}

// Valid reports whether a is one of the canonical actions.
func (a Action) Valid() bool {
	return a == ActionCorrect || a == ActionIncorrect
}

// ParseAction returns ErrInvalidAction for anything but "correct" or "incorrect".
func ParseAction(raw string) (Action, error) {
	a := Action(raw)
	if !a.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, raw)
	}
	return a, nil
}

// ActionFromVerdict maps a judge verdict onto an action.
func ActionFromVerdict(correct bool) Action {
	if correct {
		return ActionCorrect
	}
	return ActionIncorrect
}

// ActionValues holds the learned value of each action for one flashcard.
type ActionValues map[Action]float64

// DefaultActionValues is the value of a flashcard the user has never seen.
func DefaultActionValues() ActionValues {
	return ActionValues{ActionCorrect: 0.0, ActionIncorrect: 0.0}
}

// Clone returns a copy of v.
func (v ActionValues) Clone() ActionValues {
	out := make(ActionValues, len(v))
	for a, x := range v {
		out[a] = x
	}
	return out
}

// Max returns the largest value, or 0 for an empty set.
func (v ActionValues) Max() float64 {
	if len(v) == 0 {
		return 0
	}
	m := math.Inf(-1)
	for _, x := range v {
		if x > m {
			m = x
		}
	}
	return m
}

// Min returns the smallest value, or 0 for an empty set.
func (v ActionValues) Min() float64 {
	if len(v) == 0 {
		return 0
	}
	m := math.Inf(1)
	for _, x := range v {
		if x < m {
			m = x
		}
	}
	return m
}

// QTable is one user's mapping from flashcard id to action values.
//
// Lookups never insert: Entry returns explicit defaults for an unknown id and
// the table only grows through Set. Encounter order is kept so that ties
// can be broken by which flashcard was tracked first.
type QTable struct {
	entries map[string]ActionValues
	order   []string
}

// NewQTable returns an empty table.
func NewQTable() *QTable {
	return &QTable{entries: make(map[string]ActionValues)}
}

// QTableFromMap builds a table from persisted data. order lists ids in the
// sequence they were first tracked. Ids present in entries but absent from
// order (records written before order was persisted) follow in lexical order.
func QTableFromMap(entries map[string]ActionValues, order []string) *QTable {
	t := NewQTable()
	seen := make(map[string]struct{}, len(order))
	for _, id := range order {
		v, ok := entries[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		t.entries[id] = v.Clone()
		t.order = append(t.order, id)
	}
	for _, id := range sortedKeys(entries) {
		if _, ok := seen[id]; ok {
			continue
		}
		t.entries[id] = entries[id].Clone()
		t.order = append(t.order, id)
	}
	return t
}

// Len returns the number of tracked flashcards.
func (t *QTable) Len() int {
	return len(t.order)
}

// IDs returns tracked flashcard ids in first-tracked order.
func (t *QTable) IDs() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Tracked reports whether flashcardID has ever been written.
func (t *QTable) Tracked(flashcardID string) bool {
	_, ok := t.entries[flashcardID]
	return ok
}

// Raw returns the stored values for flashcardID without defaults applied.
// Persisted data may contain entries with no actions at all.
func (t *QTable) Raw(flashcardID string) (ActionValues, bool) {
	v, ok := t.entries[flashcardID]
	if !ok {
		return nil, false
	}
	return v.Clone(), true
}

// Entry returns the values for flashcardID with every canonical action
// present, defaulting to 0.0. The table is not modified.
func (t *QTable) Entry(flashcardID string) ActionValues {
	out := DefaultActionValues()
	for a, x := range t.entries[flashcardID] {
		out[a] = x
	}
	return out
}

// Set stores values for flashcardID, tracking it if it is new.
func (t *QTable) Set(flashcardID string, values ActionValues) {
	if _, ok := t.entries[flashcardID]; !ok {
		t.order = append(t.order, flashcardID)
	}
	t.entries[flashcardID] = values.Clone()
}

// Map returns a copy of the entries keyed by flashcard id.
func (t *QTable) Map() map[string]ActionValues {
	out := make(map[string]ActionValues, len(t.entries))
	for id, v := range t.entries {
		out[id] = v.Clone()
	}
	return out
}

// TopicStats counts judged answers for one topic.
type TopicStats struct {
	Correct   int64 `json:"correct"`
	Incorrect int64 `json:"incorrect"`
}

// Performance is the full per-user learning record.
type Performance struct {
	UserID  string                  `json:"user_id"`
	QTable  map[string]ActionValues `json:"q_table"`
	Order   []string                `json:"q_order,omitempty"`
	Topics  map[string]TopicStats   `json:"performance,omitempty"`
	Updated time.Time               `json:"updated_at,omitempty"`
}

func sortedKeys(m map[string]ActionValues) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
