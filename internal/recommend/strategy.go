// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package recommend

import (
	"fmt"
	"sort"

	"github.com/tomtom215/flashpath/internal/models"
)

// Strategy names.
const (
	StrategyWeakestAction = "weakest_action"
	StrategyMargin        = "margin"
)

// Strategy scores a flashcard from its stored action values. ok is false
// when the entry carries no usable signal and must be left out.
type Strategy interface {
	Name() string
	Score(values models.ActionValues) (score float64, ok bool)
}

// WeakestAction scores by the smallest action value.
type WeakestAction struct{}

// Name implements Strategy.
func (WeakestAction) Name() string { return StrategyWeakestAction }

// Score implements Strategy.
func (WeakestAction) Score(values models.ActionValues) (float64, bool) {
	return values.Min(), true
}

// Margin scores by correct minus incorrect. Missing actions count as 0.
type Margin struct{}

// Name implements Strategy.
func (Margin) Name() string { return StrategyMargin }

// Score implements Strategy.
func (Margin) Score(values models.ActionValues) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	return values[models.ActionCorrect] - values[models.ActionIncorrect], true
}

// StrategyByName returns the named strategy.
func StrategyByName(name string) (Strategy, error) {
	switch name {
	case StrategyWeakestAction:
		return WeakestAction{}, nil
	case StrategyMargin:
		return Margin{}, nil
	default:
		return nil, fmt.Errorf("unknown ranking strategy %q", name)
	}
}

// ranked is one scored Q-table entry.
type ranked struct {
	id    string
	score float64
}

// rank scores every entry of table and sorts ascending. Equal scores keep
// first-tracked order.
func rank(table *models.QTable, s Strategy) []ranked {
	ids := table.IDs()
	out := make([]ranked, 0, len(ids))
	for _, id := range ids {
		raw, _ := table.Raw(id)
		score, ok := s.Score(raw)
		if !ok {
			continue
		}
		out = append(out, ranked{id: id, score: score})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].score < out[j].score
	})
	return out
}
