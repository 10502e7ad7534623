// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package answer

import (
	"context"
	"errors"
	"strings"
	"unicode"
)

// ErrNoReference is returned when a flashcard has no stored answer to judge
// against.
var ErrNoReference = errors.New("flashcard has no reference answer")

// Judge decides whether given answers question correctly. expected is the
// flashcard's stored answer and may be empty.
type Judge interface {
	Judge(ctx context.Context, question, expected, given string) (bool, error)
}

// JudgeFunc adapts a function to Judge.
type JudgeFunc func(ctx context.Context, question, expected, given string) (bool, error)

// Judge implements Judge.
func (f JudgeFunc) Judge(ctx context.Context, question, expected, given string) (bool, error) {
	return f(ctx, question, expected, given)
}

// NormalizedJudge accepts an answer equal to the stored one after case
// folding, punctuation removal and whitespace collapsing.
type NormalizedJudge struct{}

// Judge implements Judge.
func (NormalizedJudge) Judge(_ context.Context, _, expected, given string) (bool, error) {
	want := Normalize(expected)
	if want == "" {
		return false, ErrNoReference
	}
	return Normalize(given) == want, nil
}

// Normalize lowercases s, drops punctuation and symbols, and collapses runs
// of whitespace to single spaces.
func Normalize(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			return ' '
		default:
			return unicode.ToLower(r)
		}
	}, s)
	return strings.Join(strings.Fields(cleaned), " ")
}
