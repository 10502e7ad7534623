// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package embedding

import (
	"fmt"
	"strings"
	"sync"
)

// Loader builds a Model. It runs at most once per Encoder.
type Loader func() (Model, error)

// Encoder owns a lazily loaded Model.
type Encoder struct {
	load Loader
	dims int

	once  sync.Once
	model Model
	err   error
}

// NewEncoder returns an Encoder that calls load on first use. dims is the
// expected vector length; it must match the loaded model.
func NewEncoder(dims int, load Loader) *Encoder {
	return &Encoder{load: load, dims: dims}
}

// NewHashingEncoder is an Encoder over a HashingModel.
func NewHashingEncoder(dims int, seed string) *Encoder {
	return NewEncoder(dims, func() (Model, error) {
		return NewHashingModel(dims, seed)
	})
}

// Load forces the model load. Later calls return the first result.
func (e *Encoder) Load() error {
	e.once.Do(func() {
		model, err := e.load()
		switch {
		case err != nil:
			e.err = fmt.Errorf("%w: load model: %w", ErrEmbedding, err)
		case model.Dimensions() != e.dims:
			e.err = fmt.Errorf("%w: model produces %d dimensions, want %d", ErrEmbedding, model.Dimensions(), e.dims)
		default:
			e.model = model
		}
	})
	return e.err
}

// Dimensions returns the vector length.
func (e *Encoder) Dimensions() int {
	return e.dims
}

// Encode embeds text synchronously. Empty text yields a zero vector without
// touching the model.
func (e *Encoder) Encode(text string, precision Precision) (vec []float64, err error) {
	if strings.TrimSpace(text) == "" {
		return make([]float64, e.dims), nil
	}
	if err := e.Load(); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			vec = nil
			err = fmt.Errorf("%w: encoder panic: %v", ErrEmbedding, r)
		}
	}()

	vec, err = e.model.Encode(text, precision)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbedding, err)
	}
	if len(vec) != e.dims {
		return nil, fmt.Errorf("%w: got %d dimensions, want %d", ErrEmbedding, len(vec), e.dims)
	}
	return vec, nil
}
