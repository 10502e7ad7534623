// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package docstore

import (
	"context"
	"fmt"
	"reflect"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// IDField is the primary key of every record.
const IDField = "_id"

// Document is one record. Values follow JSON decoding rules: numbers are
// float64, objects are map[string]any, arrays are []any.
type Document map[string]any

// ID returns the record's "_id", or "" when unset.
func (d Document) ID() string {
	id, _ := d[IDField].(string)
	return id
}

// Decode converts the document into v through its JSON form.
func (d Document) Decode(v any) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

// ToDocument converts a struct (or map) into a Document through its JSON form.
func ToDocument(v any) (Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal value: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return doc, nil
}

// Filter selects records by top-level field equality. An empty filter
// matches every record.
type Filter map[string]any

// ByID is shorthand for Filter{"_id": id}.
func ByID(id string) Filter {
	return Filter{IDField: id}
}

// pinnedID returns the "_id" the filter fixes, if any.
func (f Filter) pinnedID() (string, bool) {
	v, ok := f[IDField]
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

// Update is a $set-style update: each field in Set replaces the stored
// field of the same name.
type Update struct {
	Set map[string]any
}

// Projection lists the fields Find returns. "_id" is always returned. An
// empty projection returns whole records.
type Projection []string

// UpdateResult reports what UpdateOne did.
type UpdateResult struct {
	Matched    bool
	UpsertedID string
}

// Store is the document-store contract.
type Store interface {
	FindOne(ctx context.Context, collection string, filter Filter) (Document, error)
	Find(ctx context.Context, collection string, filter Filter, projection Projection) ([]Document, error)
	UpdateOne(ctx context.Context, collection string, filter Filter, update Update, upsert bool) (UpdateResult, error)
	DeleteOne(ctx context.Context, collection string, filter Filter) (bool, error)
	Close() error
}

// normalize passes v through JSON so that filter values compare equal to
// decoded document values (int 3 and float64 3, typed slices and []any).
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// compiledFilter is a Filter with normalized values.
type compiledFilter map[string]any

func compileFilter(f Filter) (compiledFilter, error) {
	out := make(compiledFilter, len(f))
	for k, v := range f {
		nv, err := normalize(v)
		if err != nil {
			return nil, fmt.Errorf("filter field %q: %w", k, err)
		}
		out[k] = nv
	}
	return out, nil
}

func (f compiledFilter) matches(doc Document) bool {
	for k, want := range f {
		got, ok := doc[k]
		if !ok {
			if want == nil {
				continue
			}
			return false
		}
		if !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

// validateUpdate rejects empty updates and updates that rewrite "_id".
func validateUpdate(u Update) error {
	if len(u.Set) == 0 {
		return fmt.Errorf("%w: no fields to set", ErrInvalidUpdate)
	}
	if _, ok := u.Set[IDField]; ok {
		return fmt.Errorf("%w: %s is immutable", ErrInvalidUpdate, IDField)
	}
	return nil
}

// applySet returns a copy of doc with the update applied.
func applySet(doc Document, u Update) (Document, error) {
	out := make(Document, len(doc)+len(u.Set))
	for k, v := range doc {
		out[k] = v
	}
	for k, v := range u.Set {
		nv, err := normalize(v)
		if err != nil {
			return nil, fmt.Errorf("update field %q: %w", k, err)
		}
		out[k] = nv
	}
	return out, nil
}

// upsertDocument builds the record inserted when an upsert matches nothing.
func upsertDocument(f compiledFilter, u Update) (Document, error) {
	seed := make(Document, len(f)+1)
	for k, v := range f {
		seed[k] = v
	}
	if _, ok := seed[IDField]; !ok {
		seed[IDField] = uuid.NewString()
	}
	return applySet(seed, u)
}

// project keeps only the requested fields plus "_id".
func project(doc Document, p Projection) Document {
	if len(p) == 0 {
		return doc
	}
	out := make(Document, len(p)+1)
	if id, ok := doc[IDField]; ok {
		out[IDField] = id
	}
	for _, field := range p {
		if v, ok := doc[field]; ok {
			out[field] = v
		}
	}
	return out
}
