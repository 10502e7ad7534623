// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared by the whole process. Field names in
// error messages use the struct's json tag, so messages refer to the names a
// client actually sent.
//
// # Custom Tags
//
//   - notblank: string must contain at least one non-whitespace character
//
// # Usage
//
//	var draft models.FlashcardDraft
//	if verr := validation.ValidateStruct(&draft); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
//
// Generated flashcards are validated with the same rules; a draft that fails
// is quarantined with the message from RequestValidationError.Error.
package validation
