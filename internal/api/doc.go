// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

/*
Package api is the HTTP surface of Flashpath.

Routes (all under /api/v1, JSON envelope models.APIResponse):

	GET    /health/live
	GET    /health/ready
	GET    /flashcards?topic=&difficulty=&class_id=
	POST   /flashcards
	POST   /flashcards/import
	POST   /flashcards/similar
	GET    /flashcards/{flashcardID}
	PUT    /flashcards/{flashcardID}
	DELETE /flashcards/{flashcardID}
	GET    /classes
	POST   /classes
	GET    /classes/{classID}
	DELETE /classes/{classID}
	POST   /users/{userID}/qtable
	POST   /users/{userID}/answers
	GET    /users/{userID}/recommendations?n=
	GET    /users/{userID}/worst?threshold=
	GET    /users/{userID}/performance
	DELETE /users/{userID}/performance
	GET    /users/{userID}/classes/{classID}/progress

Prometheus metrics are served at /metrics.

Handlers are thin: they decode and validate the request, call one service
method and map its error onto a status code with respondServiceError.

	ErrMalformedID, ErrInvalidAction, validation errors   400
	answer.ErrNoReference, ErrUnknownClass                422
	ErrNotFound (incl. ErrClassNotFound)                  404
	docstore.ErrUnavailable                               503
	embedding.ErrTimeout                                  504 EMBEDDING_TIMEOUT
	other context.DeadlineExceeded                        504 TIMEOUT
	anything else                                         500
*/
package api
