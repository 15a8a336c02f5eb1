package main

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidConnection  = errors.New("invalid connection")
	ErrUnsupportedShape   = errors.New("unsupported response shape")
	ErrGenerationInFlight = errors.New("generation already in progress")
	ErrGenerationFailed   = errors.New("generation failed")
	ErrStartElement       = errors.New("operation not allowed on the start element")
)

// User facing messages; the underlying error only goes to the log.
const (
	pathsFailureMessage = "An error occurred while generating the learning paths."
	mapFailureMessage   = "An error occurred while generating the learning map."
)

func generationFailureMessage(mode GenerationMode) string {
	if mode == GenerationMap {
		return mapFailureMessage
	}
	return pathsFailureMessage
}
