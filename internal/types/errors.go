package types

import "errors"

var (
	// ErrTransport means the model service could not be reached or refused the call.
	ErrTransport = errors.New("model service request failed")
	// ErrMalformedResponse means the model answered with no usable itinerary object.
	ErrMalformedResponse = errors.New("malformed model response")
	// ErrExportCapture means the map snapshot could not be used in an export.
	ErrExportCapture = errors.New("map snapshot capture failed")

	ErrSessionNotFound      = errors.New("session not found")
	ErrNoItinerary          = errors.New("no itinerary generated yet")
	ErrStopNotFound         = errors.New("stop not found in itinerary")
	ErrGenerationInProgress = errors.New("itinerary generation already in progress")
	ErrChatInProgress       = errors.New("chat message already in flight")
	ErrPreferencesLocked    = errors.New("preferences are locked while generating")
	ErrEmptyMessage         = errors.New("message must not be empty")
	ErrInvalidPreferences   = errors.New("invalid preferences")
)
