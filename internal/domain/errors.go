package domain

import "errors"

var (
	// ErrMalformedPayload means an inbound frame could not be decoded or
	// carried no message key.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrEmptyMessage means the message text was empty or whitespace-only.
	ErrEmptyMessage = errors.New("message cannot be empty")

	// ErrClassificationUnavailable means the classifier returned no usable
	// ranking or could not be reached.
	ErrClassificationUnavailable = errors.New("classification unavailable")
)
