package model

import "errors"

var (
	// ErrNetworkFailure wraps transport errors and non-2xx responses.
	ErrNetworkFailure = errors.New("network failure")

	// ErrMalformedResponse means the chat API response lacked a field the
	// protocol needs (no choice, no message, missing or unnamed directive).
	ErrMalformedResponse = errors.New("malformed response")

	// ErrNoMatch means a lookup found no record.
	ErrNoMatch = errors.New("no match")

	// ErrParseFailure means a payload was not valid JSON or a wire field
	// could not be decoded.
	ErrParseFailure = errors.New("parse failure")

	// ErrSchemaViolation means parsed arguments don't satisfy the function's
	// declared parameter schema.
	ErrSchemaViolation = errors.New("schema violation")

	// ErrUnknownFunction means a directive named a function not in the catalog.
	ErrUnknownFunction = errors.New("unknown function")

	// ErrEmptySelection means a random pick was requested from an empty list.
	ErrEmptySelection = errors.New("empty selection")
)
