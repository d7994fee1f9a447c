package models

import "errors"

var (
	// ErrInvalidSymbol is returned when a security code cannot be normalized to five characters
	ErrInvalidSymbol = errors.New("invalid symbol")

	// ErrRemoteUnavailable is returned when the financial-data API cannot be reached or answers with a failure
	ErrRemoteUnavailable = errors.New("remote unavailable")

	// ErrCorruptRecord marks a persisted record that could not be decoded
	ErrCorruptRecord = errors.New("corrupt record")

	// ErrErrorCeiling is returned when a batch is abandoned after too many consecutive failures
	ErrErrorCeiling = errors.New("consecutive error ceiling reached")

	// ErrStateRegression is returned when a freshness state would move the processed date backwards
	ErrStateRegression = errors.New("freshness state regression")

	// ErrUnsupportedStateVersion is returned when a freshness state file carries an unknown version
	ErrUnsupportedStateVersion = errors.New("unsupported freshness state version")
)
