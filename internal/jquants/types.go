// Package jquants provides a client for the J-Quants financial-data API.
// This package centralizes all J-Quants API interactions for the application.
package jquants

import (
	"fmt"

	"github.com/ternarybob/finsync/internal/models"
)

// statementsResponse is the envelope of /v1/fins/statements.
type statementsResponse struct {
	Statements    []models.StatementRecord `json:"statements"`
	PaginationKey string                   `json:"pagination_key"`
}

// ListedInfo is one entry of /v1/listed/info.
type ListedInfo struct {
	Date           string `json:"Date"`
	Code           string `json:"Code"`
	CompanyName    string `json:"CompanyName"`
	MarketCode     string `json:"MarketCode"`
	MarketCodeName string `json:"MarketCodeName"`
}

type listedInfoResponse struct {
	Info          []ListedInfo `json:"info"`
	PaginationKey string       `json:"pagination_key"`
}

// APIError represents an error from the J-Quants API or the transport beneath it.
// It unwraps to models.ErrRemoteUnavailable.
type APIError struct {
	StatusCode int // 0 when the request never got a response
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("J-Quants API unreachable: %s (endpoint: %s)", e.Message, e.Endpoint)
	}
	return fmt.Sprintf("J-Quants API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

func (e *APIError) Unwrap() error {
	return models.ErrRemoteUnavailable
}
