package jquants

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/finsync/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient("test-token",
		WithBaseURL(server.URL),
		WithLogger(arbor.NewLogger()),
		WithRateLimit(1000),
	)
}

func writeJSON(t *testing.T, w http.ResponseWriter, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestStatementsFollowsPagination(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/v1/fins/statements", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "72030", r.URL.Query().Get("code"))

		if r.URL.Query().Get("pagination_key") == "" {
			writeJSON(t, w, map[string]interface{}{
				"statements": []map[string]string{
					{"LocalCode": "72030", "DisclosedDate": "2024-05-08", "TypeOfCurrentPeriod": "FY", "OrdinaryProfit": "1100"},
				},
				"pagination_key": "next",
			})
			return
		}
		assert.Equal(t, "next", r.URL.Query().Get("pagination_key"))
		writeJSON(t, w, map[string]interface{}{
			"statements": []map[string]string{
				{"LocalCode": "72030", "DisclosedDate": "2023-05-10", "TypeOfCurrentPeriod": "FY", "OrdinaryProfit": "1000"},
			},
		})
	})

	records, err := client.Statements(context.Background(), "72030")

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, "1100", records[0].OrdinaryProfit)
	assert.Equal(t, "2023-05-10", records[1].DisclosedDate)
}

func TestStatementsByDate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2024-05-08", r.URL.Query().Get("date"))
		assert.Empty(t, r.URL.Query().Get("code"))
		writeJSON(t, w, map[string]interface{}{
			"statements": []map[string]string{
				{"LocalCode": "72030"},
				{"LocalCode": "67580"},
			},
		})
	})

	records, err := client.StatementsByDate(context.Background(), "2024-05-08")

	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestServerErrorIsRemoteUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Unexpected error"}`))
	})

	_, err := client.Statements(context.Background(), "72030")

	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrRemoteUnavailable))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "Unexpected error", apiErr.Message)
}

func TestUnreachableServerIsRemoteUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client := NewClient("token", WithBaseURL(baseURL))
	_, err := client.StatementsByDate(context.Background(), "2024-05-08")

	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrRemoteUnavailable))
}

func TestMalformedBodyIsRemoteUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	})

	_, err := client.Statements(context.Background(), "72030")

	assert.True(t, errors.Is(err, models.ErrRemoteUnavailable))
}

func TestListedSymbolsFiltersByMarket(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/listed/info", r.URL.Path)
		writeJSON(t, w, map[string]interface{}{
			"info": []map[string]string{
				{"Code": "72030", "MarketCodeName": "プライム"},
				{"Code": "13010", "MarketCodeName": "スタンダード"},
				{"Code": "25850", "MarketCodeName": "グロース"},
				{"Code": "99990", "MarketCodeName": "TOKYO PRO MARKET"},
				{"Code": "", "MarketCodeName": "プライム"},
			},
		})
	})

	codes, err := client.ListedSymbols(context.Background(), []string{"プライム", "グロース"})
	require.NoError(t, err)
	assert.Equal(t, []string{"72030", "25850"}, codes)

	all, err := client.ListedSymbols(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestCancelledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]interface{}{"statements": []interface{}{}})
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Statements(ctx, "72030")

	require.Error(t, err)
	assert.False(t, errors.Is(err, models.ErrRemoteUnavailable))
}
