package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestGFGFetchAllSolvedParsesDifficultyBuckets(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"result": map[string]any{
				"Easy": map[string]any{
					"111": map[string]any{"slug": "reverse-a-linked-list", "pname": "Reverse a linked list"},
				},
				"Medium": map[string]any{
					"222": map[string]any{"slug": "detect-loop-in-linked-list"},
					"333": map[string]any{"slug": ""},
				},
			},
		})
	}))
	defer server.Close()

	client := NewGFGClient(GFGConfig{BulkURL: server.URL, Logger: zerolog.Nop()})

	solved, err := client.FetchAllSolved(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, solved, 2)
	require.Contains(t, solved, "reverse-a-linked-list")
	require.Contains(t, solved, "detect-loop-in-linked-list")

	require.Equal(t, "alice", gotBody["handle"])
	require.Equal(t, "", gotBody["requestType"])
	require.Equal(t, "", gotBody["year"])
	require.Equal(t, "", gotBody["month"])
}

func TestGFGFetchAllSolvedDegradesToEmptySet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewGFGClient(GFGConfig{BulkURL: server.URL, Logger: zerolog.Nop()})

	solved, err := client.FetchAllSolved(context.Background(), "alice")
	require.NoError(t, err)
	require.Empty(t, solved)
}

func TestGFGFetchSingleSubmissionReturnsAcceptedTimestamp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.Header.Get("Cookie"), "gfguserName=secret-cookie")
		require.Contains(t, r.URL.Path, "/reverse-a-linked-list/submissions/user/")

		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": map[string]any{
				"submissions": []map[string]any{
					{"submission_id": "1", "exec_status": "0", "subtime": "2024-02-01 10:00:00"},
					{"submission_id": "2", "exec_status": "1", "subtime": "2024-02-01 11:30:05"},
				},
			},
		})
	}))
	defer server.Close()

	client := NewGFGClient(GFGConfig{ProblemBaseURL: server.URL, Logger: zerolog.Nop()})

	record, err := client.FetchSingleSubmission(context.Background(), "reverse-a-linked-list", "secret-cookie")
	require.NoError(t, err)
	require.NotNil(t, record)
	require.True(t, record.Accepted)
	require.Equal(t, time.Date(2024, 2, 1, 11, 30, 5, 0, time.UTC), record.SubmittedAt)
}

func TestGFGFetchSingleSubmissionExpiredCookie(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		client := NewGFGClient(GFGConfig{ProblemBaseURL: server.URL, Logger: zerolog.Nop()})

		record, err := client.FetchSingleSubmission(context.Background(), "two-sum", "stale")
		require.ErrorIs(t, err, ErrCredentialExpired)
		require.Nil(t, record)

		server.Close()
	}
}

func TestGFGFetchSingleSubmissionNoAcceptedEntry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": map[string]any{
				"submissions": []map[string]any{
					{"submission_id": "1", "exec_status": "0", "subtime": "2024-02-01 10:00:00"},
				},
			},
		})
	}))
	defer server.Close()

	client := NewGFGClient(GFGConfig{ProblemBaseURL: server.URL, Logger: zerolog.Nop()})

	record, err := client.FetchSingleSubmission(context.Background(), "two-sum", "cookie")
	require.NoError(t, err)
	require.Nil(t, record)
}
